// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sandeepkv93/todoflow/internal/model"
	"github.com/sandeepkv93/todoflow/internal/service"
)

// ErrNotFound is returned when a record id is unknown.
var ErrNotFound = errors.New("not found")

// Call records one request made against the fake.
type Call struct {
	Method string
	ID     string
	Query  service.Query
	Fields model.Fields
}

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu      sync.RWMutex
	records []model.Record
	calls   []Call
	nextID  int
	clock   time.Time

	// Error injection for testing
	ListErr   error
	CreateErr error
	PatchErr  error

	// PatchHook runs before a patch is applied, outside the lock.
	PatchHook func(id string, fields model.Fields)
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// AddRecord seeds a record and returns its id.
func (f *FakeService) AddRecord(id, title string, completed bool) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == "" {
		id = f.newIDLocked()
	}
	f.records = append(f.records, model.Record{
		ID:          id,
		CreatedTime: f.tickLocked(),
		Fields:      model.NewFields(title, completed),
	})
	return id
}

// Records returns a copy of the stored records.
func (f *FakeService) Records() []model.Record {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]model.Record(nil), f.records...)
}

// Calls returns the requests made so far.
func (f *FakeService) Calls() []Call {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]Call(nil), f.calls...)
}

// ListRecords implements service.Service.
func (f *FakeService) ListRecords(ctx context.Context, q service.Query) ([]model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: "list", Query: q})
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []model.Record
	for _, r := range f.records {
		if q.Search != "" && !strings.Contains(r.ToTodo().Title, q.Search) {
			continue
		}
		out = append(out, r)
	}
	key := func(r model.Record) string {
		if q.SortField == string(model.SortFieldTitle) {
			return r.ToTodo().Title
		}
		return r.CreatedTime
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.SortDirection == string(model.SortDesc) {
			return key(out[j]) < key(out[i])
		}
		return key(out[i]) < key(out[j])
	})
	return out, nil
}

// CreateRecord implements service.Service.
func (f *FakeService) CreateRecord(ctx context.Context, fields model.Fields) ([]model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: "create", Fields: fields})
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	rec := model.Record{ID: f.newIDLocked(), CreatedTime: f.tickLocked(), Fields: fields}
	f.records = append(f.records, rec)
	return []model.Record{rec}, nil
}

// PatchRecord implements service.Service.
func (f *FakeService) PatchRecord(ctx context.Context, id string, fields model.Fields) ([]model.Record, error) {
	if hook := f.PatchHook; hook != nil {
		hook(id, fields)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: "patch", ID: id, Fields: fields})
	if f.PatchErr != nil {
		return nil, f.PatchErr
	}
	for i, r := range f.records {
		if r.ID != id {
			continue
		}
		if fields.Title != nil {
			title := *fields.Title
			r.Fields.Title = &title
		}
		if fields.IsCompleted != nil {
			done := *fields.IsCompleted
			r.Fields.IsCompleted = &done
		}
		f.records[i] = r
		return []model.Record{r}, nil
	}
	return nil, fmt.Errorf("record %q: %w", id, ErrNotFound)
}

func (f *FakeService) newIDLocked() string {
	f.nextID++
	return fmt.Sprintf("rec%04d", f.nextID)
}

func (f *FakeService) tickLocked() string {
	f.clock = f.clock.Add(time.Minute)
	return f.clock.Format("2006-01-02T15:04:05.000Z")
}
