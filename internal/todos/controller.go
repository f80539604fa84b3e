// Package todos runs the optimistic-update protocol between the state Store and the record store.
package todos

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/sandeepkv93/todoflow/internal/model"
	"github.com/sandeepkv93/todoflow/internal/service"
	"github.com/sandeepkv93/todoflow/internal/state"
)

// Op is deferred network work. It returns the action to dispatch once the
// request resolves, or nil when local state is already correct.
type Op func(ctx context.Context) state.Action

// Controller turns user intents into state transitions and record store requests.
// The synchronous half of every method dispatches into the Store immediately;
// the returned Op is run by the caller, off the UI loop if it has one.
type Controller struct {
	store *state.Store
	svc   service.Service
	log   hclog.Logger
	locks *keyedMutex
}

func NewController(store *state.Store, svc service.Service, logger hclog.Logger) *Controller {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Controller{
		store: store,
		svc:   svc,
		log:   logger.Named("todos"),
		locks: newKeyedMutex(),
	}
}

func (c *Controller) Store() *state.Store {
	return c.store
}

func (c *Controller) State() state.State {
	return c.store.State()
}

// Dispatch applies an action outside of the protocol methods (view parameters, dismissals).
func (c *Controller) Dispatch(action state.Action) state.State {
	return c.store.Dispatch(action)
}

// Run executes op and dispatches its follow-up action.
func (c *Controller) Run(ctx context.Context, op Op) state.State {
	if op == nil {
		return c.store.State()
	}
	return c.store.Dispatch(op(ctx))
}

// QueryFor derives the list request from the current view parameters.
func QueryFor(s state.State) service.Query {
	return service.Query{
		SortField:     s.SortField,
		SortDirection: s.SortDirection,
		Search:        s.QueryString,
	}
}

// Fetch marks the list as loading and returns the list request.
func (c *Controller) Fetch() Op {
	s := c.store.Dispatch(state.FetchTodos{})
	q := QueryFor(s)
	return func(ctx context.Context) state.Action {
		records, err := c.svc.ListRecords(ctx, q)
		if err != nil {
			c.log.Warn("fetch failed", "error", err)
			return state.SetLoadError{Err: err}
		}
		c.log.Debug("fetched", "records", len(records), "sort", q.SortField, "direction", q.SortDirection, "query", q.Search)
		return state.LoadTodos{Records: records}
	}
}

// Add creates a todo. Creation waits for the store-assigned id, so nothing is
// appended until the request succeeds. Blank titles return nil without any dispatch.
func (c *Controller) Add(title string) Op {
	if err := model.ValidateTitle(title); err != nil {
		c.log.Debug("add rejected", "error", err)
		return nil
	}
	c.store.Dispatch(state.StartRequest{})
	fields := model.NewFields(title, false)
	return func(ctx context.Context) state.Action {
		records, err := c.svc.CreateRecord(ctx, fields)
		if err != nil {
			c.log.Warn("create failed", "error", err)
			return state.Batch{state.SetRequestError{Err: err}, state.EndRequest{}}
		}
		return state.Batch{state.AddTodo{Records: records}, state.EndRequest{}}
	}
}

// Complete optimistically marks the todo done. It returns nil when the id is
// no longer in the list.
func (c *Controller) Complete(id string) Op {
	snapshot, ok := c.store.State().Find(id)
	if !ok {
		c.log.Debug("complete abandoned", "id", id)
		return nil
	}
	c.store.Dispatch(state.CompleteTodo{ID: id})
	return c.write(snapshot, model.CompletedPatch(id, true))
}

// UpdateTitle optimistically renames the todo. Blank titles and unknown ids return nil.
func (c *Controller) UpdateTitle(id, title string) Op {
	if err := model.ValidateTitle(title); err != nil {
		c.log.Debug("rename rejected", "id", id, "error", err)
		return nil
	}
	snapshot, ok := c.store.State().Find(id)
	if !ok {
		c.log.Debug("rename abandoned", "id", id)
		return nil
	}
	patch := model.TitlePatch(id, title)
	c.store.Dispatch(state.UpdateTodo{Edit: patch})
	return c.write(snapshot, patch)
}

// write issues the network half of an optimistic change. Writes to the same id
// are serialized so they reach the store in dispatch order.
func (c *Controller) write(snapshot model.Todo, patch model.TodoPatch) Op {
	fields := model.PatchFields(patch)
	return func(ctx context.Context) state.Action {
		unlock := c.locks.Lock(snapshot.ID)
		defer unlock()

		if _, err := c.svc.PatchRecord(ctx, snapshot.ID, fields); err != nil {
			c.log.Warn("patch failed, reverting", "id", snapshot.ID, "error", err)
			return state.RevertTodo{Original: snapshot, Err: err}
		}
		return nil
	}
}

// keyedMutex hands out one lock per key and forgets keys nobody holds.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedEntry)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyedEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

// Describe renders a short label for logs and CLI output.
func Describe(t model.Todo) string {
	mark := " "
	if t.IsCompleted {
		mark = "x"
	}
	return fmt.Sprintf("[%s] %s (%s)", mark, t.Title, t.ID)
}
