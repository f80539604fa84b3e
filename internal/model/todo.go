package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyTitle           = errors.New("model: todo title is required")
	ErrInvalidSortField     = errors.New("model: invalid sort field")
	ErrInvalidSortDirection = errors.New("model: invalid sort direction")
)

type SortField string

const (
	SortFieldTitle       SortField = "title"
	SortFieldCreatedTime SortField = "createdTime"
)

func (f SortField) IsValid() bool {
	switch f {
	case SortFieldTitle, SortFieldCreatedTime:
		return true
	default:
		return false
	}
}

// Next cycles through the sort fields offered by the UI.
func (f SortField) Next() SortField {
	if f == SortFieldTitle {
		return SortFieldCreatedTime
	}
	return SortFieldTitle
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

func (d SortDirection) IsValid() bool {
	switch d {
	case SortAsc, SortDesc:
		return true
	default:
		return false
	}
}

func (d SortDirection) Toggle() SortDirection {
	if d == SortAsc {
		return SortDesc
	}
	return SortAsc
}

func ParseSortField(raw string) (SortField, error) {
	f := SortField(strings.TrimSpace(raw))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSortField, raw)
	}
	return f, nil
}

func ParseSortDirection(raw string) (SortDirection, error) {
	d := SortDirection(strings.ToLower(strings.TrimSpace(raw)))
	if !d.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSortDirection, raw)
	}
	return d, nil
}

type Todo struct {
	ID          string
	Title       string
	IsCompleted bool
}

// ValidateTitle rejects titles that are empty once surrounding whitespace is removed.
// The title itself is stored as typed.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// TodoPatch carries the fields of an edit. Nil fields are left untouched when merged.
type TodoPatch struct {
	ID          string
	Title       *string
	IsCompleted *bool
}

func (p TodoPatch) Apply(t Todo) Todo {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.IsCompleted != nil {
		t.IsCompleted = *p.IsCompleted
	}
	return t
}

func TitlePatch(id, title string) TodoPatch {
	return TodoPatch{ID: id, Title: &title}
}

func CompletedPatch(id string, completed bool) TodoPatch {
	return TodoPatch{ID: id, IsCompleted: &completed}
}

// FindTodo returns the index of the todo with the given id, or -1.
func FindTodo(items []Todo, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Incomplete returns the todos that are still open, preserving order.
func Incomplete(items []Todo) []Todo {
	out := make([]Todo, 0, len(items))
	for _, item := range items {
		if !item.IsCompleted {
			out = append(out, item)
		}
	}
	return out
}
