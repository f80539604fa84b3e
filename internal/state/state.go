// Package state holds the application state and the reducer that is its only mutator.
package state

import (
	"github.com/sandeepkv93/todoflow/internal/model"
)

const (
	DefaultSortField     = string(model.SortFieldCreatedTime)
	DefaultSortDirection = string(model.SortDesc)

	// UnknownErrorMessage is shown when a failure carries no message of its own.
	UnknownErrorMessage = "Unknown error"
)

type State struct {
	Items         []model.Todo
	IsLoading     bool
	IsSaving      bool
	ErrorMessage  string
	SortField     string
	SortDirection string
	QueryString   string
}

func Initial() State {
	return State{
		Items:         []model.Todo{},
		SortField:     DefaultSortField,
		SortDirection: DefaultSortDirection,
	}
}

// Clone returns a copy that shares no backing array with s.
func (s State) Clone() State {
	out := s
	out.Items = append([]model.Todo(nil), s.Items...)
	return out
}

func (s State) Find(id string) (model.Todo, bool) {
	i := model.FindTodo(s.Items, id)
	if i < 0 {
		return model.Todo{}, false
	}
	return s.Items[i], true
}

// ErrorMessage extracts the user-visible message of a failure.
func ErrorMessage(err error) string {
	if err == nil {
		return UnknownErrorMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return UnknownErrorMessage
}
