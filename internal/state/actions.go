package state

import "github.com/sandeepkv93/todoflow/internal/model"

// Action is a state transition consumed by Reduce.
type Action interface {
	isAction()
}

type FetchTodos struct{}

type LoadTodos struct {
	Records []model.Record
}

type SetLoadError struct {
	Err error
}

// SetRequestError records a failed create. Unlike SetLoadError it leaves IsLoading alone.
type SetRequestError struct {
	Err error
}

type StartRequest struct{}

type EndRequest struct{}

type AddTodo struct {
	Records []model.Record
}

type UpdateTodo struct {
	Edit model.TodoPatch
}

type CompleteTodo struct {
	ID string
}

// RevertTodo puts back the snapshot taken before an optimistic change and records the failure.
type RevertTodo struct {
	Original model.Todo
	Err      error
}

type ClearError struct{}

type SetSortField struct {
	Value string
}

type SetSortDirection struct {
	Value string
}

type SetQueryString struct {
	Value string
}

// Batch applies its actions in order.
type Batch []Action

func (FetchTodos) isAction()       {}
func (LoadTodos) isAction()        {}
func (SetLoadError) isAction()     {}
func (SetRequestError) isAction()  {}
func (StartRequest) isAction()     {}
func (EndRequest) isAction()       {}
func (AddTodo) isAction()          {}
func (UpdateTodo) isAction()       {}
func (CompleteTodo) isAction()     {}
func (RevertTodo) isAction()       {}
func (ClearError) isAction()       {}
func (SetSortField) isAction()     {}
func (SetSortDirection) isAction() {}
func (SetQueryString) isAction()   {}
func (Batch) isAction()            {}
