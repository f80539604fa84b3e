package state

import "github.com/sandeepkv93/todoflow/internal/model"

// Reduce maps the current state and an action to the next state. The input is never mutated.
func Reduce(s State, action Action) State {
	switch a := action.(type) {
	case FetchTodos:
		s.IsLoading = true
	case LoadTodos:
		s.Items = uniqueTodos(model.RecordsToTodos(a.Records))
		s.IsLoading = false
	case SetLoadError:
		s.ErrorMessage = ErrorMessage(a.Err)
		s.IsLoading = false
	case StartRequest:
		s.IsSaving = true
	case EndRequest:
		s.IsSaving = false
	case SetRequestError:
		s.ErrorMessage = ErrorMessage(a.Err)
	case AddTodo:
		if len(a.Records) > 0 {
			s.Items = upsertTodo(s.Items, a.Records[0].ToTodo())
		}
		s.IsSaving = false
	case UpdateTodo:
		if a.Edit.ID == "" {
			return s
		}
		s.Items = mapTodo(s.Items, a.Edit.ID, a.Edit.Apply)
	case CompleteTodo:
		s.Items = mapTodo(s.Items, a.ID, func(t model.Todo) model.Todo {
			t.IsCompleted = true
			return t
		})
	case RevertTodo:
		if a.Original.ID == "" {
			return s
		}
		original := a.Original
		s.Items = mapTodo(s.Items, original.ID, func(model.Todo) model.Todo { return original })
		s.ErrorMessage = ErrorMessage(a.Err)
	case ClearError:
		s.ErrorMessage = ""
	case SetSortField:
		s.SortField = a.Value
	case SetSortDirection:
		s.SortDirection = a.Value
	case SetQueryString:
		s.QueryString = a.Value
	case Batch:
		for _, next := range a {
			s = Reduce(s, next)
		}
	}
	return s
}

func mapTodo(items []model.Todo, id string, fn func(model.Todo) model.Todo) []model.Todo {
	i := model.FindTodo(items, id)
	if i < 0 {
		return items
	}
	out := append([]model.Todo(nil), items...)
	out[i] = fn(out[i])
	return out
}

func upsertTodo(items []model.Todo, todo model.Todo) []model.Todo {
	if i := model.FindTodo(items, todo.ID); i >= 0 {
		out := append([]model.Todo(nil), items...)
		out[i] = todo
		return out
	}
	out := make([]model.Todo, 0, len(items)+1)
	out = append(out, items...)
	return append(out, todo)
}

func uniqueTodos(items []model.Todo) []model.Todo {
	seen := make(map[string]bool, len(items))
	out := make([]model.Todo, 0, len(items))
	for _, item := range items {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		out = append(out, item)
	}
	return out
}
