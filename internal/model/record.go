package model

// Fields is the field bag of a remote record. Nil fields are absent on the wire.
type Fields struct {
	Title       *string `json:"title,omitempty"`
	IsCompleted *bool   `json:"isCompleted,omitempty"`
}

type Record struct {
	ID          string `json:"id,omitempty"`
	CreatedTime string `json:"createdTime,omitempty"`
	Fields      Fields `json:"fields"`
}

// ToTodo maps a record onto a Todo. A missing title becomes "" and a missing
// completion flag becomes false.
func (r Record) ToTodo() Todo {
	out := Todo{ID: r.ID}
	if r.Fields.Title != nil {
		out.Title = *r.Fields.Title
	}
	if r.Fields.IsCompleted != nil {
		out.IsCompleted = *r.Fields.IsCompleted
	}
	return out
}

func TodoFields(t Todo) Fields {
	title := t.Title
	completed := t.IsCompleted
	return Fields{Title: &title, IsCompleted: &completed}
}

func NewFields(title string, completed bool) Fields {
	return Fields{Title: &title, IsCompleted: &completed}
}

func PatchFields(p TodoPatch) Fields {
	return Fields{Title: p.Title, IsCompleted: p.IsCompleted}
}

func RecordsToTodos(records []Record) []Todo {
	out := make([]Todo, 0, len(records))
	for _, r := range records {
		out = append(out, r.ToTodo())
	}
	return out
}
