package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/sandeepkv93/todoflow/internal/model"
)

const emptyListText = "no open todos"

// writeTodos prints one row per todo: a right-aligned number starting at first,
// the record id and the title.
func writeTodos(w io.Writer, items []model.Todo, first int) {
	if len(items) == 0 {
		fmt.Fprintln(w, emptyListText)
		return
	}
	for i, todo := range items {
		fmt.Fprintf(w, "%4d  %s  %s\n", first+i, todo.ID, displayTitle(todo.Title))
	}
}

// displayTitle keeps a row on one line.
func displayTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
