package views

import (
	"fmt"
	"strings"
)

type TodoRowData struct {
	ID       string
	Title    string
	Selected bool
	Editing  bool
	EditView string
}

type TodosPanelData struct {
	AddView     string
	Adding      bool
	IsSaving    bool
	IsLoading   bool
	SpinnerView string
	Rows        []TodoRowData
	Page        int
	TotalPages  int
	PagerView   string
}

type ViewFormData struct {
	SortField     string
	SortDirection string
	SearchView    string
	Searching     bool
	PendingQuery  bool
}

type HelpPanelData struct {
	Screen   string
	Bindings []string
	HelpView string
}

const (
	LoadingText    = "Todo list loading..."
	EmptyListText  = "Add todo above to get started"
	NotFoundTitle  = "Page not found"
	notFoundDetail = "The page you requested does not exist. Press [1] to go back home."
)

func RenderTodosPanel(data TodosPanelData) string {
	var b strings.Builder
	b.WriteString(data.AddView)
	if data.IsSaving {
		b.WriteString("  " + data.SpinnerView + " saving...")
	}
	b.WriteString("\n\n")

	switch {
	case data.IsLoading:
		b.WriteString(data.SpinnerView + " " + LoadingText)
	case len(data.Rows) == 0:
		b.WriteString(mutedStyle.Render(EmptyListText))
	default:
		for _, row := range data.Rows {
			b.WriteString(renderTodoRow(row) + "\n")
		}
		if data.TotalPages > 1 {
			b.WriteString(fmt.Sprintf("\nPage %d of %d  %s", data.Page, data.TotalPages, data.PagerView))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderTodoRow(row TodoRowData) string {
	prefix := "  "
	if row.Selected {
		prefix = cursorStyle.Render("> ")
	}
	if row.Editing {
		return prefix + "[ ] " + row.EditView
	}
	return prefix + "[ ] " + row.Title
}

func RenderViewForm(data ViewFormData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("sort by: %s  direction: %s\n", data.SortField, data.SortDirection))
	b.WriteString(data.SearchView)
	if data.PendingQuery {
		b.WriteString(mutedStyle.Render("  (typing)"))
	}
	return b.String()
}

func RenderAboutPage(markdown string) string {
	return RenderMarkdown(markdown)
}

func RenderNotFound(path string) string {
	return strings.Join([]string{
		headerStyle.Render(NotFoundTitle),
		fmt.Sprintf("%s: %s", mutedStyle.Render("path"), path),
		notFoundDetail,
	}, "\n")
}

func RenderHelpPanel(data HelpPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("help (%s):\n", data.Screen))
	for _, line := range data.Bindings {
		b.WriteString(line + "\n")
	}
	if data.HelpView != "" {
		b.WriteString("\n" + data.HelpView)
	}
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(inputView string, active bool) string {
	if !active {
		return ""
	}
	return "command: " + inputView
}
