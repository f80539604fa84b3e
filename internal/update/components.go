package update

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/todoflow/internal/paging"
)

func (m *Model) initBubbleComponents() {
	m.addInput = textinput.New()
	m.addInput.Prompt = "todo> "
	m.addInput.Placeholder = "press a to add a todo"
	m.addInput.CharLimit = 256
	m.addInput.Width = 48

	m.searchInput = textinput.New()
	m.searchInput.Prompt = "search> "
	m.searchInput.Placeholder = "press / to search titles"
	m.searchInput.CharLimit = 128
	m.searchInput.Width = 40

	m.editInput = textinput.New()
	m.editInput.Prompt = ""
	m.editInput.CharLimit = 256
	m.editInput.Width = 48

	m.commandInput = textinput.New()
	m.commandInput.Prompt = ":"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	// A steady cursor keeps redraws tied to state changes.
	for _, in := range []*textinput.Model{&m.addInput, &m.searchInput, &m.editInput, &m.commandInput} {
		in.Cursor.SetMode(cursor.CursorStatic)
	}

	m.syncSpinner = spinner.New()
	m.syncSpinner.Spinner = spinner.Dot

	m.pager = paginator.New()
	m.pager.Type = paginator.Dots
	m.pager.PerPage = m.PerPage

	m.helpModel = help.New()
}

// focusOnly focuses the input that belongs to mode and blurs the rest.
func (m *Model) focusOnly(mode Mode) tea.Cmd {
	m.addInput.Blur()
	m.searchInput.Blur()
	m.editInput.Blur()
	m.commandInput.Blur()
	m.Mode = mode
	switch mode {
	case ModeAdd:
		return m.addInput.Focus()
	case ModeSearch:
		return m.searchInput.Focus()
	case ModeEdit:
		return m.editInput.Focus()
	case ModePalette:
		return m.commandInput.Focus()
	}
	return nil
}

func (m *Model) syncPager(w paging.Window, visible int) {
	m.pager.PerPage = m.PerPage
	m.pager.SetTotalPages(visible)
	if w.Page > 0 {
		m.pager.Page = w.Page - 1
	}
}

func (m Model) busy() bool {
	s := m.State()
	return s.IsLoading || s.IsSaving
}
