package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/todoflow/internal/debounce"
	"github.com/sandeepkv93/todoflow/internal/route"
	"github.com/sandeepkv93/todoflow/internal/views"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return RefreshMsg{} },
		waitForQueryCmd(m.debouncer),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.syncSpinner, cmd = m.syncSpinner.Update(typed)
			return m, cmd
		}
		return m, nil
	case RefreshMsg:
		cmd := m.fetch()
		return m, cmd
	case RouteMsg:
		m.navigate(route.Parse(typed.Path))
		return m, nil
	case actionMsg:
		return m.applyAction(typed), nil
	case queryCommittedMsg:
		return m.commitQuery(typed)
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.Quitting = true
		return m, tea.Quit
	}
	switch m.Mode {
	case ModeAdd:
		return m.handleAddKey(msg)
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeEdit:
		return m.handleEditKey(msg)
	case ModePalette:
		return m.handlePaletteKey(msg)
	}
	return m.handleBrowseKey(msg)
}

func (m Model) View() string {
	s := m.State()
	body := ""
	switch m.Route.Screen {
	case route.ScreenTodos:
		body = m.renderTodosScreen(s)
	case route.ScreenAbout:
		body = views.RenderAboutPage(aboutMarkdown)
	default:
		body = views.RenderNotFound(m.Route.Path)
	}
	if palette := views.RenderCommandPalette(m.commandInput.View(), m.Mode == ModePalette); palette != "" {
		body += "\n\n" + palette
	}

	status := m.Status.Text
	if status == "" && m.debouncer != nil && m.debouncer.Dropped() > 0 {
		status = fmt.Sprintf("%d search updates dropped", m.debouncer.Dropped())
	}

	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("todoflow | %s | mode: %s", m.Route.String(), m.Mode),
		Banner:     views.RenderErrorBanner(s.ErrorMessage, m.Keys.Dismiss),
		Body:       body,
		Side:       m.renderHelpIfVisible(),
		StatusLine: status,
		StatusErr:  m.Status.IsError,
		Footer: fmt.Sprintf("keys: %s add | %s search | %s cmd | %s todos | %s about | %s help | %s quit",
			m.Keys.Add, m.Keys.Search, m.Keys.Palette, m.Keys.Home, m.Keys.About, m.Keys.Help, m.Keys.Quit),
	})
}

// waitForQueryCmd blocks on the debouncer's output and reports one committed value.
func waitForQueryCmd(d *debounce.Debouncer) tea.Cmd {
	if d == nil {
		return nil
	}
	ch := d.C()
	return func() tea.Msg {
		value, ok := <-ch
		if !ok {
			return nil
		}
		return queryCommittedMsg{value: value, debounced: true}
	}
}

const aboutMarkdown = `# About todoflow

A terminal todo list backed by an Airtable-compatible record store.
Changes are applied locally first and rolled back if the store rejects them.
The list can be sorted, searched and paged.

Run ` + "`todoflow serve`" + ` for a local record store.
`
