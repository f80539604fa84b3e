package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/todoflow/internal/state"
)

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.focusOnly(ModeBrowse)
		return m, nil
	case "ctrl+u":
		m.searchInput.SetValue("")
		return m, m.pushQuery("")
	}
	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if after := m.searchInput.Value(); after != before {
		return m, tea.Batch(cmd, m.pushQuery(after))
	}
	return m, cmd
}

// pushQuery hands a keystroke's value to the debouncer. Without one the value commits at once.
func (m Model) pushQuery(value string) tea.Cmd {
	if m.debouncer == nil {
		return func() tea.Msg { return queryCommittedMsg{value: value} }
	}
	if err := m.debouncer.Push(value); err != nil {
		m.log.Warn("search input dropped", "error", err)
	}
	return nil
}

// setQuery commits a search immediately, cancelling any pending debounced value.
func (m *Model) setQuery(value string) tea.Cmd {
	if m.debouncer != nil {
		m.debouncer.Cancel()
	}
	m.searchInput.SetValue(value)
	if value == m.State().QueryString {
		return nil
	}
	m.ctrl.Dispatch(state.SetQueryString{Value: value})
	return m.fetch()
}

func (m Model) commitQuery(msg queryCommittedMsg) (tea.Model, tea.Cmd) {
	var next tea.Cmd
	if msg.debounced {
		next = waitForQueryCmd(m.debouncer)
	}
	if msg.value == m.State().QueryString {
		return m, next
	}
	m.ctrl.Dispatch(state.SetQueryString{Value: msg.value})
	return m, tea.Batch(next, m.fetch())
}
