package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/todoflow/internal/route"
	"github.com/sandeepkv93/todoflow/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.screenBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		Screen:   string(m.Route.Screen),
		Bindings: plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Home, Action: "todo list"},
		{Key: m.Keys.About, Action: "about"},
		{Key: m.Keys.Palette, Action: "command palette"},
		{Key: m.Keys.Dismiss, Action: "dismiss error"},
		{Key: m.Keys.Help, Action: "toggle help"},
		{Key: m.Keys.Quit, Action: "quit"},
	}
}

func (m Model) screenBindings() []KeyBinding {
	switch {
	case m.Mode == ModeAdd:
		return []KeyBinding{{Key: "enter", Action: "add todo"}, {Key: "esc", Action: "stop adding"}}
	case m.Mode == ModeSearch:
		return []KeyBinding{{Key: "ctrl+u", Action: "clear search"}, {Key: "enter/esc", Action: "leave search"}}
	case m.Mode == ModeEdit:
		return []KeyBinding{{Key: "enter", Action: "save title"}, {Key: "esc", Action: "cancel edit"}}
	case m.Mode == ModePalette:
		return []KeyBinding{
			{Key: "add <title>", Action: "add todo"},
			{Key: "search [q]", Action: "search or clear"},
			{Key: "sort <field> [dir]", Action: "title or createdTime"},
			{Key: "dir <asc|desc>", Action: "sort direction"},
			{Key: "done <id|row>", Action: "complete todo"},
			{Key: "rename <id|row> <title>", Action: "rename todo"},
			{Key: "open <path>", Action: "go to / or /about"},
			{Key: "page <n>", Action: "jump to page"},
		}
	case m.Route.Screen == route.ScreenTodos:
		return []KeyBinding{
			{Key: m.Keys.Add, Action: "add todo"},
			{Key: m.Keys.Search, Action: "search titles"},
			{Key: "j/k", Action: "move cursor"},
			{Key: "x/space", Action: "complete"},
			{Key: "e/enter", Action: "edit title"},
			{Key: "s/d", Action: "sort field / direction"},
			{Key: "n/p", Action: "next / previous page"},
			{Key: "r", Action: "reload"},
		}
	default:
		return []KeyBinding{{Key: m.Keys.Home, Action: "back to the list"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	global := m.globalBindings()
	screen := m.screenBindings()
	out := make([]key.Binding, 0, len(global)+len(screen))
	for _, kb := range global {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range screen {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
