package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/todoflow/internal/commands"
	"github.com/sandeepkv93/todoflow/internal/route"
	"github.com/sandeepkv93/todoflow/internal/state"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.commandInput.SetValue("")
		m.focusOnly(ModeBrowse)
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		return m.executePaletteCommand(m.commandInput.Value())
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	return m, cmd
}

func (m Model) executePaletteCommand(raw string) (tea.Model, tea.Cmd) {
	m.commandInput.SetValue("")
	m.focusOnly(ModeBrowse)

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var cmds []tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			op := m.ctrl.Add(a.Title)
			if op == nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "add requires a title"}
			}
			cmds = append(cmds, m.run(op, 0), m.syncSpinner.Tick)
			return commands.Result{Message: fmt.Sprintf("adding: %s", a.Title)}, nil
		},
		Search: func(s commands.SearchArgs) (commands.Result, error) {
			cmds = append(cmds, m.setQuery(s.Query))
			if s.Query == "" {
				return commands.Result{Message: "search cleared"}, nil
			}
			return commands.Result{Message: fmt.Sprintf("searching: %s", s.Query)}, nil
		},
		Sort: func(s commands.SortArgs) (commands.Result, error) {
			m.ctrl.Dispatch(state.SetSortField{Value: string(s.Field)})
			if s.Direction != "" {
				m.ctrl.Dispatch(state.SetSortDirection{Value: string(s.Direction)})
			}
			cmds = append(cmds, m.fetch())
			st := m.State()
			return commands.Result{Message: fmt.Sprintf("sorted by %s %s", st.SortField, st.SortDirection)}, nil
		},
		Direction: func(d commands.DirectionArgs) (commands.Result, error) {
			m.ctrl.Dispatch(state.SetSortDirection{Value: string(d.Direction)})
			cmds = append(cmds, m.fetch())
			return commands.Result{Message: fmt.Sprintf("direction %s", d.Direction)}, nil
		},
		Open: func(o commands.OpenArgs) (commands.Result, error) {
			m.navigate(route.Parse(o.Path))
			return commands.Result{Message: fmt.Sprintf("opened %s", m.Route.String())}, nil
		},
		Page: func(p commands.PageArgs) (commands.Result, error) {
			m.navigate(route.Home(p.Page))
			return commands.Result{Message: fmt.Sprintf("page %d", p.Page)}, nil
		},
		Done: func(d commands.DoneArgs) (commands.Result, error) {
			todo, ok := m.resolveTarget(d.Target)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no todo matches %q", d.Target)}
			}
			cmds = append(cmds, m.run(m.ctrl.Complete(todo.ID), 0))
			m.afterStateChange()
			return commands.Result{Message: fmt.Sprintf("completed: %s", todo.Title)}, nil
		},
		Rename: func(r commands.RenameArgs) (commands.Result, error) {
			todo, ok := m.resolveTarget(r.Target)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no todo matches %q", r.Target)}
			}
			cmds = append(cmds, m.run(m.ctrl.UpdateTitle(todo.ID, r.Title), 0))
			return commands.Result{Message: fmt.Sprintf("renamed: %s", r.Title)}, nil
		},
		Dismiss: func() (commands.Result, error) {
			m.ctrl.Dispatch(state.ClearError{})
			return commands.Result{Message: "error dismissed"}, nil
		},
		Refresh: func() (commands.Result, error) {
			cmds = append(cmds, m.fetch())
			return commands.Result{Message: "refreshing"}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	return m, tea.Batch(cmds...)
}
