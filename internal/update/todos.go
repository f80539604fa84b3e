package update

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/todoflow/internal/model"
	"github.com/sandeepkv93/todoflow/internal/paging"
	"github.com/sandeepkv93/todoflow/internal/route"
	"github.com/sandeepkv93/todoflow/internal/state"
	"github.com/sandeepkv93/todoflow/internal/todos"
	"github.com/sandeepkv93/todoflow/internal/views"
)

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case m.Keys.Home:
		m.navigate(route.Home(1))
		return m, nil
	case m.Keys.About:
		m.navigate(route.Parse(route.AboutPath))
		return m, nil
	case m.Keys.Palette:
		m.commandInput.SetValue("")
		return m, m.focusOnly(ModePalette)
	case m.Keys.Dismiss:
		if m.State().ErrorMessage != "" {
			m.ctrl.Dispatch(state.ClearError{})
			return m, nil
		}
		m.HelpVisible = false
		m.Status = StatusBar{}
		return m, nil
	}
	if m.Route.Screen != route.ScreenTodos {
		return m, nil
	}

	switch msg.String() {
	case m.Keys.Add:
		return m, m.focusOnly(ModeAdd)
	case m.Keys.Search:
		return m, m.focusOnly(ModeSearch)
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "x", " ":
		return m.completeSelected()
	case "e", "enter":
		todo, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.EditingID = todo.ID
		m.editInput.SetValue(todo.Title)
		m.editInput.CursorEnd()
		return m, m.focusOnly(ModeEdit)
	case "s":
		next := model.SortField(m.State().SortField).Next()
		m.ctrl.Dispatch(state.SetSortField{Value: string(next)})
		m.Status = StatusBar{Text: "sorted by " + string(next)}
		return m, m.fetch()
	case "d":
		next := model.SortDirection(m.State().SortDirection).Toggle()
		m.ctrl.Dispatch(state.SetSortDirection{Value: string(next)})
		m.Status = StatusBar{Text: "direction " + string(next)}
		return m, m.fetch()
	case "r":
		return m, m.fetch()
	case "n", "right", "l":
		w, _ := m.window()
		if w.Page < w.TotalPages {
			m.navigate(route.Home(w.Page + 1))
		}
	case "p", "left", "h":
		w, _ := m.window()
		if w.Page > 1 {
			m.navigate(route.Home(w.Page - 1))
		}
	}
	return m, nil
}

func (m Model) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.addInput.Reset()
		m.focusOnly(ModeBrowse)
		return m, nil
	case "enter":
		op := m.ctrl.Add(m.addInput.Value())
		if op == nil {
			m.Status = StatusBar{Text: "title is required", IsError: true}
			return m, nil
		}
		// The form stays focused for the next entry.
		m.addInput.Reset()
		m.Status = StatusBar{}
		return m, tea.Batch(m.run(op, 0), m.syncSpinner.Tick)
	}
	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	return m, cmd
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.EditingID = ""
		m.focusOnly(ModeBrowse)
		return m, nil
	case "enter":
		id, title := m.EditingID, m.editInput.Value()
		m.EditingID = ""
		m.focusOnly(ModeBrowse)
		if err := model.ValidateTitle(title); err != nil {
			m.Status = StatusBar{Text: "empty title discarded", IsError: true}
			return m, nil
		}
		op := m.ctrl.UpdateTitle(id, title)
		if op == nil {
			m.Status = StatusBar{Text: "todo no longer in the list", IsError: true}
			return m, nil
		}
		return m, m.run(op, 0)
	}
	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	return m, cmd
}

func (m Model) completeSelected() (tea.Model, tea.Cmd) {
	todo, ok := m.selected()
	if !ok {
		return m, nil
	}
	op := m.ctrl.Complete(todo.ID)
	m.afterStateChange()
	return m, m.run(op, 0)
}

// fetch dispatches a load and tags the request so that only the newest result is applied.
func (m *Model) fetch() tea.Cmd {
	m.fetchSeq++
	op := m.ctrl.Fetch()
	return tea.Batch(m.run(op, m.fetchSeq), m.syncSpinner.Tick)
}

func (m Model) run(op todos.Op, fetchSeq int) tea.Cmd {
	if op == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return actionMsg{action: op(ctx), fetchSeq: fetchSeq}
	}
}

func (m Model) applyAction(msg actionMsg) Model {
	if msg.fetchSeq != 0 && msg.fetchSeq != m.fetchSeq {
		m.log.Debug("dropping stale fetch result", "seq", msg.fetchSeq, "latest", m.fetchSeq)
		return m
	}
	m.ctrl.Dispatch(msg.action)
	m.afterStateChange()
	return m
}

func (m *Model) navigate(r route.Route) {
	m.Route = r
	m.Cursor = 0
	m.afterStateChange()
}

// afterStateChange keeps the cursor on the page and applies the page guard.
func (m *Model) afterStateChange() {
	if m.Route.Screen != route.ScreenTodos {
		return
	}
	s := m.State()
	// The list is not shown while loading, so the guard waits for the result.
	if !s.IsLoading {
		visible := model.Incomplete(s.Items)
		if _, ok := paging.Resolve(m.Route.Page, len(visible), m.PerPage); !ok {
			m.log.Debug("page out of range, redirecting home", "page", m.Route.Page, "visible", len(visible))
			m.Route = route.Home(1)
			m.Cursor = 0
		}
	}
	_, rows := m.window()
	if m.Cursor >= len(rows) {
		m.Cursor = len(rows) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m *Model) moveCursor(delta int) {
	_, rows := m.window()
	if len(rows) == 0 {
		m.Cursor = 0
		return
	}
	m.Cursor = (m.Cursor + delta + len(rows)) % len(rows)
}

// window returns the visible rows of the current page. Out of range pages show page one.
func (m Model) window() (paging.Window, []model.Todo) {
	visible := model.Incomplete(m.State().Items)
	w, _ := paging.Resolve(m.Route.Page, len(visible), m.PerPage)
	return w, paging.Slice(visible, w)
}

func (m Model) selected() (model.Todo, bool) {
	_, rows := m.window()
	if m.Cursor < 0 || m.Cursor >= len(rows) {
		return model.Todo{}, false
	}
	return rows[m.Cursor], true
}

// resolveTarget accepts a record id or a 1-based row number on the current page.
func (m Model) resolveTarget(target string) (model.Todo, bool) {
	if todo, ok := m.State().Find(target); ok {
		return todo, true
	}
	row, err := strconv.Atoi(target)
	if err != nil {
		return model.Todo{}, false
	}
	_, rows := m.window()
	if row < 1 || row > len(rows) {
		return model.Todo{}, false
	}
	return rows[row-1], true
}

func (m Model) renderTodosScreen(s state.State) string {
	w, rows := m.window()
	m.syncPager(w, len(model.Incomplete(s.Items)))

	data := views.TodosPanelData{
		AddView:     m.addInput.View(),
		Adding:      m.Mode == ModeAdd,
		IsSaving:    s.IsSaving,
		IsLoading:   s.IsLoading,
		SpinnerView: m.syncSpinner.View(),
		Page:        w.Page,
		TotalPages:  w.TotalPages,
		PagerView:   m.pager.View(),
	}
	for i, todo := range rows {
		row := views.TodoRowData{ID: todo.ID, Title: todo.Title, Selected: i == m.Cursor}
		if m.Mode == ModeEdit && todo.ID == m.EditingID {
			row.Editing = true
			row.EditView = m.editInput.View()
		}
		data.Rows = append(data.Rows, row)
	}

	form := views.RenderViewForm(views.ViewFormData{
		SortField:     s.SortField,
		SortDirection: s.SortDirection,
		SearchView:    m.searchInput.View(),
		Searching:     m.Mode == ModeSearch,
		PendingQuery:  m.searchInput.Value() != s.QueryString,
	})
	return views.RenderTodosPanel(data) + "\n\n" + form
}
