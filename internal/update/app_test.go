package update

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/todoflow/internal/debounce"
	"github.com/sandeepkv93/todoflow/internal/route"
	"github.com/sandeepkv93/todoflow/internal/state"
	"github.com/sandeepkv93/todoflow/internal/testutil"
	"github.com/sandeepkv93/todoflow/internal/todos"
	"github.com/sandeepkv93/todoflow/internal/views"
)

func newTestModel(t *testing.T, fake *testutil.FakeService, d *debounce.Debouncer) Model {
	t.Helper()
	ctrl := todos.NewController(state.NewStore(state.Initial()), fake, nil)
	return NewModel(Options{Controller: ctrl, Debouncer: d, Context: t.Context()})
}

func seed(fake *testutil.FakeService, n int) {
	for i := 0; i < n; i++ {
		fake.AddRecord("", "todo", false)
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("unexpected model type %T", updated)
	}
	return next, cmd
}

// collect runs cmd and its batched children, returning the produced messages.
// Spinner ticks are dropped so that the loop terminates.
func collect(cmd tea.Cmd) []tea.Msg {
	var out []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			out = append(out, msg)
		}
	}
	return out
}

// drain feeds every message produced by cmd back into the model until no work is left.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	pending := collect(cmd)
	for len(pending) > 0 {
		msg := pending[0]
		pending = pending[1:]
		var next tea.Cmd
		m, next = send(t, m, msg)
		pending = append(pending, collect(next)...)
	}
	return m
}

func listCalls(fake *testutil.FakeService) []testutil.Call {
	var out []testutil.Call
	for _, c := range fake.Calls() {
		if c.Method == "list" {
			out = append(out, c)
		}
	}
	return out
}

func TestNewModelDefaults(t *testing.T) {
	m := newTestModel(t, testutil.NewFakeService(), nil)
	if m.Mode != ModeBrowse {
		t.Fatalf("expected browse mode, got %s", m.Mode)
	}
	if m.Route != route.Home(1) {
		t.Fatalf("expected todos route, got %#v", m.Route)
	}
	if m.PerPage != 15 {
		t.Fatalf("expected 15 todos per page, got %d", m.PerPage)
	}
	s := m.State()
	if s.SortField != "createdTime" || s.SortDirection != "desc" || s.QueryString != "" {
		t.Fatalf("unexpected initial view state: %#v", s)
	}
}

func TestInitLoadsTodos(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddRecord("r1", "Buy milk", false)
	fake.AddRecord("r2", "Done already", true)
	m := newTestModel(t, fake, nil)

	m, cmd := send(t, m, RefreshMsg{})
	if !m.State().IsLoading {
		t.Fatal("expected loading state after refresh")
	}
	if !strings.Contains(m.View(), views.LoadingText) {
		t.Fatal("expected loading text while the fetch is in flight")
	}

	m = drain(t, m, cmd)
	s := m.State()
	if s.IsLoading || len(s.Items) != 2 {
		t.Fatalf("unexpected state after load: %#v", s)
	}
	out := m.View()
	if !strings.Contains(out, "Buy milk") {
		t.Fatalf("expected open todo in view:\n%s", out)
	}
	if strings.Contains(out, "Done already") {
		t.Fatalf("completed todo must not be listed:\n%s", out)
	}

	calls := listCalls(fake)
	if len(calls) != 1 || calls[0].Query.SortField != "createdTime" || calls[0].Query.SortDirection != "desc" {
		t.Fatalf("unexpected list calls: %#v", calls)
	}
}

func TestEmptyListShowsHint(t *testing.T) {
	m := newTestModel(t, testutil.NewFakeService(), nil)
	m = drain(t, m, m.Init())
	if !strings.Contains(m.View(), views.EmptyListText) {
		t.Fatalf("expected empty hint:\n%s", m.View())
	}
}

func TestAddWhitespaceTitleIsIgnored(t *testing.T) {
	fake := testutil.NewFakeService()
	m := newTestModel(t, fake, nil)

	m, _ = send(t, m, runes("a"))
	if m.Mode != ModeAdd {
		t.Fatalf("expected add mode, got %s", m.Mode)
	}
	m, _ = send(t, m, runes("   "))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Fatal("expected no request for a blank title")
	}
	if m.State().IsSaving {
		t.Fatal("blank title must not start a request")
	}
	if len(fake.Calls()) != 0 {
		t.Fatalf("expected no service calls, got %#v", fake.Calls())
	}
	if !m.Status.IsError {
		t.Fatalf("expected error status, got %#v", m.Status)
	}
}

func TestAddTodoFlow(t *testing.T) {
	fake := testutil.NewFakeService()
	m := newTestModel(t, fake, nil)
	m = drain(t, m, m.Init())

	m, _ = send(t, m, runes("a"))
	m, _ = send(t, m, runes("Write tests"))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.State().IsSaving {
		t.Fatal("expected saving state while the create is in flight")
	}
	if !strings.Contains(m.View(), "saving") {
		t.Fatalf("expected saving indicator:\n%s", m.View())
	}

	m = drain(t, m, cmd)
	s := m.State()
	if s.IsSaving || len(s.Items) != 1 || s.Items[0].Title != "Write tests" {
		t.Fatalf("unexpected state after add: %#v", s)
	}
	if m.Mode != ModeAdd || m.addInput.Value() != "" {
		t.Fatalf("expected cleared add form to stay focused, mode=%s value=%q", m.Mode, m.addInput.Value())
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Mode != ModeBrowse {
		t.Fatalf("expected browse mode after esc, got %s", m.Mode)
	}
}

func TestAddFailureShowsBannerAndDismiss(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.CreateErr = errors.New("quota exceeded")
	m := newTestModel(t, fake, nil)

	m, _ = send(t, m, runes("a"))
	m, _ = send(t, m, runes("Walk dog"))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = drain(t, m, cmd)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	s := m.State()
	if s.IsSaving || s.ErrorMessage != "quota exceeded" || len(s.Items) != 0 {
		t.Fatalf("unexpected state after failed add: %#v", s)
	}
	if !strings.Contains(m.View(), "quota exceeded") {
		t.Fatalf("expected error banner:\n%s", m.View())
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.State().ErrorMessage != "" {
		t.Fatalf("expected error dismissed, got %q", m.State().ErrorMessage)
	}
}

func TestCompleteRevertsOnFailure(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddRecord("r1", "Buy milk", false)
	m := newTestModel(t, fake, nil)
	m = drain(t, m, m.Init())

	fake.PatchErr = errors.New("rejected")
	m, cmd := send(t, m, runes("x"))
	if strings.Contains(m.View(), "Buy milk") {
		t.Fatal("expected todo hidden before the store answers")
	}

	m = drain(t, m, cmd)
	s := m.State()
	if len(s.Items) != 1 || s.Items[0].IsCompleted {
		t.Fatalf("expected completion reverted, got %#v", s.Items)
	}
	if s.ErrorMessage != "rejected" {
		t.Fatalf("unexpected error message: %q", s.ErrorMessage)
	}
	if !strings.Contains(m.View(), "Buy milk") {
		t.Fatalf("expected reverted todo back in view:\n%s", m.View())
	}
}

func TestCompleteSendsOnlyCompletion(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddRecord("r1", "Buy milk", false)
	m := newTestModel(t, fake, nil)
	m = drain(t, m, m.Init())

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = drain(t, m, cmd)

	calls := fake.Calls()
	last := calls[len(calls)-1]
	if last.Method != "patch" || last.ID != "r1" {
		t.Fatalf("unexpected last call: %#v", last)
	}
	if last.Fields.Title != nil || last.Fields.IsCompleted == nil || !*last.Fields.IsCompleted {
		t.Fatalf("expected completion-only patch, got %#v", last.Fields)
	}
	if m.State().ErrorMessage != "" {
		t.Fatalf("unexpected error: %q", m.State().ErrorMessage)
	}
}

func TestEditTitle(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddRecord("r1", "Buy milk", false)
	m := newTestModel(t, fake, nil)
	m = drain(t, m, m.Init())

	m, _ = send(t, m, runes("e"))
	if m.Mode != ModeEdit || m.EditingID != "r1" || m.editInput.Value() != "Buy milk" {
		t.Fatalf("unexpected edit state: mode=%s id=%s value=%q", m.Mode, m.EditingID, m.editInput.Value())
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	m, _ = send(t, m, runes("Buy oat milk"))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Mode != ModeBrowse {
		t.Fatalf("expected browse mode after edit, got %s", m.Mode)
	}
	if got, _ := m.State().Find("r1"); got.Title != "Buy oat milk" {
		t.Fatalf("expected optimistic rename, got %#v", got)
	}

	m = drain(t, m, cmd)
	calls := fake.Calls()
	last := calls[len(calls)-1]
	if last.Method != "patch" || last.Fields.Title == nil || *last.Fields.Title != "Buy oat milk" {
		t.Fatalf("unexpected rename call: %#v", last)
	}
}

func TestEditBlankTitleIsDiscarded(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddRecord("r1", "Buy milk", false)
	m := newTestModel(t, fake, nil)
	m = drain(t, m, m.Init())
	before := len(fake.Calls())

	m, _ = send(t, m, runes("e"))
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || len(fake.Calls()) != before {
		t.Fatal("blank edit must not reach the store")
	}
	if got, _ := m.State().Find("r1"); got.Title != "Buy milk" {
		t.Fatalf("expected title kept, got %q", got.Title)
	}
	if m.Status.Text != "empty title discarded" {
		t.Fatalf("unexpected status: %#v", m.Status)
	}
}

func TestStaleFetchIsDropped(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddRecord("r1", "first", false)
	m := newTestModel(t, fake, nil)

	m, first := send(t, m, runes("r"))
	firstMsgs := collect(first)

	fake.AddRecord("r2", "second", false)
	m, second := send(t, m, runes("r"))
	secondMsgs := collect(second)

	for _, msg := range secondMsgs {
		m, _ = send(t, m, msg)
	}
	for _, msg := range firstMsgs {
		m, _ = send(t, m, msg)
	}

	s := m.State()
	if s.IsLoading || len(s.Items) != 2 {
		t.Fatalf("expected newest fetch to win, got %#v", s)
	}
}

func TestAddDuringRefreshStaysBusy(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddRecord("r1", "first", false)
	m := newTestModel(t, fake, nil)

	m, refresh := send(t, m, runes("r"))
	refreshMsgs := collect(refresh)

	m, _ = send(t, m, runes("a"))
	m, _ = send(t, m, runes("x"))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = drain(t, m, cmd)

	s := m.State()
	if s.IsSaving || !s.IsLoading || !m.busy() {
		t.Fatalf("expected the refresh to stay pending after the create, got %#v", s)
	}

	for _, msg := range refreshMsgs {
		m, _ = send(t, m, msg)
	}
	s = m.State()
	if s.IsLoading || m.busy() || len(s.Items) != 1 {
		t.Fatalf("expected the refresh to settle the list, got %#v", s)
	}
}

func TestSortKeysRefetch(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddRecord("r1", "b", false)
	fake.AddRecord("r2", "a", false)
	m := newTestModel(t, fake, nil)
	m = drain(t, m, m.Init())

	m, cmd := send(t, m, runes("s"))
	m = drain(t, m, cmd)
	m, cmd = send(t, m, runes("d"))
	m = drain(t, m, cmd)

	s := m.State()
	if s.SortField != "title" || s.SortDirection != "asc" {
		t.Fatalf("unexpected sort: %s %s", s.SortField, s.SortDirection)
	}
	calls := listCalls(fake)
	last := calls[len(calls)-1].Query
	if last.SortField != "title" || last.SortDirection != "asc" {
		t.Fatalf("unexpected query: %#v", last)
	}
	if s.Items[0].Title != "a" {
		t.Fatalf("expected title order, got %#v", s.Items)
	}
}

func TestSearchCommitsImmediatelyWithoutDebouncer(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddRecord("r1", "Buy milk", false)
	fake.AddRecord("r2", "Walk dog", false)
	m := newTestModel(t, fake, nil)
	m = drain(t, m, m.Init())

	m, _ = send(t, m, runes("/"))
	if m.Mode != ModeSearch {
		t.Fatalf("expected search mode, got %s", m.Mode)
	}
	m, cmd := send(t, m, runes("milk"))
	m = drain(t, m, cmd)

	s := m.State()
	if s.QueryString != "milk" || len(s.Items) != 1 || s.Items[0].ID != "r1" {
		t.Fatalf("unexpected search result: %#v", s)
	}
	calls := listCalls(fake)
	if got := calls[len(calls)-1].Query.Search; got != "milk" {
		t.Fatalf("expected search in query, got %q", got)
	}

	m, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	m = drain(t, m, cmd)
	if m.State().QueryString != "" || len(m.State().Items) != 2 {
		t.Fatalf("expected search cleared, got %#v", m.State())
	}
}

func TestSearchIsDebounced(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddRecord("r1", "Buy milk", false)
	d := debounce.New(20*time.Millisecond, 4)
	d.Start()
	t.Cleanup(d.Stop)

	m := newTestModel(t, fake, d)
	m, _ = send(t, m, runes("/"))
	m, _ = send(t, m, runes("m"))
	m, _ = send(t, m, runes("i"))
	if m.State().QueryString != "" {
		t.Fatal("query must not change before the quiet period")
	}
	if len(listCalls(fake)) != 0 {
		t.Fatal("no fetch expected while typing")
	}

	msg := waitForQueryCmd(d)()
	committed, ok := msg.(queryCommittedMsg)
	if !ok || committed.value != "mi" || !committed.debounced {
		t.Fatalf("unexpected commit: %#v", msg)
	}
	m, cmd := send(t, m, committed)
	if m.State().QueryString != "mi" || !m.State().IsLoading {
		t.Fatalf("expected committed query to start a fetch, got %#v", m.State())
	}

	// Closing the channel ends the re-armed wait so the fetch can be drained.
	d.Stop()
	m = drain(t, m, cmd)
	calls := listCalls(fake)
	if len(calls) != 1 || calls[0].Query.Search != "mi" {
		t.Fatalf("expected one search fetch, got %#v", calls)
	}
	if m.State().IsLoading {
		t.Fatal("expected fetch finished")
	}
}

func TestPageGuardRedirectsHome(t *testing.T) {
	fake := testutil.NewFakeService()
	seed(fake, 20)
	m := newTestModel(t, fake, nil)
	m = drain(t, m, m.Init())

	m, _ = send(t, m, RouteMsg{Path: "/?page=2"})
	if m.Route.Page != "2" {
		t.Fatalf("expected page 2 kept, got %#v", m.Route)
	}
	if !strings.Contains(m.View(), "Page 2 of 2") {
		t.Fatalf("expected pager on page 2:\n%s", m.View())
	}

	for _, raw := range []string{"/?page=3", "/?page=0", "/?page=abc"} {
		m, _ = send(t, m, RouteMsg{Path: raw})
		if m.Route != route.Home(1) {
			t.Fatalf("%s: expected redirect to page one, got %#v", raw, m.Route)
		}
	}
}

func TestPageGuardWaitsForLoad(t *testing.T) {
	fake := testutil.NewFakeService()
	seed(fake, 20)
	ctrl := todos.NewController(state.NewStore(state.Initial()), fake, nil)
	m := NewModel(Options{Controller: ctrl, StartPath: "/?page=2", Context: t.Context()})

	m, cmd := send(t, m, RefreshMsg{})
	if m.Route.Page != "2" {
		t.Fatalf("guard must not redirect while loading, got %#v", m.Route)
	}
	m = drain(t, m, cmd)
	if m.Route.Page != "2" {
		t.Fatalf("page 2 is valid once loaded, got %#v", m.Route)
	}
}

func TestEmptyListDoesNotRedirect(t *testing.T) {
	m := newTestModel(t, testutil.NewFakeService(), nil)
	m = drain(t, m, m.Init())
	m, _ = send(t, m, RouteMsg{Path: "/?page=9"})
	if m.Route.Page != "9" {
		t.Fatalf("expected no redirect for an empty list, got %#v", m.Route)
	}
}

func TestCompletingLastItemOnPageRedirects(t *testing.T) {
	fake := testutil.NewFakeService()
	seed(fake, 16)
	m := newTestModel(t, fake, nil)
	m = drain(t, m, m.Init())

	m, _ = send(t, m, runes("n"))
	if m.Route.Page != "2" {
		t.Fatalf("expected next page, got %#v", m.Route)
	}
	m, cmd := send(t, m, runes("x"))
	if m.Route != route.Home(1) {
		t.Fatalf("expected redirect once page 2 emptied, got %#v", m.Route)
	}
	drain(t, m, cmd)
}

func TestCursorMovesWithinPage(t *testing.T) {
	fake := testutil.NewFakeService()
	seed(fake, 3)
	m := newTestModel(t, fake, nil)
	m = drain(t, m, m.Init())

	m, _ = send(t, m, runes("j"))
	m, _ = send(t, m, runes("j"))
	if m.Cursor != 2 {
		t.Fatalf("expected cursor 2, got %d", m.Cursor)
	}
	m, _ = send(t, m, runes("j"))
	if m.Cursor != 0 {
		t.Fatalf("expected cursor to wrap, got %d", m.Cursor)
	}
	m, _ = send(t, m, runes("k"))
	if m.Cursor != 2 {
		t.Fatalf("expected cursor to wrap back, got %d", m.Cursor)
	}
}

func TestPaletteCommands(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddRecord("r1", "Buy milk", false)
	m := newTestModel(t, fake, nil)
	m = drain(t, m, m.Init())

	run := func(m Model, line string) (Model, tea.Cmd) {
		t.Helper()
		m, _ = send(t, m, runes(":"))
		if m.Mode != ModePalette {
			t.Fatalf("expected palette mode, got %s", m.Mode)
		}
		m, _ = send(t, m, runes(line))
		return send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	}

	m, cmd := run(m, "sort title asc")
	m = drain(t, m, cmd)
	if s := m.State(); s.SortField != "title" || s.SortDirection != "asc" {
		t.Fatalf("unexpected sort after palette: %#v", s)
	}
	if m.Mode != ModeBrowse || m.Status.IsError {
		t.Fatalf("unexpected palette result: mode=%s status=%#v", m.Mode, m.Status)
	}

	m, cmd = run(m, "add Walk dog")
	m = drain(t, m, cmd)
	if len(m.State().Items) != 2 {
		t.Fatalf("expected todo added, got %#v", m.State().Items)
	}

	m, cmd = run(m, "rename r1 Buy oat milk")
	m = drain(t, m, cmd)
	if got, _ := m.State().Find("r1"); got.Title != "Buy oat milk" {
		t.Fatalf("expected rename, got %#v", got)
	}

	m, cmd = run(m, "done r1")
	m = drain(t, m, cmd)
	if got, _ := m.State().Find("r1"); !got.IsCompleted {
		t.Fatalf("expected completion, got %#v", got)
	}

	m, _ = run(m, "done nope")
	if !m.Status.IsError {
		t.Fatalf("expected error for unknown target, got %#v", m.Status)
	}

	m, _ = run(m, "bogus")
	if !m.Status.IsError {
		t.Fatalf("expected error for unknown command, got %#v", m.Status)
	}

	m, _ = run(m, "open /about")
	if m.Route.Screen != route.ScreenAbout {
		t.Fatalf("expected about screen, got %#v", m.Route)
	}
}

func TestPaletteSearchCommitsAtOnce(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddRecord("r1", "Buy milk", false)
	fake.AddRecord("r2", "Walk dog", false)
	d := debounce.New(time.Hour, 1)
	d.Start()
	t.Cleanup(d.Stop)
	m := newTestModel(t, fake, d)

	m, _ = send(t, m, runes(":"))
	m, _ = send(t, m, runes("search dog"))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = drain(t, m, cmd)

	if m.State().QueryString != "dog" || len(m.State().Items) != 1 {
		t.Fatalf("unexpected search state: %#v", m.State())
	}
	if _, armed := d.Pending(); armed {
		t.Fatal("palette search must not leave a pending debounced value")
	}
}

func TestNavigationScreens(t *testing.T) {
	m := newTestModel(t, testutil.NewFakeService(), nil)

	m, _ = send(t, m, runes("2"))
	if m.Route.Screen != route.ScreenAbout {
		t.Fatalf("expected about screen, got %#v", m.Route)
	}
	if !strings.Contains(m.View(), "todoflow") {
		t.Fatalf("expected about content:\n%s", m.View())
	}
	// List keys are inert off the todos screen.
	m, _ = send(t, m, runes("a"))
	if m.Mode != ModeBrowse {
		t.Fatalf("expected add key ignored on about, got %s", m.Mode)
	}

	m, _ = send(t, m, RouteMsg{Path: "/missing"})
	if m.Route.Screen != route.ScreenNotFound {
		t.Fatalf("expected not found screen, got %#v", m.Route)
	}
	if !strings.Contains(m.View(), views.NotFoundTitle) {
		t.Fatalf("expected not found content:\n%s", m.View())
	}

	m, _ = send(t, m, runes("1"))
	if m.Route != route.Home(1) {
		t.Fatalf("expected home, got %#v", m.Route)
	}
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(t, testutil.NewFakeService(), nil)
	m, _ = send(t, m, runes("?"))
	if !m.HelpVisible || !strings.Contains(m.View(), "help (") {
		t.Fatalf("expected help panel:\n%s", m.View())
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.HelpVisible {
		t.Fatal("expected esc to hide help")
	}
}

func TestStatusMessages(t *testing.T) {
	m := newTestModel(t, testutil.NewFakeService(), nil)
	m, _ = send(t, m, SetStatusMsg{Text: "hello", IsError: true})
	if m.Status.Text != "hello" || !m.Status.IsError {
		t.Fatalf("unexpected status: %#v", m.Status)
	}
	m, _ = send(t, m, ClearStatusMsg{})
	if m.Status != (StatusBar{}) {
		t.Fatalf("expected cleared status, got %#v", m.Status)
	}
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(t, testutil.NewFakeService(), nil)
	m, cmd := send(t, m, runes("q"))
	if !m.Quitting || cmd == nil {
		t.Fatal("expected quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected quit message")
	}

	m = newTestModel(t, testutil.NewFakeService(), nil)
	m, _ = send(t, m, runes("a"))
	m, _ = send(t, m, runes("q"))
	if m.Quitting {
		t.Fatal("q must be typed into the add form")
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if !m.Quitting {
		t.Fatal("ctrl+c quits from any mode")
	}
}
