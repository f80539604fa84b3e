package update

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/hashicorp/go-hclog"

	"github.com/sandeepkv93/todoflow/internal/debounce"
	"github.com/sandeepkv93/todoflow/internal/paging"
	"github.com/sandeepkv93/todoflow/internal/route"
	"github.com/sandeepkv93/todoflow/internal/state"
	"github.com/sandeepkv93/todoflow/internal/todos"
)

// Mode is the input that currently owns the keyboard.
type Mode string

const (
	ModeBrowse  Mode = "browse"
	ModeAdd     Mode = "add"
	ModeSearch  Mode = "search"
	ModeEdit    Mode = "edit"
	ModePalette Mode = "palette"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Home    string
	About   string
	Add     string
	Search  string
	Palette string
	Help    string
	Dismiss string
	Quit    string
}

// Options wires the model. Controller is required.
type Options struct {
	Controller *todos.Controller
	Debouncer  *debounce.Debouncer
	PerPage    int
	Logger     hclog.Logger
	// Context bounds every request issued by the UI. Defaults to context.Background.
	Context context.Context
	// StartPath is the initial route, "/" when empty.
	StartPath string
}

type Model struct {
	Route       route.Route
	Mode        Mode
	Cursor      int
	EditingID   string
	Status      StatusBar
	HelpVisible bool
	Keys        GlobalKeyMap
	PerPage     int
	Quitting    bool

	ctrl      *todos.Controller
	debouncer *debounce.Debouncer
	log       hclog.Logger
	ctx       context.Context
	fetchSeq  int

	addInput     textinput.Model
	searchInput  textinput.Model
	editInput    textinput.Model
	commandInput textinput.Model
	syncSpinner  spinner.Model
	pager        paginator.Model
	helpModel    help.Model
}

// RouteMsg navigates to an in-app path such as "/", "/?page=2" or "/about".
type RouteMsg struct {
	Path string
}

// RefreshMsg reloads the list with the current view parameters.
type RefreshMsg struct{}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

// actionMsg carries the follow-up of a request back onto the update loop.
// fetchSeq is zero for writes.
type actionMsg struct {
	action   state.Action
	fetchSeq int
}

// queryCommittedMsg is a search value that survived the quiet period.
// debounced is set when it came off the debouncer, which must then be re-awaited.
type queryCommittedMsg struct {
	value     string
	debounced bool
}

func NewModel(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = paging.DefaultPerPage
	}
	ctrl := opts.Controller

	m := Model{
		Route:   route.Parse(opts.StartPath),
		Mode:    ModeBrowse,
		PerPage: perPage,
		Keys: GlobalKeyMap{
			Home:    "1",
			About:   "2",
			Add:     "a",
			Search:  "/",
			Palette: ":",
			Help:    "?",
			Dismiss: "esc",
			Quit:    "q",
		},
		ctrl:      ctrl,
		debouncer: opts.Debouncer,
		log:       logger.Named("tui"),
		ctx:       ctx,
	}
	m.initBubbleComponents()
	m.searchInput.SetValue(ctrl.State().QueryString)
	return m
}

// State is the current reducer state.
func (m Model) State() state.State {
	return m.ctrl.State()
}
