// Package cli wires configuration, logging and the record store client into
// the todoflow cobra commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/todoflow/internal/backend/airtable"
	"github.com/sandeepkv93/todoflow/internal/config"
	"github.com/sandeepkv93/todoflow/internal/exitcode"
	"github.com/sandeepkv93/todoflow/internal/logging"
	"github.com/sandeepkv93/todoflow/internal/model"
	"github.com/sandeepkv93/todoflow/internal/service"
	"github.com/sandeepkv93/todoflow/internal/state"
	"github.com/sandeepkv93/todoflow/internal/todos"
)

// ServiceFactory creates the record store client for one invocation.
type ServiceFactory func(ctx context.Context, cfg config.RuntimeConfig, logger hclog.Logger) (service.Service, error)

// App holds the process-wide dependencies of the commands. Zero fields get defaults.
type App struct {
	Out     io.Writer
	Err     io.Writer
	Version string

	NewService ServiceFactory
	RunProgram func(ctx context.Context, m tea.Model) error
}

// Run executes args and returns the process exit code.
func Run(ctx context.Context, args []string, app App) int {
	root := NewRootCommand(&app)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(app.errOut(), "error: %v\n", err)
	}
	return ExitCode(err)
}

// NewRootCommand builds the command tree. Without a subcommand the interactive UI starts.
func NewRootCommand(app *App) *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:   "todoflow",
		Short: "Terminal todo list backed by an Airtable-compatible record store",
		Long: `todoflow keeps a todo list in an Airtable table (or any server speaking
the same REST dialect, such as "todoflow serve").

Changes are shown immediately and rolled back when the store rejects them.
Credentials and settings come from TODOFLOW_* environment variables or --config.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runTUI(cmd.Context(), configPath, "")
		},
	}
	root.SetOut(app.out())
	root.SetErr(app.errOut())
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		newTUICommand(app, &configPath),
		newListCommand(app, &configPath),
		newAddCommand(app, &configPath),
		newDoneCommand(app, &configPath),
		newRenameCommand(app, &configPath),
		newServeCommand(app, &configPath),
		newVersionCommand(app),
	)
	return root
}

func (a *App) out() io.Writer {
	if a.Out == nil {
		return os.Stdout
	}
	return a.Out
}

func (a *App) errOut() io.Writer {
	if a.Err == nil {
		return os.Stderr
	}
	return a.Err
}

func (a *App) newService() ServiceFactory {
	if a.NewService != nil {
		return a.NewService
	}
	return newAirtableService
}

func newAirtableService(ctx context.Context, cfg config.RuntimeConfig, logger hclog.Logger) (service.Service, error) {
	return airtable.New(ctx, airtable.Options{
		BaseURL: cfg.BaseURL,
		BaseID:  cfg.BaseID,
		Table:   cfg.Table,
		Token:   cfg.Token,
		Timeout: cfg.RequestTimeout,
		Logger:  logger,
	})
}

// session is the configuration and logger of one command invocation.
type session struct {
	cfg   config.RuntimeConfig
	log   hclog.Logger
	close func() error
}

// open loads configuration and builds the logger. A nil logTo logs only to the
// configured log file.
func (a *App) open(configPath string, logTo io.Writer) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, configError(err)
	}
	logger, closeLog, err := logging.New(cfg, logTo)
	if err != nil {
		return nil, configError(err)
	}
	return &session{cfg: cfg, log: logger, close: closeLog}, nil
}

// connect validates the credentials and returns a controller over a fresh store.
func (a *App) connect(ctx context.Context, s *session) (*todos.Controller, *recordingService, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, nil, configError(err)
	}
	svc, err := a.newService()(ctx, s.cfg, s.log)
	if err != nil {
		return nil, nil, classify(err)
	}
	rec := &recordingService{Service: svc}
	return todos.NewController(state.NewStore(state.Initial()), rec, s.log), rec, nil
}

// fetchAll loads every record with the default view so ids can be resolved.
func fetchAll(ctx context.Context, ctrl *todos.Controller, rec *recordingService) (state.State, error) {
	s := ctrl.Run(ctx, ctrl.Fetch())
	if s.ErrorMessage != "" {
		return s, rec.failure(s.ErrorMessage)
	}
	return s, nil
}

func findOrFail(s state.State, id string) (model.Todo, error) {
	todo, ok := s.Find(id)
	if !ok {
		return model.Todo{}, userError(fmt.Errorf("no todo with id %q", id))
	}
	return todo, nil
}

// recordingService remembers the last failure so that the exit code can tell
// a rejected credential from an unreachable store.
type recordingService struct {
	service.Service

	mu  sync.Mutex
	err error
}

func (r *recordingService) ListRecords(ctx context.Context, q service.Query) ([]model.Record, error) {
	records, err := r.Service.ListRecords(ctx, q)
	return records, r.remember(err)
}

func (r *recordingService) CreateRecord(ctx context.Context, fields model.Fields) ([]model.Record, error) {
	records, err := r.Service.CreateRecord(ctx, fields)
	return records, r.remember(err)
}

func (r *recordingService) PatchRecord(ctx context.Context, id string, fields model.Fields) ([]model.Record, error) {
	records, err := r.Service.PatchRecord(ctx, id, fields)
	return records, r.remember(err)
}

func (r *recordingService) remember(err error) error {
	if err != nil {
		r.mu.Lock()
		r.err = err
		r.mu.Unlock()
	}
	return err
}

// failure turns the error message left in the state into a classified error.
func (r *recordingService) failure(message string) error {
	r.mu.Lock()
	err := r.err
	r.mu.Unlock()
	if err == nil {
		err = errors.New(message)
	}
	return classify(err)
}

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error {
	return &exitError{code: exitcode.UserError, err: err}
}

func configError(err error) error {
	return &exitError{code: exitcode.ConfigError, err: err}
}

func classify(err error) error {
	switch {
	case errors.Is(err, airtable.ErrUnauthorized),
		errors.Is(err, airtable.ErrMissingToken),
		errors.Is(err, airtable.ErrMissingTable):
		return configError(err)
	case errors.Is(err, model.ErrEmptyTitle):
		return userError(err)
	default:
		return &exitError{code: exitcode.BackendError, err: err}
	}
}

// ExitCode maps a command error to a process exit code. Errors raised by cobra
// itself (unknown commands, bad flags, wrong argument counts) are user errors.
func ExitCode(err error) int {
	if err == nil {
		return exitcode.Success
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitcode.UserError
}
