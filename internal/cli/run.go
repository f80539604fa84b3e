package cli

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/todoflow/internal/debounce"
	"github.com/sandeepkv93/todoflow/internal/recordstore"
	"github.com/sandeepkv93/todoflow/internal/storage"
	"github.com/sandeepkv93/todoflow/internal/update"
)

func newTUICommand(app *App, configPath *string) *cobra.Command {
	var start string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive todo list (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runTUI(cmd.Context(), *configPath, start)
		},
	}
	cmd.Flags().StringVar(&start, "open", "/", `initial screen, e.g. "/?page=2" or "/about"`)
	return cmd
}

func (a *App) runTUI(ctx context.Context, configPath, start string) error {
	// Log lines must not reach the terminal the program draws on.
	s, err := a.open(configPath, nil)
	if err != nil {
		return err
	}
	defer s.close()
	ctrl, _, err := a.connect(ctx, s)
	if err != nil {
		return err
	}

	d := debounce.New(s.cfg.Debounce, s.cfg.DebounceBuffer)
	d.Start()
	defer d.Stop()

	m := update.NewModel(update.Options{
		Controller: ctrl,
		Debouncer:  d,
		PerPage:    s.cfg.PageSize,
		Logger:     s.log,
		Context:    ctx,
		StartPath:  start,
	})
	s.log.Info("starting ui", "table", s.cfg.Table, "base_url", s.cfg.BaseURL)

	run := a.RunProgram
	if run == nil {
		run = runProgram
	}
	if err := run(ctx, m); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func runProgram(ctx context.Context, m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func newServeCommand(app *App, configPath *string) *cobra.Command {
	var addr, dbPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an Airtable-compatible record store backed by SQLite",
		Long: `serve exposes the subset of the Airtable REST API that todoflow uses:
listing with sort, SEARCH formulas and offset paging, batch create and patch,
and single record get and delete. Requests must carry the configured token as
a bearer credential; without a token every request is accepted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.serve(cmd.Context(), *configPath, addr, dbPath)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from listen_addr)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default from db_path)")
	return cmd
}

func (a *App) serve(ctx context.Context, configPath, addr, dbPath string) error {
	s, err := a.open(configPath, a.errOut())
	if err != nil {
		return err
	}
	defer s.close()
	if err := s.cfg.ValidateServer(); err != nil {
		return configError(err)
	}
	if addr == "" {
		addr = s.cfg.ListenAddr
	}
	if dbPath == "" {
		dbPath = s.cfg.DBPath
	}

	repo, err := storage.OpenSQLite(dbPath)
	if err != nil {
		return configError(err)
	}
	defer repo.Close()

	srv, err := recordstore.New(recordstore.Options{Repo: repo, Token: s.cfg.Token, Logger: s.log})
	if err != nil {
		return err
	}
	if s.cfg.Token == "" {
		s.log.Warn("no token configured, requests are not authenticated")
	}
	s.log.Info("record store ready", "db", dbPath)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return classify(err)
	}
	return nil
}

func newVersionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			version := app.Version
			if version == "" {
				version = "dev"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "todoflow %s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
