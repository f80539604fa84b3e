package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/todoflow/internal/model"
	"github.com/sandeepkv93/todoflow/internal/paging"
	"github.com/sandeepkv93/todoflow/internal/state"
	"github.com/sandeepkv93/todoflow/internal/todos"
)

type listOptions struct {
	sort      string
	direction string
	search    string
	page      int
	all       bool
}

func newListCommand(app *App, configPath *string) *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print open todos",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.list(cmd.Context(), *configPath, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.sort, "sort", state.DefaultSortField, "sort field: title or createdTime")
	f.StringVar(&opts.direction, "direction", state.DefaultSortDirection, "sort direction: asc or desc")
	f.StringVar(&opts.search, "search", "", "only todos whose title contains this text")
	f.IntVar(&opts.page, "page", 1, "page to print")
	f.BoolVar(&opts.all, "all", false, "print every open todo without paging")
	return cmd
}

func (a *App) list(ctx context.Context, configPath string, opts listOptions) error {
	field, err := model.ParseSortField(opts.sort)
	if err != nil {
		return userError(err)
	}
	dir, err := model.ParseSortDirection(opts.direction)
	if err != nil {
		return userError(err)
	}

	s, err := a.open(configPath, a.errOut())
	if err != nil {
		return err
	}
	defer s.close()
	ctrl, rec, err := a.connect(ctx, s)
	if err != nil {
		return err
	}

	ctrl.Dispatch(state.SetSortField{Value: string(field)})
	ctrl.Dispatch(state.SetSortDirection{Value: string(dir)})
	ctrl.Dispatch(state.SetQueryString{Value: opts.search})
	st := ctrl.Run(ctx, ctrl.Fetch())
	if st.ErrorMessage != "" {
		return rec.failure(st.ErrorMessage)
	}

	out := a.out()
	visible := model.Incomplete(st.Items)
	if opts.all {
		writeTodos(out, visible, 1)
		return nil
	}
	w, ok := paging.Resolve(strconv.Itoa(opts.page), len(visible), s.cfg.PageSize)
	if !ok {
		return userError(fmt.Errorf("page %d out of range (1-%d)", opts.page, w.TotalPages))
	}
	writeTodos(out, paging.Slice(visible, w), w.Start+1)
	if w.TotalPages > 1 {
		fmt.Fprintf(out, "page %d of %d\n", w.Page, w.TotalPages)
	}
	return nil
}

func newAddCommand(app *App, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:     "add <title...>",
		Aliases: []string{"new"},
		Short:   "Create a todo",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.add(cmd.Context(), *configPath, strings.Join(args, " "))
		},
	}
}

func (a *App) add(ctx context.Context, configPath, title string) error {
	if err := model.ValidateTitle(title); err != nil {
		return userError(err)
	}
	s, err := a.open(configPath, a.errOut())
	if err != nil {
		return err
	}
	defer s.close()
	ctrl, rec, err := a.connect(ctx, s)
	if err != nil {
		return err
	}

	st := ctrl.Run(ctx, ctrl.Add(title))
	if st.ErrorMessage != "" {
		return rec.failure(st.ErrorMessage)
	}
	if len(st.Items) == 0 {
		return rec.failure("record store returned no record")
	}
	fmt.Fprintf(a.out(), "added %s\n", todos.Describe(st.Items[len(st.Items)-1]))
	return nil
}

func newDoneCommand(app *App, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"complete"},
		Short:   "Mark a todo as completed",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.done(cmd.Context(), *configPath, args[0])
		},
	}
}

func (a *App) done(ctx context.Context, configPath, id string) error {
	s, err := a.open(configPath, a.errOut())
	if err != nil {
		return err
	}
	defer s.close()
	ctrl, rec, err := a.connect(ctx, s)
	if err != nil {
		return err
	}

	st, err := fetchAll(ctx, ctrl, rec)
	if err != nil {
		return err
	}
	if _, err := findOrFail(st, id); err != nil {
		return err
	}
	st = ctrl.Run(ctx, ctrl.Complete(id))
	if st.ErrorMessage != "" {
		return rec.failure(st.ErrorMessage)
	}
	todo, _ := st.Find(id)
	fmt.Fprintf(a.out(), "completed %s\n", todos.Describe(todo))
	return nil
}

func newRenameCommand(app *App, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:     "rename <id> <title...>",
		Aliases: []string{"mv"},
		Short:   "Change the title of a todo",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.rename(cmd.Context(), *configPath, args[0], strings.Join(args[1:], " "))
		},
	}
}

func (a *App) rename(ctx context.Context, configPath, id, title string) error {
	if err := model.ValidateTitle(title); err != nil {
		return userError(err)
	}
	s, err := a.open(configPath, a.errOut())
	if err != nil {
		return err
	}
	defer s.close()
	ctrl, rec, err := a.connect(ctx, s)
	if err != nil {
		return err
	}

	st, err := fetchAll(ctx, ctrl, rec)
	if err != nil {
		return err
	}
	if _, err := findOrFail(st, id); err != nil {
		return err
	}
	st = ctrl.Run(ctx, ctrl.UpdateTitle(id, title))
	if st.ErrorMessage != "" {
		return rec.failure(st.ErrorMessage)
	}
	todo, _ := st.Find(id)
	fmt.Fprintf(a.out(), "renamed %s\n", todos.Describe(todo))
	return nil
}
