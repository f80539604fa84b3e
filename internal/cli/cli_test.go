package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"

	"github.com/sandeepkv93/todoflow/internal/backend/airtable"
	"github.com/sandeepkv93/todoflow/internal/config"
	"github.com/sandeepkv93/todoflow/internal/exitcode"
	"github.com/sandeepkv93/todoflow/internal/recordstore"
	"github.com/sandeepkv93/todoflow/internal/route"
	"github.com/sandeepkv93/todoflow/internal/service"
	"github.com/sandeepkv93/todoflow/internal/storage"
	"github.com/sandeepkv93/todoflow/internal/testutil"
	"github.com/sandeepkv93/todoflow/internal/update"
)

func withCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("TODOFLOW_TOKEN", "pat-test")
	t.Setenv("TODOFLOW_BASE_ID", "appTest")
	t.Setenv("TODOFLOW_TABLE", "Todos")
	t.Setenv("TODOFLOW_LOG_FILE", "")
	t.Setenv("TODOFLOW_LOG_LEVEL", "error")
}

type result struct {
	code int
	out  string
	err  string
}

func runWith(t *testing.T, fake *testutil.FakeService, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	app := App{Out: &out, Err: &errOut, Version: "1.2.3"}
	if fake != nil {
		app.NewService = func(ctx context.Context, cfg config.RuntimeConfig, logger hclog.Logger) (service.Service, error) {
			return fake, nil
		}
	}
	code := Run(context.Background(), args, app)
	return result{code: code, out: out.String(), err: errOut.String()}
}

func TestListPrintsOpenTodos(t *testing.T) {
	withCredentials(t)
	fake := testutil.NewFakeService()
	fake.AddRecord("r1", "Walk dog", false)
	fake.AddRecord("r2", "Buy milk", false)
	fake.AddRecord("r3", "Pay rent", true)

	res := runWith(t, fake, "list", "--sort", "title", "--direction", "asc")
	if res.code != exitcode.Success {
		t.Fatalf("unexpected exit code %d: %s", res.code, res.err)
	}
	want := "   1  r2  Buy milk\n   2  r1  Walk dog\n"
	if res.out != want {
		t.Fatalf("unexpected output:\n got %q\nwant %q", res.out, want)
	}

	calls := fake.Calls()
	if len(calls) != 1 || calls[0].Query != (service.Query{SortField: "title", SortDirection: "asc"}) {
		t.Fatalf("unexpected calls: %#v", calls)
	}
}

func TestListDefaultsToNewestFirst(t *testing.T) {
	withCredentials(t)
	fake := testutil.NewFakeService()
	fake.AddRecord("r1", "older", false)
	fake.AddRecord("r2", "newer", false)

	res := runWith(t, fake, "list")
	if res.code != exitcode.Success {
		t.Fatalf("unexpected exit code %d: %s", res.code, res.err)
	}
	if !strings.HasPrefix(res.out, "   1  r2  newer\n") {
		t.Fatalf("expected newest first:\n%s", res.out)
	}
	if q := fake.Calls()[0].Query; q.SortField != "createdTime" || q.SortDirection != "desc" {
		t.Fatalf("unexpected default query: %#v", q)
	}
}

func TestListSearchAndEmpty(t *testing.T) {
	withCredentials(t)
	fake := testutil.NewFakeService()
	fake.AddRecord("r1", "Walk dog", false)

	res := runWith(t, fake, "list", "--search", "milk")
	if res.code != exitcode.Success {
		t.Fatalf("unexpected exit code %d: %s", res.code, res.err)
	}
	if res.out != emptyListText+"\n" {
		t.Fatalf("unexpected output: %q", res.out)
	}
	if got := fake.Calls()[0].Query.Search; got != "milk" {
		t.Fatalf("expected search forwarded, got %q", got)
	}
}

func TestListPaging(t *testing.T) {
	withCredentials(t)
	t.Setenv("TODOFLOW_PAGE_SIZE", "15")
	fake := testutil.NewFakeService()
	for i := 0; i < 20; i++ {
		fake.AddRecord("", fmt.Sprintf("todo %02d", i), false)
	}

	res := runWith(t, fake, "list", "--page", "2")
	if res.code != exitcode.Success {
		t.Fatalf("unexpected exit code %d: %s", res.code, res.err)
	}
	lines := strings.Split(strings.TrimSpace(res.out), "\n")
	if len(lines) != 6 || lines[5] != "page 2 of 2" {
		t.Fatalf("unexpected page 2 output:\n%s", res.out)
	}
	if !strings.HasPrefix(lines[0], "  16  ") {
		t.Fatalf("expected numbering to continue across pages, got %q", lines[0])
	}

	res = runWith(t, fake, "list", "--page", "3")
	if res.code != exitcode.UserError || !strings.Contains(res.err, "out of range") {
		t.Fatalf("expected out of range error, got %d: %s", res.code, res.err)
	}

	res = runWith(t, fake, "list", "--all")
	if got := len(strings.Split(strings.TrimSpace(res.out), "\n")); got != 20 {
		t.Fatalf("expected 20 rows with --all, got %d", got)
	}
}

func TestListRejectsBadSort(t *testing.T) {
	withCredentials(t)
	fake := testutil.NewFakeService()

	for _, args := range [][]string{
		{"list", "--sort", "priority"},
		{"list", "--direction", "sideways"},
		{"list", "--page", "x"},
		{"list", "extra"},
	} {
		res := runWith(t, fake, args...)
		if res.code != exitcode.UserError {
			t.Fatalf("%v: expected user error, got %d", args, res.code)
		}
	}
	if len(fake.Calls()) != 0 {
		t.Fatalf("expected no requests, got %#v", fake.Calls())
	}
}

func TestAddCreatesTodo(t *testing.T) {
	withCredentials(t)
	fake := testutil.NewFakeService()

	res := runWith(t, fake, "add", "Buy", "milk")
	if res.code != exitcode.Success {
		t.Fatalf("unexpected exit code %d: %s", res.code, res.err)
	}
	if res.out != "added [ ] Buy milk (rec0001)\n" {
		t.Fatalf("unexpected output: %q", res.out)
	}
	records := fake.Records()
	if len(records) != 1 || records[0].ToTodo().Title != "Buy milk" {
		t.Fatalf("unexpected records: %#v", records)
	}
}

func TestAddBlankTitleMakesNoRequest(t *testing.T) {
	withCredentials(t)
	fake := testutil.NewFakeService()

	res := runWith(t, fake, "add", "   ")
	if res.code != exitcode.UserError {
		t.Fatalf("expected user error, got %d", res.code)
	}
	if len(fake.Calls()) != 0 {
		t.Fatalf("expected no requests, got %#v", fake.Calls())
	}

	if res := runWith(t, fake, "add"); res.code != exitcode.UserError {
		t.Fatalf("expected user error without a title, got %d", res.code)
	}
}

func TestBackendFailuresMapToExitCodes(t *testing.T) {
	withCredentials(t)
	fake := testutil.NewFakeService()

	fake.CreateErr = errors.New("service unavailable")
	res := runWith(t, fake, "add", "Buy milk")
	if res.code != exitcode.BackendError || !strings.Contains(res.err, "service unavailable") {
		t.Fatalf("expected backend error, got %d: %s", res.code, res.err)
	}

	fake.CreateErr = fmt.Errorf("create: %w", airtable.ErrUnauthorized)
	res = runWith(t, fake, "add", "Buy milk")
	if res.code != exitcode.ConfigError {
		t.Fatalf("expected config error for a rejected token, got %d: %s", res.code, res.err)
	}

	fake.ListErr = airtable.ErrTimeout
	res = runWith(t, fake, "list")
	if res.code != exitcode.BackendError || !strings.Contains(res.err, "request timed out") {
		t.Fatalf("expected backend error, got %d: %s", res.code, res.err)
	}
}

func TestMissingCredentials(t *testing.T) {
	withCredentials(t)
	t.Setenv("TODOFLOW_TOKEN", "")
	fake := testutil.NewFakeService()

	res := runWith(t, fake, "list")
	if res.code != exitcode.ConfigError || !strings.Contains(res.err, "TODOFLOW_TOKEN") {
		t.Fatalf("expected config error naming the token, got %d: %s", res.code, res.err)
	}
	if len(fake.Calls()) != 0 {
		t.Fatal("expected no requests without credentials")
	}
}

func TestDoneCompletesTodo(t *testing.T) {
	withCredentials(t)
	fake := testutil.NewFakeService()
	fake.AddRecord("r1", "Buy milk", false)

	res := runWith(t, fake, "done", "r1")
	if res.code != exitcode.Success {
		t.Fatalf("unexpected exit code %d: %s", res.code, res.err)
	}
	if res.out != "completed [x] Buy milk (r1)\n" {
		t.Fatalf("unexpected output: %q", res.out)
	}
	calls := fake.Calls()
	last := calls[len(calls)-1]
	if last.Method != "patch" || last.ID != "r1" || last.Fields.Title != nil {
		t.Fatalf("unexpected patch: %#v", last)
	}

	res = runWith(t, fake, "done", "missing")
	if res.code != exitcode.UserError || !strings.Contains(res.err, `no todo with id "missing"`) {
		t.Fatalf("expected unknown id error, got %d: %s", res.code, res.err)
	}
}

func TestDoneReportsRejectedWrite(t *testing.T) {
	withCredentials(t)
	fake := testutil.NewFakeService()
	fake.AddRecord("r1", "Buy milk", false)
	fake.PatchErr = errors.New("rejected")

	res := runWith(t, fake, "done", "r1")
	if res.code != exitcode.BackendError || !strings.Contains(res.err, "rejected") {
		t.Fatalf("expected backend error, got %d: %s", res.code, res.err)
	}
	if res.out != "" {
		t.Fatalf("expected no success output, got %q", res.out)
	}
}

func TestRenameTodo(t *testing.T) {
	withCredentials(t)
	fake := testutil.NewFakeService()
	fake.AddRecord("r1", "Buy milk", false)

	res := runWith(t, fake, "rename", "r1", "Buy", "oat", "milk")
	if res.code != exitcode.Success {
		t.Fatalf("unexpected exit code %d: %s", res.code, res.err)
	}
	if res.out != "renamed [ ] Buy oat milk (r1)\n" {
		t.Fatalf("unexpected output: %q", res.out)
	}

	before := len(fake.Calls())
	res = runWith(t, fake, "rename", "r1", " ")
	if res.code != exitcode.UserError || len(fake.Calls()) != before {
		t.Fatalf("expected blank rename rejected without requests, got %d", res.code)
	}
}

func TestUnknownCommand(t *testing.T) {
	res := runWith(t, nil, "frobnicate")
	if res.code != exitcode.UserError || !strings.Contains(res.err, "unknown command") {
		t.Fatalf("expected unknown command error, got %d: %s", res.code, res.err)
	}
}

func TestVersion(t *testing.T) {
	res := runWith(t, nil, "version")
	if res.code != exitcode.Success || !strings.HasPrefix(res.out, "todoflow 1.2.3\n") {
		t.Fatalf("unexpected version output %d: %q", res.code, res.out)
	}
}

func TestTUIBuildsModel(t *testing.T) {
	withCredentials(t)
	fake := testutil.NewFakeService()

	var got tea.Model
	app := App{
		Out: &bytes.Buffer{},
		Err: &bytes.Buffer{},
		NewService: func(ctx context.Context, cfg config.RuntimeConfig, logger hclog.Logger) (service.Service, error) {
			return fake, nil
		},
		RunProgram: func(ctx context.Context, m tea.Model) error {
			got = m
			return nil
		},
	}
	if code := Run(context.Background(), []string{"tui", "--open", "/about"}, app); code != exitcode.Success {
		t.Fatalf("unexpected exit code %d", code)
	}
	m, ok := got.(update.Model)
	if !ok {
		t.Fatalf("expected update.Model, got %T", got)
	}
	if m.Route.Screen != route.ScreenAbout || m.PerPage != config.DefaultRuntimeConfig().PageSize {
		t.Fatalf("unexpected model: route=%#v perPage=%d", m.Route, m.PerPage)
	}

	got = nil
	if code := Run(context.Background(), nil, app); code != exitcode.Success || got == nil {
		t.Fatalf("expected root command to start the ui, code %d", code)
	}

	app.RunProgram = func(ctx context.Context, m tea.Model) error { return errors.New("no tty") }
	if code := Run(context.Background(), []string{"tui"}, app); code != exitcode.UserError {
		t.Fatalf("expected program failure to surface, got %d", code)
	}
}

func TestServeStopsWithContext(t *testing.T) {
	t.Setenv("TODOFLOW_LOG_LEVEL", "error")
	dbPath := filepath.Join(t.TempDir(), "serve.db")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out, errOut bytes.Buffer
	code := Run(ctx, []string{"serve", "--addr", "127.0.0.1:0", "--db", dbPath}, App{Out: &out, Err: &errOut})
	if code != exitcode.Success {
		t.Fatalf("unexpected exit code %d: %s", code, errOut.String())
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected database created: %v", err)
	}
}

func TestCommandsAgainstLocalRecordStore(t *testing.T) {
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	srv, err := recordstore.New(recordstore.Options{Repo: repo, Token: "pat-test"})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	withCredentials(t)
	t.Setenv("TODOFLOW_BASE_URL", ts.URL)

	res := runWith(t, nil, "add", "Buy milk")
	if res.code != exitcode.Success {
		t.Fatalf("add failed %d: %s", res.code, res.err)
	}
	res = runWith(t, nil, "add", "Walk dog")
	if res.code != exitcode.Success {
		t.Fatalf("add failed %d: %s", res.code, res.err)
	}

	res = runWith(t, nil, "list", "--sort", "title", "--direction", "asc")
	lines := strings.Split(strings.TrimSpace(res.out), "\n")
	if res.code != exitcode.Success || len(lines) != 2 {
		t.Fatalf("unexpected list %d:\n%s%s", res.code, res.out, res.err)
	}
	fields := strings.Fields(lines[0])
	if len(fields) < 3 || strings.Join(fields[2:], " ") != "Buy milk" {
		t.Fatalf("unexpected first row %q", lines[0])
	}
	id := fields[1]

	if res := runWith(t, nil, "done", id); res.code != exitcode.Success {
		t.Fatalf("done failed %d: %s", res.code, res.err)
	}
	res = runWith(t, nil, "list", "--search", "milk")
	if res.code != exitcode.Success || res.out != emptyListText+"\n" {
		t.Fatalf("expected completed todo hidden, got %d: %q", res.code, res.out)
	}

	t.Setenv("TODOFLOW_TOKEN", "wrong")
	if res := runWith(t, nil, "list"); res.code != exitcode.ConfigError {
		t.Fatalf("expected rejected token to be a config error, got %d: %s", res.code, res.err)
	}
}
