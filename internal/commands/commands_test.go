package commands_test

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"strings"
	"testing"

	"todoctl/internal/commands"
	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/log"
	"todoctl/internal/service"
	"todoctl/internal/session"
	"todoctl/internal/testutil"
)

// fixture is a command environment backed by FakeService and an in-memory session.
type fixture struct {
	svc   *testutil.FakeService
	store *session.MemoryStore
	quiet bool
	ctx   context.Context

	// debug logs through a redirectable sink onto stderr, under dir when set.
	debug bool
	dir   string
}

func newFixture(token string) *fixture {
	svc := testutil.NewFakeService()
	store := session.NewMemoryStore(token)
	svc.Tokens = session.TokenSource(store)
	return &fixture{svc: svc, store: store, ctx: context.Background()}
}

// run parses args with cmd's flags, the way the dispatcher does, and runs
// cmd with stdin as its input.
func (f *fixture) run(t *testing.T, cmd commands.Command, stdin string, args ...string) (stdout, stderr string, code int) {
	t.Helper()

	prev := commands.Stdin
	commands.Stdin = strings.NewReader(stdin)
	t.Cleanup(func() { commands.Stdin = prev })

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("bad flags %v: %v", args, err)
	}

	dir := f.dir
	if dir == "" {
		dir = t.TempDir()
	}
	var outBuf, errBuf strings.Builder
	env := &commands.Env{
		Config:  &config.Config{Dir: dir, APIURL: config.DefaultAPIURL, Quiet: f.quiet, Debug: f.debug},
		Session: f.store,
		Service: f.svc,
		Log:     log.Nop(),
	}
	if f.debug {
		env.LogSink = log.NewSink(&errBuf)
		env.Log = log.New(env.LogSink, true)
	}

	code = cmd.Run(f.ctx, env, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func expect(t *testing.T, code, wantCode int, got, want string) {
	t.Helper()
	if code != wantCode {
		t.Errorf("expected exit code %d, got %d", wantCode, code)
	}
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := newFixture("").run(t, &commands.VersionCmd{}, "")
	expect(t, code, exitcode.Success, stdout, "todoctl 0.1.0\n")
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
}

func TestVersionCommand_Verbose(t *testing.T) {
	stdout, _, code := newFixture("").run(t, &commands.VersionCmd{}, "", "--verbose")
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.HasPrefix(stdout, "todoctl 0.1.0\nconfig: ") || !strings.HasSuffix(stdout, "api:    "+config.DefaultAPIURL+"\n") {
		t.Errorf("unexpected output %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := newFixture("").run(t, &commands.HelpCmd{}, "")
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	testutil.GoldenString(t, "help", stdout)
	for _, cmd := range commands.DefaultRegistry.All() {
		if !strings.Contains(stdout, "todoctl "+cmd.Name()) {
			t.Errorf("help output does not mention %s", cmd.Name())
		}
	}
}

// Tests for list command
func TestListCommand_WithTasks(t *testing.T) {
	f := newFixture("tkn")
	f.svc.AddTask("Buy milk", false)
	f.svc.AddTask("Water plants", true)

	stdout, stderr, code := f.run(t, &commands.ListCmd{}, "")
	expect(t, code, exitcode.Success, stdout, "   1  [ ] Buy milk\n   2  [x] Water plants\n")
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
}

func TestListCommand_Summary(t *testing.T) {
	f := newFixture("tkn")
	f.svc.AddTask("Buy milk", false)
	f.svc.AddTask("Water plants", true)

	stdout, _, code := f.run(t, &commands.ListCmd{}, "", "--summary")
	expect(t, code, exitcode.Success, stdout, "   1  [ ] Buy milk\n   2  [x] Water plants\n1 open, 1 done\n")
}

func TestListCommand_Empty(t *testing.T) {
	stdout, _, code := newFixture("tkn").run(t, &commands.ListCmd{}, "")
	expect(t, code, exitcode.Success, stdout, "no tasks found\n")
}

func TestListCommand_EmptyQuiet(t *testing.T) {
	f := newFixture("tkn")
	f.quiet = true
	stdout, _, code := f.run(t, &commands.ListCmd{}, "")
	expect(t, code, exitcode.Success, stdout, "")
}

func TestListCommand_UnexpectedArgument(t *testing.T) {
	_, stderr, code := newFixture("tkn").run(t, &commands.ListCmd{}, "", "work")
	expect(t, code, exitcode.UserError, stderr, "error: unexpected argument: work\n")
}

func TestListCommand_NoSession(t *testing.T) {
	f := newFixture("")
	_, stderr, code := f.run(t, &commands.ListCmd{}, "")
	expect(t, code, exitcode.AuthError, stderr, "error: not logged in (run: todoctl login)\n")
}

func TestListCommand_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     int
		contains string
	}{
		{
			name:     "rejected token",
			err:      &service.RemoteError{Op: "list tasks", Status: http.StatusUnauthorized, Detail: "Invalid token."},
			code:     exitcode.AuthError,
			contains: "error: auth error: list tasks: status 401: Invalid token.",
		},
		{
			name:     "network",
			err:      &service.TransportError{Op: "list tasks", Err: errors.New("connection refused")},
			code:     exitcode.BackendError,
			contains: "error: backend error: Network error.",
		},
		{
			name:     "server",
			err:      &service.RemoteError{Op: "list tasks", Status: http.StatusInternalServerError},
			code:     exitcode.BackendError,
			contains: "error: backend error: list tasks: status 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture("tkn")
			f.svc.ListTasksErr = tt.err
			stdout, stderr, code := f.run(t, &commands.ListCmd{}, "")
			if code != tt.code {
				t.Errorf("expected exit code %d, got %d", tt.code, code)
			}
			if !strings.HasPrefix(stderr, tt.contains) {
				t.Errorf("expected stderr to start with %q, got %q", tt.contains, stderr)
			}
			if stdout != "" {
				t.Errorf("expected no stdout, got %q", stdout)
			}
		})
	}
}

// Tests for add command
func TestAddCommand_Success(t *testing.T) {
	f := newFixture("tkn")
	stdout, _, code := f.run(t, &commands.AddCmd{}, "", "Buy", "milk")
	expect(t, code, exitcode.Success, stdout, "ok\n")

	got := f.svc.ServerTasks()
	if len(got) != 1 || got[0].Text != "Buy milk" || got[0].Completed {
		t.Errorf("unexpected server tasks %+v", got)
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	f := newFixture("tkn")
	f.quiet = true
	stdout, _, code := f.run(t, &commands.AddCmd{}, "", "Buy milk")
	expect(t, code, exitcode.Success, stdout, "")
	if len(f.svc.ServerTasks()) != 1 {
		t.Error("expected task created")
	}
}

func TestAddCommand_NoText(t *testing.T) {
	f := newFixture("tkn")
	_, stderr, code := f.run(t, &commands.AddCmd{}, "", "  ")
	expect(t, code, exitcode.UserError, stderr, "error: text required\n")
	if _, create, _, _ := f.svc.Counts(); create != 0 {
		t.Error("blank text must not reach the service")
	}
}

func TestAddCommand_Rejected(t *testing.T) {
	f := newFixture("tkn")
	f.svc.CreateTaskErr = &service.RemoteError{
		Op:     "create task",
		Status: http.StatusBadRequest,
		Fields: map[string][]string{"text": {"Ensure this field has no more than 255 characters."}},
	}
	_, stderr, code := f.run(t, &commands.AddCmd{}, "", "x")
	expect(t, code, exitcode.UserError, stderr,
		"error: backend error: create task: status 400: text: Ensure this field has no more than 255 characters.\n")
}

// Tests for toggle command
func TestToggleCommand_DoneAndReopened(t *testing.T) {
	f := newFixture("tkn")
	f.svc.AddTask("a", false)
	f.svc.AddTask("b", false)

	stdout, _, code := f.run(t, &commands.ToggleCmd{}, "", "2")
	expect(t, code, exitcode.Success, stdout, "done\n")
	got := f.svc.ServerTasks()
	if got[0].Completed || !got[1].Completed {
		t.Errorf("toggle affected the wrong task: %+v", got)
	}

	stdout, _, code = f.run(t, &commands.ToggleCmd{}, "", "2")
	expect(t, code, exitcode.Success, stdout, "reopened\n")
	if f.svc.ServerTasks()[1].Completed {
		t.Error("expected task reopened")
	}
}

func TestToggleCommand_BadRefs(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{nil, "error: task reference required\n"},
		{[]string{"abc"}, "error: invalid task reference: abc\n"},
		{[]string{"0"}, "error: task number out of range: 0\n"},
		{[]string{"5"}, "error: task number out of range: 5\n"},
		{[]string{"1", "2"}, "error: unexpected argument: 2\n"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, "_"), func(t *testing.T) {
			f := newFixture("tkn")
			f.svc.AddTask("a", false)
			_, stderr, code := f.run(t, &commands.ToggleCmd{}, "", tt.args...)
			expect(t, code, exitcode.UserError, stderr, tt.want)
			if _, _, update, _ := f.svc.Counts(); update != 0 {
				t.Error("no update expected")
			}
		})
	}
}

// Tests for rm command
func TestRmCommand_Success(t *testing.T) {
	f := newFixture("tkn")
	f.svc.AddTask("a", false)
	b := f.svc.AddTask("b", false)
	f.svc.AddTask("c", false)

	stdout, _, code := f.run(t, &commands.RmCmd{}, "", "2")
	expect(t, code, exitcode.Success, stdout, "ok\n")

	for _, task := range f.svc.ServerTasks() {
		if task.ID == b.ID {
			t.Error("task 2 still on the server")
		}
	}
	if len(f.svc.ServerTasks()) != 2 {
		t.Errorf("expected exactly one task removed, got %+v", f.svc.ServerTasks())
	}
}

func TestRmCommand_NoRef(t *testing.T) {
	_, stderr, code := newFixture("tkn").run(t, &commands.RmCmd{}, "")
	expect(t, code, exitcode.UserError, stderr, "error: task reference required\n")
}

func TestRmCommand_AlreadyGone(t *testing.T) {
	f := newFixture("tkn")
	f.svc.AddTask("a", false)
	f.svc.DeleteTaskErr = testutil.ErrNotFound

	_, stderr, code := f.run(t, &commands.RmCmd{}, "", "1")
	expect(t, code, exitcode.UserError, stderr, "error: backend error: fake: status 404: Not found.\n")
}

// Tests for registry
func TestRegistry_NamesAndAliases(t *testing.T) {
	for _, name := range []string{
		"list", "ls", "add", "create", "toggle", "done", "rm", "delete",
		"login", "logout", "register", "signup", "passwd", "forgot", "reset",
		"ui", "tui", "help", "version",
	} {
		if _, ok := commands.DefaultRegistry.Find(name); !ok {
			t.Errorf("command %q not registered", name)
		}
	}

	if _, ok := commands.DefaultRegistry.Find("lists"); ok {
		t.Error("unexpected command lists")
	}
}

func TestRegistry_Duplicate(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.ListCmd{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&commands.ListCmd{}); err == nil {
		t.Error("expected duplicate name to be rejected")
	}
	if got := r.All(); len(got) != 1 || got[0].Name() != "list" {
		t.Errorf("unexpected commands %v", got)
	}
}

type stubCmd struct {
	name    string
	aliases []string
}

func (s stubCmd) Name() string                   { return s.name }
func (s stubCmd) Aliases() []string              { return s.aliases }
func (s stubCmd) Synopsis() string               { return "" }
func (s stubCmd) Usage() string                  { return "" }
func (s stubCmd) NeedsAuth() bool                { return false }
func (s stubCmd) RegisterFlags(fs *flag.FlagSet) {}
func (s stubCmd) Run(ctx context.Context, env *commands.Env, args []string, out, errOut io.Writer) int {
	return exitcode.Success
}

func TestRegistry_Conflicts(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(stubCmd{name: "list", aliases: []string{"ls"}}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		cmd  stubCmd
		want string
	}{
		{stubCmd{name: "dir", aliases: []string{"ls"}}, "command alias already registered: ls"},
		{stubCmd{name: "-x"}, `invalid command name: "-x"`},
		{stubCmd{name: "x", aliases: []string{""}}, `invalid command name: ""`},
	}
	for _, tt := range tests {
		err := r.Register(tt.cmd)
		if err == nil || err.Error() != tt.want {
			t.Errorf("expected %q, got %v", tt.want, err)
		}
		if _, ok := r.Find(tt.cmd.name); ok {
			t.Errorf("%q registered despite the error", tt.cmd.name)
		}
	}
	if len(r.All()) != 1 {
		t.Errorf("expected one command, got %d", len(r.All()))
	}
}
