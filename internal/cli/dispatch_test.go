package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"todoctl/internal/cli"
	"todoctl/internal/commands"
	"todoctl/internal/config"
	"todoctl/internal/exitcode"
	"todoctl/internal/service"
	"todoctl/internal/testutil"
)

// testFactory creates a service factory that returns the given FakeService,
// wired to the dispatcher's token source.
func testFactory(svc *testutil.FakeService) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config, tokens oauth2.TokenSource, logger zerolog.Logger) (service.Service, error) {
		svc.Tokens = tokens
		return svc, nil
	}
}

func run(t *testing.T, svc *testutil.FakeService, args ...string) (int, string, string) {
	t.Helper()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))
	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeToken(t *testing.T, dir string) {
	t.Helper()
	data := []byte(`{"access_token":"tkn","token_type":"Bearer"}`)
	if err := os.WriteFile(filepath.Join(dir, config.TokenFile), data, 0600); err != nil {
		t.Fatal(err)
	}
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	code, _, stderr := run(t, testutil.NewFakeService(), "unknowncmd")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	code, _, stderr := run(t, testutil.NewFakeService(), "--quiet")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	code, stdout, stderr := run(t, testutil.NewFakeService(), "help", "--config", t.TempDir())
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	code, stdout, stderr := run(t, testutil.NewFakeService(), "version", "--config", t.TempDir())
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "todoctl 0.1.0\n" {
		t.Errorf("expected 'todoctl 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	code, _, stderr := run(t, testutil.NewFakeService(), "help", "--unknown")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagNeedsArgument(t *testing.T) {
	code, _, stderr := run(t, testutil.NewFakeService(), "login", "--username")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -username\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NotLoggedIn(t *testing.T) {
	svc := testutil.NewFakeService()
	code, _, stderr := run(t, svc, "list", "--config", t.TempDir())
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	expected := "error: not logged in (run: todoctl login)\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
	if list, _, _, _ := svc.Counts(); list != 0 {
		t.Error("service must not be called without a session")
	}
}

func TestDispatcher_NoArgsListsTasks(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv(config.APIURLEnv, "")
	dir := filepath.Join(home, config.AppName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	writeToken(t, dir)

	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", false)
	code, stdout, stderr := run(t, svc)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d (%s)", code, stderr)
	}
	if stdout != "   1  [ ] Buy milk\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestDispatcher_CorruptToken(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.TokenFile), []byte("{"), 0600); err != nil {
		t.Fatal(err)
	}
	code, _, stderr := run(t, testutil.NewFakeService(), "list", "--config", dir)
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.HasPrefix(stderr, "error: auth error:") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_InvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte("api_url: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	code, _, stderr := run(t, testutil.NewFakeService(), "version", "--config", dir)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "invalid config.yaml") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_DebugLogsToStderr(t *testing.T) {
	dir := t.TempDir()
	writeToken(t, dir)
	code, _, stderr := run(t, testutil.NewFakeService(), "list", "--config", dir, "--debug")
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d (%s)", code, stderr)
	}
	if !strings.Contains(stderr, "dispatch") {
		t.Errorf("expected debug log on stderr, got %q", stderr)
	}
}
