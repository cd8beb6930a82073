package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"todoctl/internal/deeplink"
	"todoctl/internal/exitcode"
	"todoctl/internal/tui"
)

func init() {
	Register(&UICmd{})
}

// UICmd starts the interactive client.
type UICmd struct {
	link   string
	inline bool
}

func (c *UICmd) Name() string      { return "ui" }
func (c *UICmd) Aliases() []string { return []string{"tui"} }
func (c *UICmd) Synopsis() string  { return "Start the interactive client" }
func (c *UICmd) Usage() string     { return "todoctl ui [--link <reset-link>] [--inline]" }
func (c *UICmd) NeedsAuth() bool   { return false }

func (c *UICmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.link, "link", "", "")
	fs.BoolVar(&c.inline, "inline", false, "")
}

func (c *UICmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	if !c.inline {
		restore, err := redirectLog(env)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		defer restore()
	}

	m := tui.New(ctx, env.Service, env.Session, deeplink.NewLocation(c.link), env.Log)

	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithInput(Stdin), tea.WithOutput(out)}
	if !c.inline {
		opts = append(opts, tea.WithAltScreen())
	}
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil && ctx.Err() == nil {
		env.Log.Error().Err(err).Msg("ui stopped")
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}

// UILogFile is the file under the config dir that receives debug logs while
// the full-screen client owns the terminal.
const UILogFile = "ui.log"

// redirectLog moves log output off the terminal: to UILogFile with --debug,
// nowhere otherwise. The returned func restores the previous destination.
func redirectLog(env *Env) (func(), error) {
	if env.LogSink == nil {
		return func() {}, nil
	}
	if !env.Config.Debug {
		prev := env.LogSink.Swap(io.Discard)
		return func() { env.LogSink.Swap(prev) }, nil
	}

	if err := os.MkdirAll(env.Config.Dir, 0700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(env.Config.Dir, UILogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open ui log: %w", err)
	}
	prev := env.LogSink.Swap(f)
	return func() {
		env.LogSink.Swap(prev)
		f.Close()
	}, nil
}
