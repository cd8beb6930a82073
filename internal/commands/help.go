package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todoctl/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "todoctl help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  todoctl                                          List tasks
  todoctl list [common flags] [--summary]          List tasks
  todoctl add [common flags] <text...>             Create a task
  todoctl toggle [common flags] <n>                Mark task n done, or open again
  todoctl rm [common flags] <n>                    Delete task n
  todoctl login [common flags] --username <name>   Log in (password on stdin)
  todoctl logout [common flags]
  todoctl register [common flags] --username <name> [--email <address>]
  todoctl passwd [common flags]                    Change password (logs out)
  todoctl forgot [common flags] <email>            Request a password reset link
  todoctl reset [common flags] <link>              Set a new password from a reset link
  todoctl ui [common flags] [--link <link>] [--inline]  Interactive mode
  todoctl help
  todoctl version [--verbose]

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Environment:
  TODOCTL_API_URL  Base URL of the task service (default http://127.0.0.1:8000)
`
