package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"todoctl/internal/exitcode"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string      { return "toggle" }
func (c *ToggleCmd) Aliases() []string { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string  { return "Mark a task done, or open again" }
func (c *ToggleCmd) Usage() string     { return "todoctl toggle <n>" }
func (c *ToggleCmd) NeedsAuth() bool   { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	num, code, ok := parseRef(args, errOut)
	if !ok {
		return code
	}

	store, err := loadTasks(ctx, env)
	if err != nil {
		return report(errOut, err)
	}
	task, err := findTaskByNumber(store, num)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := store.Toggle(ctx, task); err != nil {
		return report(errOut, err)
	}

	if !env.Config.Quiet {
		if task.Completed {
			fmt.Fprintln(out, "reopened")
		} else {
			fmt.Fprintln(out, "done")
		}
	}
	return exitcode.Success
}

// parseRef parses a task reference and reports a bad one on errOut.
func parseRef(args []string, errOut io.Writer) (int, int, bool) {
	num, err := ParseTaskRef(args)
	if err != nil {
		if errors.Is(err, ErrTaskRefRequired) {
			fmt.Fprintln(errOut, "error: task reference required")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return 0, exitcode.UserError, false
	}
	if num < 1 {
		fmt.Fprintf(errOut, "error: %v\n", errOutOfRange(num))
		return 0, exitcode.UserError, false
	}
	return num, exitcode.Success, true
}
