package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todoctl/internal/exitcode"
	"todoctl/internal/view"
)

func init() {
	Register(&ForgotCmd{})
	Register(&ResetCmd{})
}

// ForgotCmd implements the forgot command.
type ForgotCmd struct{}

func (c *ForgotCmd) Name() string      { return "forgot" }
func (c *ForgotCmd) Aliases() []string { return nil }
func (c *ForgotCmd) Synopsis() string  { return "Request a password reset link" }
func (c *ForgotCmd) Usage() string     { return "todoctl forgot <email>" }
func (c *ForgotCmd) NeedsAuth() bool   { return false }

func (c *ForgotCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ForgotCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(errOut, "error: email required")
		return exitcode.UserError
	}

	ctl, _ := newAccount(env, "")
	notice, err := ctl.RequestReset(ctx, strings.TrimSpace(args[0]))
	if err != nil {
		return report(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, notice)
	}
	return exitcode.Success
}

// ResetCmd implements the reset command. It redeems the link from a reset
// mail; the new password and its confirmation are read from stdin.
type ResetCmd struct{}

func (c *ResetCmd) Name() string      { return "reset" }
func (c *ResetCmd) Aliases() []string { return nil }
func (c *ResetCmd) Synopsis() string  { return "Set a new password from a reset link" }
func (c *ResetCmd) Usage() string     { return "todoctl reset <link>" }
func (c *ResetCmd) NeedsAuth() bool   { return false }

func (c *ResetCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ResetCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: reset link required")
		return exitcode.UserError
	}

	ctl, m := newAccount(env, args[0])
	if m.Current() != view.ResetConfirm {
		fmt.Fprintf(errOut, "error: not a password reset link: %s\n", args[0])
		return exitcode.UserError
	}

	pw, err := newLineReader(errOut).readAll("New password", "Confirm new password")
	if err != nil {
		return inputError(errOut, err)
	}
	if err := ctl.ConfirmReset(ctx, pw[0], pw[1]); err != nil {
		return report(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "password reset, please log in")
	}
	return exitcode.Success
}
