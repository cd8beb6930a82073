package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todoctl/internal/exitcode"
	"todoctl/internal/service"
	"todoctl/internal/view"
)

func init() {
	Register(&PasswdCmd{})
}

// PasswdCmd implements the passwd command. A successful change ends the
// session.
type PasswdCmd struct{}

func (c *PasswdCmd) Name() string      { return "passwd" }
func (c *PasswdCmd) Aliases() []string { return nil }
func (c *PasswdCmd) Synopsis() string  { return "Change the account password" }
func (c *PasswdCmd) Usage() string     { return "todoctl passwd" }
func (c *PasswdCmd) NeedsAuth() bool   { return true }

func (c *PasswdCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *PasswdCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	pw, err := newLineReader(errOut).readAll("Current password", "New password", "Confirm new password")
	if err != nil {
		return inputError(errOut, err)
	}

	ctl, m := newAccount(env, "")
	if err := m.Dispatch(view.NavigateTo{Target: view.ChangePassword}); err != nil {
		return report(errOut, err)
	}
	change := service.PasswordChange{CurrentPassword: pw[0], NewPassword: pw[1], ReNewPassword: pw[2]}
	if err := ctl.ChangePassword(ctx, change); err != nil {
		return report(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "password changed, please log in again")
	}
	return exitcode.Success
}
