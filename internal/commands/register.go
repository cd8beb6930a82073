package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todoctl/internal/exitcode"
	"todoctl/internal/service"
)

func init() {
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command. The password and its
// confirmation are read from stdin.
type RegisterCmd struct {
	username string
	email    string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string {
	return "todoctl register --username <name> [--email <address>]"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.username, "username", "", "")
	fs.StringVar(&c.username, "u", "", "")
	fs.StringVar(&c.email, "email", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	username := strings.TrimSpace(c.username)
	if username == "" {
		fmt.Fprintln(errOut, "error: username required")
		return exitcode.UserError
	}

	pw, err := newLineReader(errOut).readAll("Password", "Confirm password")
	if err != nil {
		return inputError(errOut, err)
	}

	ctl, _ := newAccount(env, "")
	reg := service.Registration{
		Username:   username,
		Email:      strings.TrimSpace(c.email),
		Password:   pw[0],
		RePassword: pw[1],
	}
	if err := ctl.Register(ctx, reg); err != nil {
		return report(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "account created, you can now log in")
	}
	return exitcode.Success
}
