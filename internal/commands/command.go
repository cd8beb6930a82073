// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"github.com/rs/zerolog"

	"todoctl/internal/config"
	"todoctl/internal/log"
	"todoctl/internal/service"
	"todoctl/internal/session"
)

// Env is what a command runs against.
type Env struct {
	// Config is always provided (config dir, API URL, output flags).
	Config *config.Config

	// Session is the stored credential.
	Session session.Store

	// Service talks to the remote account/task service. Authenticated calls
	// read their credential from Session at send time.
	Service service.Service

	// Log is the shared logger.
	Log zerolog.Logger

	// LogSink is where Log writes, when it can be redirected. May be nil.
	LogSink *log.Sink
}

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a session.
	// The dispatcher refuses to run such commands while logged out.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}
