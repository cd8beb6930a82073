// Package exitcode defines exit codes for the CLI.
package exitcode

// Process exit codes.
const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, rejected input, unknown task).
	UserError = 1

	// AuthError indicates a missing, corrupt or rejected session.
	AuthError = 2

	// BackendError indicates a service or network error.
	BackendError = 3
)
