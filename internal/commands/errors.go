package commands

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"todoctl/internal/account"
	"todoctl/internal/exitcode"
	"todoctl/internal/service"
	"todoctl/internal/session"
)

// exitCodeFor classifies err.
func exitCodeFor(err error) int {
	var rerr *service.RemoteError
	switch {
	case errors.Is(err, session.ErrNoSession):
		return exitcode.AuthError
	case errors.Is(err, service.ErrNetwork):
		return exitcode.BackendError
	case errors.As(err, &rerr):
		if rerr.Unauthorized() {
			return exitcode.AuthError
		}
		if rerr.Status >= http.StatusBadRequest && rerr.Status < http.StatusInternalServerError {
			return exitcode.UserError
		}
		return exitcode.BackendError
	}

	var ferr *account.FormError
	if errors.As(err, &ferr) && ferr.Err == nil {
		return exitcode.UserError
	}
	return exitcode.BackendError
}

// report prints err and returns its exit code.
func report(errOut io.Writer, err error) int {
	code := exitCodeFor(err)

	var ferr *account.FormError
	switch {
	case errors.As(err, &ferr):
		fmt.Fprintf(errOut, "error: %s\n", ferr.Message)
	case errors.Is(err, session.ErrNoSession):
		fmt.Fprintln(errOut, "error: not logged in (run: todoctl login)")
	case code == exitcode.AuthError:
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
	case errors.Is(err, service.ErrNetwork):
		fmt.Fprintf(errOut, "error: backend error: %s\n", account.MsgNetwork)
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	}
	return code
}
