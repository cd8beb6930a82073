// Package restapi implements the service.Service interface over the remote
// account/task REST API.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"todoctl/internal/config"
	"todoctl/internal/service"
	"todoctl/internal/session"
)

// Endpoint paths, relative to the configured base URL.
const (
	PathCreateSession  = "/auth/jwt/create/"
	PathUsers          = "/auth/users/"
	PathSetPassword    = "/auth/users/set_password/"
	PathResetPassword  = "/auth/users/reset_password/"
	PathResetConfirm   = "/auth/users/reset_password_confirm/"
	PathTasks          = "/todoapp/todolist/"
	requestIDHeader    = "X-Request-ID"
	jsonContentType    = "application/json"
	anyStatus          = 0
	maxErrorBodyLength = 64 << 10
)

// Client implements service.Service against the REST API.
// There is no client-side timeout and no retry: callers bound requests with ctx.
type Client struct {
	base   string
	anon   *http.Client
	authed *http.Client
	log    zerolog.Logger
}

// New creates a client for cfg.APIURL. Authenticated requests take their
// bearer credential from tokens at send time.
func New(cfg *config.Config, tokens oauth2.TokenSource, logger zerolog.Logger) (*Client, error) {
	return NewWithHTTPClient(cfg.APIURL, tokens, http.DefaultClient, logger)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, tokens oauth2.TokenSource, hc *http.Client, logger zerolog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url: %q", baseURL)
	}

	authed := *hc
	authed.Transport = &oauth2.Transport{Source: tokens, Base: hc.Transport}

	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		anon:   hc,
		authed: &authed,
		log:    logger,
	}, nil
}

// CreateSession exchanges credentials for an access token.
func (c *Client) CreateSession(ctx context.Context, creds service.Credentials) (string, error) {
	var out struct {
		Access string `json:"access"`
	}
	if err := c.do(ctx, c.anon, "create session", http.MethodPost, PathCreateSession, creds, &out, anyStatus); err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", &service.RemoteError{Op: "create session", Status: http.StatusOK, Detail: "no access token in response"}
	}
	return out.Access, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, reg service.Registration) error {
	return c.do(ctx, c.anon, "register", http.MethodPost, PathUsers, reg, nil, anyStatus)
}

// ChangePassword sets a new password for the logged-in account.
func (c *Client) ChangePassword(ctx context.Context, change service.PasswordChange) error {
	return c.do(ctx, c.authed, "change password", http.MethodPost, PathSetPassword, change, nil, http.StatusNoContent)
}

// RequestPasswordReset asks for a reset link.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	body := struct {
		Email string `json:"email"`
	}{email}
	return c.do(ctx, c.anon, "request password reset", http.MethodPost, PathResetPassword, body, nil, http.StatusNoContent)
}

// ConfirmPasswordReset redeems a reset link.
func (c *Client) ConfirmPasswordReset(ctx context.Context, confirm service.ResetConfirmation) error {
	return c.do(ctx, c.anon, "confirm password reset", http.MethodPost, PathResetConfirm, confirm, nil, http.StatusNoContent)
}

// ListTasks returns all tasks in server order.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var tasks []service.Task
	if err := c.do(ctx, c.authed, "list tasks", http.MethodGet, PathTasks, nil, &tasks, anyStatus); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates an open task.
func (c *Client) CreateTask(ctx context.Context, text string) error {
	body := struct {
		Task        string `json:"task"`
		IsCompleted bool   `json:"is_completed"`
	}{Task: text}
	return c.do(ctx, c.authed, "create task", http.MethodPost, PathTasks, body, nil, anyStatus)
}

// SetCompleted sends a partial update of is_completed.
func (c *Client) SetCompleted(ctx context.Context, id service.TaskID, completed bool) error {
	body := struct {
		IsCompleted bool `json:"is_completed"`
	}{completed}
	return c.do(ctx, c.authed, "update task", http.MethodPut, taskPath(id), body, nil, anyStatus)
}

// DeleteTask deletes a task. Only 204 No Content counts as success.
func (c *Client) DeleteTask(ctx context.Context, id service.TaskID) error {
	return c.do(ctx, c.authed, "delete task", http.MethodDelete, taskPath(id), nil, nil, http.StatusNoContent)
}

func taskPath(id service.TaskID) string {
	return PathTasks + url.PathEscape(string(id))
}

// do sends one JSON request. want is the exact success status, or anyStatus
// to accept every 2xx. out, when non-nil, receives the decoded response body.
func (c *Client) do(ctx context.Context, hc *http.Client, op, method, path string, in, out any, want int) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", jsonContentType)
	if in != nil {
		req.Header.Set("Content-Type", jsonContentType)
	}
	reqID := uuid.NewString()
	req.Header.Set(requestIDHeader, reqID)

	logger := c.log.With().Str("op", op).Str("method", method).Str("path", path).Str("request_id", reqID).Logger()
	logger.Debug().Msg("request")

	resp, err := hc.Do(req)
	if err != nil {
		return wrapError(ctx, op, err, logger)
	}
	defer resp.Body.Close()

	logger.Debug().Int("status", resp.StatusCode).Msg("response")

	if err := googleapi.CheckResponse(resp); err != nil {
		return remoteError(op, resp.StatusCode, err)
	}
	if want != anyStatus && resp.StatusCode != want {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyLength))
		return &service.RemoteError{
			Op:     op,
			Status: resp.StatusCode,
			Detail: fmt.Sprintf("unexpected status %d (want %d)", resp.StatusCode, want),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: invalid response: %w", op, err)
	}
	return nil
}

// wrapError classifies a request that produced no response.
func wrapError(ctx context.Context, op string, err error, logger zerolog.Logger) error {
	if errors.Is(err, session.ErrNoSession) {
		return fmt.Errorf("%s: %w", op, session.ErrNoSession)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	logger.Warn().Err(err).Msg("request failed")
	return &service.TransportError{Op: op, Err: err}
}

// remoteError converts a googleapi.Error into a service.RemoteError carrying
// the decoded field-keyed body.
func remoteError(op string, status int, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return service.NewRemoteError(op, gerr.Code, []byte(gerr.Body))
	}
	return &service.RemoteError{Op: op, Status: status, Detail: err.Error()}
}
