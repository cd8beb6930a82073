// Package account runs the login, registration and password flows and turns
// service failures into messages fit for a form.
package account

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"todoctl/internal/deeplink"
	"todoctl/internal/service"
	"todoctl/internal/view"
)

// Messages shown to the user.
const (
	MsgNetwork          = "Network error. Could not connect to the API."
	MsgLoginFailed      = "Invalid credentials or server error."
	MsgRegisterFailed   = "Registration failed. Please check your details."
	MsgChangeFailed     = "Password change failed. Please try again."
	MsgResetReqFailed   = "An error occurred."
	MsgResetFailed      = "Password reset failed. The link may be expired or invalid."
	MsgPasswordMismatch = "Passwords do not match."
	MsgNewPasswordMism  = "New passwords do not match."
	MsgNoResetLink      = "No password reset link."
	MsgResetRequested   = "If your account exists, you will receive a password reset link shortly."
)

// FormError is a failed flow. Message is what the form displays; Err is the
// underlying cause, nil for client-side checks.
type FormError struct {
	Message string
	Err     error
}

func (e *FormError) Error() string { return e.Message }

func (e *FormError) Unwrap() error { return e.Err }

// field is a server field name and the label its message is shown under.
// An empty label shows the message as is.
type field struct {
	name  string
	label string
}

var (
	registerFields = []field{
		{"username", "Username error: "},
		{"email", "Email error: "},
		{"password", "Password error: "},
		{"re_password", "Password confirmation error: "},
	}
	changeFields = []field{
		{"current_password", "Current password error: "},
		{"new_password", "New password error: "},
		{"non_field_errors", ""},
	}
	resetRequestFields = []field{
		{"email", ""},
	}
	resetConfirmFields = []field{
		{"uid", "UID error: "},
		{"token", "Token error: "},
		{"new_password", "Password error: "},
	}
)

// Controller runs account flows against the service and raises the resulting
// events on the view machine.
type Controller struct {
	api     service.AccountService
	machine *view.Machine
	log     zerolog.Logger
}

// New creates a Controller.
func New(api service.AccountService, machine *view.Machine, logger zerolog.Logger) *Controller {
	return &Controller{api: api, machine: machine, log: logger}
}

// Login creates a session and moves to the task list.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	return c.run(c.SubmitLogin(ctx, username, password))
}

// Register creates an account and returns to the login screen. The new
// account is not logged in.
func (c *Controller) Register(ctx context.Context, reg service.Registration) error {
	return c.run(c.SubmitRegister(ctx, reg))
}

// ChangePassword replaces the password and ends the session.
func (c *Controller) ChangePassword(ctx context.Context, change service.PasswordChange) error {
	return c.run(c.SubmitChangePassword(ctx, change))
}

// ConfirmReset redeems the reset link the machine was started with.
func (c *Controller) ConfirmReset(ctx context.Context, newPassword, reNewPassword string) error {
	params, ok := c.machine.ResetParams()
	if !ok {
		return &FormError{Message: MsgNoResetLink}
	}
	return c.run(c.SubmitConfirmReset(ctx, params, newPassword, reNewPassword))
}

// CancelReset abandons the reset link.
func (c *Controller) CancelReset() error {
	return c.Apply(view.ResetConfirmCancelled{})
}

// Logout ends the session.
func (c *Controller) Logout() error {
	return c.Apply(view.LogoutRequested{})
}

// Apply raises ev on the view machine.
func (c *Controller) Apply(ev view.Event) error {
	if err := c.machine.Dispatch(ev); err != nil {
		return &FormError{Message: err.Error(), Err: err}
	}
	return nil
}

func (c *Controller) run(ev view.Event, err error) error {
	if err != nil {
		return err
	}
	return c.Apply(ev)
}

// The Submit methods talk to the service only. They return the event to
// raise on success and leave the view machine alone, so they may run off
// the goroutine that owns it.

// SubmitLogin exchanges credentials for a session token.
func (c *Controller) SubmitLogin(ctx context.Context, username, password string) (view.Event, error) {
	token, err := c.api.CreateSession(ctx, service.Credentials{Username: username, Password: password})
	if err != nil {
		c.log.Warn().Err(err).Msg("login failed")
		return nil, loginError(err)
	}
	return view.LoginSucceeded{Token: token}, nil
}

// SubmitRegister creates an account.
func (c *Controller) SubmitRegister(ctx context.Context, reg service.Registration) (view.Event, error) {
	if reg.Password != reg.RePassword {
		return nil, &FormError{Message: MsgPasswordMismatch}
	}
	if err := c.api.Register(ctx, reg); err != nil {
		c.log.Warn().Err(err).Msg("register failed")
		return nil, fieldError(err, registerFields, MsgRegisterFailed)
	}
	return view.RegisterSucceeded{}, nil
}

// SubmitChangePassword sets a new password.
func (c *Controller) SubmitChangePassword(ctx context.Context, change service.PasswordChange) (view.Event, error) {
	if change.NewPassword != change.ReNewPassword {
		return nil, &FormError{Message: MsgNewPasswordMism}
	}
	if err := c.api.ChangePassword(ctx, change); err != nil {
		c.log.Warn().Err(err).Msg("change password failed")
		return nil, fieldError(err, changeFields, MsgChangeFailed)
	}
	return view.PasswordChangeSucceeded{}, nil
}

// SubmitConfirmReset redeems the reset link described by params.
func (c *Controller) SubmitConfirmReset(ctx context.Context, params deeplink.Params, newPassword, reNewPassword string) (view.Event, error) {
	if newPassword != reNewPassword {
		return nil, &FormError{Message: MsgPasswordMismatch}
	}
	err := c.api.ConfirmPasswordReset(ctx, service.ResetConfirmation{
		UID:           params.UID,
		Token:         params.Token,
		NewPassword:   newPassword,
		ReNewPassword: reNewPassword,
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("reset confirm failed")
		return nil, fieldError(err, resetConfirmFields, MsgResetFailed)
	}
	return view.ResetConfirmSucceeded{}, nil
}

// RequestReset asks for a reset link and returns the notice to display.
// The notice does not reveal whether the address is known. It never
// changes the view.
func (c *Controller) RequestReset(ctx context.Context, email string) (string, error) {
	if err := c.api.RequestPasswordReset(ctx, email); err != nil {
		c.log.Warn().Err(err).Msg("reset request failed")
		return "", fieldError(err, resetRequestFields, MsgResetReqFailed)
	}
	return MsgResetRequested, nil
}

func loginError(err error) error {
	if errors.Is(err, service.ErrNetwork) {
		return &FormError{Message: MsgNetwork, Err: err}
	}
	var rerr *service.RemoteError
	if errors.As(err, &rerr) && rerr.Detail != "" {
		return &FormError{Message: rerr.Detail, Err: err}
	}
	return &FormError{Message: MsgLoginFailed, Err: err}
}

// fieldError picks the first field in priority order that carries a message.
func fieldError(err error, fields []field, fallback string) error {
	if errors.Is(err, service.ErrNetwork) {
		return &FormError{Message: MsgNetwork, Err: err}
	}
	var rerr *service.RemoteError
	if errors.As(err, &rerr) {
		for _, f := range fields {
			if msg, ok := rerr.Field(f.name); ok {
				return &FormError{Message: f.label + msg, Err: err}
			}
		}
	}
	return &FormError{Message: fallback, Err: err}
}

// Message returns the text a form shows for err.
func Message(err error) string {
	var ferr *FormError
	if errors.As(err, &ferr) {
		return ferr.Message
	}
	if errors.Is(err, service.ErrNetwork) {
		return MsgNetwork
	}
	return err.Error()
}
