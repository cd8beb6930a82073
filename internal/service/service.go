package service

import "context"

// AccountService covers the account endpoints. Only ChangePassword needs a session.
type AccountService interface {
	// CreateSession exchanges credentials for an access token.
	CreateSession(ctx context.Context, creds Credentials) (string, error)

	// Register creates an account. It does not log in.
	Register(ctx context.Context, reg Registration) error

	// ChangePassword sets a new password for the logged-in account.
	ChangePassword(ctx context.Context, change PasswordChange) error

	// RequestPasswordReset asks for a reset link to be mailed to email.
	// Succeeds whether or not the address is known.
	RequestPasswordReset(ctx context.Context, email string) error

	// ConfirmPasswordReset redeems a reset link.
	ConfirmPasswordReset(ctx context.Context, confirm ResetConfirmation) error
}

// TaskService covers the task endpoints. Every call needs a session.
type TaskService interface {
	// ListTasks returns all tasks in server order.
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates an open task. The new id is not returned.
	CreateTask(ctx context.Context, text string) error

	// SetCompleted updates the completed flag of one task.
	SetCompleted(ctx context.Context, id TaskID, completed bool) error

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id TaskID) error
}

// Service is everything the client needs from the remote service.
// Screens and commands never talk HTTP directly.
type Service interface {
	AccountService
	TaskService
}
