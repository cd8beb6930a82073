// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"golang.org/x/oauth2"

	"todoctl/internal/service"
)

// ErrNotFound is returned when a task does not exist.
var ErrNotFound = &service.RemoteError{Op: "fake", Status: http.StatusNotFound, Detail: "Not found."}

type account struct {
	email    string
	password string
}

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu       sync.Mutex
	accounts map[string]account
	tokens   map[string]string // token -> username
	tasks    []service.Task
	nextID   int

	// Tokens, when set, is consulted by every task operation and by
	// ChangePassword, the way the HTTP backend attaches the bearer credential.
	Tokens oauth2.TokenSource

	// Error injection for testing
	CreateSessionErr  error
	RegisterErr       error
	ChangePasswordErr error
	ResetRequestErr   error
	ResetConfirmErr   error
	ListTasksErr      error
	CreateTaskErr     error
	SetCompletedErr   error
	DeleteTaskErr     error

	// Call counters
	ListCalls   int
	CreateCalls int
	UpdateCalls int
	DeleteCalls int

	// LastResetConfirmation records the last ConfirmPasswordReset argument.
	LastResetConfirmation service.ResetConfirmation
	// ResetRequests records every address passed to RequestPasswordReset.
	ResetRequests []string
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		accounts: make(map[string]account),
		tokens:   make(map[string]string),
		nextID:   1,
	}
}

// AddAccount registers an account directly.
func (f *FakeService) AddAccount(username, email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[username] = account{email: email, password: password}
}

// Password returns the stored password of username.
func (f *FakeService) Password(username string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts[username].password
}

// AddTask adds a task with the next id and returns it.
func (f *FakeService) AddTask(text string, completed bool) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addTaskLocked(text, completed)
}

func (f *FakeService) addTaskLocked(text string, completed bool) service.Task {
	t := service.Task{ID: service.TaskID(strconv.Itoa(f.nextID)), Text: text, Completed: completed}
	f.nextID++
	f.tasks = append(f.tasks, t)
	return t
}

// ServerTasks returns the tasks as the server holds them.
func (f *FakeService) ServerTasks() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

func (f *FakeService) authorize() error {
	if f.Tokens == nil {
		return nil
	}
	_, err := f.Tokens.Token()
	return err
}

// CreateSession implements service.Service.
func (f *FakeService) CreateSession(ctx context.Context, creds service.Credentials) (string, error) {
	if f.CreateSessionErr != nil {
		return "", f.CreateSessionErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	acct, ok := f.accounts[creds.Username]
	if !ok || acct.password != creds.Password {
		return "", &service.RemoteError{
			Op:     "create session",
			Status: http.StatusUnauthorized,
			Detail: "No active account found with the given credentials",
		}
	}
	token := fmt.Sprintf("token-%s-%d", creds.Username, len(f.tokens)+1)
	f.tokens[token] = creds.Username
	return token, nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, reg service.Registration) error {
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.accounts[reg.Username]; exists {
		return &service.RemoteError{
			Op:     "register",
			Status: http.StatusBadRequest,
			Fields: map[string][]string{"username": {"A user with that username already exists."}},
		}
	}
	if reg.Password != reg.RePassword {
		return &service.RemoteError{
			Op:     "register",
			Status: http.StatusBadRequest,
			Fields: map[string][]string{"non_field_errors": {"The two password fields didn't match."}},
		}
	}
	f.accounts[reg.Username] = account{email: reg.Email, password: reg.Password}
	return nil
}

// ChangePassword implements service.Service.
func (f *FakeService) ChangePassword(ctx context.Context, change service.PasswordChange) error {
	if err := f.authorize(); err != nil {
		return err
	}
	if f.ChangePasswordErr != nil {
		return f.ChangePasswordErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	username, err := f.currentUserLocked()
	if err != nil {
		return err
	}
	acct := f.accounts[username]
	if acct.password != change.CurrentPassword {
		return &service.RemoteError{
			Op:     "change password",
			Status: http.StatusBadRequest,
			Fields: map[string][]string{"current_password": {"Invalid password."}},
		}
	}
	acct.password = change.NewPassword
	f.accounts[username] = acct
	return nil
}

// currentUserLocked resolves the account behind Tokens. Without Tokens the
// single registered account is used.
func (f *FakeService) currentUserLocked() (string, error) {
	if f.Tokens != nil {
		tok, err := f.Tokens.Token()
		if err != nil {
			return "", err
		}
		if name, ok := f.tokens[tok.AccessToken]; ok {
			return name, nil
		}
	}
	for name := range f.accounts {
		return name, nil
	}
	return "", &service.RemoteError{Op: "change password", Status: http.StatusUnauthorized, Detail: "Authentication credentials were not provided."}
}

// RequestPasswordReset implements service.Service.
func (f *FakeService) RequestPasswordReset(ctx context.Context, email string) error {
	if f.ResetRequestErr != nil {
		return f.ResetRequestErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ResetRequests = append(f.ResetRequests, email)
	return nil
}

// ConfirmPasswordReset implements service.Service.
func (f *FakeService) ConfirmPasswordReset(ctx context.Context, confirm service.ResetConfirmation) error {
	if f.ResetConfirmErr != nil {
		return f.ResetConfirmErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastResetConfirmation = confirm
	return nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	if err := f.authorize(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, text string) error {
	if err := f.authorize(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls++
	if f.CreateTaskErr != nil {
		return f.CreateTaskErr
	}
	f.addTaskLocked(text, false)
	return nil
}

// SetCompleted implements service.Service.
func (f *FakeService) SetCompleted(ctx context.Context, id service.TaskID, completed bool) error {
	if err := f.authorize(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++
	if f.SetCompletedErr != nil {
		return f.SetCompletedErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Completed = completed
			return nil
		}
	}
	return ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id service.TaskID) error {
	if err := f.authorize(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeleteCalls++
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Counts returns the list/create/update/delete call counters under the lock.
func (f *FakeService) Counts() (list, create, update, del int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ListCalls, f.CreateCalls, f.UpdateCalls, f.DeleteCalls
}

var _ service.Service = (*FakeService)(nil)

// IsNotFound reports whether err is the fake's not-found error.
func IsNotFound(err error) bool {
	var rerr *service.RemoteError
	return errors.As(err, &rerr) && rerr.Status == http.StatusNotFound
}
