// Package service defines the backend-agnostic interface for account and task operations.
package service

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TaskID is the server-assigned task identifier. It is opaque to the client.
type TaskID string

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *TaskID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = TaskID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid task id %s", data)
	}
	*id = TaskID(n.String())
	return nil
}

// Task represents a single task item.
type Task struct {
	ID        TaskID `json:"id"`
	Text      string `json:"task"`
	Completed bool   `json:"is_completed"`
}

// Credentials are exchanged for a session token.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration creates an account.
type Registration struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	RePassword string `json:"re_password"`
}

// PasswordChange replaces the password of the logged-in account.
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ReNewPassword   string `json:"re_new_password"`
}

// ResetConfirmation redeems a password-reset link.
type ResetConfirmation struct {
	UID           string `json:"uid"`
	Token         string `json:"token"`
	NewPassword   string `json:"new_password"`
	ReNewPassword string `json:"re_new_password"`
}
