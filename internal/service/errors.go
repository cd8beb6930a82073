package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrNetwork marks failures where no response was received.
var ErrNetwork = errors.New("network error")

// TransportError wraps a request that never completed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrNetwork) hold for every TransportError.
func (e *TransportError) Is(target error) bool { return target == ErrNetwork }

// RemoteError is a response the service answered with a failure status.
type RemoteError struct {
	Op     string
	Status int

	// Detail is the top-level "detail" message, if any.
	Detail string

	// Fields holds field-keyed validation messages.
	Fields map[string][]string
}

func (e *RemoteError) Error() string {
	msg := e.Detail
	if msg == "" {
		if name, first, ok := e.firstField(); ok {
			msg = name + ": " + first
		} else {
			msg = http.StatusText(e.Status)
		}
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, msg)
}

// Field returns the first message recorded for name.
func (e *RemoteError) Field(name string) (string, bool) {
	msgs := e.Fields[name]
	if len(msgs) == 0 {
		return "", false
	}
	return msgs[0], true
}

// Unauthorized reports whether the service rejected the credential.
func (e *RemoteError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

func (e *RemoteError) firstField() (string, string, bool) {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if msg, ok := e.Field(name); ok {
			return name, msg, true
		}
	}
	return "", "", false
}

// NewRemoteError decodes a failure body. Bodies are JSON objects whose values
// are a string or a list of strings; anything else is kept as an empty field set.
func NewRemoteError(op string, status int, body []byte) *RemoteError {
	e := &RemoteError{Op: op, Status: status, Fields: map[string][]string{}}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return e
	}
	for name, value := range raw {
		msgs := decodeMessages(value)
		if len(msgs) == 0 {
			continue
		}
		if name == "detail" {
			e.Detail = strings.Join(msgs, " ")
			continue
		}
		e.Fields[name] = msgs
	}
	return e
}

func decodeMessages(value json.RawMessage) []string {
	var one string
	if err := json.Unmarshal(value, &one); err == nil {
		return []string{one}
	}
	var many []string
	if err := json.Unmarshal(value, &many); err == nil {
		return many
	}
	return nil
}
