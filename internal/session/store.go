// Package session holds the single client credential and persists it across runs.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// ErrNoSession is returned when an authenticated operation is attempted
// without a stored credential.
var ErrNoSession = errors.New("not logged in")

// Session is the current credential. The zero value is the absent session.
type Session struct {
	Token string
}

// Active reports whether a credential is present.
func (s Session) Active() bool {
	return s.Token != ""
}

// Store holds at most one Session.
type Store interface {
	// Get returns the current session.
	Get() Session

	// Set stores token and persists it.
	Set(token string) error

	// Clear removes the stored token. Clearing an absent session is a no-op.
	Clear() error
}

// FileStore is a Store persisted as an oauth2.Token JSON document.
type FileStore struct {
	mu    sync.RWMutex
	path  string
	token string
}

// NewFileStore loads the session stored at path, if any.
// A missing file is an absent session; an unreadable or corrupt one is an error.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", filepath.Base(path), err)
	}
	s.token = tok.AccessToken
	return s, nil
}

// Get implements Store.
func (s *FileStore) Get() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Session{Token: s.token}
}

// Set implements Store. The file is written with mode 0600 and its
// directory is created with mode 0700 when missing.
func (s *FileStore) Set(token string) error {
	if token == "" {
		return errors.New("empty token")
	}

	data, err := json.MarshalIndent(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}, "", "  ")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	s.token = token
	return nil
}

// Clear implements Store.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	s.token = ""
	return nil
}

// MemoryStore is a Store that lives only as long as the process.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore returns a store holding token ("" for absent).
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

// Get implements Store.
func (m *MemoryStore) Get() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Session{Token: m.token}
}

// Set implements Store.
func (m *MemoryStore) Set(token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return nil
}
