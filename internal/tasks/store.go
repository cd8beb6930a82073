// Package tasks keeps the local task list consistent with the remote service.
package tasks

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"todoctl/internal/refresh"
	"todoctl/internal/service"
)

// ErrEmptyText is returned by Create for blank task text.
var ErrEmptyText = errors.New("task text required")

// Store holds the ordered task list.
//
// Create refetches because the new id is only known to the server. Toggle
// and Delete already know the id and patch the local list in place once the
// server has confirmed the change.
type Store struct {
	api    service.TaskService
	signal *refresh.Signal
	log    zerolog.Logger

	mu      sync.Mutex
	tasks   []service.Task
	issued  uint64 // sequence number of the last FetchAll started
	applied uint64 // sequence number of the last FetchAll applied
	pending int
	mounted bool
	seen    uint64 // signal value observed by the last Refresh
}

// New creates an empty Store. Refresh performs the initial fetch.
func New(api service.TaskService, signal *refresh.Signal, logger zerolog.Logger) *Store {
	return &Store{api: api, signal: signal, log: logger}
}

// Tasks returns a copy of the local list in server order.
func (s *Store) Tasks() []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]service.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Loading reports whether a FetchAll is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending > 0
}

// FetchAll replaces the local list with the server's. Responses are tagged
// with a sequence number; one that resolves after a newer fetch was applied
// is discarded.
func (s *Store) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.pending++
	s.mu.Unlock()

	tasks, err := s.api.ListTasks(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--
	if err != nil {
		s.log.Warn().Err(err).Uint64("seq", seq).Msg("fetch tasks failed")
		return err
	}
	if seq <= s.applied {
		s.log.Debug().Uint64("seq", seq).Uint64("applied", s.applied).Msg("discarding stale task list")
		return nil
	}
	s.applied = seq
	s.tasks = tasks
	s.log.Debug().Uint64("seq", seq).Int("count", len(tasks)).Msg("task list replaced")
	return nil
}

// Refresh runs FetchAll on its first call and afterwards only when the
// refresh signal changed since the previous call. It reports whether a fetch
// was issued.
func (s *Store) Refresh(ctx context.Context) (bool, error) {
	v := s.signal.Value()

	s.mu.Lock()
	if s.mounted && v == s.seen {
		s.mu.Unlock()
		return false, nil
	}
	s.mounted = true
	s.seen = v
	s.mu.Unlock()

	return true, s.FetchAll(ctx)
}

// NeedsRefresh reports whether the next Refresh would fetch.
func (s *Store) NeedsRefresh() bool {
	v := s.signal.Value()
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.mounted || v != s.seen
}

// Reset forgets the local list when the session ends. Fetches still in
// flight are discarded and the next Refresh fetches again.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = nil
	s.applied = s.issued
	s.mounted = false
}

// Create sends a new open task. On success the refresh signal is bumped so
// the next Refresh picks up the server-assigned id. The local list is never
// touched here.
func (s *Store) Create(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if err := s.api.CreateTask(ctx, text); err != nil {
		s.log.Warn().Err(err).Msg("create task failed")
		return err
	}
	s.signal.Bump()
	return nil
}

// Toggle flips task's completed flag on the server and, once confirmed,
// applies the new value to the matching local entry.
func (s *Store) Toggle(ctx context.Context, task service.Task) error {
	completed := !task.Completed
	if err := s.api.SetCompleted(ctx, task.ID, completed); err != nil {
		s.log.Warn().Err(err).Str("id", string(task.ID)).Msg("update task failed")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == task.ID {
			s.tasks[i].Completed = completed
		}
	}
	return nil
}

// Delete removes the task on the server and, once confirmed, drops the
// matching local entry.
func (s *Store) Delete(ctx context.Context, id service.TaskID) error {
	if err := s.api.DeleteTask(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("id", string(id)).Msg("delete task failed")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tasks[:0:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	return nil
}
