// Package view decides which screen is active and applies the transitions
// raised by the screens.
package view

import (
	"fmt"

	"todoctl/internal/deeplink"
	"todoctl/internal/refresh"
	"todoctl/internal/session"
)

// View is one of the client's screens.
type View int

const (
	Login View = iota
	Register
	ResetRequest
	ResetConfirm
	List
	ChangePassword
)

// String returns the screen name.
func (v View) String() string {
	switch v {
	case Login:
		return "login"
	case Register:
		return "register"
	case ResetRequest:
		return "resetRequest"
	case ResetConfirm:
		return "resetConfirm"
	case List:
		return "list"
	case ChangePassword:
		return "changePassword"
	}
	return fmt.Sprintf("View(%d)", int(v))
}

// protected reports whether v needs a session.
func (v View) protected() bool {
	switch v {
	case List, ChangePassword:
		return true
	}
	return false
}

// Event is raised by a screen.
type Event interface {
	event()
}

// LoginSucceeded carries the credential returned by the account service.
type LoginSucceeded struct{ Token string }

// RegisterSucceeded is raised after an account was created.
type RegisterSucceeded struct{}

// LogoutRequested is raised by an explicit logout.
type LogoutRequested struct{}

// PasswordChangeSucceeded is raised after the service accepted a new password.
type PasswordChangeSucceeded struct{}

// NavigateTo moves to Target without touching the session.
type NavigateTo struct{ Target View }

// ResetConfirmSucceeded is raised after a reset link was redeemed.
type ResetConfirmSucceeded struct{}

// ResetConfirmCancelled is raised when the user abandons a reset link.
type ResetConfirmCancelled struct{}

func (LoginSucceeded) event()          {}
func (RegisterSucceeded) event()       {}
func (LogoutRequested) event()         {}
func (PasswordChangeSucceeded) event() {}
func (NavigateTo) event()              {}
func (ResetConfirmSucceeded) event()   {}
func (ResetConfirmCancelled) event()   {}

// Machine holds the active View. It is not safe for concurrent use; events
// are applied one at a time by the caller's event loop.
type Machine struct {
	store   session.Store
	signal  *refresh.Signal
	loc     deeplink.Location
	current View
	reset   *deeplink.Params
}

// New picks the initial screen: ResetConfirm when loc holds a reset link,
// otherwise List with a session and Login without one. loc may be nil.
func New(store session.Store, signal *refresh.Signal, loc deeplink.Location) *Machine {
	m := &Machine{store: store, signal: signal, loc: loc, current: Login}

	if loc != nil {
		if p, ok := deeplink.Parse(loc.Fragment()); ok {
			m.reset = &p
			m.current = ResetConfirm
			return m
		}
	}
	if store.Get().Active() {
		m.current = List
	}
	return m
}

// Current returns the active View.
func (m *Machine) Current() View {
	return m.current
}

// ResetParams returns the parameters of the reset link the machine was
// started with, until the reset flow completes.
func (m *Machine) ResetParams() (deeplink.Params, bool) {
	if m.reset == nil {
		return deeplink.Params{}, false
	}
	return *m.reset, true
}

// Dispatch applies ev. Events with no transition from the current screen are
// ignored. An error is returned only when the session could not be
// persisted, in which case the active View is unchanged.
func (m *Machine) Dispatch(ev Event) error {
	switch e := ev.(type) {
	case LoginSucceeded:
		if err := m.store.Set(e.Token); err != nil {
			return err
		}
		m.signal.Bump()
		m.current = List

	case RegisterSucceeded:
		m.current = Login

	case LogoutRequested, PasswordChangeSucceeded:
		if err := m.store.Clear(); err != nil {
			return err
		}
		m.current = Login

	case NavigateTo:
		m.navigate(e.Target)

	case ResetConfirmSucceeded:
		if m.current != ResetConfirm {
			return nil
		}
		if err := m.store.Clear(); err != nil {
			return err
		}
		m.finishReset()
		m.current = Login

	case ResetConfirmCancelled:
		if m.current != ResetConfirm {
			return nil
		}
		m.finishReset()
		m.current = Login
		if m.store.Get().Active() {
			m.current = List
		}
	}
	return nil
}

func (m *Machine) navigate(target View) {
	switch target {
	case Login, Register, ResetRequest, List, ChangePassword:
	case ResetConfirm:
		// Only reachable through a reset link.
		return
	default:
		return
	}
	if target.protected() && !m.store.Get().Active() {
		target = Login
	}

	if m.current == ResetConfirm && target != ResetConfirm {
		m.finishReset()
	}
	m.current = target
}

func (m *Machine) finishReset() {
	m.reset = nil
	if m.loc != nil {
		m.loc.Clear()
	}
}
