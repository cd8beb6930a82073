// Package tui implements the interactive screens of `todoctl ui`.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"todoctl/internal/account"
	"todoctl/internal/deeplink"
	"todoctl/internal/refresh"
	"todoctl/internal/service"
	"todoctl/internal/session"
	"todoctl/internal/tasks"
	"todoctl/internal/view"
)

// Notices shown after a flow moves back to the login screen.
const (
	noticeRegistered = "Registration successful! You can now log in."
	noticeChanged    = "Password changed successfully! Please log in again."
	noticeReset      = "Password has been reset. Please log in."
)

// Messages produced by commands. Each carries the outcome of one request.
type (
	accountDoneMsg struct {
		from   view.View
		ev     view.Event
		notice string
		err    error
	}
	fetchedMsg struct{ err error }
	createdMsg struct{ err error }
	toggledMsg struct{ err error }
	deletedMsg struct{ err error }
)

// Model is the bubbletea model. The active screen is always the view
// machine's current View; every request runs as a tea.Cmd and its result
// is applied by Update, one message at a time.
type Model struct {
	ctx     context.Context
	machine *view.Machine
	account *account.Controller
	tasks   *tasks.Store
	log     zerolog.Logger

	screen view.View
	inputs []textinput.Model
	focus  int
	cursor int

	busy   bool
	err    string
	notice string
	width  int
}

// New builds the model over api and store. loc holds the reset link the
// client was started with and may be nil.
func New(ctx context.Context, api service.Service, store session.Store, loc deeplink.Location, logger zerolog.Logger) *Model {
	sig := &refresh.Signal{}
	machine := view.New(store, sig, loc)
	m := &Model{
		ctx:     ctx,
		machine: machine,
		account: account.New(api, machine, logger),
		tasks:   tasks.New(api, sig, logger),
		log:     logger,
	}
	m.enter(machine.Current())
	return m
}

// Current returns the active screen.
func (m *Model) Current() view.View {
	return m.machine.Current()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.refreshCmd()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		cmd = m.handleKey(msg)

	case accountDoneMsg:
		m.busy = false
		// Errors and notices belong to the screen that sent the request.
		local := msg.from == m.screen
		switch {
		case msg.err != nil:
			if local {
				m.err = account.Message(msg.err)
			}
		case msg.ev == nil:
			if local {
				m.notice = msg.notice
				m.inputs = newInputs(m.screen)
				m.focus = 0
			}
		default:
			if m.apply(msg.ev) && local {
				m.notice = msg.notice
			}
		}

	case fetchedMsg:
		if msg.err != nil {
			m.err = account.Message(msg.err)
		}
		m.clampCursor()

	case createdMsg:
		m.busy = false
		if msg.err != nil {
			m.err = account.Message(msg.err)
			break
		}
		m.err = ""
		if len(m.inputs) > 0 {
			m.inputs[0].SetValue("")
		}

	case toggledMsg:
		m.finishTaskOp(msg.err)

	case deletedMsg:
		m.finishTaskOp(msg.err)
	}

	return m, tea.Batch(cmd, m.refreshCmd())
}

// refreshCmd fetches the task list when the list screen is shown and the
// store has not seen the latest refresh signal.
func (m *Model) refreshCmd() tea.Cmd {
	if m.machine.Current() != view.List || !m.tasks.NeedsRefresh() {
		return nil
	}
	ctx, store := m.ctx, m.tasks
	return func() tea.Msg {
		_, err := store.Refresh(ctx)
		return fetchedMsg{err: err}
	}
}

func (m *Model) finishTaskOp(err error) {
	m.busy = false
	m.err = ""
	if err != nil {
		m.err = account.Message(err)
	}
	m.clampCursor()
}

// apply raises ev and rebuilds the screen when the view changed. It reports
// whether ev was applied.
func (m *Model) apply(ev view.Event) bool {
	if err := m.account.Apply(ev); err != nil {
		m.err = account.Message(err)
		return false
	}
	switch ev.(type) {
	case view.LogoutRequested, view.PasswordChangeSucceeded:
		m.tasks.Reset()
	}
	m.enter(m.machine.Current())
	return true
}

// enter resets the per-screen state for v.
func (m *Model) enter(v view.View) {
	if v == m.screen && m.inputs != nil {
		return
	}
	m.log.Debug().Stringer("view", v).Msg("screen")
	m.screen = v
	m.inputs = newInputs(v)
	m.focus = 0
	m.cursor = 0
	m.err = ""
	m.notice = ""
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	switch key {
	case "tab", "down":
		if m.screen != view.List || key == "tab" {
			m.moveFocus(1)
			return nil
		}
	case "shift+tab", "up":
		if m.screen != view.List || key == "shift+tab" {
			m.moveFocus(-1)
			return nil
		}
	}

	switch m.screen {
	case view.Login:
		switch key {
		case "enter":
			return m.submit()
		case "ctrl+r":
			m.apply(view.NavigateTo{Target: view.Register})
			return nil
		case "ctrl+f":
			m.apply(view.NavigateTo{Target: view.ResetRequest})
			return nil
		}
	case view.Register, view.ResetRequest:
		switch key {
		case "enter":
			return m.submit()
		case "esc":
			m.apply(view.NavigateTo{Target: view.Login})
			return nil
		}
	case view.ResetConfirm:
		switch key {
		case "enter":
			return m.submit()
		case "esc":
			m.apply(view.ResetConfirmCancelled{})
			return nil
		}
	case view.ChangePassword:
		switch key {
		case "enter":
			return m.submit()
		case "esc":
			m.apply(view.NavigateTo{Target: view.List})
			return nil
		}
	case view.List:
		if cmd, handled := m.handleListKey(key); handled {
			return cmd
		}
	}

	return m.updateFocused(msg)
}

func (m *Model) handleListKey(key string) (tea.Cmd, bool) {
	switch key {
	case "enter":
		return m.createCmd(), true
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return nil, true
	case "down":
		if m.cursor < len(m.tasks.Tasks())-1 {
			m.cursor++
		}
		return nil, true
	case "ctrl+t":
		return m.toggleCmd(), true
	case "ctrl+x":
		return m.deleteCmd(), true
	case "ctrl+p":
		m.apply(view.NavigateTo{Target: view.ChangePassword})
		return nil, true
	case "ctrl+o":
		m.apply(view.LogoutRequested{})
		return nil, true
	}
	return nil, false
}

func (m *Model) moveFocus(delta int) {
	if len(m.inputs) < 2 {
		return
	}
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

func (m *Model) updateFocused(msg tea.KeyMsg) tea.Cmd {
	if len(m.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return cmd
}

// submit sends the current form. Only one request per form is in flight.
func (m *Model) submit() tea.Cmd {
	if m.busy {
		return nil
	}
	ctx, ctl := m.ctx, m.account
	v := values(m.inputs)

	var run func() accountDoneMsg
	switch m.screen {
	case view.Login:
		username, password := strings.TrimSpace(v[0]), v[1]
		run = func() accountDoneMsg {
			ev, err := ctl.SubmitLogin(ctx, username, password)
			return accountDoneMsg{ev: ev, err: err}
		}
	case view.Register:
		reg := service.Registration{
			Username:   strings.TrimSpace(v[0]),
			Email:      strings.TrimSpace(v[1]),
			Password:   v[2],
			RePassword: v[3],
		}
		run = func() accountDoneMsg {
			ev, err := ctl.SubmitRegister(ctx, reg)
			return accountDoneMsg{ev: ev, notice: noticeRegistered, err: err}
		}
	case view.ResetRequest:
		email := strings.TrimSpace(v[0])
		run = func() accountDoneMsg {
			notice, err := ctl.RequestReset(ctx, email)
			return accountDoneMsg{notice: notice, err: err}
		}
	case view.ResetConfirm:
		params, ok := m.machine.ResetParams()
		if !ok {
			m.err = account.MsgNoResetLink
			return nil
		}
		run = func() accountDoneMsg {
			ev, err := ctl.SubmitConfirmReset(ctx, params, v[0], v[1])
			return accountDoneMsg{ev: ev, notice: noticeReset, err: err}
		}
	case view.ChangePassword:
		change := service.PasswordChange{CurrentPassword: v[0], NewPassword: v[1], ReNewPassword: v[2]}
		run = func() accountDoneMsg {
			ev, err := ctl.SubmitChangePassword(ctx, change)
			return accountDoneMsg{ev: ev, notice: noticeChanged, err: err}
		}
	default:
		return nil
	}

	m.busy = true
	m.err = ""
	m.notice = ""
	from := m.screen
	return func() tea.Msg {
		msg := run()
		msg.from = from
		return msg
	}
}

func (m *Model) createCmd() tea.Cmd {
	if m.busy {
		return nil
	}
	text := m.inputs[0].Value()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	m.busy = true
	ctx, store := m.ctx, m.tasks
	return func() tea.Msg {
		return createdMsg{err: store.Create(ctx, text)}
	}
}

func (m *Model) toggleCmd() tea.Cmd {
	task, ok := m.selected()
	if !ok || m.busy {
		return nil
	}
	m.busy = true
	ctx, store := m.ctx, m.tasks
	return func() tea.Msg {
		return toggledMsg{err: store.Toggle(ctx, task)}
	}
}

func (m *Model) deleteCmd() tea.Cmd {
	task, ok := m.selected()
	if !ok || m.busy {
		return nil
	}
	m.busy = true
	ctx, store := m.ctx, m.tasks
	return func() tea.Msg {
		return deletedMsg{err: store.Delete(ctx, task.ID)}
	}
}

func (m *Model) selected() (service.Task, bool) {
	list := m.tasks.Tasks()
	if m.cursor < 0 || m.cursor >= len(list) {
		return service.Task{}, false
	}
	return list[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.tasks.Tasks())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
