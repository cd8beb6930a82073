package tui

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"

	"todoctl/internal/view"
)

// formField describes one input of a screen.
type formField struct {
	label  string
	secret bool
}

// screenFields lists the inputs of each screen in focus order.
var screenFields = map[view.View][]formField{
	view.Login: {
		{label: "Username"},
		{label: "Password", secret: true},
	},
	view.Register: {
		{label: "Username"},
		{label: "Email"},
		{label: "Password", secret: true},
		{label: "Confirm password", secret: true},
	},
	view.ResetRequest: {
		{label: "Email"},
	},
	view.ResetConfirm: {
		{label: "New password", secret: true},
		{label: "Confirm new password", secret: true},
	},
	view.ChangePassword: {
		{label: "Current password", secret: true},
		{label: "New password", secret: true},
		{label: "Confirm new password", secret: true},
	},
	view.List: {
		{label: "New task"},
	},
}

// newInputs builds empty inputs for v with the first one focused.
func newInputs(v view.View) []textinput.Model {
	fields := screenFields[v]
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = f.label
		ti.CharLimit = 256
		ti.Cursor.SetMode(cursor.CursorStatic)
		if f.secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		if i == 0 {
			ti.Focus()
		}
		inputs[i] = ti
	}
	return inputs
}

// values returns the current input values in order.
func values(inputs []textinput.Model) []string {
	out := make([]string, len(inputs))
	for i := range inputs {
		out[i] = inputs[i].Value()
	}
	return out
}
