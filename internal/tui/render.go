package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"todoctl/internal/view"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4f46e5"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#999"))
	focusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4f46e5"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#b91c1c"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#15803d"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666"))
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("#888"))
	selectedStyle = lipgloss.NewStyle().Bold(true)
	frameStyle    = lipgloss.NewStyle().Padding(1, 2)
)

var titles = map[view.View]string{
	view.Login:          "Login",
	view.Register:       "Create Account",
	view.ResetRequest:   "Forgot Password",
	view.ResetConfirm:   "Set New Password",
	view.List:           "Todo List",
	view.ChangePassword: "Change Password",
}

var help = map[view.View]string{
	view.Login:          "enter log in • tab next field • ctrl+r register • ctrl+f forgot password • ctrl+c quit",
	view.Register:       "enter register • tab next field • esc back to login • ctrl+c quit",
	view.ResetRequest:   "enter send link • esc back to login • ctrl+c quit",
	view.ResetConfirm:   "enter reset password • tab next field • esc cancel • ctrl+c quit",
	view.List:           "enter add • ↑/↓ select • ctrl+t toggle • ctrl+x delete • ctrl+p change password • ctrl+o logout • ctrl+c quit",
	view.ChangePassword: "enter change password • tab next field • esc back to list • ctrl+c quit",
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(titles[m.screen]))
	b.WriteString("\n\n")

	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
		b.WriteString("\n\n")
	}
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n\n")
	}

	if m.screen == view.List {
		m.renderList(&b)
	} else {
		m.renderForm(&b)
	}

	if m.busy {
		b.WriteString(labelStyle.Render("Working..."))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(help[m.screen]))

	style := frameStyle
	if m.width > 0 {
		style = style.MaxWidth(m.width)
	}
	return style.Render(b.String())
}

func (m *Model) renderForm(b *strings.Builder) {
	fields := screenFields[m.screen]
	for i := range m.inputs {
		label := labelStyle
		if i == m.focus {
			label = focusStyle
		}
		b.WriteString(label.Render(fields[i].label + ":"))
		b.WriteString("\n")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n\n")
	}
}

func (m *Model) renderList(b *strings.Builder) {
	if len(m.inputs) > 0 {
		b.WriteString(m.inputs[0].View())
		b.WriteString("\n\n")
	}

	list := m.tasks.Tasks()
	switch {
	case len(list) == 0 && m.tasks.Loading():
		b.WriteString(labelStyle.Render("Loading tasks..."))
		b.WriteString("\n")
	case len(list) == 0:
		b.WriteString(labelStyle.Render("No tasks yet."))
		b.WriteString("\n")
	}

	for i, task := range list {
		box := "[ ]"
		text := task.Text
		if task.Completed {
			box = "[x]"
			text = doneStyle.Render(text)
		}
		pointer := "  "
		line := fmt.Sprintf("%s %s", box, text)
		if i == m.cursor {
			pointer = "> "
			line = selectedStyle.Render(line)
		}
		b.WriteString(pointer + line + "\n")
	}
}
