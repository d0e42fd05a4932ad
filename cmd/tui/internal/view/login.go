package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budgetapp/internal/user"
)

// LoggedInMsg is emitted once the credentials have been accepted.
type LoggedInMsg struct {
	User *user.User
}

type loginFields struct {
	email    string
	password string
}

type LoginModel struct {
	CommonModel

	form   *huh.Form
	fields *loginFields

	busy bool
	err  error
}

func NewLoginModel(app *App) LoginModel {
	m := LoginModel{CommonModel: CommonModel{app: app}, fields: &loginFields{}}
	m.form = m.buildForm()

	return m
}

func (m LoginModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&m.fields.email).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("email can't be blank")
					}

					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fields.password),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m LoginModel) Title() string     { return "Sign In" }
func (m LoginModel) ShortHelp() string { return "Enter/Tab: next field | Ctrl+C: quit" }

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(loginResultMsg); ok {
		m.busy = false

		if result.err != nil {
			m.err = result.err
			m.fields.password = ""
			m.form = m.buildForm()

			return m, m.form.Init()
		}

		return m, func() tea.Msg { return LoggedInMsg{User: result.user} }
	}

	if m.busy {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.busy = true
	m.err = nil

	return m, m.authenticateCmd(m.fields.email, m.fields.password)
}

func (m LoginModel) View() string {
	header := lipgloss.NewStyle().Bold(true).Render("Budget")

	body := m.form.View()
	if m.busy {
		body = "Signing in..."
	}

	if m.err != nil {
		body += "\n\n" + errorStyle.Render(ErrorText(m.err))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(header + "\n\n" + body)
}

type loginResultMsg struct {
	user *user.User
	err  error
}

func (m LoginModel) authenticateCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		u, err := m.app.Users.Authenticate(ctx, email, password)

		return loginResultMsg{user: u, err: err}
	}
}
