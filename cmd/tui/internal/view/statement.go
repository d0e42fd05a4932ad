package view

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetapp/internal/account"
	"github.com/MrJamesThe3rd/budgetapp/internal/export"
)

const statementTimeout = time.Minute

type statementState int

const (
	statementStateTimeframe statementState = iota
	statementStatePath
	statementStateWriting
	statementStateResult
)

// StatementModel writes an account statement to a CSV file.
type StatementModel struct {
	CommonModel
	account *account.Account

	state           statementState
	timeframePicker TimeframePicker
	period          export.Period

	form    *huh.Form
	path    *string
	spinner spinner.Model

	written string
	err     error
}

func NewStatementModel(app *App, acct *account.Account) StatementModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	path := filepath.Join(".", "exports", statementFileName(acct.Name))

	return StatementModel{
		CommonModel:     CommonModel{app: app},
		account:         acct,
		timeframePicker: NewTimeframePicker(),
		path:            &path,
		spinner:         s,
	}
}

func statementFileName(accountName string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		}

		return '-'
	}, strings.ToLower(strings.TrimSpace(accountName)))

	return name + "-statement.csv"
}

func (m StatementModel) Title() string { return "Statement for " + m.account.Name }

func (m StatementModel) ShortHelp() string {
	switch m.state {
	case statementStateResult:
		return "Esc: back"
	case statementStateWriting:
		return "Writing..."
	}

	return "Esc: back | Enter: confirm"
}

func (m StatementModel) Init() tea.Cmd {
	return nil
}

func (m StatementModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if tfMsg, ok := msg.(TimeframeSelectedMsg); ok {
		m.period = export.Period{Start: tfMsg.Start, End: tfMsg.End}
		m.form = m.buildPathForm()
		m.state = statementStatePath

		return m, m.form.Init()
	}

	switch m.state {
	case statementStateTimeframe:
		return m.updateTimeframe(msg)
	case statementStatePath:
		return m.updatePath(msg)
	case statementStateWriting:
		return m.updateWriting(msg)
	case statementStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m StatementModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m StatementModel) updatePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = statementStateTimeframe
		m.timeframePicker.Reset()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = statementStateWriting
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.writeCmd(*m.path))
}

func (m StatementModel) updateWriting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(statementResultMsg); ok {
		m.state = statementStateResult
		m.err = result.err
		m.written = result.path

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m StatementModel) buildPathForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output File").
				Description("Parent directories are created if missing").
				Value(m.path).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("path can't be blank")
					}

					return nil
				}),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m StatementModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case statementStateTimeframe:
		return style.Render(lipgloss.NewStyle().Bold(true).Render(m.Title()) + "\n\n" + m.timeframePicker.View())

	case statementStatePath:
		return style.Render(m.form.View())

	case statementStateWriting:
		return style.Render(fmt.Sprintf("%s Writing statement...", m.spinner.View()))

	case statementStateResult:
		if m.err != nil {
			return style.Render(errorStyle.Render("Error: "+ErrorText(m.err)) + "\n\n(Esc to go back)")
		}

		return style.Render(successStyle.Render("Statement written to "+m.written) + "\n\n(Esc to go back)")
	}

	return ""
}

type statementResultMsg struct {
	path string
	err  error
}

func (m StatementModel) writeCmd(path string) tea.Cmd {
	period := m.period
	accountID := m.account.ID

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), statementTimeout)
		defer cancel()

		if err := m.writeStatement(ctx, path, accountID, period); err != nil {
			return statementResultMsg{err: err}
		}

		return statementResultMsg{path: path}
	}
}

func (m StatementModel) writeStatement(ctx context.Context, path string, accountID uuid.UUID, period export.Period) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating statement file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	if err := m.app.Export.WriteStatement(ctx, m.app.UserID, accountID, period, w); err != nil {
		return err
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing statement file: %w", err)
	}

	return f.Close()
}
