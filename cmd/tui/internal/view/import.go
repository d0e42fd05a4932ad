package view

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budgetapp/internal/account"
	"github.com/MrJamesThe3rd/budgetapp/internal/importer"
	"github.com/MrJamesThe3rd/budgetapp/internal/transaction"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateBank importState = iota
	importStateFilePick
	importStateImporting
	importStateConflicts
	importStateSaving
	importStateResult
)

type importFields struct {
	bank importer.Bank
	// picked holds the indexes of the conflicting lines to import anyway.
	picked []int
}

// ImportModel loads a bank statement into one account. Lines that look like rows
// already on the account are held back until the user has reviewed them.
type ImportModel struct {
	CommonModel
	account *account.Account

	state      importState
	form       *huh.Form
	fields     *importFields
	filePicker filepicker.Model

	newLines  []transaction.ImportParams
	conflicts []transaction.Conflict

	status string
	err    error
}

func NewImportModel(app *App, acct *account.Account) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv"}
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	m := ImportModel{
		CommonModel: CommonModel{app: app},
		account:     acct,
		fields:      &importFields{},
		filePicker:  fp,
	}
	m.form = m.bankForm()

	return m
}

func (m ImportModel) Title() string { return "Import into " + m.account.Name }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStateConflicts:
		return "Space/x: toggle | Ctrl+A: all | Enter: import | Esc: cancel"
	case importStateResult:
		return "Esc: back"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ImportModel) bankForm() *huh.Form {
	banks := m.app.Importer.Banks()

	opts := make([]huh.Option[importer.Bank], len(banks))
	for i, b := range banks {
		opts[i] = huh.NewOption(bankLabel(b), b)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[importer.Bank]().
				Title("Statement format").
				Options(opts...).
				Value(&m.fields.bank),
		),
	).WithWidth(50).WithShowHelp(false)
}

func bankLabel(b importer.Bank) string {
	switch b {
	case importer.BankCGD:
		return "Caixa Geral de Depósitos (CSV export)"
	case importer.BankPlain:
		return "Plain CSV (date, memo, amount)"
	}

	return string(b)
}

func (m ImportModel) conflictForm() *huh.Form {
	opts := make([]huh.Option[int], len(m.conflicts))

	for i, c := range m.conflicts {
		in := c.Incoming
		opts[i] = huh.NewOption(fmt.Sprintf("%s  %s  %s  (posted %s)",
			FormatDate(in.OccurredOn), FormatAmount(in.AmountCents), in.Memo,
			c.Existing.CreatedAt.Format(time.DateOnly)), i)
	}

	m.fields.picked = nil

	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[int]().
				Title(fmt.Sprintf("%d lines are already on the account, %d are new", len(m.conflicts), len(m.newLines))).
				Description("Tick the duplicates to import anyway").
				Options(opts...).
				Filterable(false).
				Value(&m.fields.picked),
		),
	).WithWidth(100).WithShowHelp(false)
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

	case importResultMsg:
		if msg.err != nil {
			return m.finish(0, msg.err)
		}

		if len(msg.result.Conflicts) == 0 {
			return m.finish(len(msg.result.Imported), nil)
		}

		m.newLines = msg.result.New
		m.conflicts = msg.result.Conflicts
		m.form = m.conflictForm()
		m.state = importStateConflicts

		return m, m.form.Init()

	case confirmResultMsg:
		return m.finish(msg.count, msg.err)
	}

	switch m.state {
	case importStateBank, importStateConflicts:
		return m.updateForm(msg)
	case importStateFilePick:
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.state = importStateImporting
			m.status = fmt.Sprintf("Importing from %s...", path)

			return m, m.importCmd(path)
		}

		return m, cmd
	}

	return m, nil
}

func (m ImportModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == importStateBank {
		m.state = importStateFilePick
		return m, m.filePicker.Init()
	}

	m.state = importStateSaving
	m.status = "Importing reviewed lines..."

	return m, m.confirmCmd()
}

func (m ImportModel) finish(count int, err error) (tea.Model, tea.Cmd) {
	m.state = importStateResult
	m.err = err

	if err != nil {
		m.status = "Error: " + ErrorText(err)
	} else {
		m.status = fmt.Sprintf("Imported %d transactions.", count)
	}

	return m, nil
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick, importStateConflicts:
		m.conflicts = nil
		m.newLines = nil
		m.form = m.bankForm()
		m.state = importStateBank

		return m, m.form.Init()
	case importStateImporting, importStateSaving:
		return m, nil
	}

	return m, Back
}

// confirmedLines is every new line plus the conflicting lines the user ticked.
func (m ImportModel) confirmedLines() []transaction.ImportParams {
	lines := append([]transaction.ImportParams(nil), m.newLines...)

	for _, i := range m.fields.picked {
		if i >= 0 && i < len(m.conflicts) {
			lines = append(lines, m.conflicts[i].Incoming)
		}
	}

	return lines
}

func (m ImportModel) View() string {
	var body string

	switch m.state {
	case importStateBank, importStateConflicts:
		body = m.form.View()
	case importStateFilePick:
		body = fmt.Sprintf("Select file to import (%s):\n\n%s", m.fields.bank, m.filePicker.View())
	case importStateImporting, importStateSaving:
		body = m.status
	case importStateResult:
		if m.err != nil {
			body = errorStyle.Render(m.status)
		} else {
			body = successStyle.Render(m.status)
		}
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render(m.Title()),
			"",
			body,
			"",
			faintStyle.Render(m.ShortHelp()),
		),
	)
}

type importResultMsg struct {
	result *transaction.ImportResult
	err    error
}

type confirmResultMsg struct {
	count int
	err   error
}

// importCmd parses the file, files each line under a category when a rule matches
// its memo, and posts the batch unless something on it is already on the account.
func (m ImportModel) importCmd(path string) tea.Cmd {
	bank := m.fields.bank
	accountID := m.account.ID

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		lines, err := m.app.Importer.Import(bank, f)
		if err != nil {
			return importResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		if err := m.app.Rules.Categorize(ctx, m.app.UserID, lines); err != nil {
			return importResultMsg{err: err}
		}

		result, err := m.app.Transactions.Import(ctx, m.app.UserID, accountID, lines)

		return importResultMsg{result: result, err: err}
	}
}

func (m ImportModel) confirmCmd() tea.Cmd {
	lines := m.confirmedLines()
	accountID := m.account.ID

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		txs, err := m.app.Transactions.ConfirmImport(ctx, m.app.UserID, accountID, lines)

		return confirmResultMsg{count: len(txs), err: err}
	}
}
