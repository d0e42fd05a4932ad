package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budgetapp/internal/account"
)

// AccountsModel lists the user's accounts with their derived balances.
type AccountsModel struct {
	CommonModel

	table    table.Model
	balances []account.Balance

	loading bool
	err     error
}

func NewAccountsModel(app *App) AccountsModel {
	columns := []table.Column{
		{Title: "Name", Width: 24},
		{Title: "Type", Width: 16},
		{Title: "Starting", Width: 14},
		{Title: "Current", Width: 14},
		{Title: "Spent / Paid", Width: 14},
	}

	return AccountsModel{
		CommonModel: CommonModel{app: app},
		table:       newTable(columns),
		loading:     true,
	}
}

func (m AccountsModel) Title() string { return "Accounts" }

func (m AccountsModel) ShortHelp() string {
	return "Esc: back | Enter: transactions | n: new transaction | i: import | s: statement | r: refresh"
}

func (m AccountsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m AccountsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadAccountsMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.balances = msg.balances
			m.refreshTable()
		}

		return m, nil

	case ResumeMsg:
		m.loading = true
		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "n":
			return m, Open(NewEntryModel(m.app, m.selected()))
		}

		if acct := m.selected(); acct != nil {
			switch msg.String() {
			case "enter":
				return m, Open(NewTransactionsModel(m.app, acct))
			case "i":
				return m, Open(NewImportModel(m.app, acct))
			case "s":
				return m, Open(NewStatementModel(m.app, acct))
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m AccountsModel) selected() *account.Account {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.balances) {
		return nil
	}

	return m.balances[i].Account
}

func (m *AccountsModel) refreshTable() {
	rows := make([]table.Row, len(m.balances))

	for i, b := range m.balances {
		rows[i] = table.Row{
			b.Account.Name,
			accountTypeLabel(b.Account.Type),
			FormatAmount(b.Account.StartingBalanceCents),
			FormatAmount(b.CurrentCents),
			FormatAmount(b.SpendingOrPaymentsCents),
		}
	}

	m.table.SetRows(rows)
}

func accountTypeLabel(t account.Type) string {
	switch t {
	case account.TypeMonthlyBudget:
		return "Monthly budget"
	case account.TypeLoan:
		return "Loan"
	}

	return string(t)
}

func (m AccountsModel) View() string {
	var s string

	switch {
	case m.err != nil:
		s = errorStyle.Render(fmt.Sprintf("Error: %s", ErrorText(m.err)))
	case m.loading:
		s = "Loading accounts..."
	case len(m.balances) == 0:
		s = faintStyle.Render("No accounts yet.")
	default:
		s = m.table.View()
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render(m.Title()),
			"",
			s,
			"",
			faintStyle.Render(m.ShortHelp()),
		),
	)
}

type loadAccountsMsg struct {
	balances []account.Balance
	err      error
}

func (m AccountsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accts, err := m.app.Accounts.List(ctx, m.app.UserID)
		if err != nil {
			return loadAccountsMsg{err: err}
		}

		balances, err := m.app.Accounts.Balances(ctx, accts)

		return loadAccountsMsg{balances: balances, err: err}
	}
}
