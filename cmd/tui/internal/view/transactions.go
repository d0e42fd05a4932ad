package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetapp/internal/account"
	"github.com/MrJamesThe3rd/budgetapp/internal/transaction"
)

type txState int

const (
	txStateBrowse txState = iota
	txStateConfirmDelete
)

// TransactionsModel shows the rows posted to one account.
type TransactionsModel struct {
	CommonModel
	account *account.Account

	state      txState
	table      table.Model
	txs        []*transaction.Transaction
	categories map[uuid.UUID]string

	loading bool
	status  string
	err     error
}

func NewTransactionsModel(app *App, acct *account.Account) TransactionsModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Amount", Width: 14},
		{Title: "Category", Width: 20},
		{Title: "Memo", Width: 36},
		{Title: "Paired", Width: 6},
	}

	return TransactionsModel{
		CommonModel: CommonModel{app: app},
		account:     acct,
		table:       newTable(columns),
		loading:     true,
	}
}

func (m TransactionsModel) Title() string { return m.account.Name }

func (m TransactionsModel) ShortHelp() string {
	if m.state == txStateConfirmDelete {
		return "y: delete | n/Esc: keep"
	}

	return "Esc: back | n: new | d: delete | r: refresh"
}

func (m TransactionsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadTxsMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.txs = msg.txs
			m.categories = msg.categories
			m.refreshTable()
		}

		return m, nil

	case deleteTxMsg:
		m.state = txStateBrowse

		if msg.err != nil {
			m.status = errorStyle.Render("Error: " + ErrorText(msg.err))
			return m, nil
		}

		m.status = successStyle.Render(deletedSummary(msg.deleted))
		m.loading = true

		return m, m.loadCmd()

	case ResumeMsg:
		m.loading = true
		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
		return m, nil

	case tea.KeyMsg:
		if m.state == txStateConfirmDelete {
			return m.updateConfirm(msg)
		}

		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "n":
			return m, Open(NewEntryModel(m.app, m.account))
		case "d":
			if m.selected() != nil {
				m.state = txStateConfirmDelete
				m.status = ""
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m TransactionsModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		return m, m.deleteCmd(m.selected().ID)
	case "n", "N", "esc":
		m.state = txStateBrowse
	}

	return m, nil
}

func (m TransactionsModel) selected() *transaction.Transaction {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.txs) {
		return nil
	}

	return m.txs[i]
}

func (m *TransactionsModel) refreshTable() {
	rows := make([]table.Row, len(m.txs))

	for i, t := range m.txs {
		category := "-"
		if t.BudgetCategoryID != nil {
			category = m.categories[*t.BudgetCategoryID]
		}

		paired := ""
		if t.PostingGroupID != nil {
			paired = "yes"
		}

		rows[i] = table.Row{FormatDate(t.OccurredOn), FormatAmount(t.AmountCents), category, t.Memo, paired}
	}

	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func deletedSummary(deleted []*transaction.Transaction) string {
	if len(deleted) > 1 {
		return fmt.Sprintf("Deleted %q with %d paired row(s).", deleted[0].Memo, len(deleted)-1)
	}

	return fmt.Sprintf("Deleted %q.", deleted[0].Memo)
}

func (m TransactionsModel) View() string {
	var body string

	switch {
	case m.err != nil:
		body = errorStyle.Render("Error: " + ErrorText(m.err))
	case m.loading:
		body = "Loading transactions..."
	case len(m.txs) == 0:
		body = faintStyle.Render("No transactions on this account.")
	default:
		body = m.table.View()
	}

	if m.state == txStateConfirmDelete {
		t := m.selected()
		body += "\n\n" + lipgloss.NewStyle().Bold(true).Render(
			fmt.Sprintf("Delete %s %s %q? Paired rows are deleted too. (y/n)", FormatDate(t.OccurredOn), FormatAmount(t.AmountCents), t.Memo),
		)
	}

	if m.status != "" {
		body += "\n\n" + m.status
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

type loadTxsMsg struct {
	txs        []*transaction.Transaction
	categories map[uuid.UUID]string
	err        error
}

type deleteTxMsg struct {
	deleted []*transaction.Transaction
	err     error
}

func (m TransactionsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.app.Transactions.List(ctx, m.app.UserID, transaction.ListFilter{AccountID: &m.account.ID})
		if err != nil {
			return loadTxsMsg{err: err}
		}

		cats, err := m.app.Categories.List(ctx, m.app.UserID)
		if err != nil {
			return loadTxsMsg{err: err}
		}

		names := make(map[uuid.UUID]string, len(cats))
		for _, c := range cats {
			names[c.ID] = c.Name
		}

		return loadTxsMsg{txs: txs, categories: names}
	}
}

func (m TransactionsModel) deleteCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		deleted, err := m.app.Transactions.Delete(ctx, m.app.UserID, id)

		return deleteTxMsg{deleted: deleted, err: err}
	}
}
