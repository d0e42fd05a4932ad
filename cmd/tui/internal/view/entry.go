package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetapp/internal/account"
	"github.com/MrJamesThe3rd/budgetapp/internal/category"
	"github.com/MrJamesThe3rd/budgetapp/internal/transaction"
)

type entryState int

const (
	entryStateLoading entryState = iota
	entryStateForm
	entryStateSaving
	entryStateDone
)

type entryFields struct {
	accountID  uuid.UUID
	categoryID uuid.UUID // uuid.Nil files the transaction uncategorized
	amount     string
	memo       string
	date       string
	loanID     uuid.UUID
}

// EntryModel records a new transaction.
type EntryModel struct {
	CommonModel

	state  entryState
	form   *huh.Form
	fields *entryFields

	accounts   []*account.Account
	categories []*category.Category

	posted *transaction.Transaction
	err    error
}

// NewEntryModel starts the form with acct selected, or the monthly budget when acct is nil.
func NewEntryModel(app *App, acct *account.Account) EntryModel {
	f := &entryFields{date: FormatDate(time.Now())}
	if acct != nil {
		f.accountID = acct.ID
	}

	return EntryModel{CommonModel: CommonModel{app: app}, fields: f}
}

func (m EntryModel) Title() string { return "New Transaction" }

func (m EntryModel) ShortHelp() string {
	if m.state == entryStateDone {
		return "Esc/Enter: back | n: another"
	}

	return "Esc: cancel | Enter/Tab: navigate form"
}

func (m EntryModel) Init() tea.Cmd {
	return m.loadOptionsCmd()
}

func (m EntryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case entryOptionsMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = entryStateDone

			return m, nil
		}

		m.accounts = msg.accounts
		m.categories = msg.categories

		if len(m.accounts) == 0 {
			m.err = fmt.Errorf("create an account before recording transactions")
			m.state = entryStateDone

			return m, nil
		}

		if m.fields.accountID == uuid.Nil {
			m.fields.accountID = defaultAccount(m.accounts).ID
		}

		return m.showForm()

	case entrySavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m.showForm()
		}

		m.err = nil
		m.posted = msg.posted
		m.state = entryStateDone

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.state == entryStateDone {
			switch msg.String() {
			case "enter":
				return m, Back
			case "n":
				if m.posted == nil {
					return m, nil
				}

				m.fields.amount = ""
				m.fields.memo = ""
				m.posted = nil

				return m.showForm()
			}

			return m, nil
		}
	}

	if m.state != entryStateForm {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	params, err := m.params()
	if err != nil {
		m.err = err
		return m.showForm()
	}

	m.state = entryStateSaving

	return m, m.saveCmd(params)
}

func (m EntryModel) showForm() (tea.Model, tea.Cmd) {
	m.form = m.buildForm()
	m.state = entryStateForm

	return m, m.form.Init()
}

// defaultAccount prefers the monthly budget, where most spending is posted.
func defaultAccount(accts []*account.Account) *account.Account {
	for _, a := range accts {
		if a.IsMonthlyBudget() {
			return a
		}
	}

	return accts[0]
}

func (m EntryModel) isRepayment(id uuid.UUID) bool {
	for _, c := range m.categories {
		if c.ID == id {
			return c.Type == category.TypeDebtRepayment
		}
	}

	return false
}

func (m EntryModel) buildForm() *huh.Form {
	accountOpts := make([]huh.Option[uuid.UUID], 0, len(m.accounts))

	var loanOpts []huh.Option[uuid.UUID]

	for _, a := range m.accounts {
		accountOpts = append(accountOpts, huh.NewOption(fmt.Sprintf("%s (%s)", a.Name, accountTypeLabel(a.Type)), a.ID))

		if a.IsLoan() {
			loanOpts = append(loanOpts, huh.NewOption(a.Name, a.ID))
		}
	}

	categoryOpts := []huh.Option[uuid.UUID]{huh.NewOption("Uncategorized", uuid.Nil)}
	for _, c := range m.categories {
		categoryOpts = append(categoryOpts, huh.NewOption(fmt.Sprintf("%s (%s)", c.Name, FormatAmount(c.AmountCents)), c.ID))
	}

	if len(loanOpts) == 0 {
		loanOpts = []huh.Option[uuid.UUID]{huh.NewOption("No loan accounts", uuid.Nil)}
	}

	f := m.fields

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[uuid.UUID]().
				Title("Account").
				Options(accountOpts...).
				Value(&f.accountID),
			huh.NewSelect[uuid.UUID]().
				Title("Category").
				Options(categoryOpts...).
				Value(&f.categoryID),
			huh.NewInput().
				Title("Amount").
				Description("Positive dollar amount, e.g. 12.50").
				Value(&f.amount).
				Validate(validateAmount),
			huh.NewInput().
				Title("Memo").
				Value(&f.memo).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("memo can't be blank")
					}

					return nil
				}),
			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&f.date).
				Validate(func(s string) error {
					if _, err := time.Parse(time.DateOnly, s); err != nil {
						return fmt.Errorf("date must be YYYY-MM-DD")
					}

					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[uuid.UUID]().
				Title("Loan Account").
				Description("The loan this repayment is paid towards").
				Options(loanOpts...).
				Value(&f.loanID),
		).WithHideFunc(func() bool {
			return !m.isRepayment(f.categoryID)
		}),
	).WithWidth(60).WithShowHelp(false)
}

func validateAmount(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("amount must be a number")
	}

	if !d.IsPositive() {
		return fmt.Errorf("amount must be greater than 0")
	}

	return nil
}

func (m EntryModel) params() (transaction.CreateParams, error) {
	f := m.fields

	amount, err := decimal.NewFromString(strings.TrimSpace(f.amount))
	if err != nil {
		return transaction.CreateParams{}, fmt.Errorf("amount must be a number")
	}

	on, err := time.Parse(time.DateOnly, f.date)
	if err != nil {
		return transaction.CreateParams{}, fmt.Errorf("date must be YYYY-MM-DD")
	}

	p := transaction.CreateParams{
		AccountID:  f.accountID,
		Memo:       strings.TrimSpace(f.memo),
		Amount:     amount,
		OccurredOn: &on,
	}

	if f.categoryID != uuid.Nil {
		id := f.categoryID
		p.BudgetCategoryID = &id

		if m.isRepayment(id) && f.loanID != uuid.Nil {
			loan := f.loanID
			p.LoanAccountID = &loan
		}
	}

	return p, nil
}

func (m EntryModel) View() string {
	var body string

	switch m.state {
	case entryStateLoading:
		body = "Loading accounts and categories..."
	case entryStateForm:
		body = m.form.View()
		if m.err != nil {
			body += "\n\n" + errorStyle.Render(ErrorText(m.err))
		}
	case entryStateSaving:
		body = "Saving..."
	case entryStateDone:
		if m.err != nil {
			body = errorStyle.Render("Error: " + ErrorText(m.err))
		} else {
			body = successStyle.Render(fmt.Sprintf("Recorded %s %s on %s.",
				FormatAmount(m.posted.AmountCents), m.posted.Memo, FormatDate(m.posted.OccurredOn)))
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

type entryOptionsMsg struct {
	accounts   []*account.Account
	categories []*category.Category
	err        error
}

type entrySavedMsg struct {
	posted *transaction.Transaction
	err    error
}

func (m EntryModel) loadOptionsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accts, err := m.app.Accounts.List(ctx, m.app.UserID)
		if err != nil {
			return entryOptionsMsg{err: err}
		}

		cats, err := m.app.Categories.List(ctx, m.app.UserID)

		return entryOptionsMsg{accounts: accts, categories: cats, err: err}
	}
}

func (m EntryModel) saveCmd(params transaction.CreateParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		posted, err := m.app.Transactions.Create(ctx, m.app.UserID, params)

		return entrySavedMsg{posted: posted, err: err}
	}
}
