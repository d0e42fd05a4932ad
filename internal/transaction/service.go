package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetapp/internal/account"
	"github.com/MrJamesThe3rd/budgetapp/internal/apperr"
	"github.com/MrJamesThe3rd/budgetapp/internal/category"
	"github.com/MrJamesThe3rd/budgetapp/internal/money"
)

const (
	msgNotFound               = "Transaction not found"
	msgLoanRequired           = "Loan account must be specified for debt repayment"
	msgLoanNotFound           = "Loan account not found"
	msgLoanWrongType          = "Loan account must be a loan account"
	msgLoanMismatch           = "Loan account must be the transaction's account"
	msgUnsupportedCategory    = "Unsupported budget category type"
	msgUnsupportedAccountType = "Unsupported account type"
	msgInsufficientFunds      = "Insufficient funds: monthly budget balance is %s"
	msgAmountTooLarge         = "Amount is too large"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, t *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)

	Begin(ctx context.Context) (Tx, error)
	// BeginImport is Begin holding a lock that serializes imports into accountID.
	BeginImport(ctx context.Context, accountID uuid.UUID) (Tx, error)
}

// Tx is a unit of work. Nothing written through it is visible until Commit.
type Tx interface {
	CreateTransaction(ctx context.Context, t *Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	ListPostingGroup(ctx context.Context, groupID uuid.UUID) ([]*Transaction, error)
	// FindLoanCounterpart returns the first row on one of userID's loan accounts that
	// mirrors t: same date and memo, same absolute amount, same or no category.
	FindLoanCounterpart(ctx context.Context, userID uuid.UUID, t *Transaction) (*Transaction, error)
	// FindBudgetCounterpart returns the first row on the budget account with the same
	// date, memo and category as t and the opposite amount.
	FindBudgetCounterpart(ctx context.Context, budgetAccountID uuid.UUID, t *Transaction) (*Transaction, error)
	FindDuplicates(ctx context.Context, accountID uuid.UUID, params []ImportParams) ([]*Transaction, error)
	Commit() error
	Rollback() error
}

// Accounts resolves accounts on behalf of a user.
type Accounts interface {
	Get(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*account.Account, error)
	MonthlyBudget(ctx context.Context, userID uuid.UUID) (*account.Account, error)
	Balance(ctx context.Context, a *account.Account) (account.Balance, error)
}

// Categories resolves budget categories on behalf of a user.
type Categories interface {
	Get(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*category.Category, error)
}

type Service struct {
	repo       Repository
	ledger     *Ledger
	accounts   Accounts
	categories Categories
	now        func() time.Time
}

func NewService(repo Repository, accounts Accounts, categories Categories) *Service {
	return &Service{
		repo:       repo,
		ledger:     NewLedger(repo),
		accounts:   accounts,
		categories: categories,
		now:        time.Now,
	}
}

// WithClock replaces the clock used to default the transaction date.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateParams is a transaction as entered by the user. Amount is a positive dollar
// amount; the posting rules decide the signs.
type CreateParams struct {
	AccountID        uuid.UUID
	Memo             string
	Amount           decimal.Decimal
	BudgetCategoryID *uuid.UUID
	OccurredOn       *time.Time
	LoanAccountID    *uuid.UUID
}

type ListFilter struct {
	UserID           uuid.UUID
	AccountID        *uuid.UUID
	BudgetCategoryID *uuid.UUID
	StartDate        *time.Time
	EndDate          *time.Time
}

// Create records a transaction for userID and returns the row posted to the cash side.
//
// Uncategorized amounts and variable expenses are posted as one debit on the account.
// Debt repayments post a debit on the monthly budget and a credit on the loan; the
// account may be either side. Debits against the monthly budget are refused once its
// balance is zero or negative.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Transaction, error) {
	if userID == uuid.Nil {
		return nil, apperr.Unauthorized()
	}

	acct, err := s.accounts.Get(ctx, userID, params.AccountID)
	if err != nil {
		return nil, err
	}

	var cat *category.Category

	if params.BudgetCategoryID != nil {
		cat, err = s.categories.Get(ctx, userID, *params.BudgetCategoryID)
		if err != nil {
			return nil, err
		}
	}

	cents, err := money.ToCents(params.Amount)
	if err != nil {
		return nil, apperr.Validation(msgAmountTooLarge)
	}

	if cents <= 0 {
		return nil, apperr.Validation(msgAmountPositive)
	}

	on := dateOnly(s.now())
	if params.OccurredOn != nil {
		on = dateOnly(*params.OccurredOn)
	}

	draft := &Transaction{AccountID: acct.ID, AmountCents: -cents, OccurredOn: on, Memo: params.Memo}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	if cat == nil {
		return s.postPlain(ctx, acct, draft)
	}

	switch cat.Type {
	case category.TypeVariableExpense:
		if err := s.checkFunds(ctx, acct); err != nil {
			return nil, err
		}

		return s.ledger.Spend(ctx, SpendParams{Cash: acct, Category: cat, AmountCents: cents, On: on, Memo: params.Memo})
	case category.TypeDebtRepayment:
		cash, loan, err := s.repaymentSides(ctx, userID, acct, params.LoanAccountID)
		if err != nil {
			return nil, err
		}

		if err := s.checkFunds(ctx, cash); err != nil {
			return nil, err
		}

		return s.ledger.Repay(ctx, RepayParams{Cash: cash, Loan: loan, Category: cat, AmountCents: cents, On: on, Memo: params.Memo})
	default:
		return nil, apperr.Argument(msgUnsupportedCategory)
	}
}

func (s *Service) postPlain(ctx context.Context, acct *account.Account, t *Transaction) (*Transaction, error) {
	if err := s.checkFunds(ctx, acct); err != nil {
		return nil, err
	}

	if err := s.repo.CreateTransaction(ctx, t); err != nil {
		return nil, fmt.Errorf("creating transaction: %w", err)
	}

	return t, nil
}

// repaymentSides works out which account pays and which loan is paid from the account
// the user recorded the repayment on.
func (s *Service) repaymentSides(
	ctx context.Context,
	userID uuid.UUID,
	acct *account.Account,
	loanAccountID *uuid.UUID,
) (cash, loan *account.Account, err error) {
	switch acct.Type {
	case account.TypeLoan:
		if loanAccountID != nil && *loanAccountID != acct.ID {
			return nil, nil, apperr.Argument(msgLoanMismatch)
		}

		cash, err = s.accounts.MonthlyBudget(ctx, userID)
		if err != nil {
			return nil, nil, err
		}

		return cash, acct, nil
	case account.TypeMonthlyBudget:
		if loanAccountID == nil {
			return nil, nil, apperr.Argument(msgLoanRequired)
		}

		loan, err = s.accounts.Get(ctx, userID, *loanAccountID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return nil, nil, apperr.NotFound(msgLoanNotFound)
			}

			return nil, nil, err
		}

		if !loan.IsLoan() {
			return nil, nil, apperr.Argument(msgLoanWrongType)
		}

		return acct, loan, nil
	default:
		return nil, nil, apperr.Argument(msgUnsupportedAccountType)
	}
}

// checkFunds refuses debits against the monthly budget once its balance is no longer
// positive. A debit larger than a positive balance is allowed and overdraws it.
func (s *Service) checkFunds(ctx context.Context, cash *account.Account) error {
	if !cash.IsMonthlyBudget() {
		return nil
	}

	b, err := s.accounts.Balance(ctx, cash)
	if err != nil {
		return err
	}

	if b.CurrentCents <= 0 {
		return apperr.InsufficientFunds(fmt.Sprintf(msgInsufficientFunds, money.Format(b.CurrentCents)))
	}

	return nil
}

// Get returns the transaction with the given id if its account belongs to userID.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Transaction, error) {
	t, _, err := s.getOwned(ctx, userID, id)
	return t, err
}

func (s *Service) getOwned(ctx context.Context, userID, id uuid.UUID) (*Transaction, *account.Account, error) {
	if userID == uuid.Nil {
		return nil, nil, apperr.Unauthorized()
	}

	t, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, apperr.NotFound(msgNotFound)
		}

		return nil, nil, fmt.Errorf("getting transaction: %w", err)
	}

	acct, err := s.accounts.Get(ctx, userID, t.AccountID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, nil, apperr.NotFound(msgNotFound)
		}

		return nil, nil, err
	}

	return t, acct, nil
}

// List returns the user's transactions matching filter, oldest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Transaction, error) {
	if userID == uuid.Nil {
		return nil, apperr.Unauthorized()
	}

	filter.UserID = userID

	txs, err := s.repo.ListTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	return txs, nil
}

// Delete removes a transaction together with the other half of its repayment, if it
// has one, and returns every deleted row with the requested one first.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) ([]*Transaction, error) {
	t, acct, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	doomed, err := s.deletionSet(ctx, tx, userID, t, acct)
	if err != nil {
		return nil, err
	}

	for _, d := range doomed {
		if err := tx.DeleteTransaction(ctx, d.ID); err != nil {
			return nil, fmt.Errorf("deleting transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit delete: %w", err)
	}

	if len(doomed) > 1 {
		slog.Info("deleted paired transactions", "transaction_id", t.ID, "count", len(doomed))
	}

	return doomed, nil
}

// deletionSet returns t followed by the rows posted with it.
func (s *Service) deletionSet(
	ctx context.Context,
	tx Tx,
	userID uuid.UUID,
	t *Transaction,
	acct *account.Account,
) ([]*Transaction, error) {
	doomed := []*Transaction{t}

	if t.IsPaired() {
		group, err := tx.ListPostingGroup(ctx, *t.PostingGroupID)
		if err != nil {
			return nil, fmt.Errorf("listing posting group: %w", err)
		}

		for _, g := range group {
			if g.ID != t.ID {
				doomed = append(doomed, g)
			}
		}

		return doomed, nil
	}

	repayment, err := s.isRepayment(ctx, userID, t, acct)
	if err != nil || !repayment {
		return doomed, err
	}

	budget, err := s.accounts.MonthlyBudget(ctx, userID)
	if err != nil {
		if apperr.Is(err, apperr.KindArgument) {
			return doomed, nil
		}

		return nil, err
	}

	var match *Transaction

	switch {
	case acct.ID == budget.ID:
		match, err = tx.FindLoanCounterpart(ctx, userID, t)
	case acct.IsLoan():
		match, err = tx.FindBudgetCounterpart(ctx, budget.ID, t)
	default:
		return doomed, nil
	}

	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return doomed, nil
		}

		return nil, fmt.Errorf("finding counterpart: %w", err)
	}

	slog.Debug("matched unlinked counterpart", "transaction_id", t.ID, "counterpart_id", match.ID)

	return append(doomed, match), nil
}

// isRepayment reports whether an unlinked row looks like half of a repayment: it sits
// on a loan account or is filed under a debt repayment category.
func (s *Service) isRepayment(ctx context.Context, userID uuid.UUID, t *Transaction, acct *account.Account) (bool, error) {
	if acct.IsLoan() {
		return true, nil
	}

	if t.BudgetCategoryID == nil {
		return false, nil
	}

	cat, err := s.categories.Get(ctx, userID, *t.BudgetCategoryID)
	if err != nil {
		return false, err
	}

	return cat.Type == category.TypeDebtRepayment, nil
}
