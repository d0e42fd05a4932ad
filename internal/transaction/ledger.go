package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetapp/internal/account"
	"github.com/MrJamesThe3rd/budgetapp/internal/apperr"
	"github.com/MrJamesThe3rd/budgetapp/internal/category"
)

const msgAmountPositive = "Amount must be greater than 0"

// Ledger posts the rows of a single money movement. It trusts its caller on
// ownership, category type and available funds.
type Ledger struct {
	repo Repository
}

func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

type SpendParams struct {
	Cash        *account.Account
	Category    *category.Category
	AmountCents int64
	On          time.Time
	Memo        string
}

// Spend posts one debit of AmountCents to the cash account.
func (l *Ledger) Spend(ctx context.Context, p SpendParams) (*Transaction, error) {
	if p.AmountCents <= 0 {
		return nil, apperr.Validation(msgAmountPositive)
	}

	t := &Transaction{
		AccountID:        accountID(p.Cash),
		BudgetCategoryID: categoryID(p.Category),
		AmountCents:      -p.AmountCents,
		OccurredOn:       dateOnly(p.On),
		Memo:             p.Memo,
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	if err := l.repo.CreateTransaction(ctx, t); err != nil {
		return nil, fmt.Errorf("creating transaction: %w", err)
	}

	return t, nil
}

type RepayParams struct {
	Cash        *account.Account
	Loan        *account.Account
	Category    *category.Category
	AmountCents int64
	On          time.Time
	Memo        string
}

// Repay moves AmountCents from the cash account to the loan account. Both rows carry
// the category and one posting group, and are committed together or not at all.
// It returns the cash-side row.
func (l *Ledger) Repay(ctx context.Context, p RepayParams) (*Transaction, error) {
	if p.AmountCents <= 0 {
		return nil, apperr.Validation(msgAmountPositive)
	}

	group := uuid.New()
	on := dateOnly(p.On)

	cash := &Transaction{
		AccountID:        accountID(p.Cash),
		BudgetCategoryID: categoryID(p.Category),
		AmountCents:      -p.AmountCents,
		OccurredOn:       on,
		Memo:             p.Memo,
		PostingGroupID:   &group,
	}

	loan := &Transaction{
		AccountID:        accountID(p.Loan),
		BudgetCategoryID: categoryID(p.Category),
		AmountCents:      p.AmountCents,
		OccurredOn:       on,
		Memo:             p.Memo,
		PostingGroupID:   &group,
	}

	tx, err := l.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin repayment: %w", err)
	}
	defer tx.Rollback()

	for _, t := range []*Transaction{cash, loan} {
		if err := t.Validate(); err != nil {
			return nil, err
		}

		if err := tx.CreateTransaction(ctx, t); err != nil {
			return nil, fmt.Errorf("creating transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit repayment: %w", err)
	}

	slog.Info("posted repayment",
		"posting_group_id", group,
		"cash_account_id", cash.AccountID,
		"loan_account_id", loan.AccountID,
		"amount_cents", p.AmountCents,
	)

	return cash, nil
}

func accountID(a *account.Account) uuid.UUID {
	if a == nil {
		return uuid.Nil
	}

	return a.ID
}

func categoryID(c *category.Category) *uuid.UUID {
	if c == nil {
		return nil
	}

	id := c.ID

	return &id
}
