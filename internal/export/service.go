package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetapp/internal/account"
	"github.com/MrJamesThe3rd/budgetapp/internal/category"
	"github.com/MrJamesThe3rd/budgetapp/internal/money"
	"github.com/MrJamesThe3rd/budgetapp/internal/transaction"
)

var header = []string{"date", "memo", "category", "amount", "balance"}

//go:generate mockgen -source=service.go -destination=service_mock.go -package=export
type Accounts interface {
	Get(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*account.Account, error)
}

type Categories interface {
	List(ctx context.Context, userID uuid.UUID) ([]*category.Category, error)
}

type Transactions interface {
	List(ctx context.Context, userID uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

// Service writes account statements.
type Service struct {
	accounts     Accounts
	categories   Categories
	transactions Transactions
}

func NewService(accounts Accounts, categories Categories, transactions Transactions) *Service {
	return &Service{
		accounts:     accounts,
		categories:   categories,
		transactions: transactions,
	}
}

// Period bounds a statement. Nil ends are open.
type Period struct {
	Start *time.Time
	End   *time.Time
}

// WriteStatement writes the account's rows in the period as CSV with a running
// balance. Rows before the period fold into the opening balance; the last row is the
// balance at the end of the period.
func (s *Service) WriteStatement(ctx context.Context, userID, accountID uuid.UUID, period Period, w io.Writer) error {
	acct, err := s.accounts.Get(ctx, userID, accountID)
	if err != nil {
		return err
	}

	// Rows after the period do not affect it, so only the upper bound is pushed down.
	txs, err := s.transactions.List(ctx, userID, transaction.ListFilter{AccountID: &acct.ID, EndDate: period.End})
	if err != nil {
		return fmt.Errorf("listing transactions: %w", err)
	}

	categories, err := s.categories.List(ctx, userID)
	if err != nil {
		return fmt.Errorf("listing categories: %w", err)
	}

	names := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	balance := acct.StartingBalanceCents

	var rows []*transaction.Transaction

	for _, t := range txs {
		if period.Start != nil && t.OccurredOn.Before(*period.Start) {
			balance += t.AmountCents
			continue
		}

		rows = append(rows, t)
	}

	if err := cw.Write([]string{"", "Opening balance", "", "", amount(balance)}); err != nil {
		return fmt.Errorf("writing opening balance: %w", err)
	}

	for _, t := range rows {
		balance += t.AmountCents

		var categoryName string
		if t.BudgetCategoryID != nil {
			categoryName = names[*t.BudgetCategoryID]
		}

		row := []string{
			t.OccurredOn.Format(time.DateOnly),
			t.Memo,
			categoryName,
			amount(t.AmountCents),
			amount(balance),
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	if err := cw.Write([]string{"", "Closing balance", "", "", amount(balance)}); err != nil {
		return fmt.Errorf("writing closing balance: %w", err)
	}

	cw.Flush()

	return cw.Error()
}

func amount(cents int64) string {
	return money.FromCents(cents).StringFixed(2)
}
