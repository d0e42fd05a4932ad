package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetapp/internal/account"
)

// ImportParams is one statement line. AmountCents is already signed.
type ImportParams struct {
	OccurredOn       time.Time
	AmountCents      int64
	Memo             string
	BudgetCategoryID *uuid.UUID
}

type ImportResult struct {
	Imported  []*Transaction
	New       []ImportParams
	Conflicts []Conflict
}

// Conflict is an incoming line that matches a row already posted to the account.
type Conflict struct {
	Incoming ImportParams
	Existing *Transaction
}

type dupKey struct {
	Date   string
	Amount int64
	Memo   string
}

func importKey(on time.Time, amount int64, memo string) dupKey {
	return dupKey{Date: on.Format(time.DateOnly), Amount: amount, Memo: memo}
}

// Import posts statement lines to an account as historical rows. When any line
// matches a row already on the account nothing is written and the result lists the
// conflicts and the remaining new lines for review. A batch with debits into the
// monthly budget is refused while its balance is zero or negative.
func (s *Service) Import(ctx context.Context, userID, accountID uuid.UUID, params []ImportParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	acct, err := s.accounts.Get(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	txs, err := s.importRows(ctx, userID, accountID, params)
	if err != nil {
		return nil, err
	}

	itx, err := s.repo.BeginImport(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, accountID, params)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[dupKey]*Transaction, len(duplicates))

	for _, d := range duplicates {
		lookup[importKey(d.OccurredOn, d.AmountCents, d.Memo)] = d
	}

	var newParams []ImportParams

	var conflicts []Conflict

	for _, p := range params {
		existing, found := lookup[importKey(p.OccurredOn, p.AmountCents, p.Memo)]
		if found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: existing})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	if err := s.checkImportFunds(ctx, acct, txs); err != nil {
		return nil, err
	}

	if err := createAll(ctx, itx, txs); err != nil {
		return nil, err
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &ImportResult{Imported: txs}, nil
}

// ConfirmImport posts lines the user has reviewed, duplicates included.
func (s *Service) ConfirmImport(ctx context.Context, userID, accountID uuid.UUID, params []ImportParams) ([]*Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	acct, err := s.accounts.Get(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	txs, err := s.importRows(ctx, userID, accountID, params)
	if err != nil {
		return nil, err
	}

	if err := s.checkImportFunds(ctx, acct, txs); err != nil {
		return nil, err
	}

	itx, err := s.repo.BeginImport(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	if err := createAll(ctx, itx, txs); err != nil {
		return nil, err
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return txs, nil
}

// importRows builds and validates the rows for params before anything is written.
// Every category a line is filed under must belong to userID.
func (s *Service) importRows(ctx context.Context, userID, accountID uuid.UUID, params []ImportParams) ([]*Transaction, error) {
	txs := make([]*Transaction, len(params))
	checked := make(map[uuid.UUID]bool)

	for i, p := range params {
		t := &Transaction{
			AccountID:        accountID,
			BudgetCategoryID: p.BudgetCategoryID,
			AmountCents:      p.AmountCents,
			OccurredOn:       dateOnly(p.OccurredOn),
			Memo:             p.Memo,
		}

		if err := t.Validate(); err != nil {
			return nil, err
		}

		if id := p.BudgetCategoryID; id != nil && !checked[*id] {
			if _, err := s.categories.Get(ctx, userID, *id); err != nil {
				return nil, err
			}

			checked[*id] = true
		}

		txs[i] = t
	}

	return txs, nil
}

// checkImportFunds applies the monthly budget funds guard to a batch holding at least
// one debit. Batches of credits only are always accepted.
func (s *Service) checkImportFunds(ctx context.Context, acct *account.Account, txs []*Transaction) error {
	for _, t := range txs {
		if t.AmountCents < 0 {
			return s.checkFunds(ctx, acct)
		}
	}

	return nil
}

func createAll(ctx context.Context, tx Tx, txs []*Transaction) error {
	for _, t := range txs {
		if err := tx.CreateTransaction(ctx, t); err != nil {
			return fmt.Errorf("create transactions: %w", err)
		}
	}

	return nil
}
