package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetapp/internal/account"
	"github.com/MrJamesThe3rd/budgetapp/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTransaction reads a transaction row from the scanner.
// Expected column order: id, account_id, budget_category_id, amount_cents, occurred_on, memo,
// posting_group_id, created_at, updated_at
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var t transaction.Transaction

	if err := s.Scan(
		&t.ID, &t.AccountID, &t.BudgetCategoryID, &t.AmountCents, &t.OccurredOn, &t.Memo,
		&t.PostingGroupID, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &t, nil
}

const selectTransactionColumns = `
	t.id, t.account_id, t.budget_category_id, t.amount_cents, t.occurred_on, t.memo,
	t.posting_group_id, t.created_at, t.updated_at
`

func collect(rows *sql.Rows) ([]*transaction.Transaction, error) {
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

func createTransaction(ctx context.Context, q querier, t *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (account_id, budget_category_id, amount_cents, occurred_on, memo, posting_group_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRowContext(ctx, query,
		t.AccountID,
		t.BudgetCategoryID,
		t.AmountCents,
		t.OccurredOn,
		t.Memo,
		t.PostingGroupID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (s *Store) CreateTransaction(ctx context.Context, t *transaction.Transaction) error {
	return createTransaction(ctx, s.db, t)
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions t WHERE t.id = $1`

	t, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return t, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.user_id = $1`

	args := []any{filter.UserID}

	argIdx := 2

	if filter.AccountID != nil {
		query += fmt.Sprintf(" AND t.account_id = $%d", argIdx)

		args = append(args, *filter.AccountID)
		argIdx++
	}

	if filter.BudgetCategoryID != nil {
		query += fmt.Sprintf(" AND t.budget_category_id = $%d", argIdx)

		args = append(args, *filter.BudgetCategoryID)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND t.occurred_on >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND t.occurred_on <= $%d", argIdx)

		args = append(args, *filter.EndDate)
	}

	query += " ORDER BY t.occurred_on ASC, t.created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	return collect(rows)
}

type storeTx struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (transaction.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return &storeTx{tx: dbTx}, nil
}

func importLockKey(accountID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write([]byte("import"))
	h.Write([]byte{0})
	h.Write(accountID[:])

	return int64(h.Sum64())
}

func (s *Store) BeginImport(ctx context.Context, accountID uuid.UUID) (transaction.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", importLockKey(accountID)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &storeTx{tx: dbTx}, nil
}

func (st *storeTx) Commit() error   { return st.tx.Commit() }
func (st *storeTx) Rollback() error { return st.tx.Rollback() }

func (st *storeTx) CreateTransaction(ctx context.Context, t *transaction.Transaction) error {
	return createTransaction(ctx, st.tx, t)
}

func (st *storeTx) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	res, err := st.tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if n == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

func (st *storeTx) ListPostingGroup(ctx context.Context, groupID uuid.UUID) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.posting_group_id = $1
		ORDER BY t.created_at ASC
		FOR UPDATE`

	rows, err := st.tx.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("listing posting group: %w", err)
	}

	return collect(rows)
}

func (st *storeTx) findOne(ctx context.Context, query string, args ...any) (*transaction.Transaction, error) {
	t, err := scanTransaction(st.tx.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("finding counterpart: %w", err)
	}

	return t, nil
}

func (st *storeTx) FindLoanCounterpart(ctx context.Context, userID uuid.UUID, t *transaction.Transaction) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.user_id = $1
		  AND a.account_type = $2
		  AND t.id <> $3
		  AND t.occurred_on = $4
		  AND t.memo = $5
		  AND ABS(t.amount_cents) = ABS($6::BIGINT)
		  AND (t.budget_category_id = $7 OR t.budget_category_id IS NULL)
		ORDER BY t.created_at ASC, t.id ASC
		LIMIT 1
		FOR UPDATE OF t`

	return st.findOne(ctx, query,
		userID, account.TypeLoan, t.ID, t.OccurredOn, t.Memo, t.AmountCents, t.BudgetCategoryID)
}

func (st *storeTx) FindBudgetCounterpart(ctx context.Context, budgetAccountID uuid.UUID, t *transaction.Transaction) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.account_id = $1
		  AND t.id <> $2
		  AND t.occurred_on = $3
		  AND t.memo = $4
		  AND t.amount_cents = $5
		  AND ($6::UUID IS NULL OR t.budget_category_id = $6)
		ORDER BY t.created_at ASC, t.id ASC
		LIMIT 1
		FOR UPDATE`

	return st.findOne(ctx, query,
		budgetAccountID, t.ID, t.OccurredOn, t.Memo, -t.AmountCents, t.BudgetCategoryID)
}

func (st *storeTx) FindDuplicates(ctx context.Context, accountID uuid.UUID, params []transaction.ImportParams) ([]*transaction.Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	type lookupKey struct {
		Date   string
		Amount int64
		Memo   string
	}

	minDate := params[0].OccurredOn
	maxDate := params[0].OccurredOn
	keySet := make(map[lookupKey]struct{}, len(params))

	for _, p := range params {
		if p.OccurredOn.Before(minDate) {
			minDate = p.OccurredOn
		}

		if p.OccurredOn.After(maxDate) {
			maxDate = p.OccurredOn
		}

		keySet[lookupKey{Date: p.OccurredOn.Format(time.DateOnly), Amount: p.AmountCents, Memo: p.Memo}] = struct{}{}
	}

	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.account_id = $1 AND t.occurred_on >= $2 AND t.occurred_on <= $3
		ORDER BY t.occurred_on ASC`

	rows, err := st.tx.QueryContext(ctx, query, accountID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}

	candidates, err := collect(rows)
	if err != nil {
		return nil, err
	}

	var duplicates []*transaction.Transaction

	for _, c := range candidates {
		k := lookupKey{Date: c.OccurredOn.Format(time.DateOnly), Amount: c.AmountCents, Memo: c.Memo}
		if _, found := keySet[k]; found {
			duplicates = append(duplicates, c)
		}
	}

	return duplicates, nil
}
