package transaction

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetapp/internal/apperr"
)

var ErrNotFound = errors.New("transaction not found")

const (
	msgMemoBlank      = "Memo can't be blank"
	msgAmountZero     = "Amount cents must be other than 0"
	msgAccountMissing = "Account must exist"
)

// Transaction is one posting to one account. AmountCents is signed: negative leaves
// the account, positive enters it.
type Transaction struct {
	ID               uuid.UUID
	AccountID        uuid.UUID
	BudgetCategoryID *uuid.UUID
	AmountCents      int64
	OccurredOn       time.Time
	Memo             string
	// PostingGroupID is shared by the rows posted together by one repayment.
	PostingGroupID *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate reports every field-level problem with t as a validation error.
func (t *Transaction) Validate() error {
	var c apperr.Collector

	c.Check(t.AccountID != uuid.Nil, msgAccountMissing)
	c.Check(strings.TrimSpace(t.Memo) != "", msgMemoBlank)
	c.Check(t.AmountCents != 0, msgAmountZero)

	return c.Err()
}

// IsPaired reports whether t was posted as half of a repayment.
func (t *Transaction) IsPaired() bool {
	return t.PostingGroupID != nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
