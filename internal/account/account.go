package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("account not found")
	// ErrMonthlyBudgetTaken is returned by stores when the one-monthly-budget-per-user
	// index rejects a write.
	ErrMonthlyBudgetTaken = errors.New("monthly budget account already exists")
)

// Type is the kind of account.
type Type string

const (
	TypeMonthlyBudget Type = "monthly_budget"
	TypeLoan          Type = "loan"
)

func (t Type) Valid() bool {
	switch t {
	case TypeMonthlyBudget, TypeLoan:
		return true
	}

	return false
}

// Account is a money container owned by a user. Balances are never stored,
// see CurrentBalance.
type Account struct {
	ID                   uuid.UUID
	UserID               uuid.UUID
	Name                 string
	Type                 Type
	StartingBalanceCents int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (a *Account) IsLoan() bool {
	return a.Type == TypeLoan
}

func (a *Account) IsMonthlyBudget() bool {
	return a.Type == TypeMonthlyBudget
}
