package category

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("budget category not found")

// Type decides how transactions in a category are posted.
type Type string

const (
	TypeVariableExpense Type = "variable_expense"
	TypeDebtRepayment   Type = "debt_repayment"
)

func (t Type) Valid() bool {
	switch t {
	case TypeVariableExpense, TypeDebtRepayment:
		return true
	}

	return false
}

// Category is a budget line owned by a user. AmountCents is the budgeted cap.
type Category struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	AmountCents int64
	Description *string
	Type        Type
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
