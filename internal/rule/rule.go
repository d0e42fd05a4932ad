// Package rule files transactions under budget categories by memo.
package rule

import (
	"time"

	"github.com/google/uuid"
)

// Rule assigns BudgetCategoryID to memos containing Pattern, ignoring case.
type Rule struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Pattern          string
	BudgetCategoryID uuid.UUID
	CreatedAt        time.Time
}
