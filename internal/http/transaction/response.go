package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetapp/internal/money"
	"github.com/MrJamesThe3rd/budgetapp/internal/transaction"
)

// Response is the JSON view of a transaction, shared with the account and category
// handlers when they include transactions.
type Response struct {
	ID               uuid.UUID  `json:"id"`
	AccountID        uuid.UUID  `json:"accountId"`
	BudgetCategoryID *uuid.UUID `json:"budgetCategoryId"`
	Amount           float64    `json:"amount"`
	AmountCents      int64      `json:"amountCents"`
	OccurredOn       string     `json:"occurredOn"`
	Memo             string     `json:"memo"`
	PostingGroupID   *uuid.UUID `json:"postingGroupId,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func ToResponse(t *transaction.Transaction) Response {
	return Response{
		ID:               t.ID,
		AccountID:        t.AccountID,
		BudgetCategoryID: t.BudgetCategoryID,
		Amount:           money.Dollars(t.AmountCents),
		AmountCents:      t.AmountCents,
		OccurredOn:       t.OccurredOn.Format(time.DateOnly),
		Memo:             t.Memo,
		PostingGroupID:   t.PostingGroupID,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func ToResponseList(txs []*transaction.Transaction) []Response {
	resp := make([]Response, len(txs))
	for i, t := range txs {
		resp[i] = ToResponse(t)
	}

	return resp
}
