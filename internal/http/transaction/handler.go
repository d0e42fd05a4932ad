package transaction

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetapp/internal/http/auth"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/param"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/respond"
	"github.com/MrJamesThe3rd/budgetapp/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
	rs  *respond.Responder
}

func NewHandler(svc *transaction.Service, rs *respond.Responder) *Handler {
	return &Handler{svc: svc, rs: rs}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
}

type createTransactionRequest struct {
	AccountID        uuid.UUID       `json:"accountId"`
	Memo             string          `json:"memo"`
	Amount           decimal.Decimal `json:"amount"`
	BudgetCategoryID *uuid.UUID      `json:"budgetCategoryId"`
	OccurredOn       string          `json:"occurredOn"`
	LoanAccountID    *uuid.UUID      `json:"loanAccountId"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := param.Decode(r, &req); err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	on, err := param.Date(req.OccurredOn, "occurredOn")
	if err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.svc.Create(r.Context(), auth.UserID(r.Context()), transaction.CreateParams{
		AccountID:        req.AccountID,
		Memo:             req.Memo,
		Amount:           req.Amount,
		BudgetCategoryID: req.BudgetCategoryID,
		OccurredOn:       on,
		LoanAccountID:    req.LoanAccountID,
	})
	if err != nil {
		h.rs.Error(w, r, "transaction", err)
		return
	}

	h.rs.Data(w, "transaction", ToResponse(tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var (
		filter transaction.ListFilter
		err    error
	)

	if filter.AccountID, err = param.QueryID(r, "account_id"); err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	if filter.BudgetCategoryID, err = param.QueryID(r, "budget_category_id"); err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	if filter.StartDate, err = param.QueryDate(r, "start_date"); err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	if filter.EndDate, err = param.QueryDate(r, "end_date"); err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := h.svc.List(r.Context(), auth.UserID(r.Context()), filter)
	if err != nil {
		h.rs.Error(w, r, "transactions", err)
		return
	}

	h.rs.Data(w, "transactions", ToResponseList(txs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := param.ID(r, "id")
	if err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.svc.Get(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		h.rs.Error(w, r, "transaction", err)
		return
	}

	h.rs.Data(w, "transaction", ToResponse(tx))
}

// delete answers with every row removed: the transaction and, for a repayment, its
// counterpart.
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := param.ID(r, "id")
	if err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	deleted, err := h.svc.Delete(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		h.rs.Error(w, r, "transactions", err)
		return
	}

	h.rs.Data(w, "transactions", ToResponseList(deleted))
}
