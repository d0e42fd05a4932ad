package account

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetapp/internal/account"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/auth"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/param"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/respond"
	httptx "github.com/MrJamesThe3rd/budgetapp/internal/http/transaction"
	"github.com/MrJamesThe3rd/budgetapp/internal/money"
	"github.com/MrJamesThe3rd/budgetapp/internal/transaction"
)

type Handler struct {
	svc          *account.Service
	transactions *transaction.Service
	rs           *respond.Responder
}

func NewHandler(svc *account.Service, transactions *transaction.Service, rs *respond.Responder) *Handler {
	return &Handler{svc: svc, transactions: transactions, rs: rs}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type accountResponse struct {
	ID                           uuid.UUID         `json:"id"`
	Name                         string            `json:"name"`
	AccountType                  account.Type      `json:"accountType"`
	StartingBalance              float64           `json:"startingBalance"`
	StartingBalanceCents         int64             `json:"startingBalanceCents"`
	CurrentBalance               float64           `json:"currentBalance"`
	CurrentBalanceCents          int64             `json:"currentBalanceCents"`
	TotalSpendingOrPayments      float64           `json:"totalSpendingOrPayments"`
	TotalSpendingOrPaymentsCents int64             `json:"totalSpendingOrPaymentsCents"`
	CreatedAt                    time.Time         `json:"createdAt"`
	UpdatedAt                    time.Time         `json:"updatedAt"`
	Transactions                 []httptx.Response `json:"transactions,omitempty"`
}

func toResponse(b account.Balance) accountResponse {
	a := b.Account

	return accountResponse{
		ID:                           a.ID,
		Name:                         a.Name,
		AccountType:                  a.Type,
		StartingBalance:              money.Dollars(a.StartingBalanceCents),
		StartingBalanceCents:         a.StartingBalanceCents,
		CurrentBalance:               money.Dollars(b.CurrentCents),
		CurrentBalanceCents:          b.CurrentCents,
		TotalSpendingOrPayments:      money.Dollars(b.SpendingOrPaymentsCents),
		TotalSpendingOrPaymentsCents: b.SpendingOrPaymentsCents,
		CreatedAt:                    a.CreatedAt,
		UpdatedAt:                    a.UpdatedAt,
	}
}

// present derives the balance of a and, when asked, loads its transactions.
func (h *Handler) present(r *http.Request, a *account.Account) (accountResponse, error) {
	b, err := h.svc.Balance(r.Context(), a)
	if err != nil {
		return accountResponse{}, err
	}

	resp := toResponse(b)

	if param.Include(r, "transactions") {
		txs, err := h.transactions.List(r.Context(), auth.UserID(r.Context()), transaction.ListFilter{AccountID: &a.ID})
		if err != nil {
			return accountResponse{}, err
		}

		resp.Transactions = httptx.ToResponseList(txs)
	}

	return resp, nil
}

type createAccountRequest struct {
	Name            string          `json:"name"`
	AccountType     account.Type    `json:"accountType"`
	StartingBalance decimal.Decimal `json:"startingBalance"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := param.Decode(r, &req); err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := h.svc.Create(r.Context(), auth.UserID(r.Context()), account.CreateParams{
		Name:            req.Name,
		Type:            req.AccountType,
		StartingBalance: req.StartingBalance,
	})
	if err != nil {
		h.rs.Error(w, r, "account", err)
		return
	}

	h.rs.Data(w, "account", toResponse(account.NewBalance(a, account.Totals{})))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.rs.Error(w, r, "accounts", err)
		return
	}

	resp := make([]accountResponse, 0, len(accounts))

	for _, a := range accounts {
		ar, err := h.present(r, a)
		if err != nil {
			h.rs.Error(w, r, "accounts", err)
			return
		}

		resp = append(resp, ar)
	}

	h.rs.Data(w, "accounts", resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := param.ID(r, "id")
	if err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := h.svc.Get(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		h.rs.Error(w, r, "account", err)
		return
	}

	resp, err := h.present(r, a)
	if err != nil {
		h.rs.Error(w, r, "account", err)
		return
	}

	h.rs.Data(w, "account", resp)
}

type updateAccountRequest struct {
	Name            *string          `json:"name"`
	AccountType     *account.Type    `json:"accountType"`
	StartingBalance *decimal.Decimal `json:"startingBalance"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := param.ID(r, "id")
	if err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateAccountRequest
	if err := param.Decode(r, &req); err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := h.svc.Update(r.Context(), auth.UserID(r.Context()), id, account.UpdateParams{
		Name:            req.Name,
		Type:            req.AccountType,
		StartingBalance: req.StartingBalance,
	})
	if err != nil {
		h.rs.Error(w, r, "account", err)
		return
	}

	resp, err := h.present(r, a)
	if err != nil {
		h.rs.Error(w, r, "account", err)
		return
	}

	h.rs.Data(w, "account", resp)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := param.ID(r, "id")
	if err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := h.svc.Delete(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		h.rs.Error(w, r, "account", err)
		return
	}

	h.rs.Data(w, "account", toResponse(account.NewBalance(a, account.Totals{})))
}
