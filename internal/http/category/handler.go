package category

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetapp/internal/category"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/auth"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/param"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/respond"
	httptx "github.com/MrJamesThe3rd/budgetapp/internal/http/transaction"
	"github.com/MrJamesThe3rd/budgetapp/internal/money"
	"github.com/MrJamesThe3rd/budgetapp/internal/transaction"
)

type Handler struct {
	svc          *category.Service
	transactions *transaction.Service
	rs           *respond.Responder
}

func NewHandler(svc *category.Service, transactions *transaction.Service, rs *respond.Responder) *Handler {
	return &Handler{svc: svc, transactions: transactions, rs: rs}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type categoryResponse struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	Amount       float64           `json:"amount"`
	AmountCents  int64             `json:"amountCents"`
	Description  *string           `json:"description"`
	CategoryType category.Type     `json:"categoryType"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	Transactions []httptx.Response `json:"transactions,omitempty"`
}

func toResponse(c *category.Category) categoryResponse {
	return categoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Amount:       money.Dollars(c.AmountCents),
		AmountCents:  c.AmountCents,
		Description:  c.Description,
		CategoryType: c.Type,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func (h *Handler) present(r *http.Request, c *category.Category) (categoryResponse, error) {
	resp := toResponse(c)

	if !param.Include(r, "transactions") {
		return resp, nil
	}

	txs, err := h.transactions.List(r.Context(), auth.UserID(r.Context()), transaction.ListFilter{BudgetCategoryID: &c.ID})
	if err != nil {
		return categoryResponse{}, err
	}

	resp.Transactions = httptx.ToResponseList(txs)

	return resp, nil
}

type createCategoryRequest struct {
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"`
	Description  *string         `json:"description"`
	CategoryType category.Type   `json:"categoryType"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := param.Decode(r, &req); err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.svc.Create(r.Context(), auth.UserID(r.Context()), category.CreateParams{
		Name:        req.Name,
		Amount:      req.Amount,
		Description: req.Description,
		Type:        req.CategoryType,
	})
	if err != nil {
		h.rs.Error(w, r, "budgetCategory", err)
		return
	}

	h.rs.Data(w, "budgetCategory", toResponse(c))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.rs.Error(w, r, "budgetCategories", err)
		return
	}

	resp := make([]categoryResponse, 0, len(categories))

	for _, c := range categories {
		cr, err := h.present(r, c)
		if err != nil {
			h.rs.Error(w, r, "budgetCategories", err)
			return
		}

		resp = append(resp, cr)
	}

	h.rs.Data(w, "budgetCategories", resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := param.ID(r, "id")
	if err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.svc.Get(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		h.rs.Error(w, r, "budgetCategory", err)
		return
	}

	resp, err := h.present(r, c)
	if err != nil {
		h.rs.Error(w, r, "budgetCategory", err)
		return
	}

	h.rs.Data(w, "budgetCategory", resp)
}

type updateCategoryRequest struct {
	Name         *string          `json:"name"`
	Amount       *decimal.Decimal `json:"amount"`
	Description  *string          `json:"description"`
	CategoryType *category.Type   `json:"categoryType"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := param.ID(r, "id")
	if err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateCategoryRequest
	if err := param.Decode(r, &req); err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.svc.Update(r.Context(), auth.UserID(r.Context()), id, category.UpdateParams{
		Name:        req.Name,
		Amount:      req.Amount,
		Description: req.Description,
		Type:        req.CategoryType,
	})
	if err != nil {
		h.rs.Error(w, r, "budgetCategory", err)
		return
	}

	h.rs.Data(w, "budgetCategory", toResponse(c))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := param.ID(r, "id")
	if err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.svc.Delete(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		h.rs.Error(w, r, "budgetCategory", err)
		return
	}

	h.rs.Data(w, "budgetCategory", toResponse(c))
}
