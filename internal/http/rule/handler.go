package rule

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetapp/internal/http/auth"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/param"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/respond"
	"github.com/MrJamesThe3rd/budgetapp/internal/rule"
)

type Handler struct {
	svc *rule.Service
	rs  *respond.Responder
}

func NewHandler(svc *rule.Service, rs *respond.Responder) *Handler {
	return &Handler{svc: svc, rs: rs}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type suggestResponse struct {
	Memo             string     `json:"memo"`
	BudgetCategoryID *uuid.UUID `json:"budgetCategoryId"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	memo := r.URL.Query().Get("memo")

	id, err := h.svc.Suggest(r.Context(), auth.UserID(r.Context()), memo)
	if err != nil {
		h.rs.Error(w, r, "suggestion", err)
		return
	}

	h.rs.Data(w, "suggestion", suggestResponse{Memo: memo, BudgetCategoryID: id})
}

type learnRequest struct {
	Pattern          string    `json:"pattern"`
	BudgetCategoryID uuid.UUID `json:"budgetCategoryId"`
}

type ruleResponse struct {
	ID               uuid.UUID `json:"id"`
	Pattern          string    `json:"pattern"`
	BudgetCategoryID uuid.UUID `json:"budgetCategoryId"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := param.Decode(r, &req); err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	rl, err := h.svc.Learn(r.Context(), auth.UserID(r.Context()), req.Pattern, req.BudgetCategoryID)
	if err != nil {
		h.rs.Error(w, r, "rule", err)
		return
	}

	h.rs.Data(w, "rule", ruleResponse{
		ID:               rl.ID,
		Pattern:          rl.Pattern,
		BudgetCategoryID: rl.BudgetCategoryID,
		CreatedAt:        rl.CreatedAt,
	})
}
