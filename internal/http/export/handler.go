package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/budgetapp/internal/export"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/auth"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/param"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/respond"
)

type Handler struct {
	svc *export.Service
	rs  *respond.Responder
}

func NewHandler(svc *export.Service, rs *respond.Responder) *Handler {
	return &Handler{svc: svc, rs: rs}
}

// Routes is mounted under /accounts/{id}/statement.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.statement)
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	accountID, err := param.ID(r, "id")
	if err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	var period export.Period

	if period.Start, err = param.QueryDate(r, "start_date"); err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	if period.End, err = param.QueryDate(r, "end_date"); err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	// Buffer so a failure halfway through still gets a proper error response.
	var buf bytes.Buffer

	if err := h.svc.WriteStatement(r.Context(), auth.UserID(r.Context()), accountID, period, &buf); err != nil {
		h.rs.Error(w, r, "statement", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="statement-%s.csv"`, accountID))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write statement", "error", err)
	}
}
