package importcsv

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetapp/internal/http/auth"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/param"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/respond"
	httptx "github.com/MrJamesThe3rd/budgetapp/internal/http/transaction"
	"github.com/MrJamesThe3rd/budgetapp/internal/importer"
	"github.com/MrJamesThe3rd/budgetapp/internal/rule"
	"github.com/MrJamesThe3rd/budgetapp/internal/transaction"
)

const maxUploadBytes = 10 << 20

type Handler struct {
	importSvc *importer.Service
	txSvc     *transaction.Service
	ruleSvc   *rule.Service
	rs        *respond.Responder
}

func NewHandler(importSvc *importer.Service, txSvc *transaction.Service, ruleSvc *rule.Service, rs *respond.Responder) *Handler {
	return &Handler{
		importSvc: importSvc,
		txSvc:     txSvc,
		ruleSvc:   ruleSvc,
		rs:        rs,
	}
}

// Routes is mounted under /accounts/{id}/import.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
	r.Post("/confirm", h.confirmImport)
}

type lineDTO struct {
	OccurredOn       string     `json:"occurredOn"`
	AmountCents      int64      `json:"amountCents"`
	Memo             string     `json:"memo"`
	BudgetCategoryID *uuid.UUID `json:"budgetCategoryId"`
}

type conflictDTO struct {
	Incoming lineDTO         `json:"incoming"`
	Existing httptx.Response `json:"existing"`
}

type importResponse struct {
	Imported     int               `json:"imported"`
	Transactions []httptx.Response `json:"transactions"`
	New          []lineDTO         `json:"new"`
	Conflicts    []conflictDTO     `json:"conflicts"`
}

type confirmRequest struct {
	Lines []lineDTO `json:"lines"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	accountID, err := param.ID(r, "id")
	if err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.rs.Status(w, http.StatusBadRequest, "failed to parse form: "+err.Error())
		return
	}

	bank := importer.Bank(r.FormValue("bank"))
	if bank == "" {
		h.rs.Status(w, http.StatusBadRequest, "bank field is required")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.rs.Status(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	lines, err := h.importSvc.Import(bank, file)
	if err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := auth.UserID(r.Context())

	if err := h.ruleSvc.Categorize(r.Context(), userID, lines); err != nil {
		h.rs.Error(w, r, "import", err)
		return
	}

	result, err := h.txSvc.Import(r.Context(), userID, accountID, lines)
	if err != nil {
		h.rs.Error(w, r, "import", err)
		return
	}

	resp := importResponse{
		Imported:     len(result.Imported),
		Transactions: httptx.ToResponseList(result.Imported),
		New:          make([]lineDTO, 0, len(result.New)),
		Conflicts:    make([]conflictDTO, 0, len(result.Conflicts)),
	}

	for _, p := range result.New {
		resp.New = append(resp.New, toLineDTO(p))
	}

	for _, c := range result.Conflicts {
		resp.Conflicts = append(resp.Conflicts, conflictDTO{
			Incoming: toLineDTO(c.Incoming),
			Existing: httptx.ToResponse(c.Existing),
		})
	}

	h.rs.Data(w, "import", resp)
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	accountID, err := param.ID(r, "id")
	if err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	var req confirmRequest
	if err := param.Decode(r, &req); err != nil {
		h.rs.Status(w, http.StatusBadRequest, err.Error())
		return
	}

	lines := make([]transaction.ImportParams, 0, len(req.Lines))

	for _, l := range req.Lines {
		on, err := param.Date(l.OccurredOn, "occurredOn")
		if err != nil || on == nil {
			h.rs.Status(w, http.StatusBadRequest, "invalid occurredOn")
			return
		}

		lines = append(lines, transaction.ImportParams{
			OccurredOn:       *on,
			AmountCents:      l.AmountCents,
			Memo:             l.Memo,
			BudgetCategoryID: l.BudgetCategoryID,
		})
	}

	txs, err := h.txSvc.ConfirmImport(r.Context(), auth.UserID(r.Context()), accountID, lines)
	if err != nil {
		h.rs.Error(w, r, "import", err)
		return
	}

	h.rs.Data(w, "import", importResponse{
		Imported:     len(txs),
		Transactions: httptx.ToResponseList(txs),
		New:          []lineDTO{},
		Conflicts:    []conflictDTO{},
	})
}

func toLineDTO(p transaction.ImportParams) lineDTO {
	return lineDTO{
		OccurredOn:       p.OccurredOn.Format(time.DateOnly),
		AmountCents:      p.AmountCents,
		Memo:             p.Memo,
		BudgetCategoryID: p.BudgetCategoryID,
	}
}
