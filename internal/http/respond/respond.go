// Package respond writes the JSON envelopes shared by every handler.
//
// Successful calls and handled domain failures both answer 200 with
//
//	{"data": {"<field>": result|null, "errors": ["..."]}}
//
// Anything else is an unhandled failure and answers 500.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/budgetapp/internal/apperr"
)

const msgInternal = "Internal server error"

type payload struct {
	Data map[string]any `json:"data"`
}

type failure struct {
	Errors []string `json:"errors"`
}

type Responder struct {
	production bool
}

// New returns a Responder. In production unhandled errors are reported with a
// generic message instead of their detail.
func New(production bool) *Responder {
	return &Responder{production: production}
}

// Data writes result under field with an empty error list.
func (rs *Responder) Data(w http.ResponseWriter, field string, result any) {
	write(w, http.StatusOK, payload{Data: map[string]any{field: result, "errors": []string{}}})
}

// Error writes err. Domain errors go under field with a null result; anything
// else is logged and answered with a 500.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, field string, err error) {
	if msgs := apperr.Messages(err); msgs != nil {
		write(w, http.StatusOK, payload{Data: map[string]any{field: nil, "errors": msgs}})
		return
	}

	slog.Error("unhandled error", "error", err, "method", r.Method, "path", r.URL.Path)

	msg := msgInternal
	if !rs.production {
		msg = err.Error()
	}

	write(w, http.StatusInternalServerError, failure{Errors: []string{msg}})
}

// Status writes a bare error list with the given status, for failures that happen
// before a request reaches a service: bad input, missing session, rate limits.
func (rs *Responder) Status(w http.ResponseWriter, status int, msg string) {
	write(w, status, failure{Errors: []string{msg}})
}

func write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
