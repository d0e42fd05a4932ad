// Package param reads ids, dates and JSON bodies from requests.
package param

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ID parses the named URL parameter as a uuid.
func ID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", name)
	}

	return id, nil
}

// QueryID parses an optional uuid query parameter.
func QueryID(r *http.Request, key string) (*uuid.UUID, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil, nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", key)
	}

	return &id, nil
}

// QueryDate parses an optional ISO date query parameter.
func QueryDate(r *http.Request, key string) (*time.Time, error) {
	return Date(r.URL.Query().Get(key), key)
}

// Date parses an optional ISO date. Empty input is nil.
func Date(s, name string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", name)
	}

	return &t, nil
}

// Include reports whether the include query parameter asks for relation.
func Include(r *http.Request, relation string) bool {
	return r.URL.Query().Get("include") == relation
}

func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}

	return nil
}
