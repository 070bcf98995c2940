package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lamasa/erp/internal/costing"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Errorw("encode response", "error", err)
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// writeCoreError maps the costing error taxonomy onto HTTP statuses.
// Anything that is neither NotFound nor InvalidInput is a collaborator
// failure and surfaces as a 500.
func (s *server) writeCoreError(w http.ResponseWriter, err error) {
	switch {
	case costing.IsNotFound(err):
		s.writeError(w, http.StatusNotFound, err.Error())
	case costing.IsInvalidInput(err):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Errorw("request failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func urlID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// queryDecimal reads an optional decimal query parameter. An absent
// parameter returns nil; a present but malformed one is an error, never a
// silent default.
func queryDecimal(r *http.Request, name string) (*decimal.Decimal, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be numeric", costing.ErrInvalidInput, name)
	}
	return &value, nil
}

// queryDate reads an optional YYYY-MM-DD query parameter.
func queryDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a YYYY-MM-DD date", costing.ErrInvalidInput, name)
	}
	return &parsed, nil
}

func parseDateString(raw string) (string, error) {
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return "", fmt.Errorf("%w: date must be YYYY-MM-DD", costing.ErrInvalidInput)
	}
	return parsed.Format("2006-01-02"), nil
}

var errProductKind = errors.New("wrong product kind")

// writeKindError maps requireProductKind failures: a missing product is a
// 404, a product of the wrong kind is a 400.
func (s *server) writeKindError(w http.ResponseWriter, err error) {
	if errors.Is(err, errProductKind) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeCoreError(w, err)
}

// requireProductKind checks that the product exists and has the expected
// kind. Ingredient and consumption lines must be raw materials; output
// lines must be finished products.
func (s *server) requireProductKind(r *http.Request, productID int64, kind string) error {
	var got string
	err := s.db.QueryRowContext(r.Context(), `SELECT kind FROM products WHERE id = ?`, productID).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: product %d does not exist", costing.ErrNotFound, productID)
	}
	if err != nil {
		return fmt.Errorf("query product %d kind: %w", productID, err)
	}
	if got != kind {
		return fmt.Errorf("%w: product %d is %s, expected %s", errProductKind, productID, got, kind)
	}
	return nil
}
