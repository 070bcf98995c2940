package main

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

type batchPayload struct {
	BatchDate string `json:"batch_date"`
	RecipeID  *int64 `json:"recipe_id"`
	Note      string `json:"note"`
}

type batchLinePayload struct {
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// handleBatchCreate registers a production batch. When a recipe is given
// its ingredient and output lines are copied into the batch so they can be
// edited per run without touching the recipe.
func (s *server) handleBatchCreate(w http.ResponseWriter, r *http.Request) {
	var payload batchPayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	date, err := parseDateString(payload.BatchDate)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	if payload.RecipeID != nil {
		exists, err := s.recipeExists(r, *payload.RecipeID)
		if err != nil {
			s.writeCoreError(w, err)
			return
		}
		if !exists {
			s.writeError(w, http.StatusNotFound, "recipe not found")
			return
		}
	}

	tx, err := s.db.BeginTx(r.Context(), nil)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	defer tx.Rollback()

	var recipeID any
	if payload.RecipeID != nil {
		recipeID = *payload.RecipeID
	}

	result, err := tx.ExecContext(r.Context(), `
		INSERT INTO batches (batch_date, recipe_id, note)
		VALUES (?, ?, ?)
	`, date, recipeID, strings.TrimSpace(payload.Note))
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	batchID, err := result.LastInsertId()
	if err != nil {
		s.writeCoreError(w, err)
		return
	}

	if payload.RecipeID != nil {
		if _, err := tx.ExecContext(r.Context(), `
			INSERT INTO batch_consumption (batch_id, product_id, quantity)
			SELECT ?, product_id, quantity FROM recipe_ingredients WHERE recipe_id = ? ORDER BY id
		`, batchID, *payload.RecipeID); err != nil {
			s.writeCoreError(w, err)
			return
		}
		if _, err := tx.ExecContext(r.Context(), `
			INSERT INTO batch_outputs (batch_id, product_id, quantity)
			SELECT ?, product_id, quantity FROM recipe_outputs WHERE recipe_id = ? ORDER BY id
		`, batchID, *payload.RecipeID); err != nil {
			s.writeCoreError(w, err)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		s.writeCoreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]int64{"id": batchID})
}

func (s *server) batchExists(r *http.Request, batchID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(r.Context(), `SELECT 1 FROM batches WHERE id = ?`, batchID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *server) addBatchLine(w http.ResponseWriter, r *http.Request, table, kind string) {
	batchID, err := urlID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var payload batchLinePayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.ProductID <= 0 {
		s.writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}
	if payload.Quantity.IsNegative() {
		s.writeError(w, http.StatusBadRequest, "quantity cannot be negative")
		return
	}

	exists, err := s.batchExists(r, batchID)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	if !exists {
		s.writeError(w, http.StatusNotFound, "batch not found")
		return
	}
	if err := s.requireProductKind(r, payload.ProductID, kind); err != nil {
		s.writeKindError(w, err)
		return
	}

	result, err := s.db.ExecContext(r.Context(), `
		INSERT INTO `+table+` (batch_id, product_id, quantity)
		VALUES (?, ?, ?)
	`, batchID, payload.ProductID, payload.Quantity)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	id, err := result.LastInsertId()
	if err != nil {
		s.writeCoreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *server) handleBatchConsumptionAdd(w http.ResponseWriter, r *http.Request) {
	s.addBatchLine(w, r, "batch_consumption", "RAW")
}

func (s *server) handleBatchOutputAdd(w http.ResponseWriter, r *http.Request) {
	s.addBatchLine(w, r, "batch_outputs", "FINISHED")
}
