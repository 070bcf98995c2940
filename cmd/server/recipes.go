package main

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

type recipePayload struct {
	Name string `json:"name"`
	Note string `json:"note"`
}

type recipeLinePayload struct {
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Note      string          `json:"note"`
}

type recipeLineRow struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	Note      string          `json:"note"`
}

func (s *server) handleRecipeCreate(w http.ResponseWriter, r *http.Request) {
	var payload recipePayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	result, err := s.db.ExecContext(r.Context(), `
		INSERT INTO recipes (name, note)
		VALUES (?, ?)
	`, strings.TrimSpace(payload.Name), strings.TrimSpace(payload.Note))
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

func (s *server) recipeExists(r *http.Request, recipeID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(r.Context(), `SELECT 1 FROM recipes WHERE id = ?`, recipeID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *server) listRecipeLines(w http.ResponseWriter, r *http.Request, table string) {
	recipeID, err := urlID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := s.db.QueryContext(r.Context(), `
		SELECT l.id, l.product_id, p.name, l.quantity, COALESCE(l.note, '')
		FROM `+table+` l
		JOIN products p ON p.id = l.product_id
		WHERE l.recipe_id = ?
		ORDER BY l.id
	`, recipeID)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	defer rows.Close()

	lines := make([]recipeLineRow, 0)
	for rows.Next() {
		var line recipeLineRow
		if err := rows.Scan(&line.ID, &line.ProductID, &line.Name, &line.Quantity, &line.Note); err != nil {
			s.writeCoreError(w, err)
			return
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		s.writeCoreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, lines)
}

// addRecipeLine inserts an ingredient or output line after validating that
// the recipe exists and the product has the expected kind.
func (s *server) addRecipeLine(w http.ResponseWriter, r *http.Request, table, kind string) {
	recipeID, err := urlID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var payload recipeLinePayload
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

	exists, err := s.recipeExists(r, recipeID)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	if !exists {
		s.writeError(w, http.StatusNotFound, "recipe not found")
		return
	}
	if err := s.requireProductKind(r, payload.ProductID, kind); err != nil {
		s.writeKindError(w, err)
		return
	}

	result, err := s.db.ExecContext(r.Context(), `
		INSERT INTO `+table+` (recipe_id, product_id, quantity, note)
		VALUES (?, ?, ?, ?)
	`, recipeID, payload.ProductID, payload.Quantity, strings.TrimSpace(payload.Note))
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

func (s *server) handleRecipeIngredientsList(w http.ResponseWriter, r *http.Request) {
	s.listRecipeLines(w, r, "recipe_ingredients")
}

func (s *server) handleRecipeIngredientAdd(w http.ResponseWriter, r *http.Request) {
	s.addRecipeLine(w, r, "recipe_ingredients", "RAW")
}

func (s *server) handleRecipeOutputsList(w http.ResponseWriter, r *http.Request) {
	s.listRecipeLines(w, r, "recipe_outputs")
}

func (s *server) handleRecipeOutputAdd(w http.ResponseWriter, r *http.Request) {
	s.addRecipeLine(w, r, "recipe_outputs", "FINISHED")
}
