package main

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

type productPayload struct {
	SKU          string           `json:"sku"`
	Name         string           `json:"name"`
	Kind         string           `json:"kind"`
	StandardCost *decimal.Decimal `json:"standard_cost"`
	Active       *bool            `json:"active"`
}

type productRow struct {
	ID           int64               `json:"id"`
	SKU          string              `json:"sku"`
	Name         string              `json:"name"`
	Kind         string              `json:"kind"`
	StandardCost decimal.NullDecimal `json:"standard_cost"`
	Active       bool                `json:"active"`
}

func (p productPayload) validate() string {
	if strings.TrimSpace(p.SKU) == "" {
		return "sku is required"
	}
	if strings.TrimSpace(p.Name) == "" {
		return "name is required"
	}
	if p.Kind != "RAW" && p.Kind != "FINISHED" {
		return "kind must be RAW or FINISHED"
	}
	if p.StandardCost != nil && p.StandardCost.IsNegative() {
		return "standard_cost cannot be negative"
	}
	// Raw materials need a standard cost until purchases exist.
	if p.Kind == "RAW" && p.StandardCost == nil {
		return "standard_cost is required for raw materials"
	}
	return ""
}

func (s *server) handleProductsList(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.QueryContext(r.Context(), `
		SELECT id, sku, name, kind, standard_cost, active
		FROM products
		ORDER BY id DESC
	`)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	defer rows.Close()

	products := make([]productRow, 0)
	for rows.Next() {
		var p productRow
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Kind, &p.StandardCost, &p.Active); err != nil {
			s.writeCoreError(w, err)
			return
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		s.writeCoreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, products)
}

func (s *server) handleProductCreate(w http.ResponseWriter, r *http.Request) {
	var payload productPayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := payload.validate(); msg != "" {
		s.writeError(w, http.StatusBadRequest, msg)
		return
	}

	var standardCost any
	if payload.StandardCost != nil {
		standardCost = *payload.StandardCost
	}

	result, err := s.db.ExecContext(r.Context(), `
		INSERT INTO products (sku, name, kind, standard_cost, active)
		VALUES (?, ?, ?, ?, TRUE)
	`, strings.TrimSpace(payload.SKU), strings.TrimSpace(payload.Name), payload.Kind, standardCost)
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

func (s *server) handleProductUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var payload productPayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := payload.validate(); msg != "" {
		s.writeError(w, http.StatusBadRequest, msg)
		return
	}

	var standardCost any
	if payload.StandardCost != nil {
		standardCost = *payload.StandardCost
	}
	active := true
	if payload.Active != nil {
		active = *payload.Active
	}

	result, err := s.db.ExecContext(r.Context(), `
		UPDATE products
		SET
			sku = ?,
			name = ?,
			kind = ?,
			standard_cost = ?,
			active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, strings.TrimSpace(payload.SKU), strings.TrimSpace(payload.Name), payload.Kind, standardCost, active, id)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	if affected == 0 {
		s.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
