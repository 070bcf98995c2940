package main

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

type purchaseLinePayload struct {
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

type purchasePayload struct {
	PurchaseDate string                `json:"purchase_date"`
	SupplierID   *int64                `json:"supplier_id"`
	Note         string                `json:"note"`
	Lines        []purchaseLinePayload `json:"lines"`
}

type purchaseListRow struct {
	ID           int64  `json:"id"`
	PurchaseDate string `json:"purchase_date"`
	SupplierID   *int64 `json:"supplier_id"`
	Note         string `json:"note"`
	LineCount    int64  `json:"line_count"`
}

func (s *server) handlePurchasesList(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.QueryContext(r.Context(), `
		SELECT
			p.id,
			p.purchase_date,
			p.supplier_id,
			COALESCE(p.note, ''),
			COUNT(pl.id)
		FROM purchases p
		LEFT JOIN purchase_lines pl ON pl.purchase_id = p.id
		GROUP BY p.id
		ORDER BY p.purchase_date DESC, p.id DESC
	`)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	defer rows.Close()

	purchases := make([]purchaseListRow, 0)
	for rows.Next() {
		var row purchaseListRow
		if err := rows.Scan(&row.ID, &row.PurchaseDate, &row.SupplierID, &row.Note, &row.LineCount); err != nil {
			s.writeCoreError(w, err)
			return
		}
		purchases = append(purchases, row)
	}
	if err := rows.Err(); err != nil {
		s.writeCoreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, purchases)
}

// handlePurchaseCreate inserts a purchase and its lines in one
// transaction. A purchase without lines is legal, it just never
// influences unit costs.
func (s *server) handlePurchaseCreate(w http.ResponseWriter, r *http.Request) {
	var payload purchasePayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	date, err := parseDateString(payload.PurchaseDate)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	for _, line := range payload.Lines {
		if line.ProductID <= 0 {
			s.writeError(w, http.StatusBadRequest, "product_id is required on every line")
			return
		}
		if line.Quantity.IsNegative() || line.UnitCost.IsNegative() {
			s.writeError(w, http.StatusBadRequest, "quantity and unit_cost cannot be negative")
			return
		}
		if err := s.requireProductKind(r, line.ProductID, "RAW"); err != nil {
			s.writeKindError(w, err)
			return
		}
	}

	tx, err := s.db.BeginTx(r.Context(), nil)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	defer tx.Rollback()

	var supplierID any
	if payload.SupplierID != nil {
		supplierID = *payload.SupplierID
	}

	result, err := tx.ExecContext(r.Context(), `
		INSERT INTO purchases (purchase_date, supplier_id, note)
		VALUES (?, ?, ?)
	`, date, supplierID, strings.TrimSpace(payload.Note))
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	purchaseID, err := result.LastInsertId()
	if err != nil {
		s.writeCoreError(w, err)
		return
	}

	for _, line := range payload.Lines {
		if _, err := tx.ExecContext(r.Context(), `
			INSERT INTO purchase_lines (purchase_id, product_id, quantity, unit_cost)
			VALUES (?, ?, ?, ?)
		`, purchaseID, line.ProductID, line.Quantity, line.UnitCost); err != nil {
			s.writeCoreError(w, err)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		s.writeCoreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]int64{"id": purchaseID})
}
