package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lamasa/erp/internal/costing"
)

// RecipeIngredients returns the recipe's ingredient lines in insertion order.
func (s *Store) RecipeIngredients(ctx context.Context, recipeID int64) ([]costing.Line, error) {
	return s.queryLines(ctx, `
		SELECT ri.product_id, p.name, ri.quantity
		FROM recipe_ingredients ri
		JOIN products p ON p.id = ri.product_id
		WHERE ri.recipe_id = ?
		ORDER BY ri.id
	`, recipeID)
}

// RecipeOutputs returns the recipe's declared output lines in insertion order.
func (s *Store) RecipeOutputs(ctx context.Context, recipeID int64) ([]costing.Line, error) {
	return s.queryLines(ctx, `
		SELECT ro.product_id, p.name, ro.quantity
		FROM recipe_outputs ro
		JOIN products p ON p.id = ro.product_id
		WHERE ro.recipe_id = ?
		ORDER BY ro.id
	`, recipeID)
}

// BatchConsumption returns the batch's recorded consumption lines in
// insertion order. Rows are returned as stored; duplicate products are not
// merged.
func (s *Store) BatchConsumption(ctx context.Context, batchID int64) ([]costing.Line, error) {
	return s.queryLines(ctx, `
		SELECT bc.product_id, p.name, bc.quantity
		FROM batch_consumption bc
		JOIN products p ON p.id = bc.product_id
		WHERE bc.batch_id = ?
		ORDER BY bc.id
	`, batchID)
}

// BatchOutputs returns the batch's recorded output lines in insertion order.
func (s *Store) BatchOutputs(ctx context.Context, batchID int64) ([]costing.Line, error) {
	return s.queryLines(ctx, `
		SELECT bo.product_id, p.name, bo.quantity
		FROM batch_outputs bo
		JOIN products p ON p.id = bo.product_id
		WHERE bo.batch_id = ?
		ORDER BY bo.id
	`, batchID)
}

// BatchDate returns the batch's production date.
func (s *Store) BatchDate(ctx context.Context, batchID int64) (time.Time, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT batch_date FROM batches WHERE id = ?`, batchID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("%w: batch %d", costing.ErrNotFound, batchID)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query batch %d date: %w", batchID, err)
	}
	return parseDate(raw)
}

// LatestPurchaseCost returns the unit cost of the most recent purchase line
// for the product at or before asOf, ties broken by the highest line id.
func (s *Store) LatestPurchaseCost(ctx context.Context, productID int64, asOf *time.Time) (decimal.Decimal, bool, error) {
	query := `
		SELECT pl.unit_cost
		FROM purchase_lines pl
		JOIN purchases pu ON pu.id = pl.purchase_id
		WHERE pl.product_id = ?
	`
	args := []any{productID}
	if asOf != nil {
		query += ` AND pu.purchase_date <= ?`
		args = append(args, asOf.Format(dateLayout))
	}
	query += ` ORDER BY pu.purchase_date DESC, pl.id DESC LIMIT 1`

	var cost decimal.Decimal
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&cost)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("query latest purchase cost for product %d: %w", productID, err)
	}
	return cost, true, nil
}

// StandardCost returns the product's configured standard cost, if set.
// An unknown product behaves like a product without a standard cost.
func (s *Store) StandardCost(ctx context.Context, productID int64) (decimal.Decimal, bool, error) {
	var cost decimal.NullDecimal
	err := s.db.QueryRowContext(ctx, `SELECT standard_cost FROM products WHERE id = ?`, productID).Scan(&cost)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("query standard cost for product %d: %w", productID, err)
	}
	if !cost.Valid {
		return decimal.Zero, false, nil
	}
	return cost.Decimal, true, nil
}

func (s *Store) queryLines(ctx context.Context, query string, id int64) ([]costing.Line, error) {
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("query lines: %w", err)
	}
	defer rows.Close()

	lines := make([]costing.Line, 0)
	for rows.Next() {
		var line costing.Line
		if err := rows.Scan(&line.MaterialID, &line.Name, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lines: %w", err)
	}

	return lines, nil
}
