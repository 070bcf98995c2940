package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lamasa/erp/internal/costing"
)

// Overhead reads the persisted overhead configuration. The boolean reports
// whether an administrator has ever saved one.
func (s *Store) Overhead(ctx context.Context) (costing.OverheadConfig, bool, error) {
	var cfg costing.OverheadConfig
	err := s.db.QueryRowContext(ctx, `SELECT method, pct FROM costing_config WHERE id = 1`).
		Scan(&cfg.Method, &cfg.Pct)
	if errors.Is(err, sql.ErrNoRows) {
		return costing.OverheadConfig{}, false, nil
	}
	if err != nil {
		return costing.OverheadConfig{}, false, fmt.Errorf("query costing config: %w", err)
	}
	return cfg, true, nil
}

// SetOverhead replaces the overhead configuration in a single statement, so
// readers always observe a whole {method, pct} pair. Last writer wins.
func (s *Store) SetOverhead(ctx context.Context, cfg costing.OverheadConfig) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO costing_config (id, method, pct, updated_at)
		VALUES (1, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			method = excluded.method,
			pct = excluded.pct,
			updated_at = CURRENT_TIMESTAMP
	`, cfg.Method, cfg.Pct)
	if err != nil {
		return fmt.Errorf("upsert costing config: %w", err)
	}
	return nil
}
