package seed

import (
	"database/sql"
	"fmt"
)

const (
	defaultMaterialSKU  = "MP-GEN"
	defaultMaterialName = "Harina (Genérica)"
	defaultSupplierName = "Proveedor general"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureCostingConfig(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureSupplier(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureMaterial(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureCostingConfig(tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM costing_config WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check costing config existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO costing_config (id, method, pct)
		VALUES (1, 'PCT_DIRECT', '0')
	`); err != nil {
		return fmt.Errorf("insert costing config singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureSupplier(tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM suppliers WHERE name = ? LIMIT 1)`, defaultSupplierName).Scan(&exists); err != nil {
		return fmt.Errorf("check default supplier existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`INSERT INTO suppliers (name) VALUES (?)`, defaultSupplierName); err != nil {
		return fmt.Errorf("insert default supplier: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureMaterial(tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM products WHERE sku = ? LIMIT 1)`, defaultMaterialSKU).Scan(&exists); err != nil {
		return fmt.Errorf("check default material existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO products (sku, name, kind, standard_cost, active)
		VALUES (?, ?, 'RAW', '0', TRUE)
	`, defaultMaterialSKU, defaultMaterialName); err != nil {
		return fmt.Errorf("insert default material: %w", err)
	}
	stats.Inserts++
	return nil
}
