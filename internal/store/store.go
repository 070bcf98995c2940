// Package store implements the costing and payroll collaborator interfaces
// on top of the SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Store wraps the application database. It satisfies costing.Ledger and
// costing.ConfigStore and carries the payroll day-entry persistence.
type Store struct {
	db *sql.DB
}

// New returns a Store reading and writing through db.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for callers that run their own queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// parseDate reads a DATE column, tolerating a trailing time component.
func parseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if len(value) > len(dateLayout) {
		value = value[:len(dateLayout)]
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return parsed, nil
}
