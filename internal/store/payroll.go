package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lamasa/erp/internal/payroll"
)

// PayPeriod is one payroll week with its configured tier multipliers.
// Nil factors mean "use the defaults".
type PayPeriod struct {
	ID             int64               `json:"id"`
	WeekStart      string              `json:"week_start"`
	Note           string              `json:"note"`
	OvertimeFactor decimal.NullDecimal `json:"overtime_factor"`
	DoubleFactor   decimal.NullDecimal `json:"double_factor"`
	HolidayFactor  decimal.NullDecimal `json:"holiday_factor"`
}

// Factors builds the RateFactors for one worker of the period, applying the
// period's configured multipliers over the defaults.
func (p PayPeriod) Factors(hourlyRate decimal.Decimal) payroll.RateFactors {
	factors := payroll.RateFactors{HourlyRate: hourlyRate}
	if p.OvertimeFactor.Valid {
		factors.OvertimeFactor = p.OvertimeFactor.Decimal
	}
	if p.DoubleFactor.Valid {
		factors.DoubleFactor = p.DoubleFactor.Decimal
	}
	if p.HolidayFactor.Valid {
		factors.HolidayFactor = p.HolidayFactor.Decimal
	}
	return factors.Normalize()
}

// PeriodWorker is one worker's row inside a pay period.
type PeriodWorker struct {
	ID         int64           `json:"id"`
	PeriodID   int64           `json:"period_id"`
	Name       string          `json:"name"`
	Role       string          `json:"role"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	PayStatus  string          `json:"pay_status"`
}

// PayPeriodByID loads one pay period. The boolean reports existence.
func (s *Store) PayPeriodByID(ctx context.Context, id int64) (PayPeriod, bool, error) {
	var (
		period PayPeriod
		note   sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, week_start, note, overtime_factor, double_factor, holiday_factor
		FROM pay_periods
		WHERE id = ?
	`, id).Scan(&period.ID, &period.WeekStart, &note, &period.OvertimeFactor, &period.DoubleFactor, &period.HolidayFactor)
	if errors.Is(err, sql.ErrNoRows) {
		return PayPeriod{}, false, nil
	}
	if err != nil {
		return PayPeriod{}, false, fmt.Errorf("query pay period %d: %w", id, err)
	}
	period.Note = note.String
	return period, true, nil
}

// PeriodWorkers lists the workers of a pay period ordered by name.
func (s *Store) PeriodWorkers(ctx context.Context, periodID int64) ([]PeriodWorker, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, period_id, name, COALESCE(role, ''), hourly_rate, pay_status
		FROM period_workers
		WHERE period_id = ?
		ORDER BY name, id
	`, periodID)
	if err != nil {
		return nil, fmt.Errorf("query period workers: %w", err)
	}
	defer rows.Close()

	workers := make([]PeriodWorker, 0)
	for rows.Next() {
		var w PeriodWorker
		if err := rows.Scan(&w.ID, &w.PeriodID, &w.Name, &w.Role, &w.HourlyRate, &w.PayStatus); err != nil {
			return nil, fmt.Errorf("scan period worker: %w", err)
		}
		workers = append(workers, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate period workers: %w", err)
	}

	return workers, nil
}

// DayEntries returns a worker's day entries ordered by date.
func (s *Store) DayEntries(ctx context.Context, workerID int64) ([]payroll.DayEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT worker_id, entry_date, regular_hours, overtime_hours, double_hours, holiday_hours, is_holiday
		FROM worker_day_entries
		WHERE worker_id = ?
		ORDER BY entry_date
	`, workerID)
	if err != nil {
		return nil, fmt.Errorf("query day entries: %w", err)
	}
	defer rows.Close()

	entries := make([]payroll.DayEntry, 0)
	for rows.Next() {
		var e payroll.DayEntry
		if err := rows.Scan(&e.WorkerID, &e.Date, &e.RegularHours, &e.OvertimeHours, &e.DoubleHours, &e.HolidayHours, &e.IsHoliday); err != nil {
			return nil, fmt.Errorf("scan day entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day entries: %w", err)
	}

	return entries, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func writeDayEntry(ctx context.Context, ex execer, entry payroll.DayEntry) (bool, error) {
	if entry.Empty() {
		_, err := ex.ExecContext(ctx, `
			DELETE FROM worker_day_entries WHERE worker_id = ? AND entry_date = ?
		`, entry.WorkerID, entry.Date)
		if err != nil {
			return false, fmt.Errorf("delete empty day entry: %w", err)
		}
		return false, nil
	}

	_, err := ex.ExecContext(ctx, `
		INSERT INTO worker_day_entries (worker_id, entry_date, regular_hours, overtime_hours, double_hours, holiday_hours, is_holiday)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(worker_id, entry_date) DO UPDATE SET
			regular_hours = excluded.regular_hours,
			overtime_hours = excluded.overtime_hours,
			double_hours = excluded.double_hours,
			holiday_hours = excluded.holiday_hours,
			is_holiday = excluded.is_holiday
	`, entry.WorkerID, entry.Date, entry.RegularHours, entry.OvertimeHours, entry.DoubleHours, entry.HolidayHours, entry.IsHoliday)
	if err != nil {
		return false, fmt.Errorf("upsert day entry: %w", err)
	}
	return true, nil
}

// UpsertDayEntry writes one worker/date hour record. An entry recording
// nothing is deleted instead of stored, keeping computed and stored totals
// consistent. The boolean reports whether a row remains afterwards.
func (s *Store) UpsertDayEntry(ctx context.Context, entry payroll.DayEntry) (bool, error) {
	return writeDayEntry(ctx, s.db, entry)
}

// UpsertDayEntries writes a batch of day entries in one transaction, each
// under the same delete-when-empty rule. Either the whole batch lands or
// none of it does.
func (s *Store) UpsertDayEntries(ctx context.Context, entries []payroll.DayEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin day entries transaction: %w", err)
	}
	defer tx.Rollback()

	for _, entry := range entries {
		if _, err := writeDayEntry(ctx, tx, entry); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit day entries transaction: %w", err)
	}
	return nil
}

// DeleteDayEntry removes one worker/date record. The boolean reports
// whether a row existed.
func (s *Store) DeleteDayEntry(ctx context.Context, workerID int64, date string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM worker_day_entries WHERE worker_id = ? AND entry_date = ?
	`, workerID, date)
	if err != nil {
		return false, fmt.Errorf("delete day entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete day entry rows affected: %w", err)
	}
	return affected > 0, nil
}
