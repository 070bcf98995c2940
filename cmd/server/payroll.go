package main

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lamasa/erp/internal/costing"
	"github.com/lamasa/erp/internal/payroll"
	"github.com/lamasa/erp/internal/store"
)

type payPeriodPayload struct {
	WeekStart      string           `json:"week_start"`
	Note           string           `json:"note"`
	OvertimeFactor *decimal.Decimal `json:"overtime_factor"`
	DoubleFactor   *decimal.Decimal `json:"double_factor"`
	HolidayFactor  *decimal.Decimal `json:"holiday_factor"`
}

type payPeriodListRow struct {
	ID          int64  `json:"id"`
	WeekStart   string `json:"week_start"`
	Note        string `json:"note"`
	WorkerCount int64  `json:"worker_count"`
}

func (s *server) handlePayPeriodsList(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.QueryContext(r.Context(), `
		SELECT
			pp.id,
			pp.week_start,
			COALESCE(pp.note, ''),
			COUNT(pw.id)
		FROM pay_periods pp
		LEFT JOIN period_workers pw ON pw.period_id = pp.id
		GROUP BY pp.id
		ORDER BY pp.week_start DESC, pp.id DESC
	`)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	defer rows.Close()

	periods := make([]payPeriodListRow, 0)
	for rows.Next() {
		var row payPeriodListRow
		if err := rows.Scan(&row.ID, &row.WeekStart, &row.Note, &row.WorkerCount); err != nil {
			s.writeCoreError(w, err)
			return
		}
		periods = append(periods, row)
	}
	if err := rows.Err(); err != nil {
		s.writeCoreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, periods)
}

func (s *server) handlePayPeriodCreate(w http.ResponseWriter, r *http.Request) {
	var payload payPeriodPayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	weekStart, err := parseDateString(payload.WeekStart)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}

	optional := func(d *decimal.Decimal) any {
		if d == nil {
			return nil
		}
		return *d
	}

	result, err := s.db.ExecContext(r.Context(), `
		INSERT INTO pay_periods (week_start, note, overtime_factor, double_factor, holiday_factor)
		VALUES (?, ?, ?, ?, ?)
	`, weekStart, strings.TrimSpace(payload.Note),
		optional(payload.OvertimeFactor), optional(payload.DoubleFactor), optional(payload.HolidayFactor))
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

type workerDetail struct {
	store.PeriodWorker
	Entries []payroll.DayEntry    `json:"entries"`
	Summary payroll.PeriodSummary `json:"summary"`
}

type payPeriodDetail struct {
	store.PayPeriod
	Workers []workerDetail  `json:"workers"`
	Total   decimal.Decimal `json:"total"`
}

// handlePayPeriodDetail returns the period with every worker's day
// entries and computed pay summary, plus the period-wide total.
func (s *server) handlePayPeriodDetail(w http.ResponseWriter, r *http.Request) {
	periodID, err := urlID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	period, ok, err := s.store.PayPeriodByID(r.Context(), periodID)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, "pay period not found")
		return
	}

	workers, err := s.store.PeriodWorkers(r.Context(), periodID)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}

	detail := payPeriodDetail{PayPeriod: period, Workers: make([]workerDetail, 0, len(workers))}
	for _, worker := range workers {
		entries, err := s.store.DayEntries(r.Context(), worker.ID)
		if err != nil {
			s.writeCoreError(w, err)
			return
		}
		summary := payroll.PeriodTotals(period.Factors(worker.HourlyRate), entries)
		detail.Workers = append(detail.Workers, workerDetail{
			PeriodWorker: worker,
			Entries:      entries,
			Summary:      summary,
		})
		detail.Total = detail.Total.Add(summary.Total)
	}

	s.writeJSON(w, http.StatusOK, detail)
}

func (s *server) handlePayPeriodUpdate(w http.ResponseWriter, r *http.Request) {
	periodID, err := urlID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var payload payPeriodPayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	weekStart, err := parseDateString(payload.WeekStart)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}

	optional := func(d *decimal.Decimal) any {
		if d == nil {
			return nil
		}
		return *d
	}

	result, err := s.db.ExecContext(r.Context(), `
		UPDATE pay_periods
		SET week_start = ?, note = ?, overtime_factor = ?, double_factor = ?, holiday_factor = ?
		WHERE id = ?
	`, weekStart, strings.TrimSpace(payload.Note),
		optional(payload.OvertimeFactor), optional(payload.DoubleFactor), optional(payload.HolidayFactor),
		periodID)
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
		s.writeError(w, http.StatusNotFound, "pay period not found")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *server) handlePayPeriodDelete(w http.ResponseWriter, r *http.Request) {
	periodID, err := urlID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.db.ExecContext(r.Context(), `DELETE FROM pay_periods WHERE id = ?`, periodID)
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
		s.writeError(w, http.StatusNotFound, "pay period not found")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type periodWorkerPayload struct {
	Name       string          `json:"name"`
	Role       string          `json:"role"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	PayStatus  string          `json:"pay_status"`
}

func (p periodWorkerPayload) validate() string {
	if strings.TrimSpace(p.Name) == "" {
		return "name is required"
	}
	if p.HourlyRate.IsNegative() {
		return "hourly_rate cannot be negative"
	}
	if p.PayStatus != "" && p.PayStatus != "PENDING" && p.PayStatus != "PAID" {
		return "pay_status must be PENDING or PAID"
	}
	return ""
}

func (s *server) handlePeriodWorkerAdd(w http.ResponseWriter, r *http.Request) {
	periodID, err := urlID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var payload periodWorkerPayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := payload.validate(); msg != "" {
		s.writeError(w, http.StatusBadRequest, msg)
		return
	}

	if _, ok, err := s.store.PayPeriodByID(r.Context(), periodID); err != nil {
		s.writeCoreError(w, err)
		return
	} else if !ok {
		s.writeError(w, http.StatusNotFound, "pay period not found")
		return
	}

	status := payload.PayStatus
	if status == "" {
		status = "PENDING"
	}

	result, err := s.db.ExecContext(r.Context(), `
		INSERT INTO period_workers (period_id, name, role, hourly_rate, pay_status)
		VALUES (?, ?, ?, ?, ?)
	`, periodID, strings.TrimSpace(payload.Name), strings.TrimSpace(payload.Role), payload.HourlyRate, status)
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

// periodWorkerID resolves the {workerID} URL parameter and confirms the
// worker belongs to the {id} period.
func (s *server) periodWorkerID(r *http.Request) (int64, bool, error) {
	periodID, err := urlID(r, "id")
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", costing.ErrInvalidInput, err)
	}
	workerID, err := urlID(r, "workerID")
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", costing.ErrInvalidInput, err)
	}

	var gotPeriod int64
	err = s.db.QueryRowContext(r.Context(), `
		SELECT period_id FROM period_workers WHERE id = ?
	`, workerID).Scan(&gotPeriod)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && gotPeriod != periodID) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return workerID, true, nil
}

func (s *server) handlePeriodWorkerUpdate(w http.ResponseWriter, r *http.Request) {
	workerID, ok, err := s.periodWorkerID(r)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, "worker not found")
		return
	}

	var payload periodWorkerPayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := payload.validate(); msg != "" {
		s.writeError(w, http.StatusBadRequest, msg)
		return
	}

	status := payload.PayStatus
	if status == "" {
		status = "PENDING"
	}

	if _, err := s.db.ExecContext(r.Context(), `
		UPDATE period_workers
		SET name = ?, role = ?, hourly_rate = ?, pay_status = ?
		WHERE id = ?
	`, strings.TrimSpace(payload.Name), strings.TrimSpace(payload.Role), payload.HourlyRate, status, workerID); err != nil {
		s.writeCoreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *server) handlePeriodWorkerDelete(w http.ResponseWriter, r *http.Request) {
	workerID, ok, err := s.periodWorkerID(r)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, "worker not found")
		return
	}

	if _, err := s.db.ExecContext(r.Context(), `DELETE FROM period_workers WHERE id = ?`, workerID); err != nil {
		s.writeCoreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type workerDaysPayload struct {
	Entries []dayEntryPayload `json:"entries"`
}

type dayEntryPayload struct {
	Date          string          `json:"date"`
	RegularHours  decimal.Decimal `json:"regular_hours"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	DoubleHours   decimal.Decimal `json:"double_hours"`
	HolidayHours  decimal.Decimal `json:"holiday_hours"`
	IsHoliday     bool            `json:"is_holiday"`
}

// handleWorkerDaysPut upserts a batch of day entries for one worker.
// Entries with every hour bucket at zero and no holiday mark are removed
// instead of stored. The response is the worker's recomputed summary.
func (s *server) handleWorkerDaysPut(w http.ResponseWriter, r *http.Request) {
	workerID, ok, err := s.periodWorkerID(r)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, "worker not found")
		return
	}

	var payload workerDaysPayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Validate the whole batch before touching the database, then write it
	// in one transaction. A bad entry rejects the batch entirely.
	entries := make([]payroll.DayEntry, 0, len(payload.Entries))
	for _, entry := range payload.Entries {
		date, err := parseDateString(entry.Date)
		if err != nil {
			s.writeCoreError(w, err)
			return
		}
		if entry.RegularHours.IsNegative() || entry.OvertimeHours.IsNegative() ||
			entry.DoubleHours.IsNegative() || entry.HolidayHours.IsNegative() {
			s.writeError(w, http.StatusBadRequest, "hours cannot be negative")
			return
		}
		entries = append(entries, payroll.DayEntry{
			WorkerID:      workerID,
			Date:          date,
			RegularHours:  entry.RegularHours,
			OvertimeHours: entry.OvertimeHours,
			DoubleHours:   entry.DoubleHours,
			HolidayHours:  entry.HolidayHours,
			IsHoliday:     entry.IsHoliday,
		})
	}

	if err := s.store.UpsertDayEntries(r.Context(), entries); err != nil {
		s.writeCoreError(w, err)
		return
	}

	s.writeWorkerSummary(w, r, workerID)
}

func (s *server) handleWorkerDayDelete(w http.ResponseWriter, r *http.Request) {
	workerID, ok, err := s.periodWorkerID(r)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, "worker not found")
		return
	}
	date, err := parseDateString(chi.URLParam(r, "date"))
	if err != nil {
		s.writeCoreError(w, err)
		return
	}

	existed, err := s.store.DeleteDayEntry(r.Context(), workerID, date)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	if !existed {
		s.writeError(w, http.StatusNotFound, "day entry not found")
		return
	}

	s.writeWorkerSummary(w, r, workerID)
}

// writeWorkerSummary responds with the worker's entries and recomputed pay
// using the owning period's factors.
func (s *server) writeWorkerSummary(w http.ResponseWriter, r *http.Request, workerID int64) {
	periodID, err := urlID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	period, ok, err := s.store.PayPeriodByID(r.Context(), periodID)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, "pay period not found")
		return
	}

	var rate decimal.Decimal
	if err := s.db.QueryRowContext(r.Context(), `
		SELECT hourly_rate FROM period_workers WHERE id = ?
	`, workerID).Scan(&rate); err != nil {
		s.writeCoreError(w, err)
		return
	}

	entries, err := s.store.DayEntries(r.Context(), workerID)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, struct {
		Entries []payroll.DayEntry    `json:"entries"`
		Summary payroll.PeriodSummary `json:"summary"`
	}{
		Entries: entries,
		Summary: payroll.PeriodTotals(period.Factors(rate), entries),
	})
}
