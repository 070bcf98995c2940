// Package payroll computes pay amounts from tiered hour records.
// Every function here is a pure transform; persistence of the underlying
// day entries belongs to the store.
package payroll

import "github.com/shopspring/decimal"

// Default multipliers applied when a pay period does not configure its own.
var (
	DefaultOvertimeFactor = decimal.NewFromFloat(1.5)
	DefaultDoubleFactor   = decimal.NewFromInt(2)
	DefaultHolidayFactor  = decimal.NewFromInt(2)
)

// RateFactors is the pay rate and tier multipliers for one worker in one
// pay period.
type RateFactors struct {
	HourlyRate     decimal.Decimal `json:"hourly_rate"`
	OvertimeFactor decimal.Decimal `json:"overtime_factor"`
	DoubleFactor   decimal.Decimal `json:"double_factor"`
	HolidayFactor  decimal.Decimal `json:"holiday_factor"`
}

// Normalize replaces absent or non-positive factors with the defaults.
// A negative hourly rate is clamped to zero.
func (f RateFactors) Normalize() RateFactors {
	if f.HourlyRate.IsNegative() {
		f.HourlyRate = decimal.Zero
	}
	if !f.OvertimeFactor.IsPositive() {
		f.OvertimeFactor = DefaultOvertimeFactor
	}
	if !f.DoubleFactor.IsPositive() {
		f.DoubleFactor = DefaultDoubleFactor
	}
	if !f.HolidayFactor.IsPositive() {
		f.HolidayFactor = DefaultHolidayFactor
	}
	return f
}

// DayEntry is one worker's hour record for one calendar day.
// IsHoliday is informational; holiday hours are already segregated in
// their own bucket and carry the holiday multiplier regardless.
type DayEntry struct {
	WorkerID      int64           `json:"worker_id"`
	Date          string          `json:"date"`
	RegularHours  decimal.Decimal `json:"regular_hours"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	DoubleHours   decimal.Decimal `json:"double_hours"`
	HolidayHours  decimal.Decimal `json:"holiday_hours"`
	IsHoliday     bool            `json:"is_holiday"`
}

// Empty reports whether the entry records nothing: all hour buckets zero
// and no holiday mark. Empty entries are deleted rather than stored.
func (e DayEntry) Empty() bool {
	return e.RegularHours.IsZero() &&
		e.OvertimeHours.IsZero() &&
		e.DoubleHours.IsZero() &&
		e.HolidayHours.IsZero() &&
		!e.IsHoliday
}

// TierHours holds per-tier hour sums for reporting.
type TierHours struct {
	Regular  decimal.Decimal `json:"regular"`
	Overtime decimal.Decimal `json:"overtime"`
	Double   decimal.Decimal `json:"double"`
	Holiday  decimal.Decimal `json:"holiday"`
}

// DaySummary is one day's computed pay.
type DaySummary struct {
	Date      string          `json:"date"`
	IsHoliday bool            `json:"is_holiday"`
	Total     decimal.Decimal `json:"total"`
}

// PeriodSummary is the roll-up of a worker's day entries for a pay period.
type PeriodSummary struct {
	Days  []DaySummary    `json:"days"`
	Hours TierHours       `json:"hours"`
	Total decimal.Decimal `json:"total"`
}

// DayTotal computes the pay for one day:
//
//	rate * (regular + overtime*fo + double*fd + holiday*fh)
//
// Factors are normalized first, so zero-valued RateFactors still apply the
// standard 1.5/2/2 multipliers.
func DayTotal(rate RateFactors, entry DayEntry) decimal.Decimal {
	rate = rate.Normalize()
	weighted := entry.RegularHours.
		Add(rate.OvertimeFactor.Mul(entry.OvertimeHours)).
		Add(rate.DoubleFactor.Mul(entry.DoubleHours)).
		Add(rate.HolidayFactor.Mul(entry.HolidayHours))
	return rate.HourlyRate.Mul(weighted)
}

// PeriodTotals sums DayTotal across entries and accumulates per-tier hours.
// Entries keep their given order in Days; the totals are order-insensitive.
func PeriodTotals(rate RateFactors, entries []DayEntry) PeriodSummary {
	rate = rate.Normalize()

	summary := PeriodSummary{Days: make([]DaySummary, 0, len(entries))}
	for _, entry := range entries {
		dayTotal := DayTotal(rate, entry)
		summary.Days = append(summary.Days, DaySummary{
			Date:      entry.Date,
			IsHoliday: entry.IsHoliday,
			Total:     dayTotal,
		})
		summary.Hours.Regular = summary.Hours.Regular.Add(entry.RegularHours)
		summary.Hours.Overtime = summary.Hours.Overtime.Add(entry.OvertimeHours)
		summary.Hours.Double = summary.Hours.Double.Add(entry.DoubleHours)
		summary.Hours.Holiday = summary.Hours.Holiday.Add(entry.HolidayHours)
		summary.Total = summary.Total.Add(dayTotal)
	}
	return summary
}
