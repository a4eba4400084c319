// Package analytics implements the aggregation engine: period aggregation,
// budget evaluation, spend prediction, trend analysis, tip generation,
// savings-goal planning, and financial health scoring.
//
// Every function is pure: callers load the records and inject the clock.
// Sums are accumulated in int64 cents so results do not depend on input
// order; conversion to float64 units happens at the output boundary.
package analytics

import (
	"math"
	"time"

	"smartspend/internal/core"
)

// PeriodTotal is the result of aggregating transactions over a window.
type PeriodTotal struct {
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// PeriodRange returns the inclusive window containing now for the period.
// Weekly runs from the most recent Sunday 00:00:00 through Saturday
// 23:59:59.999, monthly and yearly are calendar-aligned. Boundaries use
// now's location.
func PeriodRange(p core.Period, now time.Time) (time.Time, time.Time) {
	var start time.Time
	switch p {
	case core.Weekly:
		offset := int(now.Weekday())
		start = time.Date(now.Year(), now.Month(), now.Day()-offset, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 0, 7).Add(-time.Millisecond)
	case core.Yearly:
		start = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(1, 0, 0).Add(-time.Millisecond)
	default: // monthly
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0).Add(-time.Millisecond)
	}
}

// MonthRange returns the inclusive window of the calendar month containing now.
func MonthRange(now time.Time) (time.Time, time.Time) {
	return PeriodRange(core.Monthly, now)
}

// InRange reports whether t falls inside the inclusive [start, end] window.
func InRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// Total aggregates transactions of the given type inside the window.
func Total(txs []core.Transaction, typ core.TransactionType, start, end time.Time) PeriodTotal {
	var cents int64
	var count int
	for _, tx := range txs {
		if tx.Type != typ || !InRange(tx.Date, start, end) {
			continue
		}
		cents += tx.Amount.Cents
		count++
	}
	return PeriodTotal{Total: centsToUnits(cents), Count: count}
}

// DaysInMonth returns the number of days of the calendar month containing t.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// Round2 rounds to 2 decimal places, the precision used in API responses.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Round1 rounds to 1 decimal place.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func centsToUnits(c int64) float64 {
	return float64(c) / 100.0
}

// parseDay parses a YYYY-MM-DD day key as produced by the storage layer.
func parseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
