package analytics

import (
	"math/rand"
	"testing"
	"time"

	"smartspend/internal/core"
)

func TestPeriodRange(t *testing.T) {
	loc := time.UTC
	// Wednesday 2025-06-11
	now := time.Date(2025, 6, 11, 15, 30, 0, 0, loc)

	cases := []struct {
		name   string
		period core.Period
		start  time.Time
		end    time.Time
	}{
		{
			name:   "weekly starts most recent Sunday",
			period: core.Weekly,
			start:  time.Date(2025, 6, 8, 0, 0, 0, 0, loc),
			end:    time.Date(2025, 6, 14, 23, 59, 59, 999000000, loc),
		},
		{
			name:   "monthly covers calendar month",
			period: core.Monthly,
			start:  time.Date(2025, 6, 1, 0, 0, 0, 0, loc),
			end:    time.Date(2025, 6, 30, 23, 59, 59, 999000000, loc),
		},
		{
			name:   "yearly covers calendar year",
			period: core.Yearly,
			start:  time.Date(2025, 1, 1, 0, 0, 0, 0, loc),
			end:    time.Date(2025, 12, 31, 23, 59, 59, 999000000, loc),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := PeriodRange(tc.period, now)
			if !start.Equal(tc.start) {
				t.Fatalf("start expected %v, got %v", tc.start, start)
			}
			if !end.Equal(tc.end) {
				t.Fatalf("end expected %v, got %v", tc.end, end)
			}
		})
	}
}

func TestPeriodRangeWeeklyOnSunday(t *testing.T) {
	now := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC) // a Sunday
	start, _ := PeriodRange(core.Weekly, now)
	if !start.Equal(now) {
		t.Fatalf("expected week to start on the same Sunday, got %v", start)
	}
}

func TestTotalOrderInvariant(t *testing.T) {
	loc := time.UTC
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, loc)
	end := time.Date(2025, 6, 30, 23, 59, 59, 999000000, loc)

	txs := make([]core.Transaction, 0, 50)
	for i := 0; i < 50; i++ {
		txs = append(txs, core.Transaction{
			Type:   core.Expense,
			Amount: core.Money{Cents: int64(i+1) * 33},
			Date:   start.AddDate(0, 0, i%28),
		})
	}
	want := Total(txs, core.Expense, start, end)

	shuffled := make([]core.Transaction, len(txs))
	copy(shuffled, txs)
	rand.New(rand.NewSource(1)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	got := Total(shuffled, core.Expense, start, end)

	if got != want {
		t.Fatalf("expected %+v after shuffle, got %+v", want, got)
	}
}

func TestTotalFiltersTypeAndWindow(t *testing.T) {
	loc := time.UTC
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, loc)
	end := time.Date(2025, 6, 30, 23, 59, 59, 999000000, loc)

	txs := []core.Transaction{
		{Type: core.Expense, Amount: core.Money{Cents: 1000}, Date: start},
		{Type: core.Expense, Amount: core.Money{Cents: 2000}, Date: end},
		{Type: core.Income, Amount: core.Money{Cents: 5000}, Date: start.AddDate(0, 0, 5)},
		{Type: core.Expense, Amount: core.Money{Cents: 700}, Date: start.AddDate(0, 0, -1)},
		{Type: core.Expense, Amount: core.Money{Cents: 900}, Date: end.Add(time.Millisecond)},
	}

	got := Total(txs, core.Expense, start, end)
	if got.Total != 30 || got.Count != 2 {
		t.Fatalf("expected total 30 count 2, got %+v", got)
	}

	income := Total(txs, core.Income, start, end)
	if income.Total != 50 || income.Count != 1 {
		t.Fatalf("expected income 50 count 1, got %+v", income)
	}
}

func TestTotalEmptyInput(t *testing.T) {
	start, end := MonthRange(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	got := Total(nil, core.Expense, start, end)
	if got.Total != 0 || got.Count != 0 {
		t.Fatalf("expected zero result, got %+v", got)
	}
}

func TestRounding(t *testing.T) {
	if got := Round2(12.346); got != 12.35 {
		t.Fatalf("Round2 expected 12.35, got %v", got)
	}
	if got := Round1(12.34); got != 12.3 {
		t.Fatalf("Round1 expected 12.3, got %v", got)
	}
}
