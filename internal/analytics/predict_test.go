package analytics

import (
	"testing"
	"time"

	"smartspend/internal/core"
)

func TestPredictMonthlyBlend(t *testing.T) {
	// 300 spent over 10 elapsed days in a 30-day month, one prior month at
	// 750, nothing due from subscriptions.
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	got := PredictMonthly(PredictionInput{
		SpentCents: 30000,
		PriorMonths: []core.MonthTotal{
			{Year: 2025, Month: 5, Total: core.Money{Cents: 75000}},
		},
		Now: now,
	})

	if got.CurrentMonth.DailyAverage != 30 {
		t.Fatalf("daily average %v, expected 30", got.CurrentMonth.DailyAverage)
	}
	if got.Prediction.TrendBased != 900 {
		t.Fatalf("trend based %v, expected 900", got.Prediction.TrendBased)
	}
	if got.Prediction.HistoricalBased != 750 {
		t.Fatalf("historical %v, expected 750", got.Prediction.HistoricalBased)
	}
	if got.Prediction.Estimated != 855 {
		t.Fatalf("estimated %v, expected 855", got.Prediction.Estimated)
	}
	if got.SavingsOpportunity != nil {
		t.Fatalf("no income, expected nil savings opportunity")
	}
	if len(got.Comparison.VsLastMonths) != 1 || got.Comparison.VsLastMonths[0].Total != 750 {
		t.Fatalf("unexpected comparison %+v", got.Comparison)
	}
}

func TestPredictMonthlyMonthEnd(t *testing.T) {
	// With the month fully elapsed and no subscriptions, the trend
	// projection equals what was actually spent.
	now := time.Date(2025, 6, 30, 23, 0, 0, 0, time.UTC)
	got := PredictMonthly(PredictionInput{SpentCents: 123456, Now: now})
	if got.Prediction.TrendBased != 1234.56 {
		t.Fatalf("trend based %v, expected spent 1234.56", got.Prediction.TrendBased)
	}
	if got.CurrentMonth.DaysRemaining != 0 {
		t.Fatalf("days remaining %d, expected 0", got.CurrentMonth.DaysRemaining)
	}
}

func TestPredictMonthlySubscriptions(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	subs := []core.Subscription{
		{IsActive: true, Frequency: core.Monthly, BillingDay: 15, Amount: core.Money{Cents: 1000}},
		{IsActive: true, Frequency: core.Monthly, BillingDay: 5, Amount: core.Money{Cents: 2000}},  // already billed
		{IsActive: false, Frequency: core.Monthly, BillingDay: 20, Amount: core.Money{Cents: 3000}}, // inactive
		{IsActive: true, Frequency: core.Yearly, BillingDay: 25, Amount: core.Money{Cents: 4000}},   // not monthly
	}
	got := PredictMonthly(PredictionInput{Subscriptions: subs, Now: now})
	if got.Prediction.UpcomingSubscriptions != 10 {
		t.Fatalf("upcoming %v, expected 10", got.Prediction.UpcomingSubscriptions)
	}
}

func TestPredictMonthlySavingsOpportunity(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	got := PredictMonthly(PredictionInput{
		SpentCents:  60000,
		IncomeCents: 200000,
		Now:         now,
	})
	if got.SavingsOpportunity == nil {
		t.Fatalf("expected savings opportunity with income present")
	}
	want := Round2(2000 - got.Prediction.Estimated)
	if *got.SavingsOpportunity != want {
		t.Fatalf("savings opportunity %v, expected %v", *got.SavingsOpportunity, want)
	}
}

func TestPredictMonthlyEmpty(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	got := PredictMonthly(PredictionInput{Now: now})
	if got.Prediction.Estimated != 0 {
		t.Fatalf("empty input must predict 0, got %v", got.Prediction.Estimated)
	}
	if got.SavingsOpportunity != nil {
		t.Fatalf("expected nil savings opportunity")
	}
}

func TestPredictByCategory(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC) // 30-day month
	totals := []core.CategoryTotal{
		{CategoryID: "a", Name: "Shopping", Total: core.Money{Cents: 10000}, Count: 4},
		{CategoryID: "b", Name: "Food & Dining", Total: core.Money{Cents: 30000}, Count: 12},
		{CategoryID: "c", Name: "Travel", Total: core.Money{Cents: 10000}, Count: 1},
	}
	got := PredictByCategory(totals, now)
	if len(got) != 3 {
		t.Fatalf("expected 3 predictions, got %d", len(got))
	}
	if got[0].Category.Name != "Food & Dining" {
		t.Fatalf("expected biggest spender first, got %s", got[0].Category.Name)
	}
	// Ties keep input order.
	if got[1].Category.ID != "a" || got[2].Category.ID != "c" {
		t.Fatalf("tie order not stable: %s then %s", got[1].Category.ID, got[2].Category.ID)
	}
	if got[0].DailyAverage != 30 || got[0].PredictedTotal != 900 {
		t.Fatalf("unexpected projection %+v", got[0])
	}
	if got[0].TransactionCount != 12 {
		t.Fatalf("expected count carried through, got %d", got[0].TransactionCount)
	}
}

func TestPredictByCategoryEmpty(t *testing.T) {
	got := PredictByCategory(nil, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d entries", len(got))
	}
}
