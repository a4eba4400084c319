package analytics

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"smartspend/internal/core"
)

func tipNow() time.Time {
	// June 10th leaves 20 days in the month.
	return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
}

func findTip(tips []Tip, id string) (Tip, bool) {
	for _, t := range tips {
		if t.ID == id {
			return t, true
		}
	}
	return Tip{}, false
}

func TestDetectCategorySpikes(t *testing.T) {
	ctx := TipContext{
		CurrentByCategory: []core.CategoryTotal{
			{CategoryID: "food", Name: "Food & Dining", Icon: "🍔", Total: core.Money{Cents: 20000}},
			{CategoryID: "fun", Name: "Entertainment", Icon: "🎬", Total: core.Money{Cents: 14000}},
			{CategoryID: "move", Name: "Transportation", Icon: "🚗", Total: core.Money{Cents: 10500}},
		},
		LastMonthCents: map[string]int64{
			"food": 10000, // +100% -> high
			"fun":  10000, // +40%  -> medium
			"move": 10000, // +5%   -> silent
		},
		Now: tipNow(),
	}
	tips := GenerateTips(ctx)

	spike, ok := findTip(tips, "spending-increase-Food & Dining")
	if !ok {
		t.Fatalf("expected food spike tip")
	}
	if spike.Priority != PriorityHigh || spike.Type != TipWarning {
		t.Fatalf("expected high priority warning, got %+v", spike)
	}
	if spike.PotentialSavings != 100 {
		t.Fatalf("potential savings %v, expected 100", spike.PotentialSavings)
	}
	if !strings.Contains(spike.Title, "up 100%") {
		t.Fatalf("unexpected title %q", spike.Title)
	}

	medium, ok := findTip(tips, "spending-increase-Entertainment")
	if !ok || medium.Priority != PriorityMedium {
		t.Fatalf("expected medium priority entertainment tip, got %+v", medium)
	}

	if _, ok := findTip(tips, "spending-increase-Transportation"); ok {
		t.Fatalf("5%% increase must not produce a tip")
	}
}

func TestDetectBudgetPressure(t *testing.T) {
	ctx := TipContext{
		CurrentByCategory: []core.CategoryTotal{
			{CategoryID: "food", Name: "Food & Dining", Total: core.Money{Cents: 37000}},
		},
		Budgets: []core.Budget{
			{ID: "b1", CategoryID: "food", Amount: core.Money{Cents: 40000}, AlertThreshold: 80, IsActive: true},
		},
		Categories: map[string]core.Category{
			"food": {ID: "food", Name: "Food & Dining", Icon: "🍔"},
		},
		Now: tipNow(),
	}
	tips := GenerateTips(ctx)

	tip, ok := findTip(tips, "budget-warning-Food & Dining")
	if !ok {
		t.Fatalf("expected budget tip at 92.5%% usage")
	}
	if tip.Priority != PriorityHigh || tip.Type != TipAlert {
		t.Fatalf("expected high priority alert, got %+v", tip)
	}
	if tip.PotentialSavings != 40 {
		t.Fatalf("potential savings %v, expected 10%% of 400", tip.PotentialSavings)
	}
	if !strings.Contains(tip.Description, "£400 budget") {
		t.Fatalf("unexpected description %q", tip.Description)
	}

	// Same usage late in the month stays silent.
	ctx.Now = time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC)
	if tips := GenerateTips(ctx); len(tips) != 0 {
		t.Fatalf("expected no tips with 5 days left, got %d", len(tips))
	}
}

func TestDetectSubscriptionOverload(t *testing.T) {
	subs := []core.Subscription{
		{Frequency: core.Monthly, Amount: core.Money{Cents: 3000}},
		{Frequency: core.Monthly, Amount: core.Money{Cents: 2500}},
		{Frequency: core.Weekly, Amount: core.Money{Cents: 1200}},
		{Frequency: core.Yearly, Amount: core.Money{Cents: 24000}},
		{Frequency: core.Monthly, Amount: core.Money{Cents: 1500}},
		{Frequency: core.Monthly, Amount: core.Money{Cents: 999}},
	}
	tips := GenerateTips(TipContext{Subscriptions: subs, Now: tipNow()})

	tip, ok := findTip(tips, "subscription-review")
	if !ok {
		t.Fatalf("expected subscription tip for 6 subs over £100/month")
	}
	if tip.Priority != PriorityMedium || tip.Type != TipInsight {
		t.Fatalf("unexpected tip %+v", tip)
	}

	// Five subscriptions are never flagged regardless of cost.
	tips = GenerateTips(TipContext{Subscriptions: subs[:5], Now: tipNow()})
	if _, ok := findTip(tips, "subscription-review"); ok {
		t.Fatalf("5 subscriptions must not trigger the review tip")
	}
}

func TestMonthlySubscriptionCost(t *testing.T) {
	subs := []core.Subscription{
		{Frequency: core.Weekly, Amount: core.Money{Cents: 1200}},
	}
	if got := Round2(MonthlySubscriptionCost(subs)); got != 51.96 {
		t.Fatalf("weekly 12 expected 51.96/month, got %v", got)
	}
	subs = append(subs,
		core.Subscription{Frequency: core.Monthly, Amount: core.Money{Cents: 1000}},
		core.Subscription{Frequency: core.Yearly, Amount: core.Money{Cents: 12000}},
	)
	if got := Round2(MonthlySubscriptionCost(subs)); got != 71.96 {
		t.Fatalf("expected 71.96/month, got %v", got)
	}
}

func TestDetectSmallPurchases(t *testing.T) {
	ctx := TipContext{SmallPurchaseCount: 21, SmallPurchaseCents: 9450, Now: tipNow()}
	tips := GenerateTips(ctx)
	tip, ok := findTip(tips, "small-purchases")
	if !ok {
		t.Fatalf("expected small purchases tip at 21 purchases")
	}
	if tip.PotentialSavings != Round2(94.50*0.3) {
		t.Fatalf("potential savings %v", tip.PotentialSavings)
	}

	ctx.SmallPurchaseCount = 20
	if tips := GenerateTips(ctx); len(tips) != 0 {
		t.Fatalf("20 purchases must not trigger the tip")
	}
}

func TestDetectWeekendSkew(t *testing.T) {
	ctx := TipContext{WeekendCents: 45000, WeekdayCents: 55000, Now: tipNow()}
	tips := GenerateTips(ctx)
	tip, ok := findTip(tips, "weekend-spending")
	if !ok {
		t.Fatalf("expected weekend tip at 45%% share")
	}
	if !strings.Contains(tip.Description, "45%") {
		t.Fatalf("unexpected description %q", tip.Description)
	}

	ctx = TipContext{WeekendCents: 40000, WeekdayCents: 60000, Now: tipNow()}
	if tips := GenerateTips(ctx); len(tips) != 0 {
		t.Fatalf("40%% share must not trigger the tip")
	}
}

func TestDetectProgress(t *testing.T) {
	ctx := TipContext{
		CurrentByCategory: []core.CategoryTotal{
			{CategoryID: "food", Total: core.Money{Cents: 40000}},
		},
		LastMonthCents: map[string]int64{"food": 50000},
		Now:            tipNow(),
	}
	tips := GenerateTips(ctx)
	tip, ok := findTip(tips, "great-progress")
	if !ok {
		t.Fatalf("expected progress tip at 80%% of last month")
	}
	if tip.Type != TipSuccess || tip.PotentialSavings != 100 {
		t.Fatalf("unexpected tip %+v", tip)
	}
	if !strings.Contains(tip.Description, "20% less") {
		t.Fatalf("unexpected description %q", tip.Description)
	}

	// 90% of last month is not yet progress.
	ctx.CurrentByCategory[0].Total = core.Money{Cents: 45000}
	if tips := GenerateTips(ctx); len(tips) != 0 {
		t.Fatalf("spending at exactly 90%% must not trigger the tip")
	}
}

func TestTipsPrioritySortAndDeterminism(t *testing.T) {
	ctx := TipContext{
		CurrentByCategory: []core.CategoryTotal{
			{CategoryID: "food", Name: "Food & Dining", Icon: "🍔", Total: core.Money{Cents: 37000}},
		},
		LastMonthCents: map[string]int64{"food": 25000}, // +48% -> medium warning
		Budgets: []core.Budget{
			{ID: "b1", CategoryID: "food", Amount: core.Money{Cents: 40000}, AlertThreshold: 80, IsActive: true},
		},
		Categories: map[string]core.Category{
			"food": {ID: "food", Name: "Food & Dining", Icon: "🍔"},
		},
		SmallPurchaseCount: 25,
		SmallPurchaseCents: 12000,
		Now:                tipNow(),
	}

	first := GenerateTips(ctx)
	if len(first) != 3 {
		t.Fatalf("expected 3 tips, got %d", len(first))
	}
	if first[0].Priority != PriorityHigh || first[1].Priority != PriorityMedium || first[2].Priority != PriorityLow {
		t.Fatalf("tips not sorted by priority: %s %s %s",
			first[0].Priority, first[1].Priority, first[2].Priority)
	}

	for i := 0; i < 5; i++ {
		again := GenerateTips(ctx)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differed from first run", i)
		}
	}
}

func TestBuildTipReport(t *testing.T) {
	tips := []Tip{
		{Priority: PriorityHigh, PotentialSavings: 40},
		{Priority: PriorityMedium, PotentialSavings: 25.5},
		{Priority: PriorityLow, PotentialSavings: 10},
	}
	report := BuildTipReport(tips)
	if report.Summary.TotalTips != 3 || report.Summary.HighPriority != 1 {
		t.Fatalf("unexpected summary %+v", report.Summary)
	}
	if report.Summary.PotentialMonthlySavings != 75.5 {
		t.Fatalf("monthly savings %v, expected 75.5", report.Summary.PotentialMonthlySavings)
	}
	if report.Summary.PotentialYearlySavings != 906 {
		t.Fatalf("yearly savings %v, expected 906", report.Summary.PotentialYearlySavings)
	}
}
