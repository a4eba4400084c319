package services

import (
	"context"
	"time"

	"smartspend/internal/analytics"
	"smartspend/internal/core"
	"smartspend/internal/storage"
)

// smallPurchaseThresholdCents bounds what counts as a small purchase.
const smallPurchaseThresholdCents = 1000

// InsightsService assembles the aggregates behind predictions, trends,
// tips, savings goals, and the health report. All computation lives in the
// analytics package; this service only loads and shapes the inputs.
type InsightsService struct {
	storage *storage.SQLiteRepository
}

func NewInsightsService(storage *storage.SQLiteRepository) *InsightsService {
	return &InsightsService{storage: storage}
}

// PredictMonthly forecasts the current month's total spending.
func (s *InsightsService) PredictMonthly(ctx context.Context, userID string, now time.Time) (analytics.MonthlyPrediction, error) {
	start, end := analytics.MonthRange(now)

	byType, err := s.storage.SumByType(ctx, userID, start, end)
	if err != nil {
		return analytics.MonthlyPrediction{}, err
	}
	var spentCents, incomeCents int64
	for _, tt := range byType {
		switch tt.Type {
		case core.Expense:
			spentCents = tt.Cents
		case core.Income:
			incomeCents = tt.Cents
		}
	}

	priorMonths, err := s.priorExpenseMonths(ctx, userID, now, 3)
	if err != nil {
		return analytics.MonthlyPrediction{}, err
	}

	active := true
	subs, err := s.storage.ListSubscriptions(ctx, userID, &active)
	if err != nil {
		return analytics.MonthlyPrediction{}, err
	}

	return analytics.PredictMonthly(analytics.PredictionInput{
		SpentCents:    spentCents,
		IncomeCents:   incomeCents,
		PriorMonths:   priorMonths,
		Subscriptions: subs,
		Now:           now,
	}), nil
}

// PredictByCategory projects each category's current-month spend forward.
func (s *InsightsService) PredictByCategory(ctx context.Context, userID string, now time.Time) ([]analytics.CategoryPrediction, error) {
	start, end := analytics.MonthRange(now)
	totals, err := s.storage.SumExpensesByCategory(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return analytics.PredictByCategory(totals, now), nil
}

// Trends reports the month-by-month flow for the trailing window.
func (s *InsightsService) Trends(ctx context.Context, userID string, months int, now time.Time) (analytics.TrendReport, error) {
	if months <= 0 {
		months = analytics.DefaultTrendMonths
	}
	start := time.Date(now.Year(), now.Month()-time.Month(months-1), 1, 0, 0, 0, 0, now.Location())
	_, end := analytics.MonthRange(now)

	expenses, err := s.monthlyFlow(ctx, userID, core.Expense, start, end)
	if err != nil {
		return analytics.TrendReport{}, err
	}
	income, err := s.monthlyFlow(ctx, userID, core.Income, start, end)
	if err != nil {
		return analytics.TrendReport{}, err
	}
	return analytics.AnalyzeTrends(expenses, income, months, now), nil
}

// Tips runs the savings-tip detectors over the current month.
func (s *InsightsService) Tips(ctx context.Context, userID string, now time.Time) (analytics.TipReport, error) {
	start, end := analytics.MonthRange(now)
	lastStart, lastEnd := analytics.MonthRange(start.AddDate(0, 0, -1))

	current, err := s.storage.SumExpensesByCategory(ctx, userID, start, end)
	if err != nil {
		return analytics.TipReport{}, err
	}
	last, err := s.storage.SumExpensesByCategory(ctx, userID, lastStart, lastEnd)
	if err != nil {
		return analytics.TipReport{}, err
	}
	lastCents := make(map[string]int64, len(last))
	for _, ct := range last {
		lastCents[ct.CategoryID] = ct.Total.Cents
	}

	budgets, err := s.storage.ListBudgets(ctx, userID, true)
	if err != nil {
		return analytics.TipReport{}, err
	}
	categories, err := s.storage.CategoriesByID(ctx, userID)
	if err != nil {
		return analytics.TipReport{}, err
	}
	activeOnly := true
	subs, err := s.storage.ListSubscriptions(ctx, userID, &activeOnly)
	if err != nil {
		return analytics.TipReport{}, err
	}
	smallCount, smallCents, err := s.storage.SmallPurchaseStats(ctx, userID, smallPurchaseThresholdCents, start, end)
	if err != nil {
		return analytics.TipReport{}, err
	}
	weekendCents, weekdayCents, err := s.storage.WeekendSplit(ctx, userID, start, end)
	if err != nil {
		return analytics.TipReport{}, err
	}

	tips := analytics.GenerateTips(analytics.TipContext{
		CurrentByCategory:  current,
		LastMonthCents:     lastCents,
		Budgets:            budgets,
		Categories:         categories,
		Subscriptions:      subs,
		SmallPurchaseCount: smallCount,
		SmallPurchaseCents: smallCents,
		WeekendCents:       weekendCents,
		WeekdayCents:       weekdayCents,
		Now:                now,
	})
	return analytics.BuildTipReport(tips), nil
}

// SavingsGoal plans how to save targetAmount over targetMonths based on the
// trailing six months of flow.
func (s *InsightsService) SavingsGoal(ctx context.Context, userID string, targetAmount float64, targetMonths int, now time.Time) (analytics.SavingsGoalPlan, error) {
	start := time.Date(now.Year(), now.Month()-5, 1, 0, 0, 0, 0, now.Location())
	_, end := analytics.MonthRange(now)

	income, err := s.flowMonthTotals(ctx, userID, core.Income, start, end)
	if err != nil {
		return analytics.SavingsGoalPlan{}, err
	}
	expenses, err := s.flowMonthTotals(ctx, userID, core.Expense, start, end)
	if err != nil {
		return analytics.SavingsGoalPlan{}, err
	}
	topCategories, err := s.storage.SumExpensesByCategory(ctx, userID, start, end)
	if err != nil {
		return analytics.SavingsGoalPlan{}, err
	}

	return analytics.PlanSavingsGoal(analytics.GoalInput{
		TargetAmount:  targetAmount,
		TargetMonths:  targetMonths,
		IncomeMonths:  income,
		ExpenseMonths: expenses,
		TopCategories: topCategories,
	}), nil
}

// Health scores the current month's financial health and surfaces spending
// patterns.
func (s *InsightsService) Health(ctx context.Context, userID string, now time.Time) (analytics.HealthReport, error) {
	start, end := analytics.MonthRange(now)

	byType, err := s.storage.SumByType(ctx, userID, start, end)
	if err != nil {
		return analytics.HealthReport{}, err
	}
	var incomeCents, expenseCents int64
	for _, tt := range byType {
		switch tt.Type {
		case core.Income:
			incomeCents = tt.Cents
		case core.Expense:
			expenseCents = tt.Cents
		}
	}

	budgets, err := s.storage.ListBudgets(ctx, userID, true)
	if err != nil {
		return analytics.HealthReport{}, err
	}
	exceeded := 0
	for _, b := range budgets {
		bStart, bEnd := analytics.PeriodRange(b.Period, now)
		spent, err := s.storage.SumExpensesForCategory(ctx, userID, b.CategoryID, bStart, bEnd)
		if err != nil {
			return analytics.HealthReport{}, err
		}
		if spent > b.Amount.Cents {
			exceeded++
		}
	}

	trend, err := s.Trends(ctx, userID, analytics.DefaultTrendMonths, now)
	if err != nil {
		return analytics.HealthReport{}, err
	}

	dayOfWeek, err := s.storage.DayOfWeekTotals(ctx, userID, start, end)
	if err != nil {
		return analytics.HealthReport{}, err
	}
	days, err := s.storage.DailyExpenses(ctx, userID, start, end)
	if err != nil {
		return analytics.HealthReport{}, err
	}

	return analytics.ScoreHealth(analytics.HealthInput{
		IncomeCents:     incomeCents,
		ExpenseCents:    expenseCents,
		BudgetsActive:   len(budgets),
		BudgetsExceeded: exceeded,
		TrendDirection:  trend.Trend.Direction,
		DayOfWeekCents:  dayOfWeek,
		DayTotals:       days,
	}), nil
}

// priorExpenseMonths loads expense totals for up to n calendar months before
// the month containing now, most recent first.
func (s *InsightsService) priorExpenseMonths(ctx context.Context, userID string, now time.Time, n int) ([]core.MonthTotal, error) {
	start := time.Date(now.Year(), now.Month()-time.Month(n), 1, 0, 0, 0, 0, now.Location())
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Add(-time.Millisecond)

	flow, err := s.storage.MonthlyFlow(ctx, userID, core.Expense, start, end)
	if err != nil {
		return nil, err
	}
	out := make([]core.MonthTotal, 0, len(flow))
	for i := len(flow) - 1; i >= 0; i-- {
		out = append(out, core.MonthTotal{
			Year:  flow[i].Year,
			Month: flow[i].Month,
			Total: core.Money{Cents: flow[i].Cents},
		})
	}
	return out, nil
}

func (s *InsightsService) monthlyFlow(ctx context.Context, userID string, typ core.TransactionType, start, end time.Time) ([]analytics.MonthAgg, error) {
	flow, err := s.storage.MonthlyFlow(ctx, userID, typ, start, end)
	if err != nil {
		return nil, err
	}
	out := make([]analytics.MonthAgg, 0, len(flow))
	for _, m := range flow {
		out = append(out, analytics.MonthAgg{Year: m.Year, Month: m.Month, Cents: m.Cents, Count: m.Count})
	}
	return out, nil
}

func (s *InsightsService) flowMonthTotals(ctx context.Context, userID string, typ core.TransactionType, start, end time.Time) ([]core.MonthTotal, error) {
	flow, err := s.storage.MonthlyFlow(ctx, userID, typ, start, end)
	if err != nil {
		return nil, err
	}
	out := make([]core.MonthTotal, 0, len(flow))
	for _, m := range flow {
		out = append(out, core.MonthTotal{Year: m.Year, Month: m.Month, Total: core.Money{Cents: m.Cents}})
	}
	return out, nil
}
