package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"smartspend/internal/auth"
	"smartspend/internal/core"
	"smartspend/internal/storage"
)

func newTestStorage(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "smartspend.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestAccount(t *testing.T, repo *storage.SQLiteRepository) (*AccountService, core.User) {
	t.Helper()
	accounts := NewAccountService(repo, auth.NewTokenIssuer("services-test-secret", time.Hour))
	user, _, err := accounts.Register(context.Background(), "Test User", "test@example.com", "hunter22")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return accounts, user
}

func expenseCategory(t *testing.T, repo *storage.SQLiteRepository, userID, name string) core.Category {
	t.Helper()
	cats, err := repo.ListCategories(context.Background(), userID, "")
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	for _, c := range cats {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("category %q not seeded", name)
	return core.Category{}
}

func TestRegisterSeedsDefaultCategories(t *testing.T) {
	repo := newTestStorage(t)
	accounts, user := newTestAccount(t, repo)

	cats, err := repo.ListCategories(context.Background(), user.ID, "")
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) != 13 {
		t.Fatalf("expected 13 seeded categories, got %d", len(cats))
	}
	for _, c := range cats {
		if !c.IsDefault {
			t.Errorf("seeded category %q should be default", c.Name)
		}
	}

	if _, _, err := accounts.Register(context.Background(), "Other", "test@example.com", "hunter22"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	repo := newTestStorage(t)
	accounts, user := newTestAccount(t, repo)
	ctx := context.Background()

	got, token, err := accounts.Login(ctx, "Test@Example.com", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != user.ID || token == "" {
		t.Fatalf("unexpected login result: %+v", got)
	}

	if _, _, err := accounts.Login(ctx, "test@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := accounts.Login(ctx, "nobody@example.com", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestTransactionCreateChecksCategory(t *testing.T) {
	repo := newTestStorage(t)
	_, user := newTestAccount(t, repo)
	txs := NewTransactionService(repo, nil)
	ctx := context.Background()

	food := expenseCategory(t, repo, user.ID, "Food & Dining")
	created, err := txs.Create(ctx, core.Transaction{
		UserID:      user.ID,
		Type:        core.Expense,
		Amount:      core.Money{Cents: 1250},
		CategoryID:  food.ID,
		Description: "lunch",
		Date:        time.Now(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated transaction ID")
	}

	_, err = txs.Create(ctx, core.Transaction{
		UserID:      user.ID,
		Type:        core.Expense,
		Amount:      core.Money{Cents: 1250},
		CategoryID:  "no-such-category",
		Description: "lunch",
		Date:        time.Now(),
	})
	if !errors.Is(err, core.ErrEmptyCategory) {
		t.Fatalf("expected category error, got %v", err)
	}

	_, err = txs.Create(ctx, core.Transaction{
		UserID:      user.ID,
		Type:        core.Expense,
		Amount:      core.Money{Cents: 0},
		CategoryID:  food.ID,
		Description: "free lunch",
		Date:        time.Now(),
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestTransactionSummary(t *testing.T) {
	repo := newTestStorage(t)
	_, user := newTestAccount(t, repo)
	txs := NewTransactionService(repo, nil)
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	food := expenseCategory(t, repo, user.ID, "Food & Dining")
	salary := expenseCategory(t, repo, user.ID, "Salary")

	seed := []core.Transaction{
		{UserID: user.ID, Type: core.Income, Amount: core.Money{Cents: 300000}, CategoryID: salary.ID, Description: "salary", Date: now.AddDate(0, 0, -10)},
		{UserID: user.ID, Type: core.Expense, Amount: core.Money{Cents: 4500}, CategoryID: food.ID, Description: "groceries", Date: now.AddDate(0, 0, -3)},
		{UserID: user.ID, Type: core.Expense, Amount: core.Money{Cents: 1500}, CategoryID: food.ID, Description: "lunch", Date: now.AddDate(0, 0, -1)},
	}
	for _, tx := range seed {
		if _, err := txs.Create(ctx, tx); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	summary, err := txs.Summarize(ctx, user.ID, core.Monthly, now)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.Income != 3000 || summary.Expenses != 60 || summary.Balance != 2940 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	if summary.Count != 3 {
		t.Fatalf("expected 3 transactions, got %d", summary.Count)
	}
	if len(summary.ByCategory) != 1 || summary.ByCategory[0].Total != 60 {
		t.Fatalf("unexpected breakdown: %+v", summary.ByCategory)
	}
}

func TestCategoryDeleteGuards(t *testing.T) {
	repo := newTestStorage(t)
	_, user := newTestAccount(t, repo)
	cats := NewCategoryService(repo)
	txs := NewTransactionService(repo, nil)
	ctx := context.Background()

	food := expenseCategory(t, repo, user.ID, "Food & Dining")
	if err := cats.Delete(ctx, user.ID, food.ID); !errors.Is(err, ErrDefaultCategory) {
		t.Fatalf("expected ErrDefaultCategory, got %v", err)
	}

	custom, err := cats.Create(ctx, core.Category{UserID: user.ID, Name: "Pets", Type: core.CategoryExpense})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if _, err := txs.Create(ctx, core.Transaction{
		UserID: user.ID, Type: core.Expense, Amount: core.Money{Cents: 2000},
		CategoryID: custom.ID, Description: "dog food", Date: time.Now(),
	}); err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	err = cats.Delete(ctx, user.ID, custom.ID)
	var inUse *CategoryInUseError
	if !errors.As(err, &inUse) || inUse.Count != 1 {
		t.Fatalf("expected CategoryInUseError with count 1, got %v", err)
	}

	if err := repo.DeleteTransaction(ctx, user.ID, mustOnlyTransaction(t, repo, user.ID)); err != nil {
		t.Fatalf("delete transaction: %v", err)
	}
	if err := cats.Delete(ctx, user.ID, custom.ID); err != nil {
		t.Fatalf("delete empty custom category: %v", err)
	}
}

func mustOnlyTransaction(t *testing.T, repo *storage.SQLiteRepository, userID string) string {
	t.Helper()
	list, _, err := repo.ListTransactions(context.Background(), userID, storage.TransactionFilter{})
	if err != nil || len(list) != 1 {
		t.Fatalf("expected exactly one transaction: %v (%v)", list, err)
	}
	return list[0].ID
}

func TestCategoryCreateDuplicate(t *testing.T) {
	repo := newTestStorage(t)
	_, user := newTestAccount(t, repo)
	cats := NewCategoryService(repo)
	ctx := context.Background()

	if _, err := cats.Create(ctx, core.Category{UserID: user.ID, Name: "Food & Dining", Type: core.CategoryExpense}); !errors.Is(err, ErrCategoryExists) {
		t.Fatalf("expected ErrCategoryExists, got %v", err)
	}
}

func TestBudgetLifecycle(t *testing.T) {
	repo := newTestStorage(t)
	_, user := newTestAccount(t, repo)
	budgets := NewBudgetService(repo)
	txs := NewTransactionService(repo, nil)
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	food := expenseCategory(t, repo, user.ID, "Food & Dining")
	b, err := budgets.Create(ctx, core.Budget{
		UserID:     user.ID,
		CategoryID: food.ID,
		Amount:     core.Money{Cents: 40000},
	})
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}
	if b.Period != core.Monthly || b.AlertThreshold != 80 || !b.IsActive {
		t.Fatalf("defaults not applied: %+v", b)
	}

	if _, err := budgets.Create(ctx, core.Budget{
		UserID:     user.ID,
		CategoryID: food.ID,
		Amount:     core.Money{Cents: 10000},
	}); !errors.Is(err, ErrBudgetExists) {
		t.Fatalf("expected ErrBudgetExists, got %v", err)
	}

	if _, err := txs.Create(ctx, core.Transaction{
		UserID: user.ID, Type: core.Expense, Amount: core.Money{Cents: 32550},
		CategoryID: food.ID, Description: "groceries", Date: now.AddDate(0, 0, -2),
	}); err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	standings, err := budgets.List(ctx, user.ID, now)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(standings) != 1 {
		t.Fatalf("expected 1 standing, got %d", len(standings))
	}
	st := standings[0]
	if st.Spent != 325.50 || st.Percentage != 81.4 || !st.IsNearLimit || st.IsOverBudget {
		t.Fatalf("unexpected standing: %+v", st)
	}

	alerts, err := budgets.CheckAlerts(ctx, user.ID, now)
	if err != nil {
		t.Fatalf("check alerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Type != "warning" || alerts[0].Percentage != 81 {
		t.Fatalf("unexpected alerts: %+v", alerts)
	}
}

func TestPeriodKey(t *testing.T) {
	now := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		period core.Period
		want   string
	}{
		{core.Monthly, "2025-06"},
		{core.Yearly, "2025"},
		{core.Weekly, "2025-W23"},
	}
	for _, tt := range tests {
		if got := PeriodKey(tt.period, now); got != tt.want {
			t.Errorf("PeriodKey(%s) = %q, want %q", tt.period, got, tt.want)
		}
	}
}

func TestSubscriptionSummary(t *testing.T) {
	repo := newTestStorage(t)
	_, user := newTestAccount(t, repo)
	subs := NewSubscriptionService(repo)
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	netflix, err := subs.Create(ctx, user.ID, SubscriptionInput{
		Name: "Netflix", Amount: core.Money{Cents: 1299}, Frequency: core.Monthly, BillingDay: 15,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	insurance, err := subs.Create(ctx, user.ID, SubscriptionInput{
		Name: "Insurance", Amount: core.Money{Cents: 24000}, Frequency: core.Yearly, BillingDay: 1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Pin billing dates relative to the fixed test clock.
	netflix.NextBillingDate = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	if err := repo.UpdateSubscription(ctx, netflix); err != nil {
		t.Fatalf("pin netflix billing: %v", err)
	}
	insurance.NextBillingDate = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	if err := repo.UpdateSubscription(ctx, insurance); err != nil {
		t.Fatalf("pin insurance billing: %v", err)
	}

	summary, err := subs.Summarize(ctx, user.ID, now)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.ActiveCount != 2 {
		t.Fatalf("expected 2 active, got %d", summary.ActiveCount)
	}
	// 12.99 monthly plus 240/12 yearly.
	if summary.MonthlyTotal != 32.99 {
		t.Fatalf("monthly total = %v, want 32.99", summary.MonthlyTotal)
	}
	if summary.YearlyTotal != 395.88 {
		t.Fatalf("yearly total = %v, want 395.88", summary.YearlyTotal)
	}
	if len(summary.Upcoming) != 1 || summary.Upcoming[0].Name != "Netflix" || summary.Upcoming[0].DaysUntil != 5 {
		t.Fatalf("unexpected upcoming: %+v", summary.Upcoming)
	}
}

func TestInsightsSmoke(t *testing.T) {
	repo := newTestStorage(t)
	_, user := newTestAccount(t, repo)
	txs := NewTransactionService(repo, nil)
	insights := NewInsightsService(repo)
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	food := expenseCategory(t, repo, user.ID, "Food & Dining")
	salary := expenseCategory(t, repo, user.ID, "Salary")

	// Three months of history plus the current month.
	for m := 1; m <= 3; m++ {
		date := now.AddDate(0, -m, 0)
		if _, err := txs.Create(ctx, core.Transaction{
			UserID: user.ID, Type: core.Expense, Amount: core.Money{Cents: 50000},
			CategoryID: food.ID, Description: "groceries", Date: date,
		}); err != nil {
			t.Fatalf("seed history: %v", err)
		}
	}
	if _, err := txs.Create(ctx, core.Transaction{
		UserID: user.ID, Type: core.Income, Amount: core.Money{Cents: 300000},
		CategoryID: salary.ID, Description: "salary", Date: now.AddDate(0, 0, -14),
	}); err != nil {
		t.Fatalf("seed income: %v", err)
	}
	if _, err := txs.Create(ctx, core.Transaction{
		UserID: user.ID, Type: core.Expense, Amount: core.Money{Cents: 30000},
		CategoryID: food.ID, Description: "groceries", Date: now.AddDate(0, 0, -5),
	}); err != nil {
		t.Fatalf("seed current: %v", err)
	}

	pred, err := insights.PredictMonthly(ctx, user.ID, now)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if pred.CurrentMonth.Spent != 300 || pred.CurrentMonth.Income != 3000 {
		t.Fatalf("unexpected current month: %+v", pred.CurrentMonth)
	}
	if pred.Prediction.HistoricalBased != 500 {
		t.Fatalf("historical = %v, want 500", pred.Prediction.HistoricalBased)
	}
	if len(pred.Comparison.VsLastMonths) != 3 {
		t.Fatalf("expected 3 comparison months, got %d", len(pred.Comparison.VsLastMonths))
	}
	// Most recent prior month first.
	if pred.Comparison.VsLastMonths[0].Month != 5 {
		t.Fatalf("expected May first, got %+v", pred.Comparison.VsLastMonths[0])
	}
	if pred.SavingsOpportunity == nil {
		t.Fatal("expected savings opportunity with income present")
	}

	byCat, err := insights.PredictByCategory(ctx, user.ID, now)
	if err != nil {
		t.Fatalf("predict by category: %v", err)
	}
	if len(byCat) != 1 || byCat[0].Category.Name != "Food & Dining" || byCat[0].Spent != 300 {
		t.Fatalf("unexpected category predictions: %+v", byCat)
	}

	trends, err := insights.Trends(ctx, user.ID, 6, now)
	if err != nil {
		t.Fatalf("trends: %v", err)
	}
	if len(trends.MonthlyData) != 6 {
		t.Fatalf("expected 6 trend months, got %d", len(trends.MonthlyData))
	}
	if trends.MonthlyData[5].Month != "Jun" || trends.MonthlyData[5].Expenses != 300 {
		t.Fatalf("unexpected current trend month: %+v", trends.MonthlyData[5])
	}

	report, err := insights.Tips(ctx, user.ID, now)
	if err != nil {
		t.Fatalf("tips: %v", err)
	}
	// June spend (300) is under 90% of May's (500), so the progress tip fires.
	foundProgress := false
	for _, tip := range report.Tips {
		if tip.ID == "great-progress" {
			foundProgress = true
		}
	}
	if !foundProgress {
		t.Fatalf("expected great-progress tip, got %+v", report.Tips)
	}

	plan, err := insights.SavingsGoal(ctx, user.ID, 3000, 12, now)
	if err != nil {
		t.Fatalf("savings goal: %v", err)
	}
	if plan.Goal.MonthlyRequired != 250 {
		t.Fatalf("monthly required = %v, want 250", plan.Goal.MonthlyRequired)
	}

	health, err := insights.Health(ctx, user.ID, now)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if health.Score < 0 || health.Score > 100 {
		t.Fatalf("score out of range: %d", health.Score)
	}
}
