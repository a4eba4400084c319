package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"smartspend/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "smartspend.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestUser(t *testing.T, repo *SQLiteRepository) core.User {
	t.Helper()
	u := core.User{
		ID:           uuid.NewString(),
		Name:         "Test User",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		Currency:     "GBP",
		Settings:     core.DefaultSettings(),
		CreatedAt:    time.Now(),
	}
	if err := repo.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func newTestCategory(t *testing.T, repo *SQLiteRepository, userID, name string) core.Category {
	t.Helper()
	c := core.Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Icon:      "📁",
		Color:     "#6c5ce7",
		Type:      core.CategoryExpense,
		CreatedAt: time.Now(),
	}
	if err := repo.CreateCategory(context.Background(), c); err != nil {
		t.Fatalf("create category: %v", err)
	}
	return c
}

func addExpense(t *testing.T, repo *SQLiteRepository, userID, categoryID string, cents int64, date time.Time) core.Transaction {
	t.Helper()
	tx := core.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        core.Expense,
		Amount:      core.Money{Cents: cents},
		CategoryID:  categoryID,
		Description: "test expense",
		Date:        date,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := repo.CreateTransaction(context.Background(), tx); err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return tx
}

func TestUserCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo)

	got, err := repo.GetUserByEmail(ctx, u.Email)
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != u.ID || got.Settings.Theme != "light" {
		t.Fatalf("unexpected user %+v", got)
	}

	if err := repo.CreateUser(ctx, u); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for reused email, got %v", err)
	}

	got.Currency = "EUR"
	got.MonthlyIncome = core.Money{Cents: 250000}
	if err := repo.UpdateUser(ctx, got); err != nil {
		t.Fatalf("update user: %v", err)
	}
	got, err = repo.GetUser(ctx, u.ID)
	if err != nil || got.Currency != "EUR" || got.MonthlyIncome.Cents != 250000 {
		t.Fatalf("update not persisted: %+v (%v)", got, err)
	}

	if _, err := repo.GetUser(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoryUniquePerUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo)
	newTestCategory(t, repo, u.ID, "Food & Dining")

	dup := core.Category{
		ID:     uuid.NewString(),
		UserID: u.ID,
		Name:   "Food & Dining",
		Type:   core.CategoryExpense,
	}
	if err := repo.CreateCategory(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Same name under another user is fine.
	other := newTestUser(t, repo)
	newTestCategory(t, repo, other.ID, "Food & Dining")
}

func TestBudgetUniquePerCategory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo)
	cat := newTestCategory(t, repo, u.ID, "Shopping")

	b := core.Budget{
		ID:             uuid.NewString(),
		UserID:         u.ID,
		CategoryID:     cat.ID,
		Amount:         core.Money{Cents: 40000},
		Period:         core.Monthly,
		AlertThreshold: 80,
		StartDate:      time.Now(),
		IsActive:       true,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := repo.CreateBudget(ctx, b); err != nil {
		t.Fatalf("create budget: %v", err)
	}

	b.ID = uuid.NewString()
	if err := repo.CreateBudget(ctx, b); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for same category, got %v", err)
	}
}

func TestListTransactionsFilterAndPaging(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo)
	cat := newTestCategory(t, repo, u.ID, "Shopping")
	other := newTestCategory(t, repo, u.ID, "Travel")

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		addExpense(t, repo, u.ID, cat.ID, int64(1000+i), base.AddDate(0, 0, i))
	}
	addExpense(t, repo, u.ID, other.ID, 9999, base.AddDate(0, 0, 10))

	txs, total, err := repo.ListTransactions(ctx, u.ID, TransactionFilter{CategoryID: cat.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 || len(txs) != 5 {
		t.Fatalf("expected 5 matches, got total=%d len=%d", total, len(txs))
	}
	// Date descending.
	if !txs[0].Date.After(txs[1].Date) {
		t.Fatalf("expected newest first, got %v then %v", txs[0].Date, txs[1].Date)
	}

	txs, total, err = repo.ListTransactions(ctx, u.ID, TransactionFilter{Limit: 2, Page: 2})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if total != 6 || len(txs) != 2 {
		t.Fatalf("expected total 6 with 2 on page, got total=%d len=%d", total, len(txs))
	}

	txs, _, err = repo.ListTransactions(ctx, u.ID, TransactionFilter{
		Start: base.AddDate(0, 0, 9),
		End:   base.AddDate(0, 0, 11),
	})
	if err != nil || len(txs) != 1 {
		t.Fatalf("expected 1 in range, got %d (%v)", len(txs), err)
	}

	txs, _, err = repo.ListTransactions(ctx, u.ID, TransactionFilter{MinCents: 9000})
	if err != nil || len(txs) != 1 || txs[0].Amount.Cents != 9999 {
		t.Fatalf("amount filter failed: %v %v", txs, err)
	}
}

func TestTransactionScopedByUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo)
	cat := newTestCategory(t, repo, u.ID, "Shopping")
	tx := addExpense(t, repo, u.ID, cat.ID, 1500, time.Now())

	intruder := newTestUser(t, repo)
	if _, err := repo.GetTransaction(ctx, intruder.ID, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound across users, got %v", err)
	}
	if err := repo.DeleteTransaction(ctx, intruder.ID, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected delete to miss across users, got %v", err)
	}
}

func TestAggregates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo)
	food := newTestCategory(t, repo, u.ID, "Food & Dining")
	travel := newTestCategory(t, repo, u.ID, "Travel")

	addExpense(t, repo, u.ID, food.ID, 10000, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))
	addExpense(t, repo, u.ID, food.ID, 5000, time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC))
	addExpense(t, repo, u.ID, travel.ID, 20000, time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC))
	addExpense(t, repo, u.ID, food.ID, 777, time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC))

	income := core.Transaction{
		ID: uuid.NewString(), UserID: u.ID, Type: core.Income,
		Amount: core.Money{Cents: 300000}, CategoryID: food.ID,
		Description: "salary", Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.CreateTransaction(ctx, income); err != nil {
		t.Fatalf("create income: %v", err)
	}

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 23, 59, 59, 999000000, time.UTC)

	byType, err := repo.SumByType(ctx, u.ID, start, end)
	if err != nil {
		t.Fatalf("sum by type: %v", err)
	}
	sums := map[core.TransactionType]int64{}
	for _, tt := range byType {
		sums[tt.Type] = tt.Cents
	}
	if sums[core.Expense] != 35000 || sums[core.Income] != 300000 {
		t.Fatalf("unexpected sums %+v", sums)
	}

	byCat, err := repo.SumExpensesByCategory(ctx, u.ID, start, end)
	if err != nil {
		t.Fatalf("sum by category: %v", err)
	}
	if len(byCat) != 2 || byCat[0].Name != "Travel" || byCat[0].Total.Cents != 20000 {
		t.Fatalf("unexpected category totals %+v", byCat)
	}
	if byCat[1].Count != 2 {
		t.Fatalf("expected 2 food transactions, got %d", byCat[1].Count)
	}

	days, err := repo.DailyExpenses(ctx, u.ID, start, end)
	if err != nil {
		t.Fatalf("daily expenses: %v", err)
	}
	if len(days) != 2 || days[0].Day != "2025-06-02" || days[1].Total.Cents != 25000 {
		t.Fatalf("unexpected daily totals %+v", days)
	}

	spent, err := repo.SumExpensesForCategory(ctx, u.ID, food.ID, start, end)
	if err != nil || spent != 15000 {
		t.Fatalf("expected 15000 food cents, got %d (%v)", spent, err)
	}

	flow, err := repo.MonthlyFlow(ctx, u.ID, core.Expense,
		time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), end)
	if err != nil {
		t.Fatalf("monthly flow: %v", err)
	}
	if len(flow) != 2 || flow[0].Month != 5 || flow[0].Cents != 777 || flow[1].Cents != 35000 {
		t.Fatalf("unexpected monthly flow %+v", flow)
	}

	count, cents, err := repo.SmallPurchaseStats(ctx, u.ID, 1000, start, end)
	if err != nil || count != 0 || cents != 0 {
		t.Fatalf("expected no small purchases, got %d/%d (%v)", count, cents, err)
	}
}

func TestAlertDedupe(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo)

	a := Alert{
		ID:         uuid.NewString(),
		UserID:     u.ID,
		BudgetID:   "b1",
		CategoryID: "c1",
		PeriodKey:  "2025-06",
		Type:       "warning",
		Message:    "You've used 85% of your Food & Dining budget",
		Percentage: 85,
		Spent:      core.Money{Cents: 34000},
		CreatedAt:  time.Now(),
	}
	inserted, err := repo.RecordAlert(ctx, a)
	if err != nil || !inserted {
		t.Fatalf("first insert: inserted=%v err=%v", inserted, err)
	}

	a.ID = uuid.NewString()
	inserted, err = repo.RecordAlert(ctx, a)
	if err != nil {
		t.Fatalf("duplicate insert errored: %v", err)
	}
	if inserted {
		t.Fatalf("duplicate alert for same budget/period/type must be skipped")
	}

	a.ID = uuid.NewString()
	a.Type = "exceeded"
	inserted, err = repo.RecordAlert(ctx, a)
	if err != nil || !inserted {
		t.Fatalf("different type should insert: inserted=%v err=%v", inserted, err)
	}

	alerts, err := repo.ListAlerts(ctx, u.ID, 10)
	if err != nil || len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d (%v)", len(alerts), err)
	}
}

func TestSubscriptionsOrderedByBilling(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo)
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	later := core.NewSubscription(u.ID, "Gym", core.Money{Cents: 3000}, "", core.Monthly, 25, now)
	later.ID = uuid.NewString()
	sooner := core.NewSubscription(u.ID, "Netflix", core.Money{Cents: 1299}, "", core.Monthly, 15, now)
	sooner.ID = uuid.NewString()

	if err := repo.CreateSubscription(ctx, later); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.CreateSubscription(ctx, sooner); err != nil {
		t.Fatalf("create: %v", err)
	}

	subs, err := repo.ListSubscriptions(ctx, u.ID, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 2 || subs[0].Name != "Netflix" {
		t.Fatalf("expected Netflix first, got %+v", subs)
	}

	subs[0].IsActive = false
	subs[0].UpdatedAt = now
	if err := repo.UpdateSubscription(ctx, subs[0]); err != nil {
		t.Fatalf("update: %v", err)
	}
	active := true
	got, err := repo.ListSubscriptions(ctx, u.ID, &active)
	if err != nil || len(got) != 1 || got[0].Name != "Gym" {
		t.Fatalf("active filter failed: %+v (%v)", got, err)
	}
}
