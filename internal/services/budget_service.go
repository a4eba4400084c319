package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"smartspend/internal/analytics"
	"smartspend/internal/core"
	"smartspend/internal/storage"
)

var ErrBudgetExists = errors.New("budget already exists for this category")

// BudgetService manages budgets and evaluates them against period spending.
type BudgetService struct {
	storage *storage.SQLiteRepository
}

func NewBudgetService(storage *storage.SQLiteRepository) *BudgetService {
	return &BudgetService{storage: storage}
}

func (s *BudgetService) Create(ctx context.Context, b core.Budget) (core.Budget, error) {
	if b.Period == "" {
		b.Period = core.Monthly
	}
	if b.AlertThreshold == 0 {
		b.AlertThreshold = 80
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if _, err := s.storage.GetCategory(ctx, b.UserID, b.CategoryID); err != nil {
		return core.Budget{}, err
	}

	now := time.Now()
	b.ID = uuid.NewString()
	b.IsActive = true
	if b.StartDate.IsZero() {
		b.StartDate = now
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	if err := s.storage.CreateBudget(ctx, b); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return core.Budget{}, ErrBudgetExists
		}
		return core.Budget{}, err
	}
	return b, nil
}

func (s *BudgetService) Get(ctx context.Context, userID, id string) (core.Budget, error) {
	return s.storage.GetBudget(ctx, userID, id)
}

// List returns the user's budgets decorated with current-period spending.
func (s *BudgetService) List(ctx context.Context, userID string, now time.Time) ([]analytics.BudgetStanding, error) {
	budgets, err := s.storage.ListBudgets(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	categories, err := s.storage.CategoriesByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]analytics.BudgetStanding, 0, len(budgets))
	for _, b := range budgets {
		start, end := analytics.PeriodRange(b.Period, now)
		spent, err := s.storage.SumExpensesForCategory(ctx, userID, b.CategoryID, start, end)
		if err != nil {
			return nil, err
		}
		out = append(out, analytics.Standing(b, categories[b.CategoryID], spent))
	}
	return out, nil
}

func (s *BudgetService) Update(ctx context.Context, b core.Budget) (core.Budget, error) {
	existing, err := s.storage.GetBudget(ctx, b.UserID, b.ID)
	if err != nil {
		return core.Budget{}, err
	}
	// The category binding is fixed for the budget's lifetime.
	b.CategoryID = existing.CategoryID
	b.StartDate = existing.StartDate
	b.CreatedAt = existing.CreatedAt
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	b.UpdatedAt = time.Now()
	if err := s.storage.UpdateBudget(ctx, b); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (s *BudgetService) Delete(ctx context.Context, userID, id string) error {
	return s.storage.DeleteBudget(ctx, userID, id)
}

// CheckAlerts evaluates every active budget against its current period and
// returns the alerts whose thresholds are crossed.
func (s *BudgetService) CheckAlerts(ctx context.Context, userID string, now time.Time) ([]analytics.BudgetAlert, error) {
	budgets, err := s.storage.ListBudgets(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	categories, err := s.storage.CategoriesByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	alerts := []analytics.BudgetAlert{}
	for _, b := range budgets {
		start, end := analytics.PeriodRange(b.Period, now)
		spent, err := s.storage.SumExpensesForCategory(ctx, userID, b.CategoryID, start, end)
		if err != nil {
			return nil, err
		}
		if alert, ok := analytics.CheckBudget(b, categories[b.CategoryID], spent); ok {
			alerts = append(alerts, alert)
		}
	}
	return alerts, nil
}

// PeriodKey identifies a budget period for alert deduplication, e.g. 2025-06
// for a monthly budget, 2025-W23 for a weekly one, 2025 for a yearly one.
func PeriodKey(p core.Period, now time.Time) string {
	switch p {
	case core.Weekly:
		year, week := now.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case core.Yearly:
		return now.Format("2006")
	default:
		return now.Format("2006-01")
	}
}
