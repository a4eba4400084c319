package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"smartspend/internal/analytics"
	"smartspend/internal/core"
	"smartspend/internal/storage"
)

// SubscriptionService manages recurring subscriptions and their cost summary.
type SubscriptionService struct {
	storage *storage.SQLiteRepository
}

func NewSubscriptionService(storage *storage.SQLiteRepository) *SubscriptionService {
	return &SubscriptionService{storage: storage}
}

// SubscriptionInput carries the caller-settable fields of a new subscription.
type SubscriptionInput struct {
	Name       string
	Amount     core.Money
	CategoryID string
	Frequency  core.Period
	BillingDay int
	Icon       string
	Color      string
	Notes      string
}

func (s *SubscriptionService) Create(ctx context.Context, userID string, in SubscriptionInput) (core.Subscription, error) {
	now := time.Now()
	sub := core.NewSubscription(userID, in.Name, in.Amount, in.CategoryID, in.Frequency, in.BillingDay, now)
	sub.ID = uuid.NewString()
	sub.Notes = in.Notes
	if in.Icon != "" {
		sub.Icon = in.Icon
	}
	if in.Color != "" {
		sub.Color = in.Color
	}
	sub.CreatedAt = now
	sub.UpdatedAt = now
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}
	if err := s.storage.CreateSubscription(ctx, sub); err != nil {
		return core.Subscription{}, err
	}
	return sub, nil
}

func (s *SubscriptionService) Get(ctx context.Context, userID, id string) (core.Subscription, error) {
	return s.storage.GetSubscription(ctx, userID, id)
}

func (s *SubscriptionService) List(ctx context.Context, userID string, active *bool) ([]core.Subscription, error) {
	return s.storage.ListSubscriptions(ctx, userID, active)
}

func (s *SubscriptionService) Update(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	existing, err := s.storage.GetSubscription(ctx, sub.UserID, sub.ID)
	if err != nil {
		return core.Subscription{}, err
	}
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}
	// A changed billing day re-anchors the next billing date.
	if sub.BillingDay != existing.BillingDay {
		sub.NextBillingDate = core.NextBillingDate(sub.BillingDay, time.Now())
	} else {
		sub.NextBillingDate = existing.NextBillingDate
	}
	sub.CreatedAt = existing.CreatedAt
	sub.UpdatedAt = time.Now()
	if err := s.storage.UpdateSubscription(ctx, sub); err != nil {
		return core.Subscription{}, err
	}
	return sub, nil
}

func (s *SubscriptionService) Delete(ctx context.Context, userID, id string) error {
	return s.storage.DeleteSubscription(ctx, userID, id)
}

// UpcomingBilling is a subscription billing within the next week.
type UpcomingBilling struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Amount          float64 `json:"amount"`
	Icon            string  `json:"icon"`
	NextBillingDate string  `json:"nextBillingDate"`
	DaysUntil       int     `json:"daysUntil"`
}

// SubscriptionSummary totals active subscriptions on monthly and yearly
// bases and lists billings due within seven days.
type SubscriptionSummary struct {
	ActiveCount  int               `json:"activeCount"`
	MonthlyTotal float64           `json:"monthlyTotal"`
	YearlyTotal  float64           `json:"yearlyTotal"`
	Upcoming     []UpcomingBilling `json:"upcoming"`
}

func (s *SubscriptionService) Summarize(ctx context.Context, userID string, now time.Time) (SubscriptionSummary, error) {
	active := true
	subs, err := s.storage.ListSubscriptions(ctx, userID, &active)
	if err != nil {
		return SubscriptionSummary{}, err
	}

	summary := SubscriptionSummary{
		ActiveCount:  len(subs),
		MonthlyTotal: analytics.Round2(analytics.MonthlySubscriptionCost(subs)),
		YearlyTotal:  analytics.Round2(analytics.YearlySubscriptionCost(subs)),
		Upcoming:     []UpcomingBilling{},
	}
	for _, sub := range subs {
		until := sub.NextBillingDate.Sub(now)
		if until < 0 || until > 7*24*time.Hour {
			continue
		}
		summary.Upcoming = append(summary.Upcoming, UpcomingBilling{
			ID:              sub.ID,
			Name:            sub.Name,
			Amount:          sub.Amount.Units(),
			Icon:            sub.Icon,
			NextBillingDate: sub.NextBillingDate.Format("2006-01-02"),
			DaysUntil:       int(math.Ceil(until.Hours() / 24)),
		})
	}
	return summary, nil
}
