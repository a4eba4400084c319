package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"smartspend/internal/amqp"
	"smartspend/internal/analytics"
	"smartspend/internal/core"
	"smartspend/internal/services"
	"smartspend/internal/storage"
)

// AlertExporter mirrors the sheets exporter so tests can run without one.
type AlertExporter interface {
	AppendAlert(ctx context.Context, a storage.Alert, categoryName string) error
}

// Config holds the alert worker's settings.
type Config struct {
	// Interval is how often the periodic pass re-checks recently active
	// users, catching events lost to broker outages.
	Interval time.Duration

	// Backlog is how far back the periodic pass looks for user activity.
	Backlog time.Duration
}

func DefaultConfig() Config {
	return Config{
		Interval: 15 * time.Minute,
		Backlog:  24 * time.Hour,
	}
}

// AlertWorker consumes transaction events and records budget alerts. Each
// event triggers a full evaluation of the user's active budgets; the
// storage layer deduplicates alerts per budget, period, and type, so
// re-processing an event is harmless.
type AlertWorker struct {
	storage  *storage.SQLiteRepository
	client   *amqp.Client
	exporter AlertExporter
	config   Config

	now func() time.Time
}

func NewAlertWorker(storage *storage.SQLiteRepository, client *amqp.Client, exporter AlertExporter, config Config) *AlertWorker {
	if config.Interval <= 0 {
		config.Interval = DefaultConfig().Interval
	}
	if config.Backlog <= 0 {
		config.Backlog = DefaultConfig().Backlog
	}
	return &AlertWorker{
		storage:  storage,
		client:   client,
		exporter: exporter,
		config:   config,
		now:      time.Now,
	}
}

// Run blocks until the context is cancelled, consuming events and running
// the periodic pass concurrently.
func (w *AlertWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if w.client != nil {
		g.Go(func() error {
			return w.client.ConsumeTransactionEvents(ctx, func(ev *amqp.TransactionEvent) error {
				return w.HandleEvent(ctx, ev)
			})
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(w.config.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				w.periodicPass(ctx)
			}
		}
	})

	slog.InfoContext(ctx, "Alert worker started",
		"interval", w.config.Interval,
		"backlog", w.config.Backlog)

	return g.Wait()
}

// HandleEvent re-evaluates the budgets of the user behind one event.
func (w *AlertWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	recorded, err := w.EvaluateUser(ctx, ev.UserID, w.now())
	if err != nil {
		return fmt.Errorf("evaluate user %s: %w", ev.UserID, err)
	}
	if recorded > 0 {
		slog.InfoContext(ctx, "Recorded budget alerts",
			"user_id", ev.UserID,
			"transaction_id", ev.TransactionID,
			"count", recorded)
	}
	return nil
}

// periodicPass evaluates every user with recent activity. Errors are logged
// per user so one bad account does not stall the rest.
func (w *AlertWorker) periodicPass(ctx context.Context) {
	since := w.now().Add(-w.config.Backlog)
	userIDs, err := w.storage.RecentUserIDs(ctx, since)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list recently active users", "error", err)
		return
	}
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return
		}
		if _, err := w.EvaluateUser(ctx, userID, w.now()); err != nil {
			slog.ErrorContext(ctx, "Periodic budget evaluation failed",
				"user_id", userID, "error", err)
		}
	}
}

// EvaluateUser checks every active budget of the user against its current
// period and records the alerts whose thresholds are crossed. It returns
// the number of newly recorded alerts; alerts already recorded for the
// same budget, period, and type are skipped by the storage layer.
func (w *AlertWorker) EvaluateUser(ctx context.Context, userID string, now time.Time) (int, error) {
	budgets, err := w.storage.ListBudgets(ctx, userID, true)
	if err != nil {
		return 0, fmt.Errorf("list budgets: %w", err)
	}
	if len(budgets) == 0 {
		return 0, nil
	}
	categories, err := w.storage.CategoriesByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load categories: %w", err)
	}

	recorded := 0
	for _, b := range budgets {
		start, end := analytics.PeriodRange(b.Period, now)
		spent, err := w.storage.SumExpensesForCategory(ctx, userID, b.CategoryID, start, end)
		if err != nil {
			return recorded, fmt.Errorf("sum category %s: %w", b.CategoryID, err)
		}
		alert, ok := analytics.CheckBudget(b, categories[b.CategoryID], spent)
		if !ok {
			continue
		}

		record := storage.Alert{
			ID:         uuid.NewString(),
			UserID:     userID,
			BudgetID:   b.ID,
			CategoryID: b.CategoryID,
			PeriodKey:  services.PeriodKey(b.Period, now),
			Type:       alert.Type,
			Message:    alert.Message,
			Percentage: alert.Percentage,
			Spent:      core.Money{Cents: spent},
			CreatedAt:  now,
		}
		inserted, err := w.storage.RecordAlert(ctx, record)
		if err != nil {
			return recorded, fmt.Errorf("record alert: %w", err)
		}
		if !inserted {
			continue
		}
		recorded++

		if w.exporter != nil {
			if err := w.exporter.AppendAlert(ctx, record, alert.Category.Name); err != nil {
				// Export is best-effort; the alert is already recorded.
				slog.WarnContext(ctx, "Failed to export alert",
					"user_id", userID, "budget_id", b.ID, "error", err)
			}
		}
	}
	return recorded, nil
}
