package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"smartspend/internal/amqp"
	"smartspend/internal/analytics"
	"smartspend/internal/core"
	"smartspend/internal/storage"
)

// TransactionService orchestrates transaction writes across SQLite and AMQP.
// Writes land in SQLite first; the change event is published best-effort so
// a broker outage never fails a request.
type TransactionService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewTransactionService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// Create validates and saves a transaction, then publishes a change event.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if _, err := s.storage.GetCategory(ctx, tx.UserID, tx.CategoryID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return core.Transaction{}, core.ErrEmptyCategory
		}
		return core.Transaction{}, fmt.Errorf("check category: %w", err)
	}

	now := time.Now()
	tx.ID = uuid.NewString()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	if err := s.storage.CreateTransaction(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publishEvent(ctx, tx.UserID, tx.ID, amqp.ActionCreated)
	return tx, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, userID, id)
}

func (s *TransactionService) List(ctx context.Context, userID string, f storage.TransactionFilter) ([]core.Transaction, int, error) {
	return s.storage.ListTransactions(ctx, userID, f)
}

// Update replaces the mutable fields of an existing transaction.
func (s *TransactionService) Update(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if _, err := s.storage.GetCategory(ctx, tx.UserID, tx.CategoryID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return core.Transaction{}, core.ErrEmptyCategory
		}
		return core.Transaction{}, fmt.Errorf("check category: %w", err)
	}

	tx.UpdatedAt = time.Now()
	if err := s.storage.UpdateTransaction(ctx, tx); err != nil {
		return core.Transaction{}, err
	}

	s.publishEvent(ctx, tx.UserID, tx.ID, amqp.ActionUpdated)
	return tx, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if err := s.storage.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	s.publishEvent(ctx, userID, id, amqp.ActionDeleted)
	return nil
}

// Summary aggregates a user's current period totals and category breakdown.
type Summary struct {
	Period        core.Period         `json:"period"`
	Income        float64             `json:"income"`
	Expenses      float64             `json:"expenses"`
	Balance       float64             `json:"balance"`
	Count         int                 `json:"transactionCount"`
	ByCategory    []CategoryBreakdown `json:"byCategory"`
	DailySpending []DailyPoint        `json:"dailySpending"`
}

// DailyPoint is one day of expense totals, for charting.
type DailyPoint struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

type CategoryBreakdown struct {
	CategoryID string  `json:"categoryId"`
	Name       string  `json:"name"`
	Icon       string  `json:"icon"`
	Color      string  `json:"color"`
	Total      float64 `json:"total"`
	Count      int     `json:"count"`
}

// Summarize totals the period containing now by type and expense category.
func (s *TransactionService) Summarize(ctx context.Context, userID string, period core.Period, now time.Time) (Summary, error) {
	start, end := analytics.PeriodRange(period, now)

	byType, err := s.storage.SumByType(ctx, userID, start, end)
	if err != nil {
		return Summary{}, err
	}
	out := Summary{Period: period, ByCategory: []CategoryBreakdown{}, DailySpending: []DailyPoint{}}
	for _, tt := range byType {
		switch tt.Type {
		case core.Income:
			out.Income = analytics.Round2(float64(tt.Cents) / 100)
		case core.Expense:
			out.Expenses = analytics.Round2(float64(tt.Cents) / 100)
		}
		out.Count += tt.Count
	}
	out.Balance = analytics.Round2(out.Income - out.Expenses)

	byCat, err := s.storage.SumExpensesByCategory(ctx, userID, start, end)
	if err != nil {
		return Summary{}, err
	}
	for _, ct := range byCat {
		out.ByCategory = append(out.ByCategory, CategoryBreakdown{
			CategoryID: ct.CategoryID,
			Name:       ct.Name,
			Icon:       ct.Icon,
			Color:      ct.Color,
			Total:      analytics.Round2(ct.Total.Units()),
			Count:      ct.Count,
		})
	}

	days, err := s.storage.DailyExpenses(ctx, userID, start, end)
	if err != nil {
		return Summary{}, err
	}
	for _, d := range days {
		out.DailySpending = append(out.DailySpending, DailyPoint{
			Date:  d.Day,
			Total: analytics.Round2(d.Total.Units()),
		})
	}
	return out, nil
}

func (s *TransactionService) publishEvent(ctx context.Context, userID, transactionID, action string) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping transaction event")
		return
	}
	if err := s.amqpClient.PublishTransactionEvent(ctx, userID, transactionID, action); err != nil {
		// The write already succeeded; the periodic worker pass covers
		// missed events.
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"user_id", userID, "transaction_id", transactionID,
			"action", action, "error", err)
	}
}

// Close closes both storage and AMQP connections
func (s *TransactionService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}

	return nil
}
