package storage

import (
	"context"
	"fmt"
	"time"

	"smartspend/internal/core"
)

// Alert is a recorded budget-alert notification. PeriodKey identifies the
// budget period the alert belongs to (e.g. 2025-06 for a monthly budget),
// so one alert of each type is recorded per budget and period.
type Alert struct {
	ID         string
	UserID     string
	BudgetID   string
	CategoryID string
	PeriodKey  string
	Type       string
	Message    string
	Percentage int
	Spent      core.Money
	CreatedAt  time.Time
}

// RecordAlert inserts an alert, reporting whether it was new. A duplicate
// for the same budget, period, and type is silently skipped.
func (r *SQLiteRepository) RecordAlert(ctx context.Context, a Alert) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO alerts (id, user_id, budget_id, category_id, period_key,
			type, message, percentage, spent_cents, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (budget_id, period_key, type) DO NOTHING`,
		a.ID, a.UserID, a.BudgetID, a.CategoryID, a.PeriodKey,
		a.Type, a.Message, a.Percentage, a.Spent.Cents, fmtTime(a.CreatedAt))
	if err != nil {
		return false, fmt.Errorf("record alert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record alert rows: %w", err)
	}
	return n > 0, nil
}

// ListAlerts returns the user's recorded alerts, newest first.
func (r *SQLiteRepository) ListAlerts(ctx context.Context, userID string, limit int) ([]Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, budget_id, category_id, period_key, type, message,
			percentage, spent_cents, created_at
		FROM alerts WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var out []Alert
	for rows.Next() {
		var a Alert
		var createdAt string
		if err := rows.Scan(&a.ID, &a.UserID, &a.BudgetID, &a.CategoryID,
			&a.PeriodKey, &a.Type, &a.Message, &a.Percentage,
			&a.Spent.Cents, &createdAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.CreatedAt = parseTime(createdAt)
		out = append(out, a)
	}
	return out, rows.Err()
}
