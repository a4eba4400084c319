package storage

import (
	"context"
	"fmt"
	"time"

	"smartspend/internal/core"
)

// TypeTotal is a per-transaction-type sum over a window.
type TypeTotal struct {
	Type  core.TransactionType
	Cents int64
	Count int
}

// MonthFlow is a per-calendar-month sum, used by trend and goal queries.
type MonthFlow struct {
	Year  int
	Month int
	Cents int64
	Count int
}

// SumByType groups the window's transactions by type.
func (r *SQLiteRepository) SumByType(ctx context.Context, userID string, start, end time.Time) ([]TypeTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT type, COALESCE(SUM(amount_cents), 0), COUNT(*)
		FROM transactions
		WHERE user_id = ? AND date >= ? AND date <= ?
		GROUP BY type`,
		userID, fmtTime(start), fmtTime(end))
	if err != nil {
		return nil, fmt.Errorf("sum by type: %w", err)
	}
	defer rows.Close()

	var out []TypeTotal
	for rows.Next() {
		var t TypeTotal
		var typ string
		if err := rows.Scan(&typ, &t.Cents, &t.Count); err != nil {
			return nil, fmt.Errorf("scan type total: %w", err)
		}
		t.Type = core.TransactionType(typ)
		out = append(out, t)
	}
	return out, rows.Err()
}

// SumExpensesByCategory aggregates the window's expenses per category with
// the category's display fields, largest first.
func (r *SQLiteRepository) SumExpensesByCategory(ctx context.Context, userID string, start, end time.Time) ([]core.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.category_id, c.name, c.icon, c.color,
			COALESCE(SUM(t.amount_cents), 0), COUNT(*)
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ? AND t.type = 'expense' AND t.date >= ? AND t.date <= ?
		GROUP BY t.category_id
		ORDER BY SUM(t.amount_cents) DESC`,
		userID, fmtTime(start), fmtTime(end))
	if err != nil {
		return nil, fmt.Errorf("sum expenses by category: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryTotal
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.CategoryID, &ct.Name, &ct.Icon, &ct.Color, &ct.Total.Cents, &ct.Count); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

// SumExpensesForCategory totals one category's expenses inside the window.
func (r *SQLiteRepository) SumExpensesForCategory(ctx context.Context, userID, categoryID string, start, end time.Time) (int64, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM transactions
		WHERE user_id = ? AND category_id = ? AND type = 'expense'
			AND date >= ? AND date <= ?`,
		userID, categoryID, fmtTime(start), fmtTime(end)).Scan(&cents)
	if err != nil {
		return 0, fmt.Errorf("sum expenses for category: %w", err)
	}
	return cents, nil
}

// DailyExpenses sums the window's expenses per calendar day, ascending.
func (r *SQLiteRepository) DailyExpenses(ctx context.Context, userID string, start, end time.Time) ([]core.DayTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT substr(date, 1, 10), COALESCE(SUM(amount_cents), 0)
		FROM transactions
		WHERE user_id = ? AND type = 'expense' AND date >= ? AND date <= ?
		GROUP BY substr(date, 1, 10)
		ORDER BY substr(date, 1, 10)`,
		userID, fmtTime(start), fmtTime(end))
	if err != nil {
		return nil, fmt.Errorf("daily expenses: %w", err)
	}
	defer rows.Close()

	var out []core.DayTotal
	for rows.Next() {
		var d core.DayTotal
		if err := rows.Scan(&d.Day, &d.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan day total: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// MonthlyFlow sums transactions of one type per calendar month, ascending.
func (r *SQLiteRepository) MonthlyFlow(ctx context.Context, userID string, typ core.TransactionType, start, end time.Time) ([]MonthFlow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT CAST(substr(date, 1, 4) AS INTEGER),
			CAST(substr(date, 6, 2) AS INTEGER),
			COALESCE(SUM(amount_cents), 0), COUNT(*)
		FROM transactions
		WHERE user_id = ? AND type = ? AND date >= ? AND date <= ?
		GROUP BY substr(date, 1, 7)
		ORDER BY substr(date, 1, 7)`,
		userID, string(typ), fmtTime(start), fmtTime(end))
	if err != nil {
		return nil, fmt.Errorf("monthly flow: %w", err)
	}
	defer rows.Close()

	var out []MonthFlow
	for rows.Next() {
		var m MonthFlow
		if err := rows.Scan(&m.Year, &m.Month, &m.Cents, &m.Count); err != nil {
			return nil, fmt.Errorf("scan month flow: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SmallPurchaseStats counts the window's expenses under the threshold.
func (r *SQLiteRepository) SmallPurchaseStats(ctx context.Context, userID string, thresholdCents int64, start, end time.Time) (int, int64, error) {
	var count int
	var cents int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(amount_cents), 0)
		FROM transactions
		WHERE user_id = ? AND type = 'expense' AND amount_cents < ?
			AND date >= ? AND date <= ?`,
		userID, thresholdCents, fmtTime(start), fmtTime(end)).Scan(&count, &cents)
	if err != nil {
		return 0, 0, fmt.Errorf("small purchase stats: %w", err)
	}
	return count, cents, nil
}

// DayOfWeekTotals sums the window's expenses by weekday, Sunday first.
func (r *SQLiteRepository) DayOfWeekTotals(ctx context.Context, userID string, start, end time.Time) ([7]int64, error) {
	var out [7]int64
	rows, err := r.db.QueryContext(ctx, `
		SELECT CAST(strftime('%w', substr(date, 1, 10)) AS INTEGER),
			COALESCE(SUM(amount_cents), 0)
		FROM transactions
		WHERE user_id = ? AND type = 'expense' AND date >= ? AND date <= ?
		GROUP BY 1`,
		userID, fmtTime(start), fmtTime(end))
	if err != nil {
		return out, fmt.Errorf("day of week totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day int
		var cents int64
		if err := rows.Scan(&day, &cents); err != nil {
			return out, fmt.Errorf("scan day of week: %w", err)
		}
		if day >= 0 && day < 7 {
			out[day] = cents
		}
	}
	return out, rows.Err()
}

// WeekendSplit divides the window's expenses into weekend and weekday totals.
func (r *SQLiteRepository) WeekendSplit(ctx context.Context, userID string, start, end time.Time) (weekend, weekday int64, err error) {
	totals, err := r.DayOfWeekTotals(ctx, userID, start, end)
	if err != nil {
		return 0, 0, err
	}
	weekend = totals[0] + totals[6]
	for d := 1; d < 6; d++ {
		weekday += totals[d]
	}
	return weekend, weekday, nil
}

// RecentUserIDs lists users with transactions created since the cutoff,
// used by the worker's periodic alert pass.
func (r *SQLiteRepository) RecentUserIDs(ctx context.Context, since time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT user_id FROM transactions WHERE created_at >= ?`,
		fmtTime(since))
	if err != nil {
		return nil, fmt.Errorf("recent user ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
