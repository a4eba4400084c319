package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smartspend/internal/core"
)

const budgetColumns = `id, user_id, category_id, amount_cents, period,
	alert_threshold, start_date, is_active, created_at, updated_at`

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (`+budgetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.CategoryID, b.Amount.Cents, string(b.Period),
		b.AlertThreshold, fmtTime(b.StartDate), boolToInt(b.IsActive),
		fmtTime(b.CreatedAt), fmtTime(b.UpdatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("create budget: %w", ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("create budget: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, userID, id string) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	return scanBudget(row)
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID string, activeOnly bool) ([]core.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b core.Budget) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE budgets SET amount_cents = ?, period = ?, alert_threshold = ?,
			is_active = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		b.Amount.Cents, string(b.Period), b.AlertThreshold,
		boolToInt(b.IsActive), fmtTime(b.UpdatedAt), b.ID, b.UserID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireRow(res)
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var b core.Budget
	var period, startDate, createdAt, updatedAt string
	var isActive int
	err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount.Cents, &period,
		&b.AlertThreshold, &startDate, &isActive, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("scan budget: %w", err)
	}
	b.Period = core.Period(period)
	b.StartDate = parseTime(startDate)
	b.IsActive = isActive == 1
	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)
	return b, nil
}
