package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smartspend/internal/core"
)

const subscriptionColumns = `id, user_id, name, amount_cents, category_id,
	frequency, billing_day, next_billing_date, icon, color, is_active, notes,
	created_at, updated_at`

func (r *SQLiteRepository) CreateSubscription(ctx context.Context, s core.Subscription) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.Name, s.Amount.Cents, s.CategoryID,
		string(s.Frequency), s.BillingDay, fmtTime(s.NextBillingDate),
		s.Icon, s.Color, boolToInt(s.IsActive), s.Notes,
		fmtTime(s.CreatedAt), fmtTime(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetSubscription(ctx context.Context, userID, id string) (core.Subscription, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = ? AND user_id = ?`, id, userID)
	return scanSubscription(row)
}

// ListSubscriptions returns the user's subscriptions ordered by next billing
// date. active narrows to active (true) or paused (false) when non-nil.
func (r *SQLiteRepository) ListSubscriptions(ctx context.Context, userID string, active *bool) ([]core.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = ?`
	args := []any{userID}
	if active != nil {
		query += ` AND is_active = ?`
		args = append(args, boolToInt(*active))
	}
	query += ` ORDER BY next_billing_date`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var out []core.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateSubscription(ctx context.Context, s core.Subscription) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions SET name = ?, amount_cents = ?, category_id = ?,
			frequency = ?, billing_day = ?, next_billing_date = ?, icon = ?,
			color = ?, is_active = ?, notes = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		s.Name, s.Amount.Cents, s.CategoryID, string(s.Frequency),
		s.BillingDay, fmtTime(s.NextBillingDate), s.Icon, s.Color,
		boolToInt(s.IsActive), s.Notes, fmtTime(s.UpdatedAt), s.ID, s.UserID)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteSubscription(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return requireRow(res)
}

func scanSubscription(row rowScanner) (core.Subscription, error) {
	var s core.Subscription
	var frequency, nextBilling, createdAt, updatedAt string
	var isActive int
	err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Amount.Cents, &s.CategoryID,
		&frequency, &s.BillingDay, &nextBilling, &s.Icon, &s.Color,
		&isActive, &s.Notes, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Subscription{}, ErrNotFound
	}
	if err != nil {
		return core.Subscription{}, fmt.Errorf("scan subscription: %w", err)
	}
	s.Frequency = core.Period(frequency)
	s.NextBillingDate = parseTime(nextBilling)
	s.IsActive = isActive == 1
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)
	return s, nil
}
