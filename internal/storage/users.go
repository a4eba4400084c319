package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smartspend/internal/core"
)

const userColumns = `id, name, email, password_hash, avatar, currency,
	monthly_income_cents, theme, notify_email, notify_push,
	notify_budget_alerts, notify_weekly_report, created_at`

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Avatar, u.Currency,
		u.MonthlyIncome.Cents, u.Settings.Theme,
		boolToInt(u.Settings.Notifications.Email),
		boolToInt(u.Settings.Notifications.Push),
		boolToInt(u.Settings.Notifications.BudgetAlerts),
		boolToInt(u.Settings.Notifications.WeeklyReport),
		fmtTime(u.CreatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("create user: %w", ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *SQLiteRepository) UpdateUser(ctx context.Context, u core.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET name = ?, email = ?, password_hash = ?, avatar = ?,
			currency = ?, monthly_income_cents = ?, theme = ?,
			notify_email = ?, notify_push = ?, notify_budget_alerts = ?,
			notify_weekly_report = ?
		WHERE id = ?`,
		u.Name, u.Email, u.PasswordHash, u.Avatar, u.Currency,
		u.MonthlyIncome.Cents, u.Settings.Theme,
		boolToInt(u.Settings.Notifications.Email),
		boolToInt(u.Settings.Notifications.Push),
		boolToInt(u.Settings.Notifications.BudgetAlerts),
		boolToInt(u.Settings.Notifications.WeeklyReport),
		u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireRow(res)
}

// DeleteUser removes the account; related records cascade.
func (r *SQLiteRepository) DeleteUser(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (core.User, error) {
	var u core.User
	var createdAt string
	var email, push, budgetAlerts, weeklyReport int
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Avatar,
		&u.Currency, &u.MonthlyIncome.Cents, &u.Settings.Theme,
		&email, &push, &budgetAlerts, &weeklyReport, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.Settings.Notifications = core.NotificationSettings{
		Email:        email == 1,
		Push:         push == 1,
		BudgetAlerts: budgetAlerts == 1,
		WeeklyReport: weeklyReport == 1,
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
