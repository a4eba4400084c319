package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"smartspend/internal/core"
)

const transactionColumns = `id, user_id, type, amount_cents, category_id,
	description, date, tags, notes, is_recurring, created_at, updated_at`

// TransactionFilter narrows ListTransactions. Zero values mean "no filter";
// Page is 1-based.
type TransactionFilter struct {
	Type       core.TransactionType
	CategoryID string
	Start      time.Time
	End        time.Time
	MinCents   int64
	MaxCents   int64
	Limit      int
	Page       int
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, string(t.Type), t.Amount.Cents, t.CategoryID,
		t.Description, fmtTime(t.Date), joinTags(t.Tags), t.Notes,
		boolToInt(t.IsRecurring), fmtTime(t.CreatedAt), fmtTime(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	return scanTransaction(row)
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET type = ?, amount_cents = ?, category_id = ?,
			description = ?, date = ?, tags = ?, notes = ?, is_recurring = ?,
			updated_at = ?
		WHERE id = ? AND user_id = ?`,
		string(t.Type), t.Amount.Cents, t.CategoryID, t.Description,
		fmtTime(t.Date), joinTags(t.Tags), t.Notes, boolToInt(t.IsRecurring),
		fmtTime(t.UpdatedAt), t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

// ListTransactions returns a filtered page sorted by date descending along
// with the total match count for pagination.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]core.Transaction, int, error) {
	where := ` WHERE user_id = ?`
	args := []any{userID}
	if f.Type != "" {
		where += ` AND type = ?`
		args = append(args, string(f.Type))
	}
	if f.CategoryID != "" {
		where += ` AND category_id = ?`
		args = append(args, f.CategoryID)
	}
	if !f.Start.IsZero() {
		where += ` AND date >= ?`
		args = append(args, fmtTime(f.Start))
	}
	if !f.End.IsZero() {
		where += ` AND date <= ?`
		args = append(args, fmtTime(f.End))
	}
	if f.MinCents > 0 {
		where += ` AND amount_cents >= ?`
		args = append(args, f.MinCents)
	}
	if f.MaxCents > 0 {
		where += ` AND amount_cents <= ?`
		args = append(args, f.MaxCents)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	query := `SELECT ` + transactionColumns + ` FROM transactions` + where +
		` ORDER BY date DESC LIMIT ? OFFSET ?`
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var typ, date, tags, createdAt, updatedAt string
	var isRecurring int
	err := row.Scan(&t.ID, &t.UserID, &typ, &t.Amount.Cents, &t.CategoryID,
		&t.Description, &date, &tags, &t.Notes, &isRecurring, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Type = core.TransactionType(typ)
	t.Date = parseTime(date)
	t.Tags = splitTags(tags)
	t.IsRecurring = isRecurring == 1
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return t, nil
}
