package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smartspend/internal/core"
)

const categoryColumns = `id, user_id, name, icon, color, type, is_default, created_at`

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, c.Icon, c.Color, string(c.Type),
		boolToInt(c.IsDefault), fmtTime(c.CreatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("create category: %w", ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, userID, id string) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	return scanCategory(row)
}

// ListCategories returns the user's categories ordered by name. A non-empty
// typeFilter narrows to that type plus `both`.
func (r *SQLiteRepository) ListCategories(ctx context.Context, userID string, typeFilter core.CategoryType) ([]core.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = ?`
	args := []any{userID}
	if typeFilter != "" {
		query += ` AND (type = ? OR type = 'both')`
		args = append(args, string(typeFilter))
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CategoriesByID loads the user's categories keyed by ID.
func (r *SQLiteRepository) CategoriesByID(ctx context.Context, userID string) (map[string]core.Category, error) {
	cats, err := r.ListCategories(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	out := make(map[string]core.Category, len(cats))
	for _, c := range cats {
		out[c.ID] = c
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, icon = ?, color = ?, type = ?
		WHERE id = ? AND user_id = ?`,
		c.Name, c.Icon, c.Color, string(c.Type), c.ID, c.UserID)
	if isUniqueViolation(err) {
		return fmt.Errorf("update category: %w", ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res)
}

// CountTransactionsForCategory backs the delete guard on referenced categories.
func (r *SQLiteRepository) CountTransactionsForCategory(ctx context.Context, userID, categoryID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE user_id = ? AND category_id = ?`,
		userID, categoryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transactions for category: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (core.Category, error) {
	var c core.Category
	var typ, createdAt string
	var isDefault int
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Icon, &c.Color, &typ, &isDefault, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("scan category: %w", err)
	}
	c.Type = core.CategoryType(typ)
	c.IsDefault = isDefault == 1
	c.CreatedAt = parseTime(createdAt)
	return c, nil
}
