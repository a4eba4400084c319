package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"smartspend/internal/cache"
	"smartspend/internal/core"
	"smartspend/internal/storage"
)

var (
	ErrDefaultCategory = errors.New("cannot delete default categories")
	ErrCategoryExists  = errors.New("category already exists")
)

// CategoryInUseError reports a delete attempt on a category that still has
// transactions attached.
type CategoryInUseError struct {
	Count int
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("cannot delete category with %d transactions, reassign them first", e.Count)
}

// CategoryService manages a user's category set. Category lists are read on
// nearly every request to resolve names and icons, so they are cached per
// user and invalidated on writes.
type CategoryService struct {
	storage *storage.SQLiteRepository
	byUser  *cache.LRU[[]core.Category]
}

func NewCategoryService(storage *storage.SQLiteRepository) *CategoryService {
	return &CategoryService{
		storage: storage,
		byUser:  cache.NewLRU[[]core.Category](1000, 5*time.Minute),
	}
}

func (s *CategoryService) Create(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	c.ID = uuid.NewString()
	c.IsDefault = false
	c.CreatedAt = time.Now()
	if c.Icon == "" {
		c.Icon = "📁"
	}
	if c.Color == "" {
		c.Color = "#95a5a6"
	}
	if err := s.storage.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return core.Category{}, ErrCategoryExists
		}
		return core.Category{}, err
	}
	s.byUser.Delete(c.UserID)
	return c, nil
}

func (s *CategoryService) Get(ctx context.Context, userID, id string) (core.Category, error) {
	return s.storage.GetCategory(ctx, userID, id)
}

func (s *CategoryService) List(ctx context.Context, userID string, typeFilter core.CategoryType) ([]core.Category, error) {
	all, ok := s.byUser.Get(userID)
	if !ok {
		var err error
		all, err = s.storage.ListCategories(ctx, userID, "")
		if err != nil {
			return nil, err
		}
		s.byUser.Set(userID, all)
	}
	filtered := make([]core.Category, 0, len(all))
	for _, c := range all {
		if typeFilter == "" || c.Type == typeFilter {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

func (s *CategoryService) Update(ctx context.Context, c core.Category) (core.Category, error) {
	existing, err := s.storage.GetCategory(ctx, c.UserID, c.ID)
	if err != nil {
		return core.Category{}, err
	}
	// Defaults keep their name and type; only the look can change.
	if existing.IsDefault {
		c.Name = existing.Name
		c.Type = existing.Type
	}
	c.IsDefault = existing.IsDefault
	c.CreatedAt = existing.CreatedAt
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.storage.UpdateCategory(ctx, c); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return core.Category{}, ErrCategoryExists
		}
		return core.Category{}, err
	}
	s.byUser.Delete(c.UserID)
	return c, nil
}

// Delete removes a custom category. Default categories and categories that
// still have transactions are protected.
func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	cat, err := s.storage.GetCategory(ctx, userID, id)
	if err != nil {
		return err
	}
	if cat.IsDefault {
		return ErrDefaultCategory
	}
	count, err := s.storage.CountTransactionsForCategory(ctx, userID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return &CategoryInUseError{Count: count}
	}
	if err := s.storage.DeleteCategory(ctx, userID, id); err != nil {
		return err
	}
	s.byUser.Delete(userID)
	return nil
}
