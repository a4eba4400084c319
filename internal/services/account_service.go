package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"smartspend/internal/auth"
	"smartspend/internal/core"
	"smartspend/internal/storage"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AccountService handles registration, login, and profile management.
type AccountService struct {
	storage *storage.SQLiteRepository
	tokens  *auth.TokenIssuer
}

func NewAccountService(storage *storage.SQLiteRepository, tokens *auth.TokenIssuer) *AccountService {
	return &AccountService{storage: storage, tokens: tokens}
}

// Register creates an account, seeds the default category set, and returns
// the user together with a fresh access token.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (core.User, string, error) {
	user := core.User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Currency:  "GBP",
		Settings:  core.DefaultSettings(),
		CreatedAt: time.Now(),
	}
	if err := user.Validate(); err != nil {
		return core.User{}, "", err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return core.User{}, "", err
	}
	user.PasswordHash = hash

	if err := s.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return core.User{}, "", ErrEmailTaken
		}
		return core.User{}, "", fmt.Errorf("create user: %w", err)
	}

	// Every account starts with the standard categories. A failed seed is
	// logged but does not fail registration; the account is already usable.
	for _, cat := range core.DefaultCategories() {
		cat.ID = uuid.NewString()
		cat.UserID = user.ID
		cat.CreatedAt = user.CreatedAt
		if err := s.storage.CreateCategory(ctx, cat); err != nil {
			slog.ErrorContext(ctx, "Failed to seed default category",
				"user_id", user.ID, "category", cat.Name, "error", err)
		}
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return core.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Login verifies the credentials and returns the user with a fresh token.
// A missing account and a wrong password are indistinguishable to callers.
func (s *AccountService) Login(ctx context.Context, email, password string) (core.User, string, error) {
	user, err := s.storage.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return core.User{}, "", ErrInvalidCredentials
		}
		return core.User{}, "", fmt.Errorf("load user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return core.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return core.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

func (s *AccountService) GetUser(ctx context.Context, userID string) (core.User, error) {
	return s.storage.GetUser(ctx, userID)
}

// ProfileUpdate holds the changeable profile fields. Nil fields are left
// untouched.
type ProfileUpdate struct {
	Name               *string
	Avatar             *string
	Currency           *string
	MonthlyIncomeCents *int64
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (core.User, error) {
	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return core.User{}, err
	}
	if upd.Name != nil {
		user.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Avatar != nil {
		user.Avatar = *upd.Avatar
	}
	if upd.Currency != nil {
		user.Currency = *upd.Currency
	}
	if upd.MonthlyIncomeCents != nil {
		user.MonthlyIncome = core.Money{Cents: *upd.MonthlyIncomeCents}
	}
	if err := user.Validate(); err != nil {
		return core.User{}, err
	}
	if err := s.storage.UpdateUser(ctx, user); err != nil {
		return core.User{}, err
	}
	return user, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *AccountService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, currentPassword) {
		return ErrInvalidCredentials
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.storage.UpdateUser(ctx, user)
}

func (s *AccountService) UpdateSettings(ctx context.Context, userID string, settings core.Settings) (core.User, error) {
	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return core.User{}, err
	}
	user.Settings = settings
	if err := s.storage.UpdateUser(ctx, user); err != nil {
		return core.User{}, err
	}
	return user, nil
}
