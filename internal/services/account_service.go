package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/storage"
)

// AccountStore is the persistence the account service needs.
type AccountStore interface {
	GetUserByUsername(ctx context.Context, username string) (core.User, bool, error)
	GetUserByID(ctx context.Context, id int64) (core.User, bool, error)
	ListUsers(ctx context.Context) ([]core.User, error)
	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
	UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) (int64, error)
}

// AccountService manages credentials and user records.
// Invalid credentials and taken usernames are expected outcomes reported
// through return values; errors are reserved for storage failures.
type AccountService struct {
	store AccountStore
}

func NewAccountService(store AccountStore) *AccountService {
	return &AccountService{store: store}
}

// Authenticate returns the user's id when plaintext matches the stored hash.
func (s *AccountService) Authenticate(ctx context.Context, username, plaintext string) (int64, bool, error) {
	user, found, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return 0, false, fmt.Errorf("authenticate: %w", err)
	}
	if !found || !core.CheckPassword(user.PasswordHash, plaintext) {
		slog.WarnContext(ctx, "Authentication failed", applog.FieldUsername, username)
		return 0, false, nil
	}

	slog.InfoContext(ctx, "User authenticated",
		applog.FieldUserID, user.ID,
		applog.FieldUsername, username)
	return user.ID, true, nil
}

// GetUsername returns the stored username, or core.UnknownUsername for an unknown id.
func (s *AccountService) GetUsername(ctx context.Context, userID int64) (string, error) {
	user, found, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get username: %w", err)
	}
	if !found {
		return core.UnknownUsername, nil
	}
	return user.Username, nil
}

// LookupUser returns the user with userID and whether it exists.
func (s *AccountService) LookupUser(ctx context.Context, userID int64) (core.User, bool, error) {
	user, found, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return core.User{}, false, fmt.Errorf("lookup user %d: %w", userID, err)
	}
	return user, found, nil
}

// ChangePassword overwrites the user's hash. Unknown ids are a no-op.
func (s *AccountService) ChangePassword(ctx context.Context, userID int64, plaintext string) error {
	n, err := s.store.UpdatePasswordHash(ctx, userID, core.HashPassword(plaintext))
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if n == 0 {
		slog.WarnContext(ctx, "Password change for unknown user ignored", applog.FieldUserID, userID)
		return nil
	}

	slog.InfoContext(ctx, "Password updated", applog.FieldUserID, userID)
	return nil
}

// CreateUser adds a user and reports false when the username is already taken.
func (s *AccountService) CreateUser(ctx context.Context, username, plaintext string) (bool, error) {
	_, err := s.store.CreateUser(ctx, username, core.HashPassword(plaintext))
	if errors.Is(err, storage.ErrDuplicateUsername) {
		slog.WarnContext(ctx, "Username already exists", applog.FieldUsername, username)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create user: %w", err)
	}
	return true, nil
}

// ListUsers returns every account ordered by id.
func (s *AccountService) ListUsers(ctx context.Context) ([]core.User, error) {
	return s.store.ListUsers(ctx)
}
