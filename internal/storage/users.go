package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budget/internal/core"
	applog "budget/internal/log"
)

type userRow struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
}

func (u userRow) toCore() core.User {
	return core.User{ID: u.ID, Username: u.Username, PasswordHash: u.PasswordHash}
}

// GetUserByUsername looks up a user by exact username. found is false when no
// such user exists.
func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (user core.User, found bool, err error) {
	var row userRow
	err = r.db.GetContext(ctx, &row,
		`SELECT id, username, password_hash FROM users WHERE username = ?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, false, nil
	}
	if err != nil {
		return core.User{}, false, fmt.Errorf("get user by username: %w", err)
	}
	return row.toCore(), true, nil
}

// GetUserByID looks up a user by id. found is false when no such user exists.
func (r *SQLiteRepository) GetUserByID(ctx context.Context, id int64) (user core.User, found bool, err error) {
	var row userRow
	err = r.db.GetContext(ctx, &row,
		`SELECT id, username, password_hash FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, false, nil
	}
	if err != nil {
		return core.User{}, false, fmt.Errorf("get user %d: %w", id, err)
	}
	return row.toCore(), true, nil
}

// ListUsers returns every user ordered by id.
func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT id, username, password_hash FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]core.User, len(rows))
	for i, row := range rows {
		users[i] = row.toCore()
	}
	return users, nil
}

// CreateUser inserts a user and returns its id. A taken username yields
// ErrDuplicateUsername.
func (r *SQLiteRepository) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id,
		`INSERT INTO users (username, password_hash) VALUES (?, ?) RETURNING id`,
		username, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateUsername
		}
		return 0, fmt.Errorf("create user: %w", err)
	}

	logger().InfoContext(ctx, "User saved to SQLite",
		applog.FieldUserID, id,
		applog.FieldUsername, username)
	return id, nil
}

// UpdatePasswordHash overwrites the stored hash and reports the affected row count.
func (r *SQLiteRepository) UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return 0, fmt.Errorf("update password for user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// CountUsers returns the number of stored users.
func (r *SQLiteRepository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
