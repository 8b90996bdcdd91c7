package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	"budget/internal/core"
	applog "budget/internal/log"

	_ "modernc.org/sqlite"
)

// Foreign keys are off by default in SQLite; transactions must reference an existing user.
const connPragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// logger returns the process logger tagged with the storage component.
func logger() *slog.Logger {
	return slog.Default().With(applog.FieldComponent, applog.ComponentStorage)
}

type SQLiteRepository struct {
	db     *sqlx.DB
	dbPath string
}

// NewSQLiteRepository opens the database at dbPath, creating its directory if
// needed, and converges the schema before returning.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", dbPath+connPragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repo := &SQLiteRepository{
		db:     db,
		dbPath: dbPath,
	}

	if err := repo.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// EnsureSchema applies pending migrations and seeds the default account when
// no users exist. Safe to call on every start.
func (r *SQLiteRepository) EnsureSchema(ctx context.Context) error {
	if err := RunMigrations(r.dbPath); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash)
		 SELECT ?, ?, ? WHERE NOT EXISTS (SELECT 1 FROM users)`,
		core.SeedUserID, core.SeedUsername, core.HashPassword(core.SeedPassword))
	if err != nil {
		return fmt.Errorf("seed default user: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		logger().InfoContext(ctx, "Seeded default user",
			applog.FieldUserID, core.SeedUserID,
			applog.FieldUsername, core.SeedUsername)
	}

	return nil
}

// Ping checks that the store is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
