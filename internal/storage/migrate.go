package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	applog "budget/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	// versionTransactionOwner is the migration that adds transactions.user_id.
	versionTransactionOwner uint = 3

	// Migrations wait for other processes' locks like the main connection does.
	// Foreign keys stay off so step 3 can assign legacy rows before the seed exists.
	migratePragmas = "?_pragma=busy_timeout(5000)"

	createUsersMigration = "migrations/000001_create_users.up.sql"
)

// RunMigrations brings the database at dbPath to the latest schema version.
// Every step is additive; running it against an up-to-date database is a no-op.
func RunMigrations(dbPath string) error {
	m, migrateDB, err := newMigrator(dbPath)
	if err != nil {
		return err
	}
	defer migrateDB.Close()
	defer m.Close()

	if _, _, err := m.Version(); errors.Is(err, migrate.ErrNilVersion) {
		baseline, err := adoptUnversionedSchema(migrateDB)
		if err != nil {
			return fmt.Errorf("adopt existing schema: %w", err)
		}
		if baseline > 0 {
			logger().Info("Adopting existing schema",
				applog.FieldOperation, applog.OpMigrate,
				"baseline_version", baseline)
			if err := m.Force(int(baseline)); err != nil {
				return fmt.Errorf("force baseline version %d: %w", baseline, err)
			}
		}
	} else if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// newMigrator opens a separate connection for migrations so they never hold
// the main connection's pool.
func newMigrator(dbPath string) (*migrate.Migrate, *sql.DB, error) {
	migrateDB, err := sql.Open("sqlite", dbPath+migratePragmas)
	if err != nil {
		return nil, nil, fmt.Errorf("open migration database: %w", err)
	}

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		migrateDB.Close()
		return nil, nil, fmt.Errorf("create sqlite driver: %w", err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		migrateDB.Close()
		return nil, nil, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		migrateDB.Close()
		return nil, nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, migrateDB, nil
}

// adoptUnversionedSchema inspects a database without a recorded migration
// version and returns the highest step its tables already satisfy.
//
// Steps 1 and 2 create their tables with IF NOT EXISTS and always apply. Step 3
// adds transactions.user_id and is satisfied once that column is present, but
// skipping it also skips step 1, so a missing users table is created here.
// Databases written by the first release store the hash in users.password; the
// column is renamed so step 1's layout holds.
func adoptUnversionedSchema(db *sql.DB) (uint, error) {
	userCols, err := tableColumns(db, "users")
	if err != nil {
		return 0, err
	}
	if userCols["password"] && !userCols["password_hash"] {
		if _, err := db.Exec(`ALTER TABLE users RENAME COLUMN password TO password_hash`); err != nil {
			return 0, fmt.Errorf("rename users.password: %w", err)
		}
		delete(userCols, "password")
		userCols["password_hash"] = true
	}

	txCols, err := tableColumns(db, "transactions")
	if err != nil {
		return 0, err
	}
	if !txCols["user_id"] {
		return 0, nil
	}

	switch {
	case len(userCols) == 0:
		stmt, err := migrationsFS.ReadFile(createUsersMigration)
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", createUsersMigration, err)
		}
		if _, err := db.Exec(string(stmt)); err != nil {
			return 0, fmt.Errorf("create users table: %w", err)
		}
	case !userCols["username"] || !userCols["password_hash"]:
		return 0, fmt.Errorf("users table lacks username or password_hash columns")
	}
	return versionTransactionOwner, nil
}

// tableColumns returns the column names of table; empty when the table is absent.
func tableColumns(db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("inspect table %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan column of %s: %w", table, err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}
