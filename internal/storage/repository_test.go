package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "budget.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func schemaSnapshot(t *testing.T, repo *SQLiteRepository) []string {
	t.Helper()
	var objects []string
	err := repo.db.Select(&objects,
		`SELECT type || ':' || name || ':' || COALESCE(sql, '') FROM sqlite_master ORDER BY type, name`)
	require.NoError(t, err)
	return objects
}

func TestNewSQLiteRepository_SeedsDefaultUser(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	user, found, err := repo.GetUserByUsername(ctx, core.SeedUsername)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, core.SeedUserID, user.ID)
	assert.Equal(t, core.HashPassword(core.SeedPassword), user.PasswordHash)

	n, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.InsertTransaction(ctx, core.Transaction{
		Date: core.NewDate(2024, 1, 15), Category: "Salary", Amount: decimal.NewFromInt(1000), UserID: 1,
	})
	require.NoError(t, err)

	before := schemaSnapshot(t, repo)
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.EnsureSchema(ctx))
	after := schemaSnapshot(t, repo)
	assert.Equal(t, before, after)

	n, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "seed user must not be duplicated")

	txs, err := repo.ListTransactions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "2024-01-15", txs[0].Date.String())
	assert.True(t, txs[0].Amount.Equal(decimal.NewFromInt(1000)))
}

func TestEnsureSchema_ReseedsWhenUsersEmpty(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.db.Exec(`DELETE FROM users`)
	require.NoError(t, err)
	require.NoError(t, repo.EnsureSchema(ctx))

	user, found, err := repo.GetUserByID(ctx, core.SeedUserID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, core.SeedUsername, user.Username)
}

// createLegacyDB writes a database the way the first release did: no migration
// version table, plaintext column names, REAL amounts.
func createLegacyDB(t *testing.T, withOwner bool) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "legacy.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	stmts := []string{
		`CREATE TABLE users(id INTEGER PRIMARY KEY AUTOINCREMENT, username TEXT UNIQUE, password TEXT)`,
		`INSERT INTO users(username, password) VALUES('admin', '` + core.HashPassword("admin") + `')`,
		`CREATE TABLE transactions(id INTEGER PRIMARY KEY AUTOINCREMENT, date TEXT, category TEXT, amount REAL)`,
		`INSERT INTO transactions(date, category, amount) VALUES('2024-01-20', 'Rent', -200.0)`,
		`INSERT INTO transactions(date, category, amount) VALUES('2024-01-15 08:00:00', 'Salary', 1000.0)`,
		`INSERT INTO transactions(date, category, amount) VALUES('2024-02-01', 'Bonus', 500.5)`,
	}
	if withOwner {
		stmts = append(stmts,
			`ALTER TABLE transactions ADD COLUMN user_id INTEGER`,
			`UPDATE transactions SET user_id = 1 WHERE user_id IS NULL`)
	}
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return path
}

func TestNewSQLiteRepository_UpgradesLegacySchema(t *testing.T) {
	for _, withOwner := range []bool{false, true} {
		name := "without user_id"
		if withOwner {
			name = "with user_id"
		}
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			path := createLegacyDB(t, withOwner)

			repo, err := NewSQLiteRepository(path)
			require.NoError(t, err)
			defer repo.Close()

			cols, err := tableColumns(repo.db.DB, "transactions")
			require.NoError(t, err)
			assert.True(t, cols["user_id"])

			user, found, err := repo.GetUserByUsername(ctx, "admin")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, core.HashPassword("admin"), user.PasswordHash)

			txs, err := repo.ListTransactions(ctx, 1)
			require.NoError(t, err)
			require.Len(t, txs, 3)
			assert.Equal(t, "2024-01-15", txs[0].Date.String())
			assert.Equal(t, "2024-01-20", txs[1].Date.String())
			assert.Equal(t, "2024-02-01", txs[2].Date.String())
			assert.Equal(t, "500.5", txs[2].Amount.String())
			for _, tx := range txs {
				assert.Equal(t, int64(1), tx.UserID)
			}

			// A second start must leave the upgraded schema alone.
			before := schemaSnapshot(t, repo)
			require.NoError(t, repo.EnsureSchema(ctx))
			assert.Equal(t, before, schemaSnapshot(t, repo))
		})
	}
}

func TestNewSQLiteRepository_LegacyWithoutUsers(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "oldest.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE transactions(id INTEGER PRIMARY KEY AUTOINCREMENT, date TEXT, category TEXT, amount REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO transactions(date, category, amount) VALUES('2023-12-01', 'Food', -42.0)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()

	txs, err := repo.ListTransactions(ctx, core.SeedUserID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Food", txs[0].Category)

	user, found, err := repo.GetUserByID(ctx, core.SeedUserID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, core.SeedUsername, user.Username)
}

func TestCreateUser_Duplicate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.CreateUser(ctx, "alice", core.HashPassword("pw"))
	require.NoError(t, err)
	assert.Greater(t, id, core.SeedUserID)

	_, err = repo.CreateUser(ctx, "alice", core.HashPassword("other"))
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	n, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestUpdatePasswordHash(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	n, err := repo.UpdatePasswordHash(ctx, core.SeedUserID, core.HashPassword("new"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.UpdatePasswordHash(ctx, 999, core.HashPassword("new"))
	require.NoError(t, err)
	assert.Zero(t, n)

	user, _, err := repo.GetUserByID(ctx, core.SeedUserID)
	require.NoError(t, err)
	assert.Equal(t, core.HashPassword("new"), user.PasswordHash)
}

func TestTransactions_ScopedByUser(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	bob, err := repo.CreateUser(ctx, "bob", core.HashPassword("pw"))
	require.NoError(t, err)

	adminTx, err := repo.InsertTransaction(ctx, core.Transaction{
		Date: core.NewDate(2024, 2, 1), Category: "Bonus", Amount: decimal.NewFromInt(500), UserID: core.SeedUserID,
	})
	require.NoError(t, err)
	_, err = repo.InsertTransaction(ctx, core.Transaction{
		Date: core.NewDate(2024, 1, 15), Category: "Salary", Amount: decimal.NewFromInt(1000), UserID: core.SeedUserID,
	})
	require.NoError(t, err)
	bobTx, err := repo.InsertTransaction(ctx, core.Transaction{
		Date: core.NewDate(2024, 1, 1), Category: "Gift", Amount: decimal.NewFromInt(20), UserID: bob,
	})
	require.NoError(t, err)

	txs, err := repo.ListTransactions(ctx, core.SeedUserID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "Salary", txs[0].Category)
	assert.Equal(t, "Bonus", txs[1].Category)

	// Deleting someone else's transaction affects nothing.
	n, err := repo.DeleteTransaction(ctx, core.SeedUserID, bobTx.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	bobTxs, err := repo.ListTransactions(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobTxs, 1)

	n, err = repo.DeleteTransaction(ctx, core.SeedUserID, adminTx.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteTransaction(ctx, core.SeedUserID, adminTx.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListTransactions_EmptyIsNotNil(t *testing.T) {
	repo := newTestRepo(t)

	txs, err := repo.ListTransactions(context.Background(), 42)
	require.NoError(t, err)
	assert.NotNil(t, txs)
	assert.Empty(t, txs)
}

func TestInsertTransaction_UnknownUser(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.InsertTransaction(context.Background(), core.Transaction{
		Date: core.NewDate(2024, 1, 1), Category: "x", Amount: decimal.NewFromInt(1), UserID: 999,
	})
	assert.ErrorIs(t, err, core.ErrUnknownUser)
}
