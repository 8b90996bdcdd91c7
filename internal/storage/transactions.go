package storage

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"budget/internal/core"
	applog "budget/internal/log"
)

type transactionRow struct {
	ID       int64           `db:"id"`
	Date     string          `db:"date"`
	Category string          `db:"category"`
	Amount   decimal.Decimal `db:"amount"`
	UserID   int64           `db:"user_id"`
}

func (t transactionRow) toCore() (core.Transaction, error) {
	date, err := core.ParseDate(t.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d has unreadable date %q: %w", t.ID, t.Date, err)
	}
	return core.Transaction{
		ID:       t.ID,
		Date:     date,
		Category: t.Category,
		Amount:   t.Amount,
		UserID:   t.UserID,
	}, nil
}

// InsertTransaction stores tx for tx.UserID and returns it with its assigned id.
// The error wraps core.ErrUnknownUser when tx.UserID names no user.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	var id int64
	err := r.db.GetContext(ctx, &id,
		`INSERT INTO transactions (date, category, amount, user_id) VALUES (?, ?, ?, ?) RETURNING id`,
		tx.Date.String(), tx.Category, tx.Amount.String(), tx.UserID)
	if isForeignKeyViolation(err) {
		return core.Transaction{}, fmt.Errorf("insert transaction for user %d: %w", tx.UserID, core.ErrUnknownUser)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	tx.ID = id

	logger().InfoContext(ctx, "Transaction saved to SQLite",
		applog.FieldTransactionID, tx.ID,
		applog.FieldUserID, tx.UserID,
		applog.FieldDate, tx.Date.String(),
		applog.FieldCategory, tx.Category,
		applog.FieldAmount, tx.Amount.String())

	return tx, nil
}

// ListTransactions returns the user's transactions ordered by date ascending.
// The result is empty, not nil, when the user has none.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	var rows []transactionRow
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT id, date, category, amount, user_id FROM transactions
		 WHERE user_id = ? ORDER BY date, id`, userID); err != nil {
		return nil, fmt.Errorf("list transactions for user %d: %w", userID, err)
	}

	txs := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := row.toCore()
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// DeleteTransaction removes the transaction only if it belongs to userID and
// reports the affected row count.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, txID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, txID, userID)
	if err != nil {
		return 0, fmt.Errorf("delete transaction %d: %w", txID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	if n > 0 {
		logger().InfoContext(ctx, "Transaction deleted from SQLite",
			applog.FieldTransactionID, txID,
			applog.FieldUserID, userID)
	}
	return n, nil
}
