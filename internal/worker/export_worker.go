package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"budget/internal/amqp"
	"budget/internal/cache"
	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/sheets"
)

const (
	// maxParallelExports bounds concurrent report writes during a full export.
	maxParallelExports = 4

	usernameCacheSize = 256
	usernameCacheTTL  = time.Hour
)

// TransactionReader reads a user's date-ordered transactions.
type TransactionReader interface {
	FetchTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)
}

// UserDirectory resolves users for report naming.
type UserDirectory interface {
	LookupUser(ctx context.Context, userID int64) (core.User, bool, error)
	ListUsers(ctx context.Context) ([]core.User, error)
}

// ExportWorker keeps each user's monthly savings report in sync with the store.
// Reports are always recomputed from a fresh read; events only say who changed.
type ExportWorker struct {
	transactions TransactionReader
	users        UserDirectory
	writer       sheets.SavingsWriter
	// Usernames never change once created; unknown ids are not cached.
	usernames cache.Cache[int64, string]
}

func NewExportWorker(transactions TransactionReader, users UserDirectory, writer sheets.SavingsWriter) *ExportWorker {
	return &ExportWorker{
		transactions: transactions,
		users:        users,
		writer:       writer,
		usernames:    cache.NewLRUCache[int64, string](usernameCacheSize, usernameCacheTTL),
	}
}

// HandleTransactionEvent re-exports the report of the user named by the event.
func (w *ExportWorker) HandleTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"type", event.Type,
		applog.FieldUserID, event.UserID,
		applog.FieldTransactionID, event.TransactionID)

	username, found, err := w.username(ctx, event.UserID)
	if err != nil {
		return err
	}
	if !found {
		slog.WarnContext(ctx, "Event for unknown user ignored", applog.FieldUserID, event.UserID)
		return nil
	}

	return w.exportUser(ctx, event.UserID, username)
}

// ExportAll rewrites the report of every user. A failing user does not stop
// the others; all failures are returned joined.
func (w *ExportWorker) ExportAll(ctx context.Context) error {
	start := time.Now()
	users, err := w.users.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	expired := w.usernames.CleanExpired()
	for _, u := range users {
		w.usernames.Set(u.ID, u.Username)
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	var g errgroup.Group
	g.SetLimit(maxParallelExports)
	for _, u := range users {
		g.Go(func() error {
			if err := w.exportUser(ctx, u.ID, u.Username); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	slog.InfoContext(ctx, "Full savings export completed",
		applog.FieldOperation, applog.OpExport,
		"users", len(users),
		"failed", len(errs),
		"cached_users", w.usernames.Size(),
		"expired_cache_entries", expired,
		applog.FieldDuration, time.Since(start).Milliseconds())
	return errors.Join(errs...)
}

// username resolves userID through the cache and reports whether the user exists.
func (w *ExportWorker) username(ctx context.Context, userID int64) (string, bool, error) {
	if name, ok := w.usernames.Get(userID); ok {
		return name, true, nil
	}
	user, found, err := w.users.LookupUser(ctx, userID)
	if err != nil {
		return "", false, fmt.Errorf("resolve user %d: %w", userID, err)
	}
	if !found {
		return "", false, nil
	}
	w.usernames.Set(userID, user.Username)
	return user.Username, true, nil
}

func (w *ExportWorker) exportUser(ctx context.Context, userID int64, username string) error {
	txs, err := w.transactions.FetchTransactions(ctx, userID)
	if err != nil {
		return fmt.Errorf("fetch transactions for user %d: %w", userID, err)
	}

	buckets := core.MonthlyTotals(txs)
	if err := w.writer.WriteMonthlyTotals(ctx, userID, username, buckets); err != nil {
		return fmt.Errorf("write report for user %d (%s): %w", userID, username, err)
	}

	slog.DebugContext(ctx, "Savings report exported",
		applog.FieldUserID, userID,
		applog.FieldUsername, username,
		"months", len(buckets))
	return nil
}
