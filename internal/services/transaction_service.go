package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"budget/internal/amqp"
	"budget/internal/core"
	applog "budget/internal/log"
)

// TransactionStore is the persistence the transaction service needs.
type TransactionStore interface {
	InsertTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, txID int64) (int64, error)
}

// EventPublisher announces committed transaction mutations.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error
}

// TransactionService records, lists and deletes transactions scoped to a user,
// and publishes an event after each committed mutation.
//
// The service does not validate its input: rejecting an empty category or a
// zero amount is the caller's job (see core.Transaction.Validate).
type TransactionService struct {
	store     TransactionStore
	publisher EventPublisher
}

// NewTransactionService creates the service. publisher may be nil.
func NewTransactionService(store TransactionStore, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
	}
}

// AddTransaction stores a new transaction owned by userID. The error wraps
// core.ErrUnknownUser when no such user exists.
func (s *TransactionService) AddTransaction(ctx context.Context, userID int64, date core.Date, category string, amount decimal.Decimal) (core.Transaction, error) {
	tx, err := s.store.InsertTransaction(ctx, core.Transaction{
		Date:     date,
		Category: category,
		Amount:   amount,
		UserID:   userID,
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}

	s.publish(ctx, amqp.NewTransactionEvent(amqp.EventTransactionCreated, userID, tx.ID))
	return tx, nil
}

// FetchTransactions returns the user's transactions ordered by date ascending.
func (s *TransactionService) FetchTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	return txs, nil
}

// DeleteTransaction removes txID if userID owns it. deleted is false when
// nothing matched, which is not an error.
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, txID int64) (bool, error) {
	n, err := s.store.DeleteTransaction(ctx, userID, txID)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		slog.DebugContext(ctx, "Delete matched no transaction",
			applog.FieldUserID, userID,
			applog.FieldTransactionID, txID)
		return false, nil
	}

	s.publish(ctx, amqp.NewTransactionEvent(amqp.EventTransactionDeleted, userID, txID))
	return true, nil
}

// Summary computes the user's monthly totals from a fresh read.
func (s *TransactionService) Summary(ctx context.Context, userID int64) (core.Summary, error) {
	txs, err := s.FetchTransactions(ctx, userID)
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summarize(txs), nil
}

func (s *TransactionService) publish(ctx context.Context, event *amqp.TransactionEvent) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Event publisher not available, skipping transaction event", "type", event.Type)
		return
	}
	// Don't fail the request - the mutation is already committed
	if err := s.publisher.PublishTransactionEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"type", event.Type,
			applog.FieldUserID, event.UserID,
			applog.FieldTransactionID, event.TransactionID,
			applog.FieldError, err)
	}
}
