package sheets

import (
	"context"

	"budget/internal/core"
)

// Ports for outbound adapters.
type (
	// SavingsWriter publishes a user's monthly totals to an external report.
	// Reports are keyed by userID; username only labels the report. Each call
	// replaces whatever was previously written for userID.
	SavingsWriter interface {
		WriteMonthlyTotals(ctx context.Context, userID int64, username string, buckets []core.MonthBucket) error
	}
)
