// Package backend selects where savings reports are written.
package backend

import (
	"context"
	"fmt"
	"strings"

	"budget/internal/config"
	applog "budget/internal/log"
	ports "budget/internal/sheets"
	gsheet "budget/internal/sheets/google"
	"budget/internal/sheets/memory"
)

// Type names a savings report backend.
type Type string

const (
	SheetsBackend Type = "sheets"
	MemoryBackend Type = "memory"
)

// TypeFor returns the backend implied by cfg: Google Sheets when a
// spreadsheet is configured, memory otherwise.
func TypeFor(cfg *config.Config) Type {
	if cfg.SheetsEnabled() {
		return SheetsBackend
	}
	return MemoryBackend
}

// sheetsFactory is replaced in tests to avoid real credentials.
var sheetsFactory = func(ctx context.Context, spreadsheetID, prefix string) (ports.SavingsWriter, error) {
	c, err := gsheet.New(ctx, spreadsheetID, prefix)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NewSavingsWriter builds the report writer for cfg.
func NewSavingsWriter(ctx context.Context, cfg *config.Config, logger *applog.Logger) (ports.SavingsWriter, Type, error) {
	if cfg == nil {
		return nil, "", fmt.Errorf("config is nil")
	}
	logger = logger.WithComponent(applog.ComponentSheets)

	switch t := TypeFor(cfg); t {
	case SheetsBackend:
		w, err := sheetsFactory(ctx, strings.TrimSpace(cfg.GoogleSpreadsheetID), cfg.GoogleSheetPrefix)
		if err != nil {
			return nil, t, fmt.Errorf("failed to initialize Google Sheets backend: %w", err)
		}
		logger.Info("Initialized Google Sheets backend",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet_prefix", cfg.GoogleSheetPrefix)
		return w, t, nil
	default:
		logger.Info("Initialized memory backend, reports are not persisted")
		return memory.New(), t, nil
	}
}
