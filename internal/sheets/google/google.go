package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"budget/internal/core"
	applog "budget/internal/log"
	ports "budget/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client writes per-user savings reports to one spreadsheet, one tab per user.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Tab names are "<sheetPrefix> <userID> <username>".
	sheetPrefix string
}

// Ensure interface conformance
var _ ports.SavingsWriter = (*Client)(nil)

// New creates a Sheets client for spreadsheetID using Service Account credentials
// from the environment. sheetPrefix defaults to "Savings".
func New(ctx context.Context, spreadsheetID, sheetPrefix string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetPrefix = strings.TrimSpace(sheetPrefix)
	if sheetPrefix == "" {
		sheetPrefix = "Savings"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetPrefix:   sheetPrefix,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// WriteMonthlyTotals replaces the user's tab with a Month/Total table,
// creating the tab on first use.
func (c *Client) WriteMonthlyTotals(ctx context.Context, userID int64, username string, buckets []core.MonthBucket) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	sheetName := tabName(c.sheetPrefix, userID, username)
	if err := c.ensureSheet(ctx, sheetName); err != nil {
		return err
	}

	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, a1Range(sheetName, "A:B"), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear sheet %s: %w", sheetName, err)
	}

	vr := &gsheet.ValueRange{Values: monthlyTotalsValues(buckets)}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, a1Range(sheetName, "A1"), vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update sheet %s: %w", sheetName, err)
	}

	slog.InfoContext(ctx, "Savings report written to Google Sheets",
		"sheet", sheetName,
		applog.FieldUserID, userID,
		"months", len(buckets))
	return nil
}

func (c *Client) ensureSheet(ctx context.Context, sheetName string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		// Sheets compares tab titles case-insensitively.
		if sh.Properties != nil && strings.EqualFold(sh.Properties.Title, sheetName) {
			return nil
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: sheetName},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", sheetName, err)
	}
	slog.InfoContext(ctx, "Created savings sheet", "sheet", sheetName)
	return nil
}

// tabName returns "<prefix> <userID> <username>". The id keeps tabs distinct
// for usernames that differ only in case or surrounding spaces.
func tabName(prefix string, userID int64, username string) string {
	name := strconv.FormatInt(userID, 10)
	if u := strings.TrimSpace(username); u != "" {
		name += " " + u
	}
	if p := strings.TrimSpace(prefix); p != "" {
		name = p + " " + name
	}
	return name
}

// a1Range quotes the sheet name as A1 notation requires for names with spaces.
func a1Range(sheetName, cells string) string {
	return "'" + strings.ReplaceAll(sheetName, "'", "''") + "'!" + cells
}

func monthlyTotalsValues(buckets []core.MonthBucket) [][]any {
	values := make([][]any, 0, len(buckets)+1)
	values = append(values, []any{"Month", "Total"})
	for _, b := range buckets {
		values = append(values, []any{b.Month, core.FormatAmount(b.Total)})
	}
	return values
}
