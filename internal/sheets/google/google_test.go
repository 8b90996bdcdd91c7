package google

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"budget/internal/core"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), "  ", "Savings")
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := New(context.Background(), "sheet-id", "")
	if err == nil {
		t.Fatal("expected error without credentials")
	}
}

func TestClient_WriteWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetPrefix: "Savings"} // svc is nil
	err := c.WriteMonthlyTotals(context.Background(), 1, "admin", nil)
	if err == nil {
		t.Fatal("expected error when service is not initialized")
	}
}

func TestTabNameAndRange(t *testing.T) {
	if got := tabName("Savings", 1, "admin"); got != "Savings 1 admin" {
		t.Errorf("tabName = %q", got)
	}
	if got := tabName(" ", 1, "admin"); got != "1 admin" {
		t.Errorf("tabName with empty prefix = %q", got)
	}

	// Look-alike usernames still get their own tab.
	seen := make(map[string]int64)
	for id, name := range map[int64]string{2: "bob", 3: " bob ", 4: "Bob"} {
		tab := strings.ToLower(tabName("Savings", id, name))
		if other, ok := seen[tab]; ok {
			t.Errorf("users %d and %d share tab %q", id, other, tab)
		}
		seen[tab] = id
	}
	if got := a1Range("Savings admin", "A:B"); got != "'Savings admin'!A:B" {
		t.Errorf("a1Range = %q", got)
	}
	if got := a1Range("Savings o'neil", "A1"); got != "'Savings o''neil'!A1" {
		t.Errorf("a1Range with quote = %q", got)
	}
}

func TestMonthlyTotalsValues(t *testing.T) {
	values := monthlyTotalsValues([]core.MonthBucket{
		{Month: "2024-01", Total: decimal.NewFromInt(800)},
		{Month: "2024-02", Total: decimal.RequireFromString("-12.5")},
	})
	if len(values) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(values))
	}
	if values[0][0] != "Month" || values[0][1] != "Total" {
		t.Errorf("unexpected header: %v", values[0])
	}
	if values[1][0] != "2024-01" || values[1][1] != "800.00" {
		t.Errorf("unexpected row: %v", values[1])
	}
	if values[2][1] != "-12.50" {
		t.Errorf("unexpected row: %v", values[2])
	}

	if got := monthlyTotalsValues(nil); len(got) != 1 {
		t.Errorf("empty report should still carry the header, got %v", got)
	}
}
