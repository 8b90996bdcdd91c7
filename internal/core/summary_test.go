package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func tx(date string, amount int64) Transaction {
	d, err := ParseDate(date)
	if err != nil {
		panic(err)
	}
	return Transaction{Date: d, Category: "x", Amount: decimal.NewFromInt(amount)}
}

func TestMonthlyTotals(t *testing.T) {
	txs := []Transaction{
		tx("2024-01-15", 1000),
		tx("2024-01-20", -200),
		tx("2024-02-01", 500),
	}
	got := MonthlyTotals(txs)
	want := []MonthBucket{
		{Month: "2024-01", Total: decimal.NewFromInt(800)},
		{Month: "2024-02", Total: decimal.NewFromInt(500)},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d buckets, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Month != want[i].Month || !got[i].Total.Equal(want[i].Total) {
			t.Fatalf("bucket %d = %s/%s, want %s/%s", i, got[i].Month, got[i].Total, want[i].Month, want[i].Total)
		}
	}

	savings, ok := CurrentMonthSavings(got)
	if !ok || !savings.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("CurrentMonthSavings = %s (ok=%v), want 500", savings, ok)
	}
}

func TestMonthlyTotals_Empty(t *testing.T) {
	got := MonthlyTotals(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
	if _, ok := CurrentMonthSavings(got); ok {
		t.Fatalf("CurrentMonthSavings must report no data for empty input")
	}
}

func TestMonthlyTotals_DecimalPrecision(t *testing.T) {
	a, _ := ParseAmount("0.1")
	b, _ := ParseAmount("0.2")
	d := NewDate(2024, 3, 1)
	got := MonthlyTotals([]Transaction{{Date: d, Amount: a}, {Date: d, Amount: b}})
	if got[0].Total.String() != "0.3" {
		t.Fatalf("total = %s, want 0.3", got[0].Total)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Transaction{tx("2023-12-31", -50), tx("2024-01-01", 75)})
	if len(s.Months) != 2 || s.Months[0].Month != "2023-12" {
		t.Fatalf("unexpected months: %+v", s.Months)
	}
	if !s.HasCurrentMonth || !s.CurrentMonthSavings.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("unexpected current month: %+v", s)
	}
}
