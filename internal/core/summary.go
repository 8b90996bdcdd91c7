package core

import "github.com/shopspring/decimal"

// Summary is the per-user savings report: monthly buckets plus the most recent month.
type Summary struct {
	Months              []MonthBucket
	CurrentMonthSavings decimal.Decimal
	HasCurrentMonth     bool
}

// MonthlyTotals groups date-ordered transactions by month and sums their amounts.
// Buckets come out in order of first appearance, which is ascending month order
// for date-sorted input. The result is never nil.
func MonthlyTotals(txs []Transaction) []MonthBucket {
	buckets := make([]MonthBucket, 0)
	index := make(map[string]int)
	for _, tx := range txs {
		key := tx.Date.MonthKey()
		i, ok := index[key]
		if !ok {
			index[key] = len(buckets)
			buckets = append(buckets, MonthBucket{Month: key, Total: tx.Amount})
			continue
		}
		buckets[i].Total = buckets[i].Total.Add(tx.Amount)
	}
	return buckets
}

// CurrentMonthSavings returns the total of the last bucket. ok is false when
// there are no buckets, i.e. no transactions yet.
func CurrentMonthSavings(buckets []MonthBucket) (decimal.Decimal, bool) {
	if len(buckets) == 0 {
		return decimal.Zero, false
	}
	return buckets[len(buckets)-1].Total, true
}

// Summarize builds the savings report for date-ordered transactions.
func Summarize(txs []Transaction) Summary {
	months := MonthlyTotals(txs)
	current, ok := CurrentMonthSavings(months)
	return Summary{
		Months:              months,
		CurrentMonthSavings: current,
		HasCurrentMonth:     ok,
	}
}
