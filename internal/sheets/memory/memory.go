package memory

import (
	"context"
	"slices"
	"sync"

	"budget/internal/core"
	ports "budget/internal/sheets"
)

var _ ports.SavingsWriter = (*Store)(nil)

type report struct {
	username string
	buckets  []core.MonthBucket
}

// Store keeps the last written report per user in memory.
type Store struct {
	mu      sync.Mutex
	reports map[int64]report
	writes  int
}

func New() *Store {
	return &Store{reports: make(map[int64]report)}
}

// WriteMonthlyTotals replaces the stored report for userID.
func (s *Store) WriteMonthlyTotals(_ context.Context, userID int64, username string, buckets []core.MonthBucket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[userID] = report{
		username: username,
		buckets:  append([]core.MonthBucket(nil), buckets...),
	}
	s.writes++
	return nil
}

// Report returns a copy of the last report written for userID.
func (s *Store) Report(userID int64) ([]core.MonthBucket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[userID]
	if !ok {
		return nil, false
	}
	return append([]core.MonthBucket(nil), r.buckets...), true
}

// Label returns the username the report for userID was written under.
func (s *Store) Label(userID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[userID]
	return r.username, ok
}

// Owners lists the ids of every user with a report, sorted.
func (s *Store) Owners() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, 0, len(s.reports))
	for id := range s.reports {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Writes returns the number of WriteMonthlyTotals calls.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
