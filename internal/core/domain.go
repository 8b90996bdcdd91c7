package core

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	// MaxCategoryLength bounds a category in characters, not bytes.
	MaxCategoryLength = 200

	// DateLayout is the canonical storage and display form of a transaction date.
	DateLayout = "2006-01-02"

	// UnknownUsername is returned by username lookups for ids that do not exist.
	UnknownUsername = "unknown"

	// SeedUserID is the id of the default account created on first start.
	SeedUserID int64 = 1
	// SeedUsername and SeedPassword are the default account credentials.
	SeedUsername = "admin"
	SeedPassword = "admin"
)

type (
	Date struct {
		time.Time
	}

	User struct {
		ID           int64
		Username     string
		PasswordHash string
	}

	// Transaction is a dated income (positive amount) or expense (negative amount)
	// owned by exactly one user.
	Transaction struct {
		ID       int64
		Date     Date
		Category string
		Amount   decimal.Decimal
		UserID   int64
	}

	// MonthBucket is the derived sum of all transactions sharing a year-month.
	MonthBucket struct {
		Month string // YYYY-MM
		Total decimal.Decimal
	}
)

// Legacy rows may carry a time component or a full timestamp.
var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339,
	time.RFC3339Nano,
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses any of the accepted stored date forms and truncates it to the day.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), int(t.Month()), t.Day()), nil
		}
	}
	return Date{}, ErrInvalidDate
}

// String returns the canonical YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MonthKey returns the YYYY-MM bucket key, the first seven characters of String.
func (d Date) MonthKey() string {
	return d.String()[:7]
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// IsIncome reports whether the transaction adds to savings.
func (t Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// Validate checks the caller contract for new transactions. The transaction
// service itself stores whatever it is given; callers run this first.
func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if utf8.RuneCountInString(t.Category) > MaxCategoryLength {
		return fmt.Errorf("category too long (max %d characters)", MaxCategoryLength)
	}
	if t.Amount.IsZero() {
		return ErrZeroAmount
	}
	return nil
}
