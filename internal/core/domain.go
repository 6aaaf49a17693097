package core

import (
	"errors"
	"time"
)

// DefaultPaymentMethod is recorded when an expense is added without one.
const DefaultPaymentMethod = "Cash"

type (
	// Expense is one logged spending event.
	Expense struct {
		ID            int64
		Date          string // calendar date as text, YYYY-MM-DD expected
		Category      string
		Description   string
		Amount        float64
		PaymentMethod string
		CreatedAt     time.Time
	}

	// Category is a free-text label grouping expenses.
	Category struct {
		ID          int64
		Name        string
		Description string
	}

	// BudgetLimit is a per-category spending cap for one month.
	BudgetLimit struct {
		ID       int64
		Category string
		Limit    float64
		Month    string // YYYY-MM
	}
)

var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrConstraint         = errors.New("constraint violation")
	ErrStoreClosed        = errors.New("store closed")
	ErrInvalidMonth       = errors.New("invalid month key")
)

// ValidMonthKey reports whether s is a YYYY-MM month key.
func ValidMonthKey(s string) bool {
	if len(s) != 7 || s[4] != '-' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if i == 4 {
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	month := int(s[5]-'0')*10 + int(s[6]-'0')
	return month >= 1 && month <= 12
}
