package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used on every external surface.
const DateLayout = time.DateOnly

// BaseCurrencyPlaces is the fixed precision of amounts converted to the base currency.
const BaseCurrencyPlaces int32 = 3

// Epsilon absorbs currency rounding when comparing base-currency totals.
var Epsilon = decimal.New(1, -BaseCurrencyPlaces)

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// NewAuditFields stamps creation and update with the same user and instant.
func NewAuditFields(userID string, at time.Time) AuditFields {
	return AuditFields{CreatedAt: at, CreatedBy: userID, LastUpdatedAt: at, LastUpdatedBy: userID}
}

// Touch records an update.
func (a *AuditFields) Touch(userID string, at time.Time) {
	a.LastUpdatedAt = at
	a.LastUpdatedBy = userID
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected %s: %w", s, DateLayout, err)
	}
	return t, nil
}

// WithinEpsilon reports whether |a-b| < Epsilon.
func WithinEpsilon(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(Epsilon)
}
