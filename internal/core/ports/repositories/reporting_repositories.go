package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ReportingRepository aggregates posted lines per account. Amounts are in base
// currency, signed in each account's normal direction. Accounts without
// postings are absent from the maps.
type ReportingRepository interface {
	// AccountBalancesAsOf sums every posting dated on or before asOf.
	AccountBalancesAsOf(ctx context.Context, asOf time.Time) (map[string]decimal.Decimal, error)

	// AccountMovements sums postings dated within [start, end].
	AccountMovements(ctx context.Context, start, end time.Time) (map[string]decimal.Decimal, error)
}
