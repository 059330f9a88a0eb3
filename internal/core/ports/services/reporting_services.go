package services

import (
	"context"
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
)

// ReportingService derives financial reports from the ledger. It never writes.
type ReportingService interface {
	// TrialBalance lists account balances as of a date. When debits and credits
	// differ it returns the report together with *apperrors.InvariantViolationError.
	TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error)

	// IncomeStatement summarises revenue and expenses dated within [start, end].
	IncomeStatement(ctx context.Context, start, end time.Time) (*domain.IncomeStatement, error)

	// BalanceSheet lists assets, liabilities and equity as of a date.
	BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheet, error)

	// AccountStats computes the headline figures of the accounts overview.
	AccountStats(ctx context.Context, asOf time.Time) (*domain.AccountStats, error)
}
