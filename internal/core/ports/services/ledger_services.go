package services

import (
	"context"
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
)

// LedgerFacade is the narrow contract the portals call.
type LedgerFacade interface {
	// GetAccounts returns the chart together with its headline stats.
	GetAccounts(ctx context.Context) (*domain.AccountsOverview, error)

	// GetTrialBalance defaults asOf to today when nil.
	GetTrialBalance(ctx context.Context, asOf *time.Time) (*domain.TrialBalance, error)

	// GetIncomeStatement summarises [start, end].
	GetIncomeStatement(ctx context.Context, start, end time.Time) (*domain.IncomeStatement, error)

	// CreateJournalEntry validates and posts a draft.
	CreateJournalEntry(ctx context.Context, draft domain.JournalEntry, userID string) (*domain.JournalEntry, error)

	// AddEventListener subscribes to ledger events.
	AddEventListener(listener domain.EventListener) (remove func())
}
