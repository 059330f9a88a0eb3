package memory

import (
	portsrepo "github.com/SscSPs/spice_ledger/internal/core/ports/repositories"
)

// activityCapacity bounds the in-process activity feed.
const activityCapacity = 1000

// NewRepositoryProvider wires the in-process repositories together.
func NewRepositoryProvider() *portsrepo.RepositoryProvider {
	accounts := NewAccountRepository()
	ledger := NewLedgerStore(accounts)
	return &portsrepo.RepositoryProvider{
		AccountRepo:      accounts,
		ExchangeRateRepo: NewExchangeRateRepository(),
		LedgerRepo:       ledger,
		DraftRepo:        NewDraftRepository(),
		ReportingRepo:    ledger,
		ActivityRepo:     NewActivityFeed(activityCapacity),
	}
}
