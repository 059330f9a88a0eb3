package pgsql

import (
	"log/slog"

	portsrepo "github.com/SscSPs/spice_ledger/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the PostgreSQL repositories. The activity archive
// is not stored in Postgres; callers attach one separately.
func NewRepositoryProvider(db DB, logger *slog.Logger) *portsrepo.RepositoryProvider {
	base := BaseRepository{DB: db, Logger: logger}
	return &portsrepo.RepositoryProvider{
		AccountRepo:      newPgxAccountRepository(base),
		ExchangeRateRepo: newPgxExchangeRateRepository(base),
		LedgerRepo:       newPgxJournalRepository(base),
		DraftRepo:        newPgxDraftRepository(base),
		ReportingRepo:    newPgxReportingRepository(base),
	}
}
