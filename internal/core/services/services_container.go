package services

import (
	portsrepo "github.com/SscSPs/spice_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/spice_ledger/internal/core/ports/services"
	"github.com/SscSPs/spice_ledger/internal/platform/config"
	"github.com/SscSPs/spice_ledger/internal/utils/locking"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// events may be nil, in which case nothing is published.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, events portssvc.EventDispatcher) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{Events: events}

	// Account deactivation and posting serialise on the same per-account locks.
	locker := locking.NewKeyedLocker()

	container.Currency = NewCurrencyService(cfg.BaseCurrency, cfg.SupportedCurrencies)
	container.ExchangeRate = NewExchangeRateService(repos.ExchangeRateRepo, container.Currency)

	accountOpts := []AccountServiceOption{
		WithCurrencyService(container.Currency),
		WithAccountLocker(locker),
	}
	journalOpts := []JournalServiceOption{WithJournalLocker(locker)}
	if events != nil {
		accountOpts = append(accountOpts, WithAccountEvents(events))
		journalOpts = append(journalOpts, WithJournalEvents(events))
	}

	container.Account = NewAccountService(repos.AccountRepo, repos.LedgerRepo, repos.DraftRepo, accountOpts...)
	container.Journal = NewJournalService(
		repos.AccountRepo,
		repos.LedgerRepo,
		repos.DraftRepo,
		container.ExchangeRate,
		cfg.BaseCurrency,
		journalOpts...,
	)
	container.Reporting = NewReportingService(repos.AccountRepo, repos.ReportingRepo)
	container.Ledger = NewLedgerService(container.Account, container.Journal, container.Reporting, events)

	if repos.ActivityRepo != nil {
		container.Activity = NewActivityService(repos.ActivityRepo)
	}

	return container
}
