package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	AccountRepo      AccountRepositoryFacade
	ExchangeRateRepo ExchangeRateRepositoryFacade
	LedgerRepo       LedgerRepositoryFacade
	DraftRepo        DraftRepository
	ReportingRepo    ReportingRepository
	// ActivityRepo is optional and nil when no archive is configured.
	ActivityRepo ActivityFeedRepository
}
