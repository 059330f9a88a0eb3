package services

import (
	"context"
	"errors"
	"time"

	"github.com/SscSPs/spice_ledger/internal/apperrors"
	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/spice_ledger/internal/core/ports/services"
)

// ledgerService is the facade the portals call.
type ledgerService struct {
	BaseService
	accounts  portssvc.AccountReaderSvc
	journal   portssvc.JournalWriterSvc
	reporting portssvc.ReportingService
	events    portssvc.EventDispatcher
	now       func() time.Time
}

// LedgerServiceOption configures the facade.
type LedgerServiceOption func(*ledgerService)

// WithLedgerClock overrides time.Now, which decides "today" for defaults and stats.
func WithLedgerClock(now func() time.Time) LedgerServiceOption {
	return func(s *ledgerService) {
		s.now = now
	}
}

// NewLedgerService creates the facade over the account, journal and reporting services.
func NewLedgerService(
	accounts portssvc.AccountReaderSvc,
	journal portssvc.JournalWriterSvc,
	reporting portssvc.ReportingService,
	events portssvc.EventDispatcher,
	options ...LedgerServiceOption,
) portssvc.LedgerFacade {
	svc := &ledgerService{
		accounts:  accounts,
		journal:   journal,
		reporting: reporting,
		events:    events,
		now:       time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.LedgerFacade = (*ledgerService)(nil)

func (s *ledgerService) GetAccounts(ctx context.Context) (*domain.AccountsOverview, error) {
	accounts, err := s.accounts.ListAccounts(ctx, true)
	if err != nil {
		return nil, err
	}
	stats, err := s.reporting.AccountStats(ctx, s.now())
	if err != nil {
		s.LogError(ctx, err, "Failed to compute account stats")
		return nil, err
	}
	return &domain.AccountsOverview{Accounts: accounts, Stats: *stats}, nil
}

// GetTrialBalance passes the report through even when it carries an invariant violation.
func (s *ledgerService) GetTrialBalance(ctx context.Context, asOf *time.Time) (*domain.TrialBalance, error) {
	date := s.now()
	if asOf != nil {
		date = *asOf
	}
	tb, err := s.reporting.TrialBalance(ctx, date)
	if err != nil && !errors.Is(err, apperrors.ErrInvariantViolation) {
		return nil, err
	}
	return tb, err
}

func (s *ledgerService) GetIncomeStatement(ctx context.Context, start, end time.Time) (*domain.IncomeStatement, error) {
	return s.reporting.IncomeStatement(ctx, start, end)
}

func (s *ledgerService) CreateJournalEntry(ctx context.Context, draft domain.JournalEntry, userID string) (*domain.JournalEntry, error) {
	return s.journal.PostEntry(ctx, draft, userID)
}

func (s *ledgerService) AddEventListener(listener domain.EventListener) (remove func()) {
	if s.events == nil {
		return func() {}
	}
	return s.events.AddEventListener(listener)
}
