package services_test

import (
	"context"
	"iter"
	"sync"
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, includeInactive bool) ([]domain.Account, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

// MockLedgerRepository is a mock type for the LedgerRepositoryFacade interface
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerRepository) FindEntryByNumber(ctx context.Context, entryNumber string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerRepository) BalanceOf(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerRepository) EntriesInRange(ctx context.Context, start, end time.Time, accountID string) iter.Seq2[domain.JournalEntry, error] {
	args := m.Called(ctx, start, end, accountID)
	return args.Get(0).(iter.Seq2[domain.JournalEntry, error])
}

func (m *MockLedgerRepository) HasPostings(ctx context.Context, accountID string) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) HasReversal(ctx context.Context, entryID string) (bool, error) {
	args := m.Called(ctx, entryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) NextEntryNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerRepository) Append(ctx context.Context, entry domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) UpdateEntryStatus(ctx context.Context, entryID string, from, to domain.EntryStatus, userID string, at time.Time) error {
	args := m.Called(ctx, entryID, from, to, userID, at)
	return args.Error(0)
}

// MockDraftRepository is a mock type for the DraftRepository interface
type MockDraftRepository struct {
	mock.Mock
}

func (m *MockDraftRepository) SaveDraft(ctx context.Context, draft domain.JournalEntry) error {
	args := m.Called(ctx, draft)
	return args.Error(0)
}

func (m *MockDraftRepository) FindDraftByID(ctx context.Context, draftID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockDraftRepository) UpdateDraftStatus(ctx context.Context, draftID string, status domain.EntryStatus, userID string, at time.Time) error {
	args := m.Called(ctx, draftID, status, userID, at)
	return args.Error(0)
}

func (m *MockDraftRepository) HasOpenDraftForAccount(ctx context.Context, accountID string) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

// MockExchangeRateRepository is a mock type for the ExchangeRateRepositoryFacade interface
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) FindLatestRate(ctx context.Context, fromCurrency, toCurrency string, asOf time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCurrency, toCurrency, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) ListExchangeRates(ctx context.Context, fromCurrency, toCurrency string) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCurrency, toCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

// MockReportingRepository is a mock type for the ReportingRepository interface
type MockReportingRepository struct {
	mock.Mock
}

func (m *MockReportingRepository) AccountBalancesAsOf(ctx context.Context, asOf time.Time) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

func (m *MockReportingRepository) AccountMovements(ctx context.Context, start, end time.Time) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

// MockConverter is a mock type for the CurrencyConverter interface
type MockConverter struct {
	mock.Mock
}

func (m *MockConverter) Rate(ctx context.Context, fromCurrency, toCurrency string, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, fromCurrency, toCurrency, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockConverter) Convert(ctx context.Context, amount decimal.Decimal, fromCurrency, toCurrency string, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, amount, fromCurrency, toCurrency, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// recordingDispatcher collects dispatched events synchronously.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []domain.FinancialEvent
}

func (r *recordingDispatcher) AddEventListener(domain.EventListener) func() { return func() {} }

func (r *recordingDispatcher) Dispatch(_ context.Context, event domain.FinancialEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingDispatcher) types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]domain.EventType, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}
