package handlers_test

import (
	"context"
	"iter"
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/spice_ledger/internal/core/ports/services"
	"github.com/SscSPs/spice_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}
func (m *MockAccountService) ListAccounts(ctx context.Context, includeInactive bool) ([]domain.Account, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) ListPostableAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	return m.Called(ctx, accountID, userID).Error(0)
}
func (m *MockAccountService) DeleteAccount(ctx context.Context, accountID string, userID string) error {
	return m.Called(ctx, accountID, userID).Error(0)
}
func (m *MockAccountService) CalculateAccountBalance(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock JournalService ---
type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) entry(args mock.Arguments) (*domain.JournalEntry, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, entryID))
}
func (m *MockJournalService) GetEntryByNumber(ctx context.Context, entryNumber string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, entryNumber))
}
func (m *MockJournalService) ListEntries(ctx context.Context, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListJournalEntriesResponse), args.Error(1)
}
func (m *MockJournalService) StreamEntries(ctx context.Context, start, end time.Time, accountID string) iter.Seq2[domain.JournalEntry, error] {
	args := m.Called(ctx, start, end, accountID)
	return args.Get(0).(iter.Seq2[domain.JournalEntry, error])
}
func (m *MockJournalService) ValidateEntry(ctx context.Context, draft domain.JournalEntry) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, draft))
}
func (m *MockJournalService) PostEntry(ctx context.Context, draft domain.JournalEntry, userID string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, draft, userID))
}
func (m *MockJournalService) SaveDraft(ctx context.Context, draft domain.JournalEntry, userID string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, draft, userID))
}
func (m *MockJournalService) PostDraft(ctx context.Context, draftID string, userID string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, draftID, userID))
}
func (m *MockJournalService) CancelDraft(ctx context.Context, draftID string, userID string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, draftID, userID))
}
func (m *MockJournalService) ApproveEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, entryID, userID))
}
func (m *MockJournalService) ReverseEntry(ctx context.Context, entryID string, date time.Time, description string, userID string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, entryID, date, description, userID))
}

var _ portssvc.JournalSvcFacade = (*MockJournalService)(nil)

// --- Mock LedgerFacade ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetAccounts(ctx context.Context) (*domain.AccountsOverview, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountsOverview), args.Error(1)
}
func (m *MockLedgerService) GetTrialBalance(ctx context.Context, asOf *time.Time) (*domain.TrialBalance, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalance), args.Error(1)
}
func (m *MockLedgerService) GetIncomeStatement(ctx context.Context, start, end time.Time) (*domain.IncomeStatement, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IncomeStatement), args.Error(1)
}
func (m *MockLedgerService) CreateJournalEntry(ctx context.Context, draft domain.JournalEntry, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, draft, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockLedgerService) AddEventListener(listener domain.EventListener) (remove func()) {
	m.Called(listener)
	return func() {}
}

var _ portssvc.LedgerFacade = (*MockLedgerService)(nil)

// --- Mock CurrencyService ---
type MockCurrencyService struct {
	mock.Mock
}

func (m *MockCurrencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}
func (m *MockCurrencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}
func (m *MockCurrencyService) BaseCurrency() string {
	return m.Called().String(0)
}

var _ portssvc.CurrencySvcFacade = (*MockCurrencyService)(nil)
