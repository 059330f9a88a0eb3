package services

import (
	"context"
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
	"github.com/SscSPs/spice_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountByCode retrieves an account by its chart code.
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// GetAccountsByIDs retrieves multiple accounts by their IDs.
	GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves the chart ordered by code.
	ListAccounts(ctx context.Context, includeInactive bool) ([]domain.Account, error)

	// ListPostableAccounts returns accounts that are active and allow direct posting.
	ListPostableAccounts(ctx context.Context) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount validates and persists a new account.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccount updates an existing account's details.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, accountID string, userID string) error

	// DeleteAccount removes an account that has never been posted to.
	DeleteAccount(ctx context.Context, accountID string, userID string) error
}

// AccountCalculatorSvc defines calculation operations for account data
type AccountCalculatorSvc interface {
	// CalculateAccountBalance returns the normal-signed base-currency balance as of a date.
	CalculateAccountBalance(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error)
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountCalculatorSvc
}
