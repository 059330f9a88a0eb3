package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/spice_ledger/internal/apperrors"
	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/spice_ledger/internal/core/ports/repositories"
)

// AccountRepository keeps the chart of accounts in memory.
type AccountRepository struct {
	mu     sync.RWMutex
	byID   map[string]domain.Account
	byCode map[string]string
}

// NewAccountRepository creates an empty chart.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		byID:   make(map[string]domain.Account),
		byCode: make(map[string]string),
	}
}

var _ portsrepo.AccountRepositoryFacade = (*AccountRepository)(nil)

func (r *AccountRepository) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc, ok := r.byID[accountID]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
	}
	return &acc, nil
}

func (r *AccountRepository) FindAccountByCode(_ context.Context, code string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byCode[code]
	if !ok {
		return nil, fmt.Errorf("account code %s: %w", code, apperrors.ErrNotFound)
	}
	acc := r.byID[id]
	return &acc, nil
}

func (r *AccountRepository) FindAccountsByIDs(_ context.Context, accountIDs []string) (map[string]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := r.byID[id]; ok {
			res[id] = acc
		}
	}
	return res, nil
}

func (r *AccountRepository) ListAccounts(_ context.Context, includeInactive bool) ([]domain.Account, error) {
	r.mu.RLock()
	accounts := make([]domain.Account, 0, len(r.byID))
	for _, acc := range r.byID {
		if acc.IsActive || includeInactive {
			accounts = append(accounts, acc)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(accounts, func(a, b domain.Account) int {
		return strings.Compare(a.Code, b.Code)
	})
	return accounts, nil
}

func (r *AccountRepository) SaveAccount(_ context.Context, account domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[account.AccountID]; exists {
		return fmt.Errorf("account %s: %w", account.AccountID, apperrors.ErrDuplicate)
	}
	if _, exists := r.byCode[account.Code]; exists {
		return fmt.Errorf("account code %s: %w", account.Code, apperrors.ErrDuplicate)
	}
	r.byID[account.AccountID] = account
	r.byCode[account.Code] = account.AccountID
	return nil
}

func (r *AccountRepository) UpdateAccount(_ context.Context, account domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[account.AccountID]
	if !ok {
		return fmt.Errorf("account %s: %w", account.AccountID, apperrors.ErrNotFound)
	}
	existing.Name = account.Name
	existing.Description = account.Description
	existing.AllowDirectPosting = account.AllowDirectPosting
	existing.LastUpdatedAt = account.LastUpdatedAt
	existing.LastUpdatedBy = account.LastUpdatedBy
	r.byID[account.AccountID] = existing
	return nil
}

func (r *AccountRepository) DeactivateAccount(_ context.Context, accountID string, userID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.byID[accountID]
	if !ok {
		return fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
	}
	if !acc.IsActive {
		return apperrors.NewValidationError("accountId", "account %s is already inactive", accountID)
	}
	acc.IsActive = false
	acc.Touch(userID, now)
	r.byID[accountID] = acc
	return nil
}

func (r *AccountRepository) DeleteAccount(_ context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.byID[accountID]
	if !ok {
		return fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
	}
	delete(r.byID, accountID)
	delete(r.byCode, acc.Code)
	return nil
}
