package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/spice_ledger/internal/apperrors"
	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/spice_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/spice_ledger/internal/core/ports/services"
	"github.com/SscSPs/spice_ledger/internal/dto"
	"github.com/SscSPs/spice_ledger/internal/utils/locking"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerReader
	draftRepo   portsrepo.DraftRepository
	currencySvc portssvc.CurrencyReaderSvc
	locker      *locking.KeyedLocker
	events      portssvc.EventDispatcher
	now         func() time.Time
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithCurrencyService restricts account currencies to the supported list.
func WithCurrencyService(svc portssvc.CurrencyReaderSvc) AccountServiceOption {
	return func(s *accountService) {
		s.currencySvc = svc
	}
}

// WithAccountLocker shares the per-account locks with the journal engine.
func WithAccountLocker(locker *locking.KeyedLocker) AccountServiceOption {
	return func(s *accountService) {
		s.locker = locker
	}
}

// WithAccountEvents publishes account lifecycle events.
func WithAccountEvents(events portssvc.EventDispatcher) AccountServiceOption {
	return func(s *accountService) {
		s.events = events
	}
}

// WithAccountClock overrides time.Now.
func WithAccountClock(now func() time.Time) AccountServiceOption {
	return func(s *accountService) {
		s.now = now
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, ledgerRepo portsrepo.LedgerReader, draftRepo portsrepo.DraftRepository, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo: repo,
		ledgerRepo:  ledgerRepo,
		draftRepo:   draftRepo,
		locker:      locking.NewKeyedLocker(),
		now:         time.Now,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	currency := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))

	if code == "" {
		return nil, apperrors.NewValidationError("code", "code is required")
	}
	if name == "" {
		return nil, apperrors.NewValidationError("name", "name is required")
	}
	if !req.AccountType.Valid() {
		return nil, apperrors.NewValidationError("type", "unknown account type %q", req.AccountType)
	}
	if !domain.IsCurrencyCode(currency) {
		return nil, apperrors.NewValidationError("currency", "currency must be a three-letter code")
	}
	if s.currencySvc != nil {
		if _, err := s.currencySvc.GetCurrencyByCode(ctx, currency); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewValidationError("currency", "currency %s is not supported", currency)
			}
			return nil, fmt.Errorf("invalid currency code: %w", err)
		}
	}

	category := req.ReportCategory
	if category == domain.CategoryNone {
		category = domain.DefaultReportCategory(req.AccountType)
	}
	if !category.AllowedFor(req.AccountType) {
		return nil, apperrors.NewValidationError("reportCategory", "category %q cannot be used with %s accounts", category, req.AccountType)
	}

	existing, err := s.accountRepo.FindAccountByCode(ctx, code)
	switch {
	case err == nil && existing != nil:
		return nil, apperrors.NewValidationError("code", "code %s is already in use", code)
	case err != nil && !errors.Is(err, apperrors.ErrNotFound):
		s.LogError(ctx, err, "Failed to check account code", slog.String("code", code))
		return nil, err
	}

	parentID := ""
	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		parentID = *req.ParentAccountID
		parent, err := s.accountRepo.FindAccountByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewValidationError("parentId", "parent account %s does not exist", parentID)
			}
			s.LogError(ctx, err, "Failed to find parent account", slog.String("parent_id", parentID))
			return nil, err
		}
		if parent.AccountType != req.AccountType {
			return nil, apperrors.NewValidationError("parentId", "parent account is %s, expected %s", parent.AccountType, req.AccountType)
		}
	}

	allowDirectPosting := true
	if req.AllowDirectPosting != nil {
		allowDirectPosting = *req.AllowDirectPosting
	}

	now := s.now()
	account := domain.Account{
		AccountID:          uuid.NewString(),
		Code:               code,
		Name:               name,
		AccountType:        req.AccountType,
		CurrencyCode:       currency,
		ReportCategory:     category,
		AllowDirectPosting: allowDirectPosting,
		IsActive:           true,
		ParentAccountID:    parentID,
		Description:        req.Description,
		AuditFields:        domain.NewAuditFields(userID, now),
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.NewValidationError("code", "code %s is already in use", code)
		}
		s.LogError(ctx, err, "Failed to save account",
			slog.String("account_id", account.AccountID),
			slog.String("code", code))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", account.AccountID),
		slog.String("code", account.Code),
		slog.String("type", string(account.AccountType)))
	if s.events != nil {
		s.events.Dispatch(ctx, accountCreatedEvent(account, userID, now))
	}
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID",
				slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by code",
				slog.String("code", code))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to find accounts by IDs",
			slog.String("account_ids", fmt.Sprintf("%v", accountIDs)))
		return nil, err
	}
	return accounts, nil
}

func (s *accountService) ListAccounts(ctx context.Context, includeInactive bool) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, includeInactive)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts",
			slog.Bool("include_inactive", includeInactive))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	if accounts == nil {
		return []domain.Account{}, nil
	}

	s.LogDebug(ctx, "Accounts listed successfully", slog.Int("count", len(accounts)))
	return accounts, nil
}

func (s *accountService) ListPostableAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.ListAccounts(ctx, false)
	if err != nil {
		return nil, err
	}
	postable := make([]domain.Account, 0, len(accounts))
	for _, a := range accounts {
		if a.Postable() {
			postable = append(postable, a)
		}
	}
	return postable, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name", "name cannot be empty")
		}
		account.Name = name
		updated = true
	}
	if req.Description != nil {
		account.Description = *req.Description
		updated = true
	}
	if req.AllowDirectPosting != nil {
		account.AllowDirectPosting = *req.AllowDirectPosting
		updated = true
	}
	if !updated {
		s.LogDebug(ctx, "No fields provided for account update",
			slog.String("account_id", accountID))
		return account, nil
	}

	account.Touch(userID, s.now())

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account",
			slog.String("account_id", accountID))
		return nil, err
	}

	s.LogInfo(ctx, "Account updated successfully",
		slog.String("account_id", account.AccountID))
	return account, nil
}

// DeactivateAccount holds the account lock so no posting validates against
// the account while it is being switched off.
func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	unlock := s.locker.Lock(accountID)
	defer unlock()

	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	open, err := s.draftRepo.HasOpenDraftForAccount(ctx, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to check open drafts", slog.String("account_id", accountID))
		return err
	}
	if open {
		return &apperrors.ConflictError{Resource: "account", ID: accountID, Reason: "an open draft entry references this account"}
	}

	now := s.now()
	if err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, now); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to deactivate account",
				slog.String("account_id", accountID))
		}
		return err
	}

	s.LogInfo(ctx, "Account deactivated successfully",
		slog.String("account_id", accountID))
	if s.events != nil {
		account.IsActive = false
		s.events.Dispatch(ctx, accountDeactivatedEvent(*account, userID, now))
	}
	return nil
}

// DeleteAccount only removes accounts that have no ledger history.
func (s *accountService) DeleteAccount(ctx context.Context, accountID string, userID string) error {
	unlock := s.locker.Lock(accountID)
	defer unlock()

	if _, err := s.GetAccountByID(ctx, accountID); err != nil {
		return err
	}

	posted, err := s.ledgerRepo.HasPostings(ctx, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to check account postings", slog.String("account_id", accountID))
		return err
	}
	if posted {
		return &apperrors.ConflictError{Resource: "account", ID: accountID, Reason: "account has posted entries, deactivate it instead"}
	}
	open, err := s.draftRepo.HasOpenDraftForAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if open {
		return &apperrors.ConflictError{Resource: "account", ID: accountID, Reason: "an open draft entry references this account"}
	}

	if err := s.accountRepo.DeleteAccount(ctx, accountID); err != nil {
		s.LogError(ctx, err, "Failed to delete account", slog.String("account_id", accountID))
		return err
	}
	s.LogInfo(ctx, "Account deleted", slog.String("account_id", accountID), slog.String("user_id", userID))
	return nil
}

func (s *accountService) CalculateAccountBalance(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error) {
	if _, err := s.GetAccountByID(ctx, accountID); err != nil {
		return decimal.Zero, err
	}
	balance, err := s.ledgerRepo.BalanceOf(ctx, accountID, domain.DateOf(asOf))
	if err != nil {
		s.LogError(ctx, err, "Failed to calculate account balance",
			slog.String("account_id", accountID))
		return decimal.Zero, err
	}
	return balance, nil
}
