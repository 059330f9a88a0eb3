package apperrors

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the operation is not allowed in the resource's current state.
var ErrConflict = errors.New("resource state conflict")

// ErrUnbalancedEntry indicates that a journal entry's debits and credits do not match.
var ErrUnbalancedEntry = errors.New("journal entry is unbalanced")

// ErrRateNotFound indicates that no exchange rate exists for a currency pair.
var ErrRateNotFound = errors.New("exchange rate not found")

// ErrInactiveAccount indicates a posting against an account that cannot accept it.
var ErrInactiveAccount = errors.New("account does not accept postings")

// ErrInvariantViolation indicates derived ledger data broke a bookkeeping identity.
var ErrInvariantViolation = errors.New("ledger invariant violated")

// ErrInternal is used for infrastructure failures that callers cannot act on.
var ErrInternal = errors.New("internal error")

// AppError carries an HTTP-ish status code alongside a wrapped infrastructure error.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError. err may be nil.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInternal}
	}
	return []error{e.Err, ErrInternal}
}

// ValidationError reports a rejected field of a caller-supplied request.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// UnbalancedEntryError carries the base-currency totals of a rejected entry.
type UnbalancedEntryError struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// Difference returns debit minus credit.
func (e *UnbalancedEntryError) Difference() decimal.Decimal {
	return e.TotalDebit.Sub(e.TotalCredit)
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("journal entry is unbalanced: total debit %s, total credit %s, difference %s",
		e.TotalDebit.String(), e.TotalCredit.String(), e.Difference().String())
}

func (e *UnbalancedEntryError) Unwrap() error { return ErrUnbalancedEntry }

// RateNotFoundError is returned when neither the direct nor the inverse pair has a rate.
type RateNotFoundError struct {
	From string
	To   string
	AsOf time.Time
}

func (e *RateNotFoundError) Error() string {
	return fmt.Sprintf("no exchange rate from %s to %s effective on or before %s", e.From, e.To, e.AsOf.Format(time.DateOnly))
}

func (e *RateNotFoundError) Unwrap() error { return ErrRateNotFound }

// DuplicateEntryError is returned when an entry number is appended twice.
type DuplicateEntryError struct {
	EntryNumber string
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("journal entry %s already exists", e.EntryNumber)
}

func (e *DuplicateEntryError) Unwrap() error { return ErrDuplicate }

// ConflictError is returned when a state transition or removal is not allowed.
type ConflictError struct {
	Resource string
	ID       string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Resource, e.ID, e.Reason)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// InactiveAccountError is returned when a line targets an account that is inactive
// or does not allow direct posting.
type InactiveAccountError struct {
	AccountID string
	Reason    string
}

func (e *InactiveAccountError) Error() string {
	return fmt.Sprintf("account %s cannot be posted to: %s", e.AccountID, e.Reason)
}

func (e *InactiveAccountError) Unwrap() error { return ErrInactiveAccount }

// InvariantViolationError signals that derived data broke a ledger identity.
// It is surfaced alongside the report, never corrected.
type InvariantViolationError struct {
	Invariant string
	Variance  decimal.Decimal
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("ledger invariant %q violated: variance %s", e.Invariant, e.Variance.String())
}

func (e *InvariantViolationError) Unwrap() error { return ErrInvariantViolation }
