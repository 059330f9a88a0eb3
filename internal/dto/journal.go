package dto

import (
	"strings"
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one line of a journal entry draft.
// Exactly one of DebitAmount and CreditAmount must be positive.
type JournalLineRequest struct {
	AccountID    string           `json:"accountId" binding:"required"`
	DebitAmount  decimal.Decimal  `json:"debitAmount"`
	CreditAmount decimal.Decimal  `json:"creditAmount"`
	CurrencyCode string           `json:"currency" binding:"omitempty,currency"` // Defaults to the account currency
	ExchangeRate *decimal.Decimal `json:"exchangeRate"`                         // Optional override of the stored rate
	Description  string           `json:"description"`
}

// CreateJournalEntryRequest is a journal entry draft submitted by a caller.
type CreateJournalEntryRequest struct {
	EntryNumber  string               `json:"entryNumber" binding:"omitempty,max=32"` // Optional, assigned sequentially when empty
	Date         string               `json:"date" binding:"required,ledgerdate"`
	Description  string               `json:"description"`
	Reference    string               `json:"reference"`
	Type         domain.EntryType     `json:"type" binding:"omitempty,oneof=normal adjustment opening closing"`
	BaseCurrency string               `json:"baseCurrency" binding:"omitempty,currency"`
	Lines        []JournalLineRequest `json:"lines" binding:"required,dive"`
}

// ToDraft converts the request into an unposted domain entry.
func (r CreateJournalEntryRequest) ToDraft() (domain.JournalEntry, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return domain.JournalEntry{}, err
	}
	entryType, err := domain.ParseEntryType(string(r.Type))
	if err != nil {
		return domain.JournalEntry{}, err
	}

	lines := make([]domain.AccountEntry, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = domain.AccountEntry{
			AccountID:    l.AccountID,
			DebitAmount:  l.DebitAmount,
			CreditAmount: l.CreditAmount,
			CurrencyCode: strings.ToUpper(l.CurrencyCode),
			Description:  l.Description,
		}
		if l.ExchangeRate != nil {
			lines[i].ExchangeRate = *l.ExchangeRate
		}
	}

	return domain.JournalEntry{
		EntryNumber:  strings.TrimSpace(r.EntryNumber),
		Date:         date,
		Description:  r.Description,
		Reference:    r.Reference,
		Type:         entryType,
		Status:       domain.StatusDraft,
		BaseCurrency: strings.ToUpper(r.BaseCurrency),
		Lines:        lines,
	}, nil
}

// ReverseJournalEntryRequest dates and describes a compensating entry.
type ReverseJournalEntryRequest struct {
	Date        string `json:"date" binding:"omitempty,ledgerdate"` // Defaults to today
	Description string `json:"description"`
}

// JournalLineResponse mirrors domain.AccountEntry.
type JournalLineResponse struct {
	AccountID            string          `json:"accountId"`
	DebitAmount          decimal.Decimal `json:"debitAmount"`
	CreditAmount         decimal.Decimal `json:"creditAmount"`
	CurrencyCode         string          `json:"currency"`
	ExchangeRate         decimal.Decimal `json:"exchangeRate"`
	AmountInBaseCurrency decimal.Decimal `json:"amountInBaseCurrency"`
	Description          string          `json:"description,omitempty"`
}

// JournalEntryResponse mirrors domain.JournalEntry.
type JournalEntryResponse struct {
	EntryID         string                `json:"id"`
	EntryNumber     string                `json:"entryNumber,omitempty"`
	Date            string                `json:"date"`
	Description     string                `json:"description"`
	Reference       string                `json:"reference,omitempty"`
	Type            domain.EntryType      `json:"type"`
	Status          domain.EntryStatus    `json:"status"`
	BaseCurrency    string                `json:"baseCurrency"`
	Lines           []JournalLineResponse `json:"lines"`
	TotalDebit      decimal.Decimal       `json:"totalDebit"`
	TotalCredit     decimal.Decimal       `json:"totalCredit"`
	ReversesEntryID string                `json:"reversesEntryId,omitempty"`
	PostedAt        *time.Time            `json:"postedAt,omitempty"`
	ApprovedBy      string                `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time            `json:"approvedAt,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	CreatedBy       string                `json:"createdBy"`
	LastUpdatedAt   time.Time             `json:"lastUpdatedAt"`
	LastUpdatedBy   string                `json:"lastUpdatedBy"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to its DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			AccountID:            l.AccountID,
			DebitAmount:          l.DebitAmount,
			CreditAmount:         l.CreditAmount,
			CurrencyCode:         l.CurrencyCode,
			ExchangeRate:         l.ExchangeRate,
			AmountInBaseCurrency: l.AmountInBaseCurrency,
			Description:          l.Description,
		}
	}
	return JournalEntryResponse{
		EntryID:         e.EntryID,
		EntryNumber:     e.EntryNumber,
		Date:            e.Date.Format(domain.DateLayout),
		Description:     e.Description,
		Reference:       e.Reference,
		Type:            e.Type,
		Status:          e.Status,
		BaseCurrency:    e.BaseCurrency,
		Lines:           lines,
		TotalDebit:      e.TotalDebit,
		TotalCredit:     e.TotalCredit,
		ReversesEntryID: e.ReversesEntryID,
		PostedAt:        e.PostedAt,
		ApprovedBy:      e.ApprovedBy,
		ApprovedAt:      e.ApprovedAt,
		CreatedAt:       e.CreatedAt,
		CreatedBy:       e.CreatedBy,
		LastUpdatedAt:   e.LastUpdatedAt,
		LastUpdatedBy:   e.LastUpdatedBy,
	}
}

// ListJournalEntriesParams defines query parameters for paging through the ledger.
type ListJournalEntriesParams struct {
	FromDate  string `form:"fromDate" binding:"omitempty,ledgerdate"`
	ToDate    string `form:"toDate" binding:"omitempty,ledgerdate"`
	AccountID string `form:"accountId"`
	Limit     int    `form:"limit,default=20" binding:"min=1,max=200"`
	NextToken string `form:"nextToken"`
}

// StreamEntriesParams selects the ledger slice written by GET /ledger/entries.
// Missing bounds default to the start of the ledger and today.
type StreamEntriesParams struct {
	FromDate  string `form:"fromDate" binding:"omitempty,ledgerdate"`
	ToDate    string `form:"toDate" binding:"omitempty,ledgerdate"`
	AccountID string `form:"accountId"`
}

// ListJournalEntriesResponse is one page of ledger entries.
type ListJournalEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ValidateJournalEntryResponse reports a dry-run of the posting rules.
type ValidateJournalEntryResponse struct {
	Valid       bool                 `json:"valid"`
	TotalDebit  decimal.Decimal      `json:"totalDebit"`
	TotalCredit decimal.Decimal      `json:"totalCredit"`
	Entry       JournalEntryResponse `json:"entry"`
}
