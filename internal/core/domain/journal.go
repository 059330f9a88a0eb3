package domain

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus is the lifecycle state of a journal entry.
type EntryStatus string

const (
	StatusDraft     EntryStatus = "draft"
	StatusPosted    EntryStatus = "posted"
	StatusApproved  EntryStatus = "approved"
	StatusCancelled EntryStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s EntryStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPosted, StatusApproved, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo encodes draft->posted, draft->cancelled and posted->approved.
func (s EntryStatus) CanTransitionTo(next EntryStatus) bool {
	switch s {
	case StatusDraft:
		return next == StatusPosted || next == StatusCancelled
	case StatusPosted:
		return next == StatusApproved
	}
	return false
}

// InLedger reports whether entries in this status contribute to balances.
func (s EntryStatus) InLedger() bool {
	return s == StatusPosted || s == StatusApproved
}

// EntryType classifies why an entry was recorded.
type EntryType string

const (
	EntryNormal     EntryType = "normal"
	EntryAdjustment EntryType = "adjustment"
	EntryOpening    EntryType = "opening"
	EntryClosing    EntryType = "closing"
)

// ParseEntryType maps an empty string to EntryNormal and rejects unknown values.
func ParseEntryType(s string) (EntryType, error) {
	if s == "" {
		return EntryNormal, nil
	}
	t := EntryType(s)
	switch t {
	case EntryNormal, EntryAdjustment, EntryOpening, EntryClosing:
		return t, nil
	}
	return "", fmt.Errorf("unknown entry type %q", s)
}

// EntryNumberFormat renders sequence values as JE-000001.
const EntryNumberFormat = "JE-%06d"

// FormatEntryNumber renders a sequence value.
func FormatEntryNumber(seq int64) string {
	return fmt.Sprintf(EntryNumberFormat, seq)
}

// CompareEntryNumbers orders shorter numbers first and equal lengths bytewise,
// so JE-999999 sorts before JE-1000000.
func CompareEntryNumbers(a, b string) int {
	if len(a) != len(b) {
		return cmp.Compare(len(a), len(b))
	}
	return strings.Compare(a, b)
}

// JournalEntry is a dated, balanced set of account lines.
type JournalEntry struct {
	EntryID         string          `json:"id"`
	EntryNumber     string          `json:"entryNumber,omitempty"`
	Date            time.Time       `json:"date"`
	Description     string          `json:"description"`
	Reference       string          `json:"reference,omitempty"`
	Type            EntryType       `json:"type"`
	Status          EntryStatus     `json:"status"`
	BaseCurrency    string          `json:"baseCurrency"`
	Lines           []AccountEntry  `json:"lines"`
	TotalDebit      decimal.Decimal `json:"totalDebit"`
	TotalCredit     decimal.Decimal `json:"totalCredit"`
	ReversesEntryID string          `json:"reversesEntryId,omitempty"`
	PostedAt        *time.Time      `json:"postedAt,omitempty"`
	ApprovedBy      string          `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time      `json:"approvedAt,omitempty"`
	AuditFields
}

// AccountIDs returns the account of every line, in line order.
func (e JournalEntry) AccountIDs() []string {
	ids := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		ids[i] = l.AccountID
	}
	return ids
}

// References reports whether any line targets accountID.
func (e JournalEntry) References(accountID string) bool {
	for _, l := range e.Lines {
		if l.AccountID == accountID {
			return true
		}
	}
	return false
}

// Clone copies the entry so the lines slice is not shared.
func (e JournalEntry) Clone() JournalEntry {
	lines := make([]AccountEntry, len(e.Lines))
	copy(lines, e.Lines)
	e.Lines = lines
	return e
}

// Before orders entries by (Date, EntryNumber).
func (e JournalEntry) Before(other JournalEntry) bool {
	if !e.Date.Equal(other.Date) {
		return e.Date.Before(other.Date)
	}
	return e.EntryNumber < other.EntryNumber
}
