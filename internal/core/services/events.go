package services

import (
	"fmt"
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
	"github.com/google/uuid"
)

func newEvent(eventType domain.EventType, title, description string, at time.Time, data map[string]any) domain.FinancialEvent {
	return domain.FinancialEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		Title:       title,
		Description: description,
		Data:        data,
		CreatedAt:   at,
	}
}

func journalEventData(e domain.JournalEntry, userID string) map[string]any {
	return map[string]any{
		"entryId":      e.EntryID,
		"entryNumber":  e.EntryNumber,
		"date":         e.Date.Format(domain.DateLayout),
		"type":         string(e.Type),
		"status":       string(e.Status),
		"baseCurrency": e.BaseCurrency,
		"totalDebit":   e.TotalDebit.String(),
		"totalCredit":  e.TotalCredit.String(),
		"lineCount":    len(e.Lines),
		"userId":       userID,
	}
}

func journalPostedEvent(e domain.JournalEntry, userID string, at time.Time) domain.FinancialEvent {
	return newEvent(domain.EventJournalPosted,
		"Journal entry posted",
		fmt.Sprintf("%s posted: %s (%s %s)", e.EntryNumber, e.Description, e.TotalDebit.String(), e.BaseCurrency),
		at, journalEventData(e, userID))
}

func journalApprovedEvent(e domain.JournalEntry, userID string, at time.Time) domain.FinancialEvent {
	return newEvent(domain.EventJournalApproved,
		"Journal entry approved",
		fmt.Sprintf("%s approved by %s", e.EntryNumber, userID),
		at, journalEventData(e, userID))
}

func journalReversedEvent(original, reversal domain.JournalEntry, userID string, at time.Time) domain.FinancialEvent {
	data := journalEventData(reversal, userID)
	data["reversesEntryId"] = original.EntryID
	data["reversesEntryNumber"] = original.EntryNumber
	return newEvent(domain.EventJournalReversed,
		"Journal entry reversed",
		fmt.Sprintf("%s reversed by %s", original.EntryNumber, reversal.EntryNumber),
		at, data)
}

func draftCancelledEvent(d domain.JournalEntry, userID string, at time.Time) domain.FinancialEvent {
	return newEvent(domain.EventDraftCancelled,
		"Draft cancelled",
		fmt.Sprintf("draft %s cancelled: %s", d.EntryID, d.Description),
		at, journalEventData(d, userID))
}

func accountEventData(a domain.Account, userID string) map[string]any {
	return map[string]any{
		"accountId": a.AccountID,
		"code":      a.Code,
		"name":      a.Name,
		"type":      string(a.AccountType),
		"currency":  a.CurrencyCode,
		"userId":    userID,
	}
}

func accountCreatedEvent(a domain.Account, userID string, at time.Time) domain.FinancialEvent {
	return newEvent(domain.EventAccountCreated,
		"Account created",
		fmt.Sprintf("account %s %s created", a.Code, a.Name),
		at, accountEventData(a, userID))
}

func accountDeactivatedEvent(a domain.Account, userID string, at time.Time) domain.FinancialEvent {
	return newEvent(domain.EventAccountDeactivated,
		"Account deactivated",
		fmt.Sprintf("account %s %s deactivated", a.Code, a.Name),
		at, accountEventData(a, userID))
}
