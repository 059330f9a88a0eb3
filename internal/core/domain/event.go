package domain

import (
	"context"
	"time"
)

// EventType names a ledger notification.
type EventType string

const (
	EventAccountCreated     EventType = "account.created"
	EventAccountDeactivated EventType = "account.deactivated"
	EventJournalPosted      EventType = "journal.posted"
	EventJournalApproved    EventType = "journal.approved"
	EventJournalReversed    EventType = "journal.reversed"
	EventDraftCancelled     EventType = "draft.cancelled"
)

// FinancialEvent is delivered to listeners after a ledger change commits.
// Data values are strings or plain scalars so every sink can encode them.
type FinancialEvent struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// EventListener receives events. Returning an error requests a redelivery.
type EventListener func(ctx context.Context, event FinancialEvent) error
