package services

import (
	"context"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
)

// EventDispatcher fans ledger events out to listeners.
type EventDispatcher interface {
	// AddEventListener registers a listener and returns a function that removes it.
	AddEventListener(listener domain.EventListener) (remove func())

	// Dispatch hands the event to every listener without waiting for delivery.
	Dispatch(ctx context.Context, event domain.FinancialEvent)
}

// ActivitySvc reads the archived event feed.
type ActivitySvc interface {
	ListRecentActivity(ctx context.Context, limit int) ([]domain.FinancialEvent, error)
}
