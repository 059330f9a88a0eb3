package services

import (
	"context"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/spice_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/spice_ledger/internal/core/ports/services"
)

type activityService struct {
	BaseService
	repo portsrepo.ActivityFeedRepository
}

// NewActivityService reads the archived event feed.
func NewActivityService(repo portsrepo.ActivityFeedRepository) portssvc.ActivitySvc {
	return &activityService{repo: repo}
}

// RecordingListener archives every event it receives.
func RecordingListener(repo portsrepo.ActivityFeedRepository) domain.EventListener {
	return repo.RecordEvent
}

func (s *activityService) ListRecentActivity(ctx context.Context, limit int) ([]domain.FinancialEvent, error) {
	events, err := s.repo.ListRecentEvents(ctx, limit)
	if err != nil {
		s.LogError(ctx, err, "Failed to list activity")
		return nil, err
	}
	if events == nil {
		return []domain.FinancialEvent{}, nil
	}
	return events, nil
}
