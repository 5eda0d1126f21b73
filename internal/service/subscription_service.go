package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/asta-dev/fintech-sandbox/internal/domain"
	"github.com/asta-dev/fintech-sandbox/internal/repository"
	apperrors "github.com/asta-dev/fintech-sandbox/pkg/util"
)

// SubscriptionService exposes subscription reads and developer-level
// administration. Subscription creation happens only through billing events.
type SubscriptionService struct {
	subs repository.SubscriptionRepository
}

// NewSubscriptionService builds the service.
func NewSubscriptionService(subs repository.SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{subs: subs}
}

// ListMine returns all subscriptions belonging to the user.
func (s *SubscriptionService) ListMine(ctx context.Context, userID uuid.UUID) ([]domain.Subscription, error) {
	subs, err := s.subs.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return subs, nil
}

// Active returns the user's current active subscription.
func (s *SubscriptionService) Active(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	sub, err := s.subs.GetActiveByUser(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("subscription", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return sub, nil
}

// Filter searches subscriptions by status and date range. Developer level.
func (s *SubscriptionService) Filter(ctx context.Context, filter domain.SubscriptionFilter) ([]domain.Subscription, error) {
	subs, err := s.subs.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return subs, nil
}

// Update applies a patch to a subscription. Developer level.
func (s *SubscriptionService) Update(ctx context.Context, id uuid.UUID, patch domain.SubscriptionPatch) (*domain.Subscription, error) {
	sub, err := s.subs.ApplyPatch(ctx, id, patch)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("subscription", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return sub, nil
}
