package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/asta-dev/fintech-sandbox/internal/domain"
)

// SubscriptionUpdateRequest patches a subscription. Absent fields stay
// unchanged.
type SubscriptionUpdateRequest struct {
	Status  *string    `json:"status"`
	EndedAt *time.Time `json:"ended_at"`
}

// SubscriptionResponse is the public projection of a subscription.
type SubscriptionResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	SourceID  string    `json:"source_id"`
	Currency  string    `json:"currency"`
	Amount    int64     `json:"amount"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Status    string    `json:"status"`
}

// NewSubscriptionResponse maps the domain model.
func NewSubscriptionResponse(sub *domain.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:        sub.ID,
		UserID:    sub.UserID,
		SourceID:  sub.SourceID,
		Currency:  sub.Currency,
		Amount:    sub.Amount,
		StartedAt: sub.StartedAt,
		EndedAt:   sub.EndedAt,
		Status:    string(sub.Status),
	}
}

// CheckoutRequest starts a checkout for a pricing plan.
type CheckoutRequest struct {
	PriceID string `json:"price_id"`
}

// CheckoutSessionResponse returns the provider-hosted checkout URL.
type CheckoutSessionResponse struct {
	URL string `json:"url"`
}

// WebhookResponse acknowledges a processed webhook.
type WebhookResponse struct {
	Status string `json:"status"`
}
