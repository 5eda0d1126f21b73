package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus represents billing lifecycle states.
type SubscriptionStatus string

const (
	SubscriptionStatusProcessing SubscriptionStatus = "Processing"
	SubscriptionStatusActive     SubscriptionStatus = "Active"
	SubscriptionStatusCancelled  SubscriptionStatus = "Cancelled"
	SubscriptionStatusEnded      SubscriptionStatus = "Ended"
)

// Subscription records one paid billing period for a user. SourceID is the
// identifier assigned by the billing provider.
type Subscription struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	SourceID  string
	Currency  string
	Amount    int64
	StartedAt time.Time
	EndedAt   time.Time
	Status    SubscriptionStatus
	CreatedAt time.Time
}

// SubscriptionPatch names exactly the fields present in an update.
// Nil means unchanged.
type SubscriptionPatch struct {
	Status  *SubscriptionStatus
	EndedAt *time.Time
}

// SubscriptionFilter captures admin search parameters.
type SubscriptionFilter struct {
	Status    *SubscriptionStatus
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}
