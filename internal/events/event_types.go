package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/asta-dev/fintech-sandbox/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTransferCompleted     EventType = "transfer_completed"
	EventAccountStatusChanged  EventType = "account_status_changed"
	EventSubscriptionActivated EventType = "subscription_activated"
	EventSubscriptionCanceled  EventType = "subscription_canceled"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New builds an event with a fresh id and timestamp.
func New(eventType EventType, subjectID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// TransferCompletedPayload payload.
type TransferCompletedPayload struct {
	TransactionID     uuid.UUID `json:"transaction_id"`
	SenderAccountID   uuid.UUID `json:"sender_account_id"`
	ReceiverAccountID uuid.UUID `json:"receiver_account_id"`
	Amount            int64     `json:"amount"`
	Currency          string    `json:"currency"`
}

// AccountStatusChangedPayload payload.
type AccountStatusChangedPayload struct {
	OldStatus domain.AccountStatus `json:"old_status"`
	NewStatus domain.AccountStatus `json:"new_status"`
}

// SubscriptionActivatedPayload payload.
type SubscriptionActivatedPayload struct {
	UserID   uuid.UUID `json:"user_id"`
	SourceID string    `json:"source_id"`
	Amount   int64     `json:"amount"`
	Currency string    `json:"currency"`
}

// SubscriptionCanceledPayload payload.
type SubscriptionCanceledPayload struct {
	SourceID string `json:"source_id"`
}
