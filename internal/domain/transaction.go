package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionStatus represents the terminal state of a transfer record.
type TransactionStatus string

const (
	TransactionStatusProcessing TransactionStatus = "Processing"
	TransactionStatusCompleted  TransactionStatus = "Completed"
	TransactionStatusCanceled   TransactionStatus = "Canceled"
	TransactionStatusRejected   TransactionStatus = "Rejected"
)

// Transaction is the immutable record of one completed transfer. Usernames
// are denormalized at transfer time and never updated afterwards.
type Transaction struct {
	ID                uuid.UUID
	SenderAccountID   uuid.UUID
	ReceiverAccountID uuid.UUID
	SenderUsername    string
	ReceiverUsername  string
	Amount            int64
	MadeAt            time.Time
	Status            TransactionStatus
}

// TransactionFilter captures history query parameters. Date bounds are
// inclusive on both sides.
type TransactionFilter struct {
	AccountID uuid.UUID
	DateFrom  *time.Time
	DateTill  *time.Time
	Limit     int
	Offset    int
}
