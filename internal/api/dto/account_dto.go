package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/asta-dev/fintech-sandbox/internal/domain"
)

// TransferRequest moves money to another account. Amount is in minor units.
type TransferRequest struct {
	ReceiverAccountID uuid.UUID `json:"receiver_account_id"`
	TransferAmount    int64     `json:"transfer_amount"`
}

// AccountUpdateRequest patches an account. Absent fields stay unchanged.
type AccountUpdateRequest struct {
	Currency *string `json:"currency"`
	Status   *string `json:"status"`
}

// AccountResponse is the full projection of an account.
type AccountResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Currency    string    `json:"currency"`
	Balance     int64     `json:"balance"`
	Status      string    `json:"status"`
	LastUpdated time.Time `json:"last_updated"`
}

// BalanceResponse is the balance-only projection.
type BalanceResponse struct {
	Currency    string    `json:"currency"`
	Balance     int64     `json:"balance"`
	LastUpdated time.Time `json:"last_updated"`
}

// TransactionResponse is one record of the transaction history.
type TransactionResponse struct {
	ID                uuid.UUID `json:"id"`
	SenderAccountID   uuid.UUID `json:"sender_account_id"`
	ReceiverAccountID uuid.UUID `json:"receiver_account_id"`
	SenderUsername    string    `json:"sender_username"`
	ReceiverUsername  string    `json:"receiver_username"`
	TransferAmount    int64     `json:"transfer_amount"`
	MadeAt            time.Time `json:"made_at"`
	Status            string    `json:"status"`
}

// NewAccountResponse maps the domain model.
func NewAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:          account.ID,
		UserID:      account.UserID,
		Currency:    account.Currency,
		Balance:     account.Balance,
		Status:      string(account.Status),
		LastUpdated: account.LastUpdated,
	}
}

// NewBalanceResponse maps the domain model.
func NewBalanceResponse(account *domain.Account) BalanceResponse {
	return BalanceResponse{
		Currency:    account.Currency,
		Balance:     account.Balance,
		LastUpdated: account.LastUpdated,
	}
}

// NewTransactionResponse maps the domain model.
func NewTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                txn.ID,
		SenderAccountID:   txn.SenderAccountID,
		ReceiverAccountID: txn.ReceiverAccountID,
		SenderUsername:    txn.SenderUsername,
		ReceiverUsername:  txn.ReceiverUsername,
		TransferAmount:    txn.Amount,
		MadeAt:            txn.MadeAt,
		Status:            string(txn.Status),
	}
}
