package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/asta-dev/fintech-sandbox/internal/auth"
	"github.com/asta-dev/fintech-sandbox/internal/domain"
	"github.com/asta-dev/fintech-sandbox/internal/events"
	"github.com/asta-dev/fintech-sandbox/internal/repository"
	apperrors "github.com/asta-dev/fintech-sandbox/pkg/util"
)

// TransferService orchestrates transfers between ledger accounts and exposes
// the transaction history projection.
type TransferService struct {
	accounts     repository.AccountRepository
	users        repository.UserRepository
	transfers    repository.TransferStore
	transactions repository.TransactionRepository
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// TransferDependencies encapsulates requirements for the transfer service.
type TransferDependencies struct {
	AccountRepo     repository.AccountRepository
	UserRepo        repository.UserRepository
	TransferStore   repository.TransferStore
	TransactionRepo repository.TransactionRepository
	Dispatcher      events.Dispatcher
}

// NewTransferService builds the service.
func NewTransferService(deps TransferDependencies, logger *zap.Logger) *TransferService {
	return &TransferService{
		accounts:     deps.AccountRepo,
		users:        deps.UserRepo,
		transfers:    deps.TransferStore,
		transactions: deps.TransactionRepo,
		dispatcher:   deps.Dispatcher,
		logger:       logger,
	}
}

// Transfer moves amount from the caller's account to the receiver account
// and records the completed transaction. The pre-checks here are advisory;
// the transfer store re-validates everything against locked rows, so a
// failure at any step leaves both balances and the log untouched.
func (s *TransferService) Transfer(ctx context.Context, claim auth.Claim, receiverAccountID uuid.UUID, amount int64) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.NewValidationError("transfer amount must be positive", nil)
	}

	sender, err := s.accounts.GetByOwner(ctx, claim.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("sender account", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if sender.Balance < amount {
		return nil, apperrors.NewInsufficientFunds("insufficient balance for transfer")
	}

	receiver, err := s.accounts.GetByID(ctx, receiverAccountID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("receiver account", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if receiver.ID == sender.ID {
		return nil, apperrors.NewValidationError("cannot transfer to own account", nil)
	}

	receiverOwner, err := s.users.GetByID(ctx, receiver.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("receiver account", nil)
		}
		return nil, apperrors.MapError(err)
	}

	transfer := &domain.Transaction{
		SenderAccountID:   sender.ID,
		ReceiverAccountID: receiver.ID,
		SenderUsername:    claim.Username,
		ReceiverUsername:  receiverOwner.Username,
		Amount:            amount,
		Status:            domain.TransactionStatusCompleted,
	}

	if err := s.transfers.Execute(ctx, transfer); err != nil {
		return nil, mapTransferError(err)
	}

	s.logger.Info("transfer completed",
		zap.String("transaction_id", transfer.ID.String()),
		zap.String("sender_account_id", sender.ID.String()),
		zap.String("receiver_account_id", receiver.ID.String()),
		zap.Int64("amount", amount))

	_ = s.dispatcher.Publish(ctx, events.New(events.EventTransferCompleted, transfer.ID.String(),
		events.TransferCompletedPayload{
			TransactionID:     transfer.ID,
			SenderAccountID:   sender.ID,
			ReceiverAccountID: receiver.ID,
			Amount:            amount,
			Currency:          sender.Currency,
		}))

	return transfer, nil
}

// ListTransactions returns the history for an account owned by the caller,
// most recent first.
func (s *TransferService) ListTransactions(ctx context.Context, claim auth.Claim, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	account, err := s.accounts.GetByID(ctx, filter.AccountID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("account", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if account.UserID != claim.UserID {
		return nil, apperrors.NewNotFound("account", nil)
	}

	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	transactions, err := s.transactions.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return transactions, nil
}

func mapTransferError(err error) error {
	switch {
	case errors.Is(err, repository.ErrInsufficientFunds):
		return apperrors.NewInsufficientFunds("insufficient balance for transfer")
	case errors.Is(err, repository.ErrAccountNotActive):
		return apperrors.NewConflict("account is not active", nil)
	case errors.Is(err, repository.ErrCurrencyMismatch):
		return apperrors.NewValidationError("accounts hold different currencies", nil)
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound("account", nil)
	default:
		return apperrors.NewUnavailable("transfer could not be processed", err)
	}
}
