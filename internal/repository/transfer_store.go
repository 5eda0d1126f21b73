package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asta-dev/fintech-sandbox/internal/domain"
)

// TransferStore executes a money transfer as one atomic unit of work: debit,
// credit and the transaction record all commit together or not at all.
type TransferStore interface {
	Execute(ctx context.Context, transfer *domain.Transaction) error
}

type pgTransferStore struct {
	pool *pgxpool.Pool
}

// NewTransferStore returns a Postgres-backed implementation.
func NewTransferStore(pool *pgxpool.Pool) TransferStore {
	return &pgTransferStore{pool: pool}
}

// Execute locks both account rows, re-validates the debit against the locked
// balance and appends the transaction record, all inside one transaction.
// Rows are locked in id order so two opposing transfers cannot deadlock.
func (s *pgTransferStore) Execute(ctx context.Context, transfer *domain.Transaction) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	first, second := transfer.SenderAccountID, transfer.ReceiverAccountID
	if second.String() < first.String() {
		first, second = second, first
	}

	accounts := make(map[uuid.UUID]*domain.Account, 2)
	for _, id := range []uuid.UUID{first, second} {
		account, err := lockAccount(ctx, tx, id)
		if err != nil {
			return err
		}
		accounts[id] = account
	}

	sender := accounts[transfer.SenderAccountID]
	receiver := accounts[transfer.ReceiverAccountID]

	if sender.Status != domain.AccountStatusActive || receiver.Status == domain.AccountStatusClosed {
		return ErrAccountNotActive
	}
	if sender.Currency != receiver.Currency {
		return ErrCurrencyMismatch
	}
	if sender.Balance < transfer.Amount {
		return ErrInsufficientFunds
	}

	// Debit first, then credit; both against the locked rows, through the
	// same conditional updates every balance write uses.
	if err := debitAccount(ctx, tx, sender.ID, transfer.Amount); err != nil {
		return err
	}
	if err := creditAccount(ctx, tx, receiver.ID, transfer.Amount); err != nil {
		return err
	}

	const insertQuery = `
        INSERT INTO transactions (sender_account_id, receiver_account_id, sender_username, receiver_username, transfer_amount, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, made_at`
	if err := tx.QueryRow(ctx, insertQuery,
		transfer.SenderAccountID,
		transfer.ReceiverAccountID,
		transfer.SenderUsername,
		transfer.ReceiverUsername,
		transfer.Amount,
		transfer.Status,
	).Scan(&transfer.ID, &transfer.MadeAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func lockAccount(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error) {
	const query = `
        SELECT id, user_id, currency, balance, status, last_updated
        FROM accounts WHERE id=$1
        FOR UPDATE`

	var account domain.Account
	if err := tx.QueryRow(ctx, query, id).Scan(
		&account.ID,
		&account.UserID,
		&account.Currency,
		&account.Balance,
		&account.Status,
		&account.LastUpdated,
	); err != nil {
		return nil, err
	}
	return &account, nil
}
