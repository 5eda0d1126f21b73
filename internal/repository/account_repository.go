package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asta-dev/fintech-sandbox/internal/domain"
)

// Sentinel errors surfaced by ledger mutations. Callers translate them into
// client-facing error kinds at the service boundary.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountNotActive  = errors.New("account not active")
	ErrCurrencyMismatch  = errors.New("currency mismatch")
)

// AccountRepository owns read and patch access to accounts. Balance writes go
// only through debitAccount and creditAccount, which the transfer store runs
// inside its transaction.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Account, error)
	ApplyPatch(ctx context.Context, id uuid.UUID, patch domain.AccountPatch) (*domain.Account, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const accountColumns = `id, user_id, currency, balance, status, last_updated`

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (user_id, currency, balance, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, last_updated`

	return r.pool.QueryRow(ctx, query,
		account.UserID,
		account.Currency,
		account.Balance,
		account.Status,
	).Scan(&account.ID, &account.LastUpdated)
}

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *accountRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE user_id=$1`
	return r.fetchSingle(ctx, query, ownerID)
}

func (r *accountRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var account domain.Account
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
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

func (r *accountRepository) ApplyPatch(ctx context.Context, id uuid.UUID, patch domain.AccountPatch) (*domain.Account, error) {
	const query = `
        UPDATE accounts
        SET currency = COALESCE($1, currency), status = COALESCE($2, status), last_updated = NOW()
        WHERE id=$3
        RETURNING ` + accountColumns

	var account domain.Account
	if err := r.pool.QueryRow(ctx, query, patch.Currency, patch.Status, id).Scan(
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

// execQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, so the balance
// mutations below can run inside the transfer store's transaction.
type execQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// debitAccount decrements the balance in a single conditional update. The
// balance check and the write are one statement, so two concurrent debits can
// never both pass against a stale balance.
func debitAccount(ctx context.Context, db execQuerier, id uuid.UUID, amount int64) error {
	const query = `
        UPDATE accounts
        SET balance = balance - $1, last_updated = NOW()
        WHERE id=$2 AND status='Active' AND balance >= $1`

	cmd, err := db.Exec(ctx, query, amount, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return classifyDebitFailure(ctx, db, id)
	}
	return nil
}

// creditAccount increments the balance unless the account is closed.
func creditAccount(ctx context.Context, db execQuerier, id uuid.UUID, amount int64) error {
	const query = `
        UPDATE accounts
        SET balance = balance + $1, last_updated = NOW()
        WHERE id=$2 AND status <> 'Closed'`

	cmd, err := db.Exec(ctx, query, amount, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return classifyCreditFailure(ctx, db, id)
	}
	return nil
}

// classifyDebitFailure distinguishes why a conditional debit matched no row.
// The re-read can observe a balance a concurrent writer has already changed,
// so an existing Active row always classifies as insufficient funds: that was
// the state when the update ran, even if the balance has grown since.
func classifyDebitFailure(ctx context.Context, q execQuerier, id uuid.UUID) error {
	var status domain.AccountStatus
	err := q.QueryRow(ctx, `SELECT status FROM accounts WHERE id=$1`, id).Scan(&status)
	if err != nil {
		return err
	}
	if status != domain.AccountStatusActive {
		return ErrAccountNotActive
	}
	return ErrInsufficientFunds
}

// classifyCreditFailure reports why a credit matched no row. If the row
// exists at all, the account was closed when the update ran.
func classifyCreditFailure(ctx context.Context, q execQuerier, id uuid.UUID) error {
	var status domain.AccountStatus
	if err := q.QueryRow(ctx, `SELECT status FROM accounts WHERE id=$1`, id).Scan(&status); err != nil {
		return err
	}
	return ErrAccountNotActive
}
