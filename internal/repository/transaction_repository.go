package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asta-dev/fintech-sandbox/internal/domain"
)

// TransactionRepository provides read access to the append-only transaction
// log. Records are written only by the TransferStore.
type TransactionRepository interface {
	List(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error)
}

type transactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository returns a Postgres-backed implementation.
func NewTransactionRepository(pool *pgxpool.Pool) TransactionRepository {
	return &transactionRepository{pool: pool}
}

func (r *transactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	base := `SELECT id, sender_account_id, receiver_account_id, sender_username, receiver_username,
                    transfer_amount, made_at, status
             FROM transactions`

	args := []any{filter.AccountID}
	clauses := []string{"(sender_account_id=$1 OR receiver_account_id=$1)"}

	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		clauses = append(clauses, fmt.Sprintf("made_at >= $%d", len(args)))
	}
	if filter.DateTill != nil {
		args = append(args, *filter.DateTill)
		clauses = append(clauses, fmt.Sprintf("made_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY made_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func scanTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	var result []domain.Transaction
	for rows.Next() {
		var txn domain.Transaction
		if err := rows.Scan(
			&txn.ID,
			&txn.SenderAccountID,
			&txn.ReceiverAccountID,
			&txn.SenderUsername,
			&txn.ReceiverUsername,
			&txn.Amount,
			&txn.MadeAt,
			&txn.Status,
		); err != nil {
			return nil, err
		}
		result = append(result, txn)
	}
	return result, rows.Err()
}
