package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asta-dev/fintech-sandbox/internal/domain"
)

// SubscriptionRepository encapsulates subscription persistence.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error)
	GetBySourceID(ctx context.Context, sourceID string) (*domain.Subscription, error)
	GetActiveByUser(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Subscription, error)
	CancelActiveByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	ListWithFilter(ctx context.Context, filter domain.SubscriptionFilter) ([]domain.Subscription, error)
	ApplyPatch(ctx context.Context, id uuid.UUID, patch domain.SubscriptionPatch) (*domain.Subscription, error)
}

type subscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepository returns a Postgres-backed implementation.
func NewSubscriptionRepository(pool *pgxpool.Pool) SubscriptionRepository {
	return &subscriptionRepository{pool: pool}
}

const subscriptionColumns = `id, user_id, source_id, currency, amount, started_at, ended_at, status, created_at`

func (r *subscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	const query = `
        INSERT INTO subscriptions (user_id, source_id, currency, amount, started_at, ended_at, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		sub.UserID,
		sub.SourceID,
		sub.Currency,
		sub.Amount,
		sub.StartedAt,
		sub.EndedAt,
		sub.Status,
	).Scan(&sub.ID, &sub.CreatedAt)
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	const query = `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *subscriptionRepository) GetBySourceID(ctx context.Context, sourceID string) (*domain.Subscription, error) {
	const query = `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE source_id=$1`
	return r.fetchSingle(ctx, query, sourceID)
}

func (r *subscriptionRepository) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	const query = `
        SELECT ` + subscriptionColumns + `
        FROM subscriptions WHERE user_id=$1 AND status='Active'
        ORDER BY started_at DESC LIMIT 1`
	return r.fetchSingle(ctx, query, userID)
}

func (r *subscriptionRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Subscription, error) {
	var sub domain.Subscription
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&sub.ID,
		&sub.UserID,
		&sub.SourceID,
		&sub.Currency,
		&sub.Amount,
		&sub.StartedAt,
		&sub.EndedAt,
		&sub.Status,
		&sub.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Subscription, error) {
	const query = `
        SELECT ` + subscriptionColumns + `
        FROM subscriptions WHERE user_id=$1
        ORDER BY started_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

// CancelActiveByUser is part of the explicit account-closure cleanup routine.
func (r *subscriptionRepository) CancelActiveByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	const query = `UPDATE subscriptions SET status='Cancelled' WHERE user_id=$1 AND status='Active'`
	cmd, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *subscriptionRepository) ListWithFilter(ctx context.Context, filter domain.SubscriptionFilter) ([]domain.Subscription, error) {
	base := `SELECT ` + subscriptionColumns + ` FROM subscriptions`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		clauses = append(clauses, fmt.Sprintf("started_at >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		clauses = append(clauses, fmt.Sprintf("ended_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY started_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

func (r *subscriptionRepository) ApplyPatch(ctx context.Context, id uuid.UUID, patch domain.SubscriptionPatch) (*domain.Subscription, error) {
	const query = `
        UPDATE subscriptions
        SET status = COALESCE($1, status), ended_at = COALESCE($2, ended_at)
        WHERE id=$3
        RETURNING ` + subscriptionColumns

	var sub domain.Subscription
	if err := r.pool.QueryRow(ctx, query, patch.Status, patch.EndedAt, id).Scan(
		&sub.ID,
		&sub.UserID,
		&sub.SourceID,
		&sub.Currency,
		&sub.Amount,
		&sub.StartedAt,
		&sub.EndedAt,
		&sub.Status,
		&sub.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &sub, nil
}

func scanSubscriptions(rows pgx.Rows) ([]domain.Subscription, error) {
	var result []domain.Subscription
	for rows.Next() {
		var sub domain.Subscription
		if err := rows.Scan(
			&sub.ID,
			&sub.UserID,
			&sub.SourceID,
			&sub.Currency,
			&sub.Amount,
			&sub.StartedAt,
			&sub.EndedAt,
			&sub.Status,
			&sub.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, sub)
	}
	return result, rows.Err()
}
