package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asta-dev/fintech-sandbox/internal/domain"
)

// RoleRepository manages the roles table backing the access hierarchy.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.RoleRecord) error
	ApplyPatch(ctx context.Context, patch domain.RolePatch) (*domain.RoleRecord, error)
	Delete(ctx context.Context, ids []int) (int64, error)
	List(ctx context.Context) ([]domain.RoleRecord, error)
	GetByPosition(ctx context.Context, position domain.Role) (*domain.RoleRecord, error)
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository returns a Postgres-backed implementation.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) Create(ctx context.Context, role *domain.RoleRecord) error {
	const query = `
        INSERT INTO roles (level, position)
        VALUES ($1, $2)
        RETURNING id`
	return r.pool.QueryRow(ctx, query, role.Level, role.Position).Scan(&role.ID)
}

func (r *roleRepository) ApplyPatch(ctx context.Context, patch domain.RolePatch) (*domain.RoleRecord, error) {
	const query = `
        UPDATE roles
        SET level = COALESCE($1, level), position = COALESCE($2, position)
        WHERE id=$3
        RETURNING id, level, position`

	var role domain.RoleRecord
	if err := r.pool.QueryRow(ctx, query, patch.Level, patch.Position, patch.ID).Scan(
		&role.ID,
		&role.Level,
		&role.Position,
	); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) Delete(ctx context.Context, ids []int) (int64, error) {
	const query = `DELETE FROM roles WHERE id = ANY($1)`
	cmd, err := r.pool.Exec(ctx, query, ids)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *roleRepository) List(ctx context.Context) ([]domain.RoleRecord, error) {
	const query = `SELECT id, level, position FROM roles ORDER BY level`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RoleRecord
	for rows.Next() {
		var role domain.RoleRecord
		if err := rows.Scan(&role.ID, &role.Level, &role.Position); err != nil {
			return nil, err
		}
		result = append(result, role)
	}
	return result, rows.Err()
}

func (r *roleRepository) GetByPosition(ctx context.Context, position domain.Role) (*domain.RoleRecord, error) {
	const query = `SELECT id, level, position FROM roles WHERE position=$1`

	var role domain.RoleRecord
	if err := r.pool.QueryRow(ctx, query, position).Scan(&role.ID, &role.Level, &role.Position); err != nil {
		return nil, err
	}
	return &role, nil
}
