package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/asta-dev/fintech-sandbox/internal/domain"
	"github.com/asta-dev/fintech-sandbox/internal/repository"
	apperrors "github.com/asta-dev/fintech-sandbox/pkg/util"
)

// RoleService manages the persisted role tiers. Mutations are admin-only and
// restricted to the closed role set.
type RoleService struct {
	roles repository.RoleRepository
}

// NewRoleService builds the service.
func NewRoleService(roles repository.RoleRepository) *RoleService {
	return &RoleService{roles: roles}
}

// List returns all role tiers ordered by level.
func (s *RoleService) List(ctx context.Context) ([]domain.RoleRecord, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return roles, nil
}

// Create inserts new role tiers.
func (s *RoleService) Create(ctx context.Context, records []domain.RoleRecord) ([]domain.RoleRecord, error) {
	created := make([]domain.RoleRecord, 0, len(records))
	for _, record := range records {
		if !record.Position.Known() {
			return nil, apperrors.NewValidationError("invalid role position", map[string]any{"position": string(record.Position)})
		}
		role := record
		if err := s.roles.Create(ctx, &role); err != nil {
			return nil, apperrors.MapError(err)
		}
		created = append(created, role)
	}
	return created, nil
}

// Update applies patches to existing role tiers.
func (s *RoleService) Update(ctx context.Context, patches []domain.RolePatch) ([]domain.RoleRecord, error) {
	updated := make([]domain.RoleRecord, 0, len(patches))
	for _, patch := range patches {
		if patch.Position != nil && !patch.Position.Known() {
			return nil, apperrors.NewValidationError("invalid role position", map[string]any{"position": string(*patch.Position)})
		}
		role, err := s.roles.ApplyPatch(ctx, patch)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, apperrors.NewNotFound("role", map[string]any{"id": patch.ID})
			}
			return nil, apperrors.MapError(err)
		}
		updated = append(updated, *role)
	}
	return updated, nil
}

// Delete removes role tiers by id.
func (s *RoleService) Delete(ctx context.Context, ids []int) error {
	deleted, err := s.roles.Delete(ctx, ids)
	if err != nil {
		return apperrors.MapError(err)
	}
	if deleted == 0 {
		return apperrors.NewNotFound("roles", nil)
	}
	return nil
}
