package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asta-dev/fintech-sandbox/internal/domain"
	apperrors "github.com/asta-dev/fintech-sandbox/pkg/util"
)

func TestRoleCreateRejectsUnknownPosition(t *testing.T) {
	svc := NewRoleService(newFakeRoleRepo())

	_, err := svc.Create(context.Background(), []domain.RoleRecord{{Level: 5, Position: domain.Role("Root")}})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestRoleUpdateUnknownIDIsNotFound(t *testing.T) {
	svc := NewRoleService(newFakeRoleRepo())

	level := 7
	_, err := svc.Update(context.Background(), []domain.RolePatch{{ID: 99, Level: &level}})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestRoleUpdateNilFieldsLeaveRoleUnchanged(t *testing.T) {
	repo := newFakeRoleRepo()
	svc := NewRoleService(repo)

	updated, err := svc.Update(context.Background(), []domain.RolePatch{{ID: 2}})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, domain.RoleDeveloper, updated[0].Position)
	assert.Equal(t, domain.LevelDeveloper, updated[0].Level)
}

func TestRoleDeleteUnknownIDsIsNotFound(t *testing.T) {
	svc := NewRoleService(newFakeRoleRepo())

	err := svc.Delete(context.Background(), []int{40, 41})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	assert.NoError(t, svc.Delete(context.Background(), []int{3}))
}
