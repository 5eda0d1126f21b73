package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/asta-dev/fintech-sandbox/internal/auth"
	"github.com/asta-dev/fintech-sandbox/internal/domain"
	"github.com/asta-dev/fintech-sandbox/internal/repository"
	apperrors "github.com/asta-dev/fintech-sandbox/pkg/util"
)

// UserService covers administrative user management and self-service profile
// updates.
type UserService struct {
	users      repository.UserRepository
	roles      repository.RoleRepository
	bcryptCost int
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, roles repository.RoleRepository, bcryptCost int) *UserService {
	return &UserService{users: users, roles: roles, bcryptCost: bcryptCost}
}

// AdminCreate adds a user with an explicit role. Admin only.
func (s *UserService) AdminCreate(ctx context.Context, username, email, password string, roleID int) (*domain.User, error) {
	roleList, err := s.roles.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	var role *domain.RoleRecord
	for i := range roleList {
		if roleList[i].ID == roleID {
			role = &roleList[i]
			break
		}
	}
	if role == nil {
		return nil, apperrors.NewValidationError("unknown role id", map[string]any{"role_id": roleID})
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		RoleID:       role.ID,
		Role:         role.Position,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// GetByIdentifier resolves a user by id, username or email. A parseable UUID
// is treated as an id; an email-shaped value as an email; anything else as a
// username.
func (s *UserService) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	var user *domain.User
	var err error

	if id, parseErr := uuid.Parse(identifier); parseErr == nil {
		user, err = s.users.GetByID(ctx, id)
	} else if emailPattern.MatchString(identifier) {
		user, err = s.users.GetByEmail(ctx, identifier)
	} else {
		user, err = s.users.GetByUsername(ctx, identifier)
	}

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// List returns users ordered by creation time. Admin only.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// UpdateProfile applies a self-service patch to the authenticated user.
// Nil fields are left unchanged.
func (s *UserService) UpdateProfile(ctx context.Context, claim auth.Claim, patch domain.UserPatch) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, claim.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}

	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.Email != nil {
		if !emailPattern.MatchString(*patch.Email) {
			return nil, apperrors.NewValidationError("invalid email address", nil)
		}
		user.Email = *patch.Email
	}
	if patch.Password != nil {
		hash, err := auth.HashPassword(*patch.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}
