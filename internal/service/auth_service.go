package service

import (
	"context"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/asta-dev/fintech-sandbox/internal/auth"
	"github.com/asta-dev/fintech-sandbox/internal/config"
	"github.com/asta-dev/fintech-sandbox/internal/domain"
	"github.com/asta-dev/fintech-sandbox/internal/persistence"
	"github.com/asta-dev/fintech-sandbox/internal/repository"
	apperrors "github.com/asta-dev/fintech-sandbox/pkg/util"
)

var emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	roles      repository.RoleRepository
	tokenMgr   *auth.TokenManager
	throttle   *persistence.LoginThrottle
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	RoleRepo repository.RoleRepository
	Throttle *persistence.LoginThrottle
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		roles:      deps.RoleRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		throttle:   deps.Throttle,
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

// Register creates a new user with the base role.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	if !emailPattern.MatchString(email) {
		return nil, apperrors.NewValidationError("invalid email address", nil)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.NewConflict("username already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, apperrors.MapError(err)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, apperrors.MapError(err)
	}

	role, err := s.roles.GetByPosition(ctx, domain.RoleUser)
	if err != nil {
		return nil, apperrors.NewUnavailable("base role is not provisioned", err)
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

// Login authenticates by username or email plus password and issues a signed
// token when the stored role matches the requested mode. Failures are
// indistinguishable to the caller: unknown identifier, wrong password and
// mode mismatch all surface the same way.
func (s *AuthService) Login(ctx context.Context, identifier, password, mode string) (string, time.Time, error) {
	if !s.throttle.Allow(ctx, identifier) {
		return "", time.Time{}, apperrors.NewUnauthorized("too many login attempts")
	}

	user, ok := s.authenticate(ctx, identifier, password)
	if !ok {
		return "", time.Time{}, apperrors.NewUnauthorized("could not validate user")
	}

	if string(user.Role) != mode {
		return "", time.Time{}, apperrors.NewUnauthorized("invalid credentials or mode")
	}

	token, expiresAt, err := s.tokenMgr.Generate(user.Username, user.ID, user.Role)
	if err != nil {
		return "", time.Time{}, apperrors.MapError(err)
	}

	s.throttle.Reset(ctx, identifier)
	return token, expiresAt, nil
}

// authenticate looks up a user by email or username depending on the
// identifier's shape and verifies the password. It fails closed on every
// lookup error so the caller cannot enumerate registered identifiers.
func (s *AuthService) authenticate(ctx context.Context, identifier, password string) (*domain.User, bool) {
	var user *domain.User
	var err error

	if emailPattern.MatchString(identifier) {
		user, err = s.users.GetByEmail(ctx, identifier)
	} else {
		user, err = s.users.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if err != pgx.ErrNoRows {
			s.logger.Warn("login lookup failed", zap.Error(err))
		}
		return nil, false
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, false
	}
	return user, true
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
