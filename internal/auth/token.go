package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/asta-dev/fintech-sandbox/internal/domain"
)

// TokenManager handles issuing and validating JWT access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 30
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute}
}

// TTL returns the configured token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// tokenClaims describes the JWT payload: sub carries the username, id the
// user UUID and pos the role position.
type tokenClaims struct {
	UserID string `json:"id"`
	Role   string `json:"pos"`
	jwt.RegisteredClaims
}

// Claim is the decoded, verified identity passed down the call chain.
// It is immutable once produced by Parse.
type Claim struct {
	Username string
	UserID   uuid.UUID
	Role     domain.Role
}

// Generate builds and signs a token for the user.
func (tm *TokenManager) Generate(username string, userID uuid.UUID, role domain.Role) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(tm.ttl)
	claims := &tokenClaims{
		UserID: userID.String(),
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Parse verifies signature and expiry and returns the decoded claim.
// It performs no I/O; any verification failure is returned as an error.
func (tm *TokenManager) Parse(tokenStr string) (Claim, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return Claim{}, err
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return Claim{}, errors.New("invalid token claims")
	}
	if claims.Subject == "" || claims.UserID == "" {
		return Claim{}, errors.New("incomplete token claims")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Claim{}, errors.New("malformed user id claim")
	}

	return Claim{
		Username: claims.Subject,
		UserID:   userID,
		Role:     domain.Role(claims.Role),
	}, nil
}
