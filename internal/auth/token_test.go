package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asta-dev/fintech-sandbox/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 30)
	userID := uuid.New()

	token, expiresAt, err := tm.Generate("alice", userID, domain.RoleDeveloper)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, 5*time.Second)

	claim, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claim.Username)
	assert.Equal(t, userID, claim.UserID)
	assert.Equal(t, domain.RoleDeveloper, claim.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-one", 30)
	verifier := NewTokenManager("secret-two", 30)

	token, _, err := issuer.Generate("alice", uuid.New(), domain.RoleUser)
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager("test-secret", 30)

	claims := &tokenClaims{
		UserID: uuid.NewString(),
		Role:   string(domain.RoleUser),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = tm.Parse(signed)
	assert.Error(t, err)
}

func TestParseRejectsMalformedToken(t *testing.T) {
	tm := NewTokenManager("test-secret", 30)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := tm.Parse(token)
		assert.Error(t, err, "token %q should not parse", token)
	}
}

func TestParseRejectsIncompleteClaims(t *testing.T) {
	tm := NewTokenManager("test-secret", 30)

	claims := &tokenClaims{
		Role: string(domain.RoleUser),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = tm.Parse(signed)
	assert.Error(t, err)
}
