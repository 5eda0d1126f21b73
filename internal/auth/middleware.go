package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/asta-dev/fintech-sandbox/pkg/util"
)

const claimKey = "auth_claim"

// Middleware validates bearer tokens and binds the decoded claim to the
// request. The token is decoded exactly once; downstream handlers read the
// claim value and never consult ambient state.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claim, err := m.tokens.Parse(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("could not validate user")
	}

	c.Locals(claimKey, claim)
	return c.Next()
}

// ClaimFromContext retrieves the authenticated claim.
func ClaimFromContext(c *fiber.Ctx) (Claim, bool) {
	val := c.Locals(claimKey)
	if val == nil {
		return Claim{}, false
	}
	claim, ok := val.(Claim)
	return claim, ok
}
