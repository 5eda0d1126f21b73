package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/asta-dev/fintech-sandbox/pkg/util"
)

// RequireAuth ensures the caller presented a valid token.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := ClaimFromContext(c); !ok {
			return apperrors.NewUnauthorized("could not validate user")
		}
		return c.Next()
	}
}

// RequireLevel gates a route on a minimum role level. Access is granted iff
// the claim's role is known and its level is at least minLevel.
func RequireLevel(minLevel int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claim, ok := ClaimFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("could not validate user")
		}
		level, known := claim.Role.Level()
		if !known {
			return apperrors.NewForbidden("invalid role provided")
		}
		if level < minLevel {
			return apperrors.NewForbidden("insufficient permissions, requires higher level privileges")
		}
		return c.Next()
	}
}

// Authorize applies the same level check outside the middleware chain and
// returns the claim unchanged on success, so callers can read identity fields.
func Authorize(claim Claim, minLevel int) (Claim, error) {
	level, known := claim.Role.Level()
	if !known {
		return Claim{}, apperrors.NewForbidden("invalid role provided")
	}
	if level < minLevel {
		return Claim{}, apperrors.NewForbidden("insufficient permissions, requires higher level privileges")
	}
	return claim, nil
}
