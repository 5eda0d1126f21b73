package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/asta-dev/fintech-sandbox/internal/api/dto"
	"github.com/asta-dev/fintech-sandbox/internal/auth"
	"github.com/asta-dev/fintech-sandbox/internal/service"
	apperrors "github.com/asta-dev/fintech-sandbox/pkg/util"
)

// AuthHandler exposes registration, login and identity endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("username, email and password required", nil)
	}

	user, err := h.auth.Register(c.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.NewUserResponse(user),
	})
}

// Login handles POST /api/auth/login?mode=.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}
	mode := c.Query("mode")
	if mode == "" {
		return apperrors.NewValidationError("mode query parameter required", nil)
	}

	token, expiresAt, err := h.auth.Login(c.Context(), req.Username, req.Password, mode)
	if err != nil {
		return err
	}

	return c.Status(http.StatusAccepted).JSON(dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claim, ok := auth.ClaimFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("could not validate user")
	}
	return c.JSON(dto.IdentityResponse{
		ID:       claim.UserID,
		Username: claim.Username,
		Role:     string(claim.Role),
	})
}
