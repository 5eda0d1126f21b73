package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/asta-dev/fintech-sandbox/internal/api/dto"
	"github.com/asta-dev/fintech-sandbox/internal/auth"
	"github.com/asta-dev/fintech-sandbox/internal/domain"
	"github.com/asta-dev/fintech-sandbox/internal/service"
	apperrors "github.com/asta-dev/fintech-sandbox/pkg/util"
)

// UsersHandler exposes user administration and profile endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// AdminAdd handles POST /api/user/admin/add.
func (h *UsersHandler) AdminAdd(c *fiber.Ctx) error {
	var req dto.AdminCreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("username, email and password required", nil)
	}

	user, err := h.users.AdminCreate(c.Context(), req.Username, req.Email, req.Password, req.RoleID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Get handles GET /api/user/get/:identifier.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	identifier := c.Params("identifier")
	user, err := h.users.GetByIdentifier(c.Context(), identifier)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// All handles GET /api/user/all.
func (h *UsersHandler) All(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	users, err := h.users.List(c.Context(), limit, offset)
	if err != nil {
		return err
	}

	response := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		response = append(response, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": response})
}

// Mod handles PUT /api/user/mod.
func (h *UsersHandler) Mod(c *fiber.Ctx) error {
	claim, ok := auth.ClaimFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("could not validate user")
	}

	var req dto.UserPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.users.UpdateProfile(c.Context(), claim, domain.UserPatch{
		Username: req.NewUsername,
		Email:    req.NewEmail,
		Password: req.NewPassword,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}
