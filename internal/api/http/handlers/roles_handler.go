package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/asta-dev/fintech-sandbox/internal/api/dto"
	"github.com/asta-dev/fintech-sandbox/internal/domain"
	"github.com/asta-dev/fintech-sandbox/internal/service"
	apperrors "github.com/asta-dev/fintech-sandbox/pkg/util"
)

// RolesHandler exposes role tier administration.
type RolesHandler struct {
	roles *service.RoleService
}

// NewRolesHandler constructs handler.
func NewRolesHandler(roles *service.RoleService) *RolesHandler {
	return &RolesHandler{roles: roles}
}

// All handles GET /api/role/all.
func (h *RolesHandler) All(c *fiber.Ctx) error {
	roles, err := h.roles.List(c.Context())
	if err != nil {
		return err
	}
	response := make([]dto.RoleResponse, 0, len(roles))
	for _, role := range roles {
		response = append(response, dto.NewRoleResponse(role))
	}
	return c.JSON(fiber.Map{"data": response})
}

// Add handles POST /api/role/add.
func (h *RolesHandler) Add(c *fiber.Ctx) error {
	var req []dto.RoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req) == 0 {
		return apperrors.NewValidationError("at least one role required", nil)
	}

	records := make([]domain.RoleRecord, 0, len(req))
	for _, role := range req {
		records = append(records, domain.RoleRecord{Level: role.Level, Position: domain.Role(role.Position)})
	}

	created, err := h.roles.Create(c.Context(), records)
	if err != nil {
		return err
	}

	response := make([]dto.RoleResponse, 0, len(created))
	for _, role := range created {
		response = append(response, dto.NewRoleResponse(role))
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": response})
}

// Mod handles PUT /api/role/mod.
func (h *RolesHandler) Mod(c *fiber.Ctx) error {
	var req []dto.RoleUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req) == 0 {
		return apperrors.NewValidationError("at least one role required", nil)
	}

	patches := make([]domain.RolePatch, 0, len(req))
	for _, role := range req {
		patch := domain.RolePatch{ID: role.ID, Level: role.Level}
		if role.Position != nil {
			position := domain.Role(*role.Position)
			patch.Position = &position
		}
		patches = append(patches, patch)
	}

	updated, err := h.roles.Update(c.Context(), patches)
	if err != nil {
		return err
	}

	response := make([]dto.RoleResponse, 0, len(updated))
	for _, role := range updated {
		response = append(response, dto.NewRoleResponse(role))
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": response})
}

// Del handles DELETE /api/role/del.
func (h *RolesHandler) Del(c *fiber.Ctx) error {
	var req []dto.RoleDeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req) == 0 {
		return apperrors.NewValidationError("at least one role required", nil)
	}

	ids := make([]int, 0, len(req))
	for _, role := range req {
		ids = append(ids, role.ID)
	}

	if err := h.roles.Delete(c.Context(), ids); err != nil {
		return err
	}
	return c.SendStatus(http.StatusAccepted)
}
