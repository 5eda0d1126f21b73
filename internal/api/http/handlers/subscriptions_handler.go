package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/asta-dev/fintech-sandbox/internal/api/dto"
	"github.com/asta-dev/fintech-sandbox/internal/auth"
	"github.com/asta-dev/fintech-sandbox/internal/domain"
	"github.com/asta-dev/fintech-sandbox/internal/service"
	apperrors "github.com/asta-dev/fintech-sandbox/pkg/util"
)

// SubscriptionsHandler exposes subscription endpoints.
type SubscriptionsHandler struct {
	subs *service.SubscriptionService
}

// NewSubscriptionsHandler constructs handler.
func NewSubscriptionsHandler(subs *service.SubscriptionService) *SubscriptionsHandler {
	return &SubscriptionsHandler{subs: subs}
}

// Mine handles GET /api/subscriptions/.
func (h *SubscriptionsHandler) Mine(c *fiber.Ctx) error {
	claim, ok := auth.ClaimFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("could not validate user")
	}

	subs, err := h.subs.ListMine(c.Context(), claim.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": toSubscriptionResponses(subs)})
}

// Active handles GET /api/subscriptions/me.
func (h *SubscriptionsHandler) Active(c *fiber.Ctx) error {
	claim, ok := auth.ClaimFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("could not validate user")
	}

	sub, err := h.subs.Active(c.Context(), claim.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSubscriptionResponse(sub)})
}

// Filter handles GET /api/subscriptions/filter.
func (h *SubscriptionsHandler) Filter(c *fiber.Ctx) error {
	filter := domain.SubscriptionFilter{}

	if raw := c.Query("status"); raw != "" {
		status := domain.SubscriptionStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("start_date"); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return apperrors.NewValidationError("invalid start_date", nil)
		}
		filter.StartDate = &start
	}
	if raw := c.Query("end_date"); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return apperrors.NewValidationError("invalid end_date", nil)
		}
		filter.EndDate = &end
	}
	filter.Limit, _ = strconv.Atoi(c.Query("limit", "50"))
	filter.Offset, _ = strconv.Atoi(c.Query("offset", "0"))

	subs, err := h.subs.Filter(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": toSubscriptionResponses(subs)})
}

// Update handles PUT /api/subscriptions/:id.
func (h *SubscriptionsHandler) Update(c *fiber.Ctx) error {
	subID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.NewValidationError("invalid subscription id", nil)
	}

	var req dto.SubscriptionUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	patch := domain.SubscriptionPatch{EndedAt: req.EndedAt}
	if req.Status != nil {
		status := domain.SubscriptionStatus(*req.Status)
		patch.Status = &status
	}

	sub, err := h.subs.Update(c.Context(), subID, patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSubscriptionResponse(sub)})
}

func toSubscriptionResponses(subs []domain.Subscription) []dto.SubscriptionResponse {
	response := make([]dto.SubscriptionResponse, 0, len(subs))
	for i := range subs {
		response = append(response, dto.NewSubscriptionResponse(&subs[i]))
	}
	return response
}
