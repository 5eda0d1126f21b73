package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/asta-dev/fintech-sandbox/internal/api/dto"
	"github.com/asta-dev/fintech-sandbox/internal/auth"
	"github.com/asta-dev/fintech-sandbox/internal/service"
	apperrors "github.com/asta-dev/fintech-sandbox/pkg/util"
)

// PaymentsHandler exposes billing provider endpoints.
type PaymentsHandler struct {
	billing *service.BillingService
}

// NewPaymentsHandler constructs handler.
func NewPaymentsHandler(billing *service.BillingService) *PaymentsHandler {
	return &PaymentsHandler{billing: billing}
}

// Products handles GET /api/payment/products.
func (h *PaymentsHandler) Products(c *fiber.Ctx) error {
	products, err := h.billing.Products(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": products})
}

// CreateCheckoutSession handles POST /api/payment/create-checkout-session.
func (h *PaymentsHandler) CreateCheckoutSession(c *fiber.Ctx) error {
	claim, ok := auth.ClaimFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("could not validate user")
	}

	var req dto.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.PriceID == "" {
		return apperrors.NewValidationError("price_id required", nil)
	}

	url, err := h.billing.CreateCheckoutSession(c.Context(), claim.UserID, req.PriceID)
	if err != nil {
		return err
	}
	return c.JSON(dto.CheckoutSessionResponse{URL: url})
}

// Webhook handles POST /api/payment/webhook. Authenticity comes from the
// provider signature, not a bearer token.
func (h *PaymentsHandler) Webhook(c *fiber.Ctx) error {
	signature := c.Get("Stripe-Signature")
	if err := h.billing.HandleWebhook(c.Context(), c.Body(), signature); err != nil {
		return err
	}
	return c.JSON(dto.WebhookResponse{Status: "success"})
}
