package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/asta-dev/fintech-sandbox/internal/api/dto"
	"github.com/asta-dev/fintech-sandbox/internal/auth"
	"github.com/asta-dev/fintech-sandbox/internal/domain"
	"github.com/asta-dev/fintech-sandbox/internal/observability"
	"github.com/asta-dev/fintech-sandbox/internal/service"
	apperrors "github.com/asta-dev/fintech-sandbox/pkg/util"
)

// AccountsHandler exposes ledger and transfer endpoints.
type AccountsHandler struct {
	ledger    *service.LedgerService
	transfers *service.TransferService
	metrics   *observability.Metrics
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(ledger *service.LedgerService, transfers *service.TransferService, metrics *observability.Metrics) *AccountsHandler {
	return &AccountsHandler{ledger: ledger, transfers: transfers, metrics: metrics}
}

// Transfer handles POST /api/accounts/transfer.
func (h *AccountsHandler) Transfer(c *fiber.Ctx) error {
	claim, ok := auth.ClaimFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("could not validate user")
	}

	var req dto.TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ReceiverAccountID == uuid.Nil {
		return apperrors.NewValidationError("receiver_account_id required", nil)
	}

	txn, err := h.transfers.Transfer(c.Context(), claim, req.ReceiverAccountID, req.TransferAmount)
	if err != nil {
		h.metrics.RecordTransfer("rejected")
		return err
	}
	h.metrics.RecordTransfer("completed")

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTransactionResponse(txn)})
}

// Balance handles GET /api/accounts/balance/me.
func (h *AccountsHandler) Balance(c *fiber.Ctx) error {
	claim, ok := auth.ClaimFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("could not validate user")
	}

	account, err := h.ledger.GetBalance(c.Context(), claim.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBalanceResponse(account)})
}

// Get handles GET /api/accounts/:id.
func (h *AccountsHandler) Get(c *fiber.Ctx) error {
	claim, ok := auth.ClaimFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("could not validate user")
	}
	accountID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.NewValidationError("invalid account id", nil)
	}

	account, err := h.ledger.GetAccount(c.Context(), accountID, claim.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountResponse(account)})
}

// Update handles PUT /api/accounts/:id.
func (h *AccountsHandler) Update(c *fiber.Ctx) error {
	claim, ok := auth.ClaimFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("could not validate user")
	}
	accountID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.NewValidationError("invalid account id", nil)
	}

	var req dto.AccountUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	patch := domain.AccountPatch{Currency: req.Currency}
	if req.Status != nil {
		status := domain.AccountStatus(*req.Status)
		patch.Status = &status
	}

	account, err := h.ledger.UpdateAccount(c.Context(), accountID, claim.UserID, patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountResponse(account)})
}

// Transactions handles GET /api/accounts/:id/transactions.
func (h *AccountsHandler) Transactions(c *fiber.Ctx) error {
	claim, ok := auth.ClaimFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("could not validate user")
	}
	accountID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.NewValidationError("invalid account id", nil)
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit < 1 || limit > 100 {
		return apperrors.NewValidationError("limit must be between 1 and 100", nil)
	}
	if offset < 0 {
		return apperrors.NewValidationError("offset must not be negative", nil)
	}

	filter := domain.TransactionFilter{
		AccountID: accountID,
		Limit:     limit,
		Offset:    offset,
	}
	if raw := c.Query("date_from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return apperrors.NewValidationError("invalid date_from", nil)
		}
		filter.DateFrom = &from
	}
	if raw := c.Query("date_till"); raw != "" {
		till, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return apperrors.NewValidationError("invalid date_till", nil)
		}
		filter.DateTill = &till
	}

	transactions, err := h.transfers.ListTransactions(c.Context(), claim, filter)
	if err != nil {
		return err
	}

	response := make([]dto.TransactionResponse, 0, len(transactions))
	for i := range transactions {
		response = append(response, dto.NewTransactionResponse(&transactions[i]))
	}
	return c.JSON(fiber.Map{"data": response})
}
