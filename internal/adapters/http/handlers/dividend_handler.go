package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"sacco-ledger/internal/core/services"
	"sacco-ledger/internal/pkg/response"
)

// DividendHandler handles dividend endpoints
type DividendHandler struct {
	dividendService *services.DividendService
}

// NewDividendHandler creates a new dividend handler
func NewDividendHandler(dividendService *services.DividendService) *DividendHandler {
	return &DividendHandler{dividendService: dividendService}
}

// DeclareRequest represents dividend declaration request body
type DeclareRequest struct {
	Year        int             `json:"year"`
	TotalProfit decimal.Decimal `json:"total_profit"`
	Rate        decimal.Decimal `json:"rate"`
}

// PayoutRequest represents payout request body
type PayoutRequest struct {
	AccountID uint `json:"account_id"`
}

// Declare creates a yearly dividend declaration
func (h *DividendHandler) Declare(c *fiber.Ctx) error {
	var req DeclareRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	dividend, err := h.dividendService.Declare(c.Context(), &services.DeclareInput{
		Year:        req.Year,
		TotalProfit: req.TotalProfit,
		Rate:        req.Rate,
	})
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Created(c, "Dividend declared successfully", dividend)
}

// Distribute computes the pro-rata per-member payouts
func (h *DividendHandler) Distribute(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid dividend id")
	}

	payouts, err := h.dividendService.ComputeDistribution(c.Context(), uint(id))
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Dividend distribution computed", payouts)
}

// Get returns one dividend by id
func (h *DividendHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid dividend id")
	}

	dividend, err := h.dividendService.GetByID(c.Context(), uint(id))
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Dividend retrieved successfully", dividend)
}

// List lists declared dividends
func (h *DividendHandler) List(c *fiber.Ctx) error {
	dividends, err := h.dividendService.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list dividends")
	}

	return response.Success(c, "Dividends retrieved successfully", dividends)
}

// ListPayouts lists the per-member payouts of a dividend
func (h *DividendHandler) ListPayouts(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid dividend id")
	}

	payouts, err := h.dividendService.ListPayouts(c.Context(), uint(id))
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Payouts retrieved successfully", payouts)
}

// Pay posts one member's dividend to the given account
func (h *DividendHandler) Pay(c *fiber.Ctx) error {
	payoutID, err := c.ParamsInt("payoutId")
	if err != nil || payoutID <= 0 {
		return response.BadRequest(c, "Invalid payout id")
	}

	var req PayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.AccountID == 0 {
		return response.BadRequest(c, "Account id is required")
	}

	t, err := h.dividendService.MarkPaid(c.Context(), uint(payoutID), req.AccountID)
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Dividend paid successfully", t)
}
