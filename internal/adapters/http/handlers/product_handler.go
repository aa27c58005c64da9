package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"sacco-ledger/internal/adapters/persistence/models"
	"sacco-ledger/internal/adapters/persistence/repositories"
	"sacco-ledger/internal/pkg/response"
)

// ProductHandler handles loan product master data endpoints
type ProductHandler struct {
	products repositories.LoanProductRepository
}

// NewProductHandler creates a new product handler
func NewProductHandler(products repositories.LoanProductRepository) *ProductHandler {
	return &ProductHandler{products: products}
}

// ProductRequest represents loan product create/update request body
type ProductRequest struct {
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	MinAmount        decimal.Decimal `json:"min_amount"`
	MaxAmount        decimal.Decimal `json:"max_amount"`
	MinTermMonths    int             `json:"min_term_months"`
	MaxTermMonths    int             `json:"max_term_months"`
	InterestRate     decimal.Decimal `json:"interest_rate"`
	ProcessingFeePct decimal.Decimal `json:"processing_fee_pct"`
	MinGuarantors    int             `json:"min_guarantors"`
	IsActive         *bool           `json:"is_active"`
}

// List lists loan products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.products.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list loan products")
	}

	return response.Success(c, "Loan products retrieved successfully", products)
}

// Get returns one loan product by id
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid product id")
	}

	product, err := h.products.GetByID(c.Context(), uint(id))
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Loan product retrieved successfully", product)
}

// Create creates a loan product
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Code == "" || req.Name == "" {
		return response.BadRequest(c, "Code and name are required")
	}
	if req.MaxAmount.LessThan(req.MinAmount) || req.MaxTermMonths < req.MinTermMonths {
		return response.BadRequest(c, "Product bounds are inverted")
	}

	product := &models.LoanProduct{
		Code:             req.Code,
		Name:             req.Name,
		Description:      req.Description,
		MinAmount:        req.MinAmount,
		MaxAmount:        req.MaxAmount,
		MinTermMonths:    req.MinTermMonths,
		MaxTermMonths:    req.MaxTermMonths,
		InterestRate:     req.InterestRate,
		ProcessingFeePct: req.ProcessingFeePct,
		MinGuarantors:    req.MinGuarantors,
		IsActive:         true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := h.products.Create(c.Context(), product); err != nil {
		return handleDomainError(c, err)
	}

	return response.Created(c, "Loan product created successfully", product)
}

// Update updates a loan product. Existing loans keep the terms they
// were computed with.
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid product id")
	}

	product, err := h.products.GetByID(c.Context(), uint(id))
	if err != nil {
		return handleDomainError(c, err)
	}

	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if !req.MinAmount.IsZero() {
		product.MinAmount = req.MinAmount
	}
	if !req.MaxAmount.IsZero() {
		product.MaxAmount = req.MaxAmount
	}
	if req.MinTermMonths > 0 {
		product.MinTermMonths = req.MinTermMonths
	}
	if req.MaxTermMonths > 0 {
		product.MaxTermMonths = req.MaxTermMonths
	}
	if !req.InterestRate.IsZero() {
		product.InterestRate = req.InterestRate
	}
	if req.MinGuarantors > 0 {
		product.MinGuarantors = req.MinGuarantors
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if product.MaxAmount.LessThan(product.MinAmount) || product.MaxTermMonths < product.MinTermMonths {
		return response.BadRequest(c, "Product bounds are inverted")
	}

	if err := h.products.Update(c.Context(), product); err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Loan product updated successfully", product)
}

// Delete soft deletes a loan product
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid product id")
	}

	if err := h.products.Delete(c.Context(), uint(id)); err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Loan product deleted successfully", nil)
}
