package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"sacco-ledger/internal/core/services"
	"sacco-ledger/internal/pkg/pagination"
	"sacco-ledger/internal/pkg/response"
)

// LoanHandler handles loan lifecycle endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// ApplyRequest represents loan application request body
type ApplyRequest struct {
	MemberID   uint            `json:"member_id"`
	ProductID  uint            `json:"product_id"`
	Amount     decimal.Decimal `json:"amount"`
	TermMonths int             `json:"term_months"`
	Purpose    string          `json:"purpose"`
}

// UpdateTermsRequest represents loan term update request body
type UpdateTermsRequest struct {
	Principal    *decimal.Decimal `json:"principal"`
	InterestRate *decimal.Decimal `json:"interest_rate"`
	TermMonths   *int             `json:"term_months"`
}

// GuarantorRequest represents guarantor approval request body
type GuarantorRequest struct {
	GuarantorMemberID uint `json:"guarantor_member_id"`
}

// DisburseRequest represents disbursement request body
type DisburseRequest struct {
	AccountID uint `json:"account_id"`
}

// RepaymentRequest represents repayment request body
type RepaymentRequest struct {
	AccountID uint            `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// Apply creates a loan application
func (h *LoanHandler) Apply(c *fiber.Ctx) error {
	var req ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.MemberID == 0 || req.ProductID == 0 {
		return response.BadRequest(c, "Member id and product id are required")
	}

	loan, err := h.loanService.Apply(c.Context(), &services.ApplyInput{
		MemberID:   req.MemberID,
		ProductID:  req.ProductID,
		Amount:     req.Amount,
		TermMonths: req.TermMonths,
		Purpose:    req.Purpose,
	})
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Created(c, "Loan application created successfully", loan)
}

// Get returns one loan by id
func (h *LoanHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid loan id")
	}

	loan, err := h.loanService.GetByID(c.Context(), uint(id))
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Loan retrieved successfully", loan)
}

// List returns loans with pagination
func (h *LoanHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	loans, total, err := h.loanService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", pagination.NewResponse(loans, params, total))
}

// ListByMember returns a member's loans
func (h *LoanHandler) ListByMember(c *fiber.Ctx) error {
	memberID, err := c.ParamsInt("memberId")
	if err != nil || memberID <= 0 {
		return response.BadRequest(c, "Invalid member id")
	}

	loans, err := h.loanService.ListByMember(c.Context(), uint(memberID))
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", loans)
}

// UpdateTerms changes a pending loan's terms
func (h *LoanHandler) UpdateTerms(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid loan id")
	}

	var req UpdateTermsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	loan, err := h.loanService.UpdateTerms(c.Context(), uint(id), &services.UpdateTermsInput{
		Principal:    req.Principal,
		InterestRate: req.InterestRate,
		TermMonths:   req.TermMonths,
	})
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Loan terms updated successfully", loan)
}

// ApproveGuarantor records one guarantor's approval
func (h *LoanHandler) ApproveGuarantor(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid loan id")
	}

	var req GuarantorRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.GuarantorMemberID == 0 {
		return response.BadRequest(c, "Guarantor member id is required")
	}

	loan, err := h.loanService.ApproveGuarantor(c.Context(), uint(id), req.GuarantorMemberID)
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Guarantor approval recorded", loan)
}

// Reject moves a pending loan to rejected
func (h *LoanHandler) Reject(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid loan id")
	}

	loan, err := h.loanService.Reject(c.Context(), uint(id))
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Loan rejected", loan)
}

// Disburse credits the principal to the borrower account
func (h *LoanHandler) Disburse(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid loan id")
	}

	var req DisburseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.AccountID == 0 {
		return response.BadRequest(c, "Account id is required")
	}

	loan, t, err := h.loanService.Disburse(c.Context(), uint(id), req.AccountID)
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Loan disbursed successfully", fiber.Map{
		"loan":        loan,
		"transaction": t,
	})
}

// Repay records a repayment against a loan
func (h *LoanHandler) Repay(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid loan id")
	}

	var req RepaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.AccountID == 0 {
		return response.BadRequest(c, "Account id is required")
	}

	loan, t, err := h.loanService.RecordRepayment(c.Context(), uint(id), req.AccountID, req.Amount)
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Repayment recorded successfully", fiber.Map{
		"loan":        loan,
		"transaction": t,
	})
}

// Schedule returns the loan's repayment plan
func (h *LoanHandler) Schedule(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid loan id")
	}

	schedule, err := h.loanService.Schedule(c.Context(), uint(id))
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Schedule retrieved successfully", schedule)
}
