package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"sacco-ledger/internal/core/domain"
	"sacco-ledger/internal/core/services"
	"sacco-ledger/internal/pkg/pagination"
	"sacco-ledger/internal/pkg/response"
)

// AccountHandler handles account and ledger endpoints
type AccountHandler struct {
	ledgerService *services.LedgerService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(ledgerService *services.LedgerService) *AccountHandler {
	return &AccountHandler{ledgerService: ledgerService}
}

// OpenAccountRequest represents open account request body
type OpenAccountRequest struct {
	MemberID     uint            `json:"member_id"`
	Type         string          `json:"type"`
	InterestRate decimal.Decimal `json:"interest_rate"`
}

// PostTransactionRequest represents a posting request body
type PostTransactionRequest struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// TransferRequest represents transfer request body
type TransferRequest struct {
	FromAccountID uint            `json:"from_account_id"`
	ToAccountID   uint            `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
}

// HoldRequest represents hold placement/release request body
type HoldRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Open opens an account for a member
func (h *AccountHandler) Open(c *fiber.Ctx) error {
	var req OpenAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.MemberID == 0 {
		return response.BadRequest(c, "Member id is required")
	}

	account, err := h.ledgerService.OpenAccount(c.Context(), &services.OpenAccountInput{
		MemberID:     req.MemberID,
		Type:         domain.AccountType(req.Type),
		InterestRate: req.InterestRate,
	})
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Created(c, "Account opened successfully", account)
}

// Get returns one account by id
func (h *AccountHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid account id")
	}

	account, err := h.ledgerService.GetAccount(c.Context(), uint(id))
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Account retrieved successfully", account)
}

// ListByMember returns a member's accounts
func (h *AccountHandler) ListByMember(c *fiber.Ctx) error {
	memberID, err := c.ParamsInt("memberId")
	if err != nil || memberID <= 0 {
		return response.BadRequest(c, "Invalid member id")
	}

	accounts, err := h.ledgerService.ListMemberAccounts(c.Context(), uint(memberID))
	if err != nil {
		return response.InternalServerError(c, "Failed to list accounts")
	}

	return response.Success(c, "Accounts retrieved successfully", accounts)
}

// Post appends a transaction to an account
func (h *AccountHandler) Post(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid account id")
	}

	var req PostTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	t, err := h.ledgerService.PostTransaction(c.Context(), &services.PostingInput{
		AccountID:   uint(id),
		Type:        domain.TransactionType(req.Type),
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Created(c, "Transaction posted successfully", t)
}

// Transfer moves funds between two accounts
func (h *AccountHandler) Transfer(c *fiber.Ctx) error {
	var req TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.FromAccountID == 0 || req.ToAccountID == 0 {
		return response.BadRequest(c, "Both account ids are required")
	}

	out, in, err := h.ledgerService.Transfer(c.Context(), &services.TransferInput{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Description:   req.Description,
	})
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Created(c, "Transfer completed successfully", fiber.Map{
		"debit":  out,
		"credit": in,
	})
}

// PlaceHold reserves part of the available balance
func (h *AccountHandler) PlaceHold(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid account id")
	}

	var req HoldRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.ledgerService.PlaceHold(c.Context(), uint(id), req.Amount); err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Hold placed successfully", nil)
}

// ReleaseHold returns held funds to the available balance
func (h *AccountHandler) ReleaseHold(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid account id")
	}

	var req HoldRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.ledgerService.ReleaseHold(c.Context(), uint(id), req.Amount); err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Hold released successfully", nil)
}

// Close closes an empty account
func (h *AccountHandler) Close(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid account id")
	}

	if err := h.ledgerService.CloseAccount(c.Context(), uint(id)); err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Account closed successfully", nil)
}

// Statement returns an account's transactions, newest first. Optional
// from/to query params bound the date range (RFC 3339 or YYYY-MM-DD).
func (h *AccountHandler) Statement(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid account id")
	}

	params := pagination.GetParams(c)
	input := &services.StatementInput{
		AccountID: uint(id),
		Offset:    params.Offset,
		Limit:     params.Limit,
	}

	if from := c.Query("from"); from != "" {
		t, err := parseDate(from)
		if err != nil {
			return response.BadRequest(c, "Invalid from date")
		}
		input.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := parseDate(to)
		if err != nil {
			return response.BadRequest(c, "Invalid to date")
		}
		input.To = &t
	}

	txs, total, err := h.ledgerService.GetStatement(c.Context(), input)
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Statement retrieved successfully", pagination.NewResponse(txs, params, total))
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
