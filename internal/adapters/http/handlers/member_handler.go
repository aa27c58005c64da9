package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"sacco-ledger/internal/core/domain"
	"sacco-ledger/internal/core/services"
	"sacco-ledger/internal/pkg/pagination"
	"sacco-ledger/internal/pkg/response"
)

// MemberHandler handles member registry endpoints
type MemberHandler struct {
	memberService *services.MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// RegisterMemberRequest represents member registration request body
type RegisterMemberRequest struct {
	UserID   uint   `json:"user_id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// ChangeStatusRequest represents status change request body
type ChangeStatusRequest struct {
	Status string `json:"status"`
}

// Register creates a new membership
func (h *MemberHandler) Register(c *fiber.Ctx) error {
	var req RegisterMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.UserID == 0 {
		return response.BadRequest(c, "User id is required")
	}
	if strings.TrimSpace(req.FullName) == "" {
		return response.BadRequest(c, "Full name is required")
	}

	member, err := h.memberService.Register(c.Context(), &services.RegisterMemberInput{
		UserID:   req.UserID,
		FullName: strings.TrimSpace(req.FullName),
		Phone:    strings.TrimSpace(req.Phone),
	})
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Created(c, "Member registered successfully", member)
}

// Get returns one member by id
func (h *MemberHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid member id")
	}

	member, err := h.memberService.GetByID(c.Context(), uint(id))
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Member retrieved successfully", member)
}

// GetByNumber returns one member by membership number
func (h *MemberHandler) GetByNumber(c *fiber.Ctx) error {
	memberNo := c.Params("memberNo")
	if memberNo == "" {
		return response.BadRequest(c, "Member number is required")
	}

	member, err := h.memberService.GetByMemberNo(c.Context(), memberNo)
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Member retrieved successfully", member)
}

// List returns members with pagination
func (h *MemberHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	members, total, err := h.memberService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list members")
	}

	return response.Success(c, "Members retrieved successfully", pagination.NewResponse(members, params, total))
}

// ChangeStatus applies a membership status transition
func (h *MemberHandler) ChangeStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid member id")
	}

	var req ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.memberService.ChangeStatus(c.Context(), uint(id), domain.MemberStatus(req.Status))
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Member status changed successfully", member)
}
