package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"sacco-ledger/internal/core/services"
	"sacco-ledger/internal/pkg/pagination"
	"sacco-ledger/internal/pkg/response"
)

// GovernanceHandler handles board governance endpoints
type GovernanceHandler struct {
	governanceService *services.GovernanceService
}

// NewGovernanceHandler creates a new governance handler
func NewGovernanceHandler(governanceService *services.GovernanceService) *GovernanceHandler {
	return &GovernanceHandler{governanceService: governanceService}
}

// AppointRequest represents board appointment request body
type AppointRequest struct {
	MemberID  uint       `json:"member_id"`
	Position  string     `json:"position"`
	TermStart *time.Time `json:"term_start"`
}

// MeetingRequest represents meeting creation request body
type MeetingRequest struct {
	Title       string    `json:"title"`
	MeetingDate time.Time `json:"meeting_date"`
	Location    string    `json:"location"`
	Agenda      string    `json:"agenda"`
}

// MinutesRequest represents minutes request body
type MinutesRequest struct {
	Minutes string `json:"minutes"`
}

// AttendanceRequest represents attendance request body
type AttendanceRequest struct {
	BoardMemberID uint   `json:"board_member_id"`
	Present       bool   `json:"present"`
	Remark        string `json:"remark"`
}

// Appoint seats a member on the board
func (h *GovernanceHandler) Appoint(c *fiber.Ctx) error {
	var req AppointRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.MemberID == 0 || req.Position == "" {
		return response.BadRequest(c, "Member id and position are required")
	}

	termStart := time.Now()
	if req.TermStart != nil {
		termStart = *req.TermStart
	}

	bm, err := h.governanceService.Appoint(c.Context(), &services.AppointInput{
		MemberID:  req.MemberID,
		Position:  req.Position,
		TermStart: termStart,
	})
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Created(c, "Board member appointed successfully", bm)
}

// EndTerm closes a board member's term
func (h *GovernanceHandler) EndTerm(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid board member id")
	}

	bm, err := h.governanceService.EndTerm(c.Context(), uint(id))
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Board term ended successfully", bm)
}

// ListBoard lists board members
func (h *GovernanceHandler) ListBoard(c *fiber.Ctx) error {
	activeOnly := c.Query("active") == "true"

	board, err := h.governanceService.ListBoard(c.Context(), activeOnly)
	if err != nil {
		return response.InternalServerError(c, "Failed to list board members")
	}

	return response.Success(c, "Board members retrieved successfully", board)
}

// ScheduleMeeting creates a board meeting
func (h *GovernanceHandler) ScheduleMeeting(c *fiber.Ctx) error {
	var req MeetingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Title == "" {
		return response.BadRequest(c, "Title is required")
	}

	meeting, err := h.governanceService.ScheduleMeeting(c.Context(), &services.ScheduleMeetingInput{
		Title:       req.Title,
		MeetingDate: req.MeetingDate,
		Location:    req.Location,
		Agenda:      req.Agenda,
	})
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Created(c, "Meeting scheduled successfully", meeting)
}

// GetMeeting returns one meeting by id
func (h *GovernanceHandler) GetMeeting(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid meeting id")
	}

	meeting, err := h.governanceService.GetMeeting(c.Context(), uint(id))
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Meeting retrieved successfully", meeting)
}

// ListMeetings lists meetings with pagination
func (h *GovernanceHandler) ListMeetings(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	meetings, total, err := h.governanceService.ListMeetings(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list meetings")
	}

	return response.Success(c, "Meetings retrieved successfully", pagination.NewResponse(meetings, params, total))
}

// RecordMinutes attaches minutes to a meeting
func (h *GovernanceHandler) RecordMinutes(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid meeting id")
	}

	var req MinutesRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	meeting, err := h.governanceService.RecordMinutes(c.Context(), uint(id), req.Minutes)
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Minutes recorded successfully", meeting)
}

// RecordAttendance records attendance at a meeting
func (h *GovernanceHandler) RecordAttendance(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid meeting id")
	}

	var req AttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.BoardMemberID == 0 {
		return response.BadRequest(c, "Board member id is required")
	}

	att, err := h.governanceService.RecordAttendance(c.Context(), uint(id), req.BoardMemberID, req.Present, req.Remark)
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Created(c, "Attendance recorded successfully", att)
}
