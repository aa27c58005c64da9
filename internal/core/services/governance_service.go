package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"sacco-ledger/internal/adapters/persistence/models"
	"sacco-ledger/internal/adapters/persistence/repositories"
	"sacco-ledger/internal/core/domain"
)

// GovernanceService records board composition, meetings and attendance.
type GovernanceService struct {
	governance repositories.GovernanceRepository
	members    repositories.MemberRepository
	log        *logrus.Entry
}

// NewGovernanceService creates a new governance service
func NewGovernanceService(governance repositories.GovernanceRepository, members repositories.MemberRepository) *GovernanceService {
	return &GovernanceService{
		governance: governance,
		members:    members,
		log:        logrus.WithField("service", "governance"),
	}
}

// AppointInput represents board appointment input
type AppointInput struct {
	MemberID  uint      `json:"member_id" validate:"required"`
	Position  string    `json:"position" validate:"required"`
	TermStart time.Time `json:"term_start" validate:"required"`
}

// Appoint seats a member on the board. A position has at most one
// active holder.
func (s *GovernanceService) Appoint(ctx context.Context, input *AppointInput) (*models.BoardMember, error) {
	if input.Position == "" {
		return nil, domain.ErrInvalidInput
	}

	member, err := s.members.GetByID(ctx, input.MemberID)
	if err != nil {
		return nil, err
	}
	if member.Status != domain.MemberActive {
		return nil, domain.ErrMemberNotActive
	}

	if _, err := s.governance.GetActiveByPosition(ctx, input.Position); err == nil {
		return nil, domain.ErrPositionOccupied
	} else if !errors.Is(err, domain.ErrBoardMemberNotFound) {
		return nil, err
	}

	bm := &models.BoardMember{
		MemberID:  input.MemberID,
		Position:  input.Position,
		TermStart: input.TermStart,
		IsActive:  true,
	}
	if err := s.governance.CreateBoardMember(ctx, bm); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"member":   member.MemberNo,
		"position": input.Position,
	}).Info("board member appointed")

	return bm, nil
}

// EndTerm closes a board member's term
func (s *GovernanceService) EndTerm(ctx context.Context, boardMemberID uint) (*models.BoardMember, error) {
	bm, err := s.governance.GetBoardMemberByID(ctx, boardMemberID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	bm.IsActive = false
	bm.TermEnd = &now
	if err := s.governance.UpdateBoardMember(ctx, bm); err != nil {
		return nil, err
	}
	return bm, nil
}

// ListBoard lists board members
func (s *GovernanceService) ListBoard(ctx context.Context, activeOnly bool) ([]*models.BoardMember, error) {
	return s.governance.ListBoard(ctx, activeOnly)
}

// ScheduleMeetingInput represents meeting creation input
type ScheduleMeetingInput struct {
	Title       string    `json:"title" validate:"required"`
	MeetingDate time.Time `json:"meeting_date" validate:"required"`
	Location    string    `json:"location,omitempty"`
	Agenda      string    `json:"agenda,omitempty"`
}

// ScheduleMeeting creates a board meeting record
func (s *GovernanceService) ScheduleMeeting(ctx context.Context, input *ScheduleMeetingInput) (*models.BoardMeeting, error) {
	if input.Title == "" {
		return nil, domain.ErrInvalidInput
	}

	meeting := &models.BoardMeeting{
		Title:       input.Title,
		MeetingDate: input.MeetingDate,
		Location:    input.Location,
		Agenda:      input.Agenda,
	}
	if err := s.governance.CreateMeeting(ctx, meeting); err != nil {
		return nil, err
	}
	return meeting, nil
}

// RecordMinutes attaches minutes to a held meeting
func (s *GovernanceService) RecordMinutes(ctx context.Context, meetingID uint, minutes string) (*models.BoardMeeting, error) {
	meeting, err := s.governance.GetMeetingByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	meeting.Minutes = minutes
	if err := s.governance.UpdateMeeting(ctx, meeting); err != nil {
		return nil, err
	}
	return meeting, nil
}

// RecordAttendance records one board member's attendance at a meeting
func (s *GovernanceService) RecordAttendance(ctx context.Context, meetingID, boardMemberID uint, present bool, remark string) (*models.BoardMeetingAttendance, error) {
	if _, err := s.governance.GetMeetingByID(ctx, meetingID); err != nil {
		return nil, err
	}
	if _, err := s.governance.GetBoardMemberByID(ctx, boardMemberID); err != nil {
		return nil, err
	}

	att := &models.BoardMeetingAttendance{
		MeetingID:     meetingID,
		BoardMemberID: boardMemberID,
		Present:       present,
		Remark:        remark,
	}
	if err := s.governance.CreateAttendance(ctx, att); err != nil {
		return nil, err
	}
	return att, nil
}

// GetMeeting gets a meeting with its attendance
func (s *GovernanceService) GetMeeting(ctx context.Context, meetingID uint) (*models.BoardMeeting, error) {
	return s.governance.GetMeetingByID(ctx, meetingID)
}

// ListMeetings lists meetings with pagination
func (s *GovernanceService) ListMeetings(ctx context.Context, offset, limit int) ([]*models.BoardMeeting, int64, error) {
	return s.governance.ListMeetings(ctx, offset, limit)
}
