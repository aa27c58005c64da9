package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"sacco-ledger/internal/adapters/persistence/models"
	"sacco-ledger/internal/core/domain"
)

// governanceRepository implements GovernanceRepository
type governanceRepository struct {
	db *gorm.DB
}

// NewGovernanceRepository creates a new governance repository
func NewGovernanceRepository(db *gorm.DB) GovernanceRepository {
	return &governanceRepository{db: db}
}

// CreateBoardMember creates a board appointment
func (r *governanceRepository) CreateBoardMember(ctx context.Context, bm *models.BoardMember) error {
	return r.db.WithContext(ctx).Create(bm).Error
}

// GetBoardMemberByID gets a board member by id
func (r *governanceRepository) GetBoardMemberByID(ctx context.Context, id uint) (*models.BoardMember, error) {
	var bm models.BoardMember
	err := r.db.WithContext(ctx).Preload("Member").First(&bm, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBoardMemberNotFound
		}
		return nil, err
	}
	return &bm, nil
}

// GetActiveByPosition gets the active holder of a position, if any
func (r *governanceRepository) GetActiveByPosition(ctx context.Context, position string) (*models.BoardMember, error) {
	var bm models.BoardMember
	err := r.db.WithContext(ctx).
		Where("position = ? AND is_active = ?", position, true).
		First(&bm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBoardMemberNotFound
		}
		return nil, err
	}
	return &bm, nil
}

// ListBoard lists board members
func (r *governanceRepository) ListBoard(ctx context.Context, activeOnly bool) ([]*models.BoardMember, error) {
	query := r.db.WithContext(ctx).Preload("Member").Order("position ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var board []*models.BoardMember
	err := query.Find(&board).Error
	return board, err
}

// UpdateBoardMember updates a board member
func (r *governanceRepository) UpdateBoardMember(ctx context.Context, bm *models.BoardMember) error {
	return r.db.WithContext(ctx).Save(bm).Error
}

// CreateMeeting creates a board meeting
func (r *governanceRepository) CreateMeeting(ctx context.Context, meeting *models.BoardMeeting) error {
	return r.db.WithContext(ctx).Create(meeting).Error
}

// GetMeetingByID gets a meeting by id with attendance
func (r *governanceRepository) GetMeetingByID(ctx context.Context, id uint) (*models.BoardMeeting, error) {
	var meeting models.BoardMeeting
	err := r.db.WithContext(ctx).Preload("Attendance").First(&meeting, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMeetingNotFound
		}
		return nil, err
	}
	return &meeting, nil
}

// ListMeetings lists meetings, newest first, with pagination
func (r *governanceRepository) ListMeetings(ctx context.Context, offset, limit int) ([]*models.BoardMeeting, int64, error) {
	var meetings []*models.BoardMeeting
	var total int64

	r.db.WithContext(ctx).Model(&models.BoardMeeting{}).Count(&total)

	err := r.db.WithContext(ctx).
		Order("meeting_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&meetings).Error

	return meetings, total, err
}

// UpdateMeeting updates a meeting
func (r *governanceRepository) UpdateMeeting(ctx context.Context, meeting *models.BoardMeeting) error {
	return r.db.WithContext(ctx).Save(meeting).Error
}

// CreateAttendance records attendance. The composite unique index
// turns a duplicate record into domain.ErrAttendanceRecorded.
func (r *governanceRepository) CreateAttendance(ctx context.Context, att *models.BoardMeetingAttendance) error {
	err := r.db.WithContext(ctx).Create(att).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrAttendanceRecorded
	}
	return err
}

// ListAttendance lists attendance rows for a meeting
func (r *governanceRepository) ListAttendance(ctx context.Context, meetingID uint) ([]*models.BoardMeetingAttendance, error) {
	var rows []*models.BoardMeetingAttendance
	err := r.db.WithContext(ctx).
		Preload("BoardMember").
		Where("meeting_id = ?", meetingID).
		Find(&rows).Error
	return rows, err
}
