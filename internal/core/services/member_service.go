package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"sacco-ledger/internal/adapters/persistence/models"
	"sacco-ledger/internal/adapters/persistence/repositories"
	"sacco-ledger/internal/core/domain"
	"sacco-ledger/internal/pkg/refgen"
)

// MemberService handles membership lifecycle
type MemberService struct {
	db        TxRunner
	members   repositories.MemberRepository
	sequences repositories.SequenceRepository
	log       *logrus.Entry
}

// NewMemberService creates a new member service
func NewMemberService(db TxRunner, members repositories.MemberRepository, sequences repositories.SequenceRepository) *MemberService {
	return &MemberService{
		db:        db,
		members:   members,
		sequences: sequences,
		log:       logrus.WithField("service", "member"),
	}
}

// RegisterMemberInput represents member registration input
type RegisterMemberInput struct {
	UserID   uint   `json:"user_id" validate:"required"`
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone,omitempty"`
}

// Register creates a membership for a user. A user may hold at most
// one non-resigned membership; the membership number comes from a
// serialized counter inside the same transaction as the insert.
func (s *MemberService) Register(ctx context.Context, input *RegisterMemberInput) (*models.Member, error) {
	if input.FullName == "" {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.members.GetActiveByUserID(ctx, input.UserID); err == nil {
		return nil, domain.ErrDuplicateMembership
	} else if !errors.Is(err, domain.ErrMemberNotFound) {
		return nil, err
	}

	now := time.Now()
	member := &models.Member{
		UserID:   input.UserID,
		FullName: input.FullName,
		Phone:    input.Phone,
		Status:   domain.MemberActive,
		JoinedAt: now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		seq, err := s.sequences.Next(ctx, tx, refgen.MemberScope(now.Year()))
		if err != nil {
			return err
		}
		member.MemberNo = refgen.MemberNumber(now.Year(), seq)
		return s.members.Create(ctx, tx, member)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"member": member.MemberNo,
		"user":   input.UserID,
	}).Info("member registered")

	return member, nil
}

// GetByID gets a member by id
func (s *MemberService) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	return s.members.GetByID(ctx, id)
}

// GetByMemberNo gets a member by membership number
func (s *MemberService) GetByMemberNo(ctx context.Context, memberNo string) (*models.Member, error) {
	return s.members.GetByMemberNo(ctx, memberNo)
}

// List lists members with pagination
func (s *MemberService) List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	return s.members.List(ctx, offset, limit)
}

// ChangeStatus applies a membership status transition. Suspension can
// be lifted; resignation is terminal and soft deletes the row.
func (s *MemberService) ChangeStatus(ctx context.Context, memberID uint, newStatus domain.MemberStatus) (*models.Member, error) {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if member.Status == domain.MemberResigned {
		return nil, domain.ErrMemberResigned
	}

	switch newStatus {
	case domain.MemberActive, domain.MemberSuspended:
		if member.Status == newStatus {
			return member, nil
		}
		member.Status = newStatus
		if err := s.members.Update(ctx, member); err != nil {
			return nil, err
		}
	case domain.MemberResigned:
		if err := s.members.Resign(ctx, member); err != nil {
			return nil, err
		}
	default:
		return nil, domain.ErrInvalidStatusChange
	}

	s.log.WithFields(logrus.Fields{
		"member": member.MemberNo,
		"status": newStatus,
	}).Info("member status changed")

	return member, nil
}
