package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"sacco-ledger/internal/adapters/persistence/models"
	"sacco-ledger/internal/core/domain"
)

// memberRepository implements MemberRepository
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// Create creates a member inside the supplied transaction
func (r *memberRepository) Create(ctx context.Context, tx *gorm.DB, member *models.Member) error {
	return session(r.db, tx).WithContext(ctx).Create(member).Error
}

// GetByID gets a member by id. Resigned (soft-deleted) members are
// still returned: their financial history must stay reachable.
func (r *memberRepository) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).Unscoped().First(&member, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// GetByMemberNo gets a member by membership number
func (r *memberRepository) GetByMemberNo(ctx context.Context, memberNo string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).Unscoped().Where("member_no = ?", memberNo).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// GetActiveByUserID gets the user's non-resigned membership, if any
func (r *memberRepository) GetActiveByUserID(ctx context.Context, userID uint) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status <> ?", userID, domain.MemberResigned).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// List lists members with pagination
func (r *memberRepository) List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	var members []*models.Member
	var total int64

	r.db.WithContext(ctx).Model(&models.Member{}).Count(&total)

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&members).Error

	return members, total, err
}

// Update updates a member
func (r *memberRepository) Update(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

// Resign marks the member resigned and soft deletes the row
func (r *memberRepository) Resign(ctx context.Context, member *models.Member) error {
	member.Status = domain.MemberResigned
	if err := r.db.WithContext(ctx).Save(member).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(member).Error
}

// CountByStatus counts members in the given status
func (r *memberRepository) CountByStatus(ctx context.Context, status domain.MemberStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().
		Model(&models.Member{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
