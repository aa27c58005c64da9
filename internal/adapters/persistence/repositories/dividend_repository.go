package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"sacco-ledger/internal/adapters/persistence/models"
	"sacco-ledger/internal/core/domain"
)

// dividendRepository implements DividendRepository
type dividendRepository struct {
	db *gorm.DB
}

// NewDividendRepository creates a new dividend repository
func NewDividendRepository(db *gorm.DB) DividendRepository {
	return &dividendRepository{db: db}
}

// Create creates a dividend declaration. The unique index on year
// turns a duplicate declaration into domain.ErrDividendExists.
func (r *dividendRepository) Create(ctx context.Context, dividend *models.Dividend) error {
	err := r.db.WithContext(ctx).Create(dividend).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDividendExists
	}
	return err
}

// GetByID gets a dividend by id
func (r *dividendRepository) GetByID(ctx context.Context, id uint) (*models.Dividend, error) {
	var dividend models.Dividend
	err := r.db.WithContext(ctx).First(&dividend, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDividendNotFound
		}
		return nil, err
	}
	return &dividend, nil
}

// GetByYear gets a dividend by year
func (r *dividendRepository) GetByYear(ctx context.Context, year int) (*models.Dividend, error) {
	var dividend models.Dividend
	err := r.db.WithContext(ctx).Where("year = ?", year).First(&dividend).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDividendNotFound
		}
		return nil, err
	}
	return &dividend, nil
}

// UpdateTx updates a dividend inside the supplied transaction
func (r *dividendRepository) UpdateTx(ctx context.Context, tx *gorm.DB, dividend *models.Dividend) error {
	return session(r.db, tx).WithContext(ctx).Save(dividend).Error
}

// MarkDistributedTx flips declared to distributed; the conditional
// UPDATE makes the second of two concurrent runs fail.
func (r *dividendRepository) MarkDistributedTx(ctx context.Context, tx *gorm.DB, dividendID uint) error {
	res := session(r.db, tx).WithContext(ctx).
		Model(&models.Dividend{}).
		Where("id = ? AND status = ?", dividendID, domain.DividendDeclared).
		Update("status", domain.DividendDistributed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrDividendDistributed
	}
	return nil
}

// List lists dividends, newest year first
func (r *dividendRepository) List(ctx context.Context) ([]*models.Dividend, error) {
	var dividends []*models.Dividend
	err := r.db.WithContext(ctx).Order("year DESC").Find(&dividends).Error
	return dividends, err
}

// CreateMemberDividend creates a payout row inside the supplied transaction
func (r *dividendRepository) CreateMemberDividend(ctx context.Context, tx *gorm.DB, md *models.MemberDividend) error {
	return session(r.db, tx).WithContext(ctx).Create(md).Error
}

// GetMemberDividendByID gets a payout row by id
func (r *dividendRepository) GetMemberDividendByID(ctx context.Context, id uint) (*models.MemberDividend, error) {
	var md models.MemberDividend
	err := r.db.WithContext(ctx).First(&md, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberDividendNotFound
		}
		return nil, err
	}
	return &md, nil
}

// ListMemberDividends lists payout rows for a dividend
func (r *dividendRepository) ListMemberDividends(ctx context.Context, dividendID uint) ([]*models.MemberDividend, error) {
	var mds []*models.MemberDividend
	err := r.db.WithContext(ctx).
		Where("dividend_id = ?", dividendID).
		Order("member_id ASC").
		Find(&mds).Error
	return mds, err
}

// UpdateMemberDividendTx updates a payout row inside the supplied transaction
func (r *dividendRepository) UpdateMemberDividendTx(ctx context.Context, tx *gorm.DB, md *models.MemberDividend) error {
	return session(r.db, tx).WithContext(ctx).Save(md).Error
}

// ClaimMemberDividendTx flips a pending payout to paid; only one of
// two concurrent payers wins the conditional UPDATE.
func (r *dividendRepository) ClaimMemberDividendTx(ctx context.Context, tx *gorm.DB, memberDividendID uint, paidAt time.Time) error {
	res := session(r.db, tx).WithContext(ctx).
		Model(&models.MemberDividend{}).
		Where("id = ? AND status = ?", memberDividendID, domain.PayoutPending).
		Updates(map[string]interface{}{
			"status":  domain.PayoutPaid,
			"paid_at": paidAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrDividendAlreadyPaid
	}
	return nil
}

// SumPendingPayouts sums unpaid member dividend amounts
func (r *dividendRepository) SumPendingPayouts(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.MemberDividend{}).
		Select("SUM(dividend_amount)").
		Where("status = ?", domain.PayoutPending).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
