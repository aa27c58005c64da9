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

// loanRepository implements LoanRepository
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// Create creates a loan
func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// GetByID gets a loan by id with product and guarantors
func (r *loanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Guarantors").
		First(&loan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return &loan, nil
}

// Update updates a loan
func (r *loanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Save(loan).Error
}

// UpdateTx updates a loan inside the supplied transaction
func (r *loanRepository) UpdateTx(ctx context.Context, tx *gorm.DB, loan *models.Loan) error {
	return session(r.db, tx).WithContext(ctx).Save(loan).Error
}

// List lists loans with pagination
func (r *loanRepository) List(ctx context.Context, offset, limit int) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	r.db.WithContext(ctx).Model(&models.Loan{}).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("Product").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&loans).Error

	return loans, total, err
}

// ListByMember lists a member's loans
func (r *loanRepository) ListByMember(ctx context.Context, memberID uint) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Find(&loans).Error
	return loans, err
}

// ListActiveDisbursedBefore lists active loans disbursed before cutoff,
// used by the default sweep.
func (r *loanRepository) ListActiveDisbursedBefore(ctx context.Context, cutoff time.Time) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Where("status = ? AND disbursed_at IS NOT NULL AND disbursed_at < ?", domain.LoanActive, cutoff).
		Find(&loans).Error
	return loans, err
}

// AddGuarantor records a guarantor approval. The composite unique
// index turns a double approval into domain.ErrGuarantorAlreadyApproved.
func (r *loanRepository) AddGuarantor(ctx context.Context, tx *gorm.DB, g *models.LoanGuarantor) error {
	err := session(r.db, tx).WithContext(ctx).Create(g).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrGuarantorAlreadyApproved
	}
	return err
}

// IncrementGuarantorsTx bumps the approval counter of a pending loan
// and reads the result back. The row lock held by the UPDATE
// serializes concurrent guarantors.
func (r *loanRepository) IncrementGuarantorsTx(ctx context.Context, tx *gorm.DB, loanID uint) (int, error) {
	res := session(r.db, tx).WithContext(ctx).
		Model(&models.Loan{}).
		Where("id = ? AND status = ?", loanID, domain.LoanPending).
		UpdateColumn("guarantors_approved", gorm.Expr("guarantors_approved + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, domain.ErrInvalidLoanState
	}

	var count int
	err := session(r.db, tx).WithContext(ctx).
		Model(&models.Loan{}).
		Select("guarantors_approved").
		Where("id = ?", loanID).
		Scan(&count).Error
	return count, err
}

// TransitionStatusTx flips the loan status guarded by the expected
// current status.
func (r *loanRepository) TransitionStatusTx(ctx context.Context, tx *gorm.DB, loanID uint, from, to domain.LoanStatus, set map[string]interface{}) error {
	updates := map[string]interface{}{"status": to}
	for col, v := range set {
		updates[col] = v
	}

	res := session(r.db, tx).WithContext(ctx).
		Model(&models.Loan{}).
		Where("id = ? AND status = ?", loanID, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInvalidLoanState
	}
	return nil
}

// ApplyRepaymentTx writes the repayment fields guarded by the
// amount_paid value the caller computed against.
func (r *loanRepository) ApplyRepaymentTx(ctx context.Context, tx *gorm.DB, loan *models.Loan, expectedPaid decimal.Decimal) error {
	res := session(r.db, tx).WithContext(ctx).
		Model(&models.Loan{}).
		Where("id = ? AND status = ? AND amount_paid = ?", loan.ID, domain.LoanActive, expectedPaid).
		Updates(map[string]interface{}{
			"amount_paid":       loan.AmountPaid,
			"balance_remaining": loan.BalanceRemaining,
			"status":            loan.Status,
			"completed_at":      loan.CompletedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStaleLoan
	}
	return nil
}

// CountByStatus counts loans in the given status
func (r *loanRepository) CountByStatus(ctx context.Context, status domain.LoanStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// SumOutstanding sums balance_remaining across active loans
func (r *loanRepository) SumOutstanding(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Select("SUM(balance_remaining)").
		Where("status = ?", domain.LoanActive).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// loanProductRepository implements LoanProductRepository
type loanProductRepository struct {
	db *gorm.DB
}

// NewLoanProductRepository creates a new loan product repository
func NewLoanProductRepository(db *gorm.DB) LoanProductRepository {
	return &loanProductRepository{db: db}
}

// Create creates a loan product
func (r *loanProductRepository) Create(ctx context.Context, product *models.LoanProduct) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// GetByID gets a loan product by id
func (r *loanProductRepository) GetByID(ctx context.Context, id uint) (*models.LoanProduct, error) {
	var product models.LoanProduct
	err := r.db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// GetByCode gets a loan product by code
func (r *loanProductRepository) GetByCode(ctx context.Context, code string) (*models.LoanProduct, error) {
	var product models.LoanProduct
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// List lists all loan products
func (r *loanProductRepository) List(ctx context.Context) ([]*models.LoanProduct, error) {
	var products []*models.LoanProduct
	err := r.db.WithContext(ctx).Order("code ASC").Find(&products).Error
	return products, err
}

// Update updates a loan product
func (r *loanProductRepository) Update(ctx context.Context, product *models.LoanProduct) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete soft deletes a loan product
func (r *loanProductRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.LoanProduct{}, id).Error
}
