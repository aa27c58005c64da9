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

// transactionRepository implements TransactionRepository. The ledger
// is append-only: Update and Delete are rejected at this boundary
// instead of relying on callers to behave.
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Create appends a transaction inside the supplied transaction
func (r *transactionRepository) Create(ctx context.Context, tx *gorm.DB, t *models.Transaction) error {
	return session(r.db, tx).WithContext(ctx).Create(t).Error
}

// GetByID gets a transaction by id
func (r *transactionRepository) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.WithContext(ctx).First(&t, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetByReference gets a transaction by its reference string
func (r *transactionRepository) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListByAccount lists an account's transactions, newest first,
// optionally bounded by a date range.
func (r *transactionRepository) ListByAccount(ctx context.Context, accountID uint, from, to *time.Time, offset, limit int) ([]*models.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Transaction{}).Where("account_id = ?", accountID)
	if from != nil {
		query = query.Where("transaction_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("transaction_date <= ?", *to)
	}

	var total int64
	query.Count(&total)

	var transactions []*models.Transaction
	err := query.
		Order("transaction_date DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&transactions).Error

	return transactions, total, err
}

// SumAmountByType sums posted amounts for a transaction type
func (r *transactionRepository) SumAmountByType(ctx context.Context, txType domain.TransactionType) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("SUM(amount)").
		Where("type = ?", txType).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// Update always fails: posted transactions are immutable.
func (r *transactionRepository) Update(ctx context.Context, t *models.Transaction) error {
	return domain.ErrTransactionImmutable
}

// Delete always fails: posted transactions are immutable.
func (r *transactionRepository) Delete(ctx context.Context, id uint) error {
	return domain.ErrTransactionImmutable
}
