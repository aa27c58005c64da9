package repositories

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"sacco-ledger/internal/adapters/persistence/models"
	"sacco-ledger/internal/core/domain"
)

// accountRepository implements AccountRepository
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create creates an account inside the supplied transaction
func (r *accountRepository) Create(ctx context.Context, tx *gorm.DB, account *models.Account) error {
	return session(r.db, tx).WithContext(ctx).Create(account).Error
}

// GetByID gets an account by id
func (r *accountRepository) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).First(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// GetByNumber gets an account by its generated number
func (r *accountRepository) GetByNumber(ctx context.Context, number string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).Where("account_number = ?", number).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// GetActiveByMemberAndType gets the member's active account of a type
func (r *accountRepository) GetActiveByMemberAndType(ctx context.Context, memberID uint, accType domain.AccountType) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND type = ? AND status = ?", memberID, accType, domain.AccountStatusActive).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// ListByMember lists all of a member's accounts
func (r *accountRepository) ListByMember(ctx context.Context, memberID uint) ([]*models.Account, error) {
	var accounts []*models.Account
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at ASC").
		Find(&accounts).Error
	return accounts, err
}

// ListActiveByType lists all active accounts of a type
func (r *accountRepository) ListActiveByType(ctx context.Context, accType domain.AccountType) ([]*models.Account, error) {
	var accounts []*models.Account
	err := r.db.WithContext(ctx).
		Where("type = ? AND status = ?", accType, domain.AccountStatusActive).
		Find(&accounts).Error
	return accounts, err
}

// ApplyBalanceChange adds the deltas guarded by an optimistic version
// check. The arithmetic happens in the database so concurrent writers
// from other processes cannot clobber each other; a missed version
// surfaces as domain.ErrStaleAccount and the caller retries.
func (r *accountRepository) ApplyBalanceChange(ctx context.Context, tx *gorm.DB, id uint, balanceDelta, availableDelta decimal.Decimal, version int64) error {
	result := session(r.db, tx).WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"balance":           gorm.Expr("balance + ?", balanceDelta),
			"available_balance": gorm.Expr("available_balance + ?", availableDelta),
			"version":           gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrStaleAccount
	}
	return nil
}

// UpdateStatus updates an account's status
func (r *accountRepository) UpdateStatus(ctx context.Context, id uint, status domain.AccountStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// SharesBalancesByMember sums active shares balances per member within
// tx so dividend computation sees one consistent snapshot.
func (r *accountRepository) SharesBalancesByMember(ctx context.Context, tx *gorm.DB) (map[uint]decimal.Decimal, error) {
	type row struct {
		MemberID uint
		Total    decimal.Decimal
	}

	var rows []row
	err := session(r.db, tx).WithContext(ctx).
		Model(&models.Account{}).
		Select("member_id, SUM(balance) AS total").
		Where("type = ? AND status = ?", domain.AccountShares, domain.AccountStatusActive).
		Group("member_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	balances := make(map[uint]decimal.Decimal, len(rows))
	for _, r := range rows {
		if r.Total.IsPositive() {
			balances[r.MemberID] = r.Total
		}
	}
	return balances, nil
}

// sequenceRepository implements SequenceRepository
type sequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

// Next increments and returns the counter for scope. The UPDATE takes
// a row lock inside the surrounding transaction, so two concurrent
// opens can never draw the same value. Missing scopes are created on
// first use; the unique index on scope resolves the create race.
func (r *sequenceRepository) Next(ctx context.Context, tx *gorm.DB, scope string) (int64, error) {
	db := session(r.db, tx).WithContext(ctx)

	result := db.Model(&models.NumberSequence{}).
		Where("scope = ?", scope).
		Update("value", gorm.Expr("value + 1"))
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected == 0 {
		seq := &models.NumberSequence{Scope: scope, Value: 1}
		if err := db.Create(seq).Error; err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return 0, err
			}
			// Lost the create race; increment the winner's row.
			result = db.Model(&models.NumberSequence{}).
				Where("scope = ?", scope).
				Update("value", gorm.Expr("value + 1"))
			if result.Error != nil {
				return 0, result.Error
			}
		} else {
			return 1, nil
		}
	}

	var seq models.NumberSequence
	if err := db.Where("scope = ?", scope).First(&seq).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}
