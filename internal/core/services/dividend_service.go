package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"sacco-ledger/internal/adapters/persistence/models"
	"sacco-ledger/internal/adapters/persistence/repositories"
	"sacco-ledger/internal/core/domain"
)

// DividendService declares yearly dividends, fans them out pro-rata
// over shares balances and pays them through the ledger.
type DividendService struct {
	db        TxRunner
	dividends repositories.DividendRepository
	accounts  repositories.AccountRepository
	ledger    *LedgerService
	log       *logrus.Entry
}

// NewDividendService creates a new dividend service
func NewDividendService(
	db TxRunner,
	dividends repositories.DividendRepository,
	accounts repositories.AccountRepository,
	ledger *LedgerService,
) *DividendService {
	return &DividendService{
		db:        db,
		dividends: dividends,
		accounts:  accounts,
		ledger:    ledger,
		log:       logrus.WithField("service", "dividend"),
	}
}

// DeclareInput represents dividend declaration input
type DeclareInput struct {
	Year        int             `json:"year" validate:"required"`
	TotalProfit decimal.Decimal `json:"total_profit" validate:"required"`
	Rate        decimal.Decimal `json:"rate" validate:"required"`
}

// Declare creates the yearly dividend record. Per-member rows are not
// created until ComputeDistribution runs.
func (s *DividendService) Declare(ctx context.Context, input *DeclareInput) (*models.Dividend, error) {
	if !input.TotalProfit.IsPositive() || !input.Rate.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if input.Year < 1900 {
		return nil, domain.ErrInvalidInput
	}

	dividend := &models.Dividend{
		Year:        input.Year,
		TotalProfit: input.TotalProfit,
		Rate:        input.Rate,
		Status:      domain.DividendDeclared,
		DeclaredAt:  time.Now(),
	}

	if err := s.dividends.Create(ctx, dividend); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"year":   input.Year,
		"profit": input.TotalProfit,
		"rate":   input.Rate,
	}).Info("dividend declared")

	return dividend, nil
}

// ComputeDistribution creates one pending payout per member holding a
// non-zero shares balance, pro-rata against the total shares balance.
// The snapshot read and the payout inserts share one database
// transaction so concurrent share movements cannot skew the split.
// Amounts truncate to 2 decimal places, so the sum never exceeds the
// distributable pool.
func (s *DividendService) ComputeDistribution(ctx context.Context, dividendID uint) ([]*models.MemberDividend, error) {
	dividend, err := s.dividends.GetByID(ctx, dividendID)
	if err != nil {
		return nil, err
	}
	if dividend.Status != domain.DividendDeclared {
		return nil, domain.ErrDividendDistributed
	}

	var payouts []*models.MemberDividend
	err = s.db.Transaction(func(tx *gorm.DB) error {
		balances, err := s.accounts.SharesBalancesByMember(ctx, tx)
		if err != nil {
			return err
		}
		if len(balances) == 0 {
			return domain.ErrNoShareCapital
		}

		totalShares := decimal.Zero
		for _, b := range balances {
			totalShares = totalShares.Add(b)
		}
		if !totalShares.IsPositive() {
			return domain.ErrNoShareCapital
		}

		// Claim the distribution before writing payout rows so a
		// concurrent run fails here instead of duplicating them.
		if err := s.dividends.MarkDistributedTx(ctx, tx, dividend.ID); err != nil {
			return err
		}
		dividend.Status = domain.DividendDistributed

		pool := dividend.TotalProfit.Mul(dividend.Rate).Div(decimal.NewFromInt(100))

		allocated := decimal.Zero
		for memberID, shares := range balances {
			amount := shares.Div(totalShares).Mul(pool).Truncate(2)
			if !amount.IsPositive() {
				continue
			}

			md := &models.MemberDividend{
				DividendID:     dividend.ID,
				MemberID:       memberID,
				SharesBalance:  shares,
				DividendAmount: amount,
				Status:         domain.PayoutPending,
			}
			if err := s.dividends.CreateMemberDividend(ctx, tx, md); err != nil {
				return err
			}
			payouts = append(payouts, md)
			allocated = allocated.Add(amount)
		}

		dividend.DistributedAmount = allocated
		return s.dividends.UpdateTx(ctx, tx, dividend)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"year":      dividend.Year,
		"payouts":   len(payouts),
		"allocated": dividend.DistributedAmount,
	}).Info("dividend distribution computed")

	return payouts, nil
}

// MarkPaid posts the dividend credit to the given member account and
// flips the payout to paid. A second call fails rather than crediting
// twice.
func (s *DividendService) MarkPaid(ctx context.Context, memberDividendID, accountID uint) (*models.Transaction, error) {
	md, err := s.dividends.GetMemberDividendByID(ctx, memberDividendID)
	if err != nil {
		return nil, err
	}
	if md.Status == domain.PayoutPaid {
		return nil, domain.ErrDividendAlreadyPaid
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.MemberID != md.MemberID {
		return nil, domain.ErrInvalidInput
	}

	unlock := s.ledger.LockAccount(accountID)
	defer unlock()

	var posted *models.Transaction
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Claim the payout before posting: of two concurrent payers
		// only one wins the conditional flip, and the loser fails here
		// before any credit is written.
		now := time.Now()
		if err := s.dividends.ClaimMemberDividendTx(ctx, tx, md.ID, now); err != nil {
			return err
		}
		md.Status = domain.PayoutPaid
		md.PaidAt = &now

		var perr error
		posted, perr = s.ledger.Post(ctx, tx, &PostingInput{
			AccountID:   accountID,
			Type:        domain.TxDividend,
			Amount:      md.DividendAmount,
			Description: fmt.Sprintf("dividend payout %d", md.DividendID),
		})
		if perr != nil {
			return perr
		}

		md.TransactionID = &posted.ID
		return s.dividends.UpdateMemberDividendTx(ctx, tx, md)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"payout": md.ID,
		"amount": md.DividendAmount,
	}).Info("member dividend paid")

	return posted, nil
}

// GetByID gets a dividend by id
func (s *DividendService) GetByID(ctx context.Context, id uint) (*models.Dividend, error) {
	return s.dividends.GetByID(ctx, id)
}

// List lists declared dividends
func (s *DividendService) List(ctx context.Context) ([]*models.Dividend, error) {
	return s.dividends.List(ctx)
}

// ListPayouts lists the per-member rows of a dividend
func (s *DividendService) ListPayouts(ctx context.Context, dividendID uint) ([]*models.MemberDividend, error) {
	if _, err := s.dividends.GetByID(ctx, dividendID); err != nil {
		return nil, err
	}
	return s.dividends.ListMemberDividends(ctx, dividendID)
}
