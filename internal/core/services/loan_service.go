package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"sacco-ledger/internal/adapters/persistence/models"
	"sacco-ledger/internal/adapters/persistence/repositories"
	"sacco-ledger/internal/core/domain"
	"sacco-ledger/internal/pkg/loanmath"
)

// LoanService drives the loan state machine:
//
//	pending -> approved -> active -> {completed | defaulted}
//	pending -> rejected
//
// Disbursement and repayment are ledger postings; each pairs the loan
// transition with its posting in one database transaction.
type LoanService struct {
	db       TxRunner
	loans    repositories.LoanRepository
	products repositories.LoanProductRepository
	members  repositories.MemberRepository
	accounts repositories.AccountRepository
	ledger   *LedgerService
	settings *SettingsService
	log      *logrus.Entry
}

// NewLoanService creates a new loan service
func NewLoanService(
	db TxRunner,
	loans repositories.LoanRepository,
	products repositories.LoanProductRepository,
	members repositories.MemberRepository,
	accounts repositories.AccountRepository,
	ledger *LedgerService,
	settings *SettingsService,
) *LoanService {
	return &LoanService{
		db:       db,
		loans:    loans,
		products: products,
		members:  members,
		accounts: accounts,
		ledger:   ledger,
		settings: settings,
		log:      logrus.WithField("service", "loan"),
	}
}

// ApplyInput represents loan application input
type ApplyInput struct {
	MemberID   uint            `json:"member_id" validate:"required"`
	ProductID  uint            `json:"product_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
	TermMonths int             `json:"term_months" validate:"required"`
	Purpose    string          `json:"purpose,omitempty"`
}

// Apply validates a loan application against its product and creates
// the loan in pending state with computed totals.
func (s *LoanService) Apply(ctx context.Context, input *ApplyInput) (*models.Loan, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	member, err := s.members.GetByID(ctx, input.MemberID)
	if err != nil {
		return nil, err
	}
	if member.Status != domain.MemberActive {
		return nil, domain.ErrMemberNotActive
	}

	product, err := s.products.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, domain.ErrLoanProductNotFound
	}

	if input.Amount.LessThan(product.MinAmount) || input.Amount.GreaterThan(product.MaxAmount) {
		return nil, domain.ErrLoanOutOfRange
	}
	if input.TermMonths < product.MinTermMonths || input.TermMonths > product.MaxTermMonths {
		return nil, domain.ErrLoanOutOfRange
	}

	guarantorsRequired := product.MinGuarantors
	if guarantorsRequired == 0 && s.settings != nil {
		guarantorsRequired = s.settings.GetInt(ctx, SettingDefaultGuarantors, 0)
	}

	loan := &models.Loan{
		MemberID:           input.MemberID,
		ProductID:          input.ProductID,
		Principal:          input.Amount,
		InterestRate:       product.InterestRate,
		TenureMonths:       input.TermMonths,
		Status:             domain.LoanPending,
		GuarantorsRequired: guarantorsRequired,
		Purpose:            input.Purpose,
		AppliedAt:          time.Now(),
	}
	s.recalculate(loan)

	if err := s.loans.Create(ctx, loan); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"loan":      loan.ID,
		"member":    member.MemberNo,
		"principal": loan.Principal,
	}).Info("loan application created")

	return loan, nil
}

// recalculate rederives the loan's totals from its terms. Idempotent;
// must never run after disbursement.
func (s *LoanService) recalculate(loan *models.Loan) {
	totals := loanmath.Compute(loanmath.Terms{
		Principal:    loan.Principal,
		AnnualRate:   loan.InterestRate,
		TenureMonths: loan.TenureMonths,
	})
	loan.TotalInterest = totals.TotalInterest
	loan.TotalPayable = totals.TotalPayable
	loan.MonthlyInstallment = totals.MonthlyInstallment
	loan.BalanceRemaining = totals.TotalPayable.Sub(loan.AmountPaid)
}

// UpdateTermsInput represents loan term changes prior to disbursement
type UpdateTermsInput struct {
	Principal    *decimal.Decimal `json:"principal,omitempty"`
	InterestRate *decimal.Decimal `json:"interest_rate,omitempty"`
	TermMonths   *int             `json:"term_months,omitempty"`
}

// UpdateTerms changes principal/rate/tenure and recomputes totals.
// Terms are frozen once the loan is disbursed.
func (s *LoanService) UpdateTerms(ctx context.Context, loanID uint, input *UpdateTermsInput) (*models.Loan, error) {
	loan, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status.TermsFrozen() {
		return nil, domain.ErrLoanTermsFrozen
	}

	if input.Principal != nil {
		if !input.Principal.IsPositive() {
			return nil, domain.ErrInvalidAmount
		}
		loan.Principal = *input.Principal
	}
	if input.InterestRate != nil {
		loan.InterestRate = *input.InterestRate
	}
	if input.TermMonths != nil {
		if *input.TermMonths <= 0 {
			return nil, domain.ErrInvalidInput
		}
		loan.TenureMonths = *input.TermMonths
	}

	s.recalculate(loan)

	if err := s.loans.Update(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// ApproveGuarantor records one guarantor's approval. A guarantor may
// approve once; meeting the threshold moves the loan to approved.
func (s *LoanService) ApproveGuarantor(ctx context.Context, loanID, guarantorMemberID uint) (*models.Loan, error) {
	loan, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanPending {
		return nil, domain.ErrInvalidLoanState
	}
	if guarantorMemberID == loan.MemberID {
		return nil, domain.ErrGuarantorIsBorrower
	}

	guarantor, err := s.members.GetByID(ctx, guarantorMemberID)
	if err != nil {
		return nil, err
	}
	if guarantor.Status != domain.MemberActive {
		return nil, domain.ErrMemberNotActive
	}

	// The guarantor insert, the counter bump and the threshold flip
	// commit together. The in-place increment serializes concurrent
	// guarantors so none of their approvals is lost.
	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		err := s.loans.AddGuarantor(ctx, tx, &models.LoanGuarantor{
			LoanID:            loanID,
			GuarantorMemberID: guarantorMemberID,
			ApprovedAt:        now,
		})
		if err != nil {
			return err
		}

		n, err := s.loans.IncrementGuarantorsTx(ctx, tx, loanID)
		if err != nil {
			return err
		}
		loan.GuarantorsApproved = n

		if n >= loan.GuarantorsRequired {
			err := s.loans.TransitionStatusTx(ctx, tx, loanID, domain.LoanPending, domain.LoanApproved,
				map[string]interface{}{"approved_at": now})
			if err != nil {
				return err
			}
			loan.Status = domain.LoanApproved
			loan.ApprovedAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"loan":      loan.ID,
		"guarantor": guarantor.MemberNo,
		"approved":  loan.GuarantorsApproved,
		"required":  loan.GuarantorsRequired,
	}).Info("guarantor approved")

	return loan, nil
}

// Reject moves a pending loan to the rejected terminal state.
func (s *LoanService) Reject(ctx context.Context, loanID uint) (*models.Loan, error) {
	loan, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanPending {
		return nil, domain.ErrInvalidLoanState
	}

	if err := s.loans.TransitionStatusTx(ctx, nil, loan.ID, domain.LoanPending, domain.LoanRejected, nil); err != nil {
		return nil, err
	}
	loan.Status = domain.LoanRejected
	return loan, nil
}

// Disburse credits the loan principal to the given borrower account
// and activates the loan. The posting and the state transition commit
// together: a crash between them cannot leave one without the other.
func (s *LoanService) Disburse(ctx context.Context, loanID, accountID uint) (*models.Loan, *models.Transaction, error) {
	loan, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}
	if loan.GuarantorsApproved < loan.GuarantorsRequired {
		return nil, nil, domain.ErrGuarantorsNotMet
	}
	if loan.Status != domain.LoanApproved {
		return nil, nil, domain.ErrInvalidLoanState
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	if account.MemberID != loan.MemberID {
		return nil, nil, domain.ErrInvalidInput
	}

	unlock := s.ledger.LockAccount(accountID)
	defer unlock()

	var posted *models.Transaction
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Claim the transition before posting: of two concurrent
		// disbursements only one wins the conditional UPDATE, and the
		// loser fails here before any credit is written.
		now := time.Now()
		err := s.loans.TransitionStatusTx(ctx, tx, loan.ID, domain.LoanApproved, domain.LoanActive,
			map[string]interface{}{"disbursed_at": now})
		if err != nil {
			return err
		}
		loan.Status = domain.LoanActive
		loan.DisbursedAt = &now

		posted, err = s.ledger.Post(ctx, tx, &PostingInput{
			AccountID:   accountID,
			Type:        domain.TxLoanDisbursement,
			Amount:      loan.Principal,
			Description: fmt.Sprintf("loan %d disbursement", loan.ID),
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.WithFields(logrus.Fields{
		"loan":      loan.ID,
		"account":   account.AccountNumber,
		"principal": loan.Principal,
	}).Info("loan disbursed")

	return loan, posted, nil
}

// RecordRepayment debits a repayment from the given borrower account
// and applies it to the loan. Overpayment is rejected outright so the
// caller must handle the excess explicitly.
func (s *LoanService) RecordRepayment(ctx context.Context, loanID, accountID uint, amount decimal.Decimal) (*models.Loan, *models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, nil, domain.ErrInvalidAmount
	}

	loan, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	if account.MemberID != loan.MemberID {
		return nil, nil, domain.ErrInvalidInput
	}

	unlock := s.ledger.LockAccount(accountID)
	defer unlock()

	// The repayment write is guarded by the amount_paid value it was
	// computed against; a concurrent repayment from another account
	// forces a re-read instead of losing the increment.
	for attempt := 0; attempt < maxPostAttempts; attempt++ {
		if loan.Status != domain.LoanActive {
			return nil, nil, domain.ErrInvalidLoanState
		}
		if amount.GreaterThan(loan.BalanceRemaining) {
			return nil, nil, domain.ErrLoanOverpayment
		}

		prevPaid := loan.AmountPaid
		loan.AmountPaid = prevPaid.Add(amount)
		loan.BalanceRemaining = loan.TotalPayable.Sub(loan.AmountPaid)
		if loan.IsFullyPaid() {
			now := time.Now()
			loan.Status = domain.LoanCompleted
			loan.CompletedAt = &now
		}

		var posted *models.Transaction
		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.loans.ApplyRepaymentTx(ctx, tx, loan, prevPaid); err != nil {
				return err
			}

			var perr error
			posted, perr = s.ledger.Post(ctx, tx, &PostingInput{
				AccountID:   accountID,
				Type:        domain.TxLoanRepayment,
				Amount:      amount,
				Description: fmt.Sprintf("loan %d repayment", loan.ID),
			})
			return perr
		})
		if errors.Is(err, domain.ErrStaleLoan) {
			if loan, err = s.loans.GetByID(ctx, loanID); err != nil {
				return nil, nil, err
			}
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		s.log.WithFields(logrus.Fields{
			"loan":      loan.ID,
			"amount":    amount,
			"remaining": loan.BalanceRemaining,
		}).Info("loan repayment recorded")

		return loan, posted, nil
	}
	return nil, nil, domain.ErrStaleLoan
}

// GetByID gets a loan by id
func (s *LoanService) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	return s.loans.GetByID(ctx, id)
}

// List lists loans with pagination
func (s *LoanService) List(ctx context.Context, offset, limit int) ([]*models.Loan, int64, error) {
	return s.loans.List(ctx, offset, limit)
}

// ListByMember lists a member's loans
func (s *LoanService) ListByMember(ctx context.Context, memberID uint) ([]*models.Loan, error) {
	return s.loans.ListByMember(ctx, memberID)
}

// Schedule expands a loan into its repayment plan. Computed on the
// fly from the stored terms, anchored at the disbursement date (or
// application date for loans not yet disbursed).
func (s *LoanService) Schedule(ctx context.Context, loanID uint) ([]loanmath.Installment, error) {
	loan, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	start := loan.AppliedAt
	if loan.DisbursedAt != nil {
		start = *loan.DisbursedAt
	}

	return loanmath.Schedule(loanmath.Terms{
		Principal:    loan.Principal,
		AnnualRate:   loan.InterestRate,
		TenureMonths: loan.TenureMonths,
	}, start), nil
}

// SweepDefaults marks active loans unpaid past tenure plus grace as
// defaulted. Invoked by the cron service; returns the number swept.
func (s *LoanService) SweepDefaults(ctx context.Context, now time.Time) (int, error) {
	graceDays := 30
	if s.settings != nil {
		graceDays = s.settings.GetInt(ctx, SettingDefaultGraceDays, graceDays)
	}

	// A loan is overdue when its full tenure plus grace has elapsed
	// since disbursement and a balance remains.
	candidates, err := s.loans.ListActiveDisbursedBefore(ctx, now)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, loan := range candidates {
		if loan.DisbursedAt == nil {
			continue
		}
		deadline := loan.DisbursedAt.AddDate(0, loan.TenureMonths, graceDays)
		if now.Before(deadline) || !loan.BalanceRemaining.IsPositive() {
			continue
		}

		// Conditional on the loan still being active so a repayment
		// completing mid-sweep is not clobbered.
		if err := s.loans.TransitionStatusTx(ctx, nil, loan.ID, domain.LoanActive, domain.LoanDefaulted, nil); err != nil {
			s.log.WithError(err).WithField("loan", loan.ID).Warn("default sweep update failed")
			continue
		}
		swept++

		s.log.WithFields(logrus.Fields{
			"loan":      loan.ID,
			"remaining": loan.BalanceRemaining,
		}).Warn("loan marked defaulted")
	}
	return swept, nil
}
