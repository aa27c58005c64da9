package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"sacco-ledger/internal/adapters/persistence/models"
	"sacco-ledger/internal/adapters/persistence/repositories"
	"sacco-ledger/internal/core/domain"
	"sacco-ledger/internal/pkg/loanmath"
	"sacco-ledger/internal/pkg/refgen"
)

// TxRunner runs a function inside a database transaction. *gorm.DB
// satisfies it; tests substitute an in-memory runner.
type TxRunner interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// maxPostAttempts bounds optimistic-lock retries per posting. With the
// in-process account lock held, conflicts only come from writers in
// other processes.
const maxPostAttempts = 5

// LedgerService owns accounts and the append-only transaction log.
// Postings against a single account are serialized by a per-account
// lock; the version column on accounts guards against writers in other
// processes.
type LedgerService struct {
	db        TxRunner
	members   repositories.MemberRepository
	accounts  repositories.AccountRepository
	txs       repositories.TransactionRepository
	sequences repositories.SequenceRepository
	settings  *SettingsService
	log       *logrus.Entry

	accountLocks sync.Map // account id -> *sync.Mutex
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	db TxRunner,
	members repositories.MemberRepository,
	accounts repositories.AccountRepository,
	txs repositories.TransactionRepository,
	sequences repositories.SequenceRepository,
	settings *SettingsService,
) *LedgerService {
	return &LedgerService{
		db:        db,
		members:   members,
		accounts:  accounts,
		txs:       txs,
		sequences: sequences,
		settings:  settings,
		log:       logrus.WithField("service", "ledger"),
	}
}

// LockAccount serializes postings against one account within this
// process. Callers running their own transactional unit (loan
// disbursement, dividend payout) must hold the lock around it.
func (s *LedgerService) LockAccount(accountID uint) (unlock func()) {
	v, _ := s.accountLocks.LoadOrStore(accountID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// lockAccounts locks two accounts in id order to avoid deadlock.
func (s *LedgerService) lockAccounts(a, b uint) (unlock func()) {
	first, second := a, b
	if first > second {
		first, second = second, first
	}
	unlockFirst := s.LockAccount(first)
	unlockSecond := s.LockAccount(second)
	return func() {
		unlockSecond()
		unlockFirst()
	}
}

// OpenAccountInput represents open account input
type OpenAccountInput struct {
	MemberID     uint               `json:"member_id" validate:"required"`
	Type         domain.AccountType `json:"type" validate:"required"`
	InterestRate decimal.Decimal    `json:"interest_rate,omitempty"`
}

// OpenAccount opens an account for a member. The account number is
// drawn from a serialized counter inside the same database transaction
// that creates the row, so concurrent opens cannot collide.
func (s *LedgerService) OpenAccount(ctx context.Context, input *OpenAccountInput) (*models.Account, error) {
	if !input.Type.IsValid() {
		return nil, domain.ErrInvalidAccountType
	}

	member, err := s.members.GetByID(ctx, input.MemberID)
	if err != nil {
		return nil, err
	}
	if member.Status != domain.MemberActive {
		return nil, domain.ErrMemberNotActive
	}

	if _, err := s.accounts.GetActiveByMemberAndType(ctx, input.MemberID, input.Type); err == nil {
		return nil, domain.ErrDuplicateAccount
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	rate := input.InterestRate
	if rate.IsZero() && s.settings != nil {
		rate = s.settings.GetDecimal(ctx, SettingSavingsInterestRate, decimal.Zero)
	}

	year := time.Now().Year()
	account := &models.Account{
		MemberID:         input.MemberID,
		Type:             input.Type,
		Balance:          decimal.Zero,
		AvailableBalance: decimal.Zero,
		InterestRate:     rate,
		Status:           domain.AccountStatusActive,
		Version:          1,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		seq, err := s.sequences.Next(ctx, tx, refgen.AccountScope(input.Type.Code(), year))
		if err != nil {
			return err
		}
		account.AccountNumber = refgen.AccountNumber(input.Type.Code(), year, seq)
		return s.accounts.Create(ctx, tx, account)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"account": account.AccountNumber,
		"member":  member.MemberNo,
		"type":    input.Type,
	}).Info("account opened")

	return account, nil
}

// PostingInput represents a single ledger posting
type PostingInput struct {
	AccountID   uint                   `json:"account_id" validate:"required"`
	Type        domain.TransactionType `json:"type" validate:"required"`
	Amount      decimal.Decimal        `json:"amount" validate:"required"`
	Description string                 `json:"description,omitempty"`
}

// PostTransaction validates and appends one posting, updating the
// account balance atomically with the append.
func (s *LedgerService) PostTransaction(ctx context.Context, input *PostingInput) (*models.Transaction, error) {
	unlock := s.LockAccount(input.AccountID)
	defer unlock()

	var posted *models.Transaction
	var err error
	for attempt := 1; attempt <= maxPostAttempts; attempt++ {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			t, perr := s.Post(ctx, tx, input)
			if perr != nil {
				return perr
			}
			posted = t
			return nil
		})
		if !errors.Is(err, domain.ErrStaleAccount) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return posted, nil
}

// Post appends one posting inside an existing database transaction.
// Callers must hold the account lock (LockAccount) and run inside
// db.Transaction so the append and the balance update commit together.
func (s *LedgerService) Post(ctx context.Context, tx *gorm.DB, input *PostingInput) (*models.Transaction, error) {
	if !input.Type.IsValid() {
		return nil, domain.ErrInvalidInput
	}
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	account, err := s.accounts.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if account.Status != domain.AccountStatusActive {
		return nil, domain.ErrAccountClosed
	}

	signed := input.Amount
	if input.Type.IsDebit() {
		if account.AvailableBalance.LessThan(input.Amount) {
			return nil, domain.ErrInsufficientFunds
		}
		signed = input.Amount.Neg()
	}

	now := time.Now()
	t := &models.Transaction{
		Reference:       refgen.TransactionRef(now),
		AccountID:       account.ID,
		MemberID:        account.MemberID,
		Type:            input.Type,
		Amount:          input.Amount,
		BalanceBefore:   account.Balance,
		BalanceAfter:    account.Balance.Add(signed),
		Description:     input.Description,
		TransactionDate: now,
	}

	if err := s.txs.Create(ctx, tx, t); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Reference collision; one retry with fresh entropy.
			t.Reference = refgen.TransactionRef(now)
			err = s.txs.Create(ctx, tx, t)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := s.accounts.ApplyBalanceChange(ctx, tx, account.ID, signed, signed, account.Version); err != nil {
		return nil, err
	}

	return t, nil
}

// TransferInput represents transfer input
type TransferInput struct {
	FromAccountID uint            `json:"from_account_id" validate:"required"`
	ToAccountID   uint            `json:"to_account_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Description   string          `json:"description,omitempty"`
}

// Transfer moves funds between two accounts as a debit transfer leg
// and a credit deposit leg committed in one database transaction.
func (s *LedgerService) Transfer(ctx context.Context, input *TransferInput) (out *models.Transaction, in *models.Transaction, err error) {
	if input.FromAccountID == input.ToAccountID {
		return nil, nil, domain.ErrInvalidInput
	}

	unlock := s.lockAccounts(input.FromAccountID, input.ToAccountID)
	defer unlock()

	to, err := s.accounts.GetByID(ctx, input.ToAccountID)
	if err != nil {
		return nil, nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		out, err = s.Post(ctx, tx, &PostingInput{
			AccountID:   input.FromAccountID,
			Type:        domain.TxTransfer,
			Amount:      input.Amount,
			Description: fmt.Sprintf("transfer to %s: %s", to.AccountNumber, input.Description),
		})
		if err != nil {
			return err
		}

		in, err = s.Post(ctx, tx, &PostingInput{
			AccountID:   input.ToAccountID,
			Type:        domain.TxDeposit,
			Amount:      input.Amount,
			Description: fmt.Sprintf("transfer from account %d: %s", input.FromAccountID, input.Description),
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return out, in, nil
}

// PlaceHold reserves part of the available balance, e.g. for a pending
// withdrawal. The book balance is untouched.
func (s *LedgerService) PlaceHold(ctx context.Context, accountID uint, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}

	unlock := s.LockAccount(accountID)
	defer unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		account, err := s.accounts.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		if account.Status != domain.AccountStatusActive {
			return domain.ErrAccountClosed
		}
		if account.AvailableBalance.LessThan(amount) {
			return domain.ErrInsufficientFunds
		}
		return s.accounts.ApplyBalanceChange(ctx, tx, accountID, decimal.Zero, amount.Neg(), account.Version)
	})
}

// ReleaseHold returns held funds to the available balance. Releasing
// more than is held would push available past the book balance, which
// is rejected.
func (s *LedgerService) ReleaseHold(ctx context.Context, accountID uint, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}

	unlock := s.LockAccount(accountID)
	defer unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		account, err := s.accounts.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		if account.AvailableBalance.Add(amount).GreaterThan(account.Balance) {
			return domain.ErrInvalidAmount
		}
		return s.accounts.ApplyBalanceChange(ctx, tx, accountID, decimal.Zero, amount, account.Version)
	})
}

// GetAccount gets an account by id
func (s *LedgerService) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// ListMemberAccounts lists a member's accounts
func (s *LedgerService) ListMemberAccounts(ctx context.Context, memberID uint) ([]*models.Account, error) {
	return s.accounts.ListByMember(ctx, memberID)
}

// CloseAccount closes an empty account
func (s *LedgerService) CloseAccount(ctx context.Context, accountID uint) error {
	unlock := s.LockAccount(accountID)
	defer unlock()

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.Status != domain.AccountStatusActive {
		return domain.ErrAccountClosed
	}
	if !account.Balance.IsZero() {
		return domain.ErrAccountNotEmpty
	}

	if err := s.accounts.UpdateStatus(ctx, accountID, domain.AccountStatusClosed); err != nil {
		return err
	}

	s.log.WithField("account", account.AccountNumber).Info("account closed")
	return nil
}

// StatementInput represents statement query input
type StatementInput struct {
	AccountID uint
	From      *time.Time
	To        *time.Time
	Offset    int
	Limit     int
}

// GetStatement returns an account's transactions, newest first.
func (s *LedgerService) GetStatement(ctx context.Context, input *StatementInput) ([]*models.Transaction, int64, error) {
	if _, err := s.accounts.GetByID(ctx, input.AccountID); err != nil {
		return nil, 0, err
	}
	return s.txs.ListByAccount(ctx, input.AccountID, input.From, input.To, input.Offset, input.Limit)
}

// PostMonthlyInterest posts one month of interest to every active
// account of the given type carrying a positive rate and balance.
// Invoked by the cron service.
func (s *LedgerService) PostMonthlyInterest(ctx context.Context, accType domain.AccountType) (int, error) {
	accounts, err := s.accounts.ListActiveByType(ctx, accType)
	if err != nil {
		return 0, err
	}

	posted := 0
	for _, account := range accounts {
		if !account.InterestRate.IsPositive() || !account.Balance.IsPositive() {
			continue
		}
		interest := loanmath.MonthlyInterest(account.Balance, account.InterestRate)
		if !interest.IsPositive() {
			continue
		}

		_, err := s.PostTransaction(ctx, &PostingInput{
			AccountID:   account.ID,
			Type:        domain.TxInterest,
			Amount:      interest,
			Description: fmt.Sprintf("monthly interest at %s%% p.a.", account.InterestRate),
		})
		if err != nil {
			s.log.WithError(err).WithField("account", account.AccountNumber).Warn("interest posting failed")
			continue
		}
		posted++
	}
	return posted, nil
}
