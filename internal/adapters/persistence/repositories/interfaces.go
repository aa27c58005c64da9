package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"sacco-ledger/internal/adapters/persistence/models"
	"sacco-ledger/internal/core/domain"
)

// Methods taking a tx parameter participate in a surrounding
// database transaction (gorm.DB.Transaction); everything else runs on
// the repository's own session.

// MemberRepository defines member data access
type MemberRepository interface {
	Create(ctx context.Context, tx *gorm.DB, member *models.Member) error
	GetByID(ctx context.Context, id uint) (*models.Member, error)
	GetByMemberNo(ctx context.Context, memberNo string) (*models.Member, error)
	GetActiveByUserID(ctx context.Context, userID uint) (*models.Member, error)
	List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error)
	Update(ctx context.Context, member *models.Member) error
	Resign(ctx context.Context, member *models.Member) error
	CountByStatus(ctx context.Context, status domain.MemberStatus) (int64, error)
}

// AccountRepository defines account data access
type AccountRepository interface {
	Create(ctx context.Context, tx *gorm.DB, account *models.Account) error
	GetByID(ctx context.Context, id uint) (*models.Account, error)
	GetByNumber(ctx context.Context, number string) (*models.Account, error)
	GetActiveByMemberAndType(ctx context.Context, memberID uint, accType domain.AccountType) (*models.Account, error)
	ListByMember(ctx context.Context, memberID uint) ([]*models.Account, error)
	ListActiveByType(ctx context.Context, accType domain.AccountType) ([]*models.Account, error)
	// ApplyBalanceChange adds the deltas to balance/available_balance
	// guarded by an optimistic version check. Returns
	// domain.ErrStaleAccount when the version no longer matches.
	ApplyBalanceChange(ctx context.Context, tx *gorm.DB, id uint, balanceDelta, availableDelta decimal.Decimal, version int64) error
	UpdateStatus(ctx context.Context, id uint, status domain.AccountStatus) error
	// SharesBalancesByMember returns each member's summed active shares
	// balance, read within tx for a consistent snapshot.
	SharesBalancesByMember(ctx context.Context, tx *gorm.DB) (map[uint]decimal.Decimal, error)
}

// TransactionRepository defines transaction data access. Transactions
// are append-only; Update and Delete always fail with
// domain.ErrTransactionImmutable.
type TransactionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, t *models.Transaction) error
	GetByID(ctx context.Context, id uint) (*models.Transaction, error)
	GetByReference(ctx context.Context, reference string) (*models.Transaction, error)
	ListByAccount(ctx context.Context, accountID uint, from, to *time.Time, offset, limit int) ([]*models.Transaction, int64, error)
	SumAmountByType(ctx context.Context, txType domain.TransactionType) (decimal.Decimal, error)
	Update(ctx context.Context, t *models.Transaction) error
	Delete(ctx context.Context, id uint) error
}

// SequenceRepository hands out serialized counter values
type SequenceRepository interface {
	// Next increments and returns the counter for scope inside tx. The
	// row lock taken by the UPDATE serializes concurrent callers.
	Next(ctx context.Context, tx *gorm.DB, scope string) (int64, error)
}

// LoanRepository defines loan data access
type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	GetByID(ctx context.Context, id uint) (*models.Loan, error)
	Update(ctx context.Context, loan *models.Loan) error
	UpdateTx(ctx context.Context, tx *gorm.DB, loan *models.Loan) error
	List(ctx context.Context, offset, limit int) ([]*models.Loan, int64, error)
	ListByMember(ctx context.Context, memberID uint) ([]*models.Loan, error)
	ListActiveDisbursedBefore(ctx context.Context, cutoff time.Time) ([]*models.Loan, error)
	AddGuarantor(ctx context.Context, tx *gorm.DB, g *models.LoanGuarantor) error
	// IncrementGuarantorsTx bumps guarantors_approved in place while
	// the loan is still pending and returns the new count. The in-place
	// UPDATE cannot lose a concurrent increment.
	IncrementGuarantorsTx(ctx context.Context, tx *gorm.DB, loanID uint) (int, error)
	// TransitionStatusTx flips the loan status only when the stored row
	// still holds from, writing any extra columns in set. Returns
	// domain.ErrInvalidLoanState when another writer moved the loan
	// first.
	TransitionStatusTx(ctx context.Context, tx *gorm.DB, loanID uint, from, to domain.LoanStatus, set map[string]interface{}) error
	// ApplyRepaymentTx persists repayment fields guarded by the
	// previously read amount_paid. Returns domain.ErrStaleLoan when a
	// concurrent repayment got there first.
	ApplyRepaymentTx(ctx context.Context, tx *gorm.DB, loan *models.Loan, expectedPaid decimal.Decimal) error
	CountByStatus(ctx context.Context, status domain.LoanStatus) (int64, error)
	SumOutstanding(ctx context.Context) (decimal.Decimal, error)
}

// LoanProductRepository defines loan product data access
type LoanProductRepository interface {
	Create(ctx context.Context, product *models.LoanProduct) error
	GetByID(ctx context.Context, id uint) (*models.LoanProduct, error)
	GetByCode(ctx context.Context, code string) (*models.LoanProduct, error)
	List(ctx context.Context) ([]*models.LoanProduct, error)
	Update(ctx context.Context, product *models.LoanProduct) error
	Delete(ctx context.Context, id uint) error
}

// DividendRepository defines dividend data access
type DividendRepository interface {
	Create(ctx context.Context, dividend *models.Dividend) error
	GetByID(ctx context.Context, id uint) (*models.Dividend, error)
	GetByYear(ctx context.Context, year int) (*models.Dividend, error)
	UpdateTx(ctx context.Context, tx *gorm.DB, dividend *models.Dividend) error
	// MarkDistributedTx flips declared to distributed. Returns
	// domain.ErrDividendDistributed when the flip already happened, so
	// a concurrent distribution run fails before writing payout rows.
	MarkDistributedTx(ctx context.Context, tx *gorm.DB, dividendID uint) error
	List(ctx context.Context) ([]*models.Dividend, error)
	CreateMemberDividend(ctx context.Context, tx *gorm.DB, md *models.MemberDividend) error
	GetMemberDividendByID(ctx context.Context, id uint) (*models.MemberDividend, error)
	// ClaimMemberDividendTx flips a pending payout to paid. Returns
	// domain.ErrDividendAlreadyPaid when a concurrent payer won.
	ClaimMemberDividendTx(ctx context.Context, tx *gorm.DB, memberDividendID uint, paidAt time.Time) error
	ListMemberDividends(ctx context.Context, dividendID uint) ([]*models.MemberDividend, error)
	UpdateMemberDividendTx(ctx context.Context, tx *gorm.DB, md *models.MemberDividend) error
	SumPendingPayouts(ctx context.Context) (decimal.Decimal, error)
}

// GovernanceRepository defines board governance data access
type GovernanceRepository interface {
	CreateBoardMember(ctx context.Context, bm *models.BoardMember) error
	GetBoardMemberByID(ctx context.Context, id uint) (*models.BoardMember, error)
	GetActiveByPosition(ctx context.Context, position string) (*models.BoardMember, error)
	ListBoard(ctx context.Context, activeOnly bool) ([]*models.BoardMember, error)
	UpdateBoardMember(ctx context.Context, bm *models.BoardMember) error
	CreateMeeting(ctx context.Context, meeting *models.BoardMeeting) error
	GetMeetingByID(ctx context.Context, id uint) (*models.BoardMeeting, error)
	ListMeetings(ctx context.Context, offset, limit int) ([]*models.BoardMeeting, int64, error)
	UpdateMeeting(ctx context.Context, meeting *models.BoardMeeting) error
	CreateAttendance(ctx context.Context, att *models.BoardMeetingAttendance) error
	ListAttendance(ctx context.Context, meetingID uint) ([]*models.BoardMeetingAttendance, error)
}

// SettingsRepository defines settings data access
type SettingsRepository interface {
	Get(ctx context.Context, key string) (*models.SaccoSetting, error)
	Upsert(ctx context.Context, setting *models.SaccoSetting) error
	All(ctx context.Context) ([]*models.SaccoSetting, error)
}

// UserRepository defines user data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// RefreshTokenRepository defines refresh token data access
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// session picks the transaction handle when one is supplied.
func session(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}
