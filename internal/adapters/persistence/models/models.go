package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"sacco-ledger/internal/core/domain"
)

// ============================================================
// Member Registry
// ============================================================

// Member represents the members table. Members are soft-deleted on
// resignation, never hard-deleted: financial history must persist.
type Member struct {
	ID        uint                `gorm:"primaryKey" json:"id"`
	UserID    uint                `gorm:"index;not null" json:"user_id"`
	MemberNo  string              `gorm:"uniqueIndex;size:20;not null" json:"member_no"`
	FullName  string              `gorm:"size:100;not null" json:"full_name"`
	Phone     string              `gorm:"size:20" json:"phone"`
	Status    domain.MemberStatus `gorm:"size:20;not null;default:'active'" json:"status"`
	JoinedAt  time.Time           `gorm:"not null" json:"joined_at"`
	CreatedAt time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt      `gorm:"index" json:"-"`
}

func (Member) TableName() string {
	return "members"
}

// ============================================================
// Account Ledger
// ============================================================

// Account represents the accounts table. Balance is the source of
// truth; AvailableBalance reflects holds and is never negative.
// Version implements the optimistic lock guarding balance updates.
type Account struct {
	ID               uint                 `gorm:"primaryKey" json:"id"`
	MemberID         uint                 `gorm:"index;not null" json:"member_id"`
	AccountNumber    string               `gorm:"uniqueIndex;size:30;not null" json:"account_number"`
	Type             domain.AccountType   `gorm:"size:20;not null;index" json:"type"`
	Balance          decimal.Decimal      `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	AvailableBalance decimal.Decimal      `gorm:"type:decimal(15,2);not null;default:0" json:"available_balance"`
	InterestRate     decimal.Decimal      `gorm:"type:decimal(5,2);not null;default:0" json:"interest_rate"`
	Status           domain.AccountStatus `gorm:"size:20;not null;default:'active'" json:"status"`
	Version          int64                `gorm:"not null;default:1" json:"-"`
	CreatedAt        time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time            `gorm:"autoUpdateTime" json:"updated_at"`

	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (Account) TableName() string {
	return "accounts"
}

// HeldAmount returns the funds currently held against the account.
func (a *Account) HeldAmount() decimal.Decimal {
	return a.Balance.Sub(a.AvailableBalance)
}

// Transaction represents the transactions table. Rows are append-only:
// the repository rejects updates and deletes outright. BalanceBefore
// and BalanceAfter snapshot the account so statements can be audited
// without replaying history.
type Transaction struct {
	ID              uint                   `gorm:"primaryKey" json:"id"`
	Reference       string                 `gorm:"uniqueIndex;size:30;not null" json:"reference"`
	AccountID       uint                   `gorm:"index;not null" json:"account_id"`
	MemberID        uint                   `gorm:"index;not null" json:"member_id"`
	Type            domain.TransactionType `gorm:"size:30;not null" json:"type"`
	Amount          decimal.Decimal        `gorm:"type:decimal(15,2);not null" json:"amount"`
	BalanceBefore   decimal.Decimal        `gorm:"type:decimal(15,2);not null" json:"balance_before"`
	BalanceAfter    decimal.Decimal        `gorm:"type:decimal(15,2);not null" json:"balance_after"`
	Description     string                 `gorm:"size:255" json:"description"`
	TransactionDate time.Time              `gorm:"index;not null" json:"transaction_date"`
	CreatedAt       time.Time              `gorm:"autoCreateTime" json:"created_at"`

	Account *Account `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// NumberSequence backs generated account and membership numbers. Rows
// are incremented inside the surrounding database transaction so two
// concurrent opens can never draw the same value.
type NumberSequence struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Scope string `gorm:"uniqueIndex;size:40;not null" json:"scope"`
	Value int64  `gorm:"not null;default:0" json:"value"`
}

func (NumberSequence) TableName() string {
	return "number_sequences"
}

// ============================================================
// Loan Engine
// ============================================================

// LoanProduct represents the loan_products table. Products are
// templates validated at application time and never mutated by the
// loan lifecycle.
type LoanProduct struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	Code             string          `gorm:"uniqueIndex;size:20;not null" json:"code"`
	Name             string          `gorm:"size:100;not null" json:"name"`
	Description      string          `gorm:"type:text" json:"description"`
	MinAmount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"min_amount"`
	MaxAmount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"max_amount"`
	MinTermMonths    int             `gorm:"not null" json:"min_term_months"`
	MaxTermMonths    int             `gorm:"not null" json:"max_term_months"`
	InterestRate     decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"interest_rate"`
	ProcessingFeePct decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"processing_fee_pct"`
	MinGuarantors    int             `gorm:"not null;default:0" json:"min_guarantors"`
	IsActive         bool            `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (LoanProduct) TableName() string {
	return "loan_products"
}

// Loan represents the loans table. Derived figures (TotalInterest,
// TotalPayable, MonthlyInstallment) come from loanmath.Compute and are
// frozen once the loan is disbursed.
type Loan struct {
	ID                 uint              `gorm:"primaryKey" json:"id"`
	MemberID           uint              `gorm:"index;not null" json:"member_id"`
	ProductID          uint              `gorm:"index;not null" json:"product_id"`
	Principal          decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"principal"`
	InterestRate       decimal.Decimal   `gorm:"type:decimal(5,2);not null" json:"interest_rate"`
	TenureMonths       int               `gorm:"not null" json:"tenure_months"`
	TotalInterest      decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"total_interest"`
	TotalPayable       decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"total_payable"`
	MonthlyInstallment decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"monthly_installment"`
	AmountPaid         decimal.Decimal   `gorm:"type:decimal(15,2);not null;default:0" json:"amount_paid"`
	BalanceRemaining   decimal.Decimal   `gorm:"type:decimal(15,2);not null;default:0" json:"balance_remaining"`
	Status             domain.LoanStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	GuarantorsRequired int               `gorm:"not null;default:0" json:"guarantors_required"`
	GuarantorsApproved int               `gorm:"not null;default:0" json:"guarantors_approved"`
	Purpose            string            `gorm:"type:text" json:"purpose"`
	AppliedAt          time.Time         `gorm:"not null" json:"applied_at"`
	ApprovedAt         *time.Time        `json:"approved_at"`
	DisbursedAt        *time.Time        `json:"disbursed_at"`
	CompletedAt        *time.Time        `json:"completed_at"`
	CreatedAt          time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt    `gorm:"index" json:"-"`

	Member     *Member         `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Product    *LoanProduct    `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Guarantors []LoanGuarantor `gorm:"foreignKey:LoanID" json:"guarantors,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

// IsFullyPaid reports whether accumulated repayments cover the payable.
func (l *Loan) IsFullyPaid() bool {
	return l.AmountPaid.GreaterThanOrEqual(l.TotalPayable)
}

// LoanGuarantor represents the loan_guarantors table. The composite
// unique index rejects double approval by the same guarantor.
type LoanGuarantor struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	LoanID            uint      `gorm:"not null;uniqueIndex:idx_loan_guarantor" json:"loan_id"`
	GuarantorMemberID uint      `gorm:"not null;uniqueIndex:idx_loan_guarantor" json:"guarantor_member_id"`
	ApprovedAt        time.Time `gorm:"not null" json:"approved_at"`

	Guarantor *Member `gorm:"foreignKey:GuarantorMemberID" json:"guarantor,omitempty"`
}

func (LoanGuarantor) TableName() string {
	return "loan_guarantors"
}

// ============================================================
// Dividend Distributor
// ============================================================

// Dividend represents the dividends table, one row per declared year.
type Dividend struct {
	ID                uint                  `gorm:"primaryKey" json:"id"`
	Year              int                   `gorm:"uniqueIndex;not null" json:"year"`
	TotalProfit       decimal.Decimal       `gorm:"type:decimal(15,2);not null" json:"total_profit"`
	Rate              decimal.Decimal       `gorm:"type:decimal(5,2);not null" json:"rate"`
	DistributedAmount decimal.Decimal       `gorm:"type:decimal(15,2);not null;default:0" json:"distributed_amount"`
	Status            domain.DividendStatus `gorm:"size:20;not null;default:'declared'" json:"status"`
	DeclaredAt        time.Time             `gorm:"not null" json:"declared_at"`
	CreatedAt         time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Dividend) TableName() string {
	return "dividends"
}

// MemberDividend represents the member_dividends table, one payout row
// per member with a non-zero shares balance at computation time.
type MemberDividend struct {
	ID             uint                `gorm:"primaryKey" json:"id"`
	DividendID     uint                `gorm:"not null;uniqueIndex:idx_dividend_member" json:"dividend_id"`
	MemberID       uint                `gorm:"not null;uniqueIndex:idx_dividend_member" json:"member_id"`
	SharesBalance  decimal.Decimal     `gorm:"type:decimal(15,2);not null" json:"shares_balance"`
	DividendAmount decimal.Decimal     `gorm:"type:decimal(15,2);not null" json:"dividend_amount"`
	Status         domain.PayoutStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	PaidAt         *time.Time          `json:"paid_at"`
	TransactionID  *uint               `json:"transaction_id"`
	CreatedAt      time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time           `gorm:"autoUpdateTime" json:"updated_at"`

	Dividend *Dividend `gorm:"foreignKey:DividendID" json:"dividend,omitempty"`
	Member   *Member   `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (MemberDividend) TableName() string {
	return "member_dividends"
}

// ============================================================
// Governance Log
// ============================================================

// BoardMember represents the board_members table. One active holder
// per position at a time.
type BoardMember struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	MemberID  uint       `gorm:"index;not null" json:"member_id"`
	Position  string     `gorm:"size:50;not null;index" json:"position"`
	TermStart time.Time  `gorm:"not null" json:"term_start"`
	TermEnd   *time.Time `json:"term_end"`
	IsActive  bool       `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (BoardMember) TableName() string {
	return "board_members"
}

// BoardMeeting represents the board_meetings table.
type BoardMeeting struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	MeetingDate time.Time `gorm:"not null;index" json:"meeting_date"`
	Location    string    `gorm:"size:200" json:"location"`
	Agenda      string    `gorm:"type:text" json:"agenda"`
	Minutes     string    `gorm:"type:text" json:"minutes"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Attendance []BoardMeetingAttendance `gorm:"foreignKey:MeetingID" json:"attendance,omitempty"`
}

func (BoardMeeting) TableName() string {
	return "board_meetings"
}

// BoardMeetingAttendance represents the board_meeting_attendance table.
type BoardMeetingAttendance struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	MeetingID     uint      `gorm:"not null;uniqueIndex:idx_meeting_board_member" json:"meeting_id"`
	BoardMemberID uint      `gorm:"not null;uniqueIndex:idx_meeting_board_member" json:"board_member_id"`
	Present       bool      `gorm:"default:false" json:"present"`
	Remark        string    `gorm:"size:255" json:"remark"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`

	BoardMember *BoardMember `gorm:"foreignKey:BoardMemberID" json:"board_member,omitempty"`
}

func (BoardMeetingAttendance) TableName() string {
	return "board_meeting_attendance"
}

// ============================================================
// Settings
// ============================================================

// SaccoSetting represents the sacco_settings table backing the
// pull-through settings cache.
type SaccoSetting struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Key         string    `gorm:"uniqueIndex;size:60;not null" json:"key"`
	Value       string    `gorm:"size:255;not null" json:"value"`
	Description string    `gorm:"size:255" json:"description"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SaccoSetting) TableName() string {
	return "sacco_settings"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all ledger tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Member{},
		&Account{},
		&Transaction{},
		&NumberSequence{},
		&LoanProduct{},
		&Loan{},
		&LoanGuarantor{},
		&Dividend{},
		&MemberDividend{},
		&BoardMember{},
		&BoardMeeting{},
		&BoardMeetingAttendance{},
		&SaccoSetting{},
	)
}
