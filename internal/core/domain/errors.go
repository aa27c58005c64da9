package domain

import "errors"

// Validation errors
var (
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidInput       = errors.New("invalid input")
	ErrLoanOutOfRange     = errors.New("loan amount or term outside product bounds")
)

// Balance rule errors
var (
	ErrInsufficientFunds = errors.New("insufficient available balance")
	ErrLoanOverpayment   = errors.New("repayment exceeds remaining loan balance")
	ErrAccountNotEmpty   = errors.New("account balance must be zero before closing")
)

// State errors
var (
	ErrInvalidLoanState    = errors.New("operation not allowed in current loan state")
	ErrLoanTermsFrozen     = errors.New("loan terms cannot change after disbursement")
	ErrGuarantorsNotMet    = errors.New("required guarantor approvals not met")
	ErrMemberNotActive     = errors.New("member is not active")
	ErrMemberResigned      = errors.New("resigned membership cannot change status")
	ErrInvalidStatusChange = errors.New("invalid membership status transition")
	ErrAccountClosed       = errors.New("account is closed")
	ErrDividendDistributed = errors.New("dividend already distributed")
	ErrNoShareCapital      = errors.New("no shares balances to distribute against")
)

// Immutability errors
var (
	ErrTransactionImmutable = errors.New("posted transactions cannot be updated or deleted")
)

// Duplicate errors
var (
	ErrDuplicateMembership      = errors.New("user already has a membership")
	ErrDuplicateAccount         = errors.New("member already has an active account of this type")
	ErrGuarantorAlreadyApproved = errors.New("guarantor has already approved this loan")
	ErrGuarantorIsBorrower      = errors.New("borrower cannot guarantee their own loan")
	ErrDividendExists           = errors.New("dividend already declared for this year")
	ErrDividendAlreadyPaid      = errors.New("member dividend already paid")
	ErrPositionOccupied         = errors.New("board position already held for the active term")
	ErrAttendanceRecorded       = errors.New("attendance already recorded for this board member")
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPasswordTooWeak    = errors.New("password does not meet the minimum requirements")
)

// Not found errors
var (
	ErrUserNotFound           = errors.New("user not found")
	ErrMemberNotFound         = errors.New("member not found")
	ErrAccountNotFound        = errors.New("account not found")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrLoanNotFound           = errors.New("loan not found")
	ErrLoanProductNotFound    = errors.New("loan product not found")
	ErrDividendNotFound       = errors.New("dividend not found")
	ErrMemberDividendNotFound = errors.New("member dividend not found")
	ErrBoardMemberNotFound    = errors.New("board member not found")
	ErrMeetingNotFound        = errors.New("board meeting not found")
	ErrSettingNotFound        = errors.New("setting not found")
)

// Concurrency errors
var (
	// ErrStaleAccount signals an optimistic lock conflict on an account row.
	ErrStaleAccount = errors.New("account was modified concurrently")
	// ErrStaleLoan signals a concurrent repayment on the same loan row.
	ErrStaleLoan = errors.New("loan was modified concurrently")
)
