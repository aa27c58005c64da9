package domain

// MemberStatus represents membership lifecycle status
type MemberStatus string

const (
	MemberActive    MemberStatus = "active"
	MemberSuspended MemberStatus = "suspended"
	MemberResigned  MemberStatus = "resigned"
)

// AccountType represents the kind of account a member holds
type AccountType string

const (
	AccountShares       AccountType = "shares"
	AccountSavings      AccountType = "savings"
	AccountChecking     AccountType = "checking"
	AccountFixedDeposit AccountType = "fixed_deposit"
)

// Code returns the short code used in generated account numbers
func (t AccountType) Code() string {
	switch t {
	case AccountShares:
		return "SHR"
	case AccountSavings:
		return "SAV"
	case AccountChecking:
		return "CHK"
	case AccountFixedDeposit:
		return "FXD"
	}
	return "UNK"
}

// IsValid checks account type validity
func (t AccountType) IsValid() bool {
	switch t {
	case AccountShares, AccountSavings, AccountChecking, AccountFixedDeposit:
		return true
	}
	return false
}

// AccountStatus represents account lifecycle status
type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusClosed AccountStatus = "closed"
)

// TransactionType represents the kind of ledger posting
type TransactionType string

const (
	TxDeposit          TransactionType = "deposit"
	TxWithdrawal       TransactionType = "withdrawal"
	TxTransfer         TransactionType = "transfer"
	TxFee              TransactionType = "fee"
	TxLoanDisbursement TransactionType = "loan_disbursement"
	TxLoanRepayment    TransactionType = "loan_repayment"
	TxDividend         TransactionType = "dividend"
	TxInterest         TransactionType = "interest"
)

// IsCredit reports whether the type increases the account balance.
// Transfer is the outgoing leg; the receiving account is credited with
// a deposit posting.
func (t TransactionType) IsCredit() bool {
	switch t {
	case TxDeposit, TxLoanDisbursement, TxDividend, TxInterest:
		return true
	}
	return false
}

// IsDebit reports whether the type decreases the account balance
func (t TransactionType) IsDebit() bool {
	switch t {
	case TxWithdrawal, TxTransfer, TxFee, TxLoanRepayment:
		return true
	}
	return false
}

// IsValid checks transaction type validity
func (t TransactionType) IsValid() bool {
	return t.IsCredit() || t.IsDebit()
}

// LoanStatus represents loan lifecycle status
type LoanStatus string

const (
	LoanPending   LoanStatus = "pending"
	LoanApproved  LoanStatus = "approved"
	LoanActive    LoanStatus = "active"
	LoanCompleted LoanStatus = "completed"
	LoanDefaulted LoanStatus = "defaulted"
	LoanRejected  LoanStatus = "rejected"
)

// IsTerminal reports whether no further transitions are allowed
func (s LoanStatus) IsTerminal() bool {
	switch s {
	case LoanCompleted, LoanDefaulted, LoanRejected:
		return true
	}
	return false
}

// TermsFrozen reports whether principal/rate/tenure may no longer change
func (s LoanStatus) TermsFrozen() bool {
	return s != LoanPending && s != LoanApproved
}

// DividendStatus represents the declared dividend lifecycle
type DividendStatus string

const (
	DividendDeclared    DividendStatus = "declared"
	DividendDistributed DividendStatus = "distributed"
)

// PayoutStatus represents per-member dividend payment status
type PayoutStatus string

const (
	PayoutPending PayoutStatus = "pending"
	PayoutPaid    PayoutStatus = "paid"
)
