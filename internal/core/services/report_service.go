package services

import (
	"context"

	"github.com/shopspring/decimal"

	"sacco-ledger/internal/adapters/persistence/repositories"
	"sacco-ledger/internal/core/domain"
)

// ReportService aggregates figures for the operations dashboard
type ReportService struct {
	members      repositories.MemberRepository
	transactions repositories.TransactionRepository
	loans        repositories.LoanRepository
	dividends    repositories.DividendRepository
}

// NewReportService creates a new report service
func NewReportService(
	members repositories.MemberRepository,
	transactions repositories.TransactionRepository,
	loans repositories.LoanRepository,
	dividends repositories.DividendRepository,
) *ReportService {
	return &ReportService{
		members:      members,
		transactions: transactions,
		loans:        loans,
		dividends:    dividends,
	}
}

// DashboardStats represents the dashboard summary
type DashboardStats struct {
	Members struct {
		Active    int64 `json:"active"`
		Suspended int64 `json:"suspended"`
		Resigned  int64 `json:"resigned"`
	} `json:"members"`
	Ledger struct {
		TotalDeposits    decimal.Decimal `json:"total_deposits"`
		TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
	} `json:"ledger"`
	Loans struct {
		Pending     int64           `json:"pending"`
		Active      int64           `json:"active"`
		Defaulted   int64           `json:"defaulted"`
		Outstanding decimal.Decimal `json:"outstanding"`
	} `json:"loans"`
	Dividends struct {
		PendingPayouts decimal.Decimal `json:"pending_payouts"`
	} `json:"dividends"`
}

// Dashboard builds the dashboard summary. Counts and sums are read
// independently; the dashboard tolerates slight skew between them.
func (s *ReportService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	var err error
	if stats.Members.Active, err = s.members.CountByStatus(ctx, domain.MemberActive); err != nil {
		return nil, err
	}
	if stats.Members.Suspended, err = s.members.CountByStatus(ctx, domain.MemberSuspended); err != nil {
		return nil, err
	}
	if stats.Members.Resigned, err = s.members.CountByStatus(ctx, domain.MemberResigned); err != nil {
		return nil, err
	}

	if stats.Ledger.TotalDeposits, err = s.transactions.SumAmountByType(ctx, domain.TxDeposit); err != nil {
		return nil, err
	}
	if stats.Ledger.TotalWithdrawals, err = s.transactions.SumAmountByType(ctx, domain.TxWithdrawal); err != nil {
		return nil, err
	}

	if stats.Loans.Pending, err = s.loans.CountByStatus(ctx, domain.LoanPending); err != nil {
		return nil, err
	}
	if stats.Loans.Active, err = s.loans.CountByStatus(ctx, domain.LoanActive); err != nil {
		return nil, err
	}
	if stats.Loans.Defaulted, err = s.loans.CountByStatus(ctx, domain.LoanDefaulted); err != nil {
		return nil, err
	}
	if stats.Loans.Outstanding, err = s.loans.SumOutstanding(ctx); err != nil {
		return nil, err
	}

	if stats.Dividends.PendingPayouts, err = s.dividends.SumPendingPayouts(ctx); err != nil {
		return nil, err
	}

	return stats, nil
}
