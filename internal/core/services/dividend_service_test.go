package services

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sacco-ledger/internal/core/domain"
)

func TestDeclare(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	dividend, err := f.dividendSvc.Declare(ctx, &DeclareInput{
		Year:        2025,
		TotalProfit: dec("5000000"),
		Rate:        dec("10"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DividendDeclared, dividend.Status)

	// Same year twice is rejected.
	_, err = f.dividendSvc.Declare(ctx, &DeclareInput{
		Year:        2025,
		TotalProfit: dec("1"),
		Rate:        dec("1"),
	})
	assert.ErrorIs(t, err, domain.ErrDividendExists)
}

func TestDeclare_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.dividendSvc.Declare(ctx, &DeclareInput{Year: 2025, TotalProfit: decimal.Zero, Rate: dec("10")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.dividendSvc.Declare(ctx, &DeclareInput{Year: 2025, TotalProfit: dec("100"), Rate: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.dividendSvc.Declare(ctx, &DeclareInput{Year: 3, TotalProfit: dec("100"), Rate: dec("10")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestComputeDistribution_ProRata(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	m1 := f.members.seed(domain.MemberActive)
	m2 := f.members.seed(domain.MemberActive)
	m3 := f.members.seed(domain.MemberActive)
	f.accounts.seed(m1.ID, domain.AccountShares, dec("60000"))
	f.accounts.seed(m2.ID, domain.AccountShares, dec("30000"))
	f.accounts.seed(m3.ID, domain.AccountShares, dec("10000"))
	// Savings balances must not influence the split.
	f.accounts.seed(m1.ID, domain.AccountSavings, dec("999999"))

	dividend, err := f.dividendSvc.Declare(ctx, &DeclareInput{
		Year:        2025,
		TotalProfit: dec("1000000"),
		Rate:        dec("10"),
	})
	require.NoError(t, err)

	payouts, err := f.dividendSvc.ComputeDistribution(ctx, dividend.ID)
	require.NoError(t, err)
	require.Len(t, payouts, 3)

	// pool = 1000000 * 10% = 100000
	byMember := make(map[uint]decimal.Decimal)
	sum := decimal.Zero
	for _, p := range payouts {
		byMember[p.MemberID] = p.DividendAmount
		sum = sum.Add(p.DividendAmount)
	}
	assert.True(t, byMember[m1.ID].Equal(dec("60000")))
	assert.True(t, byMember[m2.ID].Equal(dec("30000")))
	assert.True(t, byMember[m3.ID].Equal(dec("10000")))
	assert.True(t, sum.LessThanOrEqual(dec("100000")), "allocation cannot exceed the pool")

	got, _ := f.dividendSvc.GetByID(ctx, dividend.ID)
	assert.Equal(t, domain.DividendDistributed, got.Status)
	assert.True(t, got.DistributedAmount.Equal(sum))
}

func TestComputeDistribution_TruncationStaysWithinPool(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Three equal holders of a pool that does not divide evenly.
	for i := 0; i < 3; i++ {
		m := f.members.seed(domain.MemberActive)
		f.accounts.seed(m.ID, domain.AccountShares, dec("100"))
	}

	dividend, err := f.dividendSvc.Declare(ctx, &DeclareInput{
		Year:        2025,
		TotalProfit: dec("1000"),
		Rate:        dec("10"),
	})
	require.NoError(t, err)

	payouts, err := f.dividendSvc.ComputeDistribution(ctx, dividend.ID)
	require.NoError(t, err)

	// pool = 100; each share is 33.333... truncated to 33.33
	sum := decimal.Zero
	for _, p := range payouts {
		assert.True(t, p.DividendAmount.Equal(dec("33.33")))
		sum = sum.Add(p.DividendAmount)
	}
	assert.True(t, sum.Equal(dec("99.99")))
}

func TestComputeDistribution_Twice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m := f.members.seed(domain.MemberActive)
	f.accounts.seed(m.ID, domain.AccountShares, dec("1000"))

	dividend, err := f.dividendSvc.Declare(ctx, &DeclareInput{
		Year:        2025,
		TotalProfit: dec("100000"),
		Rate:        dec("10"),
	})
	require.NoError(t, err)

	_, err = f.dividendSvc.ComputeDistribution(ctx, dividend.ID)
	require.NoError(t, err)

	_, err = f.dividendSvc.ComputeDistribution(ctx, dividend.ID)
	assert.ErrorIs(t, err, domain.ErrDividendDistributed)
}

func TestComputeDistribution_NoShareCapital(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	dividend, err := f.dividendSvc.Declare(ctx, &DeclareInput{
		Year:        2025,
		TotalProfit: dec("100000"),
		Rate:        dec("10"),
	})
	require.NoError(t, err)

	_, err = f.dividendSvc.ComputeDistribution(ctx, dividend.ID)
	assert.ErrorIs(t, err, domain.ErrNoShareCapital)
}

func TestMarkPaid(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m := f.members.seed(domain.MemberActive)
	shares := f.accounts.seed(m.ID, domain.AccountShares, dec("1000"))
	savings := f.accounts.seed(m.ID, domain.AccountSavings, decimal.Zero)
	_ = shares

	dividend, err := f.dividendSvc.Declare(ctx, &DeclareInput{
		Year:        2025,
		TotalProfit: dec("100000"),
		Rate:        dec("10"),
	})
	require.NoError(t, err)

	payouts, err := f.dividendSvc.ComputeDistribution(ctx, dividend.ID)
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	payout := payouts[0]

	posted, err := f.dividendSvc.MarkPaid(ctx, payout.ID, savings.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TxDividend, posted.Type)
	assert.True(t, posted.Amount.Equal(dec("10000")))

	got, _ := f.ledgerSvc.GetAccount(ctx, savings.ID)
	assert.True(t, got.Balance.Equal(dec("10000")))

	// Paying twice fails and posts nothing further.
	_, err = f.dividendSvc.MarkPaid(ctx, payout.ID, savings.ID)
	assert.ErrorIs(t, err, domain.ErrDividendAlreadyPaid)
	assert.Equal(t, 1, f.txs.countByType(domain.TxDividend))
}

func TestMarkPaid_ConcurrentCallsCreditOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m := f.members.seed(domain.MemberActive)
	f.accounts.seed(m.ID, domain.AccountShares, dec("1000"))
	savings := f.accounts.seed(m.ID, domain.AccountSavings, decimal.Zero)

	dividend, err := f.dividendSvc.Declare(ctx, &DeclareInput{
		Year:        2025,
		TotalProfit: dec("100000"),
		Rate:        dec("10"),
	})
	require.NoError(t, err)

	payouts, err := f.dividendSvc.ComputeDistribution(ctx, dividend.ID)
	require.NoError(t, err)
	require.Len(t, payouts, 1)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.dividendSvc.MarkPaid(ctx, payouts[0].ID, savings.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok, failed := 0, 0
	for err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, domain.ErrDividendAlreadyPaid)
			failed++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, failed)

	// The payout was credited exactly once.
	got, _ := f.ledgerSvc.GetAccount(ctx, savings.ID)
	assert.True(t, got.Balance.Equal(dec("10000")), "balance: %s", got.Balance)
	assert.Equal(t, 1, f.txs.countByType(domain.TxDividend))
}

func TestMarkPaid_ForeignAccount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	m := f.members.seed(domain.MemberActive)
	other := f.members.seed(domain.MemberActive)
	f.accounts.seed(m.ID, domain.AccountShares, dec("1000"))
	otherAccount := f.accounts.seed(other.ID, domain.AccountSavings, decimal.Zero)

	dividend, err := f.dividendSvc.Declare(ctx, &DeclareInput{
		Year:        2025,
		TotalProfit: dec("100000"),
		Rate:        dec("10"),
	})
	require.NoError(t, err)

	payouts, err := f.dividendSvc.ComputeDistribution(ctx, dividend.ID)
	require.NoError(t, err)

	_, err = f.dividendSvc.MarkPaid(ctx, payouts[0].ID, otherAccount.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
