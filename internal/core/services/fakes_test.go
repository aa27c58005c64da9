package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"sacco-ledger/internal/adapters/persistence/models"
	"sacco-ledger/internal/core/domain"
)

// fakeTxRunner satisfies TxRunner without a database. Callbacks run
// directly; fakes apply writes immediately, so tests that rely on
// rollback semantics assert on errors surfacing before any write.
type fakeTxRunner struct{}

func (fakeTxRunner) Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	return fc(nil)
}

// ------------------------------------------------------------
// members
// ------------------------------------------------------------

type fakeMemberRepo struct {
	mu      sync.Mutex
	nextID  uint
	members map[uint]*models.Member
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{nextID: 1, members: make(map[uint]*models.Member)}
}

func (r *fakeMemberRepo) Create(ctx context.Context, tx *gorm.DB, m *models.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = r.nextID
	r.nextID++
	cp := *m
	r.members[m.ID] = &cp
	return nil
}

func (r *fakeMemberRepo) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return nil, domain.ErrMemberNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMemberRepo) GetByMemberNo(ctx context.Context, memberNo string) (*models.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.MemberNo == memberNo {
			cp := *m
			return &cp, nil
		}
	}
	return nil, domain.ErrMemberNotFound
}

func (r *fakeMemberRepo) GetActiveByUserID(ctx context.Context, userID uint) (*models.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.UserID == userID && m.Status != domain.MemberResigned {
			cp := *m
			return &cp, nil
		}
	}
	return nil, domain.ErrMemberNotFound
}

func (r *fakeMemberRepo) List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Member
	for _, m := range r.members {
		cp := *m
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeMemberRepo) Update(ctx context.Context, m *models.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[m.ID]; !ok {
		return domain.ErrMemberNotFound
	}
	cp := *m
	r.members[m.ID] = &cp
	return nil
}

func (r *fakeMemberRepo) Resign(ctx context.Context, m *models.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.members[m.ID]
	if !ok {
		return domain.ErrMemberNotFound
	}
	stored.Status = domain.MemberResigned
	m.Status = domain.MemberResigned
	return nil
}

func (r *fakeMemberRepo) CountByStatus(ctx context.Context, status domain.MemberStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.members {
		if m.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeMemberRepo) seed(status domain.MemberStatus) *models.Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	m := &models.Member{
		ID:       id,
		UserID:   id + 100,
		MemberNo: fmt.Sprintf("MBR-2026-%05d", id),
		FullName: fmt.Sprintf("Member %d", id),
		Status:   status,
		JoinedAt: time.Now(),
	}
	r.members[id] = m
	return m
}

// ------------------------------------------------------------
// accounts
// ------------------------------------------------------------

type fakeAccountRepo struct {
	mu       sync.Mutex
	nextID   uint
	accounts map[uint]*models.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{nextID: 1, accounts: make(map[uint]*models.Account)}
}

func (r *fakeAccountRepo) Create(ctx context.Context, tx *gorm.DB, a *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.nextID
	r.nextID++
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAccountRepo) GetByNumber(ctx context.Context, number string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.AccountNumber == number {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *fakeAccountRepo) GetActiveByMemberAndType(ctx context.Context, memberID uint, accType domain.AccountType) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.MemberID == memberID && a.Type == accType && a.Status == domain.AccountStatusActive {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *fakeAccountRepo) ListByMember(ctx context.Context, memberID uint) ([]*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Account
	for _, a := range r.accounts {
		if a.MemberID == memberID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) ListActiveByType(ctx context.Context, accType domain.AccountType) ([]*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Account
	for _, a := range r.accounts {
		if a.Type == accType && a.Status == domain.AccountStatusActive {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) ApplyBalanceChange(ctx context.Context, tx *gorm.DB, id uint, balanceDelta, availableDelta decimal.Decimal, version int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if a.Version != version {
		return domain.ErrStaleAccount
	}
	a.Balance = a.Balance.Add(balanceDelta)
	a.AvailableBalance = a.AvailableBalance.Add(availableDelta)
	a.Version++
	return nil
}

func (r *fakeAccountRepo) UpdateStatus(ctx context.Context, id uint, status domain.AccountStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Status = status
	return nil
}

func (r *fakeAccountRepo) SharesBalancesByMember(ctx context.Context, tx *gorm.DB) (map[uint]decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[uint]decimal.Decimal)
	for _, a := range r.accounts {
		if a.Type != domain.AccountShares || a.Status != domain.AccountStatusActive {
			continue
		}
		if !a.Balance.IsPositive() {
			continue
		}
		out[a.MemberID] = out[a.MemberID].Add(a.Balance)
	}
	return out, nil
}

func (r *fakeAccountRepo) seed(memberID uint, accType domain.AccountType, balance decimal.Decimal) *models.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	a := &models.Account{
		ID:               id,
		MemberID:         memberID,
		AccountNumber:    fmt.Sprintf("ACC-%s-2026-%06d", accType.Code(), id),
		Type:             accType,
		Balance:          balance,
		AvailableBalance: balance,
		Status:           domain.AccountStatusActive,
		Version:          1,
	}
	r.accounts[id] = a
	return a
}

// ------------------------------------------------------------
// transactions
// ------------------------------------------------------------

type fakeTransactionRepo struct {
	mu     sync.Mutex
	nextID uint
	txs    []*models.Transaction
	refs   map[string]bool
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{nextID: 1, refs: make(map[string]bool)}
}

func (r *fakeTransactionRepo) Create(ctx context.Context, tx *gorm.DB, t *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.refs[t.Reference] {
		return gorm.ErrDuplicatedKey
	}
	t.ID = r.nextID
	r.nextID++
	r.refs[t.Reference] = true
	cp := *t
	r.txs = append(r.txs, &cp)
	return nil
}

func (r *fakeTransactionRepo) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.txs {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (r *fakeTransactionRepo) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.txs {
		if t.Reference == reference {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (r *fakeTransactionRepo) ListByAccount(ctx context.Context, accountID uint, from, to *time.Time, offset, limit int) ([]*models.Transaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Transaction
	for _, t := range r.txs {
		if t.AccountID != accountID {
			continue
		}
		if from != nil && t.TransactionDate.Before(*from) {
			continue
		}
		if to != nil && t.TransactionDate.After(*to) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTransactionRepo) SumAmountByType(ctx context.Context, txType domain.TransactionType) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, t := range r.txs {
		if t.Type == txType {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (r *fakeTransactionRepo) Update(ctx context.Context, t *models.Transaction) error {
	return domain.ErrTransactionImmutable
}

func (r *fakeTransactionRepo) Delete(ctx context.Context, id uint) error {
	return domain.ErrTransactionImmutable
}

func (r *fakeTransactionRepo) countByType(txType domain.TransactionType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.txs {
		if t.Type == txType {
			n++
		}
	}
	return n
}

// ------------------------------------------------------------
// sequences
// ------------------------------------------------------------

type fakeSequenceRepo struct {
	mu     sync.Mutex
	values map[string]int64
}

func newFakeSequenceRepo() *fakeSequenceRepo {
	return &fakeSequenceRepo{values: make(map[string]int64)}
}

func (r *fakeSequenceRepo) Next(ctx context.Context, tx *gorm.DB, scope string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[scope]++
	return r.values[scope], nil
}

// ------------------------------------------------------------
// loans
// ------------------------------------------------------------

type fakeLoanRepo struct {
	mu         sync.Mutex
	nextID     uint
	loans      map[uint]*models.Loan
	guarantors map[string]bool
}

func newFakeLoanRepo() *fakeLoanRepo {
	return &fakeLoanRepo{nextID: 1, loans: make(map[uint]*models.Loan), guarantors: make(map[string]bool)}
}

func (r *fakeLoanRepo) Create(ctx context.Context, l *models.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.ID = r.nextID
	r.nextID++
	cp := *l
	r.loans[l.ID] = &cp
	return nil
}

func (r *fakeLoanRepo) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loans[id]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLoanRepo) Update(ctx context.Context, l *models.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.loans[l.ID]; !ok {
		return domain.ErrLoanNotFound
	}
	cp := *l
	r.loans[l.ID] = &cp
	return nil
}

func (r *fakeLoanRepo) UpdateTx(ctx context.Context, tx *gorm.DB, l *models.Loan) error {
	return r.Update(ctx, l)
}

func (r *fakeLoanRepo) List(ctx context.Context, offset, limit int) ([]*models.Loan, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Loan
	for _, l := range r.loans {
		cp := *l
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeLoanRepo) ListByMember(ctx context.Context, memberID uint) ([]*models.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Loan
	for _, l := range r.loans {
		if l.MemberID == memberID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLoanRepo) ListActiveDisbursedBefore(ctx context.Context, cutoff time.Time) ([]*models.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Loan
	for _, l := range r.loans {
		if l.Status == domain.LoanActive && l.DisbursedAt != nil && l.DisbursedAt.Before(cutoff) {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLoanRepo) AddGuarantor(ctx context.Context, tx *gorm.DB, g *models.LoanGuarantor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := fmt.Sprintf("%d:%d", g.LoanID, g.GuarantorMemberID)
	if r.guarantors[key] {
		return domain.ErrGuarantorAlreadyApproved
	}
	r.guarantors[key] = true
	return nil
}

func (r *fakeLoanRepo) IncrementGuarantorsTx(ctx context.Context, tx *gorm.DB, loanID uint) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loans[loanID]
	if !ok {
		return 0, domain.ErrLoanNotFound
	}
	if l.Status != domain.LoanPending {
		return 0, domain.ErrInvalidLoanState
	}
	l.GuarantorsApproved++
	return l.GuarantorsApproved, nil
}

func (r *fakeLoanRepo) TransitionStatusTx(ctx context.Context, tx *gorm.DB, loanID uint, from, to domain.LoanStatus, set map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loans[loanID]
	if !ok {
		return domain.ErrLoanNotFound
	}
	if l.Status != from {
		return domain.ErrInvalidLoanState
	}
	l.Status = to
	for col, v := range set {
		at, ok := v.(time.Time)
		if !ok {
			continue
		}
		switch col {
		case "approved_at":
			l.ApprovedAt = &at
		case "disbursed_at":
			l.DisbursedAt = &at
		case "completed_at":
			l.CompletedAt = &at
		}
	}
	return nil
}

func (r *fakeLoanRepo) ApplyRepaymentTx(ctx context.Context, tx *gorm.DB, loan *models.Loan, expectedPaid decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.loans[loan.ID]
	if !ok {
		return domain.ErrLoanNotFound
	}
	if stored.Status != domain.LoanActive || !stored.AmountPaid.Equal(expectedPaid) {
		return domain.ErrStaleLoan
	}
	stored.AmountPaid = loan.AmountPaid
	stored.BalanceRemaining = loan.BalanceRemaining
	stored.Status = loan.Status
	if loan.CompletedAt != nil {
		at := *loan.CompletedAt
		stored.CompletedAt = &at
	}
	return nil
}

func (r *fakeLoanRepo) CountByStatus(ctx context.Context, status domain.LoanStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, l := range r.loans {
		if l.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeLoanRepo) SumOutstanding(ctx context.Context) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, l := range r.loans {
		if l.Status == domain.LoanActive || l.Status == domain.LoanDefaulted {
			sum = sum.Add(l.BalanceRemaining)
		}
	}
	return sum, nil
}

// ------------------------------------------------------------
// loan products
// ------------------------------------------------------------

type fakeLoanProductRepo struct {
	mu       sync.Mutex
	nextID   uint
	products map[uint]*models.LoanProduct
}

func newFakeLoanProductRepo() *fakeLoanProductRepo {
	return &fakeLoanProductRepo{nextID: 1, products: make(map[uint]*models.LoanProduct)}
}

func (r *fakeLoanProductRepo) Create(ctx context.Context, p *models.LoanProduct) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeLoanProductRepo) GetByID(ctx context.Context, id uint) (*models.LoanProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrLoanProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeLoanProductRepo) GetByCode(ctx context.Context, code string) (*models.LoanProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrLoanProductNotFound
}

func (r *fakeLoanProductRepo) List(ctx context.Context) ([]*models.LoanProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.LoanProduct
	for _, p := range r.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeLoanProductRepo) Update(ctx context.Context, p *models.LoanProduct) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return domain.ErrLoanProductNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeLoanProductRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

// ------------------------------------------------------------
// dividends
// ------------------------------------------------------------

type fakeDividendRepo struct {
	mu        sync.Mutex
	nextID    uint
	dividends map[uint]*models.Dividend
	payouts   map[uint]*models.MemberDividend
	years     map[int]bool
}

func newFakeDividendRepo() *fakeDividendRepo {
	return &fakeDividendRepo{
		nextID:    1,
		dividends: make(map[uint]*models.Dividend),
		payouts:   make(map[uint]*models.MemberDividend),
		years:     make(map[int]bool),
	}
}

func (r *fakeDividendRepo) Create(ctx context.Context, d *models.Dividend) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.years[d.Year] {
		return domain.ErrDividendExists
	}
	d.ID = r.nextID
	r.nextID++
	r.years[d.Year] = true
	cp := *d
	r.dividends[d.ID] = &cp
	return nil
}

func (r *fakeDividendRepo) GetByID(ctx context.Context, id uint) (*models.Dividend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.dividends[id]
	if !ok {
		return nil, domain.ErrDividendNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDividendRepo) GetByYear(ctx context.Context, year int) (*models.Dividend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.dividends {
		if d.Year == year {
			cp := *d
			return &cp, nil
		}
	}
	return nil, domain.ErrDividendNotFound
}

func (r *fakeDividendRepo) UpdateTx(ctx context.Context, tx *gorm.DB, d *models.Dividend) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.dividends[d.ID]; !ok {
		return domain.ErrDividendNotFound
	}
	cp := *d
	r.dividends[d.ID] = &cp
	return nil
}

func (r *fakeDividendRepo) MarkDistributedTx(ctx context.Context, tx *gorm.DB, dividendID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.dividends[dividendID]
	if !ok {
		return domain.ErrDividendNotFound
	}
	if d.Status != domain.DividendDeclared {
		return domain.ErrDividendDistributed
	}
	d.Status = domain.DividendDistributed
	return nil
}

func (r *fakeDividendRepo) List(ctx context.Context) ([]*models.Dividend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Dividend
	for _, d := range r.dividends {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeDividendRepo) CreateMemberDividend(ctx context.Context, tx *gorm.DB, md *models.MemberDividend) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	md.ID = r.nextID
	r.nextID++
	cp := *md
	r.payouts[md.ID] = &cp
	return nil
}

func (r *fakeDividendRepo) GetMemberDividendByID(ctx context.Context, id uint) (*models.MemberDividend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	md, ok := r.payouts[id]
	if !ok {
		return nil, domain.ErrMemberDividendNotFound
	}
	cp := *md
	return &cp, nil
}

func (r *fakeDividendRepo) ListMemberDividends(ctx context.Context, dividendID uint) ([]*models.MemberDividend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.MemberDividend
	for _, md := range r.payouts {
		if md.DividendID == dividendID {
			cp := *md
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeDividendRepo) UpdateMemberDividendTx(ctx context.Context, tx *gorm.DB, md *models.MemberDividend) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payouts[md.ID]; !ok {
		return domain.ErrMemberDividendNotFound
	}
	cp := *md
	r.payouts[md.ID] = &cp
	return nil
}

func (r *fakeDividendRepo) ClaimMemberDividendTx(ctx context.Context, tx *gorm.DB, memberDividendID uint, paidAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	md, ok := r.payouts[memberDividendID]
	if !ok {
		return domain.ErrMemberDividendNotFound
	}
	if md.Status != domain.PayoutPending {
		return domain.ErrDividendAlreadyPaid
	}
	at := paidAt
	md.Status = domain.PayoutPaid
	md.PaidAt = &at
	return nil
}

func (r *fakeDividendRepo) SumPendingPayouts(ctx context.Context) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, md := range r.payouts {
		if md.Status == domain.PayoutPending {
			sum = sum.Add(md.DividendAmount)
		}
	}
	return sum, nil
}

// ------------------------------------------------------------
// settings
// ------------------------------------------------------------

type fakeSettingsRepo struct {
	mu       sync.Mutex
	settings map[string]*models.SaccoSetting
	reads    int
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: make(map[string]*models.SaccoSetting)}
}

func (r *fakeSettingsRepo) Get(ctx context.Context, key string) (*models.SaccoSetting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	s, ok := r.settings[key]
	if !ok {
		return nil, domain.ErrSettingNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSettingsRepo) Upsert(ctx context.Context, s *models.SaccoSetting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.settings[s.Key] = &cp
	return nil
}

func (r *fakeSettingsRepo) All(ctx context.Context) ([]*models.SaccoSetting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.SaccoSetting
	for _, s := range r.settings {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeSettingsRepo) readCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

// ------------------------------------------------------------
// governance
// ------------------------------------------------------------

type fakeGovernanceRepo struct {
	mu         sync.Mutex
	nextID     uint
	board      map[uint]*models.BoardMember
	meetings   map[uint]*models.BoardMeeting
	attendance map[string]bool
}

func newFakeGovernanceRepo() *fakeGovernanceRepo {
	return &fakeGovernanceRepo{
		nextID:     1,
		board:      make(map[uint]*models.BoardMember),
		meetings:   make(map[uint]*models.BoardMeeting),
		attendance: make(map[string]bool),
	}
}

func (r *fakeGovernanceRepo) CreateBoardMember(ctx context.Context, bm *models.BoardMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	bm.ID = r.nextID
	r.nextID++
	cp := *bm
	r.board[bm.ID] = &cp
	return nil
}

func (r *fakeGovernanceRepo) GetBoardMemberByID(ctx context.Context, id uint) (*models.BoardMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bm, ok := r.board[id]
	if !ok {
		return nil, domain.ErrBoardMemberNotFound
	}
	cp := *bm
	return &cp, nil
}

func (r *fakeGovernanceRepo) GetActiveByPosition(ctx context.Context, position string) (*models.BoardMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bm := range r.board {
		if bm.Position == position && bm.IsActive {
			cp := *bm
			return &cp, nil
		}
	}
	return nil, domain.ErrBoardMemberNotFound
}

func (r *fakeGovernanceRepo) ListBoard(ctx context.Context, activeOnly bool) ([]*models.BoardMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.BoardMember
	for _, bm := range r.board {
		if activeOnly && !bm.IsActive {
			continue
		}
		cp := *bm
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeGovernanceRepo) UpdateBoardMember(ctx context.Context, bm *models.BoardMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.board[bm.ID]; !ok {
		return domain.ErrBoardMemberNotFound
	}
	cp := *bm
	r.board[bm.ID] = &cp
	return nil
}

func (r *fakeGovernanceRepo) CreateMeeting(ctx context.Context, m *models.BoardMeeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = r.nextID
	r.nextID++
	cp := *m
	r.meetings[m.ID] = &cp
	return nil
}

func (r *fakeGovernanceRepo) GetMeetingByID(ctx context.Context, id uint) (*models.BoardMeeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[id]
	if !ok {
		return nil, domain.ErrMeetingNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeGovernanceRepo) ListMeetings(ctx context.Context, offset, limit int) ([]*models.BoardMeeting, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.BoardMeeting
	for _, m := range r.meetings {
		cp := *m
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeGovernanceRepo) UpdateMeeting(ctx context.Context, m *models.BoardMeeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meetings[m.ID]; !ok {
		return domain.ErrMeetingNotFound
	}
	cp := *m
	r.meetings[m.ID] = &cp
	return nil
}

func (r *fakeGovernanceRepo) CreateAttendance(ctx context.Context, att *models.BoardMeetingAttendance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := fmt.Sprintf("%d:%d", att.MeetingID, att.BoardMemberID)
	if r.attendance[key] {
		return domain.ErrAttendanceRecorded
	}
	r.attendance[key] = true
	att.ID = r.nextID
	r.nextID++
	return nil
}

func (r *fakeGovernanceRepo) ListAttendance(ctx context.Context, meetingID uint) ([]*models.BoardMeetingAttendance, error) {
	return nil, nil
}

// ------------------------------------------------------------
// users and refresh tokens
// ------------------------------------------------------------

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[uint]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = r.nextID
	r.nextID++
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	nextID uint
	tokens map[string]*models.RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{nextID: 1, tokens: make(map[string]*models.RefreshToken)}
}

func (r *fakeTokenRepo) Create(ctx context.Context, t *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.nextID
	r.nextID++
	cp := *t
	r.tokens[t.TokenHash] = &cp
	return nil
}

func (r *fakeTokenRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[tokenHash]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTokenRepo) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[tokenHash]; ok && t.RevokedAt == nil {
		now := time.Now()
		t.RevokedAt = &now
	}
	return nil
}

func (r *fakeTokenRepo) RevokeAllByUserID(ctx context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			at := now
			t.RevokedAt = &at
		}
	}
	return nil
}

func (r *fakeTokenRepo) DeleteExpired(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, t := range r.tokens {
		if t.IsExpired() {
			delete(r.tokens, hash)
		}
	}
	return nil
}

// ------------------------------------------------------------
// fixture
// ------------------------------------------------------------

// fixture wires the full service graph over in-memory fakes.
type fixture struct {
	members   *fakeMemberRepo
	accounts  *fakeAccountRepo
	txs       *fakeTransactionRepo
	sequences *fakeSequenceRepo
	loans     *fakeLoanRepo
	products  *fakeLoanProductRepo
	dividends *fakeDividendRepo
	settings  *fakeSettingsRepo

	settingsSvc *SettingsService
	memberSvc   *MemberService
	ledgerSvc   *LedgerService
	loanSvc     *LoanService
	dividendSvc *DividendService
}

func newFixture() *fixture {
	f := &fixture{
		members:   newFakeMemberRepo(),
		accounts:  newFakeAccountRepo(),
		txs:       newFakeTransactionRepo(),
		sequences: newFakeSequenceRepo(),
		loans:     newFakeLoanRepo(),
		products:  newFakeLoanProductRepo(),
		dividends: newFakeDividendRepo(),
		settings:  newFakeSettingsRepo(),
	}

	db := fakeTxRunner{}
	f.settingsSvc = NewSettingsService(f.settings)
	f.memberSvc = NewMemberService(db, f.members, f.sequences)
	f.ledgerSvc = NewLedgerService(db, f.members, f.accounts, f.txs, f.sequences, f.settingsSvc)
	f.loanSvc = NewLoanService(db, f.loans, f.products, f.members, f.accounts, f.ledgerSvc, f.settingsSvc)
	f.dividendSvc = NewDividendService(db, f.dividends, f.accounts, f.ledgerSvc)
	return f
}
