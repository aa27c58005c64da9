package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"sacco-ledger/internal/core/domain"
)

// CronService runs the scheduled back-office jobs: the daily default
// sweep and the monthly savings interest posting.
type CronService struct {
	cron   *cron.Cron
	loans  *LoanService
	ledger *LedgerService
	log    *logrus.Entry
}

// NewCronService creates a new cron service
func NewCronService(loans *LoanService, ledger *LedgerService) *CronService {
	return &CronService{
		cron:   cron.New(),
		loans:  loans,
		ledger: ledger,
		log:    logrus.WithField("service", "cron"),
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	// 01:00 daily: mark overdue active loans defaulted
	if _, err := s.cron.AddFunc("0 1 * * *", s.runDefaultSweep); err != nil {
		return err
	}

	// 02:00 on the 1st: post monthly interest on savings accounts
	if _, err := s.cron.AddFunc("0 2 1 * *", s.runInterestPosting); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("cron scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("cron scheduler stopped")
}

func (s *CronService) runDefaultSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := s.loans.SweepDefaults(ctx, time.Now())
	if err != nil {
		s.log.WithError(err).Error("default sweep failed")
		return
	}
	if n > 0 {
		s.log.WithField("defaulted", n).Warn("loans marked defaulted")
	}
}

func (s *CronService) runInterestPosting() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	n, err := s.ledger.PostMonthlyInterest(ctx, domain.AccountSavings)
	if err != nil {
		s.log.WithError(err).Error("interest posting failed")
		return
	}
	s.log.WithField("accounts", n).Info("monthly interest posted")
}
