package config

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sacco-ledger/internal/adapters/persistence/models"
)

// Seed inserts the default loan products and settings. Inserts are
// idempotent: existing rows are left untouched.
func Seed(db *gorm.DB) error {
	if err := seedLoanProducts(db); err != nil {
		return err
	}
	if err := seedSettings(db); err != nil {
		return err
	}

	logrus.Info("seed data ensured")
	return nil
}

func seedLoanProducts(db *gorm.DB) error {
	products := []models.LoanProduct{
		{
			Code:             "DEV",
			Name:             "Development Loan",
			Description:      "Long term loan for business or property development",
			MinAmount:        decimal.NewFromInt(50000),
			MaxAmount:        decimal.NewFromInt(5000000),
			MinTermMonths:    6,
			MaxTermMonths:    60,
			InterestRate:     decimal.NewFromInt(12),
			ProcessingFeePct: decimal.NewFromInt(1),
			MinGuarantors:    2,
			IsActive:         true,
		},
		{
			Code:             "EMG",
			Name:             "Emergency Loan",
			Description:      "Short term loan for urgent needs",
			MinAmount:        decimal.NewFromInt(5000),
			MaxAmount:        decimal.NewFromInt(200000),
			MinTermMonths:    1,
			MaxTermMonths:    12,
			InterestRate:     decimal.NewFromInt(10),
			ProcessingFeePct: decimal.Zero,
			MinGuarantors:    1,
			IsActive:         true,
		},
		{
			Code:             "SCH",
			Name:             "School Fees Loan",
			Description:      "Education loan repayable within the school year",
			MinAmount:        decimal.NewFromInt(10000),
			MaxAmount:        decimal.NewFromInt(500000),
			MinTermMonths:    3,
			MaxTermMonths:    12,
			InterestRate:     decimal.NewFromInt(8),
			ProcessingFeePct: decimal.Zero,
			MinGuarantors:    1,
			IsActive:         true,
		},
	}

	for i := range products {
		err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&products[i]).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func seedSettings(db *gorm.DB) error {
	settings := []models.SaccoSetting{
		{Key: "loan.default_guarantors", Value: "2", Description: "Guarantor approvals required when the product sets none"},
		{Key: "loan.default_grace_days", Value: "30", Description: "Days past final installment before a loan defaults"},
		{Key: "savings.interest_rate", Value: "4.5", Description: "Annual interest rate applied to savings accounts"},
	}

	for i := range settings {
		err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&settings[i]).Error
		if err != nil {
			return err
		}
	}
	return nil
}
