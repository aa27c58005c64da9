package loanmath

import (
	"time"

	"github.com/shopspring/decimal"
)

// Terms are the inputs of the flat-rate amortization formula.
type Terms struct {
	Principal    decimal.Decimal
	AnnualRate   decimal.Decimal // percent, e.g. 12 for 12% p.a.
	TenureMonths int
}

// Totals are the derived loan figures. They are recomputed from Terms
// whenever principal, rate or tenure change before disbursement.
type Totals struct {
	TotalInterest      decimal.Decimal
	TotalPayable       decimal.Decimal
	MonthlyInstallment decimal.Decimal
}

var twelveHundred = decimal.NewFromInt(1200)

// Compute applies the flat-rate simple-interest formula:
//
//	total_interest = principal * rate * tenure_months / 1200
//
// All figures are rounded to 2 decimal places.
func Compute(t Terms) Totals {
	months := decimal.NewFromInt(int64(t.TenureMonths))

	interest := t.Principal.
		Mul(t.AnnualRate).
		Mul(months).
		Div(twelveHundred).
		Round(2)

	payable := t.Principal.Add(interest)

	installment := decimal.Zero
	if t.TenureMonths > 0 {
		installment = payable.Div(months).Round(2)
	}

	return Totals{
		TotalInterest:      interest,
		TotalPayable:       payable,
		MonthlyInstallment: installment,
	}
}

// Installment is one row of a repayment schedule.
type Installment struct {
	Number    int             `json:"number"`
	DueDate   time.Time       `json:"due_date"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Total     decimal.Decimal `json:"total"`
	Balance   decimal.Decimal `json:"balance"` // payable remaining after this installment
}

// Schedule expands Terms into a month-by-month repayment plan starting
// one month after start. The final installment absorbs rounding drift
// so the schedule sums exactly to the total payable.
func Schedule(t Terms, start time.Time) []Installment {
	if t.TenureMonths <= 0 {
		return nil
	}

	totals := Compute(t)
	months := decimal.NewFromInt(int64(t.TenureMonths))
	principalPart := t.Principal.Div(months).Round(2)
	interestPart := totals.TotalInterest.Div(months).Round(2)

	rows := make([]Installment, 0, t.TenureMonths)
	remaining := totals.TotalPayable

	for i := 1; i <= t.TenureMonths; i++ {
		p := principalPart
		in := interestPart
		total := p.Add(in)
		if i == t.TenureMonths {
			// Last row picks up the remainder.
			total = remaining
			in = totals.TotalInterest.Sub(interestPart.Mul(decimal.NewFromInt(int64(t.TenureMonths - 1))))
			p = total.Sub(in)
		}
		remaining = remaining.Sub(total)

		rows = append(rows, Installment{
			Number:    i,
			DueDate:   start.AddDate(0, i, 0),
			Principal: p,
			Interest:  in,
			Total:     total,
			Balance:   remaining,
		})
	}

	return rows
}

// MonthlyInterest computes one month of simple interest on a balance at
// an annual percentage rate, rounded to 2 decimal places.
func MonthlyInterest(balance, annualRate decimal.Decimal) decimal.Decimal {
	return balance.Mul(annualRate).Div(twelveHundred).Round(2)
}
