package tools

import (
	"time"

	"github.com/Shirly8/sift/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func spend(t time.Time, merchant, category string, amount float64) model.Transaction {
	return model.Transaction{
		Date:               t,
		RawMerchant:        merchant,
		NormalizedMerchant: merchant,
		Category:           category,
		Amount:             amount,
		Confidence:         0.95,
		Source:             model.SourceRule,
	}
}

func income(t time.Time, amount float64) model.Transaction {
	return spend(t, "EMPLOYER PAYROLL", model.CategoryIncome, amount)
}

// monthlySeries emits one transaction per month starting at the given date.
func monthlySeries(start time.Time, merchant, category string, amounts []float64) []model.Transaction {
	txns := make([]model.Transaction, len(amounts))
	for i, amount := range amounts {
		txns[i] = spend(start.AddDate(0, i, 0), merchant, category, amount)
	}
	return txns
}
