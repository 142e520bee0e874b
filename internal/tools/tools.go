// Package tools implements the statistical tool suite. Every tool is a pure
// function of the categorized transaction table: no tool reads another
// tool's output, no tool mutates shared state, and a tool that finds nothing
// returns nil.
package tools

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/Shirly8/sift/internal/model"
)

// monthKey buckets a date into its calendar month.
func monthKey(t time.Time) string {
	return t.Format("2006-01")
}

// spendingOnly filters out income and transfer rows. Tools measure spending;
// deposits would skew every statistic.
func spendingOnly(txns []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		if model.IsSpending(t.Category) {
			out = append(out, t)
		}
	}
	return out
}

// incomeOnly filters to income deposits.
func incomeOnly(txns []model.Transaction) []model.Transaction {
	var out []model.Transaction
	for _, t := range txns {
		if t.Category == model.CategoryIncome {
			out = append(out, t)
		}
	}
	return out
}

// dateRange returns the earliest and latest transaction dates.
func dateRange(txns []model.Transaction) (time.Time, time.Time) {
	if len(txns) == 0 {
		return time.Time{}, time.Time{}
	}
	min, max := txns[0].Date, txns[0].Date
	for _, t := range txns[1:] {
		if t.Date.Before(min) {
			min = t.Date
		}
		if t.Date.After(max) {
			max = t.Date
		}
	}
	return min, max
}

func daysSpan(txns []model.Transaction) int {
	min, max := dateRange(txns)
	return model.CalendarDays(min, max)
}

// monthlyTotals sums spending per calendar month, in chronological order.
func monthlyTotals(txns []model.Transaction) []model.MonthTotal {
	byMonth := map[string]float64{}
	for _, t := range txns {
		byMonth[monthKey(t.Date)] += t.Amount
	}
	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]model.MonthTotal, len(months))
	for i, m := range months {
		out[i] = model.MonthTotal{Month: m, Total: byMonth[m]}
	}
	return out
}

// monthlyPivot builds category-level monthly spending series over a shared,
// zero-filled month axis. Only spending rows contribute.
type monthlyPivot struct {
	months []string
	series map[string][]float64
}

func pivotByMonth(txns []model.Transaction) monthlyPivot {
	spend := spendingOnly(txns)

	monthSet := map[string]struct{}{}
	for _, t := range spend {
		monthSet[monthKey(t.Date)] = struct{}{}
	}
	months := make([]string, 0, len(monthSet))
	for m := range monthSet {
		months = append(months, m)
	}
	sort.Strings(months)

	index := make(map[string]int, len(months))
	for i, m := range months {
		index[m] = i
	}

	series := map[string][]float64{}
	for _, t := range spend {
		s, ok := series[t.Category]
		if !ok {
			s = make([]float64, len(months))
			series[t.Category] = s
		}
		s[index[monthKey(t.Date)]] += t.Amount
	}

	return monthlyPivot{months: months, series: series}
}

// categories returns the pivot's category names with nonzero totals, sorted
// for deterministic iteration.
func (p monthlyPivot) categories() []string {
	var out []string
	for cat, s := range p.series {
		total := 0.0
		for _, v := range s {
			total += v
		}
		if total > 0 {
			out = append(out, cat)
		}
	}
	sort.Strings(out)
	return out
}

// quantile returns the q-th empirical quantile of values.
func quantile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(q, stat.Empirical, sorted, nil)
}

// mean and sampleStd wrap gonum for readability at call sites.
func mean(values []float64) float64 {
	return stat.Mean(values, nil)
}

func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5*sign(v))) / 100
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5*sign(v))) / 10
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
