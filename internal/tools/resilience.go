package tools

import (
	"math"
	"math/rand"
	"sort"

	"github.com/Shirly8/sift/internal/model"
)

const (
	stressSimulations = 1000
	stressHorizon     = 36 // months
)

// FinancialResilience estimates savings runway from observed cash flow and
// runs a Monte Carlo job-loss stress test over the per-category monthly
// spending distributions.
func FinancialResilience(txns []model.Transaction) *model.ResilienceResult {
	spend := spendingOnly(txns)
	income := incomeOnly(txns)
	if len(spend) == 0 {
		return nil
	}

	pivot := pivotByMonth(txns)
	nMonths := len(pivot.months)
	if nMonths == 0 {
		return nil
	}

	totalSpend, totalIncome := 0.0, 0.0
	for _, t := range spend {
		totalSpend += t.Amount
	}
	for _, t := range income {
		totalIncome += t.Amount
	}

	monthlyBurn := totalSpend / float64(nMonths)
	monthlyIncome := totalIncome / float64(nMonths)

	// Savings are not observable from a transaction export, so the net
	// surplus over the window stands in for them. A negative surplus means
	// no runway to report.
	savings := totalIncome - totalSpend

	var runway *model.Runway
	if monthlyBurn > 0 {
		months := 0.0
		if savings > 0 {
			months = savings / monthlyBurn
		}
		runway = &model.Runway{
			MonthsOfRunway:   round1(months),
			MonthlyBurn:      round2(monthlyBurn),
			MonthlyIncome:    round2(monthlyIncome),
			NetMonthly:       round2(monthlyIncome - monthlyBurn),
			EstimatedSavings: round2(savings),
		}
	}

	stress := stressTestJobLoss(pivot, savings)
	if runway == nil && stress == nil {
		return nil
	}

	return &model.ResilienceResult{
		Runway:     runway,
		StressTest: stress,
	}
}

// stressTestJobLoss simulates months of zero income, drawing each category's
// monthly spend from a Normal fit to its observed totals, and reports the
// median runway with a p10-p90 band.
func stressTestJobLoss(pivot monthlyPivot, savings float64) *model.StressTest {
	if savings <= 0 || len(pivot.months) < 2 {
		return nil
	}

	categories := pivot.categories()
	if len(categories) == 0 {
		return nil
	}

	type dist struct {
		category string
		mean     float64
		std      float64
	}
	var dists []dist
	essentialBudget := 0.0
	for _, cat := range categories {
		series := pivot.series[cat]
		m := mean(series)
		dists = append(dists, dist{
			category: cat,
			mean:     m,
			std:      math.Max(sampleStd(series), 1),
		})
		if model.IsEssential(cat) {
			essentialBudget += m
		}
	}

	// deterministic seed keeps reruns of the same data comparable
	rng := rand.New(rand.NewSource(42))
	runways := make([]float64, stressSimulations)
	for sim := 0; sim < stressSimulations; sim++ {
		balance := savings
		months := float64(stressHorizon)
		for month := 0; month < stressHorizon; month++ {
			spendThisMonth := 0.0
			for _, d := range dists {
				draw := rng.NormFloat64()*d.std + d.mean
				if draw < 0 {
					draw = 0
				}
				spendThisMonth += draw
			}
			balance -= spendThisMonth
			if balance <= 0 {
				// fraction of the final month covered before running dry
				months = float64(month) + (balance+spendThisMonth)/spendThisMonth
				break
			}
		}
		runways[sim] = months
	}

	// top discretionary categories by monthly average are the first cuts
	var cuts []model.CategoryCut
	for _, d := range dists {
		if !model.IsDiscretionary(d.category) {
			continue
		}
		cuts = append(cuts, model.CategoryCut{
			Category:         d.category,
			MonthlyAvg:       round2(d.mean),
			PotentialSavings: round2(d.mean),
		})
	}
	sort.SliceStable(cuts, func(i, j int) bool { return cuts[i].MonthlyAvg > cuts[j].MonthlyAvg })
	if len(cuts) > 3 {
		cuts = cuts[:3]
	}

	return &model.StressTest{
		Scenario:         "job_loss",
		CategoriesToCut:  cuts,
		MonthsOfRunway:   round1(quantile(runways, 0.5)),
		RunwayP10:        round1(quantile(runways, 0.1)),
		RunwayP90:        round1(quantile(runways, 0.9)),
		EstimatedSavings: round2(savings),
		MinimumBudget:    round2(essentialBudget),
	}
}
