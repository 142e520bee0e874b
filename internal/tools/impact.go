package tools

import (
	"sort"

	"github.com/Shirly8/sift/internal/model"
)

// SpendingImpact ranks categories by how much month-to-month dollar swing
// each one contributes, measured as the standard deviation of its monthly
// totals. Regressing total spend on category spend is not used: the total is
// the sum of the categories, so the fit is near-perfect by construction and
// carries no information.
func SpendingImpact(txns []model.Transaction) *model.SpendingImpactResult {
	pivot := pivotByMonth(txns)
	nMonths := len(pivot.months)
	if nMonths < 6 {
		return nil
	}

	categories := pivot.categories()
	if len(categories) < 3 {
		return nil
	}

	type catStat struct {
		category string
		std      float64
		avg      float64
	}
	var stats []catStat
	totalStd := 0.0
	for _, cat := range categories {
		series := pivot.series[cat]
		std := sampleStd(series)
		stats = append(stats, catStat{category: cat, std: std, avg: mean(series)})
		totalStd += std
	}
	if totalStd <= 0 {
		return nil
	}

	impacts := make([]model.CategoryImpact, 0, len(stats))
	for _, s := range stats {
		cv := 0.0
		if s.avg > 0 {
			cv = s.std / s.avg
		}
		impacts = append(impacts, model.CategoryImpact{
			Category:   s.category,
			ImpactPct:  round1(s.std / totalStd * 100),
			MonthlyStd: round2(s.std),
			MonthlyAvg: round2(s.avg),
			CV:         round2(cv),
		})
	}

	sort.SliceStable(impacts, func(i, j int) bool {
		return impacts[i].MonthlyStd > impacts[j].MonthlyStd
	})

	confidence := model.TierMedium
	if nMonths >= 9 {
		confidence = model.TierHigh
	}

	return &model.SpendingImpactResult{
		Confidence: confidence,
		Impacts:    impacts,
		Months:     nMonths,
	}
}
