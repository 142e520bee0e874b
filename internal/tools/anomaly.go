package tools

import (
	"sort"

	"github.com/Shirly8/sift/internal/model"
)

// newMerchantLookbackDays is the window for "never seen before" detection.
const newMerchantLookbackDays = 30

// AnomalyDetection flags per-transaction outliers, category-month spending
// spikes, and merchants first seen recently. It has no minimum data
// requirement: it is the safety net that always runs.
func AnomalyDetection(txns []model.Transaction) *model.AnomalyResult {
	result := &model.AnomalyResult{
		Outliers:     detectTransactionOutliers(txns),
		Spikes:       detectSpendingSpikes(txns),
		NewMerchants: detectNewMerchants(txns),
	}
	if len(result.Outliers) == 0 && len(result.Spikes) == 0 && len(result.NewMerchants) == 0 {
		return nil
	}
	return result
}

// detectTransactionOutliers flags unusually large transactions per category
// using the interquartile range. IQR is robust to the right skew of
// transaction amounts, where z-scores on raw amounts both miss real outliers
// and flag legitimate purchases. The fence is Q3 + 2.0*IQR, stricter than
// the common 1.5x, to avoid over-flagging naturally high-variance categories.
func detectTransactionOutliers(txns []model.Transaction) []model.TransactionOutlier {
	var results []model.TransactionOutlier

	byCategory := map[string][]model.Transaction{}
	for _, t := range spendingOnly(txns) {
		byCategory[t.Category] = append(byCategory[t.Category], t)
	}

	for category, group := range byCategory {
		if len(group) < 5 {
			continue
		}

		amounts := make([]float64, len(group))
		for i, t := range group {
			amounts[i] = t.Amount
		}

		q1 := quantile(amounts, 0.25)
		q3 := quantile(amounts, 0.75)
		iqr := q3 - q1
		if iqr == 0 {
			continue
		}

		fence := q3 + 2.0*iqr
		median := quantile(amounts, 0.5)

		for _, t := range group {
			if t.Amount <= fence {
				continue
			}
			score := round1((t.Amount - q3) / iqr)
			confidence := model.TierMedium
			if score >= 3.0 {
				confidence = model.TierHigh
			}
			results = append(results, model.TransactionOutlier{
				Merchant:       t.NormalizedMerchant,
				Amount:         round2(t.Amount),
				Date:           t.Date.Format("2006-01-02"),
				Category:       category,
				CategoryMedian: round2(median),
				UpperFence:     round2(fence),
				IQRScore:       score,
				Confidence:     confidence,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].IQRScore > results[j].IQRScore
	})
	return results
}

// detectSpendingSpikes compares each category's most recent month against
// the average of its prior months. A spike is a 50%+ increase.
func detectSpendingSpikes(txns []model.Transaction) []model.SpendingSpike {
	var results []model.SpendingSpike

	if daysSpan(txns) < 45 {
		return results
	}

	pivot := pivotByMonth(txns)
	if len(pivot.months) < 2 {
		return results
	}
	recentMonth := pivot.months[len(pivot.months)-1]

	for _, category := range pivot.categories() {
		series := pivot.series[category]
		recent := series[len(series)-1]
		prior := series[:len(series)-1]

		priorAvg := mean(prior)
		if priorAvg == 0 {
			continue
		}

		spikePct := (recent - priorAvg) / priorAvg * 100
		if spikePct <= 50 {
			continue
		}

		results = append(results, model.SpendingSpike{
			Category:       category,
			RecentMonth:    recentMonth,
			RecentTotal:    round2(recent),
			PriorAvg:       round2(priorAvg),
			SpikePct:       round1(spikePct),
			MonthsCompared: len(prior),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SpikePct > results[j].SpikePct
	})
	return results
}

// detectNewMerchants flags merchants first seen within the lookback window.
// Two modes: repeated new merchants (a possible new subscription) and
// high-value one-time charges from unknown merchants.
func detectNewMerchants(txns []model.Transaction) []model.NewMerchant {
	var results []model.NewMerchant
	if len(txns) == 0 {
		return results
	}

	_, maxDate := dateRange(txns)
	cutoff := maxDate.AddDate(0, 0, -newMerchantLookbackDays)

	allAmounts := make([]float64, len(txns))
	for i, t := range txns {
		allAmounts[i] = t.Amount
	}
	highValueThreshold := quantile(allAmounts, 0.5) * 3
	if highValueThreshold < 50 {
		highValueThreshold = 50
	}

	byMerchant := map[string][]model.Transaction{}
	var order []string
	for _, t := range txns {
		if _, ok := byMerchant[t.NormalizedMerchant]; !ok {
			order = append(order, t.NormalizedMerchant)
		}
		byMerchant[t.NormalizedMerchant] = append(byMerchant[t.NormalizedMerchant], t)
	}
	sort.Strings(order)

	for _, merchant := range order {
		group := byMerchant[merchant]
		sort.Slice(group, func(i, j int) bool { return group[i].Date.Before(group[j].Date) })

		firstSeen := group[0].Date
		if firstSeen.Before(cutoff) {
			continue
		}

		total, maxAmount := 0.0, 0.0
		for _, t := range group {
			total += t.Amount
			if t.Amount > maxAmount {
				maxAmount = t.Amount
			}
		}
		avg := total / float64(len(group))

		switch {
		case len(group) >= 2 && avg >= 5:
			results = append(results, model.NewMerchant{
				Merchant:    merchant,
				Category:    group[0].Category,
				FirstSeen:   firstSeen.Format("2006-01-02"),
				Occurrences: len(group),
				AvgAmount:   round2(avg),
				Recurrence:  classifyRecurrence(group),
			})
		case len(group) == 1 && maxAmount >= highValueThreshold:
			results = append(results, model.NewMerchant{
				Merchant:    merchant,
				Category:    group[0].Category,
				FirstSeen:   firstSeen.Format("2006-01-02"),
				Occurrences: 1,
				AvgAmount:   round2(maxAmount),
				Recurrence:  "one-time",
				HighValue:   true,
			})
		}
	}

	return results
}

// classifyRecurrence labels a sorted charge history by its average gap.
func classifyRecurrence(sorted []model.Transaction) string {
	if len(sorted) < 2 {
		return "one-time"
	}
	var gaps []float64
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, sorted[i].Date.Sub(sorted[i-1].Date).Hours()/24)
	}
	avgGap := mean(gaps)
	switch {
	case avgGap >= 25 && avgGap <= 35:
		return "monthly"
	case avgGap >= 6 && avgGap <= 8:
		return "weekly"
	}
	return "one-time"
}
