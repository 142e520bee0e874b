package tools

import (
	"sort"
	"time"

	"github.com/Shirly8/sift/internal/model"
)

// TemporalPatterns detects payday proximity, weekend-vs-weekday behavior,
// and month-over-month seasonal totals. Sub-findings that do not reach their
// evidence bar are simply absent from the result.
func TemporalPatterns(txns []model.Transaction) *model.TemporalResult {
	result := &model.TemporalResult{
		Payday:   detectPaydayPattern(txns),
		Weekly:   detectWeeklyPattern(txns),
		Seasonal: detectSeasonalPattern(txns),
	}
	if result.Payday == nil && result.Weekly == nil && result.Seasonal == nil {
		return nil
	}
	return result
}

// detectPaydayPattern measures how much of each pay cycle's spending lands in
// the first 7 days after a deposit. Needs 3+ income deposits and a consistent
// pattern (>30% of the cycle's spend in the first week, in 60%+ of cycles).
func detectPaydayPattern(txns []model.Transaction) *model.PaydayPattern {
	income := incomeOnly(txns)
	if len(income) < 3 {
		return nil
	}
	sort.Slice(income, func(i, j int) bool { return income[i].Date.Before(income[j].Date) })

	spend := spendingOnly(txns)

	var firstWeekPcts []float64
	for _, pay := range income {
		cycleEnd := pay.Date.AddDate(0, 0, 30)
		weekEnd := pay.Date.AddDate(0, 0, 7)

		cycleTotal, weekTotal := 0.0, 0.0
		for _, t := range spend {
			if t.Date.Before(pay.Date) || !t.Date.Before(cycleEnd) {
				continue
			}
			cycleTotal += t.Amount
			if t.Date.Before(weekEnd) {
				weekTotal += t.Amount
			}
		}
		if cycleTotal > 0 {
			firstWeekPcts = append(firstWeekPcts, weekTotal/cycleTotal)
		}
	}
	if len(firstWeekPcts) < 3 {
		return nil
	}

	avgPct := mean(firstWeekPcts)
	strong := 0
	for _, p := range firstWeekPcts {
		if p > 0.30 {
			strong++
		}
	}
	consistency := float64(strong) / float64(len(firstWeekPcts))
	if consistency < 0.6 {
		return nil
	}

	// most common deposit day of month
	dayCounts := map[int]int{}
	for _, t := range income {
		dayCounts[t.Date.Day()]++
	}
	paydayDay, best := 0, 0
	for day, count := range dayCounts {
		if count > best || (count == best && day < paydayDay) {
			paydayDay, best = day, count
		}
	}

	confidence := consistency
	if confidence > 0.95 {
		confidence = 0.95
	}

	return &model.PaydayPattern{
		PaydayDayOfMonth:  paydayDay,
		FirstWeekSpendPct: round1(avgPct * 100),
		Consistency:       round2(consistency),
		CyclesAnalyzed:    len(firstWeekPcts),
		Confidence:        round2(confidence),
	}
}

var weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
var weekendDays = []time.Weekday{time.Saturday, time.Sunday}

// detectWeeklyPattern compares average transaction size across days of the
// week and derives a weekend-vs-weekday multiple.
func detectWeeklyPattern(txns []model.Transaction) *model.WeeklyPattern {
	spend := spendingOnly(txns)
	if len(spend) == 0 {
		return nil
	}

	byDay := map[time.Weekday][]float64{}
	var all []float64
	for _, t := range spend {
		byDay[t.Date.Weekday()] = append(byDay[t.Date.Weekday()], t.Amount)
		all = append(all, t.Amount)
	}

	dayAvg := map[time.Weekday]float64{}
	for day, amounts := range byDay {
		dayAvg[day] = mean(amounts)
	}

	avgOf := func(days []time.Weekday) float64 {
		var sum float64
		n := 0
		for _, d := range days {
			if avg, ok := dayAvg[d]; ok {
				sum += avg
				n++
			}
		}
		if n == 0 {
			return 0
		}
		return sum / float64(n)
	}

	weekdayAvg := avgOf(weekdays)
	weekendAvg := avgOf(weekendDays)

	multiple := 1.0
	if weekdayAvg > 0 {
		multiple = weekendAvg / weekdayAvg
	}

	// share of variance explained by day of week
	overall := mean(all)
	ssBetween, ssTotal := 0.0, 0.0
	for day, amounts := range byDay {
		d := dayAvg[day] - overall
		ssBetween += float64(len(amounts)) * d * d
	}
	for _, v := range all {
		d := v - overall
		ssTotal += d * d
	}
	strength := 0.0
	if ssTotal > 0 {
		strength = ssBetween / ssTotal
	}

	highest, lowest := time.Sunday, time.Sunday
	highVal, lowVal := -1.0, -1.0
	for day, avg := range dayAvg {
		if highVal < 0 || avg > highVal {
			highest, highVal = day, avg
		}
		if lowVal < 0 || avg < lowVal {
			lowest, lowVal = day, avg
		}
	}

	return &model.WeeklyPattern{
		WeekendMultiple: round2(multiple),
		HighestDay:      highest.String(),
		LowestDay:       lowest.String(),
		Strength:        round2(strength),
		WeekdayAvg:      round2(weekdayAvg),
		WeekendAvg:      round2(weekendAvg),
	}
}

// detectSeasonalPattern looks for month-over-month variation in total
// spending. Flat histories (coefficient of variation below 0.10) are not
// seasonal and yield nil.
func detectSeasonalPattern(txns []model.Transaction) *model.SeasonalPattern {
	spend := spendingOnly(txns)
	monthly := monthlyTotals(spend)
	if len(monthly) < 3 {
		return nil
	}

	totals := make([]float64, len(monthly))
	for i, m := range monthly {
		totals[i] = m.Total
	}

	avg := mean(totals)
	if avg <= 0 {
		return nil
	}
	cv := sampleStd(totals) / avg
	if cv < 0.10 {
		return nil
	}

	peak, low := monthly[0], monthly[0]
	for _, m := range monthly[1:] {
		if m.Total > peak.Total {
			peak = m
		}
		if m.Total < low.Total {
			low = m
		}
	}

	span := daysSpan(txns)
	confidence := model.TierLow
	switch {
	case span >= 730:
		confidence = model.TierHigh
	case span >= 365:
		confidence = model.TierMedium
	}

	return &model.SeasonalPattern{
		MonthlyTotals:  monthly,
		PeakMonth:      peak.Month,
		PeakAmount:     round2(peak.Total),
		LowMonth:       low.Month,
		LowAmount:      round2(low.Total),
		AvgMonthly:     round2(avg),
		Strength:       round2(cv),
		MonthsAnalyzed: len(monthly),
		Confidence:     confidence,
	}
}
