package agent

import (
	"math"
	"sort"

	"github.com/Shirly8/sift/internal/model"
)

// BuildProfile summarizes a categorized transaction table. The profile is
// the sole input to planning; tools never look at it.
func BuildProfile(txns []model.Transaction) *model.Profile {
	p := &model.Profile{TransactionCount: len(txns)}
	if len(txns) == 0 {
		p.SpendingTrend = model.TrendInsufficient
		return p
	}

	start, end := txns[0].Date, txns[0].Date
	categories := map[string]struct{}{}
	byMonth := map[string]float64{}
	byCatMonth := map[string]map[string]float64{}
	totalSpent, totalIncome := 0.0, 0.0

	for _, t := range txns {
		if t.Date.Before(start) {
			start = t.Date
		}
		if t.Date.After(end) {
			end = t.Date
		}
		if t.Categorized() {
			categories[t.Category] = struct{}{}
		}
		if t.Category == model.CategoryIncome {
			totalIncome += t.Amount
			continue
		}
		if !model.IsSpending(t.Category) {
			continue
		}
		totalSpent += t.Amount
		month := t.Date.Format("2006-01")
		byMonth[month] += t.Amount
		if byCatMonth[t.Category] == nil {
			byCatMonth[t.Category] = map[string]float64{}
		}
		byCatMonth[t.Category][month] += t.Amount
	}

	p.StartDate = start
	p.EndDate = end
	p.DaysSpan = model.CalendarDays(start, end)
	p.CategoryCount = len(categories)
	p.TotalSpent = math.Round(totalSpent*100) / 100
	p.HasIncome = detectRecurringIncome(txns)

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, m := range months {
		p.MonthlyTotals = append(p.MonthlyTotals, model.MonthTotal{
			Month: m,
			Total: math.Round(byMonth[m]*100) / 100,
		})
	}
	if n := len(months); n > 0 {
		p.MonthlyAverage = math.Round(totalSpent/float64(n)*100) / 100
		p.MonthlyIncome = math.Round(totalIncome/float64(n)*100) / 100
		recent := p.MonthlyTotals
		if n > 3 {
			recent = recent[n-3:]
		}
		sum := 0.0
		for _, mt := range recent {
			sum += mt.Total
		}
		p.Recent3MoAvg = math.Round(sum/float64(len(recent))*100) / 100
	}

	p.SpendingTrend = spendingTrend(p.MonthlyTotals)
	p.BiggestSwingCategory = biggestSwing(byCatMonth)
	return p
}

// detectRecurringIncome looks for repeated deposits in the same amount class
// that are larger than the median spend transaction. A single windfall is
// not income.
func detectRecurringIncome(txns []model.Transaction) bool {
	var spends []float64
	var deposits []model.Transaction
	for _, t := range txns {
		if t.Category == model.CategoryIncome {
			deposits = append(deposits, t)
		} else if model.IsSpending(t.Category) {
			spends = append(spends, t.Amount)
		}
	}
	if len(deposits) < 2 {
		return false
	}

	medianSpend := 0.0
	if len(spends) > 0 {
		sort.Float64s(spends)
		medianSpend = spends[len(spends)/2]
	}

	// bucket deposits into 10% amount classes
	classes := map[int]int{}
	for _, d := range deposits {
		if d.Amount <= medianSpend {
			continue
		}
		class := int(math.Round(math.Log10(d.Amount) * 10))
		classes[class]++
	}
	for _, count := range classes {
		if count >= 2 {
			return true
		}
	}
	return false
}

// spendingTrend compares the average of the last three months against the
// earlier months. Under three months of data is insufficient.
func spendingTrend(totals []model.MonthTotal) string {
	if len(totals) < 3 {
		return model.TrendInsufficient
	}
	split := len(totals) - 3
	if split == 0 {
		split = 1
	}
	earlierSum, recentSum := 0.0, 0.0
	for i, mt := range totals {
		if i < split {
			earlierSum += mt.Total
		} else {
			recentSum += mt.Total
		}
	}
	earlier := earlierSum / float64(split)
	recent := recentSum / float64(len(totals)-split)
	if earlier <= 0 {
		return model.TrendInsufficient
	}
	switch change := (recent - earlier) / earlier; {
	case change > 0.10:
		return model.TrendRising
	case change < -0.10:
		return model.TrendDeclining
	default:
		return model.TrendStable
	}
}

func biggestSwing(byCatMonth map[string]map[string]float64) *model.CategorySwing {
	var swing *model.CategorySwing
	widest := 0.0
	cats := make([]string, 0, len(byCatMonth))
	for cat := range byCatMonth {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	for _, cat := range cats {
		months := byCatMonth[cat]
		if len(months) < 2 {
			continue
		}
		min, max := math.Inf(1), math.Inf(-1)
		for _, v := range months {
			min = math.Min(min, v)
			max = math.Max(max, v)
		}
		if max-min > widest {
			widest = max - min
			swing = &model.CategorySwing{
				Name: cat,
				Min:  math.Round(min*100) / 100,
				Max:  math.Round(max*100) / 100,
			}
		}
	}
	return swing
}
