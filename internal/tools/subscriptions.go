package tools

import (
	"sort"
	"strings"

	"github.com/Shirly8/sift/internal/model"
)

// Categories where regular purchases are habits, not subscriptions. A coffee
// every ~30 days with varying amounts is a habit; a true subscription has a
// near-identical amount each cycle.
var habitCategories = map[string]struct{}{
	"dining":    {},
	"groceries": {},
	"delivery":  {},
	"shopping":  {},
	"transport": {},
}

// Categories where holding several recurring services is normal, so shared
// categories are not overlap.
var overlapExempt = map[string]struct{}{
	strings.ToLower(model.CategoryBillsUtilities): {},
	strings.ToLower(model.CategoryInsurance):      {},
	strings.ToLower(model.CategoryHealth):         {},
	strings.ToLower(model.CategoryTransport):      {},
	strings.ToLower(model.CategoryRentHousing):    {},
	strings.ToLower(model.CategoryEducation):      {},
}

// SubscriptionHunter clusters same-merchant charges with matching amounts on
// a consistent cadence, tracks price creep on each recurring merchant, and
// flags category overlap between recurring services.
func SubscriptionHunter(txns []model.Transaction) *model.SubscriptionResult {
	recurring := detectRecurringCharges(txns)
	if len(recurring) == 0 {
		return nil
	}

	var creeps []model.PriceCreep
	for _, r := range recurring {
		if creep := detectPriceCreep(txns, r.Merchant); creep != nil {
			creeps = append(creeps, *creep)
		}
	}

	return &model.SubscriptionResult{
		Recurring:  recurring,
		PriceCreep: creeps,
		Overlaps:   detectSubscriptionOverlap(recurring),
	}
}

// detectRecurringCharges finds merchants with 2+ charges of consistent
// amount (CV <= 0.35, relaxed from 0.20 to catch tiered and usage-based
// subscriptions) at a regular interval.
func detectRecurringCharges(txns []model.Transaction) []model.RecurringCharge {
	var results []model.RecurringCharge

	byMerchant := map[string][]model.Transaction{}
	for _, t := range spendingOnly(txns) {
		byMerchant[t.NormalizedMerchant] = append(byMerchant[t.NormalizedMerchant], t)
	}

	for merchant, group := range byMerchant {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].Date.Before(group[j].Date) })

		amounts := make([]float64, len(group))
		for i, t := range group {
			amounts[i] = t.Amount
		}
		meanAmount := mean(amounts)
		if meanAmount < 3 {
			continue
		}
		amountCV := sampleStd(amounts) / meanAmount
		if amountCV > 0.35 {
			continue
		}

		var gaps []float64
		for i := 1; i < len(group); i++ {
			gaps = append(gaps, group[i].Date.Sub(group[i-1].Date).Hours()/24)
		}
		avgGap := mean(gaps)
		gapStd := sampleStd(gaps)

		var frequency string
		var cyclesPerYear float64
		switch {
		case avgGap >= 25 && avgGap <= 35 && gapStd < 5:
			frequency, cyclesPerYear = "monthly", 12
		case avgGap >= 350 && avgGap <= 380:
			frequency, cyclesPerYear = "yearly", 1
		case avgGap >= 12 && avgGap <= 16:
			frequency, cyclesPerYear = "biweekly", 26
		default:
			continue
		}

		category := group[0].Category
		if _, habit := habitCategories[strings.ToLower(category)]; habit && amountCV > 0.10 {
			// regular timing but inconsistent amounts: a habit purchase
			continue
		}

		// most common charge day of month
		dayCounts := map[int]int{}
		for _, t := range group {
			dayCounts[t.Date.Day()]++
		}
		day, best := 0, 0
		for d, count := range dayCounts {
			if count > best || (count == best && d < day) {
				day, best = d, count
			}
		}

		var confidence float64
		switch {
		case len(group) >= 3 && amountCV <= 0.05:
			confidence = 0.95
		case len(group) >= 3 && amountCV <= 0.10:
			confidence = 0.90
		case len(group) >= 3:
			confidence = 0.80
		default:
			confidence = 0.70
		}

		results = append(results, model.RecurringCharge{
			Merchant:   merchant,
			Category:   category,
			Frequency:  frequency,
			DayOfMonth: day,
			Amount:     round2(meanAmount),
			AnnualCost: round2(meanAmount * cyclesPerYear),
			Confidence: confidence,
			Charges:    len(group),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].AnnualCost > results[j].AnnualCost
	})
	return results
}

// detectPriceCreep compares a recurring merchant's earliest and latest
// monthly charge amounts. Needs 3+ charges; only increases are reported.
func detectPriceCreep(txns []model.Transaction, merchant string) *model.PriceCreep {
	var charges []model.Transaction
	for _, t := range txns {
		if strings.EqualFold(t.NormalizedMerchant, merchant) {
			charges = append(charges, t)
		}
	}
	if len(charges) < 3 {
		return nil
	}
	sort.Slice(charges, func(i, j int) bool { return charges[i].Date.Before(charges[j].Date) })

	// mean charge per month
	byMonth := map[string][]float64{}
	var months []string
	for _, t := range charges {
		key := monthKey(t.Date)
		if _, ok := byMonth[key]; !ok {
			months = append(months, key)
		}
		byMonth[key] = append(byMonth[key], t.Amount)
	}
	sort.Strings(months)

	history := make([]model.MonthTotal, len(months))
	for i, m := range months {
		history[i] = model.MonthTotal{Month: m, Total: round2(mean(byMonth[m]))}
	}

	original := history[0].Total
	current := history[len(history)-1].Total
	if original <= 0 || current <= original {
		return nil
	}

	return &model.PriceCreep{
		Merchant:           merchant,
		History:            history,
		OriginalPrice:      round2(original),
		CurrentPrice:       round2(current),
		TotalIncreasePct:   round1((current - original) / original * 100),
		AnnualCostIncrease: round2((current - original) * 12),
	}
}

// detectSubscriptionOverlap flags categories holding two or more recurring
// services, with a rough savings estimate of keeping only the cheapest.
func detectSubscriptionOverlap(recurring []model.RecurringCharge) []model.SubscriptionOverlap {
	byCategory := map[string][]model.RecurringCharge{}
	for _, r := range recurring {
		if _, exempt := overlapExempt[strings.ToLower(r.Category)]; exempt {
			continue
		}
		byCategory[r.Category] = append(byCategory[r.Category], r)
	}

	var overlaps []model.SubscriptionOverlap
	for category, subs := range byCategory {
		if len(subs) < 2 {
			continue
		}

		combined, cheapest := 0.0, subs[0].AnnualCost
		for _, s := range subs {
			combined += s.AnnualCost
			if s.AnnualCost < cheapest {
				cheapest = s.AnnualCost
			}
		}

		overlaps = append(overlaps, model.SubscriptionOverlap{
			Category:         category,
			Subscriptions:    subs,
			Count:            len(subs),
			CombinedAnnual:   round2(combined),
			PotentialSavings: round2(combined - cheapest),
		})
	}

	sort.SliceStable(overlaps, func(i, j int) bool {
		return overlaps[i].CombinedAnnual > overlaps[j].CombinedAnnual
	})
	return overlaps
}
