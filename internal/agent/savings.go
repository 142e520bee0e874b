package agent

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/Shirly8/sift/internal/model"
)

const maxOpportunities = 5

// savingsThresholds scale suggestion aggressiveness to the household's cash
// flow. A tight savings rate gets a larger suggested cut; a healthy one gets
// a lighter touch, and tiny categories fall below the floor entirely.
type savingsThresholds struct {
	cutPct     float64 // suggested reduction share of a category's spend
	minMonthly float64 // ignore categories below this monthly spend
	minAnnual  float64 // drop opportunities below this annual savings
}

func thresholdsFor(profile *model.Profile) savingsThresholds {
	savingsRate := 0.0
	if profile.MonthlyIncome > 0 {
		savingsRate = (profile.MonthlyIncome - profile.MonthlyAverage) / profile.MonthlyIncome
	}
	return savingsThresholds{
		cutPct:     clamp(0.30-savingsRate, 0.10, 0.20),
		minMonthly: clamp(0.02*profile.MonthlyAverage, 10, 50),
		minAnnual:  clamp(0.005*profile.MonthlyAverage*12, 20, 100),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// GenerateSavingsPlan builds savings opportunities from tool output, falling
// back to the raw table when no tool produced usable signals. Construction
// goes through NewSavingsOpportunity, so essential categories are rejected
// structurally; a final text pass drops anything that slipped through with
// essential-sounding advice.
func GenerateSavingsPlan(results map[model.ToolName]*model.ToolResult, txns []model.Transaction, profile *model.Profile) model.SavingsPlan {
	t := thresholdsFor(profile)
	var opportunities []model.SavingsOpportunity
	covered := map[string]struct{}{}

	add := func(category, action, detail string, annual float64) {
		if annual < t.minAnnual {
			return
		}
		opp, err := model.NewSavingsOpportunity(category, action, detail, annual)
		if err != nil {
			slog.Debug("Savings opportunity rejected", "category", category, "error", err)
			return
		}
		opportunities = append(opportunities, opp)
		covered[category] = struct{}{}
	}

	if r := results[model.ToolSubscriptionHunter]; r != nil && r.Subscriptions != nil {
		for _, overlap := range r.Subscriptions.Overlaps {
			add(overlap.Category,
				fmt.Sprintf("Consolidate %d overlapping %s services", overlap.Count, overlap.Category),
				fmt.Sprintf("Keeping only the cheapest saves $%.0f per year", overlap.PotentialSavings),
				overlap.PotentialSavings)
		}
		for _, creep := range r.Subscriptions.PriceCreep {
			add(model.CategorySubscriptions,
				fmt.Sprintf("Renegotiate or replace %s after its %.0f%% price increase", creep.Merchant, creep.TotalIncreasePct),
				fmt.Sprintf("Returning to the original $%.2f saves $%.0f per year", creep.OriginalPrice, creep.AnnualCostIncrease),
				creep.AnnualCostIncrease)
		}
	}

	if r := results[model.ToolSpendingImpact]; r != nil && r.Impact != nil {
		for _, imp := range r.Impact.Impacts {
			if !model.IsDiscretionary(imp.Category) || imp.MonthlyAvg < t.minMonthly {
				continue
			}
			if _, done := covered[imp.Category]; done {
				continue
			}
			monthly := imp.MonthlyAvg * t.cutPct
			add(imp.Category,
				fmt.Sprintf("Set a monthly %s budget of $%.0f", imp.Category, imp.MonthlyAvg-monthly),
				fmt.Sprintf("A %.0f%% trim on your $%.0f monthly average", t.cutPct*100, imp.MonthlyAvg),
				monthly*12)
		}
	}

	// no tool signals at all: fall back to the largest discretionary
	// categories in the raw table
	if len(opportunities) == 0 {
		for _, c := range discretionaryTotals(txns, profile) {
			if c.monthlyAvg < t.minMonthly {
				continue
			}
			monthly := c.monthlyAvg * t.cutPct
			add(c.category,
				fmt.Sprintf("Trim %s spending by %.0f%%", c.category, t.cutPct*100),
				fmt.Sprintf("You average $%.0f per month on %s", c.monthlyAvg, c.category),
				monthly*12)
		}
	}

	valid := opportunities[:0]
	for _, opp := range opportunities {
		if suggestsCuttingEssential(opp.Category + " " + opp.Action + " " + opp.Detail) {
			continue
		}
		valid = append(valid, opp)
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].EstimatedAnnualSavings > valid[j].EstimatedAnnualSavings
	})
	if len(valid) > maxOpportunities {
		valid = valid[:maxOpportunities]
	}

	plan := model.SavingsPlan{Opportunities: valid}
	for _, opp := range valid {
		plan.TotalAnnualSavings += opp.EstimatedAnnualSavings
	}
	return plan
}

type categoryAvg struct {
	category   string
	monthlyAvg float64
}

func discretionaryTotals(txns []model.Transaction, profile *model.Profile) []categoryAvg {
	nMonths := len(profile.MonthlyTotals)
	if nMonths == 0 {
		return nil
	}
	totals := map[string]float64{}
	for _, t := range txns {
		if model.IsDiscretionary(t.Category) {
			totals[t.Category] += t.Amount
		}
	}
	var out []categoryAvg
	for cat, total := range totals {
		out = append(out, categoryAvg{category: cat, monthlyAvg: total / float64(nMonths)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].monthlyAvg > out[j].monthlyAvg })
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}
