package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Shirly8/sift/internal/model"
)

const maxInsights = 10

// reductionWords are verbs that make a sentence a reduction suggestion.
// An insight pairing one of these with an essential category is dropped.
var reductionWords = []string{"cut", "reduce", "cancel", "trim", "eliminate", "stop spending", "spend less"}

// bannedWords never belong in user-facing insight text. Moralizing framings
// get the whole insight dropped rather than reworded.
var bannedWords = []string{"wasteful", "irresponsible", "frivolous", "splurge", "guilty", "shameful", "bad with money"}

// Synthesize cross-references tool outputs into ranked insights. Every
// insight carries a non-negative annualized dollar impact, zero for purely
// informational findings. The final list is stably sorted by impact
// descending and capped at ten entries.
func Synthesize(results map[model.ToolName]*model.ToolResult, profile *model.Profile) []model.Insight {
	insights := []model.Insight{}

	if r := results[model.ToolSubscriptionHunter]; r != nil && r.Subscriptions != nil {
		insights = append(insights, subscriptionInsights(r.Subscriptions)...)
	}
	if r := results[model.ToolTemporalPatterns]; r != nil && r.Temporal != nil {
		insights = append(insights, temporalInsights(r.Temporal)...)
	}
	if r := results[model.ToolAnomalyDetection]; r != nil && r.Anomalies != nil {
		insights = append(insights, anomalyInsights(r.Anomalies)...)
	}
	if r := results[model.ToolCorrelationEngine]; r != nil && r.Correlations != nil {
		insights = append(insights, correlationInsights(r.Correlations)...)
	}
	if r := results[model.ToolSpendingImpact]; r != nil && r.Impact != nil {
		insights = append(insights, impactInsights(r.Impact, profile)...)
	}
	if r := results[model.ToolFinancialResilience]; r != nil && r.Resilience != nil {
		insights = append(insights, resilienceInsights(r.Resilience)...)
	}

	// annual spend bounds any plausible annualized impact
	impactCeiling := 0.0
	if profile != nil {
		impactCeiling = profile.MonthlyAverage * 12
	}

	valid := insights[:0]
	seen := map[string]struct{}{}
	for _, in := range insights {
		if in.DollarImpact < 0 {
			in.DollarImpact = 0
		}
		if impactCeiling > 0 && in.DollarImpact > impactCeiling {
			in.DollarImpact = impactCeiling
		}
		text := in.Title + " " + in.Description + " " + in.ActionOption
		if suggestsCuttingEssential(text) || containsBannedWord(text) {
			continue
		}
		if _, dup := seen[in.Title]; dup {
			continue
		}
		seen[in.Title] = struct{}{}
		valid = append(valid, in)
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].DollarImpact > valid[j].DollarImpact
	})
	if len(valid) > maxInsights {
		valid = valid[:maxInsights]
	}
	return valid
}

// suggestsCuttingEssential reports whether text pairs a reduction verb with
// an essential category name. Redundant with the construction-time allowlist
// on savings opportunities, but insights carry free text and get the same
// check.
func suggestsCuttingEssential(text string) bool {
	lower := strings.ToLower(text)
	hasVerb := false
	for _, w := range reductionWords {
		if strings.Contains(lower, w) {
			hasVerb = true
			break
		}
	}
	if !hasVerb {
		return false
	}
	for _, cat := range model.EssentialCategories() {
		if strings.Contains(lower, strings.ToLower(cat)) {
			return true
		}
	}
	return false
}

func containsBannedWord(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range bannedWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func subscriptionInsights(s *model.SubscriptionResult) []model.Insight {
	var out []model.Insight

	if len(s.Recurring) > 0 {
		total := 0.0
		for _, r := range s.Recurring {
			total += r.AnnualCost
		}
		top := s.Recurring[0]
		out = append(out, model.Insight{
			Title: fmt.Sprintf("%d recurring charges cost $%.0f per year", len(s.Recurring), total),
			Description: fmt.Sprintf("Your largest is %s at $%.2f %s ($%.0f annually).",
				top.Merchant, top.Amount, top.Frequency, top.AnnualCost),
			ActionOption: "Review each recurring charge and cancel the ones you no longer use",
			Confidence:   model.TierHigh,
			SourceTool:   string(model.ToolSubscriptionHunter),
			DollarImpact: total,
		})
	}

	for _, creep := range s.PriceCreep {
		out = append(out, model.Insight{
			Title: fmt.Sprintf("%s has raised its price %.1f%%", creep.Merchant, creep.TotalIncreasePct),
			Description: fmt.Sprintf("From $%.2f to $%.2f, adding $%.0f per year.",
				creep.OriginalPrice, creep.CurrentPrice, creep.AnnualCostIncrease),
			ActionOption: fmt.Sprintf("Check whether %s still earns its new price", creep.Merchant),
			Confidence:   model.TierHigh,
			SourceTool:   string(model.ToolSubscriptionHunter),
			DollarImpact: creep.AnnualCostIncrease,
		})
	}

	for _, overlap := range s.Overlaps {
		out = append(out, model.Insight{
			Title: fmt.Sprintf("%d overlapping %s subscriptions", overlap.Count, overlap.Category),
			Description: fmt.Sprintf("Combined they cost $%.0f per year; keeping only the cheapest would save $%.0f.",
				overlap.CombinedAnnual, overlap.PotentialSavings),
			ActionOption: fmt.Sprintf("Pick one %s service and drop the rest", overlap.Category),
			Confidence:   model.TierMedium,
			SourceTool:   string(model.ToolSubscriptionHunter),
			DollarImpact: overlap.PotentialSavings,
		})
	}
	return out
}

func temporalInsights(t *model.TemporalResult) []model.Insight {
	var out []model.Insight
	if t.Payday != nil {
		out = append(out, model.Insight{
			Title: fmt.Sprintf("%.0f%% of your spending happens within a week of payday", t.Payday.FirstWeekSpendPct),
			Description: fmt.Sprintf("Across %d pay cycles, spending clusters right after the deposit around day %d.",
				t.Payday.CyclesAnalyzed, t.Payday.PaydayDayOfMonth),
			ActionOption: "Consider moving a fixed transfer to savings on payday, before the spending window",
			Confidence:   tierFromScore(t.Payday.Confidence),
			SourceTool:   string(model.ToolTemporalPatterns),
			DollarImpact: 0,
		})
	}
	if t.Weekly != nil && t.Weekly.WeekendMultiple >= 1.5 {
		out = append(out, model.Insight{
			Title: fmt.Sprintf("Weekend spending runs %.1fx your weekday average", t.Weekly.WeekendMultiple),
			Description: fmt.Sprintf("%s is your highest-spend day at $%.0f average per transaction.",
				t.Weekly.HighestDay, t.Weekly.WeekendAvg),
			Confidence:   model.TierMedium,
			SourceTool:   string(model.ToolTemporalPatterns),
			DollarImpact: 0,
		})
	}
	if t.Seasonal != nil {
		out = append(out, model.Insight{
			Title: fmt.Sprintf("Spending peaks in %s", t.Seasonal.PeakMonth),
			Description: fmt.Sprintf("Your peak month ($%.0f) runs well above your $%.0f monthly average.",
				t.Seasonal.PeakAmount, t.Seasonal.AvgMonthly),
			Confidence:   t.Seasonal.Confidence,
			SourceTool:   string(model.ToolTemporalPatterns),
			DollarImpact: 0,
		})
	}
	return out
}

func anomalyInsights(a *model.AnomalyResult) []model.Insight {
	var out []model.Insight
	if len(a.Spikes) > 0 {
		spike := a.Spikes[0]
		out = append(out, model.Insight{
			Title: fmt.Sprintf("%s jumped %.0f%% in %s", spike.Category, spike.SpikePct, spike.RecentMonth),
			Description: fmt.Sprintf("$%.0f against a $%.0f average over the prior %d months.",
				spike.RecentTotal, spike.PriorAvg, spike.MonthsCompared),
			Confidence:   model.TierMedium,
			SourceTool:   string(model.ToolAnomalyDetection),
			DollarImpact: annualizedExcess(spike.RecentTotal, spike.PriorAvg),
		})
	}
	if len(a.Outliers) > 0 {
		o := a.Outliers[0]
		out = append(out, model.Insight{
			Title: fmt.Sprintf("Unusual $%.0f charge at %s", o.Amount, o.Merchant),
			Description: fmt.Sprintf("Far above the $%.0f median for %s. Worth a second look if you don't recognize it.",
				o.CategoryMedian, o.Category),
			Confidence:   o.Confidence,
			SourceTool:   string(model.ToolAnomalyDetection),
			DollarImpact: 0,
		})
	}
	for _, m := range a.NewMerchants {
		// only weekly/monthly charges read as new commitments
		if m.Recurrence == "one-time" {
			continue
		}
		out = append(out, model.Insight{
			Title: fmt.Sprintf("New %s charge from %s", m.Recurrence, m.Merchant),
			Description: fmt.Sprintf("First seen %s, already %d charges averaging $%.2f. Looks like a new recurring commitment.",
				m.FirstSeen, m.Occurrences, m.AvgAmount),
			ActionOption: fmt.Sprintf("Confirm you meant to start paying %s regularly", m.Merchant),
			Confidence:   model.TierMedium,
			SourceTool:   string(model.ToolAnomalyDetection),
			DollarImpact: annualize(m.AvgAmount, m.Recurrence),
		})
	}
	return out
}

func correlationInsights(c *model.CorrelationResult) []model.Insight {
	var out []model.Insight
	for _, pair := range c.Pairs {
		out = append(out, model.Insight{
			Title:        fmt.Sprintf("%s and %s move together", pair.CategoryA, pair.CategoryB),
			Description:  pair.Interpretation,
			Confidence:   pair.Confidence,
			SourceTool:   string(model.ToolCorrelationEngine),
			DollarImpact: 0,
		})
	}
	return out
}

func impactInsights(imp *model.SpendingImpactResult, profile *model.Profile) []model.Insight {
	if len(imp.Impacts) == 0 {
		return nil
	}
	top := imp.Impacts[0]
	in := model.Insight{
		Title: fmt.Sprintf("%s drives %.0f%% of your month-to-month swing", top.Category, top.ImpactPct),
		Description: fmt.Sprintf("It varies by $%.0f per month around a $%.0f average, more than any other category.",
			top.MonthlyStd, top.MonthlyAvg),
		Confidence:   imp.Confidence,
		SourceTool:   string(model.ToolSpendingImpact),
		DollarImpact: 0,
	}
	if model.IsDiscretionary(top.Category) {
		in.ActionOption = fmt.Sprintf("Smoothing %s with a monthly budget would steady your spending the most", top.Category)
		in.DollarImpact = top.MonthlyStd * 12 * 0.25
	}
	return []model.Insight{in}
}

func resilienceInsights(r *model.ResilienceResult) []model.Insight {
	var out []model.Insight
	if r.Runway != nil {
		out = append(out, model.Insight{
			Title: fmt.Sprintf("Your savings cover about %.1f months of spending", r.Runway.MonthsOfRunway),
			Description: fmt.Sprintf("Net $%.0f per month against a $%.0f monthly burn.",
				r.Runway.NetMonthly, r.Runway.MonthlyBurn),
			Confidence:   model.TierMedium,
			SourceTool:   string(model.ToolFinancialResilience),
			DollarImpact: 0,
		})
	}
	if r.StressTest != nil {
		out = append(out, model.Insight{
			Title: fmt.Sprintf("A job loss would give you %.1f months of runway", r.StressTest.MonthsOfRunway),
			Description: fmt.Sprintf("Simulated range %.1f to %.1f months; your essential floor is $%.0f per month.",
				r.StressTest.RunwayP10, r.StressTest.RunwayP90, r.StressTest.MinimumBudget),
			Confidence:   model.TierMedium,
			SourceTool:   string(model.ToolFinancialResilience),
			DollarImpact: 0,
		})
	}
	return out
}

func tierFromScore(confidence float64) model.Tier {
	switch {
	case confidence >= 0.8:
		return model.TierHigh
	case confidence >= 0.6:
		return model.TierMedium
	default:
		return model.TierLow
	}
}

// annualizedExcess is the yearly cost of a spike persisting, never negative.
func annualizedExcess(recent, prior float64) float64 {
	if recent <= prior {
		return 0
	}
	return (recent - prior) * 12
}

func annualize(amount float64, recurrence string) float64 {
	switch recurrence {
	case "weekly":
		return amount * 52
	case "monthly":
		return amount * 12
	default:
		return 0
	}
}
