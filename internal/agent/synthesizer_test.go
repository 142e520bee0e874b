package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shirly8/sift/internal/model"
)

func richResults() map[model.ToolName]*model.ToolResult {
	return map[model.ToolName]*model.ToolResult{
		model.ToolSubscriptionHunter: {Subscriptions: &model.SubscriptionResult{
			Recurring: []model.RecurringCharge{
				{Merchant: "NETFLIX", Category: model.CategorySubscriptions, Frequency: "monthly", Amount: 22.99, AnnualCost: 275.88, Confidence: 0.95},
				{Merchant: "SPOTIFY", Category: model.CategorySubscriptions, Frequency: "monthly", Amount: 10.99, AnnualCost: 131.88, Confidence: 0.95},
			},
			PriceCreep: []model.PriceCreep{
				{Merchant: "NETFLIX", OriginalPrice: 15.99, CurrentPrice: 22.99, TotalIncreasePct: 43.8, AnnualCostIncrease: 84},
			},
			Overlaps: []model.SubscriptionOverlap{
				{Category: model.CategorySubscriptions, Count: 2, CombinedAnnual: 407.76, PotentialSavings: 131.88},
			},
		}},
		model.ToolAnomalyDetection: {Anomalies: &model.AnomalyResult{
			Spikes: []model.SpendingSpike{
				{Category: model.CategoryShopping, RecentMonth: "2025-06", RecentTotal: 600, PriorAvg: 200, SpikePct: 200, MonthsCompared: 5},
			},
		}},
		model.ToolCorrelationEngine: {Correlations: &model.CorrelationResult{
			Pairs: []model.CategoryPair{
				{CategoryA: model.CategoryDining, CategoryB: model.CategoryShopping, Correlation: 0.82, PValue: 0.001, Confidence: model.TierHigh, Interpretation: "Dining and Shopping rise and fall together (r=0.82)."},
			},
			PairsTested: 6,
			Months:      12,
		}},
	}
}

func TestSynthesize_RanksByDollarImpact(t *testing.T) {
	insights := Synthesize(richResults(), &model.Profile{})
	require.NotEmpty(t, insights)

	for i := 1; i < len(insights); i++ {
		assert.GreaterOrEqual(t, insights[i-1].DollarImpact, insights[i].DollarImpact,
			"insights out of order at %d", i)
	}

	// the persisting spike annualizes to the largest figure
	assert.Equal(t, string(model.ToolAnomalyDetection), insights[0].SourceTool)
	assert.InDelta(t, 4800, insights[0].DollarImpact, 0.01)
	assert.Equal(t, string(model.ToolSubscriptionHunter), insights[1].SourceTool)
	assert.InDelta(t, 407.76, insights[1].DollarImpact, 0.01)
}

func TestSynthesize_CapsAtTen(t *testing.T) {
	results := richResults()
	var pairs []model.CategoryPair
	for i := 0; i < 12; i++ {
		a, b := model.Categories[i], model.Categories[i+1]
		pairs = append(pairs, model.CategoryPair{
			CategoryA:      a,
			CategoryB:      b,
			Correlation:    0.5,
			Interpretation: a + " and " + b + " tend to move together (r=0.50).",
			Confidence:     model.TierMedium,
		})
	}
	results[model.ToolCorrelationEngine].Correlations.Pairs = pairs

	insights := Synthesize(results, &model.Profile{})
	assert.Len(t, insights, 10)
}

func TestSynthesize_NeverNegativeImpact(t *testing.T) {
	results := map[model.ToolName]*model.ToolResult{
		model.ToolAnomalyDetection: {Anomalies: &model.AnomalyResult{
			Spikes: []model.SpendingSpike{
				// a prior average above the recent total annualizes to zero,
				// not a negative figure
				{Category: model.CategoryShopping, RecentMonth: "2025-06", RecentTotal: 100, PriorAvg: 300, SpikePct: 60, MonthsCompared: 4},
			},
		}},
	}

	for _, in := range Synthesize(results, &model.Profile{}) {
		assert.GreaterOrEqual(t, in.DollarImpact, 0.0)
	}
}

func TestSynthesize_EmptyResults(t *testing.T) {
	insights := Synthesize(map[model.ToolName]*model.ToolResult{}, &model.Profile{})
	assert.NotNil(t, insights)
	assert.Empty(t, insights)
}

func TestSynthesize_NilVariantsIgnored(t *testing.T) {
	results := map[model.ToolName]*model.ToolResult{
		model.ToolTemporalPatterns:    nil,
		model.ToolAnomalyDetection:    {},
		model.ToolSubscriptionHunter:  {Subscriptions: nil},
		model.ToolFinancialResilience: nil,
	}
	assert.Empty(t, Synthesize(results, &model.Profile{}))
}

func TestSynthesize_SkipsOneTimeNewMerchants(t *testing.T) {
	results := map[model.ToolName]*model.ToolResult{
		model.ToolAnomalyDetection: {Anomalies: &model.AnomalyResult{
			NewMerchants: []model.NewMerchant{
				{Merchant: "BEST BUY", Category: model.CategoryShopping, FirstSeen: "2025-06-12", Recurrence: "one-time", Occurrences: 1, AvgAmount: 899, HighValue: true},
				{Merchant: "CRUNCH GYM", Category: model.CategoryHealth, FirstSeen: "2025-06-01", Recurrence: "monthly", Occurrences: 3, AvgAmount: 45},
			},
		}},
	}

	insights := Synthesize(results, &model.Profile{MonthlyAverage: 3000})
	require.Len(t, insights, 1)
	assert.Equal(t, "New monthly charge from CRUNCH GYM", insights[0].Title)
	assert.InDelta(t, 540, insights[0].DollarImpact, 0.01)
}

func TestSynthesize_DeduplicatesByTitle(t *testing.T) {
	pair := model.CategoryPair{
		CategoryA:      model.CategoryDining,
		CategoryB:      model.CategoryShopping,
		Correlation:    0.5,
		Interpretation: "Dining and Shopping tend to move together (r=0.50).",
		Confidence:     model.TierMedium,
	}
	results := map[model.ToolName]*model.ToolResult{
		model.ToolCorrelationEngine: {Correlations: &model.CorrelationResult{
			Pairs: []model.CategoryPair{pair, pair, pair},
		}},
	}

	insights := Synthesize(results, &model.Profile{})
	assert.Len(t, insights, 1)
}

func TestSynthesize_CapsImplausibleImpact(t *testing.T) {
	results := map[model.ToolName]*model.ToolResult{
		model.ToolAnomalyDetection: {Anomalies: &model.AnomalyResult{
			Spikes: []model.SpendingSpike{
				// annualizes to $108,000, far past what this household spends
				{Category: model.CategoryShopping, RecentMonth: "2025-06", RecentTotal: 10000, PriorAvg: 1000, SpikePct: 900, MonthsCompared: 5},
			},
		}},
	}
	profile := &model.Profile{MonthlyAverage: 2000}

	insights := Synthesize(results, profile)
	require.NotEmpty(t, insights)
	assert.InDelta(t, 24000, insights[0].DollarImpact, 0.001)
}

func TestContainsBannedWord(t *testing.T) {
	assert.True(t, containsBannedWord("This wasteful habit adds up"))
	assert.True(t, containsBannedWord("A Splurge at the mall"))
	assert.False(t, containsBannedWord("Your largest recurring charge is Netflix"))
}

func TestSuggestsCuttingEssential(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"cut groceries", "You could cut your Groceries budget in half", true},
		{"reduce rent", "Reduce Rent & Housing by moving", true},
		{"cancel insurance", "Cancel your Insurance policy", true},
		{"cut discretionary", "Cut back on Dining out", false},
		{"mention without verb", "Your Groceries spending is stable", false},
		{"verb without essential", "Cancel unused streaming services", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, suggestsCuttingEssential(tt.text))
		})
	}
}

func TestTierFromScore(t *testing.T) {
	assert.Equal(t, model.TierHigh, tierFromScore(0.95))
	assert.Equal(t, model.TierHigh, tierFromScore(0.8))
	assert.Equal(t, model.TierMedium, tierFromScore(0.7))
	assert.Equal(t, model.TierLow, tierFromScore(0.5))
}
