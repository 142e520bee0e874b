package model

// ToolResult is the closed union of tool outputs. Exactly one variant is
// non-nil for a tool that ran and found something; a tool that was skipped,
// failed, or found nothing contributes a nil variant. The synthesizer
// switches on the populated variant instead of probing dynamic shapes.
type ToolResult struct {
	Temporal      *TemporalResult       `json:"temporal_patterns,omitempty"`
	Anomalies     *AnomalyResult        `json:"anomaly_detection,omitempty"`
	Subscriptions *SubscriptionResult   `json:"subscription_hunter,omitempty"`
	Correlations  *CorrelationResult    `json:"correlation_engine,omitempty"`
	Impact        *SpendingImpactResult `json:"spending_impact,omitempty"`
	Resilience    *ResilienceResult     `json:"financial_resilience,omitempty"`
}

// Empty reports whether no variant is populated.
func (r ToolResult) Empty() bool {
	return r.Temporal == nil && r.Anomalies == nil && r.Subscriptions == nil &&
		r.Correlations == nil && r.Impact == nil && r.Resilience == nil
}

// TemporalResult bundles payday, weekly and seasonal findings.
type TemporalResult struct {
	Payday   *PaydayPattern   `json:"payday,omitempty"`
	Weekly   *WeeklyPattern   `json:"weekly,omitempty"`
	Seasonal *SeasonalPattern `json:"seasonal,omitempty"`
}

// PaydayPattern describes spending concentration after recurring income deposits.
type PaydayPattern struct {
	PaydayDayOfMonth  int     `json:"payday_day_of_month"`
	CyclesAnalyzed    int     `json:"cycles_analyzed"`
	FirstWeekSpendPct float64 `json:"spending_in_first_7_days_pct"`
	Consistency       float64 `json:"pattern_consistency"`
	Confidence        float64 `json:"confidence"`
}

// WeeklyPattern describes weekend-vs-weekday spending behavior.
type WeeklyPattern struct {
	HighestDay      string  `json:"highest_spending_day"`
	LowestDay       string  `json:"lowest_spending_day"`
	WeekendMultiple float64 `json:"weekend_spending_multiple"`
	WeekdayAvg      float64 `json:"weekday_avg"`
	WeekendAvg      float64 `json:"weekend_avg"`
	Strength        float64 `json:"pattern_strength"`
}

// SeasonalPattern describes month-over-month totals.
type SeasonalPattern struct {
	PeakMonth      string       `json:"peak_month"`
	LowMonth       string       `json:"low_month"`
	Confidence     Tier         `json:"confidence"`
	MonthlyTotals  []MonthTotal `json:"monthly_totals"`
	PeakAmount     float64      `json:"peak_amount"`
	LowAmount      float64      `json:"low_amount"`
	AvgMonthly     float64      `json:"avg_monthly"`
	Strength       float64      `json:"seasonality_strength"`
	MonthsAnalyzed int          `json:"months_analyzed"`
}

// AnomalyResult bundles outliers, spikes and new merchants.
type AnomalyResult struct {
	Outliers     []TransactionOutlier `json:"outliers"`
	Spikes       []SpendingSpike      `json:"spending_spikes"`
	NewMerchants []NewMerchant        `json:"new_merchants"`
}

// TransactionOutlier flags a transaction far above its category's usual range.
type TransactionOutlier struct {
	Merchant       string  `json:"merchant"`
	Date           string  `json:"date"`
	Category       string  `json:"category"`
	Confidence     Tier    `json:"confidence"`
	Amount         float64 `json:"amount"`
	CategoryMedian float64 `json:"category_median"`
	UpperFence     float64 `json:"upper_fence"`
	IQRScore       float64 `json:"iqr_score"`
}

// SpendingSpike flags a category-month total far above its trailing average.
type SpendingSpike struct {
	Category       string  `json:"category"`
	RecentMonth    string  `json:"recent_month"`
	RecentTotal    float64 `json:"recent_month_total"`
	PriorAvg       float64 `json:"prior_avg"`
	SpikePct       float64 `json:"spike_pct"`
	MonthsCompared int     `json:"months_compared"`
}

// NewMerchant flags a merchant first seen within the lookback window.
type NewMerchant struct {
	Merchant    string  `json:"merchant"`
	Category    string  `json:"category"`
	FirstSeen   string  `json:"first_seen"`
	Recurrence  string  `json:"recurrence"`
	Occurrences int     `json:"occurrences"`
	AvgAmount   float64 `json:"avg_amount"`
	HighValue   bool    `json:"high_value,omitempty"`
}

// SubscriptionResult bundles recurring charges, price creep and overlaps.
type SubscriptionResult struct {
	Recurring  []RecurringCharge     `json:"recurring"`
	PriceCreep []PriceCreep          `json:"price_creep"`
	Overlaps   []SubscriptionOverlap `json:"overlaps"`
}

// RecurringCharge is a merchant with consistent amount and cadence.
type RecurringCharge struct {
	Merchant   string  `json:"merchant"`
	Category   string  `json:"category"`
	Frequency  string  `json:"frequency"`
	DayOfMonth int     `json:"day_of_month"`
	Charges    int     `json:"n_charges"`
	Amount     float64 `json:"amount"`
	AnnualCost float64 `json:"annual_cost"`
	Confidence float64 `json:"confidence"`
}

// PriceCreep records a recurring merchant whose charge amount has grown.
type PriceCreep struct {
	Merchant           string       `json:"merchant"`
	History            []MonthTotal `json:"price_history"`
	OriginalPrice      float64      `json:"original_price"`
	CurrentPrice       float64      `json:"current_price"`
	TotalIncreasePct   float64      `json:"total_increase_pct"`
	AnnualCostIncrease float64      `json:"annual_cost_increase"`
}

// SubscriptionOverlap groups two or more recurring charges sharing a category.
type SubscriptionOverlap struct {
	Category         string            `json:"category"`
	Subscriptions    []RecurringCharge `json:"subscriptions"`
	Count            int               `json:"count"`
	CombinedAnnual   float64           `json:"combined_annual"`
	PotentialSavings float64           `json:"potential_savings"`
}

// CorrelationResult holds significant category-pair correlations along with
// how many pairs were tested and the correction applied.
type CorrelationResult struct {
	Correction  string         `json:"correction"`
	Pairs       []CategoryPair `json:"pairs"`
	PairsTested int            `json:"pairs_tested"`
	Months      int            `json:"n_months"`
}

// CategoryPair is one significant pairwise correlation.
type CategoryPair struct {
	CategoryA      string  `json:"category_a"`
	CategoryB      string  `json:"category_b"`
	Interpretation string  `json:"interpretation"`
	Confidence     Tier    `json:"confidence"`
	Correlation    float64 `json:"correlation"`
	PValue         float64 `json:"p_value"`
}

// SpendingImpactResult ranks categories by monthly-spend standard deviation.
// Variance contribution, not regression: regressing total spend on its own
// components fits near-unity by construction and says nothing.
type SpendingImpactResult struct {
	Confidence Tier             `json:"confidence"`
	Impacts    []CategoryImpact `json:"impacts"`
	Months     int              `json:"n_months"`
}

// CategoryImpact is one category's share of month-to-month dollar swing.
type CategoryImpact struct {
	Category   string  `json:"category"`
	ImpactPct  float64 `json:"impact_pct"`
	MonthlyStd float64 `json:"monthly_std"`
	MonthlyAvg float64 `json:"monthly_avg"`
	CV         float64 `json:"cv"`
}

// ResilienceResult summarizes savings runway and a job-loss stress test.
type ResilienceResult struct {
	Runway     *Runway     `json:"runway,omitempty"`
	StressTest *StressTest `json:"stress_test,omitempty"`
}

// Runway estimates how long accumulated savings cover current burn.
type Runway struct {
	MonthsOfRunway   float64 `json:"months_of_runway"`
	MonthlyBurn      float64 `json:"monthly_burn"`
	MonthlyIncome    float64 `json:"monthly_income"`
	NetMonthly       float64 `json:"net_monthly"`
	EstimatedSavings float64 `json:"estimated_savings"`
}

// StressTest is a Monte Carlo job-loss scenario.
type StressTest struct {
	Scenario         string        `json:"scenario"`
	CategoriesToCut  []CategoryCut `json:"categories_to_cut"`
	MonthsOfRunway   float64       `json:"months_of_runway"`
	RunwayP10        float64       `json:"runway_p10"`
	RunwayP90        float64       `json:"runway_p90"`
	EstimatedSavings float64       `json:"estimated_savings"`
	MinimumBudget    float64       `json:"minimum_monthly_budget"`
}

// CategoryCut is a discretionary category the stress test suggests pausing.
type CategoryCut struct {
	Category         string  `json:"category"`
	MonthlyAvg       float64 `json:"monthly_avg"`
	PotentialSavings float64 `json:"potential_savings"`
}
