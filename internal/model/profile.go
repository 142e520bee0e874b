package model

import "time"

// Profile summarizes a transaction table. Computed once per analysis run and
// read-only afterwards; planning derives tool admissibility purely from it.
type Profile struct {
	StartDate            time.Time      `json:"start_date"`
	EndDate              time.Time      `json:"end_date"`
	MonthlyTotals        []MonthTotal   `json:"monthly_totals"`
	SpendingTrend        string         `json:"spending_trend"`
	BiggestSwingCategory *CategorySwing `json:"biggest_swing_category,omitempty"`
	TransactionCount     int            `json:"transaction_count"`
	// DaysSpan is the difference in calendar days between the latest and
	// earliest transaction date. Two transactions on consecutive days span 1
	// day; a single-day table spans 0.
	DaysSpan       int     `json:"days_span"`
	CategoryCount  int     `json:"category_count"`
	HasIncome      bool    `json:"has_income"`
	TotalSpent     float64 `json:"total_spent"`
	MonthlyAverage float64 `json:"monthly_average"`
	MonthlyIncome  float64 `json:"monthly_income"`
	Recent3MoAvg   float64 `json:"recent_3mo_avg"`
}

// MonthTotal is the spending total for one calendar month.
type MonthTotal struct {
	Month string  `json:"month"` // YYYY-MM
	Total float64 `json:"total"`
}

// CategorySwing records the category with the widest monthly min/max spread.
type CategorySwing struct {
	Name string  `json:"name"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// CalendarDays counts whole calendar days between two dates, ignoring the
// time of day. Consecutive days count 1; the same day counts 0.
func CalendarDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours() / 24)
}

// Spending trend labels.
const (
	TrendRising       = "Gradually rising"
	TrendDeclining    = "Gradually declining"
	TrendStable       = "Stable"
	TrendInsufficient = "Insufficient data"
)

// ToolName identifies one statistical tool.
type ToolName string

// The closed set of statistical tools.
const (
	ToolTemporalPatterns    ToolName = "temporal_patterns"
	ToolAnomalyDetection    ToolName = "anomaly_detection"
	ToolSubscriptionHunter  ToolName = "subscription_hunter"
	ToolCorrelationEngine   ToolName = "correlation_engine"
	ToolSpendingImpact      ToolName = "spending_impact"
	ToolFinancialResilience ToolName = "financial_resilience"
)

// ToolNames lists every tool in stable execution order.
var ToolNames = []ToolName{
	ToolTemporalPatterns,
	ToolAnomalyDetection,
	ToolSubscriptionHunter,
	ToolCorrelationEngine,
	ToolSpendingImpact,
	ToolFinancialResilience,
}

// ToolDecision records whether a tool was admitted and, if not, the unmet
// requirement with the observed value.
type ToolDecision struct {
	Tool    ToolName `json:"tool"`
	Reason  string   `json:"reason"`
	Enabled bool     `json:"enabled"`
}

// Plan maps every tool to an admissibility decision, in stable tool order.
type Plan struct {
	Decisions []ToolDecision `json:"decisions"`
}

// Enabled reports whether the named tool was admitted.
func (p *Plan) Enabled(tool ToolName) bool {
	for _, d := range p.Decisions {
		if d.Tool == tool {
			return d.Enabled
		}
	}
	return false
}

// EnabledCount returns the number of admitted tools.
func (p *Plan) EnabledCount() int {
	n := 0
	for _, d := range p.Decisions {
		if d.Enabled {
			n++
		}
	}
	return n
}
