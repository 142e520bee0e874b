package model

import "fmt"

// Tier is a rule-assigned confidence tier for insights and findings.
type Tier string

// Confidence tiers.
const (
	TierHigh   Tier = "HIGH"
	TierMedium Tier = "MEDIUM"
	TierLow    Tier = "LOW"
)

// Insight is one ranked, dollar-quantified finding. Immutable once created;
// DollarImpact is annualized and never negative (informational insights use 0).
type Insight struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	ActionOption string  `json:"action_option,omitempty"`
	Confidence   Tier    `json:"confidence"`
	SourceTool   string  `json:"source_tool"`
	DollarImpact float64 `json:"dollar_impact"`
}

// SavingsOpportunity is one actionable reduction in a discretionary category.
// Construct only via NewSavingsOpportunity, which rejects essential and
// non-discretionary categories outright.
type SavingsOpportunity struct {
	Category               string  `json:"category"`
	Action                 string  `json:"action"`
	Detail                 string  `json:"detail,omitempty"`
	EstimatedAnnualSavings float64 `json:"estimated_annual_savings"`
}

// NewSavingsOpportunity builds an opportunity, enforcing the discretionary
// allowlist at construction. Essential categories can never produce one.
func NewSavingsOpportunity(category, action, detail string, annualSavings float64) (SavingsOpportunity, error) {
	if IsEssential(category) {
		return SavingsOpportunity{}, fmt.Errorf("category %q is essential and cannot appear in a savings plan", category)
	}
	if !IsDiscretionary(category) {
		return SavingsOpportunity{}, fmt.Errorf("category %q is not in the discretionary allowlist", category)
	}
	if annualSavings < 0 {
		return SavingsOpportunity{}, fmt.Errorf("negative savings estimate %.2f", annualSavings)
	}
	return SavingsOpportunity{
		Category:               category,
		Action:                 action,
		Detail:                 detail,
		EstimatedAnnualSavings: annualSavings,
	}, nil
}

// SavingsPlan aggregates opportunities with their combined annual total.
type SavingsPlan struct {
	Opportunities      []SavingsOpportunity `json:"opportunities"`
	TotalAnnualSavings float64              `json:"total_annual_savings"`
}

// CategorizationSummary reports pipeline coverage after categorization.
type CategorizationSummary struct {
	Total         int     `json:"total"`
	Categorized   int     `json:"categorized"`
	Uncategorized int     `json:"uncategorized"`
	RuleHits      int     `json:"rule_hits"`
	CacheHits     int     `json:"cache_hits"`
	LLMHits       int     `json:"llm_hits"`
	CoveragePct   float64 `json:"coverage_pct"`
	LLMCost       float64 `json:"llm_cost"`
}

// AnalysisResult is the terminal payload of one analysis run.
type AnalysisResult struct {
	Profile     *Profile                 `json:"profile"`
	Plan        *Plan                    `json:"plan"`
	Results     map[ToolName]*ToolResult `json:"results"`
	Insights    []Insight                `json:"insights"`
	SavingsPlan SavingsPlan              `json:"savings_plan"`
	Summary     *CategorizationSummary   `json:"summary,omitempty"`
}
