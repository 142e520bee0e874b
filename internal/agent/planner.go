package agent

import (
	"fmt"

	"github.com/Shirly8/sift/internal/model"
)

// Admissibility thresholds. Planning is a pure function of the profile.
const (
	minDaysTemporal      = 90
	minTxnsSubscriptions = 100
	minDaysImpact        = 180
	minCatsImpact        = 5
	minDaysCorrelation   = 90
	minCatsCorrelation   = 3
)

// BuildPlan decides which tools run, recording an explainable reason for
// every decision. Anomaly detection always runs; it is the safety net when
// no other tool is admissible.
func BuildPlan(p *model.Profile) *model.Plan {
	plan := &model.Plan{}
	for _, tool := range model.ToolNames {
		plan.Decisions = append(plan.Decisions, decide(tool, p))
	}
	return plan
}

func decide(tool model.ToolName, p *model.Profile) model.ToolDecision {
	d := model.ToolDecision{Tool: tool, Enabled: true}
	switch tool {
	case model.ToolTemporalPatterns:
		if p.DaysSpan < minDaysTemporal {
			return skip(tool, "needs %d+ days of history, have %d", minDaysTemporal, p.DaysSpan)
		}
		d.Reason = fmt.Sprintf("%d days of history", p.DaysSpan)

	case model.ToolAnomalyDetection:
		d.Reason = "always runs"

	case model.ToolSubscriptionHunter:
		if p.TransactionCount < minTxnsSubscriptions {
			return skip(tool, "needs %d+ transactions, have %d", minTxnsSubscriptions, p.TransactionCount)
		}
		d.Reason = fmt.Sprintf("%d transactions", p.TransactionCount)

	case model.ToolSpendingImpact:
		if p.DaysSpan < minDaysImpact {
			return skip(tool, "needs %d+ days of history, have %d", minDaysImpact, p.DaysSpan)
		}
		if p.CategoryCount < minCatsImpact {
			return skip(tool, "needs %d+ categories, have %d", minCatsImpact, p.CategoryCount)
		}
		d.Reason = fmt.Sprintf("%d days, %d categories", p.DaysSpan, p.CategoryCount)

	case model.ToolCorrelationEngine, model.ToolFinancialResilience:
		if p.DaysSpan < minDaysCorrelation {
			return skip(tool, "needs %d+ days of history, have %d", minDaysCorrelation, p.DaysSpan)
		}
		if p.CategoryCount < minCatsCorrelation {
			return skip(tool, "needs %d+ categories, have %d", minCatsCorrelation, p.CategoryCount)
		}
		d.Reason = fmt.Sprintf("%d days, %d categories", p.DaysSpan, p.CategoryCount)
	}
	return d
}

func skip(tool model.ToolName, format string, args ...any) model.ToolDecision {
	return model.ToolDecision{
		Tool:    tool,
		Enabled: false,
		Reason:  fmt.Sprintf(format, args...),
	}
}
