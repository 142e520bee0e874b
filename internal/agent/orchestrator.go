package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Shirly8/sift/internal/model"
	"github.com/Shirly8/sift/internal/tools"
)

// toolFunc adapts one statistical tool to the common result union.
type toolFunc func(txns []model.Transaction) *model.ToolResult

var toolRegistry = map[model.ToolName]toolFunc{
	model.ToolTemporalPatterns: func(txns []model.Transaction) *model.ToolResult {
		return &model.ToolResult{Temporal: tools.TemporalPatterns(txns)}
	},
	model.ToolAnomalyDetection: func(txns []model.Transaction) *model.ToolResult {
		return &model.ToolResult{Anomalies: tools.AnomalyDetection(txns)}
	},
	model.ToolSubscriptionHunter: func(txns []model.Transaction) *model.ToolResult {
		return &model.ToolResult{Subscriptions: tools.SubscriptionHunter(txns)}
	},
	model.ToolCorrelationEngine: func(txns []model.Transaction) *model.ToolResult {
		return &model.ToolResult{Correlations: tools.CorrelationEngine(txns)}
	},
	model.ToolSpendingImpact: func(txns []model.Transaction) *model.ToolResult {
		return &model.ToolResult{Impact: tools.SpendingImpact(txns)}
	},
	model.ToolFinancialResilience: func(txns []model.Transaction) *model.ToolResult {
		return &model.ToolResult{Resilience: tools.FinancialResilience(txns)}
	},
}

// Orchestrator runs the full analysis: profile, plan, concurrent tool
// execution, synthesis. It owns no state between runs.
type Orchestrator struct{}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{}
}

// Run analyzes a categorized transaction table, streaming progress events
// and always finishing the stream with exactly one terminal event. The
// transaction slice is treated as immutable; tools run concurrently over it.
func (o *Orchestrator) Run(ctx context.Context, txns []model.Transaction, summary *model.CategorizationSummary, stream *Stream) {
	stream.Step("Profiling your transactions")
	profile := BuildProfile(txns)
	slog.Info("Profile built",
		"transactions", profile.TransactionCount,
		"days_span", profile.DaysSpan,
		"categories", profile.CategoryCount,
		"has_income", profile.HasIncome)

	stream.Step("Planning which analyses apply")
	plan := BuildPlan(profile)
	for _, d := range plan.Decisions {
		slog.Debug("Plan decision", "tool", d.Tool, "enabled", d.Enabled, "reason", d.Reason)
	}

	for _, d := range plan.Decisions {
		if d.Enabled {
			stream.Step(fmt.Sprintf("Running %s", d.Tool))
		}
	}

	results := o.execute(ctx, txns, plan)

	stream.Step("Synthesizing insights")
	insights := Synthesize(results, profile)
	savings := GenerateSavingsPlan(results, txns, profile)

	stream.Finish(&model.AnalysisResult{
		Profile:     profile,
		Plan:        plan,
		Results:     results,
		Insights:    insights,
		SavingsPlan: savings,
		Summary:     summary,
	})
}

// execute runs every admitted tool concurrently and joins before returning.
// A panicking tool is isolated to a nil entry in the result map; the run
// never aborts on a tool failure.
func (o *Orchestrator) execute(ctx context.Context, txns []model.Transaction, plan *model.Plan) map[model.ToolName]*model.ToolResult {
	// Every tool gets its map entry up front, before any goroutine starts;
	// workers only ever overwrite their own key under mu.
	results := make(map[model.ToolName]*model.ToolResult, len(model.ToolNames))
	for _, name := range model.ToolNames {
		results[name] = nil
	}
	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	for _, name := range model.ToolNames {
		if !plan.Enabled(name) {
			continue
		}
		name := name
		run := toolRegistry[name]
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("Tool panicked", "tool", name, "panic", r)
					mu.Lock()
					results[name] = nil
					mu.Unlock()
				}
			}()

			result := run(txns)
			if result != nil && result.Empty() {
				result = nil
			}
			mu.Lock()
			results[name] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}
