package llm

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Shirly8/sift/internal/common"
)

// modelPricing is estimated dollars per million tokens.
type modelPricing struct {
	input  float64
	output float64
}

// pricing covers models the factory can select. Unknown models (notably
// local Ollama) cost nothing.
var pricing = map[string]modelPricing{
	"claude-haiku-4-5-20251001": {input: 0.80, output: 4.00},
	"claude-sonnet-4-6":         {input: 3.00, output: 15.00},
	"gpt-4o-mini":               {input: 0.15, output: 0.60},
	"gpt-4o":                    {input: 2.50, output: 10.00},
}

// Governor accumulates estimated LLM spend for one session and enforces two
// injectable thresholds: a warn threshold logged once, and an abort threshold
// that hard-stops further calls. Aborting is not fatal to a run; remaining
// merchants simply stay uncategorized.
type Governor struct {
	warnThreshold  float64
	abortThreshold float64
	cost           float64
	tokens         int
	warned         bool
	mu             sync.Mutex
}

// Default cost thresholds in estimated dollars.
const (
	DefaultCostWarn  = 0.50
	DefaultCostAbort = 1.00
)

// NewGovernor creates a cost governor with the given dollar thresholds.
// Non-positive values fall back to the defaults.
func NewGovernor(warnThreshold, abortThreshold float64) *Governor {
	if warnThreshold <= 0 {
		warnThreshold = DefaultCostWarn
	}
	if abortThreshold <= 0 {
		abortThreshold = DefaultCostAbort
	}
	return &Governor{warnThreshold: warnThreshold, abortThreshold: abortThreshold}
}

// EstimateCost returns the estimated dollar cost for a call's token usage.
func EstimateCost(inputTokens, outputTokens int, model string) float64 {
	p := pricing[model]
	return float64(inputTokens)/1_000_000*p.input + float64(outputTokens)/1_000_000*p.output
}

// Allow reports whether another call may be made. Returns ErrCostAborted once
// accumulated cost has crossed the abort threshold.
func (g *Governor) Allow() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cost >= g.abortThreshold {
		return fmt.Errorf("%w: $%.2f >= $%.2f", common.ErrCostAborted, g.cost, g.abortThreshold)
	}
	return nil
}

// Track records one call's token usage, logging a warning the first time
// accumulated cost crosses the warn threshold.
func (g *Governor) Track(inputTokens, outputTokens int, model string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.cost += EstimateCost(inputTokens, outputTokens, model)
	g.tokens += inputTokens + outputTokens

	if !g.warned && g.cost >= g.warnThreshold {
		g.warned = true
		slog.Warn("Session LLM cost crossed warn threshold",
			"cost", fmt.Sprintf("$%.2f", g.cost),
			"warn_threshold", fmt.Sprintf("$%.2f", g.warnThreshold))
	}
}

// Cost returns the accumulated estimated dollar cost.
func (g *Governor) Cost() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cost
}

// Tokens returns the accumulated token count.
func (g *Governor) Tokens() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tokens
}
