// Package engine implements the categorization pipeline: normalized
// merchants flow through the rule table, then the merchant cache, and only
// the remaining unknowns reach the LLM fallback. Classification happens once
// per distinct merchant and is broadcast to every matching transaction, so
// cost is bounded by merchant vocabulary, not transaction volume.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Shirly8/sift/internal/cache"
	"github.com/Shirly8/sift/internal/llm"
	"github.com/Shirly8/sift/internal/model"
	"github.com/Shirly8/sift/internal/rules"
)

// Fallback is the LLM capability the engine needs: classify a merchant list,
// report session cost. Satisfied by llm.Categorizer; tests substitute mocks.
type Fallback interface {
	CategorizeMerchants(ctx context.Context, merchants []string) map[string]llm.Result
}

// Engine runs the three-stage categorization cascade.
type Engine struct {
	rules    *rules.Engine
	cache    *cache.Cache
	fallback Fallback
	governor *llm.Governor
}

// New creates a categorization engine. fallback may be nil, in which case
// unknown merchants stay uncategorized instead of reaching an LLM.
func New(ruleEngine *rules.Engine, merchantCache *cache.Cache, fallback Fallback, governor *llm.Governor) *Engine {
	return &Engine{
		rules:    ruleEngine,
		cache:    merchantCache,
		fallback: fallback,
		governor: governor,
	}
}

// Categorize assigns a category, confidence and source to every transaction.
// Every transaction leaves with exactly one source; LLM and call failures
// degrade to Uncategorized rather than aborting.
func (e *Engine) Categorize(ctx context.Context, txns []model.Transaction) ([]model.Transaction, *model.CategorizationSummary, error) {
	if len(txns) == 0 {
		return txns, nil, fmt.Errorf("no transactions to categorize")
	}

	// distinct merchant set, preserving first-seen order
	seen := make(map[string]struct{})
	var merchants []string
	for _, t := range txns {
		if _, ok := seen[t.NormalizedMerchant]; ok {
			continue
		}
		seen[t.NormalizedMerchant] = struct{}{}
		merchants = append(merchants, t.NormalizedMerchant)
	}

	type resolved struct {
		category   string
		source     model.CategorySource
		confidence float64
	}
	assignments := make(map[string]resolved, len(merchants))

	// stage 1: deterministic rules
	ruleMatches := e.rules.ClassifyBatch(merchants)
	var unresolved []string
	for _, m := range merchants {
		if match := ruleMatches[m]; match != nil {
			assignments[m] = resolved{match.Category, model.SourceRule, match.Confidence}
			continue
		}
		unresolved = append(unresolved, m)
	}

	// stage 2: merchant cache
	var needLLM []string
	cacheHits := 0
	for _, m := range unresolved {
		if entry, ok := e.cache.Lookup(m); ok {
			assignments[m] = resolved{entry.Category, model.SourceCache, entry.Confidence}
			cacheHits++
			continue
		}
		needLLM = append(needLLM, m)
	}
	if cacheHits > 0 {
		slog.Info("Merchant cache hits", "hits", cacheHits, "remaining", len(needLLM))
	}

	// stage 3: LLM fallback for whatever is left
	llmHits := 0
	if len(needLLM) > 0 && e.fallback != nil {
		for m, r := range e.fallback.CategorizeMerchants(ctx, needLLM) {
			if r.Category == model.CategoryUncategorized {
				assignments[m] = resolved{model.CategoryUncategorized, model.SourceUncategorized, 0}
				continue
			}
			assignments[m] = resolved{r.Category, model.SourceLLM, r.Confidence}
			e.cache.SaveLLMResult(m, r.Category, r.Confidence)
			llmHits++
		}
	}

	// broadcast merchant assignments to all transactions
	summary := &model.CategorizationSummary{Total: len(txns)}
	out := make([]model.Transaction, len(txns))
	for i, t := range txns {
		r, ok := assignments[t.NormalizedMerchant]
		if !ok {
			r = resolved{model.CategoryUncategorized, model.SourceUncategorized, 0}
		}
		t.Category = r.category
		t.Confidence = r.confidence
		t.Source = r.source
		out[i] = t

		switch r.source {
		case model.SourceRule:
			summary.RuleHits++
		case model.SourceCache:
			summary.CacheHits++
		case model.SourceLLM:
			summary.LLMHits++
		}
		if t.Categorized() {
			summary.Categorized++
		} else {
			summary.Uncategorized++
		}
	}

	summary.CoveragePct = float64(summary.Categorized) / float64(summary.Total) * 100
	if e.governor != nil {
		summary.LLMCost = e.governor.Cost()
	}

	slog.Info("Categorization complete",
		"total", summary.Total,
		"rule_hits", summary.RuleHits,
		"cache_hits", summary.CacheHits,
		"llm_merchants", llmHits,
		"uncategorized", summary.Uncategorized,
		"coverage_pct", fmt.Sprintf("%.1f", summary.CoveragePct))

	return out, summary, nil
}
