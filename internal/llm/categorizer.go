package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Shirly8/sift/internal/common"
	"github.com/Shirly8/sift/internal/model"
)

// BatchSize is the number of merchants per LLM call. Small batches keep the
// prompt focused and bound per-call latency.
const BatchSize = 10

// ConfidenceCap bounds every LLM-reported confidence. Provider confidences
// are uncalibrated, so they are never trusted above this value.
const ConfidenceCap = 0.75

// Result is one merchant categorization from the fallback.
type Result struct {
	Category   string
	Confidence float64
	Reasoning  string
}

// uncategorized is the degraded result assigned when every call for a
// merchant has failed. Failures here are never fatal to the run.
var uncategorized = Result{Category: model.CategoryUncategorized, Confidence: 0}

// Categorizer batches still-unclassified merchants through an LLM provider
// with retry, rate limiting, and cost governance.
type Categorizer struct {
	client   Client
	governor *Governor
	limiter  *rateLimiter
	retry    common.RetryOptions
}

// NewCategorizer creates a fallback categorizer around a provider client.
func NewCategorizer(client Client, governor *Governor, requestsPerMinute int) *Categorizer {
	return &Categorizer{
		client:   client,
		governor: governor,
		limiter:  newRateLimiter(requestsPerMinute),
		retry: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
		},
	}
}

// CategorizeMerchants classifies every merchant in the list, in batches of
// BatchSize. A failed batch falls back to per-merchant calls; a failed
// per-merchant call degrades to Uncategorized with confidence 0. Once the
// cost governor aborts, all remaining merchants degrade immediately. The
// returned map always contains every input merchant.
func (c *Categorizer) CategorizeMerchants(ctx context.Context, merchants []string) map[string]Result {
	results := make(map[string]Result, len(merchants))
	if len(merchants) == 0 {
		return results
	}

	batches := (len(merchants) + BatchSize - 1) / BatchSize
	for i := 0; i < len(merchants); i += BatchSize {
		end := i + BatchSize
		if end > len(merchants) {
			end = len(merchants)
		}
		batch := merchants[i:end]

		if err := c.governor.Allow(); err != nil {
			slog.Warn("LLM cost governor aborted, remaining merchants left uncategorized",
				"remaining", len(merchants)-i, "error", err)
			for _, m := range merchants[i:] {
				results[m] = uncategorized
			}
			return results
		}

		slog.Info("LLM categorization batch", "batch", i/BatchSize+1, "batches", batches, "merchants", len(batch))

		batchResults, err := c.categorizeBatch(ctx, batch)
		if err != nil {
			slog.Warn("Batch categorization failed, falling back to individual calls", "error", err)
			batchResults = c.categorizeIndividually(ctx, batch)
		}
		for m, r := range batchResults {
			results[m] = r
		}
	}

	return results
}

// categorizeBatch classifies one batch in a single call. The response must
// cover every merchant; missing merchants are retried individually.
func (c *Categorizer) categorizeBatch(ctx context.Context, merchants []string) (map[string]Result, error) {
	var numbered strings.Builder
	for i, m := range merchants {
		fmt.Fprintf(&numbered, "%d. %s\n", i+1, m)
	}

	prompt := fmt.Sprintf(`Categorize each merchant into exactly one of: %s

Merchants:
%s
Return a JSON array with one object per merchant, in order:
[{"merchant": "...", "category": "...", "confidence": 0.0-1.0, "reasoning": "one sentence"}]`,
		strings.Join(model.Categories, ", "), numbered.String())

	text, err := c.call(ctx, prompt, 150*len(merchants))
	if err != nil {
		return nil, err
	}

	var parsed []struct {
		Merchant   string  `json:"merchant"`
		Category   string  `json:"category"`
		Reasoning  string  `json:"reasoning"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(cleanMarkdownWrapper(text)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse batch response: %w", err)
	}

	byMerchant := make(map[string]Result, len(parsed))
	for _, item := range parsed {
		byMerchant[strings.ToUpper(strings.TrimSpace(item.Merchant))] = sanitize(Result{
			Category:   item.Category,
			Confidence: item.Confidence,
			Reasoning:  item.Reasoning,
		})
	}

	results := make(map[string]Result, len(merchants))
	for _, m := range merchants {
		if r, ok := byMerchant[strings.ToUpper(m)]; ok {
			results[m] = r
			continue
		}
		// the model skipped this merchant; one focused retry
		results[m] = c.categorizeOne(ctx, m)
	}
	return results, nil
}

// categorizeIndividually classifies each merchant with its own call.
func (c *Categorizer) categorizeIndividually(ctx context.Context, merchants []string) map[string]Result {
	results := make(map[string]Result, len(merchants))
	for _, m := range merchants {
		if err := c.governor.Allow(); err != nil {
			results[m] = uncategorized
			continue
		}
		results[m] = c.categorizeOne(ctx, m)
	}
	return results
}

func (c *Categorizer) categorizeOne(ctx context.Context, merchant string) Result {
	prompt := fmt.Sprintf(`Categorize this merchant into exactly one of: %s

Merchant: %s

Return JSON only, no explanation outside JSON:
{"category": "...", "confidence": 0.0-1.0, "reasoning": "one sentence"}`,
		strings.Join(model.Categories, ", "), merchant)

	text, err := c.call(ctx, prompt, 120)
	if err != nil {
		slog.Warn("Merchant categorization failed, degrading to Uncategorized",
			"merchant", merchant, "error", err)
		return uncategorized
	}

	var parsed struct {
		Category   string  `json:"category"`
		Reasoning  string  `json:"reasoning"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(cleanMarkdownWrapper(text)), &parsed); err != nil {
		slog.Warn("Unparseable categorization response, degrading to Uncategorized",
			"merchant", merchant, "error", err)
		return uncategorized
	}

	return sanitize(Result{
		Category:   parsed.Category,
		Confidence: parsed.Confidence,
		Reasoning:  parsed.Reasoning,
	})
}

// call runs one completion with rate limiting, bounded retries, and cost
// tracking.
func (c *Categorizer) call(ctx context.Context, prompt string, maxTokens int) (string, error) {
	var resp Response
	err := common.WithRetry(ctx, func() error {
		if err := c.governor.Allow(); err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}
		if err := c.limiter.wait(ctx); err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}

		var callErr error
		resp, callErr = c.client.Complete(ctx, prompt, 0.0, maxTokens)
		return callErr
	}, c.retry)
	if err != nil {
		if errors.Is(err, common.ErrCostAborted) {
			return "", err
		}
		return "", fmt.Errorf("llm call failed: %w", err)
	}

	c.governor.Track(resp.InputTokens, resp.OutputTokens, resp.Model)
	return resp.Text, nil
}

// sanitize validates the category against the known set and caps confidence.
func sanitize(r Result) Result {
	if !model.ValidCategory(r.Category) {
		return uncategorized
	}
	// canonicalize the category casing
	for _, c := range model.Categories {
		if strings.EqualFold(c, r.Category) {
			r.Category = c
			break
		}
	}
	if r.Confidence > ConfidenceCap {
		r.Confidence = ConfidenceCap
	}
	if r.Confidence < 0 {
		r.Confidence = 0
	}
	return r
}
