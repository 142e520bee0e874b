package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shirly8/sift/internal/cache"
	"github.com/Shirly8/sift/internal/llm"
	"github.com/Shirly8/sift/internal/model"
	"github.com/Shirly8/sift/internal/rules"
)

type mockFallback struct {
	results map[string]llm.Result
	asked   []string
}

func (m *mockFallback) CategorizeMerchants(_ context.Context, merchants []string) map[string]llm.Result {
	m.asked = append(m.asked, merchants...)
	out := make(map[string]llm.Result, len(merchants))
	for _, merchant := range merchants {
		if r, ok := m.results[merchant]; ok {
			out[merchant] = r
			continue
		}
		out[merchant] = llm.Result{Category: model.CategoryUncategorized}
	}
	return out
}

func txn(merchant string) model.Transaction {
	return model.Transaction{
		Date:               time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Amount:             10,
		RawMerchant:        merchant,
		NormalizedMerchant: merchant,
	}
}

func TestEngine_CascadeOrder(t *testing.T) {
	merchantCache := cache.NewMemory()
	merchantCache.SaveLLMResult("CORNER BAKERY", model.CategoryDining, 0.7)

	fallback := &mockFallback{results: map[string]llm.Result{
		"MYSTERY SHOP": {Category: model.CategoryShopping, Confidence: 0.6},
	}}

	eng := New(rules.New(), merchantCache, fallback, nil)

	txns := []model.Transaction{
		txn("NETFLIX"),       // rule hit
		txn("CORNER BAKERY"), // cache hit
		txn("MYSTERY SHOP"),  // llm hit
		txn("TOTAL ENIGMA"),  // nothing
	}

	out, summary, err := eng.Categorize(context.Background(), txns)
	require.NoError(t, err)
	require.Len(t, out, 4)

	assert.Equal(t, model.SourceRule, out[0].Source)
	assert.Equal(t, model.CategorySubscriptions, out[0].Category)

	assert.Equal(t, model.SourceCache, out[1].Source)
	assert.Equal(t, model.CategoryDining, out[1].Category)

	assert.Equal(t, model.SourceLLM, out[2].Source)
	assert.Equal(t, model.CategoryShopping, out[2].Category)

	assert.Equal(t, model.SourceUncategorized, out[3].Source)
	assert.Equal(t, model.CategoryUncategorized, out[3].Category)
	assert.Zero(t, out[3].Confidence)

	// only merchants missed by rules and cache reach the fallback
	assert.ElementsMatch(t, []string{"MYSTERY SHOP", "TOTAL ENIGMA"}, fallback.asked)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 1, summary.RuleHits)
	assert.Equal(t, 1, summary.CacheHits)
	assert.Equal(t, 1, summary.LLMHits)
	assert.Equal(t, 1, summary.Uncategorized)
	assert.InDelta(t, 75.0, summary.CoveragePct, 0.001)
}

func TestEngine_LLMResultsLearnedByCache(t *testing.T) {
	merchantCache := cache.NewMemory()
	fallback := &mockFallback{results: map[string]llm.Result{
		"MYSTERY SHOP": {Category: model.CategoryShopping, Confidence: 0.6},
	}}
	eng := New(rules.New(), merchantCache, fallback, nil)

	_, _, err := eng.Categorize(context.Background(), []model.Transaction{txn("MYSTERY SHOP")})
	require.NoError(t, err)

	entry, ok := merchantCache.Lookup("MYSTERY SHOP")
	require.True(t, ok)
	assert.Equal(t, model.CategoryShopping, entry.Category)
}

func TestEngine_MerchantBroadcast(t *testing.T) {
	// three transactions at one merchant classify it exactly once
	fallback := &mockFallback{results: map[string]llm.Result{
		"ODD SHOP": {Category: model.CategoryShopping, Confidence: 0.5},
	}}
	eng := New(rules.New(), cache.NewMemory(), fallback, nil)

	txns := []model.Transaction{txn("ODD SHOP"), txn("ODD SHOP"), txn("ODD SHOP")}
	out, summary, err := eng.Categorize(context.Background(), txns)
	require.NoError(t, err)

	assert.Len(t, fallback.asked, 1)
	assert.Equal(t, 3, summary.LLMHits)
	for _, tx := range out {
		assert.Equal(t, model.CategoryShopping, tx.Category)
	}
}

func TestEngine_NoFallback(t *testing.T) {
	eng := New(rules.New(), cache.NewMemory(), nil, nil)

	out, summary, err := eng.Categorize(context.Background(), []model.Transaction{txn("TOTAL ENIGMA")})
	require.NoError(t, err)
	assert.Equal(t, model.CategoryUncategorized, out[0].Category)
	assert.Equal(t, 1, summary.Uncategorized)
}

func TestEngine_EmptyInput(t *testing.T) {
	eng := New(rules.New(), cache.NewMemory(), nil, nil)
	_, _, err := eng.Categorize(context.Background(), nil)
	assert.Error(t, err)
}
