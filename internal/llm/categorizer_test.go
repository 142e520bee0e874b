package llm

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shirly8/sift/internal/model"
)

// mockClient scripts responses per call. A nil entry means an error.
type mockClient struct {
	responses []Response
	errs      []error
	calls     int
}

func (m *mockClient) Complete(_ context.Context, _ string, _ float64, _ int) (Response, error) {
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return Response{}, m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return Response{}, fmt.Errorf("unscripted call %d", i)
}

func batchResponse(merchants []string, category string, confidence float64) Response {
	var items []string
	for _, m := range merchants {
		items = append(items, fmt.Sprintf(`{"merchant": %q, "category": %q, "confidence": %v, "reasoning": "test"}`, m, category, confidence))
	}
	return Response{
		Text:  "[" + strings.Join(items, ",") + "]",
		Model: "gpt-4o-mini",
	}
}

func TestCategorizer_BatchSuccess(t *testing.T) {
	merchants := []string{"BLUE BOTTLE", "JOES PIZZA"}
	client := &mockClient{responses: []Response{batchResponse(merchants, "Dining", 0.9)}}
	c := NewCategorizer(client, NewGovernor(0.50, 1.00), 6000)

	results := c.CategorizeMerchants(context.Background(), merchants)
	require.Len(t, results, 2)
	for _, m := range merchants {
		assert.Equal(t, model.CategoryDining, results[m].Category)
		// claimed 0.9 is capped
		assert.InDelta(t, ConfidenceCap, results[m].Confidence, 0.001)
	}
	assert.Equal(t, 1, client.calls)
}

func TestCategorizer_BatchFailureFallsBackToIndividual(t *testing.T) {
	// batch call returns garbage three times (retries), then each merchant
	// gets its own successful call
	client := &mockClient{
		responses: []Response{
			{Text: "not json", Model: "gpt-4o-mini"},
			{Text: `{"category": "Dining", "confidence": 0.6, "reasoning": "coffee"}`, Model: "gpt-4o-mini"},
			{Text: `{"category": "Shopping", "confidence": 0.5, "reasoning": "retail"}`, Model: "gpt-4o-mini"},
		},
	}
	c := NewCategorizer(client, NewGovernor(0.50, 1.00), 6000)

	results := c.CategorizeMerchants(context.Background(), []string{"BLUE BOTTLE", "ZYX RETAIL"})
	require.Len(t, results, 2)
	assert.Equal(t, model.CategoryDining, results["BLUE BOTTLE"].Category)
	assert.InDelta(t, 0.6, results["BLUE BOTTLE"].Confidence, 0.001)
	assert.Equal(t, model.CategoryShopping, results["ZYX RETAIL"].Category)
}

func TestCategorizer_TotalFailureDegradesToUncategorized(t *testing.T) {
	client := &mockClient{
		errs: []error{
			fmt.Errorf("boom"), fmt.Errorf("boom"), fmt.Errorf("boom"), // batch retries
			fmt.Errorf("boom"), fmt.Errorf("boom"), fmt.Errorf("boom"), // merchant 1 retries
			fmt.Errorf("boom"), fmt.Errorf("boom"), fmt.Errorf("boom"), // merchant 2 retries
		},
	}
	c := NewCategorizer(client, NewGovernor(0.50, 1.00), 6000)

	results := c.CategorizeMerchants(context.Background(), []string{"AAA", "BBB"})
	require.Len(t, results, 2)
	for _, m := range []string{"AAA", "BBB"} {
		assert.Equal(t, model.CategoryUncategorized, results[m].Category)
		assert.Zero(t, results[m].Confidence)
	}
}

func TestCategorizer_GovernorAbortLeavesRestUncategorized(t *testing.T) {
	governor := NewGovernor(0.50, 1.00)
	// session already over the abort threshold
	governor.Track(400_000, 0, "claude-sonnet-4-6")
	require.Error(t, governor.Allow())

	client := &mockClient{}
	c := NewCategorizer(client, governor, 6000)

	merchants := make([]string, 15)
	for i := range merchants {
		merchants[i] = fmt.Sprintf("MERCHANT %d", i)
	}
	results := c.CategorizeMerchants(context.Background(), merchants)

	require.Len(t, results, 15)
	for _, m := range merchants {
		assert.Equal(t, model.CategoryUncategorized, results[m].Category)
	}
	assert.Equal(t, 0, client.calls)
}

func TestCategorizer_InvalidCategoryDegrades(t *testing.T) {
	client := &mockClient{
		responses: []Response{batchResponse([]string{"XYZ"}, "Crypto Gambling", 0.6)},
	}
	c := NewCategorizer(client, NewGovernor(0.50, 1.00), 6000)

	results := c.CategorizeMerchants(context.Background(), []string{"XYZ"})
	assert.Equal(t, model.CategoryUncategorized, results["XYZ"].Category)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   Result
		want Result
	}{
		{
			name: "caps confidence",
			in:   Result{Category: "Dining", Confidence: 0.99},
			want: Result{Category: model.CategoryDining, Confidence: ConfidenceCap},
		},
		{
			name: "canonicalizes casing",
			in:   Result{Category: "dining", Confidence: 0.5},
			want: Result{Category: model.CategoryDining, Confidence: 0.5},
		},
		{
			name: "negative confidence floored",
			in:   Result{Category: "Dining", Confidence: -0.3},
			want: Result{Category: model.CategoryDining, Confidence: 0},
		},
		{
			name: "unknown category degrades",
			in:   Result{Category: "Bribes", Confidence: 0.8},
			want: uncategorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitize(tt.in))
		})
	}
}
