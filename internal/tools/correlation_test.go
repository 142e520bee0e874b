package tools

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shirly8/sift/internal/model"
)

// correlated spending across four categories: Dining and Shopping rise in
// lockstep, Entertainment alternates, Transport never moves.
func correlationFixture() []model.Transaction {
	start := date(2025, time.January, 10)

	var dining, shopping, entertainment, transport []float64
	for i := 0; i < 12; i++ {
		dining = append(dining, 100+10*float64(i))
		shopping = append(shopping, 200+20*float64(i))
		if i%2 == 0 {
			entertainment = append(entertainment, 50)
		} else {
			entertainment = append(entertainment, 90)
		}
		transport = append(transport, 30)
	}

	var txns []model.Transaction
	txns = append(txns, monthlySeries(start, "RESTO", model.CategoryDining, dining)...)
	txns = append(txns, monthlySeries(start, "MALL", model.CategoryShopping, shopping)...)
	txns = append(txns, monthlySeries(start, "CINEMA", model.CategoryEntertainment, entertainment)...)
	txns = append(txns, monthlySeries(start, "PRESTO", model.CategoryTransport, transport)...)
	return txns
}

func TestCorrelationEngine(t *testing.T) {
	result := CorrelationEngine(correlationFixture())
	require.NotNil(t, result)

	// 4 categories -> 4*3/2 pairs tested, whatever survives correction
	assert.Equal(t, 6, result.PairsTested)
	assert.Equal(t, 12, result.Months)
	assert.Equal(t, "benjamini-hochberg", result.Correction)

	require.NotEmpty(t, result.Pairs)
	top := result.Pairs[0]
	assert.Equal(t, model.CategoryDining, top.CategoryA)
	assert.Equal(t, model.CategoryShopping, top.CategoryB)
	assert.InDelta(t, 1.0, top.Correlation, 0.01)
	assert.Less(t, top.PValue, 0.01)

	// weak pairs stay out even when nominally significant
	for _, pair := range result.Pairs {
		assert.GreaterOrEqual(t, mathAbs(pair.Correlation), MinCorrelation)
	}
}

func mathAbs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestCorrelationEngine_TooFewCategories(t *testing.T) {
	var txns []model.Transaction
	txns = append(txns, monthlySeries(date(2025, time.January, 1), "RESTO", model.CategoryDining, []float64{100, 110, 120, 130})...)
	txns = append(txns, monthlySeries(date(2025, time.January, 1), "MALL", model.CategoryShopping, []float64{200, 220, 240, 260})...)

	assert.Nil(t, CorrelationEngine(txns))
}

func TestCorrelationEngine_TooFewMonths(t *testing.T) {
	var txns []model.Transaction
	for _, cat := range []string{model.CategoryDining, model.CategoryShopping, model.CategoryEntertainment} {
		txns = append(txns, monthlySeries(date(2025, time.January, 1), "M-"+cat, cat, []float64{100, 110})...)
	}
	assert.Nil(t, CorrelationEngine(txns))
}

func TestBenjaminiHochberg(t *testing.T) {
	tests := []struct {
		name    string
		pvalues []float64
		alpha   float64
		want    []bool
	}{
		{
			name:    "all tiny p-values rejected",
			pvalues: []float64{0.001, 0.002, 0.003},
			alpha:   0.10,
			want:    []bool{true, true, true},
		},
		{
			name:    "all large p-values kept",
			pvalues: []float64{0.5, 0.8, 0.9},
			alpha:   0.10,
			want:    []bool{false, false, false},
		},
		{
			name: "step-up includes ranks below the cutoff",
			// ranks: 0.01 <= 1/4*0.2, 0.04 <= 2/4*0.2... 0.14 <= 3/4*0.2?
			// no (0.15 cutoff yes!), 0.30 > 0.2
			pvalues: []float64{0.30, 0.01, 0.14, 0.04},
			alpha:   0.20,
			want:    []bool{false, true, true, true},
		},
		{
			name:    "empty",
			pvalues: nil,
			alpha:   0.10,
			want:    []bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BenjaminiHochberg{Alpha: tt.alpha}.Reject(tt.pvalues)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBonferroni(t *testing.T) {
	// threshold = 0.05 / 4 = 0.0125
	got := Bonferroni{Alpha: 0.05}.Reject([]float64{0.001, 0.0125, 0.012, 0.5})
	assert.Equal(t, []bool{true, false, true, false}, got)
}

func TestCorrelationEngineWith_Bonferroni(t *testing.T) {
	result := CorrelationEngineWith(correlationFixture(), Bonferroni{Alpha: 0.05})
	require.NotNil(t, result)
	assert.Equal(t, "bonferroni", result.Correction)
	assert.Equal(t, 6, result.PairsTested)
}
