package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shirly8/sift/internal/common"
	"github.com/Shirly8/sift/internal/model"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDeduplicate(t *testing.T) {
	txns := []model.Transaction{
		{Date: day("2025-01-01"), Amount: 10.00, NormalizedMerchant: "STARBUCKS"},
		{Date: day("2025-01-01"), Amount: 10.00, NormalizedMerchant: "STARBUCKS"},
		{Date: day("2025-01-01"), Amount: 10.01, NormalizedMerchant: "STARBUCKS"},
		{Date: day("2025-01-02"), Amount: 10.00, NormalizedMerchant: "STARBUCKS"},
	}

	out := Deduplicate(txns)
	require.Len(t, out, 3)
	assert.Equal(t, txns[0], out[0])
}

func TestDaysSpan(t *testing.T) {
	tests := []struct {
		name  string
		dates []string
		want  int
	}{
		{name: "empty", dates: nil, want: 0},
		{name: "single day", dates: []string{"2025-01-01", "2025-01-01"}, want: 0},
		{name: "consecutive days", dates: []string{"2025-01-01", "2025-01-02"}, want: 1},
		{name: "unordered input", dates: []string{"2025-03-15", "2025-01-01", "2025-02-10"}, want: 73},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var txns []model.Transaction
			for _, d := range tt.dates {
				txns = append(txns, model.Transaction{Date: day(d)})
			}
			assert.Equal(t, tt.want, DaysSpan(txns))
		})
	}
}

func TestDaysSpan_IgnoresTimeOfDay(t *testing.T) {
	txns := []model.Transaction{
		{Date: time.Date(2025, time.March, 1, 18, 30, 0, 0, time.UTC)},
		{Date: time.Date(2025, time.March, 2, 9, 0, 0, 0, time.UTC)},
	}
	assert.Equal(t, 1, DaysSpan(txns))
}

func TestQualityScore(t *testing.T) {
	t.Run("complete table over long span passes", func(t *testing.T) {
		txns := []model.Transaction{
			{Date: day("2025-01-01"), Amount: 10, NormalizedMerchant: "A"},
			{Date: day("2025-07-01"), Amount: 20, NormalizedMerchant: "B"},
		}
		score, err := QualityScore(txns)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, score, 0.001)
	})

	t.Run("single day with missing merchants is rejected", func(t *testing.T) {
		txns := []model.Transaction{
			{Date: day("2025-01-01"), Amount: 10},
			{Date: day("2025-01-01"), Amount: 0},
		}
		score, err := QualityScore(txns)
		assert.ErrorIs(t, err, common.ErrLowQuality)
		assert.Less(t, score, 0.5)
	})

	t.Run("empty table", func(t *testing.T) {
		_, err := QualityScore(nil)
		assert.ErrorIs(t, err, common.ErrNoTransactions)
	})
}
