package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMerchant(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "strips point of sale prefix",
			raw:  "POS PURCHASE - STARBUCKS",
			want: "STARBUCKS",
		},
		{
			name: "strips online order code",
			raw:  "AMZN MKTP CA*2K43F8XR3",
			want: "AMZN MKTP CA",
		},
		{
			name: "strips city and province suffix",
			raw:  "TIM HORTONS #2145 TORONTO ON",
			want: "TIM HORTONS",
		},
		{
			name: "collapses punctuation runs",
			raw:  "UBER   *EATS",
			want: "UBER EATS",
		},
		{
			name: "uppercases",
			raw:  "netflix.com",
			want: "NETFLIX COM",
		},
		{
			name: "all noise falls back to uppercased original",
			raw:  "***",
			want: "***",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeMerchant(tt.raw))
		})
	}
}

func TestNormalizeMerchant_Idempotent(t *testing.T) {
	raws := []string{
		"POS PURCHASE STARBUCKS #123 VANCOUVER BC",
		"SQ *BLUE BOTTLE COFFEE",
		"PAYPAL *SPOTIFY 4029357733",
		"SHOP-MX123456",
		"WAL-MART #3454 CALGARY AB",
	}
	for _, raw := range raws {
		once := NormalizeMerchant(raw)
		twice := NormalizeMerchant(once)
		assert.Equal(t, once, twice, "normalizing %q a second time changed the result", raw)
	}
}
