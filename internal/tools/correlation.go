package tools

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Shirly8/sift/internal/model"
)

// MinCorrelation is the effect-size floor for reported pairs. Statistical
// significance alone is not interesting at small |r|.
const MinCorrelation = 0.4

// Correction decides which of a set of p-values survive multiple-comparison
// adjustment. Reject returns one bool per input p-value.
type Correction interface {
	Name() string
	Reject(pvalues []float64) []bool
}

// BenjaminiHochberg controls the false discovery rate at level Alpha.
// Less conservative than Bonferroni, which matters when testing every
// category pair from a modest number of months.
type BenjaminiHochberg struct {
	Alpha float64
}

func (bh BenjaminiHochberg) Name() string { return "benjamini-hochberg" }

func (bh BenjaminiHochberg) Reject(pvalues []float64) []bool {
	n := len(pvalues)
	rejected := make([]bool, n)
	if n == 0 {
		return rejected
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return pvalues[order[i]] < pvalues[order[j]] })

	// largest k with p_(k) <= k/n * alpha; all ranks up to k are rejected
	cutoff := -1
	for rank, idx := range order {
		if pvalues[idx] <= float64(rank+1)/float64(n)*bh.Alpha {
			cutoff = rank
		}
	}
	for rank := 0; rank <= cutoff; rank++ {
		rejected[order[rank]] = true
	}
	return rejected
}

// Bonferroni rejects p-values below Alpha divided by the number of tests.
type Bonferroni struct {
	Alpha float64
}

func (b Bonferroni) Name() string { return "bonferroni" }

func (b Bonferroni) Reject(pvalues []float64) []bool {
	rejected := make([]bool, len(pvalues))
	if len(pvalues) == 0 {
		return rejected
	}
	threshold := b.Alpha / float64(len(pvalues))
	for i, p := range pvalues {
		rejected[i] = p < threshold
	}
	return rejected
}

// DefaultCorrection is Benjamini-Hochberg at a 10% false discovery rate.
func DefaultCorrection() Correction {
	return BenjaminiHochberg{Alpha: 0.10}
}

// CorrelationEngine computes Pearson correlations between every pair of
// category monthly-spend series, applies the default multiple-comparison
// correction, and keeps pairs that are both significant and |r| >= 0.4.
func CorrelationEngine(txns []model.Transaction) *model.CorrelationResult {
	return CorrelationEngineWith(txns, DefaultCorrection())
}

// CorrelationEngineWith is CorrelationEngine with an explicit correction policy.
func CorrelationEngineWith(txns []model.Transaction, correction Correction) *model.CorrelationResult {
	pivot := pivotByMonth(txns)
	nMonths := len(pivot.months)
	if nMonths < 3 {
		return nil
	}

	categories := pivot.categories()
	if len(categories) < 3 {
		return nil
	}

	type candidate struct {
		a, b string
		r    float64
		p    float64
	}
	var candidates []candidate
	pairsTested := 0

	for i := 0; i < len(categories); i++ {
		for j := i + 1; j < len(categories); j++ {
			pairsTested++
			a, b := pivot.series[categories[i]], pivot.series[categories[j]]
			if sampleStd(a) < 1e-9 || sampleStd(b) < 1e-9 {
				// near-constant series make r undefined
				continue
			}
			r := stat.Correlation(a, b, nil)
			if math.IsNaN(r) {
				continue
			}
			candidates = append(candidates, candidate{
				a: categories[i],
				b: categories[j],
				r: r,
				p: pearsonPValue(r, nMonths),
			})
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	pvalues := make([]float64, len(candidates))
	for i, c := range candidates {
		pvalues[i] = c.p
	}
	rejected := correction.Reject(pvalues)

	var pairs []model.CategoryPair
	for i, c := range candidates {
		if !rejected[i] || math.Abs(c.r) < MinCorrelation {
			continue
		}
		pairs = append(pairs, model.CategoryPair{
			CategoryA:      c.a,
			CategoryB:      c.b,
			Correlation:    round2(c.r),
			PValue:         c.p,
			Confidence:     correlationTier(c.r, nMonths),
			Interpretation: interpretPair(c.a, c.b, c.r),
		})
	}
	if len(pairs) == 0 {
		return nil
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].Correlation) > math.Abs(pairs[j].Correlation)
	})

	return &model.CorrelationResult{
		Correction:  correction.Name(),
		Pairs:       pairs,
		PairsTested: pairsTested,
		Months:      nMonths,
	}
}

// pearsonPValue is the two-sided p-value for Pearson's r under the null of
// zero correlation, via the t distribution with n-2 degrees of freedom.
func pearsonPValue(r float64, n int) float64 {
	if n <= 2 {
		return 1
	}
	denom := 1 - r*r
	if denom < 1e-12 {
		return 0
	}
	t := math.Abs(r) * math.Sqrt(float64(n-2)/denom)
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	return 2 * (1 - dist.CDF(t))
}

func correlationTier(r float64, nMonths int) model.Tier {
	switch {
	case math.Abs(r) >= 0.7 && nMonths >= 9:
		return model.TierHigh
	case math.Abs(r) >= 0.5:
		return model.TierMedium
	default:
		return model.TierLow
	}
}

func interpretPair(a, b string, r float64) string {
	abs := math.Abs(r)
	strength := "moderate"
	if abs >= 0.7 {
		strength = "strong"
	}
	if r > 0 {
		return fmt.Sprintf("%s and %s spending show a %s tendency to rise and fall together (r=%.2f)", a, b, strength, r)
	}
	return fmt.Sprintf("Higher %s spending shows a %s tendency to coincide with lower %s spending (r=%.2f)", a, strength, b, r)
}
