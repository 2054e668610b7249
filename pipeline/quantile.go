package pipeline

import (
	"math"
	"sort"
)

// quantile returns the p-th quantile (0 <= p <= 1) of xs using linear
// interpolation at index p*(n-1) over the sorted values, so the median of two
// values is their midpoint. gonum's stat.Quantile cumulant kinds interpolate
// the empirical CDF instead and would shift every fence bound, so this
// convention is computed directly. xs is not modified.
func quantile(xs []float64, p float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}

	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
