package scale

import (
	"math"
	"sort"
)

// Quantile maps a continuous value onto one of a fixed set of outputs so that
// each output receives an equal share of the sorted domain.
type Quantile[T any] struct {
	domain     []float64
	outputs    []T
	thresholds []float64
}

// NewQuantile builds a quantile scale. NaN and infinite domain values are
// dropped; the domain is copied and sorted.
func NewQuantile[T any](domain []float64, outputs []T) *Quantile[T] {
	sorted := make([]float64, 0, len(domain))
	for _, v := range domain {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			sorted = append(sorted, v)
		}
	}
	sort.Float64s(sorted)

	q := &Quantile[T]{domain: sorted, outputs: append([]T(nil), outputs...)}
	if len(sorted) == 0 || len(outputs) == 0 {
		return q
	}

	n := len(outputs)
	q.thresholds = make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		q.thresholds = append(q.thresholds, QuantileSorted(sorted, float64(i)/float64(n)))
	}
	return q
}

// Scale returns the output for x. ok is false for NaN input or an empty domain.
func (q *Quantile[T]) Scale(x float64) (out T, ok bool) {
	if math.IsNaN(x) || len(q.domain) == 0 || len(q.outputs) == 0 {
		return out, false
	}
	return q.outputs[bisectRight(q.thresholds, x)], true
}

// Thresholds returns the n-1 bucket boundaries, non-decreasing.
func (q *Quantile[T]) Thresholds() []float64 {
	return append([]float64(nil), q.thresholds...)
}

// Domain returns the sorted domain.
func (q *Quantile[T]) Domain() []float64 {
	return append([]float64(nil), q.domain...)
}

// Outputs returns the discrete outputs in ascending order.
func (q *Quantile[T]) Outputs() []T {
	return append([]T(nil), q.outputs...)
}

// QuantileSorted returns the p-quantile of an ascending slice using linear
// interpolation between closest ranks (R-7).
func QuantileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 || n < 2 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	i := float64(n-1) * p
	i0 := int(math.Floor(i))
	v0 := sorted[i0]
	v1 := sorted[i0+1]
	return v0 + (v1-v0)*(i-float64(i0))
}

// bisectRight returns the insertion index for x after any equal entries.
func bisectRight(a []float64, x float64) int {
	return sort.Search(len(a), func(i int) bool { return a[i] > x })
}
