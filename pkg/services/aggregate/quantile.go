package aggregate

import (
	"math"
	"sort"
)

// Quantile returns the q-th quantile of values using linear interpolation
// between the two closest ranks, h = (n-1)q. Empty input gives NaN.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 || q < 0 || q > 1 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return quantileSorted(sorted, q)
}

func quantileSorted(sorted []float64, q float64) float64 {
	h := float64(len(sorted)-1) * q
	lo := math.Floor(h)
	hi := math.Ceil(h)
	if lo == hi {
		return sorted[int(lo)]
	}
	return sorted[int(lo)] + (h-lo)*(sorted[int(hi)]-sorted[int(lo)])
}

// Fences are the Tukey bounds Q1 - k*IQR and Q3 + k*IQR.
type Fences struct {
	Q1    float64
	Q3    float64
	IQR   float64
	Lower float64
	Upper float64
}

const tukeyK = 1.5

// NewFences computes the outlier bounds of values. ok is false for empty input.
func NewFences(values []float64) (f Fences, ok bool) {
	if len(values) == 0 {
		return Fences{}, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	f.Q1 = quantileSorted(sorted, 0.25)
	f.Q3 = quantileSorted(sorted, 0.75)
	f.IQR = f.Q3 - f.Q1
	f.Lower = f.Q1 - tukeyK*f.IQR
	f.Upper = f.Q3 + tukeyK*f.IQR
	return f, true
}

// IsOutlier reports whether v lies strictly outside the fences.
func (f Fences) IsOutlier(v float64) bool {
	return v < f.Lower || v > f.Upper
}
