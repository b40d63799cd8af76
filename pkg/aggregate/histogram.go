package aggregate

import (
	"math"

	"github.com/samber/lo"
)

// Bin is one equal-width histogram bucket [Lower, Upper); the last bin includes Upper.
type Bin struct {
	Lower float64
	Upper float64
	Count int
}

// Histogram buckets values into bins equal-width bins. bins <= 0 picks Sturges' rule.
// All-equal values produce a single bin. NaN and infinities are skipped.
func Histogram(values []float64, bins int) []Bin {
	values = lo.Filter(values, func(v float64, _ int) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) })
	if len(values) == 0 {
		return nil
	}
	low, high := lo.Min(values), lo.Max(values)
	if low == high {
		return []Bin{{Lower: low, Upper: high, Count: len(values)}}
	}
	if bins <= 0 {
		bins = int(math.Ceil(math.Log2(float64(len(values))))) + 1
	}

	width := (high - low) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lower = low + float64(i)*width
		out[i].Upper = low + float64(i+1)*width
	}
	out[bins-1].Upper = high

	for _, v := range values {
		idx := int((v - low) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}
