// Package vec holds the float vector helpers shared by the data model.
package vec

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Fill returns a vector of n copies of v.
func Fill(n int, v float64) []float64 {
	out := make([]float64, n)
	if v == 0 {
		return out
	}
	for i := range out {
		out[i] = v
	}
	return out
}

// NaN returns a vector of n missing-value sentinels.
func NaN(n int) []float64 {
	return Fill(n, math.NaN())
}

// Clone copies src; nil stays nil.
func Clone(src []float64) []float64 {
	if src == nil {
		return nil
	}
	out := make([]float64, len(src))
	copy(out, src)
	return out
}

// Same reports whether a and b hold the same values, treating NaN as equal to
// NaN.
func Same(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	return floats.Same(a, b)
}

// Uncertainty computes std .* |dobs| + floor. Either of std or floor may be nil,
// in which case its term is skipped. Non-nil inputs must share len(dobs).
func Uncertainty(std, dobs, floor []float64) []float64 {
	out := make([]float64, len(dobs))
	if std != nil {
		magnitude := make([]float64, len(dobs))
		for i, v := range dobs {
			magnitude[i] = math.Abs(v)
		}
		floats.MulTo(out, std, magnitude)
	}
	if floor != nil {
		floats.Add(out, floor)
	}
	return out
}

// CountNaN returns the number of missing-value sentinels in v.
func CountNaN(v []float64) int {
	n := 0
	for _, x := range v {
		if math.IsNaN(x) {
			n++
		}
	}
	return n
}
