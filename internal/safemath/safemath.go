// Package safemath guards the arithmetic every calculator leans on.
// Every operation takes an explicit fallback and never returns NaN or ±Inf:
// a zero denominator, non-finite input, or non-finite result yields the
// fallback instead of propagating the invalid value.
package safemath

import (
	"math"

	"golang.org/x/exp/constraints"
)

// finite reports whether v is a usable number.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Divide returns num/den, or fallback when either input is non-finite,
// den is zero, or the quotient itself is non-finite.
func Divide(num, den, fallback float64) float64 {
	if !finite(num) || !finite(den) || den == 0 {
		return fallback
	}
	q := num / den
	if !finite(q) {
		return fallback
	}
	return q
}

// Percentage returns part/whole × 100, guarded.
func Percentage(part, whole, fallback float64) float64 {
	return Divide(part*100, whole, fallback)
}

// Ratio returns a/b, guarded. Kept separate from Divide so call sites read
// as intent (ratio of two stocks) rather than raw arithmetic.
func Ratio(a, b, fallback float64) float64 {
	return Divide(a, b, fallback)
}

// PercentageChange returns the percent change from old to new, guarded.
// A zero or non-finite old value yields the fallback.
func PercentageChange(old, new, fallback float64) float64 {
	if !finite(old) || !finite(new) || old == 0 {
		return fallback
	}
	return Divide((new-old)*100, math.Abs(old), fallback)
}

// Clamp bounds v into [lo, hi]. A non-finite v yields the fallback; a
// non-finite bound is ignored on that side.
func Clamp(v, lo, hi, fallback float64) float64 {
	if !finite(v) {
		return fallback
	}
	if finite(lo) && v < lo {
		return lo
	}
	if finite(hi) && v > hi {
		return hi
	}
	return v
}

// ClampOrdered bounds v into [lo, hi] for any ordered type. Integer call
// sites (defense levels, history caps) use this instead of float Clamp.
func ClampOrdered[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Average returns the mean of the finite elements of values, or fallback
// when none remain.
func Average(values []float64, fallback float64) float64 {
	sum := 0.0
	n := 0
	for _, v := range values {
		if !finite(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return fallback
	}
	return Divide(sum, float64(n), fallback)
}

// WeightedAverage returns the weight-scaled mean of values, skipping any
// pair where the value or weight is non-finite or the weight is negative.
// Empty, all-invalid, or zero-total-weight input yields the fallback.
func WeightedAverage(values, weights []float64, fallback float64) float64 {
	if len(values) != len(weights) {
		return fallback
	}
	sum := 0.0
	total := 0.0
	for i, v := range values {
		w := weights[i]
		if !finite(v) || !finite(w) || w < 0 {
			continue
		}
		sum += v * w
		total += w
	}
	if total == 0 {
		return fallback
	}
	return Divide(sum, total, fallback)
}

// Normalize maps v from [lo, hi] into [0, 1], clamped. A degenerate range
// (hi ≤ lo) or non-finite input yields the fallback.
func Normalize(v, lo, hi, fallback float64) float64 {
	if !finite(v) || !finite(lo) || !finite(hi) || hi <= lo {
		return fallback
	}
	n := Divide(v-lo, hi-lo, fallback)
	return Clamp(n, 0, 1, fallback)
}
