package safemath

import (
	"math"
	"testing"
)

func TestDivide(t *testing.T) {
	tests := []struct {
		name     string
		num, den float64
		fallback float64
		want     float64
	}{
		{name: "plain", num: 10, den: 4, fallback: -1, want: 2.5},
		{name: "zero denominator", num: 10, den: 0, fallback: -1, want: -1},
		{name: "negative zero denominator", num: 10, den: math.Copysign(0, -1), fallback: -1, want: -1},
		{name: "nan numerator", num: math.NaN(), den: 2, fallback: -1, want: -1},
		{name: "nan denominator", num: 2, den: math.NaN(), fallback: -1, want: -1},
		{name: "inf numerator", num: math.Inf(1), den: 2, fallback: -1, want: -1},
		{name: "negative inf denominator", num: 2, den: math.Inf(-1), fallback: -1, want: -1},
		{name: "zero over nonzero", num: 0, den: 5, fallback: -1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Divide(tt.num, tt.den, tt.fallback)
			if got != tt.want {
				t.Fatalf("Divide(%v, %v, %v) = %v, want %v", tt.num, tt.den, tt.fallback, got, tt.want)
			}
		})
	}
}

func TestDivideNeverNonFinite(t *testing.T) {
	inputs := []float64{0, math.Copysign(0, -1), 1, -1, math.MaxFloat64, -math.MaxFloat64, math.NaN(), math.Inf(1), math.Inf(-1)}
	for _, num := range inputs {
		for _, den := range inputs {
			got := Divide(num, den, 7)
			if math.IsNaN(got) || math.IsInf(got, 0) {
				t.Fatalf("Divide(%v, %v, 7) returned non-finite %v", num, den, got)
			}
		}
	}
}

func TestPercentage(t *testing.T) {
	if got := Percentage(25, 200, -1); got != 12.5 {
		t.Fatalf("expected 12.5, got %v", got)
	}
	if got := Percentage(25, 0, -1); got != -1 {
		t.Fatalf("expected fallback on zero whole, got %v", got)
	}
}

func TestPercentageChange(t *testing.T) {
	tests := []struct {
		name     string
		old, new float64
		want     float64
	}{
		{name: "growth", old: 100, new: 150, want: 50},
		{name: "decline", old: 100, new: 75, want: -25},
		{name: "from negative", old: -50, new: -25, want: 50},
		{name: "zero old", old: 0, new: 10, want: -1},
		{name: "nan new", old: 10, new: math.NaN(), want: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PercentageChange(tt.old, tt.new, -1); got != tt.want {
				t.Fatalf("PercentageChange(%v, %v) = %v, want %v", tt.old, tt.new, got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 10, -1); got != 5 {
		t.Fatalf("expected 5, got %v", got)
	}
	if got := Clamp(-3, 0, 10, -1); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := Clamp(42, 0, 10, -1); got != 10 {
		t.Fatalf("expected 10, got %v", got)
	}
	if got := Clamp(math.NaN(), 0, 10, -1); got != -1 {
		t.Fatalf("expected fallback for NaN, got %v", got)
	}
	if got := Clamp(math.Inf(1), 0, 10, -1); got != -1 {
		t.Fatalf("expected fallback for +Inf, got %v", got)
	}
}

func TestClampOrdered(t *testing.T) {
	if got := ClampOrdered(35, 0, 30); got != 30 {
		t.Fatalf("expected 30, got %d", got)
	}
	if got := ClampOrdered(-2, 0, 30); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestAverage(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "plain", values: []float64{2, 4, 6}, want: 4},
		{name: "filters nan", values: []float64{2, math.NaN(), 4}, want: 3},
		{name: "filters inf", values: []float64{math.Inf(1), 10}, want: 10},
		{name: "empty", values: nil, want: -1},
		{name: "all invalid", values: []float64{math.NaN(), math.Inf(-1)}, want: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Average(tt.values, -1); got != tt.want {
				t.Fatalf("Average(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestWeightedAverage(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		weights []float64
		want    float64
	}{
		{name: "plain", values: []float64{10, 20}, weights: []float64{1, 3}, want: 17.5},
		{name: "skips nan value", values: []float64{math.NaN(), 20}, weights: []float64{1, 1}, want: 20},
		{name: "skips inf weight", values: []float64{10, 20}, weights: []float64{math.Inf(1), 1}, want: 20},
		{name: "skips negative weight", values: []float64{10, 20}, weights: []float64{-1, 1}, want: 20},
		{name: "mismatched lengths", values: []float64{10}, weights: []float64{1, 2}, want: -1},
		{name: "zero total weight", values: []float64{10, 20}, weights: []float64{0, 0}, want: -1},
		{name: "empty", values: nil, weights: nil, want: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeightedAverage(tt.values, tt.weights, -1); got != tt.want {
				t.Fatalf("WeightedAverage(%v, %v) = %v, want %v", tt.values, tt.weights, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		v, lo, hi  float64
		want       float64
	}{
		{name: "midpoint", v: 5, lo: 0, hi: 10, want: 0.5},
		{name: "below range clamps", v: -5, lo: 0, hi: 10, want: 0},
		{name: "above range clamps", v: 15, lo: 0, hi: 10, want: 1},
		{name: "degenerate range", v: 5, lo: 10, hi: 10, want: -1},
		{name: "inverted range", v: 5, lo: 10, hi: 0, want: -1},
		{name: "nan input", v: math.NaN(), lo: 0, hi: 10, want: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.v, tt.lo, tt.hi, -1); got != tt.want {
				t.Fatalf("Normalize(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}
