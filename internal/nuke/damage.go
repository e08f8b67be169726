// Package nuke models warhead damage: a direct-blast pass followed by a
// secondary fallout pass. Population figures are in millions and are
// monotonically non-increasing across both stages.
package nuke

import (
	"math"

	"github.com/seberin/aftermath/internal/safemath"
)

const (
	// MaxDefense is the hard cap on a nation's defense level.
	MaxDefense = 30

	// defenseSoftCap shapes the mitigation curve: mitigation = d/(d+20),
	// so even maximum defense never fully negates damage.
	defenseSoftCap = 20

	// falloutYieldFraction converts warhead yield to initial fallout
	// intensity: intensity = (yield/100) × 0.95.
	falloutYieldFraction = 0.95

	// falloutDamageScale converts fallout intensity to casualties.
	falloutDamageScale = 3
)

// ClampDefense bounds a defense level into [0, MaxDefense]. Missing or
// non-finite values count as undefended.
func ClampDefense(defense float64) float64 {
	return safemath.Clamp(defense, 0, MaxDefense, 0)
}

// DefenseDamageMultiplier returns the fraction of incoming damage that
// penetrates the given defense level. Always in [0, 1].
func DefenseDamageMultiplier(defense float64) float64 {
	d := ClampDefense(defense)
	mitigation := safemath.Divide(d, d+defenseSoftCap, 0)
	return safemath.Clamp(1-mitigation, 0, 1, 1)
}

// DirectDamage returns blast casualties (millions) for a warhead yield in
// megatons against the given defense level.
func DirectDamage(yieldMT, defense float64) float64 {
	if !(yieldMT > 0) {
		return 0
	}
	return yieldMT * DefenseDamageMultiplier(defense)
}

// FalloutDamage converts a fallout intensity and a radiation mitigation
// fraction into casualties, floored at zero.
func FalloutDamage(intensity, radiationMitigation float64) float64 {
	if !(intensity > 0) {
		return 0
	}
	mit := safemath.Clamp(radiationMitigation, 0, 1, 0)
	return math.Max(0, intensity*falloutDamageScale*(1-mit))
}

// StrikeResult reports the two-stage outcome of a nuclear strike. All four
// quantities are ≥ 0 and FinalPopulation ≤ PostBlastPopulation ≤ the input
// population.
type StrikeResult struct {
	DirectDamage        float64 `json:"direct_damage"`
	PostBlastPopulation float64 `json:"post_blast_population"`
	FalloutIntensity    float64 `json:"fallout_intensity"`
	FalloutDamage       float64 `json:"fallout_damage"`
	FinalPopulation     float64 `json:"final_population"`
}

// SimulateStrike runs the blast stage then the fallout stage against a
// population. Fallout damage is capped so it cannot exceed the remaining
// population.
func SimulateStrike(yieldMT, defense, population, radiationMitigation float64) StrikeResult {
	if !(population > 0) {
		population = 0
	}

	direct := math.Min(DirectDamage(yieldMT, defense), population)
	postBlast := math.Max(0, population-direct)

	intensity := 0.0
	if yieldMT > 0 {
		intensity = yieldMT / 100 * falloutYieldFraction
	}
	fallout := math.Min(FalloutDamage(intensity, radiationMitigation), postBlast)
	final := math.Max(0, postBlast-fallout)

	return StrikeResult{
		DirectDamage:        direct,
		PostBlastPopulation: postBlast,
		FalloutIntensity:    intensity,
		FalloutDamage:       fallout,
		FinalPopulation:     final,
	}
}
