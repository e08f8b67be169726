// Package fallout tracks decaying radiation zones created by nuclear
// strikes and accrues their effects onto nations caught inside them.
package fallout

import (
	"math"

	"github.com/seberin/aftermath/internal/geo"
	"github.com/seberin/aftermath/internal/nation"
)

const (
	// EffectDecayFactor multiplies every fallout-derived nation field each
	// turn. Effects approach zero asymptotically; marks themselves are
	// pruned below PruneIntensity (see DESIGN.md on the zero-floor
	// ambiguity in the source model).
	EffectDecayFactor = 0.98

	// PruneIntensity is the intensity below which a mark is removed.
	PruneIntensity = 0.001

	// DefaultGrowthRate is the per-turn fraction a mark closes toward its
	// target radius and intensity after a strike.
	DefaultGrowthRate = 0.25

	// DefaultDecayDelay is how many turns after the last strike a mark
	// keeps growing before decay begins.
	DefaultDecayDelay = 3

	// DefaultDecayRate is the per-turn multiplicative intensity loss once
	// decay begins.
	DefaultDecayRate = 0.06
)

// Per-turn accrual coefficients, all scaled by mark intensity and
// proximity falloff.
const (
	radiationAccrual   = 0.8
	hungerAccrual      = 0.5
	instabilityAccrual = 0.4
	refugeeFraction    = 0.01  // of population
	attritionFraction  = 0.002 // of population
	foodLossFraction   = 0.01  // of food supply
)

// Mark is one decaying circular fallout zone.
type Mark struct {
	ID              string     `json:"id"`
	Position        geo.LatLon `json:"position"`
	RadiusKm        float64    `json:"radius_km"`
	TargetRadiusKm  float64    `json:"target_radius_km"`
	Intensity       float64    `json:"intensity"`
	TargetIntensity float64    `json:"target_intensity"`
	CreatedTurn     int        `json:"created_turn"`
	UpdatedTurn     int        `json:"updated_turn"`
	LastStrikeTurn  int        `json:"last_strike_turn"`
	GrowthRate      float64    `json:"growth_rate"`
	DecayDelay      int        `json:"decay_delay"`
	DecayRate       float64    `json:"decay_rate"`
}

// NewMark creates a fallout zone for a strike of the given yield. Radius
// and intensity start small and grow toward their targets over the first
// few turns.
func NewMark(id string, pos geo.LatLon, yieldMT float64, turn int) *Mark {
	if yieldMT < 0 {
		yieldMT = 0
	}
	return &Mark{
		ID:              id,
		Position:        pos,
		RadiusKm:        50,
		TargetRadiusKm:  100 + yieldMT*8,
		Intensity:       0.1,
		TargetIntensity: yieldMT / 100 * 0.95,
		CreatedTurn:     turn,
		UpdatedTurn:     turn,
		LastStrikeTurn:  turn,
		GrowthRate:      DefaultGrowthRate,
		DecayDelay:      DefaultDecayDelay,
		DecayRate:       DefaultDecayRate,
	}
}

// Restrike boosts a mark when another warhead lands in the same zone,
// resetting its decay clock.
func (m *Mark) Restrike(yieldMT float64, turn int) {
	if yieldMT < 0 {
		yieldMT = 0
	}
	m.TargetIntensity = math.Min(1.5, m.TargetIntensity+yieldMT/100*0.95)
	m.TargetRadiusKm = math.Max(m.TargetRadiusKm, 100+yieldMT*8)
	m.LastStrikeTurn = turn
	m.UpdatedTurn = turn
}

// Tick advances a mark one turn: growth toward targets while inside the
// decay delay window, multiplicative intensity decay after. Returns false
// once the mark has faded below the prune threshold.
func (m *Mark) Tick(turn int) bool {
	m.UpdatedTurn = turn

	if turn <= m.LastStrikeTurn+m.DecayDelay {
		m.RadiusKm += (m.TargetRadiusKm - m.RadiusKm) * m.GrowthRate
		if m.Intensity < m.TargetIntensity {
			m.Intensity += (m.TargetIntensity - m.Intensity) * m.GrowthRate
		}
		return true
	}

	m.Intensity *= 1 - m.DecayRate
	return m.Intensity >= PruneIntensity
}

// Severity classifies fallout intensity into fixed bands for display.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityElevated Severity = "elevated"
	SeveritySevere   Severity = "severe"
	SeverityDeadly   Severity = "deadly"
)

// SeverityLevel maps an intensity to its band. The cut points are fixed,
// not configurable per call.
func SeverityLevel(intensity float64) Severity {
	switch {
	case !(intensity >= 0.3): // also catches NaN and negatives
		return SeverityNone
	case intensity < 0.6:
		return SeverityElevated
	case intensity < 0.9:
		return SeveritySevere
	default:
		return SeverityDeadly
	}
}

// SeverityTable records the last observed severity per nation for
// read-only consumers.
type SeverityTable map[nation.ID]Severity

// Observe records each nation's worst in-range mark intensity.
func (t SeverityTable) Observe(marks []*Mark, nations []*nation.Nation) {
	for _, n := range nations {
		worst := 0.0
		if n.Position.Valid() {
			for _, m := range marks {
				if geo.DistanceKm(n.Position, m.Position) <= m.RadiusKm && m.Intensity > worst {
					worst = m.Intensity
				}
			}
		}
		t[n.ID] = SeverityLevel(worst)
	}
}

// ApplyEffects accrues radiation sickness, hunger, instability, and
// refugee flow onto every nation inside an active mark, scaled by the
// mark's intensity and the nation's distance from its center. Population
// and food supply drop proportionally, floored at zero. Nations with
// malformed positions are skipped.
func ApplyEffects(marks []*Mark, nations []*nation.Nation) {
	for _, n := range nations {
		if !n.Position.Valid() {
			continue
		}
		for _, m := range marks {
			dist := geo.DistanceKm(n.Position, m.Position)
			if dist > m.RadiusKm || m.RadiusKm <= 0 {
				continue
			}
			falloff := 1 - dist/m.RadiusKm
			dose := m.Intensity * falloff
			if dose <= 0 {
				continue
			}

			fx := n.EnsureFallout()
			fx.RadiationSickness += dose * radiationAccrual
			fx.Hunger += dose * hungerAccrual
			fx.Instability += dose * instabilityAccrual
			fx.RefugeeFlow += n.Population * dose * refugeeFraction

			n.Population = math.Max(0, n.Population-n.Population*dose*attritionFraction)
			n.FoodSupply = math.Max(0, n.FoodSupply-n.FoodSupply*dose*foodLossFraction)
		}
	}
}

// DecayEffects applies the per-turn multiplicative decay to every nation's
// fallout-derived fields. Nations with no fallout block are untouched.
func DecayEffects(nations []*nation.Nation) {
	for _, n := range nations {
		fx := n.Fallout
		if fx == nil {
			continue
		}
		fx.RadiationSickness *= EffectDecayFactor
		fx.Hunger *= EffectDecayFactor
		fx.Instability *= EffectDecayFactor
		fx.RefugeeFlow *= EffectDecayFactor
	}
}
