// Package nation defines the core world-state records: nations, their
// stockpiles, and the lazily-initialized nested blocks (diplomatic
// influence, trust, reputation, fallout effects) that other calculators
// mutate. Nested blocks start nil and are created by the Ensure
// constructors at the top of every mutator, never by scattered nil checks.
package nation

import (
	"github.com/seberin/aftermath/internal/geo"
	"github.com/seberin/aftermath/internal/reputation"
)

// ID identifies a nation.
type ID string

// CouncilSeat is a nation's standing on the security council.
type CouncilSeat string

const (
	SeatNone      CouncilSeat = ""
	SeatElected   CouncilSeat = "elected"
	SeatPermanent CouncilSeat = "permanent"
)

// Alliance is one bilateral pact. Level grows with treaty depth; level 3+
// alliances contribute to diplomatic income.
type Alliance struct {
	With  ID  `json:"with"`
	Level int `json:"level"`
}

// DIPTransaction is one ledger entry in the influence history.
type DIPTransaction struct {
	Turn         int     `json:"turn"`
	Delta        float64 `json:"delta"`
	Reason       string  `json:"reason"`
	Counterparty ID      `json:"counterparty,omitempty"`
	Balance      float64 `json:"balance"`
}

// DIPIncome is the itemized per-turn influence accrual. Stored as a
// breakdown, not just a total, so consumers can itemize it.
type DIPIncome struct {
	Base       float64 `json:"base"`
	Alliances  float64 `json:"alliances"`
	Council    float64 `json:"council"`
	Mediation  float64 `json:"mediation"`
	PeaceYears float64 `json:"peace_years"`
	Total      float64 `json:"total"`
}

// DiplomaticInfluence is a nation's DIP balance and ledger. Points are
// always clamped into [0, Capacity] by every mutator.
type DiplomaticInfluence struct {
	Points       float64          `json:"points"`
	Capacity     float64          `json:"capacity"`
	Income       DIPIncome        `json:"income"`
	Transactions []DIPTransaction `json:"transactions"`
}

// FalloutEffects is the accumulated fallout-derived state on a nation.
// All four fields decay multiplicatively each turn.
type FalloutEffects struct {
	RadiationSickness float64 `json:"radiation_sickness"`
	Hunger            float64 `json:"hunger"`
	Instability       float64 `json:"instability"`
	RefugeeFlow       float64 `json:"refugee_flow"`
}

// Nation is one country in the world state. Held exclusively by the
// simulation's collection; calculators receive it by pointer and no two
// run against the same nation concurrently.
type Nation struct {
	ID       ID         `json:"id"`
	Name     string     `json:"name"`
	Leader   string     `json:"leader"`
	Position geo.LatLon `json:"position"`

	Population float64 `json:"population"` // millions
	FoodSupply float64 `json:"food_supply"`

	// Military stockpiles. Warheads are keyed by yield in megatons.
	Missiles int         `json:"missiles"`
	Warheads map[int]int `json:"warheads"`
	Defense  float64     `json:"defense"` // interceptor/shelter level, clamped by the damage model

	// Resource stocks.
	Production float64 `json:"production"`
	Uranium    float64 `json:"uranium"`
	Intel      float64 `json:"intel"`

	// Public sentiment scalars.
	Morale   float64 `json:"morale"`
	Opinion  float64 `json:"opinion"`
	Approval float64 `json:"approval"`

	// Radiation mitigation in [0,1] from shelters and stockpiled iodine.
	RadiationMitigation float64 `json:"radiation_mitigation"`

	Alliances  []Alliance  `json:"alliances"`
	Council    CouncilSeat `json:"council"`
	Mediating  bool        `json:"mediating"`
	PeaceTurns int         `json:"peace_turns"`
	TechLevel  int         `json:"tech_level"`

	// Lazily-initialized nested blocks.
	Influence  *DiplomaticInfluence   `json:"influence,omitempty"`
	Reputation *reputation.Reputation `json:"reputation,omitempty"`
	Trust      map[ID]float64         `json:"trust,omitempty"`
	Fallout    *FalloutEffects        `json:"fallout,omitempty"`
}

// DefaultDIPCapacity is the influence cap for a nation without council
// standing upgrades.
const DefaultDIPCapacity = 100

// EnsureInfluence returns the nation's influence block, creating it on
// first touch.
func (n *Nation) EnsureInfluence() *DiplomaticInfluence {
	if n.Influence == nil {
		n.Influence = &DiplomaticInfluence{Capacity: DefaultDIPCapacity}
	}
	return n.Influence
}

// EnsureReputation returns the nation's reputation, creating a neutral one
// on first touch.
func (n *Nation) EnsureReputation() *reputation.Reputation {
	if n.Reputation == nil {
		n.Reputation = reputation.New()
	}
	return n.Reputation
}

// EnsureTrust returns the bilateral trust table, creating it on first touch.
func (n *Nation) EnsureTrust() map[ID]float64 {
	if n.Trust == nil {
		n.Trust = make(map[ID]float64)
	}
	return n.Trust
}

// EnsureFallout returns the fallout-effects block, creating it on first touch.
func (n *Nation) EnsureFallout() *FalloutEffects {
	if n.Fallout == nil {
		n.Fallout = &FalloutEffects{}
	}
	return n.Fallout
}

// TrustToward returns this nation's trust in target, defaulting to the
// neutral midpoint of 50 when no record exists.
func (n *Nation) TrustToward(target ID) float64 {
	if n.Trust == nil {
		return 50
	}
	v, ok := n.Trust[target]
	if !ok {
		return 50
	}
	return v
}
