// Package market tracks world commodity prices. Prices drift each turn by
// a seeded random walk plus a scarcity pressure term from global deposit
// depletion, bounded by floor and ceiling multiples of the base price.
package market

import (
	"math/rand"

	"github.com/seberin/aftermath/internal/resources"
	"github.com/seberin/aftermath/internal/safemath"
)

// Price bounds relative to base price.
const (
	priceFloorMult   = 0.25
	priceCeilingMult = 6.0
)

// Entry is the market state for one commodity.
type Entry struct {
	Commodity  resources.DepositType `json:"commodity"`
	Price      float64               `json:"price"`
	BasePrice  float64               `json:"base_price"`
	Volatility float64               `json:"volatility"`
}

// Market holds all commodity entries.
type Market struct {
	Entries map[resources.DepositType]*Entry `json:"entries"`
}

// New creates a market with base prices for every tracked commodity.
func New() *Market {
	base := map[resources.DepositType]struct {
		price      float64
		volatility float64
	}{
		resources.DepositOil:        {price: 40, volatility: 0.06},
		resources.DepositUranium:    {price: 120, volatility: 0.09},
		resources.DepositRareEarth:  {price: 80, volatility: 0.07},
		resources.DepositNaturalGas: {price: 25, volatility: 0.08},
	}

	entries := make(map[resources.DepositType]*Entry, len(base))
	for commodity, b := range base {
		entries[commodity] = &Entry{
			Commodity:  commodity,
			Price:      b.price,
			BasePrice:  b.price,
			Volatility: b.volatility,
		}
	}
	return &Market{Entries: entries}
}

// Scarcity returns the depleted fraction of world supply for a commodity
// in [0,1]: 0 with ample reserves, approaching 1 as deposits run dry.
func Scarcity(commodity resources.DepositType, world map[string]*resources.TerritoryResources) float64 {
	total := 0.0
	remaining := 0.0
	for _, tr := range world {
		for _, dep := range tr.Deposits {
			if dep.Type != commodity {
				continue
			}
			total += dep.InitialAmount
			remaining += dep.Amount
		}
	}
	return 1 - safemath.Ratio(remaining, total, 1)
}

// ScarcityReport returns the scarcity fraction for every tracked
// commodity.
func (m *Market) ScarcityReport(world map[string]*resources.TerritoryResources) map[resources.DepositType]float64 {
	report := make(map[resources.DepositType]float64, len(m.Entries))
	for commodity := range m.Entries {
		report[commodity] = Scarcity(commodity, world)
	}
	return report
}

// driftOrder fixes the commodity iteration order so a seeded source
// produces identical price walks on every run.
var driftOrder = []resources.DepositType{
	resources.DepositOil,
	resources.DepositUranium,
	resources.DepositRareEarth,
	resources.DepositNaturalGas,
}

// Drift advances every price one turn: a random walk scaled by the entry's
// volatility plus upward pressure proportional to scarcity, clamped into
// the floor/ceiling band.
func (m *Market) Drift(world map[string]*resources.TerritoryResources, rng *rand.Rand) {
	for _, commodity := range driftOrder {
		e, ok := m.Entries[commodity]
		if !ok {
			continue
		}
		walk := (rng.Float64()*2 - 1) * e.Volatility
		pressure := Scarcity(e.Commodity, world) * 0.04

		price := e.Price * (1 + walk + pressure)
		e.Price = safemath.Clamp(price,
			e.BasePrice*priceFloorMult,
			e.BasePrice*priceCeilingMult,
			e.BasePrice)
	}
}
