// Package worldgen generates the territory map and its resource deposits
// deterministically from a seed, using layered simplex noise for deposit
// presence and richness.
package worldgen

import (
	"fmt"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/seberin/aftermath/internal/geo"
	"github.com/seberin/aftermath/internal/nation"
	"github.com/seberin/aftermath/internal/resources"
)

// Territory is one controllable region on the globe.
type Territory struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Position   geo.LatLon `json:"position"`
	Controller nation.ID  `json:"controller,omitempty"`
}

// GenConfig holds territory generation parameters.
type GenConfig struct {
	Seed      int64
	LatStep   float64 // graticule spacing in degrees
	LonStep   float64
	LandBias  float64 // presence-noise threshold for a territory to exist
	OreCutoff float64 // presence-noise threshold for a deposit to exist
}

// DefaultGenConfig returns the standard world layout.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		LatStep:   20,
		LonStep:   30,
		LandBias:  0.45,
		OreCutoff: 0.55,
	}
}

// Deposit noise layers use fixed seed offsets so each resource field is
// independent but reproducible.
var depositLayers = []struct {
	kind       resources.DepositType
	seedOffset int64
	baseAmount float64
	baseRate   float64
}{
	{resources.DepositOil, 11, 120, 0.08},
	{resources.DepositUranium, 13, 40, 0.05},
	{resources.DepositRareEarth, 17, 60, 0.06},
	{resources.DepositNaturalGas, 19, 90, 0.07},
}

var nameParts = struct {
	first []string
	last  []string
}{
	first: []string{"Kara", "Vost", "Bel", "Tyr", "Nor", "Ost", "Zal", "Mir", "Dag", "Hol"},
	last:  []string{"mark", "grad", "land", "heim", "stan", "ovia", "burg", "dal", "via", "gard"},
}

// Generate builds the territory list and its resource map from a seed.
// The same seed always yields the same world.
func Generate(cfg GenConfig) ([]*Territory, map[string]*resources.TerritoryResources) {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	presence := opensimplex.NewNormalized(seed)
	richness := opensimplex.NewNormalized(seed + 7)
	rng := rand.New(rand.NewSource(seed + 31))

	var territories []*Territory
	resMap := make(map[string]*resources.TerritoryResources)

	idx := 0
	for lat := -70.0; lat <= 70.0; lat += cfg.LatStep {
		for lon := -180.0; lon < 180.0; lon += cfg.LonStep {
			// Sample in a compressed coordinate space so neighboring
			// territories get correlated but distinct noise.
			nx, ny := lon/60, lat/60
			if presence.Eval2(nx, ny) < cfg.LandBias {
				continue
			}

			idx++
			t := &Territory{
				ID:       fmt.Sprintf("t%03d", idx),
				Name:     nameParts.first[rng.Intn(len(nameParts.first))] + nameParts.last[rng.Intn(len(nameParts.last))],
				Position: geo.LatLon{Lat: lat, Lon: lon},
			}
			territories = append(territories, t)

			tr := &resources.TerritoryResources{TerritoryID: t.ID}
			for _, layer := range depositLayers {
				layerNoise := opensimplex.NewNormalized(seed + layer.seedOffset)
				if layerNoise.Eval2(nx, ny) < cfg.OreCutoff {
					continue
				}
				rich := richness.Eval2(nx+float64(layer.seedOffset), ny)
				amount := layer.baseAmount * (0.5 + rich)
				tr.Deposits = append(tr.Deposits, &resources.Deposit{
					Type:          layer.kind,
					Amount:        amount,
					InitialAmount: amount,
					Richness:      rich,
					DepletionRate: layer.baseRate,
				})
			}
			resMap[t.ID] = tr
		}
	}

	return territories, resMap
}
