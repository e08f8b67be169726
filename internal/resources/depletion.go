// Package resources models per-territory extractable deposits and their
// one-way depletion. Deposit state only escalates: active → warning →
// critical → depleted; once depleted, extraction stops permanently.
package resources

import (
	"fmt"
	"sort"

	"github.com/seberin/aftermath/internal/nation"
)

// DepositType is the kind of extractable resource.
type DepositType string

const (
	DepositOil        DepositType = "oil"
	DepositUranium    DepositType = "uranium"
	DepositRareEarth  DepositType = "rareEarth"
	DepositNaturalGas DepositType = "naturalGas"
)

// Deposit is one extractable pocket in a territory. Depleted is terminal:
// once set, DepletionRate is forced to zero and Amount never decreases.
type Deposit struct {
	Type          DepositType `json:"type"`
	Amount        float64     `json:"amount"`
	InitialAmount float64     `json:"initial_amount"`
	Richness      float64     `json:"richness"`
	DepletionRate float64     `json:"depletion_rate"`
	Depleted      bool        `json:"depleted"`

	// Highest warning level already emitted, so each threshold fires once.
	LastWarned WarningLevel `json:"last_warned"`
}

// TerritoryResources is the deposit list for one territory.
type TerritoryResources struct {
	TerritoryID string     `json:"territory_id"`
	Deposits    []*Deposit `json:"deposits"`
}

// WarningLevel orders depletion warnings by severity.
type WarningLevel int

const (
	LevelNone WarningLevel = iota
	LevelWarning
	LevelCritical
	LevelDepleted
)

// String renders the level for logs and warnings.
func (l WarningLevel) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelCritical:
		return "critical"
	case LevelDepleted:
		return "depleted"
	default:
		return "none"
	}
}

// Warning is one threshold crossing surfaced to the orchestrator.
type Warning struct {
	TerritoryID string       `json:"territory_id"`
	Deposit     DepositType  `json:"deposit"`
	Level       WarningLevel `json:"level"`
	Remaining   float64      `json:"remaining"`
	Message     string       `json:"message"`
}

// Config holds the depletion tuning knobs.
type Config struct {
	DepletionRate     float64 // global extraction multiplier
	WarningThreshold  float64 // fraction of initial amount
	CriticalThreshold float64 // fraction of initial amount
	OveruseDemand     float64 // demand above this triggers the overuse multiplier
	OveruseMultiplier float64
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		DepletionRate:     0.2,
		WarningThreshold:  0.5,
		CriticalThreshold: 0.3,
		OveruseDemand:     60,
		OveruseMultiplier: 1.5,
	}
}

// ExtractionDemand derives a controller's extraction pressure from its
// military and production footprint.
func ExtractionDemand(n *nation.Nation) float64 {
	if n == nil {
		return 0
	}
	warheads := 0
	for _, count := range n.Warheads {
		warheads += count
	}
	return float64(n.Missiles)*0.5 + float64(warheads)*0.3 + n.Production*0.2
}

// ProcessDepletion advances every deposit one turn: extraction scaled by
// the config rate and the controller's overuse, threshold warnings emitted
// once per level, and the terminal depleted transition applied exactly
// once. Returns the same map plus the ordered warnings for this turn.
func ProcessDepletion(resources map[string]*TerritoryResources, controllers map[string]*nation.Nation, cfg Config) (map[string]*TerritoryResources, []Warning) {
	var warnings []Warning

	// Walk territories in a fixed order so the warning list (and the
	// event log built from it) is identical on every run of a seed.
	ids := make([]string, 0, len(resources))
	for territoryID := range resources {
		ids = append(ids, territoryID)
	}
	sort.Strings(ids)

	for _, territoryID := range ids {
		tr := resources[territoryID]
		overuse := 1.0
		if demand := ExtractionDemand(controllers[territoryID]); demand > cfg.OveruseDemand && cfg.OveruseMultiplier > 1 {
			overuse = cfg.OveruseMultiplier
		}

		for _, dep := range tr.Deposits {
			if dep.Depleted {
				// Terminal: rate pinned to zero, amount untouched.
				dep.DepletionRate = 0
				continue
			}
			if dep.InitialAmount <= 0 {
				continue
			}

			extraction := dep.InitialAmount * dep.DepletionRate * cfg.DepletionRate * overuse
			dep.Amount -= extraction
			if dep.Amount <= 0 {
				dep.Amount = 0
				dep.Depleted = true
				dep.DepletionRate = 0
			}

			level := levelFor(dep, cfg)
			if level > dep.LastWarned {
				dep.LastWarned = level
				warnings = append(warnings, Warning{
					TerritoryID: territoryID,
					Deposit:     dep.Type,
					Level:       level,
					Remaining:   dep.Amount,
					Message:     warningMessage(territoryID, dep, level),
				})
			}
		}
	}

	return resources, warnings
}

func levelFor(dep *Deposit, cfg Config) WarningLevel {
	frac := dep.Amount / dep.InitialAmount
	switch {
	case dep.Depleted:
		return LevelDepleted
	case frac < cfg.CriticalThreshold:
		return LevelCritical
	case frac < cfg.WarningThreshold:
		return LevelWarning
	default:
		return LevelNone
	}
}

func warningMessage(territoryID string, dep *Deposit, level WarningLevel) string {
	switch level {
	case LevelDepleted:
		return fmt.Sprintf("%s deposit in %s is exhausted", dep.Type, territoryID)
	case LevelCritical:
		return fmt.Sprintf("%s deposit in %s critically low: %.1f units remain", dep.Type, territoryID, dep.Amount)
	default:
		return fmt.Sprintf("%s deposit in %s running low: %.1f units remain", dep.Type, territoryID, dep.Amount)
	}
}
