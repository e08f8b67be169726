// Package engine ties the calculators together and advances the world one
// turn at a time. Each calculator runs once per turn in a fixed order; no
// two ever touch the same nation concurrently.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/seberin/aftermath/internal/diplomacy"
	"github.com/seberin/aftermath/internal/espionage"
	"github.com/seberin/aftermath/internal/fallout"
	"github.com/seberin/aftermath/internal/geo"
	"github.com/seberin/aftermath/internal/market"
	"github.com/seberin/aftermath/internal/nation"
	"github.com/seberin/aftermath/internal/nuke"
	"github.com/seberin/aftermath/internal/reputation"
	"github.com/seberin/aftermath/internal/resources"
	"github.com/seberin/aftermath/internal/worldgen"
)

// Sentinel failures for player actions. Callers check these with
// errors.Is; none of them indicate a corrupted world.
var (
	ErrUnknownNation   = errors.New("unknown nation")
	ErrNoWarhead       = errors.New("no warhead of that yield in stockpile")
	ErrNoMissile       = errors.New("no delivery missile available")
	ErrInsufficientDIP = errors.New("insufficient diplomatic influence")
)

// ReputationDecayRate is applied to every nation's reputation buckets each
// turn.
const ReputationDecayRate = 0.5

// eventRetention caps the in-memory event ring.
const eventRetention = 1000

// Event is a notable occurrence surfaced to consumers.
type Event struct {
	Turn        int    `json:"turn"`
	Description string `json:"description"`
	Category    string `json:"category"` // "strike", "fallout", "espionage", "diplomacy", "resources"
}

// Simulation holds the complete world state and wires the calculators
// together. Mutating entry points serialize on an internal mutex so the
// turn loop and the control plane can share one world.
type Simulation struct {
	Turn        int
	Nations     []*nation.Nation
	NationIndex map[nation.ID]*nation.Nation

	Territories []*worldgen.Territory
	Resources   map[string]*resources.TerritoryResources
	ResourceCfg resources.Config

	Marks    []*fallout.Mark
	Severity fallout.SeverityTable
	Market   *market.Market

	Events   []Event
	Warnings []resources.Warning // warnings from the most recent turn

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulation assembles a world from its parts with a seeded random
// source. The same seed and inputs replay identically.
func NewSimulation(seed int64, nations []*nation.Nation, territories []*worldgen.Territory, res map[string]*resources.TerritoryResources) *Simulation {
	index := make(map[nation.ID]*nation.Nation, len(nations))
	for _, n := range nations {
		index[n.ID] = n
	}

	return &Simulation{
		Nations:     nations,
		NationIndex: index,
		Territories: territories,
		Resources:   res,
		ResourceCfg: resources.DefaultConfig(),
		Severity:    make(fallout.SeverityTable),
		Market:      market.New(),
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// Rand exposes the simulation's seeded source for action resolution.
func (s *Simulation) Rand() *rand.Rand {
	return s.rng
}

// controllerByTerritory maps each territory to its controlling nation for
// the depletion pass.
func (s *Simulation) controllerByTerritory() map[string]*nation.Nation {
	controllers := make(map[string]*nation.Nation, len(s.Territories))
	for _, t := range s.Territories {
		if t.Controller == "" {
			continue
		}
		if n, ok := s.NationIndex[t.Controller]; ok {
			controllers[t.ID] = n
		}
	}
	return controllers
}

// AdvanceTurn runs one full turn in fixed order: fallout zone tick, effect
// accrual, effect decay, diplomatic income, reputation decay, resource
// depletion, market drift, severity observation.
func (s *Simulation) AdvanceTurn() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Turn++

	// Fallout zones grow or fade; spent marks are pruned.
	alive := s.Marks[:0]
	for _, m := range s.Marks {
		if m.Tick(s.Turn) {
			alive = append(alive, m)
		} else {
			s.record("fallout", "fallout zone %s has dissipated", m.ID)
		}
	}
	s.Marks = alive

	fallout.ApplyEffects(s.Marks, s.Nations)
	fallout.DecayEffects(s.Nations)

	for _, n := range s.Nations {
		diplomacy.UpdateIncome(n, s.Turn)
		n.EnsureReputation().ApplyDecay(ReputationDecayRate)
		n.PeaceTurns++
	}

	var warnings []resources.Warning
	s.Resources, warnings = resources.ProcessDepletion(s.Resources, s.controllerByTerritory(), s.ResourceCfg)
	s.Warnings = warnings
	for _, w := range warnings {
		s.record("resources", "%s", w.Message)
	}

	s.Market.Drift(s.Resources, s.rng)
	s.Severity.Observe(s.Marks, s.Nations)

	s.logTurn()
}

// StrikeReport is the outcome of a launched strike.
type StrikeReport struct {
	Result nuke.StrikeResult `json:"result"`
	MarkID string            `json:"mark_id"`
}

// LaunchStrike fires one warhead of the given yield from attacker at
// defender: blast and fallout stages against the defender's population, a
// new or re-struck fallout zone at the defender's position, a reputation
// hit, and a trust collapse toward the attacker.
func (s *Simulation) LaunchStrike(attackerID, defenderID nation.ID, yieldMT int) (StrikeReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attacker, ok := s.NationIndex[attackerID]
	if !ok {
		return StrikeReport{}, fmt.Errorf("attacker %s: %w", attackerID, ErrUnknownNation)
	}
	defender, ok := s.NationIndex[defenderID]
	if !ok {
		return StrikeReport{}, fmt.Errorf("defender %s: %w", defenderID, ErrUnknownNation)
	}
	if attacker.Warheads[yieldMT] <= 0 {
		return StrikeReport{}, ErrNoWarhead
	}
	if attacker.Missiles <= 0 {
		return StrikeReport{}, ErrNoMissile
	}

	attacker.Warheads[yieldMT]--
	attacker.Missiles--
	attacker.PeaceTurns = 0

	result := nuke.SimulateStrike(float64(yieldMT), defender.Defense, defender.Population, defender.RadiationMitigation)
	defender.Population = result.FinalPopulation

	// One zone per defender position: a repeat strike restrikes it.
	mark := s.markNear(defender.Position)
	if mark != nil {
		mark.Restrike(float64(yieldMT), s.Turn)
	} else {
		mark = fallout.NewMark(fmt.Sprintf("fz-%s-%d", defenderID, s.Turn), defender.Position, float64(yieldMT), s.Turn)
		s.Marks = append(s.Marks, mark)
	}

	attacker.EnsureReputation().RecordAction(s.Turn, reputation.ActionNuclearStrike,
		fmt.Sprintf("nuclear strike on %s", defender.Name), string(defenderID))
	defender.EnsureTrust()[attackerID] = 0

	s.record("strike", "%s struck %s with a %dMT warhead: %s casualties",
		attacker.Name, defender.Name, yieldMT,
		humanize.CommafWithDigits((result.DirectDamage+result.FalloutDamage)*1e6, 0))

	return StrikeReport{Result: result, MarkID: mark.ID}, nil
}

// markNear returns an existing mark covering the position, if any.
func (s *Simulation) markNear(pos geo.LatLon) *fallout.Mark {
	for _, m := range s.Marks {
		if geo.DistanceKm(pos, m.Position) <= m.RadiusKm/2 {
			return m
		}
	}
	return nil
}

// MissionReport is the outcome of a resolved espionage mission.
type MissionReport struct {
	Mission *espionage.Mission `json:"mission"`
	Outcome espionage.Outcome  `json:"outcome"`
}

// RunMission resolves a covert operation and applies its rewards and
// diplomatic consequences to the world.
func (s *Simulation) RunMission(mt espionage.MissionType, operatorID, targetID nation.ID, agent *espionage.Agent) (MissionReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	operator, ok := s.NationIndex[operatorID]
	if !ok {
		return MissionReport{}, fmt.Errorf("operator %s: %w", operatorID, ErrUnknownNation)
	}
	target, ok := s.NationIndex[targetID]
	if !ok {
		return MissionReport{}, fmt.Errorf("target %s: %w", targetID, ErrUnknownNation)
	}

	m := espionage.NewMission(mt, operatorID, targetID, agent.ID, s.Turn)
	out := espionage.Resolve(m, agent, target, s.Nations, s.rng)

	s.applyReward(operator, target, out.Reward)

	if out.Discovered {
		target.EnsureTrust()[operatorID] = 0
		repAction := reputation.ActionSpyExposed
		if mt == espionage.MissionSabotage {
			repAction = reputation.ActionSabotageExposed
		}
		operator.EnsureReputation().RecordAction(s.Turn, repAction,
			fmt.Sprintf("operation against %s exposed", target.Name), string(targetID))
	}

	s.record("espionage", "%s", out.Narrative)
	for _, c := range out.Consequences {
		s.record("espionage", "%s", c)
	}

	return MissionReport{Mission: m, Outcome: out}, nil
}

// applyReward folds a mission payload into the world. The switch covers
// every reward shape; a nil reward is a no-op.
func (s *Simulation) applyReward(operator, target *nation.Nation, r espionage.Reward) {
	switch reward := r.(type) {
	case nil:
	case espionage.StolenTech:
		operator.TechLevel++
		s.record("espionage", "%s acquired %s schematics", operator.Name, reward.TechID)
	case espionage.SabotageEffect:
		target.Production = max(0, target.Production+reward.ProductionDelta)
	case espionage.UnrestEffect:
		target.Morale += reward.MoraleDelta
		target.Approval += reward.ApprovalDelta
	case espionage.IntelHaul:
		operator.Intel += reward.IntelPoints
	case espionage.AssassinationEffect:
		if reward.LeaderEliminated {
			target.Leader = "acting premier"
		}
		target.EnsureFallout().Instability += reward.InstabilityDelta
	case espionage.DisinfoEffect:
		for id, delta := range reward.TrustImpact {
			third, ok := s.NationIndex[id]
			if !ok {
				continue
			}
			// Start from the effective trust so nations with no prior
			// record shift off the neutral midpoint, not off zero.
			third.EnsureTrust()[target.ID] = max(0, third.TrustToward(target.ID)+delta)
		}
	}
}

// SpendInfluence prices a diplomatic action against the bilateral trust
// tier and debits the actor. A short balance returns ErrInsufficientDIP
// and leaves the actor untouched.
func (s *Simulation) SpendInfluence(actorID nation.ID, action diplomacy.Action, targetID nation.ID) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, ok := s.NationIndex[actorID]
	if !ok {
		return 0, fmt.Errorf("actor %s: %w", actorID, ErrUnknownNation)
	}
	target := s.NationIndex[targetID]

	cost := diplomacy.Cost(action, actor, target)
	res := diplomacy.Spend(actor, cost, string(action), s.Turn, targetID)
	if !res.Success {
		return cost, ErrInsufficientDIP
	}

	s.record("diplomacy", "%s spent %.0f DIP on %s", actor.Name, cost, action)
	return cost, nil
}

// record appends an event and trims the ring.
func (s *Simulation) record(category, format string, args ...any) {
	s.Events = append(s.Events, Event{
		Turn:        s.Turn,
		Description: fmt.Sprintf(format, args...),
		Category:    category,
	})
	if len(s.Events) > eventRetention {
		s.Events = s.Events[len(s.Events)-eventRetention:]
	}
}

func (s *Simulation) logTurn() {
	totalPop := 0.0
	for _, n := range s.Nations {
		totalPop += n.Population
	}
	slog.Info("turn resolved",
		"turn", s.Turn,
		"nations", len(s.Nations),
		"population", humanize.CommafWithDigits(totalPop*1e6, 0),
		"fallout_zones", len(s.Marks),
		"warnings", len(s.Warnings),
	)
}
