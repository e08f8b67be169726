// Package espionage resolves covert missions: success, discovery, and
// agent fate, plus mission-specific reward payloads. All randomness comes
// from an injected source so outcomes replay deterministically.
package espionage

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/seberin/aftermath/internal/nation"
	"github.com/seberin/aftermath/internal/safemath"
)

// MissionType is a closed set; Resolve and GenerateRewards switch over
// every member and treat anything else as a no-reward mission.
type MissionType string

const (
	MissionStealTech      MissionType = "stealTech"
	MissionSabotage       MissionType = "sabotage"
	MissionInciteUnrest   MissionType = "inciteUnrest"
	MissionGatherIntel    MissionType = "gatherIntel"
	MissionAssassination  MissionType = "assassination"
	MissionDisinformation MissionType = "disinformation"
)

// Fate is an agent's terminal state after resolution.
type Fate string

const (
	FateReturned   Fate = "returned" // undiscovered, came home
	FateEscaped    Fate = "escaped"  // discovered but slipped the net
	FateImprisoned Fate = "imprisoned"
	FateTurned     Fate = "turned" // captured and flipped
	FateExecuted   Fate = "executed"
)

// Agent is the operative executing a mission.
type Agent struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Owner    nation.ID `json:"owner"`
	Skill    float64   `json:"skill"` // [0,1]
	Missions int       `json:"missions"`
	Fate     Fate      `json:"fate,omitempty"`
}

// NewAgent creates an operative with a fresh id.
func NewAgent(name string, owner nation.ID, skill float64) *Agent {
	return &Agent{
		ID:    uuid.NewString(),
		Name:  name,
		Owner: owner,
		Skill: safemath.Clamp(skill, 0, 1, 0.5),
	}
}

// Mission is a single covert operation. Resolution is one-shot: a resolved
// mission is terminal and never re-entered.
type Mission struct {
	ID          string      `json:"id"`
	Type        MissionType `json:"type"`
	Operator    nation.ID   `json:"operator"`
	Target      nation.ID   `json:"target"`
	AgentID     string      `json:"agent_id"`
	CreatedTurn int         `json:"created_turn"`
	Resolved    bool        `json:"resolved"`
}

// NewMission creates an unresolved mission with a fresh id.
func NewMission(mt MissionType, operator, target nation.ID, agentID string, turn int) *Mission {
	return &Mission{
		ID:          uuid.NewString(),
		Type:        mt,
		Operator:    operator,
		Target:      target,
		AgentID:     agentID,
		CreatedTurn: turn,
	}
}

// Reward is the closed set of mission payloads. Each mission type produces
// exactly one shape; unhandled types produce nil.
type Reward interface{ isReward() }

// StolenTech is the steal-tech payload.
type StolenTech struct {
	TechID string `json:"tech_id"`
}

// SabotageEffect is the sabotage payload.
type SabotageEffect struct {
	ProductionDelta float64 `json:"production_delta"` // negative, applied to target
}

// UnrestEffect is the incite-unrest payload.
type UnrestEffect struct {
	MoraleDelta   float64 `json:"morale_delta"`   // negative, applied to target
	ApprovalDelta float64 `json:"approval_delta"` // negative, applied to target
}

// IntelHaul is the gather-intel payload.
type IntelHaul struct {
	IntelPoints float64 `json:"intel_points"` // credited to operator
}

// AssassinationEffect is the assassination payload.
type AssassinationEffect struct {
	LeaderEliminated bool    `json:"leader_eliminated"`
	InstabilityDelta float64 `json:"instability_delta"`
}

// DisinfoEffect is the disinformation payload: trust shifts toward the
// target as seen by third parties.
type DisinfoEffect struct {
	TrustImpact map[nation.ID]float64 `json:"trust_impact"`
}

func (StolenTech) isReward()          {}
func (SabotageEffect) isReward()      {}
func (UnrestEffect) isReward()        {}
func (IntelHaul) isReward()           {}
func (AssassinationEffect) isReward() {}
func (DisinfoEffect) isReward()       {}

// Outcome is the full resolution of a mission.
type Outcome struct {
	Success      bool     `json:"success"`
	Discovered   bool     `json:"discovered"`
	Caught       bool     `json:"caught"`
	Eliminated   bool     `json:"eliminated"`
	Fate         Fate     `json:"fate"`
	Reward       Reward   `json:"reward,omitempty"`
	Narrative    string   `json:"narrative"`
	Discovery    string   `json:"discovery,omitempty"`
	Consequences []string `json:"consequences,omitempty"`
}

// Base success odds per mission type before agent skill.
var baseSuccess = map[MissionType]float64{
	MissionStealTech:      0.45,
	MissionSabotage:       0.50,
	MissionInciteUnrest:   0.55,
	MissionGatherIntel:    0.65,
	MissionAssassination:  0.30,
	MissionDisinformation: 0.60,
}

const (
	capturedImprisonedShare = 0.70 // remainder turned
	discoveredOnSuccess     = 0.25
	discoveredOnFailure     = 0.60
	eliminatedOnCapture     = 0.30
)

// Resolve runs a mission to its terminal state. It mutates the agent's
// fate and marks the mission resolved; calling it on an already-resolved
// mission returns an empty outcome.
func Resolve(m *Mission, agent *Agent, target *nation.Nation, state []*nation.Nation, rng *rand.Rand) Outcome {
	if m.Resolved {
		return Outcome{}
	}
	m.Resolved = true
	agent.Missions++

	chance, known := baseSuccess[m.Type]
	if !known {
		chance = 0.5
	}
	chance = safemath.Clamp(chance+agent.Skill*0.3-target.Intel*0.002, 0.05, 0.95, 0.5)

	out := Outcome{Success: rng.Float64() < chance}

	discoveryChance := discoveredOnFailure
	if out.Success {
		discoveryChance = discoveredOnSuccess
	}
	out.Discovered = rng.Float64() < discoveryChance

	if out.Discovered {
		captureChance := safemath.Clamp(0.5+target.Intel*0.003, 0.1, 0.9, 0.5)
		out.Caught = rng.Float64() < captureChance
	}

	switch {
	case out.Caught && rng.Float64() < eliminatedOnCapture:
		out.Eliminated = true
		out.Fate = FateExecuted
	case out.Caught:
		if rng.Float64() < capturedImprisonedShare {
			out.Fate = FateImprisoned
		} else {
			out.Fate = FateTurned
		}
	case out.Discovered:
		out.Fate = FateEscaped
	default:
		out.Fate = FateReturned
	}
	agent.Fate = out.Fate

	if out.Success && known {
		out.Reward = GenerateRewards(m.Type, target, agent, state, rng)
	}
	if out.Discovered {
		out.Discovery = discoveryDetails(out, rng)
	}
	out.Narrative = missionNarrative(m, agent, target, out, rng)
	out.Consequences = diplomaticConsequences(m, target, out)

	return out
}

// stealableTech is the pool steal-tech missions draw from.
var stealableTech = []string{
	"guidance-array",
	"compact-reactor",
	"mirv-bus",
	"stealth-coating",
	"early-warning-net",
	"enrichment-cascade",
}

// GenerateRewards dispatches on mission type to produce its payload.
// Every member of the MissionType set is handled; anything else yields nil.
func GenerateRewards(mt MissionType, target *nation.Nation, agent *Agent, state []*nation.Nation, rng *rand.Rand) Reward {
	switch mt {
	case MissionStealTech:
		return StolenTech{TechID: stealableTech[rng.Intn(len(stealableTech))]}
	case MissionSabotage:
		return SabotageEffect{ProductionDelta: -(5 + rng.Float64()*10)}
	case MissionInciteUnrest:
		return UnrestEffect{
			MoraleDelta:   -(3 + rng.Float64()*7),
			ApprovalDelta: -(2 + rng.Float64()*5),
		}
	case MissionGatherIntel:
		return IntelHaul{IntelPoints: 10 + rng.Float64()*15}
	case MissionAssassination:
		return AssassinationEffect{LeaderEliminated: true, InstabilityDelta: 8 + rng.Float64()*6}
	case MissionDisinformation:
		impact := make(map[nation.ID]float64)
		for _, other := range state {
			if other.ID == target.ID || other.ID == agent.Owner {
				continue
			}
			impact[other.ID] = -(2 + rng.Float64()*6)
		}
		return DisinfoEffect{TrustImpact: impact}
	default:
		return nil
	}
}

// diplomaticConsequences lists the fallout the operator faces, escalating
// with severity. Capture or elimination on an assassination mission is an
// act of war.
func diplomaticConsequences(m *Mission, target *nation.Nation, out Outcome) []string {
	if !out.Discovered {
		return nil
	}

	var cons []string
	if out.Caught || out.Eliminated {
		if m.Type == MissionAssassination {
			cons = append(cons,
				fmt.Sprintf("%s declares the captured assassin an act of war", target.Name),
				"emergency council session convened",
			)
		} else {
			cons = append(cons,
				fmt.Sprintf("%s recalls its ambassador", target.Name),
				"formal protest lodged with the council",
			)
		}
		cons = append(cons, "bilateral trust collapses")
		return cons
	}

	// Discovered but escaped: lighter touch.
	return []string{
		fmt.Sprintf("%s issues a diplomatic protest", target.Name),
		"bilateral trust damaged",
	}
}
