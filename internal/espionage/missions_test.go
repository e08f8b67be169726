package espionage

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/seberin/aftermath/internal/nation"
)

func testTarget() *nation.Nation {
	return &nation.Nation{ID: "vel", Name: "Velistan", Intel: 20}
}

func testWorld(target *nation.Nation) []*nation.Nation {
	return []*nation.Nation{
		{ID: "atl", Name: "Atlantica"},
		target,
		{ID: "kor", Name: "Koryndia"},
		{ID: "dra", Name: "Dravaria"},
	}
}

func TestResolveIsDeterministicForSeed(t *testing.T) {
	run := func() Outcome {
		target := testTarget()
		agent := &Agent{ID: "a1", Name: "KESTREL", Owner: "atl", Skill: 0.6}
		m := NewMission(MissionGatherIntel, "atl", "vel", agent.ID, 4)
		return Resolve(m, agent, target, testWorld(target), rand.New(rand.NewSource(99)))
	}

	a := run()
	b := run()
	if a.Success != b.Success || a.Fate != b.Fate || a.Narrative != b.Narrative || a.Discovery != b.Discovery {
		t.Fatalf("same seed produced different outcomes:\n%+v\n%+v", a, b)
	}
}

func TestResolveIsSingleShot(t *testing.T) {
	target := testTarget()
	agent := NewAgent("KESTREL", "atl", 0.6)
	m := NewMission(MissionSabotage, "atl", "vel", agent.ID, 1)
	rng := rand.New(rand.NewSource(1))

	first := Resolve(m, agent, target, testWorld(target), rng)
	if first.Fate == "" {
		t.Fatal("expected a terminal fate from first resolution")
	}
	second := Resolve(m, agent, target, testWorld(target), rng)
	if second.Fate != "" || second.Narrative != "" {
		t.Fatalf("resolved mission re-entered: %+v", second)
	}
}

func TestFateBranchesAreConsistent(t *testing.T) {
	// Sweep seeds and check the fate lattice invariants on every outcome.
	sawFate := map[Fate]bool{}
	for seed := int64(0); seed < 300; seed++ {
		target := testTarget()
		agent := &Agent{ID: "a1", Name: "KESTREL", Owner: "atl", Skill: 0.3}
		m := NewMission(MissionAssassination, "atl", "vel", agent.ID, 1)
		out := Resolve(m, agent, target, testWorld(target), rand.New(rand.NewSource(seed)))

		sawFate[out.Fate] = true
		if out.Eliminated && out.Fate != FateExecuted {
			t.Fatalf("eliminated agent with fate %s", out.Fate)
		}
		if out.Caught && !out.Discovered {
			t.Fatalf("caught without being discovered: %+v", out)
		}
		if out.Fate == FateEscaped && out.Caught {
			t.Fatalf("escaped but caught: %+v", out)
		}
		if out.Fate == FateReturned && out.Discovered {
			t.Fatalf("returned cleanly but discovered: %+v", out)
		}
		if agent.Fate != out.Fate {
			t.Fatalf("agent fate %s does not match outcome fate %s", agent.Fate, out.Fate)
		}
		if out.Narrative == "" {
			t.Fatal("missing narrative")
		}
		if out.Discovered && out.Discovery == "" {
			t.Fatalf("discovered mission missing discovery details: %+v", out)
		}
	}

	for _, want := range []Fate{FateReturned, FateEscaped, FateImprisoned, FateTurned, FateExecuted} {
		if !sawFate[want] {
			t.Fatalf("300-seed sweep never produced fate %s (saw %v)", want, sawFate)
		}
	}
}

func TestRewardShapesPerMissionType(t *testing.T) {
	target := testTarget()
	world := testWorld(target)
	agent := &Agent{ID: "a1", Name: "KESTREL", Owner: "atl", Skill: 0.5}
	rng := rand.New(rand.NewSource(7))

	tests := []struct {
		mt    MissionType
		check func(t *testing.T, r Reward)
	}{
		{MissionStealTech, func(t *testing.T, r Reward) {
			st, ok := r.(StolenTech)
			if !ok || st.TechID == "" {
				t.Fatalf("expected StolenTech with id, got %#v", r)
			}
		}},
		{MissionSabotage, func(t *testing.T, r Reward) {
			se, ok := r.(SabotageEffect)
			if !ok || se.ProductionDelta >= 0 {
				t.Fatalf("expected negative production delta, got %#v", r)
			}
		}},
		{MissionInciteUnrest, func(t *testing.T, r Reward) {
			ue, ok := r.(UnrestEffect)
			if !ok || ue.MoraleDelta >= 0 || ue.ApprovalDelta >= 0 {
				t.Fatalf("expected negative morale and approval deltas, got %#v", r)
			}
		}},
		{MissionGatherIntel, func(t *testing.T, r Reward) {
			ih, ok := r.(IntelHaul)
			if !ok || ih.IntelPoints <= 0 {
				t.Fatalf("expected positive intel haul, got %#v", r)
			}
		}},
		{MissionAssassination, func(t *testing.T, r Reward) {
			ae, ok := r.(AssassinationEffect)
			if !ok || !ae.LeaderEliminated || ae.InstabilityDelta <= 0 {
				t.Fatalf("expected leader eliminated with instability, got %#v", r)
			}
		}},
		{MissionDisinformation, func(t *testing.T, r Reward) {
			de, ok := r.(DisinfoEffect)
			if !ok {
				t.Fatalf("expected DisinfoEffect, got %#v", r)
			}
			if len(de.TrustImpact) == 0 {
				t.Fatal("expected trust impact on third parties")
			}
			if _, hit := de.TrustImpact["vel"]; hit {
				t.Fatal("disinformation should not target its own victim's trust entry")
			}
			if _, hit := de.TrustImpact["atl"]; hit {
				t.Fatal("disinformation should not hit the operator")
			}
			for id, delta := range de.TrustImpact {
				if delta >= 0 {
					t.Fatalf("expected negative trust shift for %s, got %v", id, delta)
				}
			}
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mt), func(t *testing.T) {
			tt.check(t, GenerateRewards(tt.mt, target, agent, world, rng))
		})
	}
}

func TestUnknownMissionTypeYieldsNoReward(t *testing.T) {
	target := testTarget()
	rng := rand.New(rand.NewSource(7))
	agent := &Agent{ID: "a1", Owner: "atl"}
	if r := GenerateRewards(MissionType("weatherControl"), target, agent, testWorld(target), rng); r != nil {
		t.Fatalf("expected nil reward for unknown type, got %#v", r)
	}
}

func TestAssassinationCaptureIsActOfWar(t *testing.T) {
	target := testTarget()
	m := &Mission{Type: MissionAssassination, Operator: "atl", Target: "vel"}
	out := Outcome{Discovered: true, Caught: true}

	cons := diplomaticConsequences(m, target, out)
	found := false
	for _, c := range cons {
		if strings.Contains(c, "act of war") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected act-of-war consequence for captured assassin, got %v", cons)
	}
}

func TestNonAssassinationCaptureIsNotActOfWar(t *testing.T) {
	target := testTarget()
	m := &Mission{Type: MissionGatherIntel, Operator: "atl", Target: "vel"}
	out := Outcome{Discovered: true, Caught: true}

	for _, c := range diplomaticConsequences(m, target, out) {
		if strings.Contains(c, "act of war") {
			t.Fatalf("intel capture escalated to act of war: %v", c)
		}
	}
}

func TestUndiscoveredMissionHasNoConsequences(t *testing.T) {
	target := testTarget()
	m := &Mission{Type: MissionSabotage, Operator: "atl", Target: "vel"}
	if cons := diplomaticConsequences(m, target, Outcome{}); cons != nil {
		t.Fatalf("expected no consequences when undiscovered, got %v", cons)
	}
}
