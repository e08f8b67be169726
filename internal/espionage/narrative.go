package espionage

import (
	"fmt"
	"math/rand"

	"github.com/seberin/aftermath/internal/nation"
)

// Narrative pools keyed by outcome branch. Selection is uniform within a
// pool; branch precedence is eliminated > caught > discovered-escaped >
// success > failed-undetected.
var (
	eliminatedNarratives = []string{
		"%[1]s was cornered in a safehouse outside the capital of %[2]s and did not surrender.",
		"State radio in %[2]s announced the execution of a foreign operative. %[1]s's file is closed.",
		"%[1]s's last transmission cut off mid-sentence. %[2]s later confirmed the worst.",
	}
	caughtNarratives = []string{
		"%[1]s was taken at a border checkpoint in %[2]s, papers in hand.",
		"Counterintelligence in %[2]s rolled up the network and %[1]s with it.",
		"%[1]s missed the exfiltration window and was seized in %[2]s.",
	}
	escapedNarratives = []string{
		"%[1]s burned the cover identity and crossed out of %[2]s hours ahead of the dragnet.",
		"Security services in %[2]s found the drop site, but %[1]s was already gone.",
		"%[1]s slipped surveillance in %[2]s and reached the embassy by morning.",
	}
	successNarratives = []string{
		"%[1]s completed the operation in %[2]s and exfiltrated without incident.",
		"The operation in %[2]s went exactly to plan. %[1]s is already home.",
		"%[1]s reports full success from %[2]s. No loose ends.",
	}
	failedQuietNarratives = []string{
		"The operation in %[2]s came apart quietly. %[1]s withdrew before anyone noticed.",
		"%[1]s aborted after the target in %[2]s changed routine. Nothing points back to us.",
		"A dead drop in %[2]s went stale. %[1]s stood down and came home.",
	}
)

var discoveryPools = map[Fate][]string{
	FateExecuted: {
		"forensic teams traced the operation within days",
		"a double agent inside the cell gave up everything",
		"the operative was identified from checkpoint footage",
	},
	FateImprisoned: {
		"a routine document check unraveled the cover identity",
		"an informant tipped the secret police to the safehouse",
		"signals intelligence flagged the burst transmitter",
	},
	FateTurned: {
		"counterintelligence had been watching the network for months",
		"the operative was offered a choice and took it",
		"a staged arrest concealed the recruitment",
	},
	FateEscaped: {
		"a sweep of the district came up one bed short",
		"the operative's sketch is circulating at every crossing",
		"an abandoned radio set was all the search recovered",
	},
}

// discoveryDetails selects how the operation was blown, conditioned on the
// agent's fate.
func discoveryDetails(out Outcome, rng *rand.Rand) string {
	pool, ok := discoveryPools[out.Fate]
	if !ok || len(pool) == 0 {
		return ""
	}
	return pool[rng.Intn(len(pool))]
}

// missionNarrative renders the human-readable account of the outcome.
func missionNarrative(m *Mission, agent *Agent, target *nation.Nation, out Outcome, rng *rand.Rand) string {
	var pool []string
	switch {
	case out.Eliminated:
		pool = eliminatedNarratives
	case out.Caught:
		pool = caughtNarratives
	case out.Discovered:
		pool = escapedNarratives
	case out.Success:
		pool = successNarratives
	default:
		pool = failedQuietNarratives
	}
	return fmt.Sprintf(pool[rng.Intn(len(pool))], agent.Name, target.Name)
}
