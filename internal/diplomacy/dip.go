// Package diplomacy implements the diplomatic influence (DIP) ledger:
// capacity-bounded point balances, a capped transaction history, itemized
// per-turn income, and trust-adjusted action costs.
package diplomacy

import (
	"math"

	"github.com/seberin/aftermath/internal/nation"
	"github.com/seberin/aftermath/internal/safemath"
)

// TransactionCap is the number of ledger entries retained per nation.
const TransactionCap = 20

// Income components.
const (
	incomeBase          = 5
	incomePerAlliance   = 2 // per alliance at level ≥ allianceIncomeLevel
	allianceIncomeLevel = 3
	incomeCouncilSeat   = 10 // permanent or elected
	incomeMediation     = 3
	peaceTurnsPerDIP    = 10 // +1 per 10 consecutive peace turns
	peaceIncomeCap      = 5
)

// Trust tier cost modifiers.
const (
	trustDiscountFloor = 80 // trust ≥ 80: ×0.8
	trustPenaltyCeil   = 20 // trust ≤ 20: ×1.3
	trustDiscount      = 0.8
	trustPenalty       = 1.3
)

// Action identifies a purchasable diplomatic action.
type Action string

const (
	ActionProposeAlliance  Action = "proposeAlliance"
	ActionTradeForFavors   Action = "tradeForFavors"
	ActionDemandConcession Action = "demandConcession"
	ActionImposeSanctions  Action = "imposeSanctions"
	ActionMediateDispute   Action = "mediateDispute"
	ActionCouncilMotion    Action = "councilMotion"
	ActionPeaceOverture    Action = "peaceOverture"
)

// baseCosts is the fixed cost table. Unknown actions cost zero and should
// be rejected by callers before spending.
var baseCosts = map[Action]float64{
	ActionProposeAlliance:  25,
	ActionTradeForFavors:   15,
	ActionDemandConcession: 30,
	ActionImposeSanctions:  20,
	ActionMediateDispute:   10,
	ActionCouncilMotion:    40,
	ActionPeaceOverture:    12,
}

// Modify applies a signed delta to a nation's DIP balance, clamping the
// result into [0, capacity], and appends a ledger entry. The history is
// truncated to the most recent TransactionCap entries.
func Modify(n *nation.Nation, delta float64, reason string, turn int, counterparty nation.ID) {
	inf := n.EnsureInfluence()
	inf.Points = safemath.Clamp(inf.Points+delta, 0, inf.Capacity, inf.Points)

	inf.Transactions = append(inf.Transactions, nation.DIPTransaction{
		Turn:         turn,
		Delta:        delta,
		Reason:       reason,
		Counterparty: counterparty,
		Balance:      inf.Points,
	})
	if len(inf.Transactions) > TransactionCap {
		inf.Transactions = inf.Transactions[len(inf.Transactions)-TransactionCap:]
	}
}

// Earn credits DIP to a nation.
func Earn(n *nation.Nation, amount float64, reason string, turn int) {
	if amount <= 0 {
		return
	}
	Modify(n, amount, reason, turn, "")
}

// SpendResult reports a spend attempt. On an insufficient balance Success
// is false and Nation is nil; the original nation is untouched. Callers
// treat this as a failed precondition, not an error.
type SpendResult struct {
	Success bool
	Nation  *nation.Nation
}

// Spend debits DIP from a nation if the balance covers the cost.
func Spend(n *nation.Nation, cost float64, reason string, turn int, counterparty nation.ID) SpendResult {
	if cost <= 0 {
		return SpendResult{Success: true, Nation: n}
	}
	inf := n.EnsureInfluence()
	if inf.Points < cost {
		return SpendResult{}
	}
	Modify(n, -cost, reason, turn, counterparty)
	return SpendResult{Success: true, Nation: n}
}

// Income computes a nation's itemized per-turn DIP accrual: a fixed base,
// +2 per alliance at level 3 or above, +10 for a council seat, +3 while
// mediating, and +1 per 10 consecutive peace turns capped at +5.
func Income(n *nation.Nation) nation.DIPIncome {
	inc := nation.DIPIncome{Base: incomeBase}

	for _, a := range n.Alliances {
		if a.Level >= allianceIncomeLevel {
			inc.Alliances += incomePerAlliance
		}
	}

	if n.Council == nation.SeatPermanent || n.Council == nation.SeatElected {
		inc.Council = incomeCouncilSeat
	}

	if n.Mediating {
		inc.Mediation = incomeMediation
	}

	inc.PeaceYears = math.Min(float64(n.PeaceTurns/peaceTurnsPerDIP), peaceIncomeCap)

	inc.Total = inc.Base + inc.Alliances + inc.Council + inc.Mediation + inc.PeaceYears
	return inc
}

// UpdateIncome recomputes and stores the breakdown, then credits the total
// to the balance.
func UpdateIncome(n *nation.Nation, turn int) {
	inf := n.EnsureInfluence()
	inf.Income = Income(n)
	Earn(n, inf.Income.Total, "diplomatic income", turn)
}

// Cost returns the DIP price of an action against a target nation: the
// fixed base modified by the bilateral trust tier, always rounded up.
// Unknown actions return 0.
func Cost(action Action, n *nation.Nation, target *nation.Nation) float64 {
	base, ok := baseCosts[action]
	if !ok {
		return 0
	}

	cost := base
	if target != nil {
		trust := n.TrustToward(target.ID)
		switch {
		case trust >= trustDiscountFloor:
			cost *= trustDiscount
		case trust <= trustPenaltyCeil:
			cost *= trustPenalty
		}
	}
	return math.Ceil(cost)
}
