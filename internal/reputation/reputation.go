// Package reputation tracks how the world judges a nation's conduct.
// The score is always the clamped sum of six behavioral source buckets;
// score, level, and relationship modifier are recomputed together on every
// mutation and never assigned independently.
package reputation

import "github.com/seberin/aftermath/internal/safemath"

// Score bounds and history cap.
const (
	ScoreMin   = -100
	ScoreMax   = 100
	HistoryCap = 20
)

// Level is the discrete trust tier derived from the score.
type Level string

const (
	LevelTrusted       Level = "trusted"
	LevelReliable      Level = "reliable"
	LevelNeutral       Level = "neutral"
	LevelUntrustworthy Level = "untrustworthy"
	LevelPariah        Level = "pariah"
)

// Bucket names one of the six behavioral source categories.
type Bucket string

const (
	BucketTreatyCompliance Bucket = "treatyCompliance"
	BucketNuclearRestraint Bucket = "nuclearRestraint"
	BucketHumanitarianAid  Bucket = "humanitarianAid"
	BucketAggression       Bucket = "aggression"
	BucketSubversion       Bucket = "subversion"
	BucketMediation        Bucket = "mediation"
)

// ActionType identifies a scored behavior.
type ActionType string

const (
	ActionHonorTreaty     ActionType = "honorTreaty"
	ActionBreakTreaty     ActionType = "breakTreaty"
	ActionDisarmament     ActionType = "disarmament"
	ActionNuclearStrike   ActionType = "nuclearStrike"
	ActionHumanitarianAid ActionType = "humanitarianAid"
	ActionRefugeeSupport  ActionType = "refugeeSupport"
	ActionInvasion        ActionType = "invasion"
	ActionBorderSkirmish  ActionType = "borderSkirmish"
	ActionSpyExposed      ActionType = "spyExposed"
	ActionSabotageExposed ActionType = "sabotageExposed"
	ActionMediateDispute  ActionType = "mediateDispute"
	ActionBrokerCeasefire ActionType = "brokerCeasefire"
)

// actionEffect binds an action to its bucket and fixed delta. Unknown
// actions resolve to a zero effect rather than a silent default bucket.
type actionEffect struct {
	bucket Bucket
	delta  float64
}

var actionEffects = map[ActionType]actionEffect{
	ActionHonorTreaty:     {BucketTreatyCompliance, 5},
	ActionBreakTreaty:     {BucketTreatyCompliance, -20},
	ActionDisarmament:     {BucketNuclearRestraint, 40},
	ActionNuclearStrike:   {BucketNuclearRestraint, -40},
	ActionHumanitarianAid: {BucketHumanitarianAid, 8},
	ActionRefugeeSupport:  {BucketHumanitarianAid, 5},
	ActionInvasion:        {BucketAggression, -25},
	ActionBorderSkirmish:  {BucketAggression, -8},
	ActionSpyExposed:      {BucketSubversion, -10},
	ActionSabotageExposed: {BucketSubversion, -15},
	ActionMediateDispute:  {BucketMediation, 6},
	ActionBrokerCeasefire: {BucketMediation, 12},
}

// RecordedAction is one history entry, most recent first.
type RecordedAction struct {
	Turn           int        `json:"turn"`
	Action         ActionType `json:"action"`
	Bucket         Bucket     `json:"bucket"`
	Delta          float64    `json:"delta"`
	Description    string     `json:"description"`
	AffectedNation string     `json:"affected_nation,omitempty"`
}

// Reputation is a nation's standing, derived entirely from its buckets.
type Reputation struct {
	Score    float64            `json:"score"`
	Level    Level              `json:"level"`
	Modifier float64            `json:"modifier"` // relationship modifier applied elsewhere
	Sources  map[Bucket]float64 `json:"sources"`
	History  []RecordedAction   `json:"history"`
}

// New returns a neutral reputation with all six buckets zeroed.
func New() *Reputation {
	r := &Reputation{
		Sources: map[Bucket]float64{
			BucketTreatyCompliance: 0,
			BucketNuclearRestraint: 0,
			BucketHumanitarianAid:  0,
			BucketAggression:       0,
			BucketSubversion:       0,
			BucketMediation:        0,
		},
	}
	r.recompute()
	return r
}

// recompute derives score, level, and modifier from the buckets. This is
// the only place any of the three is assigned.
func (r *Reputation) recompute() {
	sum := 0.0
	for _, v := range r.Sources {
		sum += v
	}
	r.Score = safemath.Clamp(sum, ScoreMin, ScoreMax, 0)

	switch {
	case r.Score >= 60:
		r.Level = LevelTrusted
		r.Modifier = 15
	case r.Score >= 20:
		r.Level = LevelReliable
		r.Modifier = 5
	case r.Score > -20:
		r.Level = LevelNeutral
		r.Modifier = 0
	case r.Score > -60:
		r.Level = LevelUntrustworthy
		r.Modifier = -10
	default:
		r.Level = LevelPariah
		r.Modifier = -25
	}
}

// RecordAction applies a scored behavior: the action's fixed delta lands in
// exactly one bucket, score/level/modifier are recomputed, and the action is
// prepended to the capped history.
func (r *Reputation) RecordAction(turn int, action ActionType, description, affectedNation string) {
	effect, ok := actionEffects[action]
	if !ok {
		return
	}

	r.Sources[effect.bucket] += effect.delta
	r.recompute()

	entry := RecordedAction{
		Turn:           turn,
		Action:         action,
		Bucket:         effect.bucket,
		Delta:          effect.delta,
		Description:    description,
		AffectedNation: affectedNation,
	}
	r.History = append([]RecordedAction{entry}, r.History...)
	if len(r.History) > HistoryCap {
		r.History = r.History[:HistoryCap]
	}
}

// ApplyDecay moves every non-zero bucket toward zero by rate, never past
// it, then recomputes the derived fields.
func (r *Reputation) ApplyDecay(rate float64) {
	if rate <= 0 {
		return
	}
	for bucket, v := range r.Sources {
		switch {
		case v > 0:
			v -= rate
			if v < 0 {
				v = 0
			}
		case v < 0:
			v += rate
			if v > 0 {
				v = 0
			}
		}
		r.Sources[bucket] = v
	}
	r.recompute()
}
