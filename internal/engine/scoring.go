// internal/engine/scoring.go
package engine

import "fmt"

// BreakdownItem is one itemized scoring contribution. The ordered list
// sums to the final clamped score.
type BreakdownItem struct {
	Field  string  `json:"field"`
	Points float64 `json:"points"`
	Reason string  `json:"reason"`
}

// Score recomputes the opportunity score from the full state. Always from
// scratch, never incrementally, so it cannot drift from the state.
//
// Each filled slot contributes its configured weight. Each objection type
// contributes a penalty with diminishing weight by occurrence: first
// occurrence full, second half, third and later free (already priced in).
// The total objection deduction is floored (default -2), and the final
// score is clamped to [0,10].
func (e *Engine) Score(state *State) (float64, []BreakdownItem) {
	var items []BreakdownItem
	var total float64

	for _, slot := range e.cfg.SlotPriority {
		sv := state.Slot(slot)
		if !sv.Filled() {
			continue
		}
		w := e.cfg.SlotWeights[slot]
		total += w
		items = append(items, BreakdownItem{
			Field:  string(slot),
			Points: w,
			Reason: "slot filled",
		})
	}

	var penalty float64
	var objItems []BreakdownItem
	for _, t := range AllObjectionTypes() {
		rec, ok := state.Objections[t]
		if !ok || rec.OccurrenceCount == 0 {
			continue
		}
		full := e.cfg.ObjectionPenalties[t]
		contribution := full
		if rec.OccurrenceCount >= 2 {
			contribution += full / 2
		}
		if contribution == 0 {
			continue
		}
		penalty -= contribution
		objItems = append(objItems, BreakdownItem{
			Field:  "objection:" + string(t),
			Points: -contribution,
			Reason: fmt.Sprintf("objection %q raised %dx", t, rec.OccurrenceCount),
		})
	}

	if floor := e.cfg.ObjectionPenaltyFloor; penalty < floor {
		// Scale the items so the list still sums to the floored total.
		scale := floor / penalty
		for i := range objItems {
			objItems[i].Points *= scale
		}
		penalty = floor
	}

	total += penalty
	items = append(items, objItems...)

	// Clamp. Penalties can only push below zero here since weights sum
	// to the ceiling, so clamping adds a balancing item when it applies.
	if total < 0 {
		items = append(items, BreakdownItem{
			Field:  "clamp",
			Points: -total,
			Reason: "score floored at 0",
		})
		total = 0
	}
	if total > scoreCeiling {
		items = append(items, BreakdownItem{
			Field:  "clamp",
			Points: scoreCeiling - total,
			Reason: "score capped at 10",
		})
		total = scoreCeiling
	}

	return total, items
}

// Label maps a score to its qualification band: Weak below the weak
// threshold, Strong at or above the strong threshold, Medium between.
func (e *Engine) Label(score float64) string {
	switch {
	case score < e.cfg.WeakThreshold:
		return "Weak"
	case score < e.cfg.StrongThreshold:
		return "Medium"
	default:
		return "Strong"
	}
}
