// internal/engine/decision.go
package engine

import "strings"

// decide selects the next action from the already-mutated state and this
// turn's accepted signals, applying the action's state effects
// (last_asked_slot, close counter, termination) as it goes.
//
// Priority: explicit end signal, turn budget, objection accepted this
// turn, next unfilled slot, close / end(closed).
func (e *Engine) decide(state *State, sig Signals, accepted AcceptedSignals) Action {
	if sig.EndOfCall {
		return e.end(state, EndReasonUserEnded, "USER_ENDED")
	}

	if state.TurnIndex > e.cfg.MaxTurns {
		return e.end(state, EndReasonTurnLimit, "TURN_LIMIT_REACHED")
	}

	if len(accepted.Objections) > 0 {
		t := pickObjection(accepted.Objections)
		// A fresh objection interrupts the close sequence.
		state.ConsecutiveCloseTurns = 0
		if e.cfg.ResetLastAskedOnObjection {
			state.LastAskedSlot = ""
		}
		return Action{
			Type:        ActionHandleObjection,
			Objection:   t,
			ReasonCodes: []string{"OBJECTION_" + strings.ToUpper(string(t))},
		}
	}

	if missing := state.MissingSlots(e.cfg.SlotPriority); len(missing) > 0 {
		next := missing[0]
		state.LastAskedSlot = next
		return Action{
			Type:        ActionAskSlot,
			Slot:        next,
			ReasonCodes: []string{"MISSING_SLOT_" + strings.ToUpper(string(next))},
		}
	}

	state.ConsecutiveCloseTurns++
	if state.ConsecutiveCloseTurns >= 2 {
		return e.end(state, EndReasonClosed, "ALL_SLOTS_FILLED", "CLOSED_TWICE")
	}
	return Action{
		Type:        ActionClose,
		ReasonCodes: []string{"ALL_SLOTS_FILLED"},
	}
}

func (e *Engine) end(state *State, reason EndReason, codes ...string) Action {
	state.Ended = true
	state.EndReason = reason
	return Action{
		Type:        ActionEnd,
		Reason:      reason,
		ReasonCodes: codes,
	}
}

// pickObjection chooses the objection to handle from those accepted this
// turn: highest occurrence count wins, ties go to the one accepted last.
func pickObjection(accepted []AcceptedObjection) ObjectionType {
	best := accepted[0]
	for _, a := range accepted[1:] {
		if a.Occurrence >= best.Occurrence {
			best = a
		}
	}
	return best.Type
}

