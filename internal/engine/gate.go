// internal/engine/gate.go
package engine

import "strings"

// gate applies the acceptance policy to every candidate signal and writes
// the survivors into state. Rejections are returned for the trace; they
// never abort the turn.
//
// Per slot-fill candidate, in order: confidence floor, question-alignment
// (a strong out-of-band signal overrides), no-overwrite-by-default (safe
// correction marker or confidence margin unlocks). Objections use a lower,
// separate floor and no overwrite protection: they are diagnostic signals,
// not slots.
func (e *Engine) gate(state *State, sig Signals) (AcceptedSignals, []IgnoredSignal) {
	var accepted AcceptedSignals
	var ignored []IgnoredSignal

	for _, c := range sig.SlotFills {
		value := strings.TrimSpace(c.Value)

		slot, known := ParseSlot(c.Slot)
		if !known || value == "" || c.Confidence < 0 || c.Confidence > 1 {
			ignored = append(ignored, IgnoredSignal{
				Kind: "slot_fill", Target: c.Slot, Value: value,
				Confidence: c.Confidence, Reason: RejectMalformed,
			})
			continue
		}

		if c.Confidence < e.cfg.MinConfidence {
			ignored = append(ignored, IgnoredSignal{
				Kind: "slot_fill", Target: string(slot), Value: value,
				Confidence: c.Confidence, Reason: RejectBelowFloor,
			})
			continue
		}

		// Prevents short acknowledgements from being misattributed to
		// whichever slot a generic extractor guesses.
		if state.LastAskedSlot != "" && slot != state.LastAskedSlot &&
			c.Confidence < e.cfg.AlignmentOverride {
			ignored = append(ignored, IgnoredSignal{
				Kind: "slot_fill", Target: string(slot), Value: value,
				Confidence: c.Confidence, Reason: RejectMisaligned,
			})
			continue
		}

		sv := state.Slot(slot)
		if sv.Filled() && !c.Correction &&
			c.Confidence < sv.Confidence+e.cfg.CorrectionMargin {
			ignored = append(ignored, IgnoredSignal{
				Kind: "slot_fill", Target: string(slot), Value: value,
				Confidence: c.Confidence, Reason: RejectOverwriteBlocked,
			})
			continue
		}

		overwrote := sv.Filled()
		sv.Value = value
		sv.Confidence = c.Confidence
		sv.FilledAtTurn = state.TurnIndex
		sv.FillCount++

		accepted.Fills = append(accepted.Fills, AcceptedFill{
			Slot: slot, Value: value, Confidence: c.Confidence, Overwrote: overwrote,
		})
	}

	for _, c := range sig.Objections {
		t, known := ParseObjectionType(c.Type)
		if !known || c.Confidence < 0 || c.Confidence > 1 {
			ignored = append(ignored, IgnoredSignal{
				Kind: "objection", Target: c.Type,
				Confidence: c.Confidence, Reason: RejectMalformed,
			})
			continue
		}

		if c.Confidence < e.cfg.ObjectionMinConfidence {
			ignored = append(ignored, IgnoredSignal{
				Kind: "objection", Target: string(t),
				Confidence: c.Confidence, Reason: RejectBelowFloor,
			})
			continue
		}

		rec, ok := state.Objections[t]
		if !ok {
			rec = &ObjectionRecord{Type: t}
			state.Objections[t] = rec
		}
		rec.OccurrenceCount++
		rec.LastTurnIndex = state.TurnIndex

		accepted.Objections = append(accepted.Objections, AcceptedObjection{
			Type: t, Occurrence: rec.OccurrenceCount,
		})
	}

	return accepted, ignored
}
