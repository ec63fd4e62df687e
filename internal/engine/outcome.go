// internal/engine/outcome.go
package engine

import (
	"fmt"
	"strings"
)

// Outcome is the final, read-only call report, produced once at session
// end.
type Outcome struct {
	SessionID             string          `json:"sessionId"`
	LearnedFields         map[Slot]string `json:"learnedFields"`
	Score                 float64         `json:"score"`
	Label                 string          `json:"label"`
	Breakdown             []BreakdownItem `json:"breakdown"`
	Summary               string          `json:"summary"`
	RecommendedNextAction string          `json:"recommendedNextAction"`
	EndReason             EndReason       `json:"endReason"`
	Turns                 int             `json:"turns"`
}

// BuildOutcome renders the terminal state into the final report. Calling
// it before the call ended is a sequencing error; state is not touched.
func (e *Engine) BuildOutcome(state *State) (*Outcome, error) {
	if !state.Ended {
		return nil, ErrNotEnded
	}

	score, breakdown := e.Score(state)
	label := e.Label(score)

	learned := make(map[Slot]string, len(AllSlots()))
	for _, s := range AllSlots() {
		learned[s] = state.Slot(s).Value // unfilled slots render empty
	}

	next := recommendedNextAction(label, state.EndReason, state)

	return &Outcome{
		SessionID:             state.SessionID,
		LearnedFields:         learned,
		Score:                 round1(score),
		Label:                 label,
		Breakdown:             breakdown,
		Summary:               buildSummary(state, score, label, next),
		RecommendedNextAction: next,
		EndReason:             state.EndReason,
		Turns:                 state.TurnIndex,
	}, nil
}

// recommendedNextAction is a fixed (label, end reason) lookup, with the
// zero-information case handled first.
func recommendedNextAction(label string, reason EndReason, state *State) string {
	if len(state.FilledSlots()) == 0 {
		return "Re-attempt call with revised opener"
	}

	switch {
	case label == "Strong" && reason == EndReasonClosed:
		return "Schedule demo with decision-maker"
	case label == "Strong":
		return "Fast-track follow-up call"
	case label == "Medium" && reason == EndReasonTurnLimit:
		return "Schedule discovery call with AE"
	case label == "Medium":
		return "Send recap email and book discovery call"
	case reason == EndReasonTurnLimit:
		return "Disqualify; nurture via email drip"
	default:
		return "Move to nurture track; re-engage in 60 days"
	}
}

func buildSummary(state *State, score float64, label, next string) string {
	filled := len(state.FilledSlots())

	parts := []string{
		fmt.Sprintf("Cold-call simulation completed in %d turns (ended: %s).", state.TurnIndex, state.EndReason),
		fmt.Sprintf("Gathered %d/%d qualification fields.", filled, len(AllSlots())),
	}

	if len(state.Objections) > 0 {
		var names []string
		for _, t := range AllObjectionTypes() {
			if rec, ok := state.Objections[t]; ok && rec.OccurrenceCount > 0 {
				names = append(names, string(t))
			}
		}
		parts = append(parts, fmt.Sprintf("Objections encountered: %s.", strings.Join(names, ", ")))
	}

	parts = append(parts,
		fmt.Sprintf("Opportunity rated %q (%.1f/10).", label, score),
		fmt.Sprintf("Recommendation: %s.", next),
	)
	return strings.Join(parts, " ")
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
