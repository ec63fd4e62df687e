// internal/engine/outcome_test.go
package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOutcome_RequiresEndedSession(t *testing.T) {
	e := newTestEngine(t)
	state := NewState("s1")

	_, err := e.BuildOutcome(state)
	assert.ErrorIs(t, err, ErrNotEnded)
}

func TestBuildOutcome_FullyQualifiedClose(t *testing.T) {
	e := newTestEngine(t)
	state := NewState("s1")

	res := runQualified(t, e, state)
	require.Equal(t, ActionClose, res.Action.Type)
	res, err := e.ProcessTurn(state, Signals{})
	require.NoError(t, err)
	require.True(t, res.Ended)

	out, err := e.BuildOutcome(state)
	require.NoError(t, err)

	assert.Equal(t, "s1", out.SessionID)
	assert.Equal(t, 10.0, out.Score)
	assert.Equal(t, "Strong", out.Label)
	assert.Equal(t, EndReasonClosed, out.EndReason)
	assert.Equal(t, "Schedule demo with decision-maker", out.RecommendedNextAction)
	assert.Equal(t, state.TurnIndex, out.Turns)

	require.Len(t, out.LearnedFields, len(AllSlots()))
	for _, s := range AllSlots() {
		assert.Equal(t, "answered", out.LearnedFields[s])
	}
}

func TestBuildOutcome_NothingLearned(t *testing.T) {
	e := newTestEngine(t)
	state := NewState("s1")

	_, err := e.ProcessTurn(state, Signals{EndOfCall: true})
	require.NoError(t, err)

	out, err := e.BuildOutcome(state)
	require.NoError(t, err)

	assert.Equal(t, 0.0, out.Score)
	assert.Equal(t, "Weak", out.Label)
	assert.Equal(t, "Re-attempt call with revised opener", out.RecommendedNextAction)
	for _, s := range AllSlots() {
		assert.Empty(t, out.LearnedFields[s])
	}
}

func TestBuildOutcome_RecommendedNextAction(t *testing.T) {
	tests := []struct {
		name   string
		slots  []Slot
		reason EndReason
		want   string
	}{
		{"strong user-ended", AllSlots(), EndReasonUserEnded, "Fast-track follow-up call"},
		{"medium at turn limit", []Slot{SlotPain, SlotBudget}, EndReasonTurnLimit, "Schedule discovery call with AE"},
		{"medium user-ended", []Slot{SlotPain, SlotBudget}, EndReasonUserEnded, "Send recap email and book discovery call"},
		{"weak at turn limit", []Slot{SlotCompanySize}, EndReasonTurnLimit, "Disqualify; nurture via email drip"},
		{"weak user-ended", []Slot{SlotCompanySize}, EndReasonUserEnded, "Move to nurture track; re-engage in 60 days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			state := stateWithSlots(tt.slots...)
			state.Ended = true
			state.EndReason = tt.reason

			out, err := e.BuildOutcome(state)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.RecommendedNextAction)
		})
	}
}

func TestBuildOutcome_SummaryMentionsObjections(t *testing.T) {
	e := newTestEngine(t)
	state := stateWithSlots(SlotPain, SlotBudget, SlotAuthority)
	raise(state, ObjectionPrice, 2)
	state.TurnIndex = 6
	state.Ended = true
	state.EndReason = EndReasonUserEnded

	out, err := e.BuildOutcome(state)
	require.NoError(t, err)

	assert.Contains(t, out.Summary, "price")
	assert.Contains(t, out.Summary, "3/5 qualification fields")
	// 7 points of slots minus 1.5 of price penalty.
	assert.Equal(t, 5.5, out.Score)
	assert.Equal(t, "Medium", out.Label)
	assert.InDelta(t, out.Score, sumBreakdown(out.Breakdown), 1e-9)
}

func TestBuildOutcome_DoesNotMutateState(t *testing.T) {
	e := newTestEngine(t)
	state := stateWithSlots(AllSlots()...)
	state.Ended = true
	state.EndReason = EndReasonClosed
	state.TurnIndex = 7
	traceLen := len(state.Trace)

	_, err := e.BuildOutcome(state)
	require.NoError(t, err)
	_, err = e.BuildOutcome(state)
	require.NoError(t, err)

	assert.Equal(t, 7, state.TurnIndex)
	assert.Len(t, state.Trace, traceLen)
}
