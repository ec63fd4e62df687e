// internal/engine/decision_test.go
package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runQualified walks a session through all five slots, answering exactly
// what was asked each turn.
func runQualified(t *testing.T, e *Engine, state *State) *TurnResult {
	t.Helper()
	res, err := e.ProcessTurn(state, Signals{})
	require.NoError(t, err)
	for res.Action.Type == ActionAskSlot {
		res, err = e.ProcessTurn(state, fill(res.Action.Slot, "answered", 0.8))
		require.NoError(t, err)
	}
	return res
}

func TestDecide_AsksSlotsInPriorityOrder(t *testing.T) {
	e := newTestEngine(t)
	state := NewState("s1")

	var asked []Slot
	res, err := e.ProcessTurn(state, Signals{})
	require.NoError(t, err)
	for res.Action.Type == ActionAskSlot {
		asked = append(asked, res.Action.Slot)
		assert.Equal(t, res.Action.Slot, state.LastAskedSlot)
		res, err = e.ProcessTurn(state, fill(res.Action.Slot, "answered", 0.8))
		require.NoError(t, err)
	}

	assert.Equal(t, []Slot{SlotPain, SlotBudget, SlotAuthority, SlotTimeline, SlotCompanySize}, asked)
	assert.Equal(t, ActionClose, res.Action.Type)
}

func TestDecide_EndSignalWins(t *testing.T) {
	e := newTestEngine(t)
	state := NewState("s1")

	// End signal outranks a fresh objection and unfilled slots.
	res, err := e.ProcessTurn(state, Signals{
		EndOfCall:  true,
		Objections: []ObjectionCandidate{{Type: "price", Confidence: 0.9}},
	})
	require.NoError(t, err)

	assert.Equal(t, ActionEnd, res.Action.Type)
	assert.Equal(t, EndReasonUserEnded, res.Action.Reason)
	assert.True(t, state.Ended)
	// The objection was still recorded before the decision.
	require.NotNil(t, state.Objections[ObjectionPrice])
}

func TestDecide_TurnLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTurns = 3
	e, err := New(cfg)
	require.NoError(t, err)
	state := NewState("s1")

	var res *TurnResult
	for i := 0; i < 3; i++ {
		res, err = e.ProcessTurn(state, Signals{})
		require.NoError(t, err)
		assert.False(t, res.Ended, "turn %d", i+1)
	}

	res, err = e.ProcessTurn(state, Signals{})
	require.NoError(t, err)
	assert.Equal(t, ActionEnd, res.Action.Type)
	assert.Equal(t, EndReasonTurnLimit, res.Action.Reason)
	assert.True(t, state.Ended)
}

func TestDecide_ObjectionOutranksSlotQuestion(t *testing.T) {
	e := newTestEngine(t)
	state := NewState("s1")

	res, err := e.ProcessTurn(state, Signals{
		Objections: []ObjectionCandidate{{Type: "trust", Confidence: 0.8}},
	})
	require.NoError(t, err)

	assert.Equal(t, ActionHandleObjection, res.Action.Type)
	assert.Equal(t, ObjectionTrust, res.Action.Objection)
	assert.Contains(t, res.Action.ReasonCodes, "OBJECTION_TRUST")
}

func TestDecide_ObjectionPickedByOccurrence(t *testing.T) {
	e := newTestEngine(t)
	state := NewState("s1")

	// First raise price once, then price and trust together. Price is on
	// its second occurrence and wins.
	_, err := e.ProcessTurn(state, Signals{
		Objections: []ObjectionCandidate{{Type: "price", Confidence: 0.8}},
	})
	require.NoError(t, err)

	res, err := e.ProcessTurn(state, Signals{
		Objections: []ObjectionCandidate{
			{Type: "price", Confidence: 0.8},
			{Type: "trust", Confidence: 0.8},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, ObjectionPrice, res.Action.Objection)
}

func TestDecide_ObjectionResetsCloseSequence(t *testing.T) {
	e := newTestEngine(t)
	state := NewState("s1")

	res := runQualified(t, e, state)
	require.Equal(t, ActionClose, res.Action.Type)
	require.Equal(t, 1, state.ConsecutiveCloseTurns)

	res, err := e.ProcessTurn(state, Signals{
		Objections: []ObjectionCandidate{{Type: "timing", Confidence: 0.8}},
	})
	require.NoError(t, err)
	assert.Equal(t, ActionHandleObjection, res.Action.Type)
	assert.Equal(t, 0, state.ConsecutiveCloseTurns)

	// Closing starts over from one.
	res, err = e.ProcessTurn(state, Signals{})
	require.NoError(t, err)
	assert.Equal(t, ActionClose, res.Action.Type)
	assert.Equal(t, 1, state.ConsecutiveCloseTurns)
}

func TestDecide_TwoCloseTurnsEndSession(t *testing.T) {
	e := newTestEngine(t)
	state := NewState("s1")

	res := runQualified(t, e, state)
	require.Equal(t, ActionClose, res.Action.Type)

	res, err := e.ProcessTurn(state, Signals{})
	require.NoError(t, err)
	assert.Equal(t, ActionEnd, res.Action.Type)
	assert.Equal(t, EndReasonClosed, res.Action.Reason)
	assert.Contains(t, res.Action.ReasonCodes, "CLOSED_TWICE")
	assert.True(t, state.Ended)
}

func TestProcessTurn_RejectsEndedSession(t *testing.T) {
	e := newTestEngine(t)
	state := NewState("s1")

	_, err := e.ProcessTurn(state, Signals{EndOfCall: true})
	require.NoError(t, err)
	require.True(t, state.Ended)

	turns := state.TurnIndex
	_, err = e.ProcessTurn(state, Signals{})
	assert.ErrorIs(t, err, ErrSessionEnded)
	assert.Equal(t, turns, state.TurnIndex)
	assert.Len(t, state.Trace, turns)
}

func TestProcessTurn_TraceIsAppendOnly(t *testing.T) {
	e := newTestEngine(t)
	state := NewState("s1")

	inputs := []Signals{
		fill(SlotPain, "manual dialing", 0.8),
		{Objections: []ObjectionCandidate{{Type: "price", Confidence: 0.9}}},
		{UserText: "we should wrap up", EndOfCall: true},
	}
	for _, sig := range inputs {
		_, err := e.ProcessTurn(state, sig)
		require.NoError(t, err)
	}

	require.Len(t, state.Trace, 3)
	for i, entry := range state.Trace {
		assert.Equal(t, i+1, entry.TurnIndex)
	}
	assert.Equal(t, "we should wrap up", state.Trace[2].UserText)
	assert.Len(t, state.Trace[0].Accepted.Fills, 1)
	assert.Len(t, state.Trace[1].Accepted.Objections, 1)
}
