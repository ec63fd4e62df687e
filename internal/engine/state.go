// internal/engine/state.go
package engine

// TraceEntry is one turn's audit record. The trace is append-only and
// answers "why did the agent do X on turn N?".
type TraceEntry struct {
	TurnIndex        int             `json:"turnIndex"`
	UserText         string          `json:"userText,omitempty"`
	AgentText        string          `json:"agentText,omitempty"`
	Accepted         AcceptedSignals `json:"accepted"`
	Ignored          []IgnoredSignal `json:"ignored,omitempty"`
	Action           Action          `json:"action"`
	Score            float64         `json:"score"`
	Label            string          `json:"label"`
	ExtractionSource string          `json:"extractionSource,omitempty"`
	WordingSource    string          `json:"wordingSource,omitempty"`
}

// State is the full qualification state of one call. It is owned by the
// session layer, mutated exclusively by the engine one turn at a time,
// and becomes immutable once Ended is set.
type State struct {
	SessionID             string                             `json:"sessionId"`
	Slots                 map[Slot]*SlotValue                `json:"slots"`
	Objections            map[ObjectionType]*ObjectionRecord `json:"objections"`
	TurnIndex             int                                `json:"turnIndex"`
	LastAskedSlot         Slot                               `json:"lastAskedSlot,omitempty"`
	ConsecutiveCloseTurns int                                `json:"consecutiveCloseTurns"`
	Ended                 bool                               `json:"ended"`
	EndReason             EndReason                          `json:"endReason,omitempty"`
	Trace                 []TraceEntry                       `json:"trace"`
}

// NewState creates an empty state with all five slots present, unfilled.
func NewState(sessionID string) *State {
	slots := make(map[Slot]*SlotValue, len(AllSlots()))
	for _, s := range AllSlots() {
		slots[s] = &SlotValue{}
	}
	return &State{
		SessionID:  sessionID,
		Slots:      slots,
		Objections: make(map[ObjectionType]*ObjectionRecord),
	}
}

// Slot returns the slot value, tolerating deserialized states that are
// missing a key.
func (s *State) Slot(k Slot) *SlotValue {
	if v, ok := s.Slots[k]; ok {
		return v
	}
	v := &SlotValue{}
	if s.Slots == nil {
		s.Slots = make(map[Slot]*SlotValue)
	}
	s.Slots[k] = v
	return v
}

// FilledSlots returns the filled slot names in canonical order.
func (s *State) FilledSlots() []Slot {
	var out []Slot
	for _, k := range AllSlots() {
		if s.Slot(k).Filled() {
			out = append(out, k)
		}
	}
	return out
}

// MissingSlots returns the unfilled slot names in the given priority order.
func (s *State) MissingSlots(priority []Slot) []Slot {
	var out []Slot
	for _, k := range priority {
		if !s.Slot(k).Filled() {
			out = append(out, k)
		}
	}
	return out
}

// LastTrace returns the most recent trace entry, or nil for a fresh state.
// The session layer uses it to attach the rendered agent text.
func (s *State) LastTrace() *TraceEntry {
	if len(s.Trace) == 0 {
		return nil
	}
	return &s.Trace[len(s.Trace)-1]
}
