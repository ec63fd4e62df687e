// internal/engine/signals.go
package engine

// SlotCandidate is one candidate slot fill produced by an extractor.
// Slot arrives as a raw string because extractor output is untrusted;
// unknown identifiers are rejected by the gate, never propagated.
type SlotCandidate struct {
	Slot       string  `json:"slot"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	// Correction is set when the utterance carries an explicit
	// correction marker ("actually, we're 200 people").
	Correction bool `json:"correction,omitempty"`
}

// ObjectionCandidate is one candidate objection signal.
type ObjectionCandidate struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// Signals is the merged candidate set for one turn, produced by the
// external extraction chain. The engine trusts none of it unconditionally.
type Signals struct {
	UserText   string               `json:"userText,omitempty"`
	SlotFills  []SlotCandidate      `json:"slotFills,omitempty"`
	Objections []ObjectionCandidate `json:"objections,omitempty"`
	EndOfCall  bool                 `json:"endOfCall,omitempty"`
	Source     string               `json:"source,omitempty"` // "llm" | "rule_based"
}

// AcceptedFill records a slot fill that passed the gate this turn.
type AcceptedFill struct {
	Slot       Slot    `json:"slot"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	// Overwrote is set when the fill replaced an earlier value
	// (safe correction or confidence-margin override).
	Overwrote bool `json:"overwrote,omitempty"`
}

// AcceptedObjection records an objection that passed the gate this turn.
type AcceptedObjection struct {
	Type       ObjectionType `json:"type"`
	Occurrence int           `json:"occurrence"`
}

// RejectReason explains why the gate dropped a candidate.
type RejectReason string

const (
	RejectMalformed        RejectReason = "malformed"
	RejectBelowFloor       RejectReason = "below_floor"
	RejectMisaligned       RejectReason = "misaligned"
	RejectOverwriteBlocked RejectReason = "overwrite_blocked"
)

// IgnoredSignal records a dropped candidate in the trace. Dropping is
// never an error: the turn still produces a valid action.
type IgnoredSignal struct {
	Kind       string       `json:"kind"` // "slot_fill" | "objection"
	Target     string       `json:"target"`
	Value      string       `json:"value,omitempty"`
	Confidence float64      `json:"confidence"`
	Reason     RejectReason `json:"reason"`
}

// AcceptedSignals is everything the gate admitted for one turn.
type AcceptedSignals struct {
	Fills      []AcceptedFill      `json:"fills,omitempty"`
	Objections []AcceptedObjection `json:"objections,omitempty"`
}

// Empty reports whether nothing was admitted.
func (a AcceptedSignals) Empty() bool {
	return len(a.Fills) == 0 && len(a.Objections) == 0
}
