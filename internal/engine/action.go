// internal/engine/action.go
package engine

// ActionType enumerates the moves the agent can make.
type ActionType string

const (
	ActionAskSlot         ActionType = "ASK_SLOT"
	ActionHandleObjection ActionType = "HANDLE_OBJECTION"
	ActionClose           ActionType = "CLOSE"
	ActionEnd             ActionType = "END"
)

// EndReason enumerates why a call ended.
type EndReason string

const (
	EndReasonClosed    EndReason = "closed"
	EndReasonUserEnded EndReason = "user_ended"
	EndReasonTurnLimit EndReason = "turn_limit"
)

// Action is the single deterministic instruction produced per turn.
// Slot is set only for ASK_SLOT, Objection only for HANDLE_OBJECTION,
// Reason only for END.
type Action struct {
	Type        ActionType    `json:"type"`
	Slot        Slot          `json:"slot,omitempty"`
	Objection   ObjectionType `json:"objection,omitempty"`
	Reason      EndReason     `json:"reason,omitempty"`
	ReasonCodes []string      `json:"reasonCodes,omitempty"`
}
