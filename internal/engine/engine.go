// internal/engine/engine.go

// Package engine implements the conversation turn engine for the cold-call
// simulator: the pure state-transition, scoring, and decision logic that
// turns one turn's extracted signals into an updated qualification state,
// an explainable score, and a single deterministic action. The engine
// performs no I/O; extraction and wording are resolved by the caller.
package engine

import "errors"

var (
	// ErrSessionEnded is returned for a turn submitted after the call
	// ended. State is left unchanged.
	ErrSessionEnded = errors.New("SESSION_ENDED")
	// ErrNotEnded is returned when the outcome is requested before the
	// call ended.
	ErrNotEnded = errors.New("OUTCOME_NOT_READY")
)

// Engine evaluates turns against a validated configuration. It holds no
// per-session state and is safe to share across sessions.
type Engine struct {
	cfg Config
}

// New validates cfg and constructs an engine. Configuration errors are
// fatal here, before any session starts.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// TurnResult is everything one processed turn produced.
type TurnResult struct {
	Action    Action          `json:"action"`
	Score     float64         `json:"score"`
	Label     string          `json:"label"`
	Breakdown []BreakdownItem `json:"breakdown"`
	Accepted  AcceptedSignals `json:"accepted"`
	Ignored   []IgnoredSignal `json:"ignored,omitempty"`
	Ended     bool            `json:"ended"`
	EndReason EndReason       `json:"endReason,omitempty"`
}

// ProcessTurn runs one full turn: gate the candidate signals into state,
// recompute the score, decide the next action, and append a trace entry.
// The only error case is a turn submitted after the call ended; malformed
// signals are dropped and recorded, never fatal.
func (e *Engine) ProcessTurn(state *State, sig Signals) (*TurnResult, error) {
	if state.Ended {
		return nil, ErrSessionEnded
	}

	state.TurnIndex++

	accepted, ignored := e.gate(state, sig)
	score, breakdown := e.Score(state)
	action := e.decide(state, sig, accepted)

	res := &TurnResult{
		Action:    action,
		Score:     score,
		Label:     e.Label(score),
		Breakdown: breakdown,
		Accepted:  accepted,
		Ignored:   ignored,
		Ended:     state.Ended,
		EndReason: state.EndReason,
	}

	state.Trace = append(state.Trace, TraceEntry{
		TurnIndex:        state.TurnIndex,
		UserText:         sig.UserText,
		Accepted:         accepted,
		Ignored:          ignored,
		Action:           action,
		Score:            score,
		Label:            res.Label,
		ExtractionSource: sig.Source,
	})

	return res, nil
}
