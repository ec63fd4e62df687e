// internal/extraction/extractor.go

// Package extraction turns raw prospect utterances into candidate signals
// for the turn engine. Two extractors exist: a deterministic rule-based
// one and an LLM-backed one, composed by Chain with automatic fallback.
// The engine's gate is the sole authority on what gets accepted; the
// extractors only propose.
package extraction

import (
	"context"

	"coldcall-backend/internal/engine"
)

const (
	SourceRuleBased = "rule_based"
	SourceLLM       = "llm"
)

// Request carries the utterance plus the state context an extractor may
// use to disambiguate.
type Request struct {
	SessionID     string            `json:"sessionId"`
	UserText      string            `json:"userText"`
	TurnIndex     int               `json:"turnIndex"`
	LastAskedSlot string            `json:"lastAskedSlot,omitempty"`
	KnownFields   map[string]string `json:"knownFields,omitempty"`
}

// Extractor produces candidate signals from one utterance.
type Extractor interface {
	Extract(ctx context.Context, req *Request) (engine.Signals, error)
}
