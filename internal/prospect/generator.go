// internal/prospect/generator.go

// Package prospect simulates the other side of the call. In llm mode a
// persona-driven model plays the prospect; the scripted generator is the
// deterministic fallback and the whole of scripted mode.
package prospect

import "context"

const (
	SourceScripted = "scripted"
	SourceLLM      = "llm"
)

// Request carries the conversation context the generator replies to.
type Request struct {
	SessionID   string            `json:"sessionId"`
	AgentText   string            `json:"agentText"`
	TurnIndex   int               `json:"turnIndex"`
	KnownFields map[string]string `json:"knownFields,omitempty"`
	Objections  []string          `json:"objections,omitempty"`
}

// Generator produces the prospect's next utterance.
type Generator interface {
	NextUtterance(ctx context.Context, req *Request) (string, error)
}
