// internal/wording/renderer.go

// Package wording renders the engine's chosen action into the agent's
// actual utterance. The template renderer is deterministic and always
// succeeds; the LLM renderer produces more natural phrasing and falls
// back to templates through Chain.
package wording

import (
	"context"

	"coldcall-backend/internal/engine"
)

const (
	SourceTemplate = "template"
	SourceLLM      = "llm"
)

// DefaultOpener is the agent's first line of a new call.
const DefaultOpener = "Hi, this is Alex from Roister. I know this is out of the blue, " +
	"but we help sales teams cut down manual outbound work. Do you have a quick minute?"

// Request carries the action plus the state context a renderer needs.
type Request struct {
	SessionID     string            `json:"sessionId"`
	Action        engine.Action     `json:"action"`
	KnownFields   map[string]string `json:"knownFields,omitempty"`
	Objections    []string          `json:"objections,omitempty"`
	LastAgentText string            `json:"lastAgentText,omitempty"`
	LastUserText  string            `json:"lastUserText,omitempty"`
	TurnIndex     int               `json:"turnIndex"`
}

// Renderer turns an action into agent text.
type Renderer interface {
	Render(ctx context.Context, req *Request) (string, error)
}
