// internal/wording/chain.go
package wording

import (
	"context"

	"coldcall-backend/internal/common/logger"
)

// Chain tries LLM wording first and falls back to templates on any
// failure. Templates never fail, so the chain never does either.
type Chain struct {
	llm       Renderer
	templates Renderer
	logger    logger.Logger
}

// NewChain builds the renderer used by the session layer. A nil llm
// makes the chain purely template-based.
func NewChain(llm Renderer, templates Renderer, log logger.Logger) *Chain {
	return &Chain{
		llm:       llm,
		templates: templates,
		logger: log.WithFields(map[string]interface{}{
			"component": "wording-chain",
		}),
	}
}

// RenderWithSource renders the action and reports which renderer
// produced the text.
func (c *Chain) RenderWithSource(ctx context.Context, req *Request) (string, string) {
	if c.llm != nil {
		text, err := c.llm.Render(ctx, req)
		if err == nil {
			return text, SourceLLM
		}
		c.logger.Warn("llm wording failed, using template", map[string]interface{}{
			"sessionId": req.SessionID,
			"error":     err.Error(),
		})
	}

	text, _ := c.templates.Render(ctx, req)
	return text, SourceTemplate
}

func (c *Chain) Render(ctx context.Context, req *Request) (string, error) {
	text, _ := c.RenderWithSource(ctx, req)
	return text, nil
}

var _ Renderer = (*Templates)(nil)
var _ Renderer = (*Chain)(nil)
