// internal/prospect/chain.go
package prospect

import (
	"context"

	"coldcall-backend/internal/common/logger"
)

// Chain tries the LLM prospect and falls back to the scripted lines, so
// prospect mode keeps working when the model is down.
type Chain struct {
	llm      Generator
	scripted Generator
	logger   logger.Logger
}

func NewChain(llm Generator, scripted Generator, log logger.Logger) *Chain {
	return &Chain{
		llm:      llm,
		scripted: scripted,
		logger: log.WithFields(map[string]interface{}{
			"component": "prospect-chain",
		}),
	}
}

// NextWithSource generates the utterance and reports which generator
// produced it.
func (c *Chain) NextWithSource(ctx context.Context, req *Request) (string, string) {
	if c.llm != nil {
		text, err := c.llm.NextUtterance(ctx, req)
		if err == nil {
			return text, SourceLLM
		}
		c.logger.Warn("llm prospect failed, using scripted line", map[string]interface{}{
			"sessionId": req.SessionID,
			"turn":      req.TurnIndex,
			"error":     err.Error(),
		})
	}

	text, _ := c.scripted.NextUtterance(ctx, req)
	return text, SourceScripted
}

func (c *Chain) NextUtterance(ctx context.Context, req *Request) (string, error) {
	text, _ := c.NextWithSource(ctx, req)
	return text, nil
}

var _ Generator = (*Chain)(nil)
