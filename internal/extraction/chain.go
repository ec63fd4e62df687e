// internal/extraction/chain.go
package extraction

import (
	"context"

	"coldcall-backend/internal/common/logger"
	"coldcall-backend/internal/common/metrics"
	"coldcall-backend/internal/engine"
)

// Chain tries the LLM extractor first and falls back to rules on any
// failure or a result the gate could never accept. ForceRuleBased skips
// the LLM entirely, which keeps evals and tests deterministic and free.
type Chain struct {
	llm            Extractor
	rules          Extractor
	forceRuleBased bool
	cfg            engine.Config
	logger         logger.Logger
}

// NewChain composes the extractors. cfg supplies the gate's confidence
// floors so the chain can tell a usable LLM result from a dead one.
func NewChain(llm Extractor, rules Extractor, forceRuleBased bool, cfg engine.Config, log logger.Logger) *Chain {
	return &Chain{
		llm:            llm,
		rules:          rules,
		forceRuleBased: forceRuleBased,
		cfg:            cfg,
		logger: log.WithFields(map[string]interface{}{
			"component": "extraction-chain",
		}),
	}
}

func (c *Chain) Extract(ctx context.Context, req *Request) (engine.Signals, error) {
	if c.forceRuleBased || c.llm == nil {
		return c.rules.Extract(ctx, req)
	}

	sig, err := c.llm.Extract(ctx, req)
	if err != nil {
		c.logger.Warn("llm extraction failed, using rule-based", map[string]interface{}{
			"sessionId": req.SessionID,
			"error":     err.Error(),
		})
		metrics.ExtractionFallbacks.WithLabelValues("error").Inc()
		return c.rules.Extract(ctx, req)
	}

	// An LLM result with nothing the gate could accept, whether empty or
	// all sub-floor, is as good as no result; the rules get a second
	// opinion before the candidates are silently dropped.
	if !c.usable(sig) {
		fallback, _ := c.rules.Extract(ctx, req)
		if len(fallback.SlotFills) > 0 || len(fallback.Objections) > 0 || fallback.EndOfCall {
			cause := "empty"
			if len(sig.SlotFills) > 0 || len(sig.Objections) > 0 {
				cause = "below_floor"
			}
			metrics.ExtractionFallbacks.WithLabelValues(cause).Inc()
			return fallback, nil
		}
	}

	return sig, nil
}

// usable reports whether at least one candidate clears the gate floor
// it will be judged against.
func (c *Chain) usable(sig engine.Signals) bool {
	if sig.EndOfCall {
		return true
	}
	for _, f := range sig.SlotFills {
		if f.Confidence >= c.cfg.MinConfidence {
			return true
		}
	}
	for _, o := range sig.Objections {
		if o.Confidence >= c.cfg.ObjectionMinConfidence {
			return true
		}
	}
	return false
}
