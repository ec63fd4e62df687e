// internal/report/pipeline.go
package report

import (
	"context"

	"coldcall-backend/internal/common/logger"
	"coldcall-backend/internal/engine"
)

type reportStore interface {
	InsertReport(ctx context.Context, outcome *engine.Outcome) error
}

type traceIndexer interface {
	IndexTrace(ctx context.Context, state *engine.State, outcome *engine.Outcome) error
}

type leadNotifier interface {
	NotifyOutcome(ctx context.Context, outcome *engine.Outcome) error
}

// Pipeline runs the post-call sinks. Each sink failure is logged and
// swallowed: a broken report path must never fail the call itself.
// Any sink may be nil.
type Pipeline struct {
	reports  reportStore
	indexer  traceIndexer
	notifier leadNotifier
	logger   logger.Logger
}

func NewPipeline(reports *Repository, indexer *Indexer, notifier *Notifier, log logger.Logger) *Pipeline {
	p := &Pipeline{
		logger: log.WithFields(map[string]interface{}{
			"component": "report-pipeline",
		}),
	}
	// Typed nils must not end up behind non-nil interfaces.
	if reports != nil {
		p.reports = reports
	}
	if indexer != nil {
		p.indexer = indexer
	}
	if notifier != nil {
		p.notifier = notifier
	}
	return p
}

// Finalize fans the ended session out to every configured sink.
func (p *Pipeline) Finalize(ctx context.Context, state *engine.State, outcome *engine.Outcome) {
	if p.reports != nil {
		if err := p.reports.InsertReport(ctx, outcome); err != nil {
			p.logger.Error("report sink failed", map[string]interface{}{
				"sessionId": outcome.SessionID,
				"error":     err.Error(),
			})
		}
	}

	if p.indexer != nil {
		if err := p.indexer.IndexTrace(ctx, state, outcome); err != nil {
			p.logger.Error("trace sink failed", map[string]interface{}{
				"sessionId": outcome.SessionID,
				"error":     err.Error(),
			})
		}
	}

	if p.notifier != nil {
		if err := p.notifier.NotifyOutcome(ctx, outcome); err != nil {
			p.logger.Error("notify sink failed", map[string]interface{}{
				"sessionId": outcome.SessionID,
				"error":     err.Error(),
			})
		}
	}
}
