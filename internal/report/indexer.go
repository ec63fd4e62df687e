// internal/report/indexer.go
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"coldcall-backend/internal/common/database"
	commonerrors "coldcall-backend/internal/common/errors"
	"coldcall-backend/internal/common/logger"
	"coldcall-backend/internal/engine"
)

// TraceDocument is the shape indexed per session: the whole per-turn
// trace plus the outcome, searchable by label and end reason.
type TraceDocument struct {
	SessionID string              `json:"sessionId"`
	EndReason string              `json:"endReason"`
	Score     float64             `json:"score"`
	Label     string              `json:"label"`
	Turns     int                 `json:"turns"`
	Trace     []engine.TraceEntry `json:"trace"`
	IndexedAt time.Time           `json:"indexedAt"`
}

// Indexer writes decision traces to Elasticsearch for offline analysis.
type Indexer struct {
	es     *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewIndexer(es *database.ElasticsearchClient, index string, log logger.Logger) *Indexer {
	return &Indexer{
		es:    es,
		index: index,
		logger: log.WithFields(map[string]interface{}{
			"component": "trace-indexer",
		}),
	}
}

// IndexTrace indexes one completed session, keyed by session ID so
// retries overwrite rather than duplicate.
func (i *Indexer) IndexTrace(ctx context.Context, state *engine.State, outcome *engine.Outcome) error {
	doc := TraceDocument{
		SessionID: state.SessionID,
		EndReason: string(outcome.EndReason),
		Score:     outcome.Score,
		Label:     outcome.Label,
		Turns:     outcome.Turns,
		Trace:     state.Trace,
		IndexedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return commonerrors.NewTraceIndexFailedError(err)
	}

	res, err := i.es.Client.Index(
		i.index,
		bytes.NewReader(payload),
		i.es.Client.Index.WithContext(ctx),
		i.es.Client.Index.WithDocumentID(state.SessionID),
	)
	if err != nil {
		i.logger.Error("trace index failed", map[string]interface{}{
			"sessionId": state.SessionID,
			"error":     err.Error(),
		})
		return commonerrors.NewTraceIndexFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		err := fmt.Errorf("index response: %s", res.Status())
		i.logger.Error("trace index rejected", map[string]interface{}{
			"sessionId": state.SessionID,
			"status":    res.Status(),
		})
		return commonerrors.NewTraceIndexFailedError(err)
	}

	i.logger.Debug("trace indexed", map[string]interface{}{
		"sessionId": state.SessionID,
		"index":     i.index,
		"turns":     outcome.Turns,
	})
	return nil
}
