// internal/report/indexer_test.go
package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldcall-backend/internal/common/database"
	commonerrors "coldcall-backend/internal/common/errors"
	"coldcall-backend/internal/common/logger"
	"coldcall-backend/internal/engine"
)

func newTestIndexer(t *testing.T, handler http.HandlerFunc) (*Indexer, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{server.URL},
	})
	require.NoError(t, err)

	es := &database.ElasticsearchClient{Client: client}
	return NewIndexer(es, "call-traces", logger.NewTestLogger(t)), server
}

func esReply(w http.ResponseWriter, status int, body string) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func endedState() (*engine.State, *engine.Outcome) {
	state := engine.NewState("s1")
	state.TurnIndex = 3
	state.Ended = true
	state.EndReason = engine.EndReasonUserEnded
	state.Trace = []engine.TraceEntry{
		{TurnIndex: 1, UserText: "hello", Score: 0, Label: "Weak"},
		{TurnIndex: 2, UserText: "we're 50 people", Score: 1, Label: "Weak"},
		{TurnIndex: 3, UserText: "gotta go", Score: 1, Label: "Weak"},
	}
	outcome := &engine.Outcome{
		SessionID: "s1",
		Score:     1.0,
		Label:     "Weak",
		EndReason: engine.EndReasonUserEnded,
		Turns:     3,
	}
	return state, outcome
}

func TestIndexer_IndexTrace(t *testing.T) {
	var captured TraceDocument
	indexer, _ := newTestIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PUT", r.Method)
		assert.Equal(t, "/call-traces/_doc/s1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		esReply(w, http.StatusCreated, `{"result":"created"}`)
	})

	state, outcome := endedState()
	require.NoError(t, indexer.IndexTrace(context.Background(), state, outcome))

	assert.Equal(t, "s1", captured.SessionID)
	assert.Equal(t, "user_ended", captured.EndReason)
	assert.Len(t, captured.Trace, 3)
	assert.False(t, captured.IndexedAt.IsZero())
}

func TestIndexer_ErrorResponse(t *testing.T) {
	indexer, _ := newTestIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		esReply(w, http.StatusServiceUnavailable, `{"error":"unavailable"}`)
	})

	state, outcome := endedState()
	err := indexer.IndexTrace(context.Background(), state, outcome)
	require.Error(t, err)

	stdErr, ok := commonerrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeTraceIndexFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}
