// internal/report/pipeline_test.go
package report

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"coldcall-backend/internal/common/logger"
	"coldcall-backend/internal/engine"
)

type stubSink struct {
	inserts int
	indexes int
	notifs  int
	err     error
}

func (s *stubSink) InsertReport(_ context.Context, _ *engine.Outcome) error {
	s.inserts++
	return s.err
}

func (s *stubSink) IndexTrace(_ context.Context, _ *engine.State, _ *engine.Outcome) error {
	s.indexes++
	return s.err
}

func (s *stubSink) NotifyOutcome(_ context.Context, _ *engine.Outcome) error {
	s.notifs++
	return s.err
}

func TestPipeline_RunsAllSinks(t *testing.T) {
	sink := &stubSink{}
	p := &Pipeline{
		reports:  sink,
		indexer:  sink,
		notifier: sink,
		logger:   logger.NewTestLogger(t),
	}

	state, outcome := endedState()
	p.Finalize(context.Background(), state, outcome)

	assert.Equal(t, 1, sink.inserts)
	assert.Equal(t, 1, sink.indexes)
	assert.Equal(t, 1, sink.notifs)
}

// A failing sink must not stop the others.
func TestPipeline_SinkFailureDoesNotAbort(t *testing.T) {
	failing := &stubSink{err: errors.New("db down")}
	healthy := &stubSink{}
	p := &Pipeline{
		reports:  failing,
		indexer:  healthy,
		notifier: healthy,
		logger:   logger.NewTestLogger(t),
	}

	state, outcome := endedState()
	p.Finalize(context.Background(), state, outcome)

	assert.Equal(t, 1, failing.inserts)
	assert.Equal(t, 1, healthy.indexes)
	assert.Equal(t, 1, healthy.notifs)
}

func TestPipeline_NilSinksAreSkipped(t *testing.T) {
	p := NewPipeline(nil, nil, nil, logger.NewTestLogger(t))

	state, outcome := endedState()
	// Must not panic with no sinks configured.
	p.Finalize(context.Background(), state, outcome)
}
