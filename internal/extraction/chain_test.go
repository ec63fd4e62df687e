// internal/extraction/chain_test.go
package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldcall-backend/internal/common/logger"
	"coldcall-backend/internal/engine"
)

type stubExtractor struct {
	sig engine.Signals
	err error
}

func (s *stubExtractor) Extract(_ context.Context, _ *Request) (engine.Signals, error) {
	return s.sig, s.err
}

func TestChain_ForceRuleBasedSkipsLLM(t *testing.T) {
	llm := &stubExtractor{err: errors.New("should not be called")}
	chain := NewChain(llm, NewRuleBased(), true, engine.DefaultConfig(), logger.NewTestLogger(t))

	sig, err := chain.Extract(context.Background(), &Request{UserText: "we're 40 people"})
	require.NoError(t, err)
	assert.Equal(t, SourceRuleBased, sig.Source)
	require.Len(t, sig.SlotFills, 1)
}

func TestChain_FallsBackOnLLMError(t *testing.T) {
	llm := &stubExtractor{err: ErrLLMCallFailed}
	chain := NewChain(llm, NewRuleBased(), false, engine.DefaultConfig(), logger.NewTestLogger(t))

	sig, err := chain.Extract(context.Background(), &Request{UserText: "not interested"})
	require.NoError(t, err)
	assert.Equal(t, SourceRuleBased, sig.Source)
	require.Len(t, sig.Objections, 1)
}

func TestChain_PrefersLLMResult(t *testing.T) {
	llm := &stubExtractor{sig: engine.Signals{
		Source: SourceLLM,
		SlotFills: []engine.SlotCandidate{
			{Slot: "budget", Value: "20k", Confidence: 0.9},
		},
	}}
	chain := NewChain(llm, NewRuleBased(), false, engine.DefaultConfig(), logger.NewTestLogger(t))

	sig, err := chain.Extract(context.Background(), &Request{UserText: "budget is around 20k"})
	require.NoError(t, err)
	assert.Equal(t, SourceLLM, sig.Source)
	assert.Equal(t, "20k", sig.SlotFills[0].Value)
}

func TestChain_EmptyLLMResultGetsSecondOpinion(t *testing.T) {
	llm := &stubExtractor{sig: engine.Signals{Source: SourceLLM}}
	chain := NewChain(llm, NewRuleBased(), false, engine.DefaultConfig(), logger.NewTestLogger(t))

	sig, err := chain.Extract(context.Background(), &Request{UserText: "we're 25 people"})
	require.NoError(t, err)
	assert.Equal(t, SourceRuleBased, sig.Source)
	require.Len(t, sig.SlotFills, 1)
}

// Candidates below the gate floor are as lost as no candidates at all,
// so they trigger the same second opinion.
func TestChain_SubFloorLLMResultGetsSecondOpinion(t *testing.T) {
	llm := &stubExtractor{sig: engine.Signals{
		Source: SourceLLM,
		SlotFills: []engine.SlotCandidate{
			{Slot: "company_size", Value: "25", Confidence: 0.1},
		},
	}}
	chain := NewChain(llm, NewRuleBased(), false, engine.DefaultConfig(), logger.NewTestLogger(t))

	sig, err := chain.Extract(context.Background(), &Request{UserText: "we're 25 people"})
	require.NoError(t, err)
	assert.Equal(t, SourceRuleBased, sig.Source)
	require.Len(t, sig.SlotFills, 1)
	assert.Equal(t, "25", sig.SlotFills[0].Value)
	assert.Equal(t, 0.7, sig.SlotFills[0].Confidence)
}

// A sub-floor objection does not mask an end-of-call flag, and a result
// with one accepted-quality candidate is kept as is.
func TestChain_OneUsableCandidateKeepsLLMResult(t *testing.T) {
	llm := &stubExtractor{sig: engine.Signals{
		Source: SourceLLM,
		SlotFills: []engine.SlotCandidate{
			{Slot: "pain", Value: "slow outbound", Confidence: 0.6},
			{Slot: "company_size", Value: "25", Confidence: 0.1},
		},
	}}
	chain := NewChain(llm, NewRuleBased(), false, engine.DefaultConfig(), logger.NewTestLogger(t))

	sig, err := chain.Extract(context.Background(), &Request{UserText: "we're 25 people"})
	require.NoError(t, err)
	assert.Equal(t, SourceLLM, sig.Source)
	require.Len(t, sig.SlotFills, 2)
}

func TestChain_EmptyOnBothSidesStaysLLM(t *testing.T) {
	llm := &stubExtractor{sig: engine.Signals{Source: SourceLLM}}
	chain := NewChain(llm, NewRuleBased(), false, engine.DefaultConfig(), logger.NewTestLogger(t))

	sig, err := chain.Extract(context.Background(), &Request{UserText: "hm, okay"})
	require.NoError(t, err)
	assert.Equal(t, SourceLLM, sig.Source)
	assert.Empty(t, sig.SlotFills)
}
