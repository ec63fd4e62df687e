// internal/wording/chain_test.go
package wording

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldcall-backend/internal/common/logger"
	"coldcall-backend/internal/engine"
)

type stubRenderer struct {
	text string
	err  error
}

func (s *stubRenderer) Render(_ context.Context, _ *Request) (string, error) {
	return s.text, s.err
}

func TestChain_PrefersLLM(t *testing.T) {
	chain := NewChain(&stubRenderer{text: "llm wording"}, NewTemplates(), logger.NewTestLogger(t))

	text, source := chain.RenderWithSource(context.Background(), &Request{
		Action: engine.Action{Type: engine.ActionClose},
	})
	assert.Equal(t, "llm wording", text)
	assert.Equal(t, SourceLLM, source)
}

func TestChain_FallsBackToTemplates(t *testing.T) {
	chain := NewChain(&stubRenderer{err: ErrWordingFailed}, NewTemplates(), logger.NewTestLogger(t))

	text, source := chain.RenderWithSource(context.Background(), &Request{
		Action: engine.Action{Type: engine.ActionAskSlot, Slot: engine.SlotPain},
	})
	assert.Equal(t, SourceTemplate, source)
	assert.Contains(t, text, "challenge")
}

func TestChain_NilLLMIsTemplateOnly(t *testing.T) {
	chain := NewChain(nil, NewTemplates(), logger.NewTestLogger(t))

	text, source := chain.RenderWithSource(context.Background(), &Request{
		Action: engine.Action{Type: engine.ActionClose},
	})
	assert.Equal(t, SourceTemplate, source)
	assert.NotEmpty(t, text)
}

func TestChain_RenderNeverFails(t *testing.T) {
	chain := NewChain(&stubRenderer{err: ErrLLMTimeout}, NewTemplates(), logger.NewTestLogger(t))

	text, err := chain.Render(context.Background(), &Request{
		Action: engine.Action{Type: engine.ActionEnd, ReasonCodes: []string{"USER_ENDED"}},
	})
	require.NoError(t, err)
	assert.Contains(t, text, "Thanks for taking the time")
}
