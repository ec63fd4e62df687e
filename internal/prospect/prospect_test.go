// internal/prospect/prospect_test.go
package prospect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldcall-backend/internal/common/logger"
)

func TestScripted_WalksThroughLinesAndClamps(t *testing.T) {
	s := NewScripted()

	first, err := s.NextUtterance(context.Background(), &Request{TurnIndex: 0})
	require.NoError(t, err)
	assert.Contains(t, first, "I have a minute")

	second, err := s.NextUtterance(context.Background(), &Request{TurnIndex: 1})
	require.NoError(t, err)
	assert.Contains(t, second, "50 people")

	past, err := s.NextUtterance(context.Background(), &Request{TurnIndex: 99})
	require.NoError(t, err)
	assert.Equal(t, scriptedLines[len(scriptedLines)-1], past)

	negative, err := s.NextUtterance(context.Background(), &Request{TurnIndex: -1})
	require.NoError(t, err)
	assert.Equal(t, scriptedLines[0], negative)
}

func TestPickPersona_DeterministicPerSession(t *testing.T) {
	a := PickPersona("session-abc")
	b := PickPersona("session-abc")
	assert.Equal(t, a, b)

	// With 8 personas, 20 distinct sessions should hit more than one.
	seen := map[string]bool{}
	for _, id := range []string{
		"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10",
		"s11", "s12", "s13", "s14", "s15", "s16", "s17", "s18", "s19", "s20",
	} {
		seen[PickPersona(id).Description] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestLLM_NextUtterance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var payload struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Messages, 2)
		assert.Contains(t, payload.Messages[0].Content, "Your persona:")
		assert.Contains(t, payload.Messages[1].Content, "Agent just said:")
		assert.Contains(t, payload.Messages[1].Content, "Already revealed:")

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{
					"content": `{"response":"We're 35 people, outbound is all manual."}`,
				}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	llm := NewLLM(&LLMConfig{
		BaseURL:    server.URL,
		Model:      "test-model",
		Timeout:    2 * time.Second,
		MaxRetries: 1,
	}, logger.NewTestLogger(t))

	text, err := llm.NextUtterance(context.Background(), &Request{
		SessionID:   "s1",
		AgentText:   "How big is your team?",
		TurnIndex:   1,
		KnownFields: map[string]string{"pain": "7/10"},
	})
	require.NoError(t, err)
	assert.Equal(t, "We're 35 people, outbound is all manual.", text)
}

func TestLLM_FailureAfterRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	llm := NewLLM(&LLMConfig{
		BaseURL:    server.URL,
		Model:      "test-model",
		Timeout:    time.Second,
		MaxRetries: 1,
	}, logger.NewTestLogger(t))

	_, err := llm.NextUtterance(context.Background(), &Request{SessionID: "s1"})
	assert.ErrorIs(t, err, ErrProspectFailed)
}

type stubGenerator struct {
	text string
	err  error
}

func (s *stubGenerator) NextUtterance(_ context.Context, _ *Request) (string, error) {
	return s.text, s.err
}

func TestChain_PrefersLLM(t *testing.T) {
	chain := NewChain(&stubGenerator{text: "llm reply"}, NewScripted(), logger.NewTestLogger(t))

	text, source := chain.NextWithSource(context.Background(), &Request{TurnIndex: 0})
	assert.Equal(t, "llm reply", text)
	assert.Equal(t, SourceLLM, source)
}

func TestChain_FallsBackToScripted(t *testing.T) {
	chain := NewChain(&stubGenerator{err: ErrProspectFailed}, NewScripted(), logger.NewTestLogger(t))

	text, source := chain.NextWithSource(context.Background(), &Request{TurnIndex: 1})
	assert.Equal(t, SourceScripted, source)
	assert.Contains(t, text, "50 people")
}

func TestChain_NilLLMIsScriptedOnly(t *testing.T) {
	chain := NewChain(nil, NewScripted(), logger.NewTestLogger(t))

	text, source := chain.NextWithSource(context.Background(), &Request{TurnIndex: 0})
	assert.Equal(t, SourceScripted, source)
	assert.NotEmpty(t, text)
}
