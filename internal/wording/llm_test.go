// internal/wording/llm_test.go
package wording

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldcall-backend/internal/common/logger"
	"coldcall-backend/internal/engine"
)

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	resp := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]interface{}{"content": content}},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func newTestLLM(t *testing.T, url string) *LLM {
	t.Helper()
	return NewLLM(&LLMConfig{
		BaseURL:    url,
		APIKey:     "test-key",
		Model:      "test-model",
		Timeout:    2 * time.Second,
		MaxRetries: 2,
	}, logger.NewTestLogger(t))
}

func TestLLM_Render(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		payload := string(body)
		assert.Contains(t, payload, "Slot to ask: budget")
		assert.Contains(t, payload, "PREVIOUS reply")

		chatReply(t, w, `{"response":"Good to know. Do you have budget set aside for this?"}`)
	}))
	defer server.Close()

	text, err := newTestLLM(t, server.URL).Render(context.Background(), &Request{
		SessionID:     "s1",
		Action:        engine.Action{Type: engine.ActionAskSlot, Slot: engine.SlotBudget},
		KnownFields:   map[string]string{"pain": "manual outreach"},
		LastAgentText: "What's your biggest challenge?",
		LastUserText:  "Everything is manual today.",
		TurnIndex:     2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Good to know. Do you have budget set aside for this?", text)
}

func TestLLM_AlternateResponseKeys(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"text key", `{"text":"Fair enough, when works better?"}`, "Fair enough, when works better?"},
		{"reply key", `{"reply":"Totally get it, thanks for your time!"}`, "Totally get it, thanks for your time!"},
		{"unknown long key", `{"utterance":"That makes sense, who signs off on tools?"}`, "That makes sense, who signs off on tools?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				chatReply(t, w, tt.content)
			}))
			defer server.Close()

			text, err := newTestLLM(t, server.URL).Render(context.Background(), &Request{
				Action: engine.Action{Type: engine.ActionClose},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestLLM_NonJSONContentFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, "Sure, here's a reply for you!")
	}))
	defer server.Close()

	_, err := newTestLLM(t, server.URL).Render(context.Background(), &Request{
		Action: engine.Action{Type: engine.ActionClose},
	})
	assert.ErrorIs(t, err, ErrWordingFailed)
}

func TestLLM_EmptyJSONFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, `{}`)
	}))
	defer server.Close()

	_, err := newTestLLM(t, server.URL).Render(context.Background(), &Request{
		Action: engine.Action{Type: engine.ActionClose},
	})
	assert.ErrorIs(t, err, ErrWordingFailed)
}

func TestLLM_RetriesOnServerError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		chatReply(t, w, `{"response":"Appreciate the time, talk soon!"}`)
	}))
	defer server.Close()

	text, err := newTestLLM(t, server.URL).Render(context.Background(), &Request{
		Action: engine.Action{Type: engine.ActionEnd},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "Appreciate the time, talk soon!", text)
}

func TestLLM_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		chatReply(t, w, `{"response":"too late"}`)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestLLM(t, server.URL).Render(ctx, &Request{
		Action: engine.Action{Type: engine.ActionClose},
	})
	assert.ErrorIs(t, err, ErrLLMTimeout)
}
