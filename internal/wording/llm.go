// internal/wording/llm.go
package wording

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"coldcall-backend/internal/common/logger"
)

var (
	ErrWordingFailed = errors.New("WORDING_FAILED")
	ErrLLMTimeout    = errors.New("LLM_TIMEOUT")
)

type LLMConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// LLM renders agent utterances via an OpenAI-compatible chat API.
// Failures are returned to the caller; Chain handles the template
// fallback.
type LLM struct {
	config *LLMConfig
	client *http.Client
	logger logger.Logger
}

func NewLLM(config *LLMConfig, log logger.Logger) *LLM {
	return &LLM{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: log.WithFields(map[string]interface{}{
			"component": "llm-wording",
		}),
	}
}

const wordingSystemPrompt = `You are Alex, a friendly SDR at Roister (outbound sales platform). Output json: {"response":"your reply here"}

Write ONE reply: 1-2 sentences, at most 1 question. Sound natural and conversational.

Rules by action type:
- ASK_SLOT: briefly acknowledge what they said, then ask about that ONE topic
- HANDLE_OBJECTION: acknowledge the concern, then ask one redirect question
- CLOSE: propose a demo or meeting, ask to confirm
- END: polite goodbye, no extra questions

CRITICAL: If you see a "PREVIOUS reply" in context, your new reply MUST be completely different wording. Never repeat or paraphrase your last reply.

Never invent company details you don't know. No markdown. No bullet points.

Example: {"response":"That's really helpful context. Roughly how large is your team handling outbound?"}`

func (l *LLM) Render(ctx context.Context, req *Request) (string, error) {
	parts := []string{fmt.Sprintf("Action: %s", req.Action.Type)}
	if req.Action.Slot != "" {
		parts = append(parts, fmt.Sprintf("Slot to ask: %s", req.Action.Slot))
	}
	if req.Action.Objection != "" {
		parts = append(parts, fmt.Sprintf("Objection: %s", req.Action.Objection))
	}
	if len(req.Action.ReasonCodes) > 0 {
		parts = append(parts, fmt.Sprintf("Reasons: %s", strings.Join(req.Action.ReasonCodes, ", ")))
	}
	if len(req.KnownFields) > 0 {
		known, _ := json.Marshal(req.KnownFields)
		parts = append(parts, fmt.Sprintf("Known about prospect: %s", known))
	}
	if req.LastAgentText != "" {
		parts = append(parts, fmt.Sprintf("Your PREVIOUS reply (DO NOT repeat this): %q", req.LastAgentText))
	}
	if req.LastUserText != "" {
		parts = append(parts, fmt.Sprintf("Prospect just said: %q", req.LastUserText))
	}
	if len(req.Objections) > 0 {
		parts = append(parts, fmt.Sprintf("Objections already addressed: %s", strings.Join(req.Objections, ", ")))
	}

	content, err := l.chatJSON(ctx, []chatMessage{
		{Role: "system", Content: wordingSystemPrompt},
		{Role: "user", Content: strings.Join(parts, "\n")},
	}, 0.8)
	if err != nil {
		return "", err
	}

	text, err := responseText(content)
	if err != nil {
		return "", err
	}

	l.logger.Debug("llm wording complete", map[string]interface{}{
		"sessionId": req.SessionID,
		"action":    string(req.Action.Type),
	})
	return text, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (l *LLM) chatJSON(ctx context.Context, messages []chatMessage, temperature float64) (string, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"model":           l.config.Model,
		"messages":        messages,
		"temperature":     temperature,
		"max_tokens":      120,
		"response_format": map[string]string{"type": "json_object"},
	})

	var lastErr error
	for attempt := 0; attempt <= l.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ErrLLMTimeout
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST",
			l.config.BaseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrWordingFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if l.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+l.config.APIKey)
		}

		resp, err := l.client.Do(req)

		if ctx.Err() != nil ||
			errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(err, context.Canceled) {
			return "", ErrLLMTimeout
		}

		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		}

		var parsed struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		}
		err = json.NewDecoder(resp.Body).Decode(&parsed)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("decode error: %v", err)
			continue
		}

		if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
			lastErr = fmt.Errorf("empty content on attempt %d", attempt+1)
			continue
		}
		return parsed.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("%w: %v", ErrWordingFailed, lastErr)
}

// responseText pulls the reply out of the LLM's JSON, tolerating a few
// alternative key names.
func responseText(content string) (string, error) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return "", fmt.Errorf("%w: decode wording: %v", ErrWordingFailed, err)
	}

	for _, key := range []string{"response", "text", "reply"} {
		if v, ok := data[key].(string); ok && v != "" {
			return strings.TrimSpace(v), nil
		}
	}
	for _, v := range data {
		if s, ok := v.(string); ok && len(s) > 10 {
			return strings.TrimSpace(s), nil
		}
	}

	return "", fmt.Errorf("%w: empty wording", ErrWordingFailed)
}

var _ Renderer = (*LLM)(nil)
