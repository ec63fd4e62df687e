// internal/prospect/llm.go
package prospect

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
	ErrProspectFailed = errors.New("LLM_CALL_FAILED")
	ErrLLMTimeout     = errors.New("LLM_TIMEOUT")
)

type LLMConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// LLM plays the prospect with a persona picked per session.
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
			"component": "llm-prospect",
		}),
	}
}

const prospectSystemTemplate = `You are a B2B prospect on a cold call. Output json: {"response":"your reply here"}

RULES:
1. Answer questions when asked, but STAY IN CHARACTER. Your persona defines how cooperative or difficult you are
2. Give concrete data when you share info (employee counts, pain levels 1-10, yes/no on budget)
3. Keep it to 1-2 sentences, sound natural
4. Never repeat something you already said (check "Already revealed")
5. If your persona says you're skeptical or busy, actually BE that: push back, give short answers, raise objections

Your persona: %s

Example: {"response":"%s"}`

func (l *LLM) NextUtterance(ctx context.Context, req *Request) (string, error) {
	persona := PickPersona(req.SessionID)

	parts := []string{
		fmt.Sprintf("Agent just said: %q", req.AgentText),
		fmt.Sprintf("Turn: %d", req.TurnIndex),
	}
	if len(req.KnownFields) > 0 {
		known, _ := json.Marshal(req.KnownFields)
		parts = append(parts, fmt.Sprintf("Already revealed: %s", known))
	}
	if len(req.Objections) > 0 {
		parts = append(parts, fmt.Sprintf("Objections already raised (do NOT repeat these): %s",
			strings.Join(req.Objections, ", ")))
	}

	content, err := l.chatJSON(ctx, []chatMessage{
		{Role: "system", Content: fmt.Sprintf(prospectSystemTemplate, persona.Description, persona.Example)},
		{Role: "user", Content: strings.Join(parts, "\n")},
	})
	if err != nil {
		return "", err
	}

	text, err := responseText(content)
	if err != nil {
		return "", err
	}

	l.logger.Debug("llm prospect reply", map[string]interface{}{
		"sessionId": req.SessionID,
		"turn":      req.TurnIndex,
	})
	return text, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (l *LLM) chatJSON(ctx context.Context, messages []chatMessage) (string, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"model":           l.config.Model,
		"messages":        messages,
		"temperature":     0.9,
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
			return "", fmt.Errorf("%w: %v", ErrProspectFailed, err)
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

	return "", fmt.Errorf("%w: %v", ErrProspectFailed, lastErr)
}

func responseText(content string) (string, error) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return "", fmt.Errorf("%w: decode reply: %v", ErrProspectFailed, err)
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

	return "", fmt.Errorf("%w: empty reply", ErrProspectFailed)
}

var _ Generator = (*LLM)(nil)
