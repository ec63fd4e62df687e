// internal/extraction/llm.go
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"coldcall-backend/internal/common/logger"
	"coldcall-backend/internal/engine"
)

var (
	ErrLLMCallFailed = errors.New("LLM_CALL_FAILED")
	ErrLLMTimeout    = errors.New("LLM_TIMEOUT")
)

type LLMConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// LLM extracts signals via an OpenAI-compatible chat completions API.
// Any failure is returned to the caller; the chain handles the fallback.
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
			"component": "llm-extractor",
		}),
	}
}

const extractSystemPrompt = `You are a signal extractor for a B2B sales cold-call. Output only valid json.

Extract from the user's latest message:
{"slots":[{"slot":"pain|budget|authority|timeline|company_size","value":"short string","confidence":0.0,"correction":false}],"objections":[{"type":"price|trust|timing|competitor|not_interested","confidence":0.0}],"end_of_call":false}

Field rules:
- slots: only fields the user actually stated; value is a short factual string
- correction: true only when the user explicitly revises an earlier answer ("actually, ...")
- objections: pushback the user raised this turn
- end_of_call: true only for goodbye / hang-up intent
- confidence: 0.0-1.0 per item

Example: {"slots":[{"slot":"company_size","value":"50","confidence":0.9,"correction":false}],"objections":[],"end_of_call":false}`

// signalsSchema validates the LLM's JSON before it touches the engine.
var signalsSchema = gojsonschema.NewStringLoader(`{
	"type": "object",
	"properties": {
		"slots": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"slot": {"type": "string"},
					"value": {"type": "string"},
					"confidence": {"type": "number", "minimum": 0, "maximum": 1},
					"correction": {"type": "boolean"}
				},
				"required": ["slot", "value", "confidence"]
			}
		},
		"objections": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"type": {"type": "string"},
					"confidence": {"type": "number", "minimum": 0, "maximum": 1}
				},
				"required": ["type", "confidence"]
			}
		},
		"end_of_call": {"type": "boolean"}
	}
}`)

type llmSignals struct {
	Slots []struct {
		Slot       string  `json:"slot"`
		Value      string  `json:"value"`
		Confidence float64 `json:"confidence"`
		Correction bool    `json:"correction"`
	} `json:"slots"`
	Objections []struct {
		Type       string  `json:"type"`
		Confidence float64 `json:"confidence"`
	} `json:"objections"`
	EndOfCall bool `json:"end_of_call"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (l *LLM) Extract(ctx context.Context, req *Request) (engine.Signals, error) {
	userPrompt := l.buildUserPrompt(req)

	content, err := l.chatJSON(ctx, []chatMessage{
		{Role: "system", Content: extractSystemPrompt},
		{Role: "user", Content: userPrompt},
	})
	if err != nil {
		return engine.Signals{}, err
	}

	parsed, err := parseSignalsJSON(content)
	if err != nil {
		return engine.Signals{}, fmt.Errorf("%w: %v", ErrLLMCallFailed, err)
	}

	sig := engine.Signals{
		UserText:  req.UserText,
		EndOfCall: parsed.EndOfCall,
		Source:    SourceLLM,
	}
	for _, s := range parsed.Slots {
		sig.SlotFills = append(sig.SlotFills, engine.SlotCandidate{
			Slot:       s.Slot,
			Value:      s.Value,
			Confidence: s.Confidence,
			Correction: s.Correction,
		})
	}
	for _, o := range parsed.Objections {
		sig.Objections = append(sig.Objections, engine.ObjectionCandidate{
			Type:       o.Type,
			Confidence: o.Confidence,
		})
	}

	l.logger.Debug("llm extraction complete", map[string]interface{}{
		"sessionId":  req.SessionID,
		"slots":      len(sig.SlotFills),
		"objections": len(sig.Objections),
		"endOfCall":  sig.EndOfCall,
	})

	return sig, nil
}

func (l *LLM) buildUserPrompt(req *Request) string {
	context := fmt.Sprintf("Turn: %d", req.TurnIndex)
	if req.LastAskedSlot != "" {
		context += fmt.Sprintf(", Last asked: %s", req.LastAskedSlot)
	}
	if len(req.KnownFields) > 0 {
		known, _ := json.Marshal(req.KnownFields)
		context += fmt.Sprintf(", Known: %s", known)
	}
	return fmt.Sprintf("Context: %s\nUser said: %q", context, req.UserText)
}

// chatJSON sends a chat completion and returns the raw message content,
// retrying with exponential backoff on transport and status errors.
func (l *LLM) chatJSON(ctx context.Context, messages []chatMessage) (string, error) {
	body, _ := json.Marshal(chatRequest{
		Model:          l.config.Model,
		Messages:       messages,
		Temperature:    0,
		MaxTokens:      256,
		ResponseFormat: map[string]string{"type": "json_object"},
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
			return "", fmt.Errorf("%w: %v", ErrLLMCallFailed, err)
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

		var parsed chatResponse
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

	if errors.Is(lastErr, context.DeadlineExceeded) {
		return "", ErrLLMTimeout
	}
	return "", fmt.Errorf("%w: %v", ErrLLMCallFailed, lastErr)
}

// parseSignalsJSON validates the content against the signals schema and
// decodes it.
func parseSignalsJSON(content string) (*llmSignals, error) {
	result, err := gojsonschema.Validate(signalsSchema, gojsonschema.NewStringLoader(content))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %v", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("schema violation: %v", result.Errors())
	}

	var parsed llmSignals
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("decode signals: %v", err)
	}
	return &parsed, nil
}
