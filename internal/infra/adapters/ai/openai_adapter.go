package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"video-subtitle-translator/internal/domain"
	"video-subtitle-translator/internal/domain/ports/adapter"
	"video-subtitle-translator/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.TextGenAdapter = (*OpenAIAdapter)(nil)

// OpenAIAdapter implements adapter.TextGenAdapter against any OpenAI-compatible
// chat-completions gateway. The request is built by hand because the gateway
// accepts a nonstandard `thinking` field used to disable reasoning output.
// Chat completions path: {base}/chat/completions
// Authorization: Bearer <API_KEY>
type OpenAIAdapter struct {
	apiKey      string
	base        string // e.g., https://api.openai.com/v1
	model       string
	temperature float64
	client      *http.Client
}

type thinkingOpt struct {
	Type string `json:"type"` // "disabled"
}

type chatRequest struct {
	Model       string            `json:"model"`
	Messages    []adapter.Message `json:"messages"`
	Stream      bool              `json:"stream"`
	Temperature *float64          `json:"temperature,omitempty"`
	Thinking    *thinkingOpt      `json:"thinking,omitempty"`
}

func NewOpenAIAdapter(apiKey, model, base string, temperature float64) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	return &OpenAIAdapter{
		apiKey:      apiKey,
		base:        strings.TrimRight(base, "/"),
		model:       model,
		temperature: temperature,
		// No client timeout: a translation call may legitimately run long,
		// and the caller owns cancellation via ctx.
		client: &http.Client{},
	}, nil
}

func (o *OpenAIAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	if model == "" {
		model = o.model
	}
	reqBody := chatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
		Thinking: &thinkingOpt{Type: "disabled"},
	}
	if o.temperature > 0 {
		t := o.temperature
		reqBody.Temperature = &t
	}

	b, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.base+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	start := time.Now()
	resp, err := o.client.Do(req)
	latency := int(time.Since(start) / time.Millisecond)
	if err != nil {
		metrics.ObserveAICall(model, latency, false)
		return "", fmt.Errorf("%w: %v", domain.ErrAPIFailure, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		metrics.ObserveAICall(model, latency, false)
		return "", fmt.Errorf("%w: http %d", domain.ErrAPIFailure, resp.StatusCode)
	}

	var payload struct {
		Choices []struct {
			Message adapter.Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.ObserveAICall(model, latency, false)
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrAPIFailure, err)
	}
	if len(payload.Choices) == 0 {
		metrics.ObserveAICall(model, latency, false)
		return "", fmt.Errorf("%w: empty choices", domain.ErrAPIFailure)
	}
	metrics.ObserveAICall(model, latency, true)
	return payload.Choices[0].Message.Content, nil
}
