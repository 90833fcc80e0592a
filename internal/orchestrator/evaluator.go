// Package orchestrator dispatches content to a downstream language-model
// evaluator and folds the structured responses back into session state.
// Content flows down to the evaluator; only findings flow back up, so the
// top-level caller never sees raw file text through these paths.
package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sightglass-mcp/sightglass/internal/domain"
)

// Evaluator answers one prompt. Implementations must be safe for
// concurrent use; batches dispatch in parallel.
type Evaluator interface {
	Evaluate(ctx context.Context, system, user string) (string, error)
}

// ChatConfig configures the HTTP chat evaluator.
type ChatConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// ChatEvaluator talks to an OpenAI-compatible chat endpoint at
// {base_url}/chat, non-streaming.
type ChatEvaluator struct {
	base   string
	model  string
	client *http.Client
}

// NewChatEvaluator creates an evaluator for cfg.
func NewChatEvaluator(cfg ChatConfig) *ChatEvaluator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ChatEvaluator{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		model:  cfg.Model,
		client: &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

// Evaluate sends one chat turn and returns the reply text. Failures wrap
// ErrEvaluator so callers can convert them to failure markers.
func (e *ChatEvaluator) Evaluate(ctx context.Context, system, user string) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: user})

	body, err := json.Marshal(chatRequest{Model: e.model, Messages: messages, Stream: false})
	if err != nil {
		return "", fmt.Errorf("%w: encoding request: %v", domain.ErrEvaluator, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.base+"/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: building request: %v", domain.ErrEvaluator, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrEvaluator, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", domain.ErrEvaluator, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrEvaluator, resp.StatusCode, firstLine(string(data)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", domain.ErrEvaluator, err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("%w: %s", domain.ErrEvaluator, parsed.Error)
	}
	return parsed.Message.Content, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
