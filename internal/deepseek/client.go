// Package deepseek implements a minimal client for the DeepSeek
// chat-completions API.
package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/seyoungseyoung/blog-KRW/internal/platform/retry"
)

const (
	defaultBaseURL = "https://api.deepseek.com"
	defaultModel   = "deepseek-chat"

	temperature = 0.7
	maxTokens   = 1500
)

var defaultPolicy = retry.Policy{
	MaxAttempts:      3,
	InitialBackoff:   2 * time.Second,
	RateLimitBackoff: 20 * time.Second,
}

// Client calls the DeepSeek chat-completions endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	policy  retry.Policy
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different host (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithPolicy overrides the retry policy (tests).
func WithPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// NewClient creates a DeepSeek client.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("deepseek api key is required")
	}
	c := &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		model:   defaultModel,
		http:    &http.Client{Timeout: 60 * time.Second},
		policy:  defaultPolicy,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// statusError carries the HTTP status for retry classification.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.code, e.body)
}

// Classify maps completion errors onto retry actions. Auth failures are
// permanent; 429 waits out the rate limit; 5xx and network errors retry.
func Classify(err error) retry.Action {
	var se *statusError
	if errors.As(err, &se) {
		switch {
		case se.code == http.StatusTooManyRequests:
			return retry.After
		case se.code >= 500:
			return retry.Retry
		default:
			return retry.Stop
		}
	}
	return retry.Retry
}

// Complete sends the messages and returns the assistant's reply with
// markdown emphasis markers stripped.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	return retry.Do(ctx, c.policy, Classify, func() (string, error) {
		return c.complete(ctx, messages)
	})
}

func (c *Client) complete(ctx context.Context, messages []Message) (string, error) {
	payload, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", &statusError{code: resp.StatusCode, body: truncate(string(body), 200)}
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("completion error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}

	// The model keeps emitting markdown bold despite the prompt; strip it.
	text := strings.ReplaceAll(parsed.Choices[0].Message.Content, "*", "")
	return strings.TrimSpace(text), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
