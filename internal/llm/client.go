// Package llm provides the Service Client: it sends a role-tagged
// conversation to an OpenAI-compatible chat completion endpoint and returns
// the generated text, retrying rate-limited calls with exponential backoff.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/robertgumeny/testgen/internal/log"
)

// Default retry policy: five attempts, waiting 10s, 20s, 40s, 80s between them.
const (
	DefaultMaxAttempts  = 5
	DefaultInitialDelay = 10 * time.Second
)

// Role tags a message in a Conversation.
type Role string

const (
	RoleSystem Role = openai.ChatMessageRoleSystem
	RoleUser   Role = openai.ChatMessageRoleUser
)

// Message is one role-tagged entry of a Conversation.
type Message struct {
	Role    Role
	Content string
}

// Conversation is the ordered message sequence of a single call.
type Conversation []Message

// NewConversation returns the two-message conversation used by every call:
// a system instruction followed by the user content.
func NewConversation(system, user string) Conversation {
	return Conversation{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	}
}

// TextGenerator is the capability the orchestrator needs from the remote
// generation service.
type TextGenerator interface {
	Complete(ctx context.Context, conv Conversation) (string, error)
}

// ErrRateLimitExhausted is matched (via errors.Is) by the error returned when
// every attempt was answered with a rate-limit response.
var ErrRateLimitExhausted = errors.New("rate limit retries exhausted")

// ErrEmptyResponse is returned when the service answers without any choices.
var ErrEmptyResponse = errors.New("completion returned no choices")

// RateLimitError is returned after MaxAttempts consecutive 429 responses.
type RateLimitError struct {
	Attempts int
	LastErr  error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited on all %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimitExhausted
}

func (e *RateLimitError) Unwrap() error {
	return e.LastErr
}

// ClientConfig carries everything needed to construct a Client. APIKey is
// passed explicitly; the client never reads the environment.
type ClientConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	MaxAttempts  int
	InitialDelay time.Duration
	HTTPClient   *http.Client
}

// Client implements TextGenerator on top of go-openai.
type Client struct {
	api          *openai.Client
	model        string
	maxAttempts  int
	initialDelay time.Duration

	// sleep blocks for d or until ctx is done. Replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient validates cfg and builds a Client. Zero MaxAttempts and a
// negative InitialDelay fall back to the defaults.
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("llm: API key must not be empty")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("llm: model must not be empty")
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		apiCfg.HTTPClient = cfg.HTTPClient
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	delay := cfg.InitialDelay
	if delay < 0 {
		delay = DefaultInitialDelay
	}

	return &Client{
		api:          openai.NewClientWithConfig(apiCfg),
		model:        cfg.Model,
		maxAttempts:  maxAttempts,
		initialDelay: delay,
		sleep:        sleepContext,
	}, nil
}

// Complete sends conv and returns choices[0].message.content.
//
// A rate-limit response (HTTP 429) is retried up to maxAttempts attempts in
// total; the wait before retry n is initialDelay * 2^(n-1). There is no wait
// after the final attempt. Any other failure is returned immediately.
func (c *Client) Complete(ctx context.Context, conv Conversation) (string, error) {
	if err := conv.Validate(); err != nil {
		return "", err
	}

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toOpenAIMessages(conv),
	}

	delay := c.initialDelay
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", ErrEmptyResponse
			}
			return resp.Choices[0].Message.Content, nil
		}
		if !IsRateLimited(err) {
			return "", fmt.Errorf("chat completion: %w", err)
		}

		lastErr = err
		if attempt == c.maxAttempts {
			break
		}
		log.Warning(fmt.Sprintf("rate limit hit (attempt %d/%d) — retrying in %s",
			attempt, c.maxAttempts, delay))
		if err := c.sleep(ctx, delay); err != nil {
			return "", fmt.Errorf("rate limit backoff interrupted: %w", err)
		}
		delay *= 2
	}

	return "", &RateLimitError{Attempts: c.maxAttempts, LastErr: lastErr}
}

// IsRateLimited reports whether err carries an HTTP 429 status from the service.
func IsRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}

// Validate rejects an empty conversation or a message with an unknown role.
func (conv Conversation) Validate() error {
	if len(conv) == 0 {
		return errors.New("llm: conversation must contain at least one message")
	}
	for i, m := range conv {
		if m.Role != RoleSystem && m.Role != RoleUser {
			return fmt.Errorf("llm: message %d has unsupported role %q", i, m.Role)
		}
	}
	return nil
}

func toOpenAIMessages(conv Conversation) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(conv))
	for _, m := range conv {
		out = append(out, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
