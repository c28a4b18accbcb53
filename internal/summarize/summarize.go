// Package summarize is an optional side capability: a chat-completion
// client that can turn a run's extraction report into prose. Nothing in
// the navigation or extraction path depends on it; main constructs it only
// when an endpoint is configured and invokes it after the crawl finishes.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
)

// Config is injected by the caller; validation happens at construction.
type Config struct {
	Endpoint     string
	SystemPrompt string
	Temperature  float64
}

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

const defaultSystemPrompt = "You are an analyst. Summarize the extracted investment records: " +
	"notable holdings, currencies, and valuation standouts."

// Client posts extraction reports to a chat-completion endpoint.
type Client struct {
	http    *resty.Client
	cfg     Config
	limiter *rateLimiter
}

// NewClient validates the configuration and builds the HTTP client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("summarize: endpoint is required")
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.3
	}

	http := resty.New().
		SetTimeout(360 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:    http,
		cfg:     cfg,
		limiter: newRateLimiter(5, 12*time.Second),
	}, nil
}

// Summarize sends the report and returns the model's reply.
func (c *Client) Summarize(ctx context.Context, report string) (string, error) {
	if err := c.limiter.wait(ctx); err != nil {
		return "", err
	}

	req := chatRequest{
		Messages: []Message{
			{Role: "system", Content: c.cfg.SystemPrompt},
			{Role: "user", Content: report},
		},
		Temperature: c.cfg.Temperature,
	}

	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post(c.cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("summarize request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("summarize endpoint returned %d: %s",
			resp.StatusCode(), resp.String())
	}
	if len(out.Choices) == 0 {
		return "", errors.New("summarize endpoint returned no choices")
	}

	content := out.Choices[0].Message.Content
	log.Debug("summary received", "bytes", len(content))
	return content, nil
}

// rateLimiter is a token bucket; tokens refill one per refillRate.
type rateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
}

func newRateLimiter(maxTokens int, refillRate time.Duration) *rateLimiter {
	return &rateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

func (r *rateLimiter) take() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if add := int(now.Sub(r.lastRefill) / r.refillRate); add > 0 {
		r.tokens = min(r.maxTokens, r.tokens+add)
		r.lastRefill = now
	}
	if r.tokens > 0 {
		r.tokens--
		return true
	}
	return false
}

func (r *rateLimiter) wait(ctx context.Context) error {
	for !r.take() {
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
