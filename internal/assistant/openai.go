// Package assistant talks to an OpenAI-compatible chat completion API.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/finoa/finos-backend/internal/config"
	"github.com/finoa/finos-backend/internal/service"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

const temperature = 0.2

// ErrEmptyReply is returned when the model answers with no choices
var ErrEmptyReply = errors.New("assistant returned no choices")

// Client is a chat completion client with a bounded retry on throttling and server errors
type Client struct {
	api        *openai.Client
	model      string
	maxRetries int
	retryDelay time.Duration
}

var _ service.Assistant = (*Client)(nil)

// New returns the configured assistant, or nil when no API key is set
func New(cfg config.OpenAIConfig) service.Assistant {
	if cfg.APIKey == "" {
		log.Info().Msg("OPENAI_API_KEY not set, assistant disabled")
		return nil
	}
	return NewClient(cfg)
}

// NewClient builds a Client regardless of whether the key is set
func NewClient(cfg config.OpenAIConfig) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		api:        openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		retryDelay: 500 * time.Millisecond,
	}
}

// Complete sends the system instruction and user payload and returns the reply text
func (c *Client) Complete(ctx context.Context, systemInstruction, userPayload string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: userPayload},
		},
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			}
		}

		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", ErrEmptyReply
			}
			return resp.Choices[0].Message.Content, nil
		}

		lastErr = err
		if !retryable(err) {
			break
		}
		log.Warn().Err(err).Int("attempt", attempt+1).Msg("Assistant request failed, retrying")
	}

	return "", fmt.Errorf("chat completion: %w", lastErr)
}

// retryable reports whether the upstream status is 429 or 5xx
func retryable(err error) bool {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	default:
		return false
	}
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
