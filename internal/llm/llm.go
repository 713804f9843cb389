package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are an expert assessment generator. You respond only with valid JSON."

// UnavailableError means every attempt against the provider failed with a
// transient error. The caller should suggest retrying later.
type UnavailableError struct {
	Attempts int
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("LLM unavailable after %d attempts: %v", e.Attempts, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// RequestError means the provider rejected the call with a non-retryable
// response. It carries the provider's status and message for display.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("LLM request rejected (status %d): %s", e.StatusCode, e.Message)
}

// Client wraps an OpenAI-compatible API client with a per-attempt timeout
// and a bounded sequential retry loop.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	retries int
}

// New creates a new LLM client. retries is the total number of attempts.
func New(baseURL, apiKey, modelName string, timeout time.Duration, retries int) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if retries < 1 {
		retries = 1
	}
	return &Client{
		api:     openai.NewClientWithConfig(config),
		model:   modelName,
		timeout: timeout,
		retries: retries,
	}
}

// Ping verifies the endpoint is reachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("LLM endpoint unreachable: %w", err)
	}
	return nil
}

// Generate sends the rendered prompt to the provider and returns the raw
// response text. Transient failures (timeout, connection error, 5xx) are
// retried sequentially up to the configured bound; exhaustion yields an
// UnavailableError. A non-retryable provider rejection yields a RequestError
// immediately.
func (c *Client) Generate(ctx context.Context, promptText string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: promptText},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.3,
	}

	var lastErr error
	attempts := 0
	for attempts < c.retries {
		attempts++
		raw, err := c.attempt(ctx, req)
		if err == nil {
			return raw, nil
		}
		if !retryable(err) {
			if status, ok := providerStatus(err); ok {
				return "", &RequestError{StatusCode: status, Message: err.Error()}
			}
			return "", err
		}
		lastErr = err
		slog.Warn("LLM attempt failed", "attempt", attempts, "of", c.retries, "error", err)
		if ctx.Err() != nil {
			// Parent context is gone; further attempts cannot succeed.
			break
		}
	}
	return "", &UnavailableError{Attempts: attempts, Err: lastErr}
}

func (c *Client) attempt(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("LLM returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// providerStatus extracts the HTTP status from a go-openai error, if any.
func providerStatus(err error) (int, bool) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode, true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode, true
	}
	return 0, false
}

// retryable classifies an attempt failure. Timeouts, connection errors and
// 5xx/429 responses are transient; any other provider status is fatal.
func retryable(err error) bool {
	status, ok := providerStatus(err)
	if !ok {
		// Transport-level failure (timeout, refused connection, no choices).
		return true
	}
	return status >= 500 || status == 429
}
