// Package llm defines the contract with the external chat-completion
// collaborator and an OpenAI-compatible HTTP client implementing it.
//
// Failures are classified into a small reason taxonomy so callers can choose
// user-facing fallback messaging; the chat service never surfaces these as
// hard errors.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Failure reasons the core distinguishes for user-facing messaging.
const (
	ReasonInvalidCredential = "invalid_credential"
	ReasonRateLimited       = "rate_limited"
	ReasonModelUnavailable  = "model_unavailable"
	ReasonNetwork           = "network"
	ReasonOther             = "other"
)

// Error is a classified upstream failure.
type Error struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("llm %s: %v", e.Reason, e.Err)
	}
	return "llm " + e.Reason
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// ReasonOf extracts the failure reason from err, defaulting to ReasonOther.
func ReasonOf(err error) string {
	var le *Error
	if errors.As(err, &le) {
		return le.Reason
	}
	return ReasonOther
}

// Turn is one ordered conversation turn sent upstream.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatCompleter is the boundary contract consumed by the chat and mood
// services. Implementations must honor ctx and bound each call's duration.
type ChatCompleter interface {
	// Complete sends systemPrompt plus the ordered turns and returns the
	// model's reply text. Failures are *Error values.
	Complete(ctx context.Context, systemPrompt string, turns []Turn, maxTokens int, temperature float64) (string, error)
}

// Client is an OpenAI-compatible chat-completions client. Any endpoint
// speaking the /chat/completions wire shape works.
type Client struct {
	http  *resty.Client
	model string
}

// NewClient constructs a Client for baseURL (e.g. "https://api.openai.com/v1")
// with a hard per-call timeout.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")
	return &Client{http: rc, model: model}
}

type chatRequest struct {
	Model       string  `json:"model"`
	Messages    []Turn  `json:"messages"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete implements ChatCompleter.
func (c *Client) Complete(ctx context.Context, systemPrompt string, turns []Turn, maxTokens int, temperature float64) (string, error) {
	messages := make([]Turn, 0, len(turns)+1)
	messages = append(messages, Turn{Role: "system", Content: systemPrompt})
	messages = append(messages, turns...)

	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:       c.model,
			Messages:    messages,
			MaxTokens:   maxTokens,
			Temperature: temperature,
		}).
		SetResult(&out).
		SetError(&out).
		Post("/chat/completions")
	if err != nil {
		// Transport-level: DNS, refused connection, context deadline.
		return "", &Error{Reason: ReasonNetwork, Err: err}
	}
	if resp.IsError() {
		return "", classifyStatus(resp.StatusCode(), &out)
	}
	if len(out.Choices) == 0 {
		return "", &Error{Reason: ReasonOther, Err: errors.New("empty choices")}
	}
	return out.Choices[0].Message.Content, nil
}

// classifyStatus maps an HTTP error status (and, when present, the upstream
// error payload) onto the failure taxonomy.
func classifyStatus(status int, body *chatResponse) error {
	cause := fmt.Errorf("status %d", status)
	if body != nil && body.Error != nil && body.Error.Message != "" {
		cause = fmt.Errorf("status %d: %s", status, body.Error.Message)
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &Error{Reason: ReasonInvalidCredential, Err: cause}
	case status == http.StatusTooManyRequests:
		return &Error{Reason: ReasonRateLimited, Err: cause}
	case status == http.StatusNotFound:
		// OpenAI-compatible endpoints report unknown models as 404.
		return &Error{Reason: ReasonModelUnavailable, Err: cause}
	case status >= 500:
		return &Error{Reason: ReasonModelUnavailable, Err: cause}
	default:
		return &Error{Reason: ReasonOther, Err: cause}
	}
}
