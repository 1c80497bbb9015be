// Package llm contains the provider wire clients used by the session engine.
//
// Each client speaks one provider's HTTP protocol and normalizes it into
// CompletionRequest / CompletionResponse. Clients hold no conversation state;
// history, retries and budgets are handled by the caller.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Role constants for messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single turn in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the input to a Complete call.
// A nil Temperature and a zero MaxTokens are omitted from the wire request.
type CompletionRequest struct {
	Model       string    `json:"model,omitempty"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"maxTokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
}

// CompletionResponse is the normalized result of a completion.
type CompletionResponse struct {
	ID         string        `json:"id,omitempty"`
	Content    string        `json:"content"`
	StopReason string        `json:"stopReason,omitempty"`
	Usage      Usage         `json:"usage"`
	Model      string        `json:"model,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
}

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// Client is implemented by every provider wire client.
type Client interface {
	// Complete sends a request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name (e.g., "openai", "gemini").
	Name() string
}

// ProviderError is returned when a provider answers with a non-success
// status or a body that cannot be interpreted.
type ProviderError struct {
	Provider string
	Message  string
	Code     int // HTTP status code, 0 for malformed responses
}

func (e *ProviderError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("%s: %d %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Float64 returns a pointer to v, for CompletionRequest.Temperature.
func Float64(v float64) *float64 { return &v }
