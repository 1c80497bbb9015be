package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/soyeahso/reviewbot/internal/version"
)

// DefaultOpenAIBaseURL is the public OpenAI API root.
const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIClient talks to any server implementing the OpenAI chat
// completions wire format.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewOpenAIClient creates a chat completions client. An empty baseURL
// selects DefaultOpenAIBaseURL; a zero timeout leaves the HTTP client
// unbounded so the caller's context decides.
func NewOpenAIClient(apiKey, baseURL string, timeout time.Duration) *OpenAIClient {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string { return "openai" }

// Complete sends a non-streaming chat completion request.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	payload, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: c.Name(), Code: resp.StatusCode, Message: openaiErrorMessage(body)}
	}

	var result openaiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &ProviderError{Provider: c.Name(), Message: "malformed response: " + err.Error()}
	}
	if len(result.Choices) == 0 {
		return nil, &ProviderError{Provider: c.Name(), Message: "malformed response: no choices"}
	}

	choice := result.Choices[0]
	return &CompletionResponse{
		ID:         result.ID,
		Content:    choice.Message.Content,
		StopReason: choice.FinishReason,
		Usage: Usage{
			InputTokens:  result.Usage.PromptTokens,
			OutputTokens: result.Usage.CompletionTokens,
		},
		Model:    result.Model,
		Duration: time.Since(start),
	}, nil
}

// buildRequest converts a CompletionRequest into the wire format. The
// system prompt becomes the first message with role "system".
func (c *OpenAIClient) buildRequest(req CompletionRequest) openaiRequest {
	wire := openaiRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.System != "" {
		wire.Messages = append(wire.Messages, openaiMessage{Role: RoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		wire.Messages = append(wire.Messages, openaiMessage{Role: m.Role, Content: m.Content})
	}
	return wire
}

// openaiErrorMessage extracts error.message from an error body, falling
// back to the raw body.
func openaiErrorMessage(body []byte) string {
	var e struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error.Message != "" {
		if e.Error.Type != "" {
			return e.Error.Type + ": " + e.Error.Message
		}
		return e.Error.Message
	}
	return strings.TrimSpace(string(body))
}

// Wire types

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []openaiChoice `json:"choices"`
	Usage   openaiUsage    `json:"usage"`
}

type openaiChoice struct {
	Index        int           `json:"index"`
	Message      openaiMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openaiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}
