package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/soyeahso/reviewbot/internal/version"
	"google.golang.org/genai"
)

// GeminiClient calls the Gemini generateContent API through the genai SDK.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a Gemini API client. baseURL overrides the SDK
// default endpoint; httpClient may be nil.
func NewGeminiClient(ctx context.Context, apiKey, baseURL string, httpClient *http.Client) (*GeminiClient, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	cfg.HTTPOptions = genai.HTTPOptions{
		BaseURL: baseURL,
		Headers: http.Header{"User-Agent": []string{version.UserAgent()}},
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

// Name returns the provider name.
func (g *GeminiClient) Name() string { return "gemini" }

// Complete sends a single generateContent call.
func (g *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		var role genai.Role = genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, &ProviderError{Provider: g.Name(), Message: "malformed response: no candidates"}
	}

	candidate := resp.Candidates[0]
	var content strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		content.WriteString(part.Text)
	}

	out := &CompletionResponse{
		ID:         resp.ResponseID,
		Content:    content.String(),
		StopReason: string(candidate.FinishReason),
		Model:      req.Model,
		Duration:   time.Since(start),
	}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out, nil
}
