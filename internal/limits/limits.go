// Package limits maps model identifiers to their token budgets.
package limits

import (
	"fmt"
	"strings"
)

// Margin is the safety buffer subtracted from every request budget.
const Margin = 100

// TokenLimits is the token budget for a single model.
type TokenLimits struct {
	Model           string `json:"model"`
	MaxTokens       int    `json:"maxTokens"`
	RequestTokens   int    `json:"requestTokens"`
	ResponseTokens  int    `json:"responseTokens"`
	KnowledgeCutoff string `json:"knowledgeCutoff"`
}

// String returns a compact description for logs.
func (l TokenLimits) String() string {
	return fmt.Sprintf("max=%d request=%d response=%d cutoff=%s",
		l.MaxTokens, l.RequestTokens, l.ResponseTokens, l.KnowledgeCutoff)
}

// family is one row of the budget table. Prefix matches the model id.
type family struct {
	Prefix          string
	MaxTokens       int
	ResponseTokens  int
	KnowledgeCutoff string
}

// Default budget for unrecognized models.
var defaultFamily = family{
	MaxTokens:       4000,
	ResponseTokens:  1000,
	KnowledgeCutoff: "2021-09-01",
}

// families is matched by longest prefix, so order does not matter.
// Reasoning families reserve a larger response allowance for hidden tokens.
var families = []family{
	{Prefix: "gpt-3.5-turbo", MaxTokens: 16300, ResponseTokens: 3000, KnowledgeCutoff: "2021-09-01"},
	{Prefix: "gpt-4", MaxTokens: 8000, ResponseTokens: 2000, KnowledgeCutoff: "2021-09-01"},
	{Prefix: "gpt-4-32k", MaxTokens: 32600, ResponseTokens: 4000, KnowledgeCutoff: "2021-09-01"},
	{Prefix: "gpt-4-turbo", MaxTokens: 128000, ResponseTokens: 4000, KnowledgeCutoff: "2023-12-01"},
	{Prefix: "gpt-4o", MaxTokens: 128000, ResponseTokens: 4000, KnowledgeCutoff: "2023-10-01"},
	{Prefix: "gpt-4o-mini", MaxTokens: 128000, ResponseTokens: 4000, KnowledgeCutoff: "2023-10-01"},
	{Prefix: "gpt-4.1", MaxTokens: 1000000, ResponseTokens: 32000, KnowledgeCutoff: "2024-06-01"},
	{Prefix: "gpt-5", MaxTokens: 400000, ResponseTokens: 128000, KnowledgeCutoff: "2024-09-30"},
	{Prefix: "o1", MaxTokens: 200000, ResponseTokens: 100000, KnowledgeCutoff: "2023-10-01"},
	{Prefix: "o1-mini", MaxTokens: 128000, ResponseTokens: 65536, KnowledgeCutoff: "2023-10-01"},
	{Prefix: "o3", MaxTokens: 200000, ResponseTokens: 100000, KnowledgeCutoff: "2024-06-01"},
	{Prefix: "o4-mini", MaxTokens: 200000, ResponseTokens: 100000, KnowledgeCutoff: "2024-06-01"},
	{Prefix: "gemini-1.5-flash", MaxTokens: 1048576, ResponseTokens: 8192, KnowledgeCutoff: "2023-11-01"},
	{Prefix: "gemini-1.5-pro", MaxTokens: 2097152, ResponseTokens: 8192, KnowledgeCutoff: "2023-11-01"},
	{Prefix: "gemini-2.0-flash", MaxTokens: 1048576, ResponseTokens: 8192, KnowledgeCutoff: "2024-08-01"},
	{Prefix: "gemini-2.5-flash", MaxTokens: 1048576, ResponseTokens: 65536, KnowledgeCutoff: "2025-01-31"},
	{Prefix: "gemini-2.5-pro", MaxTokens: 1048576, ResponseTokens: 65536, KnowledgeCutoff: "2025-01-31"},
}

// Resolve returns the token budget for a model. It never fails: unknown
// models get the conservative default budget.
func Resolve(model string) TokenLimits {
	f := lookup(model)
	return TokenLimits{
		Model:           model,
		MaxTokens:       f.MaxTokens,
		ResponseTokens:  f.ResponseTokens,
		RequestTokens:   f.MaxTokens - f.ResponseTokens - Margin,
		KnowledgeCutoff: f.KnowledgeCutoff,
	}
}

// Known reports whether the model matches a row of the table.
func Known(model string) bool {
	return lookup(model).Prefix != ""
}

// Families returns the table prefixes with their resolved budgets, in table order.
func Families() []TokenLimits {
	out := make([]TokenLimits, 0, len(families))
	for _, f := range families {
		out = append(out, Resolve(f.Prefix))
	}
	return out
}

func lookup(model string) family {
	model = strings.ToLower(strings.TrimSpace(model))
	// Provider-qualified ids like "models/gemini-2.0-flash" or "openai/gpt-4o".
	if i := strings.LastIndex(model, "/"); i >= 0 {
		model = model[i+1:]
	}

	best := defaultFamily
	for _, f := range families {
		if strings.HasPrefix(model, f.Prefix) && len(f.Prefix) > len(best.Prefix) {
			best = f
		}
	}
	return best
}
