package config

import (
	"fmt"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

var (
	validProviders     = []string{ProviderOpenAI, ProviderGemini}
	validLogLevels     = []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	validConsoleStyles = []string{"pretty", "compact", "json"}
)

// Validate checks a Config for issues. Returns nil if valid.
// Credentials are not checked here; a missing key fails session construction.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue
	add := func(path, format string, args ...any) {
		issues = append(issues, ValidationIssue{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if !slices.Contains(validProviders, cfg.Provider) {
		add("provider", "must be one of %v, got %q", validProviders, cfg.Provider)
	}
	if cfg.Model == "" {
		add("model", "is required")
	}
	if cfg.Temperature != nil && (*cfg.Temperature < 0 || *cfg.Temperature > 2) {
		add("temperature", "must be between 0 and 2, got %g", *cfg.Temperature)
	}
	if cfg.Retries != nil && *cfg.Retries < 0 {
		add("retries", "must not be negative, got %d", *cfg.Retries)
	}
	if cfg.TimeoutMS < 0 {
		add("timeoutMs", "must not be negative, got %d", cfg.TimeoutMS)
	}
	if cfg.MaxConversations < 0 {
		add("maxConversations", "must not be negative, got %d", cfg.MaxConversations)
	}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		add("logging.level", "must be one of %v, got %q", validLogLevels, cfg.Logging.Level)
	}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		add("logging.consoleStyle", "must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle)
	}

	return issues
}
