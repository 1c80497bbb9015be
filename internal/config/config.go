package config

import (
	"fmt"
	"os"
	"time"
)

// Defaults for fields left unset.
const (
	DefaultProvider         = ProviderOpenAI
	DefaultModel            = "gpt-4o-mini"
	DefaultGeminiModel      = "gemini-2.0-flash"
	DefaultLanguage         = "en-US"
	DefaultTemperature      = 0.05
	DefaultRetries          = 3
	DefaultTimeoutMS        = 360000
	DefaultMaxConversations = 100
	DefaultSystemMessage    = "You are a highly experienced software engineer reviewing code changes. " +
		"Point out bugs, security issues and maintainability problems concisely."
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}

// Timeout returns the per-request timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// LoadCredentials reads provider API keys from the environment.
// GOOGLE_API_KEY is accepted for Gemini when GEMINI_API_KEY is unset.
func LoadCredentials() Credentials {
	creds := Credentials{
		OpenAIKey: os.Getenv(EnvOpenAIKey),
		GeminiKey: os.Getenv(EnvGeminiKey),
	}
	if creds.GeminiKey == "" {
		creds.GeminiKey = os.Getenv(envGoogleKey)
	}
	return creds
}

// For returns the key for provider and the environment variable it comes from.
func (c Credentials) For(provider string) (key, envVar string) {
	switch provider {
	case ProviderGemini:
		return c.GeminiKey, EnvGeminiKey
	default:
		return c.OpenAIKey, EnvOpenAIKey
	}
}
