package config

// Provider names accepted in Config.Provider.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config is the root configuration for reviewbot.
type Config struct {
	Provider         string           `yaml:"provider,omitempty"` // "openai" | "gemini"
	Model            string           `yaml:"model,omitempty"`
	Language         string           `yaml:"language,omitempty"` // ISO code of the response language
	SystemMessage    string           `yaml:"systemMessage,omitempty"`
	Temperature      *float64         `yaml:"temperature,omitempty"`
	Retries          *int             `yaml:"retries,omitempty"`
	TimeoutMS        int              `yaml:"timeoutMs,omitempty"`
	MaxConversations int              `yaml:"maxConversations,omitempty"`
	APIEndpoint      string           `yaml:"apiEndpoint,omitempty"` // overrides the provider base URL
	Logging          LoggingConfig    `yaml:"logging,omitempty"`
	Transcript       TranscriptConfig `yaml:"transcript,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "compact" | "json"
}

// TranscriptConfig controls the SQLite exchange transcript.
type TranscriptConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"` // defaults to <base>/data/transcript.db
}

// Credentials holds provider API keys resolved once from the environment.
type Credentials struct {
	OpenAIKey string
	GeminiKey string
}

// Credential environment variables.
const (
	EnvOpenAIKey = "OPENAI_API_KEY"
	EnvGeminiKey = "GEMINI_API_KEY"
	envGoogleKey = "GOOGLE_API_KEY"
)
