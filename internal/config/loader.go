package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val, ok := os.LookupEnv(match[2 : len(match)-1]); ok {
			return val
		}
		return match
	})
}

// Load reads the config file, applies defaults and environment overrides.
// A missing file yields defaults plus overrides.
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return Defaults(), err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Defaults(), &ConfigError{Message: "failed to parse config: " + err.Error()}
		}
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	cfg.APIEndpoint = expandEnvVars(cfg.APIEndpoint)
	cfg.Transcript.Path = expandEnvVars(cfg.Transcript.Path)
	cfg.Logging.File = expandEnvVars(cfg.Logging.File)
	return cfg, nil
}

// LoadRaw reads the config file into a generic map for path-based access.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// SaveRaw writes a generic map back to a YAML config file.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	if cfg.Model == "" {
		if cfg.Provider == ProviderGemini {
			cfg.Model = DefaultGeminiModel
		} else {
			cfg.Model = DefaultModel
		}
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.SystemMessage == "" {
		cfg.SystemMessage = DefaultSystemMessage
	}
	if cfg.Temperature == nil {
		t := DefaultTemperature
		cfg.Temperature = &t
	}
	if cfg.Retries == nil {
		r := DefaultRetries
		cfg.Retries = &r
	}
	if cfg.TimeoutMS == 0 {
		cfg.TimeoutMS = DefaultTimeoutMS
	}
	if cfg.MaxConversations == 0 {
		cfg.MaxConversations = DefaultMaxConversations
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = "pretty"
	}
}

// applyEnvOverrides reads REVIEWBOT_* environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REVIEWBOT_PROVIDER"); v != "" {
		cfg.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("REVIEWBOT_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("REVIEWBOT_LANGUAGE"); v != "" {
		cfg.Language = v
	}
	if v := os.Getenv("REVIEWBOT_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Retries = &n
		}
	}
	if v := os.Getenv("REVIEWBOT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}
