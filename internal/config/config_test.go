package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, "en-US", cfg.Language)
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.05, *cfg.Temperature, 1e-9)
	require.NotNil(t, cfg.Retries)
	assert.Equal(t, 3, *cfg.Retries)
	assert.Equal(t, 360000, cfg.TimeoutMS)
	assert.Equal(t, 100, cfg.MaxConversations)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "pretty", cfg.Logging.ConsoleStyle)
	assert.False(t, cfg.Transcript.Enabled)
	assert.Equal(t, int64(360), int64(cfg.Timeout().Seconds()))
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadValidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("TEST_GATEWAY_HOST", "llm.internal:8080")

	yaml := `
provider: gemini
language: ja-JP
temperature: 0
retries: 0
timeoutMs: 5000
maxConversations: 10
apiEndpoint: http://${TEST_GATEWAY_HOST}/v1
logging:
  level: debug
  consoleStyle: json
transcript:
  enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model, "gemini gets its own default model")
	assert.Equal(t, "ja-JP", cfg.Language)
	assert.Zero(t, *cfg.Temperature, "explicit zero is kept")
	assert.Zero(t, *cfg.Retries, "explicit zero is kept")
	assert.Equal(t, 5000, cfg.TimeoutMS)
	assert.Equal(t, 10, cfg.MaxConversations)
	assert.Equal(t, "http://llm.internal:8080/v1", cfg.APIEndpoint)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.ConsoleStyle)
	assert.True(t, cfg.Transcript.Enabled)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{invalid yaml"), 0o600))

	_, err := Load(path)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("REVIEWBOT_PROVIDER", "GEMINI")
	t.Setenv("REVIEWBOT_MODEL", "gemini-2.5-pro")
	t.Setenv("REVIEWBOT_LANGUAGE", "de-DE")
	t.Setenv("REVIEWBOT_RETRIES", "7")
	t.Setenv("REVIEWBOT_LOG_LEVEL", "TRACE")

	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model)
	assert.Equal(t, "de-DE", cfg.Language)
	assert.Equal(t, 7, *cfg.Retries)
	assert.Equal(t, "trace", cfg.Logging.Level)
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv(EnvOpenAIKey, "sk-1")
	t.Setenv(EnvGeminiKey, "")
	t.Setenv("GOOGLE_API_KEY", "g-fallback")

	creds := LoadCredentials()
	key, env := creds.For(ProviderOpenAI)
	assert.Equal(t, "sk-1", key)
	assert.Equal(t, EnvOpenAIKey, env)

	key, env = creds.For(ProviderGemini)
	assert.Equal(t, "g-fallback", key)
	assert.Equal(t, EnvGeminiKey, env)
}

func TestValidateDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Empty(t, Validate(&cfg))
}

func TestValidateIssues(t *testing.T) {
	neg := -1
	hot := 3.5
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"provider", func(c *Config) { c.Provider = "bard" }, "provider"},
		{"model", func(c *Config) { c.Model = "" }, "model"},
		{"temperature", func(c *Config) { c.Temperature = &hot }, "temperature"},
		{"retries", func(c *Config) { c.Retries = &neg }, "retries"},
		{"timeout", func(c *Config) { c.TimeoutMS = -5 }, "timeoutMs"},
		{"maxConversations", func(c *Config) { c.MaxConversations = -1 }, "maxConversations"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"console style", func(c *Config) { c.Logging.ConsoleStyle = "fancy" }, "logging.consoleStyle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			issues := Validate(&cfg)
			require.Len(t, issues, 1)
			assert.Equal(t, tt.path, issues[0].Path)
			assert.Contains(t, issues[0].String(), tt.path+": ")
		})
	}
}

func TestParseConfigPath(t *testing.T) {
	tests := []struct {
		input   string
		want    []string
		wantErr bool
	}{
		{"model", []string{"model"}, false},
		{"logging.level", []string{"logging", "level"}, false},
		{"", nil, true},
		{"a..b", nil, true},
		{"__proto__.x", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseConfigPath(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValueAtPath(t *testing.T) {
	root := map[string]any{"logging": map[string]any{"level": "info"}}

	val, ok := GetValueAtPath(root, []string{"logging", "level"})
	assert.True(t, ok)
	assert.Equal(t, "info", val)

	SetValueAtPath(root, []string{"transcript", "enabled"}, true)
	val, ok = GetValueAtPath(root, []string{"transcript", "enabled"})
	assert.True(t, ok)
	assert.Equal(t, true, val)

	assert.True(t, UnsetValueAtPath(root, []string{"logging", "level"}))
	assert.False(t, UnsetValueAtPath(root, []string{"logging", "level"}))
	_, ok = GetValueAtPath(root, []string{"logging", "level"})
	assert.False(t, ok)
}

func TestLoadRawAndSaveRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SaveRaw(path, map[string]any{"model": "o3-mini"}))

	loaded, err := LoadRaw(path)
	require.NoError(t, err)
	assert.Equal(t, "o3-mini", loaded["model"])

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "o3-mini", cfg.Model)

	empty, err := LoadRaw(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestResolvePathsAndEnsureDirs(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("REVIEWBOT_HOME", tmp)

	paths, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, tmp, paths.Base)
	assert.Equal(t, filepath.Join(tmp, "config.yaml"), paths.Config)
	assert.Equal(t, filepath.Join(tmp, "data", "transcript.db"), paths.Transcript)

	require.NoError(t, paths.EnsureDirs())
	for _, d := range []string{paths.Base, paths.Data, paths.Logs} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
