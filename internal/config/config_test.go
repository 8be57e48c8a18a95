package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigWithDefaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "https://api.tidesandcurrents.noaa.gov", cfg.NOAABaseURL)
	assert.Equal(t, "tidechart", cfg.Application)
}

func TestOptions(t *testing.T) {
	cfg := New(
		WithEnvironment("development"),
		WithLogLevel("debug"),
		WithHTTPTimeout(30*time.Second),
		WithNOAABaseURL("http://localhost:9999"),
		WithApplication("ken@example.org"),
	)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "http://localhost:9999", cfg.NOAABaseURL)
	assert.Equal(t, "ken@example.org", cfg.Application)
}

func TestWithLogLevelInvalidFallsBackToInfo(t *testing.T) {
	cfg := New(WithLogLevel("chatty"))
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
}

func TestInitializeLogging(t *testing.T) {
	cfg := New(WithEnvironment("local"), WithLogLevel("debug"))
	cfg.InitializeLogging()

	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("HTTP_TIMEOUT", "2s")
	t.Setenv("TIDE_APPLICATION", "faubel.org")

	cfg := LoadFromEnv()

	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, zerolog.WarnLevel, cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "faubel.org", cfg.Application)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("TIDECHART_DOTENV_PROBE=loaded\n"), 0o600))
	t.Setenv("TIDECHART_DOTENV_PROBE", "")
	require.NoError(t, os.Unsetenv("TIDECHART_DOTENV_PROBE"))

	LoadDotEnv(filepath.Join(dir, "missing.env"), path)

	assert.Equal(t, "loaded", os.Getenv("TIDECHART_DOTENV_PROBE"))
}

func TestGetDurationEnvOrDefault(t *testing.T) {
	t.Setenv("TEST_DURATION_ENV_VAR", "2s")
	t.Setenv("TEST_BAD_DURATION_ENV_VAR", "soon")

	assert.Equal(t, 2*time.Second, getDurationEnvOrDefault("TEST_DURATION_ENV_VAR", time.Second))
	assert.Equal(t, time.Second, getDurationEnvOrDefault("TEST_BAD_DURATION_ENV_VAR", time.Second))
	assert.Equal(t, time.Second, getDurationEnvOrDefault("NON_EXISTENT_DURATION_ENV_VAR", time.Second))
}

func TestGetCacheConfig(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		check   func(*testing.T, *CacheConfig)
	}{
		{
			name:    "defaults",
			envVars: map[string]string{},
			check: func(t *testing.T, c *CacheConfig) {
				assert.Equal(t, defaultLRUSize, c.LRUSize)
				assert.False(t, c.EnableDynamoCache)
				assert.Equal(t, defaultDynamoTable, c.DynamoTable)
				assert.Empty(t, c.FilePath)
			},
		},
		{
			name: "overrides",
			envVars: map[string]string{
				"CACHE_LRU_SIZE":      "16",
				"CACHE_ENABLE_DYNAMO": "yes",
				"CACHE_DYNAMO_TABLE":  "tides",
				"CACHE_FILE_PATH":     "/tmp/tides-cache.json",
			},
			check: func(t *testing.T, c *CacheConfig) {
				assert.Equal(t, 16, c.LRUSize)
				assert.True(t, c.EnableDynamoCache)
				assert.Equal(t, "tides", c.DynamoTable)
				assert.Equal(t, "/tmp/tides-cache.json", c.FilePath)
			},
		},
		{
			name: "invalid numeric values",
			envVars: map[string]string{
				"CACHE_LRU_SIZE": "invalid",
			},
			check: func(t *testing.T, c *CacheConfig) {
				assert.Equal(t, defaultLRUSize, c.LRUSize)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"CACHE_LRU_SIZE", "CACHE_ENABLE_DYNAMO", "CACHE_DYNAMO_TABLE", "CACHE_FILE_PATH"} {
				t.Setenv(k, "")
				require.NoError(t, os.Unsetenv(k))
			}
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			tt.check(t, GetCacheConfig())
		})
	}
}
