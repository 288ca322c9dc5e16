package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_OverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[store]
uri = "bolt://graph:7687"
database = "physio"

[reasoning]
max_concurrent_fetches = 1
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "bolt://graph:7687", cfg.Store.URI)
	assert.Equal(t, "physio", cfg.Store.Database)
	assert.Equal(t, 1, cfg.Reasoning.MaxConcurrentFetches)
	// untouched sections keep their defaults
	assert.Equal(t, 50, cfg.Store.MaxPoolSize)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[store\nuri="), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse TOML")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"MEMGRAPH_URI":        "bolt://memgraph:7687",
		"NEO4J_PASSWORD":      "secret",
		"NEO4J_MAX_POOL_SIZE": "not-a-number",
		"PORT":                "9090",
		"LOG_LEVEL":           "DEBUG",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "bolt://memgraph:7687", cfg.Store.URI)
	assert.Equal(t, "secret", cfg.Store.Password)
	assert.Equal(t, 50, cfg.Store.MaxPoolSize)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Store.URI = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Breaker.FailureThreshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Server.Port = "http"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Reasoning.MaxConcurrentFetches = 0
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv_ServerLimits(t *testing.T) {
	env := map[string]string{
		"CORS_ORIGINS":          " http://localhost:3000, ,https://physio.example.org ",
		"RATE_LIMIT_PER_MINUTE": "0",
		"TRUSTED_PROXIES":       "10.0.0.0/8, 192.0.2.1",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, []string{"http://localhost:3000", "https://physio.example.org"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 0, cfg.Server.RateLimitPerMinute)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, cfg.Server.TrustedProxies)
	assert.NoError(t, cfg.Validate())

	cfg.Server.TrustedProxies = []string{"proxy.internal"}
	assert.Error(t, cfg.Validate())
	cfg.Server.TrustedProxies = nil

	cfg.Server.CORSOrigins = []string{"not a url"}
	assert.Error(t, cfg.Validate())
}
