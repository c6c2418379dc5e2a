package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-matcher/internal/scoring"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DISCOVERY_GEO_TIMEOUT", "")

	cfg := New()

	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, 10, cfg.Discovery.DefaultLimit)
	assert.Equal(t, 50, cfg.Discovery.MaxLimit)
	assert.Equal(t, 250*time.Millisecond, cfg.Discovery.GeoTimeout)
	assert.InDelta(t, 1.0, cfg.Matching.Weights.Sum(), 1e-9)
	require.NoError(t, cfg.Validate())
}

func TestNewReadsEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DISCOVERY_DEFAULT_LIMIT", "5")
	t.Setenv("DISCOVERY_GEO_TIMEOUT", "1s")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := New()

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 5, cfg.Discovery.DefaultLimit)
	assert.Equal(t, time.Second, cfg.Discovery.GeoTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
}

func TestApplyFileOverridesWeightsAndDiscovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matching.yaml")
	doc := `
discovery:
  max_limit: 30
  geo_timeout: 400ms
matching:
  weights:
    cultural: 0.2
    lifestyle: 0.2
    economic: 0.2
    timezone: 0.1
    interests: 0.2
    values: 0.1
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg := New()
	require.NoError(t, cfg.ApplyFile(path))

	assert.Equal(t, 30, cfg.Discovery.MaxLimit)
	assert.Equal(t, 10, cfg.Discovery.DefaultLimit)
	assert.Equal(t, 400*time.Millisecond, cfg.Discovery.GeoTimeout)
	assert.InDelta(t, 0.2, cfg.Matching.Weights.Economic, 1e-9)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadWeights(t *testing.T) {
	cfg := New()
	cfg.DB.Driver = "mysql"

	cfg.Matching.Weights.Values = 0.5
	assert.ErrorContains(t, cfg.Validate(), "sum to 1.0")

	cfg.Matching.Weights = scoring.DefaultWeights()
	cfg.Matching.Weights.Values = -0.15
	cfg.Matching.Weights.Cultural = 0.55
	assert.ErrorContains(t, cfg.Validate(), "non-negative")
}

func TestApplyYAMLRejectsBadDuration(t *testing.T) {
	cfg := New()
	err := cfg.ApplyYAML([]byte("discovery:\n  geo_timeout: soon\n"))
	assert.Error(t, err)
}
