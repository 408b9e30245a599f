package application

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout())
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownGrace())
	assert.Zero(t, cfg.Server.RateLimitPerSecond)
	assert.Equal(t, 5, cfg.Explain.TopK)
	assert.Equal(t, 1024, cfg.Explain.CacheCapacity)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestParseConfig(t *testing.T) {
	data := []byte(`
bundle_path: testdata/bundle.yaml
server:
  addr: ":9090"
  read_timeout_seconds: 5
  rate_limit_per_second: 50
  rate_burst: 100
explain:
  top_k: 3
  cache_capacity: 64
logging:
  level: debug
`)

	cfg, err := ParseConfig(data)
	require.NoError(t, err)

	assert.Equal(t, "testdata/bundle.yaml", cfg.BundlePath)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout())
	// Unset fields keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout())
	assert.InDelta(t, 50.0, cfg.Server.RateLimitPerSecond, 1e-9)
	assert.Equal(t, 100, cfg.Server.RateBurst)
	assert.Equal(t, 3, cfg.Explain.TopK)
	assert.Equal(t, 64, cfg.Explain.CacheCapacity)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestParseConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name:    "missing bundle path",
			data:    "server:\n  addr: \":8000\"\n",
			wantErr: "config validation failed",
		},
		{
			name:    "unknown field rejected",
			data:    "bundle_path: b.yaml\nserver:\n  adress: \":8000\"\n",
			wantErr: "YAML decode failed",
		},
		{
			name:    "bad log level",
			data:    "bundle_path: b.yaml\nlogging:\n  level: loud\n",
			wantErr: "config validation failed",
		},
		{
			name:    "rate limit without burst",
			data:    "bundle_path: b.yaml\nserver:\n  rate_limit_per_second: 10\n",
			wantErr: "rate_burst must be at least 1",
		},
		{
			name:    "addr without port",
			data:    "bundle_path: b.yaml\nserver:\n  addr: localhost\n",
			wantErr: "config validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseConfigEmptyRequiresBundlePath(t *testing.T) {
	_, err := ParseConfig(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bundle_path: bundle.yaml\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "bundle.yaml", cfg.BundlePath)
	assert.Equal(t, ":8000", cfg.Server.Addr)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}
