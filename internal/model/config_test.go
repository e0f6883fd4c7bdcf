package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultAppConfig(), cfg)
	assert.Equal(t, 5*time.Minute, cfg.Widget.CacheTTL())
	assert.Equal(t, 30*time.Second, cfg.Widget.PollInterval())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://community.example.com/api
widget:
  limit: 3
store:
  backend: redis
  redis_addr: cache:6379
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://community.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout())
	assert.Equal(t, 3, cfg.Widget.Limit)
	assert.Equal(t, 300, cfg.Widget.CacheTTLSec)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "cache:6379", cfg.Store.RedisAddr)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("WIDGETFEED_API_BASE_URL", "https://env.example.com")
	t.Setenv("WIDGETFEED_WIDGET_LIMIT", "9")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.API.BaseURL)
	assert.Equal(t, 9, cfg.Widget.Limit)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unterminated"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultAppConfig()
	cfg.API.BaseURL = "https://saved.example.com"
	cfg.Widget.Limit = 4
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestAppConfig_Validate(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.Store.Backend = "etcd"
	cfg.Widget.Limit = 0
	cfg.Widget.CacheTTLSec = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "store.backend")
	assert.ErrorContains(t, err, "widget.limit")
	assert.ErrorContains(t, err, "widget.cache_ttl_sec")

	cfg = DefaultAppConfig()
	cfg.Store.Backend = BackendRedis
	cfg.Store.RedisAddr = ""
	assert.ErrorContains(t, cfg.Validate(), "store.redis_addr")
}

func TestAppConfig_RequireAPI(t *testing.T) {
	cfg := DefaultAppConfig()
	assert.Error(t, cfg.RequireAPI())

	cfg.API.BaseURL = "https://x.example.com"
	assert.NoError(t, cfg.RequireAPI())
}
