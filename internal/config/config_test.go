package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memBackend is an in-memory ConfigBackend.
type memBackend struct {
	strs map[string]string
	ints map[string]int
}

func newMemBackend() *memBackend {
	return &memBackend{strs: map[string]string{}, ints: map[string]int{}}
}

func (m *memBackend) GetString(key string) (string, bool, error) {
	v, ok := m.strs[key]
	return v, ok, nil
}

func (m *memBackend) GetInt(key string) (int, bool, error) {
	v, ok := m.ints[key]
	return v, ok, nil
}

func (m *memBackend) SetString(key, val string) error  { m.strs[key] = val; return nil }
func (m *memBackend) SetInt(key string, val int) error { m.ints[key] = val; return nil }
func (m *memBackend) Delete(key string) error {
	delete(m.strs, key)
	delete(m.ints, key)
	return nil
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		t.Setenv(s.env, "")
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(newMemBackend())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.Server.MCPEnabled)
	assert.Equal(t, "http://127.0.0.1:5001", cfg.Backend.BaseURL)
	assert.NotEqual(t, cfg.Backend.UnreviewedDatasetID, cfg.Backend.ReviewedDatasetID, "dataset ids must differ by default")
	assert.Equal(t, 20, cfg.Console.PageSize)
	assert.Equal(t, 80, cfg.Console.DuplicateThreshold)
	assert.Equal(t, 500*time.Millisecond, cfg.Console.RecheckDelayDuration())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestBackendValuesApplied(t *testing.T) {
	clearEnv(t)

	b := newMemBackend()
	b.ints["server.port"] = 9090
	b.strs["backend.base_url"] = "http://kb.internal:5001"
	b.strs["server.mcp_enabled"] = "true"
	b.ints["console.page_size"] = 50

	cfg, err := loadWith(b)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://kb.internal:5001", cfg.Backend.BaseURL)
	assert.True(t, cfg.Server.MCPEnabled)
	assert.Equal(t, 50, cfg.Console.PageSize)
}

func TestEnvOverride(t *testing.T) {
	clearEnv(t)

	b := newMemBackend()
	b.ints["server.port"] = 9090
	t.Setenv("QAREVIEW_SERVER_PORT", "7070")
	t.Setenv("QAREVIEW_CONSOLE_TIMEZONE", "UTC")

	cfg, err := loadWith(b)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, time.UTC, cfg.Console.Location())
}

func TestEnvOverrideInvalidIntKeepsValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("QAREVIEW_CONSOLE_PAGE_SIZE", "lots")

	cfg, err := loadWith(newMemBackend())
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Console.PageSize)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"relative url", func(c *Config) { c.Backend.BaseURL = "kb:5001" }, "backend.base_url"},
		{"same datasets", func(c *Config) { c.Backend.ReviewedDatasetID = c.Backend.UnreviewedDatasetID }, "must differ"},
		{"empty dataset", func(c *Config) { c.Backend.ReviewedDatasetID = "" }, "must not be empty"},
		{"zero page size", func(c *Config) { c.Console.PageSize = 0 }, "console.page_size"},
		{"threshold", func(c *Config) { c.Console.DuplicateThreshold = 120 }, "console.duplicate_threshold"},
		{"delay", func(c *Config) { c.Console.RecheckDelay = "soon" }, "console.recheck_delay"},
		{"timezone", func(c *Config) { c.Console.Timezone = "Mars/Olympus" }, "console.timezone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	path := writeTempConfig(t, `{"server.port": 9191, "log.level": "debug"}`)

	b := newFileBackend(path)
	port, ok, err := b.GetInt("server.port")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 9191, port)
	level, ok, _ := b.GetString("log.level")
	require.True(t, ok)
	assert.Equal(t, "debug", level)

	require.NoError(t, setKeyWith(b, "console.page_size", "30"))
	assert.Error(t, setKeyWith(b, "server.mcp_enabled", "yes"), "invalid bool")

	reloaded := newFileBackend(path)
	size, ok, err := reloaded.GetInt("console.page_size")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 30, size)
}

func TestFileBackendFractionalInt(t *testing.T) {
	path := writeTempConfig(t, `{"server.port": 80.5}`)
	_, _, err := newFileBackend(path).GetInt("server.port")
	assert.Error(t, err)
}

func TestSetKeyUnknown(t *testing.T) {
	assert.Error(t, setKeyWith(newMemBackend(), "proxy.model", "x"))
}

func TestShowAllCoversEveryKey(t *testing.T) {
	infos := ShowAll(defaults())
	keys := ValidKeys()
	require.Len(t, infos, len(keys))
	for i, info := range infos {
		assert.Equal(t, keys[i], info.Key)
		assert.True(t, strings.HasPrefix(info.EnvVar, "QAREVIEW_"), "env var %q lacks QAREVIEW_ prefix", info.EnvVar)
	}
}
