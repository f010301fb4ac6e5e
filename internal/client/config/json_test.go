package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestParseJSON_OverlaysPresentFields(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"store":            "memory",
		"cache_passphrase": "hunter2",
		"refresh_margin":   "2m",
		"refresh_interval": 1_000_000_000,
	})

	var c Config
	c.LoadDefaults()
	require.NoError(t, parseJSON(&c, path))

	assert.Equal(t, StoreMemory, c.Store)
	assert.Equal(t, "hunter2", c.CachePassphrase)
	assert.Equal(t, 2*time.Minute, c.RefreshMargin)
	assert.Equal(t, time.Second, c.RefreshInterval)
	// untouched
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.Equal(t, ".tripzy", c.DataDir)
}

func TestParseJSON_Invalid(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{ not json`), 0o600))

	var c Config
	err := parseJSON(&c, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")

	badDur := writeTempJSON(t, map[string]any{"request_timeout": "soon"})
	require.Error(t, parseJSON(&c, badDur))
}
