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

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJSON_SourcesAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := writeTempJSON(t, dir, "grace.json", map[string]any{
		"db_path":          "/srv/grace.db",
		"settle_delay":     "1500ms",
		"mirror_timeout":   2000000000,
		"reconcile_policy": "merge",
		"rate_burst":       7,
	})

	t.Run("loads file named by -config", func(t *testing.T) {
		var cfg Config
		cfg.LoadDefaults()
		require.NoError(t, parseJSON(&cfg, []string{"serve", "-config", path}))

		assert.Equal(t, "/srv/grace.db", cfg.DBPath)
		assert.Equal(t, 1500*time.Millisecond, cfg.SettleDelay)
		assert.Equal(t, 2*time.Second, cfg.MirrorTimeout)
		assert.Equal(t, PolicyMerge, cfg.ReconcilePolicy)
		assert.Equal(t, 7, cfg.RateBurst)
		// keys absent from the file keep earlier values
		assert.Equal(t, "127.0.0.1:8787", cfg.HTTPAddr)
		assert.Equal(t, 20.0, cfg.RateLimit)
	})

	t.Run("no flag, no changes", func(t *testing.T) {
		cfg := Config{DBPath: "keep.db"}
		require.NoError(t, parseJSON(&cfg, []string{"serve"}))
		assert.Equal(t, "keep.db", cfg.DBPath)
	})

	t.Run("missing file", func(t *testing.T) {
		var cfg Config
		require.Error(t, parseJSON(&cfg, []string{"-c", filepath.Join(dir, "nope.json")}))
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not json`), 0o600))

		var cfg Config
		require.Error(t, parseJSON(&cfg, []string{"-c", bad}))
	})
}
