package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestParseEnv(t *testing.T) {
	var c Config
	c.LoadDefaults()

	err := parseEnv(&c, mapLookup(map[string]string{
		"DAILYGRACE_DB":               "/data/grace.db",
		"DAILYGRACE_CLOUD_DSN":        "postgres://grace@db/grace",
		"DAILYGRACE_JWT_SECRET":       "s3cret",
		"DAILYGRACE_SETTLE_DELAY":     "1s",
		"DAILYGRACE_RECONCILE_POLICY": "merge",
		"DAILYGRACE_DEBUG":            "true",
		"DAILYGRACE_RATE_LIMIT":       "2.5",
		"DAILYGRACE_RATE_BURST":       "5",
		"UNRELATED":                   "x",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/data/grace.db", c.DBPath)
	assert.Equal(t, "postgres://grace@db/grace", c.CloudDSN)
	assert.Equal(t, "s3cret", c.JWTSecret)
	assert.Equal(t, time.Second, c.SettleDelay)
	assert.Equal(t, PolicyMerge, c.ReconcilePolicy)
	assert.True(t, c.Debug)
	assert.Equal(t, 2.5, c.RateLimit)
	assert.Equal(t, 5, c.RateBurst)
	// untouched
	assert.Equal(t, "127.0.0.1:8787", c.HTTPAddr)
}

func TestParseEnv_Errors(t *testing.T) {
	for _, kv := range [][2]string{
		{"DAILYGRACE_SETTLE_DELAY", "soon"},
		{"DAILYGRACE_DEBUG", "maybe"},
		{"DAILYGRACE_RATE_LIMIT", "fast"},
		{"DAILYGRACE_RATE_BURST", "1.5"},
	} {
		var c Config
		err := parseEnv(&c, mapLookup(map[string]string{kv[0]: kv[1]}))
		assert.Error(t, err, kv[0])
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DAILYGRACE_HTTP_ADDR=127.0.0.1:9999\n"), 0o600))
	t.Setenv("DAILYGRACE_HTTP_ADDR", "")
	require.NoError(t, os.Unsetenv("DAILYGRACE_HTTP_ADDR"))

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.HTTPAddr)
}

func TestLoad_EnvBeatsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DAILYGRACE_TZ=UTC\n"), 0o600))
	t.Setenv("DAILYGRACE_TZ", "Asia/Seoul")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Seoul", cfg.TimeZone)
}
