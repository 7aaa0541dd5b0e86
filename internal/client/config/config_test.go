package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "dailygrace.db", filepath.Base(c.DBPath))
	assert.Equal(t, 300*time.Millisecond, c.SettleDelay)
	assert.Equal(t, PolicyOverwrite, c.ReconcilePolicy)
	assert.Equal(t, "127.0.0.1:8787", c.HTTPAddr)
	assert.False(t, c.CloudEnabled())
	require.NoError(t, c.Validate())
}

func TestLoad_DefaultsWithoutSources(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"merge policy", func(c *Config) { c.ReconcilePolicy = PolicyMerge }, true},
		{"unknown policy", func(c *Config) { c.ReconcilePolicy = "yolo" }, false},
		{"empty db", func(c *Config) { c.DBPath = "" }, false},
		{"cloud without secret", func(c *Config) { c.CloudDSN = "postgres://x" }, false},
		{"cloud with secret", func(c *Config) { c.CloudDSN = "postgres://x"; c.JWTSecret = "s" }, true},
		{"negative settle", func(c *Config) { c.SettleDelay = -time.Second }, false},
		{"bad zone", func(c *Config) { c.TimeZone = "Mars/Olympus" }, false},
		{"utc zone", func(c *Config) { c.TimeZone = "UTC" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			if tt.ok {
				assert.NoError(t, c.Validate())
			} else {
				assert.Error(t, c.Validate())
			}
		})
	}
}

func TestLocation(t *testing.T) {
	c := Config{}
	loc, err := c.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	c.TimeZone = "UTC"
	loc, err = c.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}
