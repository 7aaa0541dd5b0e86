package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dailygrace/dailygrace/internal/common"
	"github.com/dailygrace/dailygrace/internal/filex"
)

// Reconcile policies understood by the login-time reconciler.
const (
	PolicyOverwrite = "overwrite"
	PolicyMerge     = "merge"
)

// Config holds runtime settings for the journal client, the local API
// and the hosted backend adapters.
type Config struct {
	// DBPath is the local SQLite database file.
	DBPath string

	// CloudDSN is the Postgres DSN of the hosted backend. Empty runs the
	// client fully offline.
	CloudDSN        string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string

	SettleDelay     time.Duration
	MirrorTimeout   time.Duration
	ReconcilePolicy string
	TimeZone        string

	LogFile string
	Debug   bool

	HTTPAddr  string
	RateLimit float64
	RateBurst int
}

// LoadDefaults populates c with defaults suitable for a single local user.
func (c *Config) LoadDefaults() {
	c.DBPath = filepath.Join(filex.DefaultDataDir(common.AppName), common.AppName+".db")
	c.AccessTokenTTL = 15 * time.Minute
	c.RefreshTokenTTL = 30 * 24 * time.Hour
	c.S3Region = "us-east-1"
	c.S3Bucket = "dailygrace-cards"
	c.SettleDelay = 300 * time.Millisecond
	c.ReconcilePolicy = PolicyOverwrite
	c.HTTPAddr = "127.0.0.1:8787"
	c.RateLimit = 20
	c.RateBurst = 40
}

// Load builds a Config from defaults, then .env and the process
// environment, then the JSON file named by -c/-config in args. Command-line
// flags are applied later through BindFlags when the command line is parsed.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location resolves TimeZone; empty means the machine's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.TimeZone)
}

// CloudEnabled reports whether a hosted backend is configured.
func (c *Config) CloudEnabled() bool {
	return c.CloudDSN != ""
}

// Validate checks cross-field constraints once every source was applied.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("db path is required")
	}
	if c.ReconcilePolicy != PolicyOverwrite && c.ReconcilePolicy != PolicyMerge {
		return fmt.Errorf("unknown reconcile policy %q", c.ReconcilePolicy)
	}
	if c.CloudEnabled() && c.JWTSecret == "" {
		return errors.New("jwt secret is required when cloud dsn is set")
	}
	if c.SettleDelay < 0 || c.MirrorTimeout < 0 {
		return errors.New("durations must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("time zone: %w", err)
	}
	return nil
}
