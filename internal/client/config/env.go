package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "DAILYGRACE_"

// loadDotEnv exports variables from path into the process environment.
// Variables already set win over the file; a missing file is fine.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// parseEnv overlays cfg with DAILYGRACE_* variables.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(envPrefix + name)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = d
		return nil
	}

	str("DB", &cfg.DBPath)
	str("CLOUD_DSN", &cfg.CloudDSN)
	str("JWT_SECRET", &cfg.JWTSecret)
	str("S3_ENDPOINT", &cfg.S3Endpoint)
	str("S3_REGION", &cfg.S3Region)
	str("S3_BUCKET", &cfg.S3Bucket)
	str("S3_ACCESS_KEY", &cfg.S3AccessKey)
	str("S3_SECRET_KEY", &cfg.S3SecretKey)
	str("RECONCILE_POLICY", &cfg.ReconcilePolicy)
	str("TZ", &cfg.TimeZone)
	str("LOG_FILE", &cfg.LogFile)
	str("HTTP_ADDR", &cfg.HTTPAddr)

	for name, dst := range map[string]*time.Duration{
		"ACCESS_TTL":     &cfg.AccessTokenTTL,
		"REFRESH_TTL":    &cfg.RefreshTokenTTL,
		"SETTLE_DELAY":   &cfg.SettleDelay,
		"MIRROR_TIMEOUT": &cfg.MirrorTimeout,
	} {
		if err := dur(name, dst); err != nil {
			return err
		}
	}

	if v, ok := lookup(envPrefix + "DEBUG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sDEBUG: %w", envPrefix, err)
		}
		cfg.Debug = b
	}
	if v, ok := lookup(envPrefix + "RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT: %w", envPrefix, err)
		}
		cfg.RateLimit = f
	}
	if v, ok := lookup(envPrefix + "RATE_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sRATE_BURST: %w", envPrefix, err)
		}
		cfg.RateBurst = n
	}
	return nil
}
