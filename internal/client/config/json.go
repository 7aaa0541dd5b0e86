package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dailygrace/dailygrace/internal/flagx"
	"github.com/dailygrace/dailygrace/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields tell
// "absent" from "zero", so a file only overrides what it mentions.
// Durations accept "3s" as well as integer nanoseconds.
type JsonConfig struct {
	DBPath          *string         `json:"db_path"`
	CloudDSN        *string         `json:"cloud_dsn"`
	JWTSecret       *string         `json:"jwt_secret"`
	AccessTokenTTL  *timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL *timex.Duration `json:"refresh_token_ttl"`
	S3Endpoint      *string         `json:"s3_endpoint"`
	S3Region        *string         `json:"s3_region"`
	S3Bucket        *string         `json:"s3_bucket"`
	S3AccessKey     *string         `json:"s3_access_key"`
	S3SecretKey     *string         `json:"s3_secret_key"`
	SettleDelay     *timex.Duration `json:"settle_delay"`
	MirrorTimeout   *timex.Duration `json:"mirror_timeout"`
	ReconcilePolicy *string         `json:"reconcile_policy"`
	TimeZone        *string         `json:"time_zone"`
	LogFile         *string         `json:"log_file"`
	Debug           *bool           `json:"debug"`
	HTTPAddr        *string         `json:"http_addr"`
	RateLimit       *float64        `json:"rate_limit"`
	RateBurst       *int            `json:"rate_burst"`
}

// parseJSON overlays cfg with the file named by -c/-config in args. No flag,
// no change.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.JSONConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	jc.apply(cfg)
	return nil
}

func (jc *JsonConfig) apply(cfg *Config) {
	setStr := func(src *string, dst *string) {
		if src != nil {
			*dst = *src
		}
	}

	setStr(jc.DBPath, &cfg.DBPath)
	setStr(jc.CloudDSN, &cfg.CloudDSN)
	setStr(jc.JWTSecret, &cfg.JWTSecret)
	setStr(jc.S3Endpoint, &cfg.S3Endpoint)
	setStr(jc.S3Region, &cfg.S3Region)
	setStr(jc.S3Bucket, &cfg.S3Bucket)
	setStr(jc.S3AccessKey, &cfg.S3AccessKey)
	setStr(jc.S3SecretKey, &cfg.S3SecretKey)
	setStr(jc.ReconcilePolicy, &cfg.ReconcilePolicy)
	setStr(jc.TimeZone, &cfg.TimeZone)
	setStr(jc.LogFile, &cfg.LogFile)
	setStr(jc.HTTPAddr, &cfg.HTTPAddr)

	if jc.AccessTokenTTL != nil {
		cfg.AccessTokenTTL = jc.AccessTokenTTL.Duration
	}
	if jc.RefreshTokenTTL != nil {
		cfg.RefreshTokenTTL = jc.RefreshTokenTTL.Duration
	}
	if jc.SettleDelay != nil {
		cfg.SettleDelay = jc.SettleDelay.Duration
	}
	if jc.MirrorTimeout != nil {
		cfg.MirrorTimeout = jc.MirrorTimeout.Duration
	}
	if jc.Debug != nil {
		cfg.Debug = *jc.Debug
	}
	if jc.RateLimit != nil {
		cfg.RateLimit = *jc.RateLimit
	}
	if jc.RateBurst != nil {
		cfg.RateBurst = *jc.RateBurst
	}
}
