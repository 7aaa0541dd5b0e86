package config

import "github.com/spf13/pflag"

// BindFlags registers command-line flags on fs that write straight into c.
// Current field values become the flag defaults, so flags override only what
// the user actually passes. Call it after Load.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	// -c/--config is consumed by Load; it is registered so the parser
	// accepts it.
	fs.StringP("config", "c", "", "path to JSON config file")

	fs.StringVar(&c.DBPath, "db", c.DBPath, "local SQLite database file")
	fs.StringVar(&c.CloudDSN, "cloud-dsn", c.CloudDSN, "Postgres DSN of the hosted backend (empty = offline)")
	fs.StringVar(&c.ReconcilePolicy, "policy", c.ReconcilePolicy, "login reconcile policy: overwrite or merge")
	fs.DurationVar(&c.SettleDelay, "settle", c.SettleDelay, "delay before a deferred action resumes after login")
	fs.DurationVar(&c.MirrorTimeout, "mirror-timeout", c.MirrorTimeout, "timeout for one cloud mirror call (0 = none)")
	fs.StringVar(&c.TimeZone, "tz", c.TimeZone, "IANA time zone for calendar days (empty = local)")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "rotate JSON logs into this file instead of stdout")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "enable debug logging")
	fs.StringVarP(&c.HTTPAddr, "addr", "a", c.HTTPAddr, "listen address of the local API")
	fs.Float64Var(&c.RateLimit, "rate", c.RateLimit, "API requests per second per client")
	fs.IntVar(&c.RateBurst, "burst", c.RateBurst, "API burst size per client")
}
