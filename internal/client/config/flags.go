package config

import (
	"github.com/spf13/pflag"
)

// ParseFlags overlays values given on the command line.
func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("babeledit", pflag.ContinueOnError)

	// consumed by LoadJSON; declared so it is not rejected as unknown
	fs.StringP("config", "c", "", "Path to JSON config file")

	fs.StringVarP(&c.APIURL, "api-url", "a", c.APIURL, "Storefront API base URL")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (development, production, test)")
	fs.DurationVar(&c.RequestTimeout, "request-timeout", c.RequestTimeout, "Timeout of a single request attempt")
	fs.IntVar(&c.Retries, "retries", c.Retries, "Extra attempts after a network failure")
	fs.DurationVar(&c.RetryDelay, "retry-delay", c.RetryDelay, "Backoff unit between attempts")
	fs.StringVar(&c.RefreshPath, "refresh-path", c.RefreshPath, "Session refresh endpoint")
	fs.StringVar(&c.HealthPath, "health-path", c.HealthPath, "Health check endpoint")
	fs.DurationVar(&c.HealthTimeout, "health-timeout", c.HealthTimeout, "Health check timeout")
	fs.DurationVarP(&c.OnlineCheckInterval, "online-check-interval", "i", c.OnlineCheckInterval, "How often server reachability is checked")
	fs.StringVarP(&c.SessionStore, "session-store", "s", c.SessionStore, "Session store (sqlite, cookie, memory)")
	fs.StringVarP(&c.SessionDBPath, "session-db", "d", c.SessionDBPath, "Session database file")
	fs.DurationVar(&c.CookieMaxAge, "cookie-max-age", c.CookieMaxAge, "Lifetime of session cookies")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "Log format (text, json)")

	return fs.Parse(args)
}
