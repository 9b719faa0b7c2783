// Package config loads runtime configuration for the Babel Edit CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see NewConfig).
//  2. A .env file in the working directory (see LoadDotEnv).
//  3. BABEL_* environment variables (see LoadEnv).
//  4. Optional JSON file selected with -c or --config (see LoadJSON).
//  5. Command-line flags (see ParseFlags), which override earlier values.
//
// The assembled Config is validated before it is returned.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "30s" or
// integer nanoseconds:
//
//	{
//	  "api_url": "https://api.babeledit.example/api",
//	  "environment": "production",
//	  "request_timeout": "30s",
//	  "retries": 2,
//	  "online_check_interval": "30s",
//	  "session_store": "sqlite",
//	  "session_db": "/var/lib/babeledit/session.db"
//	}
//
// The session passphrase is only read from BABEL_SESSION_PASSPHRASE.
package config
