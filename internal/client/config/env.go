package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load variables from '.env' (should be located at working directory).
// A missing file is not an error.
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

// LoadEnv overlays the BABEL_* variables that are set and non-empty.
func (c *Config) LoadEnv(getenv func(string) string) error {
	setString := func(o *string) func(string) error {
		return func(value string) error {
			*o = value
			return nil
		}
	}
	setDuration := func(o *time.Duration) func(string) error {
		return func(value string) error {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			*o = d
			return nil
		}
	}
	setInt := func(o *int) func(string) error {
		return func(value string) error {
			n, err := strconv.Atoi(value)
			if err != nil {
				return err
			}
			*o = n
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"BABEL_API_URL":               setString(&c.APIURL),
		"BABEL_ENV":                   setString(&c.Environment),
		"BABEL_REQUEST_TIMEOUT":       setDuration(&c.RequestTimeout),
		"BABEL_RETRIES":               setInt(&c.Retries),
		"BABEL_RETRY_DELAY":           setDuration(&c.RetryDelay),
		"BABEL_REFRESH_PATH":          setString(&c.RefreshPath),
		"BABEL_HEALTH_PATH":           setString(&c.HealthPath),
		"BABEL_HEALTH_TIMEOUT":        setDuration(&c.HealthTimeout),
		"BABEL_ONLINE_CHECK_INTERVAL": setDuration(&c.OnlineCheckInterval),
		"BABEL_SESSION_STORE":         setString(&c.SessionStore),
		"BABEL_SESSION_DB":            setString(&c.SessionDBPath),
		"BABEL_SESSION_PASSPHRASE":    setString(&c.SessionPassphrase),
		"BABEL_COOKIE_MAX_AGE":        setDuration(&c.CookieMaxAge),
		"BABEL_LOG_LEVEL":             setString(&c.LogLevel),
		"BABEL_LOG_FORMAT":            setString(&c.LogFormat),
	}

	for key, parseFn := range envMap {
		value := getenv(key)
		if value == "" {
			continue
		}
		if err := parseFn(value); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}
	return nil
}
