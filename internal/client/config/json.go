package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/babeledit/internal/flagx"
	"github.com/dmitrijs2005/babeledit/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// Durations are timex.Duration so the file may use "30s" or nanoseconds.
// Pointer fields distinguish "absent" from the zero value.
type JsonConfig struct {
	APIURL              *string         `json:"api_url"`
	Environment         *string         `json:"environment"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	Retries             *int            `json:"retries"`
	RetryDelay          *timex.Duration `json:"retry_delay"`
	RefreshPath         *string         `json:"refresh_path"`
	HealthPath          *string         `json:"health_path"`
	HealthTimeout       *timex.Duration `json:"health_timeout"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	SessionStore        *string         `json:"session_store"`
	SessionDBPath       *string         `json:"session_db"`
	CookieMaxAge        *timex.Duration `json:"cookie_max_age"`
	LogLevel            *string         `json:"log_level"`
	LogFormat           *string         `json:"log_format"`
}

// LoadJSON overlays values from the JSON file named by -c/--config.
// Without that flag nothing changes. The passphrase is never read from
// the file.
func (c *Config) LoadJSON(args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	jc.apply(c)
	return nil
}

func (jc JsonConfig) apply(c *Config) {
	setString(&c.APIURL, jc.APIURL)
	setString(&c.Environment, jc.Environment)
	setDuration(&c.RequestTimeout, jc.RequestTimeout)
	if jc.Retries != nil {
		c.Retries = *jc.Retries
	}
	setDuration(&c.RetryDelay, jc.RetryDelay)
	setString(&c.RefreshPath, jc.RefreshPath)
	setString(&c.HealthPath, jc.HealthPath)
	setDuration(&c.HealthTimeout, jc.HealthTimeout)
	setDuration(&c.OnlineCheckInterval, jc.OnlineCheckInterval)
	setString(&c.SessionStore, jc.SessionStore)
	setString(&c.SessionDBPath, jc.SessionDBPath)
	setDuration(&c.CookieMaxAge, jc.CookieMaxAge)
	setString(&c.LogLevel, jc.LogLevel)
	setString(&c.LogFormat, jc.LogFormat)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
