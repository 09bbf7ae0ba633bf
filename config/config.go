// Package config loads process configuration once at startup.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable of the process. It is built in main and passed
// down explicitly; modules never read the environment themselves.
type Config struct {
	Port int `mapstructure:"PORT"`

	DBDriver string `mapstructure:"DB_DRIVER"`
	DBDSN    string `mapstructure:"DB_DSN"`

	JWTSecret    string        `mapstructure:"JWT_SECRET"`
	JWTIssuer    string        `mapstructure:"JWT_ISSUER"`
	SessionTTL   time.Duration `mapstructure:"SESSION_TTL"`
	CookieSecure bool          `mapstructure:"COOKIE_SECURE"`

	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`
	GoogleTokenURL     string `mapstructure:"GOOGLE_TOKEN_URL"`
	GoogleCalendarURL  string `mapstructure:"GOOGLE_CALENDAR_ENDPOINT"`

	CalendarName     string `mapstructure:"GOOGLE_CALENDAR_NAME"`
	CalendarTimeZone string `mapstructure:"GOOGLE_CALENDAR_TIMEZONE"`
	EventSummary     string `mapstructure:"GOOGLE_EVENT_SUMMARY"`
	EventSourceTitle string `mapstructure:"GOOGLE_EVENT_SOURCE_TITLE"`
	EventSourceURL   string `mapstructure:"GOOGLE_EVENT_SOURCE_URL"`

	HTTPTimeout  time.Duration `mapstructure:"GOOGLE_HTTP_TIMEOUT"`
	RetryBackoff time.Duration `mapstructure:"GOOGLE_RETRY_BACKOFF"`
	SyncTimeout  time.Duration `mapstructure:"GOOGLE_SYNC_TIMEOUT"`

	RateLimitMax    int           `mapstructure:"RATE_LIMIT_MAX"`
	RateLimitWindow time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`
	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
}

var defaults = map[string]any{
	"PORT":                      3000,
	"DB_DRIVER":                 "sqlite",
	"DB_DSN":                    "schedule_sync.db",
	"JWT_SECRET":                "",
	"JWT_ISSUER":                "schedule-sync",
	"SESSION_TTL":               "168h",
	"COOKIE_SECURE":             false,
	"GOOGLE_CLIENT_ID":          "",
	"GOOGLE_CLIENT_SECRET":      "",
	"GOOGLE_REDIRECT_URL":       "postmessage",
	"GOOGLE_TOKEN_URL":          "https://oauth2.googleapis.com/token",
	"GOOGLE_CALENDAR_ENDPOINT":  "https://www.googleapis.com/calendar/v3/",
	"GOOGLE_CALENDAR_NAME":      "Appointments",
	"GOOGLE_CALENDAR_TIMEZONE":  "UTC",
	"GOOGLE_EVENT_SUMMARY":      "Appointment",
	"GOOGLE_EVENT_SOURCE_TITLE": "Open schedule",
	"GOOGLE_EVENT_SOURCE_URL":   "https://localhost:3000/schedule",
	"GOOGLE_HTTP_TIMEOUT":       "4s",
	"GOOGLE_RETRY_BACKOFF":      "250ms",
	"GOOGLE_SYNC_TIMEOUT":       "20s",
	"RATE_LIMIT_MAX":            20,
	"RATE_LIMIT_WINDOW":         "1m",
	"REDIS_ADDR":                "",
}

// Load reads configuration from an optional .env file in dir and the
// environment, which takes precedence.
func Load(dir string) (Config, error) {
	var cfg Config

	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigFile(dir + "/.env")
	v.SetConfigType("env")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	// A missing .env is fine; the environment and defaults still apply.
	if err := v.ReadInConfig(); err != nil && !missingFile(err) {
		return cfg, fmt.Errorf("failed to read %s/.env: %w", dir, err)
	}

	for key := range defaults {
		if err := v.BindEnv(key); err != nil {
			return cfg, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func missingFile(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound)
}

// Validate checks the settings without which the process cannot run.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}
