package google

import (
	"time"

	"github.com/example/schedule-sync/config"
)

// Config holds the OAuth client and calendar settings of the module.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	TokenURL     string

	// CalendarEndpoint is the base URL of the Calendar API, ending in a slash.
	CalendarEndpoint string
	CalendarName     string
	TimeZone         string

	EventSummary string
	SourceTitle  string
	SourceURL    string

	// HTTPTimeout bounds one attempt of a provider call.
	HTTPTimeout  time.Duration
	RetryBackoff time.Duration
	// SyncTimeout bounds a whole operation, refresh and provisioning
	// included. It must stay below the request-reply deadline of callers.
	SyncTimeout time.Duration
}

// ConfigFrom extracts the module settings from the process configuration.
func ConfigFrom(cfg config.Config) Config {
	return Config{
		ClientID:         cfg.GoogleClientID,
		ClientSecret:     cfg.GoogleClientSecret,
		RedirectURL:      cfg.GoogleRedirectURL,
		TokenURL:         cfg.GoogleTokenURL,
		CalendarEndpoint: cfg.GoogleCalendarURL,
		CalendarName:     cfg.CalendarName,
		TimeZone:         cfg.CalendarTimeZone,
		EventSummary:     cfg.EventSummary,
		SourceTitle:      cfg.EventSourceTitle,
		SourceURL:        cfg.EventSourceURL,
		HTTPTimeout:      cfg.HTTPTimeout,
		RetryBackoff:     cfg.RetryBackoff,
		SyncTimeout:      cfg.SyncTimeout,
	}
}
