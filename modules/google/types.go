package google

import (
	"time"

	"github.com/example/schedule-sync/domain/schedule"
)

// AccessToken is a usable provider access token and its absolute expiry.
type AccessToken struct {
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LinkAccountRequest carries the one-time authorization code of a user.
type LinkAccountRequest struct {
	UserID string `json:"user_id"`
	Code   string `json:"code"`
}

// AccessTokenRequest asks for a fresh access token.
type AccessTokenRequest struct {
	UserID string `json:"user_id"`
}

// PushEventRequest creates a remote event for a schedule.
type PushEventRequest struct {
	UserID string        `json:"user_id"`
	Data   schedule.Data `json:"data"`
}

// UpdateEventRequest replaces a remote event.
type UpdateEventRequest struct {
	UserID  string        `json:"user_id"`
	EventID string        `json:"event_id"`
	Data    schedule.Data `json:"data"`
}

// DeleteEventRequest removes a remote event.
type DeleteEventRequest struct {
	UserID  string `json:"user_id"`
	EventID string `json:"event_id"`
}
