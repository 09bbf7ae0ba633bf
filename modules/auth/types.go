package auth

import (
	"time"

	domain "github.com/example/schedule-sync/domain/user"
)

// SignUpRequest represents a user registration request.
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpResponse represents a user registration response.
type SignUpResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// SignInRequest represents a user login request.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResponse carries the public user fields and a fresh session token.
type SignInResponse struct {
	User      PublicUser `json:"user"`
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// PublicUser is the part of a user safe to hand to clients.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateUserRequest replaces the profile fields of a user. Empty fields are left alone.
type UpdateUserRequest struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserResponse acknowledges a profile update.
type UpdateUserResponse struct {
	Updated bool `json:"updated"`
}

// RenewSessionRequest carries the token presented by the client.
type RenewSessionRequest struct {
	Token string `json:"token"`
}

// RenewSessionResponse is the outcome of verifying and re-issuing a session token.
// Verification failures are reported in the body rather than as a transport error.
type RenewSessionResponse struct {
	Valid     bool   `json:"valid"`
	UserID    string `json:"user_id,omitempty"`
	Email     string `json:"email,omitempty"`
	Token     string `json:"token,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
}

// GetUserRequest represents a get user request.
type GetUserRequest struct {
	UserID string `json:"user_id"`
}

// GetUserResponse carries the credential-bearing view of a user.
type GetUserResponse struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	GoogleAuth domain.GoogleAuth `json:"google_auth"`
	CalendarID string            `json:"calendar_id,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// SaveGoogleAuthRequest stores a user's OAuth credential bundle.
type SaveGoogleAuthRequest struct {
	UserID     string            `json:"user_id"`
	GoogleAuth domain.GoogleAuth `json:"google_auth"`
}

// SaveCalendarIDRequest stores the provider calendar id of a user.
type SaveCalendarIDRequest struct {
	UserID     string `json:"user_id"`
	CalendarID string `json:"calendar_id"`
}

// AckResponse is the empty reply of write-only services.
type AckResponse struct {
	OK bool `json:"ok"`
}
