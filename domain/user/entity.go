package user

import (
	"time"
)

// User represents a user entity in the system.
type User struct {
	ID           string     `gorm:"primaryKey;type:text"`
	Name         string     `gorm:"not null;type:text"`
	Email        string     `gorm:"uniqueIndex;not null;type:text"`
	PasswordHash string     `gorm:"not null;type:text"`
	GoogleAuth   GoogleAuth `gorm:"embedded;embeddedPrefix:google_"`
	CalendarID   string     `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// HasGoogleAuth reports whether the user ever linked a Google account.
func (u *User) HasGoogleAuth() bool {
	return u.GoogleAuth.RefreshToken != "" || u.GoogleAuth.AccessToken != ""
}

// GoogleAuth is the OAuth credential bundle for the calendar provider.
// ExpiresAt is the only freshness signal.
type GoogleAuth struct {
	AccessToken  string `gorm:"type:text"`
	RefreshToken string `gorm:"type:text"`
	ExpiresAt    time.Time
}

// Fresh reports whether the access token can still be used at now.
func (a GoogleAuth) Fresh(now time.Time) bool {
	return a.AccessToken != "" && a.ExpiresAt.After(now)
}

// Patch is a partial update keyed by column name.
type Patch map[string]any

// Session is the identity carried by a session token.
type Session struct {
	UserID string `json:"user"`
	Email  string `json:"email"`
	Token  string `json:"token,omitempty"`
}
