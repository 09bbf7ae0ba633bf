package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when the token is invalid.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

// DefaultSessionTTL is the validity window of every issued session token.
const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionConfig holds session token configuration.
type SessionConfig struct {
	SecretKey string
	Issuer    string
	TTL       time.Duration
}

// SessionClaims is the payload of a session token.
type SessionClaims struct {
	User  string `json:"user"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// SessionManager signs and verifies session tokens.
type SessionManager struct {
	config SessionConfig
	now    func() time.Time
}

// NewSessionManager creates a new SessionManager with the given configuration.
func NewSessionManager(config SessionConfig) *SessionManager {
	if config.TTL <= 0 {
		config.TTL = DefaultSessionTTL
	}
	return &SessionManager{
		config: config,
		now:    time.Now,
	}
}

// Issue signs a brand-new token valid for the full TTL from now.
// Each call carries a fresh token id, so two tokens for the same user never collide.
func (m *SessionManager) Issue(userID, email string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.config.TTL)
	claims := SessionClaims{
		User:  userID,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.config.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.config.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify checks signature and expiry and returns the claims.
func (m *SessionManager) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.config.SecretKey), nil
	}, jwt.WithTimeFunc(m.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// TTL returns the session validity window.
func (m *SessionManager) TTL() time.Duration {
	return m.config.TTL
}
