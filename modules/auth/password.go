package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// Password policy. bcrypt ignores everything past 72 bytes, so longer
// passwords are refused instead of silently truncated.
const (
	DefaultBcryptCost = 10
	MinPasswordBytes  = 6
	MaxPasswordBytes  = 72
)

// PasswordHasher enforces the password policy and stores passwords as bcrypt hashes.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher using DefaultBcryptCost.
func NewPasswordHasher() *PasswordHasher {
	return NewPasswordHasherWithCost(DefaultBcryptCost)
}

// NewPasswordHasherWithCost is used by tests to keep hashing fast.
func NewPasswordHasherWithCost(cost int) *PasswordHasher {
	return &PasswordHasher{cost: cost}
}

// Validate checks password against the length policy.
func (h *PasswordHasher) Validate(password string) error {
	switch {
	case len(password) < MinPasswordBytes:
		return ErrWeakPassword
	case len(password) > MaxPasswordBytes:
		return ErrPasswordTooLong
	}
	return nil
}

// Hash validates password and returns its salted hash.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if err := h.Validate(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches hash.
func (h *PasswordHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
