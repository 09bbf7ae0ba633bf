package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/example/schedule-sync/domain/errs"
	domain "github.com/example/schedule-sync/domain/user"
	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials is returned when login credentials are invalid.
	ErrInvalidCredentials = errs.New(errs.KindInvalidCredentials, "invalid email or password")
	// ErrInvalidEmail is returned when email format is invalid.
	ErrInvalidEmail = errs.New(errs.KindBadRequest, "invalid email format")
	// ErrShortName is returned when the display name is too short.
	ErrShortName = errs.New(errs.KindBadRequest, "name must be at least 3 characters")
	// ErrWeakPassword is returned when password is too weak.
	ErrWeakPassword = errs.New(errs.KindBadRequest, "password must be at least 6 characters")
	// ErrPasswordTooLong is returned when password exceeds bcrypt's 72-byte limit.
	ErrPasswordTooLong = errs.New(errs.KindBadRequest, "password must be at most 72 characters")
	// ErrMissingToken is returned when no session token was presented.
	ErrMissingToken = errs.New(errs.KindUnauthenticated, "token not found")
	// ErrSessionInvalid is returned when a session token fails verification.
	ErrSessionInvalid = errs.New(errs.KindUnauthenticated, "invalid token")
)

// Column names of the user table touched by patches.
const (
	colName         = "name"
	colEmail        = "email"
	colPasswordHash = "password_hash"
	colAccessToken  = "google_access_token"
	colRefreshToken = "google_refresh_token"
	colExpiresAt    = "google_expires_at"
	colCalendarID   = "calendar_id"
)

// AuthService handles account and session business logic.
type AuthService struct {
	repo     *UserRepository
	hasher   *PasswordHasher
	sessions *SessionManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *UserRepository, hasher *PasswordHasher, sessions *SessionManager) *AuthService {
	return &AuthService{
		repo:     repo,
		hasher:   hasher,
		sessions: sessions,
	}
}

// SignUp creates a new user account.
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (*SignUpResponse, error) {
	if len(req.Name) < 3 {
		return nil, ErrShortName
	}
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := s.hasher.Validate(req.Password); err != nil {
		return nil, err
	}

	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &SignUpResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}, nil
}

// SignIn authenticates a user and issues a session token.
func (s *AuthService) SignIn(ctx context.Context, req SignInRequest) (*SignInResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.sessions.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	return &SignInResponse{
		User: PublicUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// UpdateUser patches the profile of the given user.
func (s *AuthService) UpdateUser(ctx context.Context, req UpdateUserRequest) error {
	patch := domain.Patch{}

	if req.Name != "" {
		if len(req.Name) < 3 {
			return ErrShortName
		}
		patch[colName] = req.Name
	}

	if req.Email != "" {
		if err := validateEmail(req.Email); err != nil {
			return err
		}
		owner, err := s.repo.FindByEmail(ctx, req.Email)
		switch {
		case err == nil && owner.ID != req.UserID:
			return ErrUserExists
		case err != nil && !errors.Is(err, ErrUserNotFound):
			return fmt.Errorf("failed to check email owner: %w", err)
		}
		patch[colEmail] = req.Email
	}

	if req.Password != "" {
		if err := s.hasher.Validate(req.Password); err != nil {
			return err
		}
		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		patch[colPasswordHash] = hash
	}

	if err := s.repo.Update(ctx, req.UserID, patch); err != nil {
		if errs.KindOf(err) != errs.KindInternal {
			return err
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// RenewSession verifies token, resolves its user and signs a replacement
// valid for a full window from now.
func (s *AuthService) RenewSession(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.sessions.Verify(token)
	if err != nil {
		return nil, errs.Wrap(errs.KindUnauthenticated, "invalid token", err)
	}
	if claims.User == "" {
		return nil, ErrSessionInvalid
	}

	user, err := s.repo.FindByID(ctx, claims.User)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	email := user.Email
	if email == "" {
		email = claims.Email
	}

	renewed, _, err := s.sessions.Issue(user.ID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	return &domain.Session{
		UserID: user.ID,
		Email:  email,
		Token:  renewed,
	}, nil
}

// FindUser returns the stored user including its credential bundle.
func (s *AuthService) FindUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

// SaveGoogleAuth stores the OAuth credential bundle of a user.
// An empty refresh token leaves the stored one in place.
func (s *AuthService) SaveGoogleAuth(ctx context.Context, userID string, auth domain.GoogleAuth) error {
	patch := domain.Patch{
		colAccessToken: auth.AccessToken,
		colExpiresAt:   auth.ExpiresAt,
	}
	if auth.RefreshToken != "" {
		patch[colRefreshToken] = auth.RefreshToken
	}
	return s.repo.Update(ctx, userID, patch)
}

// SaveCalendarID stores the provider calendar id of a user.
func (s *AuthService) SaveCalendarID(ctx context.Context, userID, calendarID string) error {
	return s.repo.Update(ctx, userID, domain.Patch{colCalendarID: calendarID})
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}
