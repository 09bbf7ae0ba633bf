package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/schedule-sync/domain/errs"
	domain "github.com/example/schedule-sync/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthPort defines the account and session operations other modules use.
type AuthPort interface {
	SignUp(ctx context.Context, req SignUpRequest) (*SignUpResponse, error)
	SignIn(ctx context.Context, req SignInRequest) (*SignInResponse, error)
	UpdateUser(ctx context.Context, req UpdateUserRequest) error
	RenewSession(ctx context.Context, token string) (*domain.Session, error)
}

// CredentialStore reads and patches the per-user calendar credentials.
type CredentialStore interface {
	FindUser(ctx context.Context, userID string) (*domain.User, error)
	SaveGoogleAuth(ctx context.Context, userID string, auth domain.GoogleAuth) error
	SaveCalendarID(ctx context.Context, userID, calendarID string) error
}

// AuthService is usable wherever a port is expected, e.g. in tests.
var _ AuthPort = (*AuthService)(nil)
var _ CredentialStore = (*AuthService)(nil)

// AuthAdapter implements AuthPort and CredentialStore using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

var _ AuthPort = (*AuthAdapter)(nil)
var _ CredentialStore = (*AuthAdapter)(nil)

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{
		container: container,
	}
}

// SignUp registers a new account.
func (a *AuthAdapter) SignUp(ctx context.Context, req SignUpRequest) (*SignUpResponse, error) {
	var resp SignUpResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"signup",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("signup request failed: %w", err)
	}
	return &resp, nil
}

// SignIn checks credentials and returns a session token.
func (a *AuthAdapter) SignIn(ctx context.Context, req SignInRequest) (*SignInResponse, error) {
	var resp SignInResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"signin",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("signin request failed: %w", err)
	}
	return &resp, nil
}

// UpdateUser patches a user's profile.
func (a *AuthAdapter) UpdateUser(ctx context.Context, req UpdateUserRequest) error {
	var resp UpdateUserResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"update-user",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return fmt.Errorf("update-user request failed: %w", err)
	}
	return nil
}

// RenewSession verifies token and returns the session with a re-signed token.
func (a *AuthAdapter) RenewSession(ctx context.Context, token string) (*domain.Session, error) {
	req := RenewSessionRequest{Token: token}
	var resp RenewSessionResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"renew-session",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("renew-session request failed: %w", err)
	}

	if !resp.Valid {
		kind := errs.Kind(resp.ErrorKind)
		if kind == "" {
			kind = errs.KindUnauthenticated
		}
		return nil, errs.New(kind, resp.Error)
	}

	return &domain.Session{
		UserID: resp.UserID,
		Email:  resp.Email,
		Token:  resp.Token,
	}, nil
}

// FindUser retrieves a user and its credential bundle by ID.
func (a *AuthAdapter) FindUser(ctx context.Context, userID string) (*domain.User, error) {
	req := GetUserRequest{UserID: userID}
	var resp GetUserResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"get-user",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("get-user request failed: %w", err)
	}

	return &domain.User{
		ID:         resp.ID,
		Name:       resp.Name,
		Email:      resp.Email,
		GoogleAuth: resp.GoogleAuth,
		CalendarID: resp.CalendarID,
		CreatedAt:  resp.CreatedAt,
	}, nil
}

// SaveGoogleAuth stores a user's OAuth credential bundle.
func (a *AuthAdapter) SaveGoogleAuth(ctx context.Context, userID string, auth domain.GoogleAuth) error {
	req := SaveGoogleAuthRequest{UserID: userID, GoogleAuth: auth}
	var resp AckResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"save-google-auth",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return fmt.Errorf("save-google-auth request failed: %w", err)
	}
	return nil
}

// SaveCalendarID stores a user's provider calendar id.
func (a *AuthAdapter) SaveCalendarID(ctx context.Context, userID, calendarID string) error {
	req := SaveCalendarIDRequest{UserID: userID, CalendarID: calendarID}
	var resp AckResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"save-calendar-id",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return fmt.Errorf("save-calendar-id request failed: %w", err)
	}
	return nil
}
