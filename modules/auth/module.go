package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/schedule-sync/database"
	"github.com/example/schedule-sync/domain/errs"
	domain "github.com/example/schedule-sync/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/gorm"
)

// AuthModule owns user accounts, session tokens and the credential store.
type AuthModule struct {
	db       *gorm.DB
	sessions SessionConfig
	service  *AuthService
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule on a shared database handle.
func NewModule(db *gorm.DB, sessions SessionConfig) *AuthModule {
	return &AuthModule{
		db:       db,
		sessions: sessions,
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start initializes the auth module.
func (m *AuthModule) Start(_ context.Context) error {
	if m.db == nil {
		return fmt.Errorf("database not set")
	}

	if err := m.db.AutoMigrate(&domain.User{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	m.service = NewAuthService(
		NewUserRepository(m.db),
		NewPasswordHasher(),
		NewSessionManager(m.sessions),
	)

	log.Printf("[auth] Module started (session ttl: %s)", m.sessions.TTL)
	return nil
}

// Stop shuts down the module. The database handle belongs to main.
func (m *AuthModule) Stop(_ context.Context) error {
	log.Println("[auth] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(_ context.Context) mono.HealthStatus {
	if err := database.Ping(m.db); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: err.Error(),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "signup", json.Unmarshal, json.Marshal, m.handleSignUp,
	); err != nil {
		return fmt.Errorf("failed to register signup service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "signin", json.Unmarshal, json.Marshal, m.handleSignIn,
	); err != nil {
		return fmt.Errorf("failed to register signin service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-user", json.Unmarshal, json.Marshal, m.handleUpdateUser,
	); err != nil {
		return fmt.Errorf("failed to register update-user service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "renew-session", json.Unmarshal, json.Marshal, m.handleRenewSession,
	); err != nil {
		return fmt.Errorf("failed to register renew-session service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-user", json.Unmarshal, json.Marshal, m.handleGetUser,
	); err != nil {
		return fmt.Errorf("failed to register get-user service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "save-google-auth", json.Unmarshal, json.Marshal, m.handleSaveGoogleAuth,
	); err != nil {
		return fmt.Errorf("failed to register save-google-auth service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "save-calendar-id", json.Unmarshal, json.Marshal, m.handleSaveCalendarID,
	); err != nil {
		return fmt.Errorf("failed to register save-calendar-id service: %w", err)
	}

	log.Printf("[auth] Registered services: signup, signin, update-user, renew-session, get-user, save-google-auth, save-calendar-id")
	return nil
}

func (m *AuthModule) handleSignUp(ctx context.Context, req SignUpRequest, _ *mono.Msg) (SignUpResponse, error) {
	resp, err := m.service.SignUp(ctx, req)
	if err != nil {
		return SignUpResponse{}, err
	}
	return *resp, nil
}

func (m *AuthModule) handleSignIn(ctx context.Context, req SignInRequest, _ *mono.Msg) (SignInResponse, error) {
	resp, err := m.service.SignIn(ctx, req)
	if err != nil {
		return SignInResponse{}, err
	}
	return *resp, nil
}

func (m *AuthModule) handleUpdateUser(ctx context.Context, req UpdateUserRequest, _ *mono.Msg) (UpdateUserResponse, error) {
	if err := m.service.UpdateUser(ctx, req); err != nil {
		return UpdateUserResponse{}, err
	}
	return UpdateUserResponse{Updated: true}, nil
}

// handleRenewSession reports verification failures in the response body, not as an error.
func (m *AuthModule) handleRenewSession(ctx context.Context, req RenewSessionRequest, _ *mono.Msg) (RenewSessionResponse, error) {
	session, err := m.service.RenewSession(ctx, req.Token)
	if err != nil {
		kind := errs.KindOf(err)
		if kind == errs.KindInternal {
			log.Printf("[auth] Session renewal failed: %v", err)
		}
		return RenewSessionResponse{
			Valid:     false,
			ErrorKind: string(kind),
			Error:     errs.Message(err),
		}, nil
	}

	return RenewSessionResponse{
		Valid:  true,
		UserID: session.UserID,
		Email:  session.Email,
		Token:  session.Token,
	}, nil
}

func (m *AuthModule) handleGetUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (GetUserResponse, error) {
	user, err := m.service.FindUser(ctx, req.UserID)
	if err != nil {
		return GetUserResponse{}, err
	}

	return GetUserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		GoogleAuth: user.GoogleAuth,
		CalendarID: user.CalendarID,
		CreatedAt:  user.CreatedAt,
	}, nil
}

func (m *AuthModule) handleSaveGoogleAuth(ctx context.Context, req SaveGoogleAuthRequest, _ *mono.Msg) (AckResponse, error) {
	if err := m.service.SaveGoogleAuth(ctx, req.UserID, req.GoogleAuth); err != nil {
		return AckResponse{}, err
	}
	return AckResponse{OK: true}, nil
}

func (m *AuthModule) handleSaveCalendarID(ctx context.Context, req SaveCalendarIDRequest, _ *mono.Msg) (AckResponse, error) {
	if err := m.service.SaveCalendarID(ctx, req.UserID, req.CalendarID); err != nil {
		return AckResponse{}, err
	}
	return AckResponse{OK: true}, nil
}
