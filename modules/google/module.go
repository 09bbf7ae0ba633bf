package google

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/schedule-sync/domain/schedule"
	"github.com/example/schedule-sync/modules/auth"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// GoogleModule manages OAuth credentials, calendars and events on Google Calendar.
type GoogleModule struct {
	cfg     Config
	store   auth.CredentialStore
	service *GoogleService
}

// Compile-time interface checks.
var _ mono.Module = (*GoogleModule)(nil)
var _ mono.ServiceProviderModule = (*GoogleModule)(nil)
var _ mono.DependentModule = (*GoogleModule)(nil)

// NewModule creates a new GoogleModule.
func NewModule(cfg Config) *GoogleModule {
	return &GoogleModule{
		cfg: cfg,
	}
}

// Name returns the module name.
func (m *GoogleModule) Name() string {
	return "google"
}

// Dependencies returns the modules this module depends on.
func (m *GoogleModule) Dependencies() []string {
	return []string{"auth"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *GoogleModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "auth" {
		m.store = auth.NewAuthAdapter(container)
	}
}

// Start initializes the google module.
func (m *GoogleModule) Start(_ context.Context) error {
	if m.store == nil {
		return fmt.Errorf("credential store dependency not set")
	}
	if m.cfg.ClientID == "" {
		log.Println("[google] Warning: GOOGLE_CLIENT_ID not set, token grants will be rejected")
	}

	m.service = NewGoogleService(m.store, m.cfg)

	log.Printf("[google] Module started (depends on: auth, calendar endpoint: %s)", m.cfg.CalendarEndpoint)
	return nil
}

// Stop shuts down the module.
func (m *GoogleModule) Stop(_ context.Context) error {
	log.Println("[google] Module stopped")
	return nil
}

// RegisterServices registers request-reply services in the service container.
func (m *GoogleModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "link-google-account", json.Unmarshal, json.Marshal, m.handleLinkAccount,
	); err != nil {
		return fmt.Errorf("failed to register link-google-account service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "google-access-token", json.Unmarshal, json.Marshal, m.handleAccessToken,
	); err != nil {
		return fmt.Errorf("failed to register google-access-token service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "push-event", json.Unmarshal, json.Marshal, m.handlePushEvent,
	); err != nil {
		return fmt.Errorf("failed to register push-event service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-event", json.Unmarshal, json.Marshal, m.handleUpdateEvent,
	); err != nil {
		return fmt.Errorf("failed to register update-event service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-event", json.Unmarshal, json.Marshal, m.handleDeleteEvent,
	); err != nil {
		return fmt.Errorf("failed to register delete-event service: %w", err)
	}

	log.Printf("[google] Registered services: link-google-account, google-access-token, push-event, update-event, delete-event")
	return nil
}

func (m *GoogleModule) handleLinkAccount(ctx context.Context, req LinkAccountRequest, _ *mono.Msg) (AccessToken, error) {
	token, err := m.service.LinkAccount(ctx, req.UserID, req.Code)
	if err != nil {
		return AccessToken{}, err
	}
	return *token, nil
}

func (m *GoogleModule) handleAccessToken(ctx context.Context, req AccessTokenRequest, _ *mono.Msg) (AccessToken, error) {
	token, err := m.service.AccessToken(ctx, req.UserID)
	if err != nil {
		return AccessToken{}, err
	}
	return *token, nil
}

func (m *GoogleModule) handlePushEvent(ctx context.Context, req PushEventRequest, _ *mono.Msg) (schedule.SyncResult, error) {
	return m.service.PushEvent(ctx, req.UserID, req.Data), nil
}

func (m *GoogleModule) handleUpdateEvent(ctx context.Context, req UpdateEventRequest, _ *mono.Msg) (schedule.SyncResult, error) {
	return m.service.UpdateEvent(ctx, req.UserID, req.EventID, req.Data), nil
}

func (m *GoogleModule) handleDeleteEvent(ctx context.Context, req DeleteEventRequest, _ *mono.Msg) (schedule.SyncResult, error) {
	return m.service.DeleteEvent(ctx, req.UserID, req.EventID), nil
}
