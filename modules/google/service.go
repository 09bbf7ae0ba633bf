package google

import (
	"context"
	"time"

	"github.com/example/schedule-sync/domain/schedule"
	"github.com/example/schedule-sync/modules/auth"
)

// GoogleService ties the token, calendar and event managers together.
type GoogleService struct {
	tokens    *TokenManager
	calendars *CalendarProvisioner
	events    *EventSyncer
	timeout   time.Duration
}

// NewGoogleService wires the managers over one credential store and HTTP client.
func NewGoogleService(store auth.CredentialStore, cfg Config) *GoogleService {
	client := NewHTTPClient(cfg.HTTPTimeout, cfg.RetryBackoff)
	tokens := NewTokenManager(store, cfg, client)
	cal := &calendarClient{
		tokens:   tokens,
		client:   client,
		endpoint: cfg.CalendarEndpoint,
	}
	calendars := NewCalendarProvisioner(store, cal, cfg)

	return &GoogleService{
		tokens:    tokens,
		calendars: calendars,
		events:    NewEventSyncer(calendars, cal, cfg),
		timeout:   cfg.SyncTimeout,
	}
}

// LinkAccount stores the first credential bundle obtained from code.
func (s *GoogleService) LinkAccount(ctx context.Context, userID, code string) (*AccessToken, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.tokens.LinkAccount(ctx, userID, code)
}

// AccessToken returns a usable access token for the user.
func (s *GoogleService) AccessToken(ctx context.Context, userID string) (*AccessToken, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.tokens.EnsureFreshAccessToken(ctx, userID)
}

// PushEvent creates the remote event of a new schedule.
func (s *GoogleService) PushEvent(ctx context.Context, userID string, data schedule.Data) schedule.SyncResult {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.events.Push(ctx, userID, data)
}

// UpdateEvent replaces the remote event of a schedule.
func (s *GoogleService) UpdateEvent(ctx context.Context, userID, eventID string, data schedule.Data) schedule.SyncResult {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.events.Update(ctx, userID, eventID, data)
}

// DeleteEvent removes the remote event of a schedule.
func (s *GoogleService) DeleteEvent(ctx context.Context, userID, eventID string) schedule.SyncResult {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.events.Delete(ctx, userID, eventID)
}

func (s *GoogleService) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
