package google

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/example/schedule-sync/domain/errs"
	"github.com/example/schedule-sync/modules/auth"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// calendarClient builds Calendar API services authenticated as one user.
type calendarClient struct {
	tokens   *TokenManager
	client   *http.Client
	endpoint string
}

func (c *calendarClient) service(ctx context.Context, userID string) (*calendar.Service, error) {
	token, err := c.tokens.EnsureFreshAccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	base := c.client
	if base == nil {
		base = http.DefaultClient
	}
	authed := &http.Client{
		Timeout: base.Timeout,
		Transport: &oauth2.Transport{
			Base: base.Transport,
			Source: oauth2.StaticTokenSource(&oauth2.Token{
				AccessToken: token.Token,
				TokenType:   "Bearer",
			}),
		},
	}

	opts := []option.ClientOption{option.WithHTTPClient(authed)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return svc, nil
}

// CalendarProvisioner makes sure every user has one application calendar.
type CalendarProvisioner struct {
	store    auth.CredentialStore
	calendar *calendarClient
	name     string
	timeZone string
	group    singleflight.Group
}

// NewCalendarProvisioner creates a new CalendarProvisioner.
func NewCalendarProvisioner(store auth.CredentialStore, client *calendarClient, cfg Config) *CalendarProvisioner {
	return &CalendarProvisioner{
		store:    store,
		calendar: client,
		name:     cfg.CalendarName,
		timeZone: cfg.TimeZone,
	}
}

// CalendarID returns the user's calendar id, creating the calendar on first use.
func (p *CalendarProvisioner) CalendarID(ctx context.Context, userID string) (string, error) {
	user, err := p.store.FindUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.CalendarID != "" {
		return user.CalendarID, nil
	}

	v, err, _ := p.group.Do(userID, func() (any, error) {
		return p.create(ctx, userID)
	})
	if err != nil {
		log.Printf("[google] Calendar provisioning for user %s failed: %v", userID, err)
		return "", err
	}
	return v.(string), nil
}

func (p *CalendarProvisioner) create(ctx context.Context, userID string) (string, error) {
	svc, err := p.calendar.service(ctx, userID)
	if err != nil {
		return "", err
	}

	created, err := svc.Calendars.Insert(&calendar.Calendar{
		Summary:  p.name,
		TimeZone: p.timeZone,
	}).Context(ctx).Do()
	if err != nil {
		return "", errs.Wrap(errs.KindUpstream, "failed to create calendar", err)
	}
	if created.Id == "" {
		return "", errs.New(errs.KindUpstream, "calendar response carries no id")
	}

	if err := p.store.SaveCalendarID(ctx, userID, created.Id); err != nil {
		return "", fmt.Errorf("failed to store calendar id: %w", err)
	}

	log.Printf("[google] Created calendar %s for user %s", created.Id, userID)
	return created.Id, nil
}
