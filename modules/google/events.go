package google

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/example/schedule-sync/domain/errs"
	"github.com/example/schedule-sync/domain/schedule"
	"google.golang.org/api/calendar/v3"
)

// ReminderMinutes is how long before the start the popup reminder fires.
const ReminderMinutes = 10

// EventSyncer pushes local schedule changes to the user's calendar.
// Every operation is best-effort: failures come back as a SyncResult, never as an error.
type EventSyncer struct {
	calendars   *CalendarProvisioner
	calendar    *calendarClient
	summary     string
	sourceTitle string
	sourceURL   string
}

// NewEventSyncer creates a new EventSyncer.
func NewEventSyncer(calendars *CalendarProvisioner, client *calendarClient, cfg Config) *EventSyncer {
	return &EventSyncer{
		calendars:   calendars,
		calendar:    client,
		summary:     cfg.EventSummary,
		sourceTitle: cfg.SourceTitle,
		sourceURL:   cfg.SourceURL,
	}
}

// Push creates a remote event for data and returns its id.
func (s *EventSyncer) Push(ctx context.Context, userID string, data schedule.Data) schedule.SyncResult {
	calendarID, svc, err := s.prepare(ctx, userID)
	if err != nil {
		return s.failed("push", userID, err)
	}

	created, err := svc.Events.Insert(calendarID, s.event(data)).Context(ctx).Do()
	if err != nil {
		return s.failed("push", userID, err)
	}
	if created.Id == "" {
		return s.failed("push", userID, errs.New(errs.KindUpstream, "event response carries no id"))
	}
	return schedule.Synced(created.Id)
}

// Update replaces the remote event eventID with data.
func (s *EventSyncer) Update(ctx context.Context, userID, eventID string, data schedule.Data) schedule.SyncResult {
	calendarID, svc, err := s.prepare(ctx, userID)
	if err != nil {
		return s.failed("update", userID, err)
	}

	updated, err := svc.Events.Update(calendarID, eventID, s.event(data)).Context(ctx).Do()
	if err != nil {
		return s.failed("update", userID, err)
	}
	if updated.HTTPStatusCode != http.StatusOK {
		return s.failed("update", userID, fmt.Errorf("unexpected status %d", updated.HTTPStatusCode))
	}
	return schedule.Synced(eventID)
}

// Delete removes the remote event eventID.
func (s *EventSyncer) Delete(ctx context.Context, userID, eventID string) schedule.SyncResult {
	calendarID, svc, err := s.prepare(ctx, userID)
	if err != nil {
		return s.failed("delete", userID, err)
	}

	// Do only returns nil for a 2xx answer.
	if err := svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return s.failed("delete", userID, err)
	}
	return schedule.Synced(eventID)
}

func (s *EventSyncer) prepare(ctx context.Context, userID string) (string, *calendar.Service, error) {
	calendarID, err := s.calendars.CalendarID(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	svc, err := s.calendar.service(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	return calendarID, svc, nil
}

// event builds the provider payload of data.
func (s *EventSyncer) event(data schedule.Data) *calendar.Event {
	return &calendar.Event{
		Summary:     s.summary,
		Description: data.Description,
		Start: &calendar.EventDateTime{
			DateTime: data.StartTime.UTC().Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: data.EffectiveEnd().UTC().Format(time.RFC3339),
		},
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "popup", Minutes: ReminderMinutes},
			},
			ForceSendFields: []string{"UseDefault"},
		},
		Source: &calendar.EventSource{
			Title: s.sourceTitle,
			Url:   s.sourceURL,
		},
		Transparency: "transparent",
	}
}

func (s *EventSyncer) failed(op, userID string, err error) schedule.SyncResult {
	log.Printf("[google] %s event for user %s not synced: %v", op, userID, err)
	return schedule.NotSynced(err)
}
