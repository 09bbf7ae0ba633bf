package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/schedule-sync/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// maxNotifications bounds the in-memory log.
const maxNotifications = 500

// SyncNotice records one schedule that did not reach the calendar.
type SyncNotice struct {
	ScheduleID string    `json:"schedule_id"`
	UserID     string    `json:"user_id"`
	Operation  string    `json:"operation"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// NotificationModule keeps a diagnostic trail of calendar sync failures.
type NotificationModule struct {
	notices []SyncNotice
	mu      sync.RWMutex
}

var _ mono.Module = (*NotificationModule)(nil)
var _ mono.EventConsumerModule = (*NotificationModule)(nil)
var _ mono.ServiceProviderModule = (*NotificationModule)(nil)

func NewModule() *NotificationModule {
	return &NotificationModule{
		notices: make([]SyncNotice, 0),
	}
}

func (m *NotificationModule) Name() string {
	return "notification"
}

func (m *NotificationModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.ScheduleSyncFailedV1, m.handleSyncFailed, m); err != nil {
		return fmt.Errorf("failed to register ScheduleSyncFailed consumer: %w", err)
	}

	log.Printf("[notification] Registered event consumers: ScheduleSyncFailed")
	return nil
}

func (m *NotificationModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-notices", json.Unmarshal, json.Marshal, m.listNotices,
	); err != nil {
		return fmt.Errorf("failed to register list-notices service: %w", err)
	}

	log.Printf("[notification] Registered services: list-notices")
	return nil
}

func (m *NotificationModule) listNotices(ctx context.Context, req ListNoticesRequest, _ *mono.Msg) (ListNoticesResponse, error) {
	notices, err := m.ListNotices(ctx, req.UserID)
	if err != nil {
		return ListNoticesResponse{}, err
	}
	return ListNoticesResponse{Notices: notices}, nil
}

func (m *NotificationModule) handleSyncFailed(_ context.Context, event events.ScheduleSyncFailedEvent, _ *mono.Msg) error {
	log.Printf("[notification] Schedule %s of user %s not synced (%s): %s",
		event.ScheduleID, event.UserID, event.Operation, event.Reason)
	m.record(event)
	return nil
}

func (m *NotificationModule) record(event events.ScheduleSyncFailedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	at := event.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}
	m.notices = append(m.notices, SyncNotice{
		ScheduleID: event.ScheduleID,
		UserID:     event.UserID,
		Operation:  event.Operation,
		Message:    fmt.Sprintf("calendar %s failed: %s", event.Operation, event.Reason),
		Timestamp:  at,
	})
	if len(m.notices) > maxNotifications {
		m.notices = m.notices[len(m.notices)-maxNotifications:]
	}
}

// ListNotices returns the recorded failures of userID, oldest first.
func (m *NotificationModule) ListNotices(_ context.Context, userID string) ([]SyncNotice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]SyncNotice, 0)
	for _, n := range m.notices {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result, nil
}

func (m *NotificationModule) Start(_ context.Context) error {
	log.Println("[notification] Module started - listening for schedule sync failures")
	return nil
}

func (m *NotificationModule) Stop(_ context.Context) error {
	log.Println("[notification] Module stopped")
	return nil
}
