package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/schedule-sync/database"
	domain "github.com/example/schedule-sync/domain/schedule"
	"github.com/example/schedule-sync/events"
	"github.com/example/schedule-sync/modules/google"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/gorm"
)

// ScheduleModule owns the schedule store and the calendar sync orchestration.
type ScheduleModule struct {
	db       *gorm.DB
	sync     google.EventSyncPort
	eventBus mono.EventBus
	service  *ScheduleService
}

// Compile-time interface checks.
var _ mono.Module = (*ScheduleModule)(nil)
var _ mono.ServiceProviderModule = (*ScheduleModule)(nil)
var _ mono.DependentModule = (*ScheduleModule)(nil)
var _ mono.EventEmitterModule = (*ScheduleModule)(nil)
var _ mono.HealthCheckableModule = (*ScheduleModule)(nil)

// NewModule creates a new ScheduleModule on a shared database handle.
func NewModule(db *gorm.DB) *ScheduleModule {
	return &ScheduleModule{
		db: db,
	}
}

// Name returns the module name.
func (m *ScheduleModule) Name() string {
	return "schedule"
}

// Dependencies returns the modules this module depends on.
func (m *ScheduleModule) Dependencies() []string {
	return []string{"google"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *ScheduleModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "google" {
		m.sync = google.NewGoogleAdapter(container)
	}
}

// SetEventBus receives the EventBus from the framework.
func (m *ScheduleModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *ScheduleModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.ScheduleSyncFailedV1.ToBase(),
	}
}

// Start initializes the schedule module.
func (m *ScheduleModule) Start(_ context.Context) error {
	if m.db == nil {
		return fmt.Errorf("database not set")
	}
	if m.sync == nil {
		return fmt.Errorf("event sync dependency not set")
	}

	if err := m.db.AutoMigrate(&domain.Schedule{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	var publisher FailurePublisher
	if m.eventBus != nil {
		publisher = &busPublisher{bus: m.eventBus}
	} else {
		log.Println("[schedule] Warning: eventBus not set, sync failures will not be published")
	}
	m.service = NewScheduleService(NewScheduleRepository(m.db), m.sync, publisher)

	log.Println("[schedule] Module started (depends on: google)")
	return nil
}

// Stop shuts down the module.
func (m *ScheduleModule) Stop(_ context.Context) error {
	log.Println("[schedule] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *ScheduleModule) Health(_ context.Context) mono.HealthStatus {
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
func (m *ScheduleModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-schedule", json.Unmarshal, json.Marshal, m.createSchedule,
	); err != nil {
		return fmt.Errorf("failed to register create-schedule service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-schedule", json.Unmarshal, json.Marshal, m.getSchedule,
	); err != nil {
		return fmt.Errorf("failed to register get-schedule service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-schedules", json.Unmarshal, json.Marshal, m.listSchedules,
	); err != nil {
		return fmt.Errorf("failed to register list-schedules service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-schedule", json.Unmarshal, json.Marshal, m.updateSchedule,
	); err != nil {
		return fmt.Errorf("failed to register update-schedule service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-schedule", json.Unmarshal, json.Marshal, m.deleteSchedule,
	); err != nil {
		return fmt.Errorf("failed to register delete-schedule service: %w", err)
	}

	log.Printf("[schedule] Registered services: create-schedule, get-schedule, list-schedules, update-schedule, delete-schedule")
	return nil
}

func (m *ScheduleModule) createSchedule(ctx context.Context, req CreateScheduleRequest, _ *mono.Msg) (domain.Schedule, error) {
	record, err := m.service.CreateSchedule(ctx, req)
	if err != nil {
		return domain.Schedule{}, err
	}
	return *record, nil
}

func (m *ScheduleModule) getSchedule(ctx context.Context, req GetScheduleRequest, _ *mono.Msg) (domain.Schedule, error) {
	record, err := m.service.GetSchedule(ctx, req)
	if err != nil {
		return domain.Schedule{}, err
	}
	return *record, nil
}

func (m *ScheduleModule) listSchedules(ctx context.Context, req ListSchedulesRequest, _ *mono.Msg) (ListSchedulesResponse, error) {
	resp, err := m.service.ListSchedules(ctx, req)
	if err != nil {
		return ListSchedulesResponse{}, err
	}
	return *resp, nil
}

func (m *ScheduleModule) updateSchedule(ctx context.Context, req UpdateScheduleRequest, _ *mono.Msg) (domain.Schedule, error) {
	record, err := m.service.UpdateSchedule(ctx, req)
	if err != nil {
		return domain.Schedule{}, err
	}
	return *record, nil
}

func (m *ScheduleModule) deleteSchedule(ctx context.Context, req DeleteScheduleRequest, _ *mono.Msg) (DeleteScheduleResponse, error) {
	if err := m.service.DeleteSchedule(ctx, req); err != nil {
		return DeleteScheduleResponse{}, err
	}
	return DeleteScheduleResponse{Deleted: true}, nil
}

// busPublisher publishes sync failures on the mono event bus.
type busPublisher struct {
	bus mono.EventBus
}

func (p *busPublisher) SyncFailed(_ context.Context, event events.ScheduleSyncFailedEvent) {
	// Event publishing is best-effort; log but don't fail the operation.
	if err := events.ScheduleSyncFailedV1.Publish(p.bus, event, nil); err != nil {
		log.Printf("[schedule] Warning: failed to publish ScheduleSyncFailed event for schedule %s: %v", event.ScheduleID, err)
	}
}
