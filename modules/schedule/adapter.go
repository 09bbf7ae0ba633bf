package schedule

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/schedule-sync/domain/schedule"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// SchedulePort defines the schedule operations available to other modules.
type SchedulePort interface {
	CreateSchedule(ctx context.Context, req CreateScheduleRequest) (*domain.Schedule, error)
	GetSchedule(ctx context.Context, req GetScheduleRequest) (*domain.Schedule, error)
	ListSchedules(ctx context.Context, req ListSchedulesRequest) (*ListSchedulesResponse, error)
	UpdateSchedule(ctx context.Context, req UpdateScheduleRequest) (*domain.Schedule, error)
	DeleteSchedule(ctx context.Context, req DeleteScheduleRequest) error
}

var _ SchedulePort = (*ScheduleService)(nil)
var _ SchedulePort = (*ScheduleAdapter)(nil)

// ScheduleAdapter implements SchedulePort using the service container.
type ScheduleAdapter struct {
	container mono.ServiceContainer
}

// NewScheduleAdapter creates a new ScheduleAdapter.
func NewScheduleAdapter(container mono.ServiceContainer) *ScheduleAdapter {
	return &ScheduleAdapter{
		container: container,
	}
}

// CreateSchedule creates a schedule via the create-schedule service.
func (a *ScheduleAdapter) CreateSchedule(ctx context.Context, req CreateScheduleRequest) (*domain.Schedule, error) {
	var resp domain.Schedule
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"create-schedule",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("create-schedule request failed: %w", err)
	}
	return &resp, nil
}

// GetSchedule reads a schedule via the get-schedule service.
func (a *ScheduleAdapter) GetSchedule(ctx context.Context, req GetScheduleRequest) (*domain.Schedule, error) {
	var resp domain.Schedule
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"get-schedule",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("get-schedule request failed: %w", err)
	}
	return &resp, nil
}

// ListSchedules lists a user's schedules via the list-schedules service.
func (a *ScheduleAdapter) ListSchedules(ctx context.Context, req ListSchedulesRequest) (*ListSchedulesResponse, error) {
	var resp ListSchedulesResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"list-schedules",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("list-schedules request failed: %w", err)
	}
	return &resp, nil
}

// UpdateSchedule updates a schedule via the update-schedule service.
func (a *ScheduleAdapter) UpdateSchedule(ctx context.Context, req UpdateScheduleRequest) (*domain.Schedule, error) {
	var resp domain.Schedule
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"update-schedule",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("update-schedule request failed: %w", err)
	}
	return &resp, nil
}

// DeleteSchedule deletes a schedule via the delete-schedule service.
func (a *ScheduleAdapter) DeleteSchedule(ctx context.Context, req DeleteScheduleRequest) error {
	var resp DeleteScheduleResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"delete-schedule",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return fmt.Errorf("delete-schedule request failed: %w", err)
	}
	return nil
}
