package schedule

import (
	domain "github.com/example/schedule-sync/domain/schedule"
)

// MessageNoSchedules is returned in place of an error when a user has no schedules.
const MessageNoSchedules = "no schedules found"

// CreateScheduleRequest is the request for creating a schedule.
type CreateScheduleRequest struct {
	UserID string      `json:"user_id"`
	Data   domain.Data `json:"data"`
}

// GetScheduleRequest is the request for reading one schedule.
type GetScheduleRequest struct {
	UserID     string `json:"user_id"`
	ScheduleID string `json:"schedule_id"`
}

// ListSchedulesRequest is the request for listing a user's schedules.
type ListSchedulesRequest struct {
	UserID string `json:"user_id"`
}

// ListSchedulesResponse carries a user's schedules, or a message when there are none.
type ListSchedulesResponse struct {
	Schedules []domain.Schedule `json:"schedules"`
	Message   string            `json:"message,omitempty"`
}

// UpdateScheduleRequest replaces the user-supplied fields of a schedule.
type UpdateScheduleRequest struct {
	UserID     string      `json:"user_id"`
	ScheduleID string      `json:"schedule_id"`
	Data       domain.Data `json:"data"`
}

// DeleteScheduleRequest is the request for deleting a schedule.
type DeleteScheduleRequest struct {
	UserID     string `json:"user_id"`
	ScheduleID string `json:"schedule_id"`
}

// DeleteScheduleResponse is the response for deleting a schedule.
type DeleteScheduleResponse struct {
	Deleted bool `json:"deleted"`
}
