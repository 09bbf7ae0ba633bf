package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// ScheduleSyncFailedEvent is emitted when a schedule change could not be pushed to the calendar.
type ScheduleSyncFailedEvent struct {
	ScheduleID string    `json:"schedule_id"`
	UserID     string    `json:"user_id"`
	Operation  string    `json:"operation"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ScheduleSyncFailedV1 is the typed event definition for failed calendar pushes.
// Subject: events.schedule.v1.schedule-sync-failed
var ScheduleSyncFailedV1 = helper.EventDefinition[ScheduleSyncFailedEvent](
	"schedule", "ScheduleSyncFailed", "v1",
)
