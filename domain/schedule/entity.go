package schedule

import (
	"time"
)

// DefaultDuration is the event length used when a schedule has no end time.
const DefaultDuration = 10 * time.Minute

// Schedule represents an appointment owned by a user.
type Schedule struct {
	ID            string     `gorm:"primaryKey;type:text" json:"id"`
	UserID        string     `gorm:"index;not null;type:text" json:"user_id"`
	Description   string     `gorm:"not null;type:text" json:"description"`
	StartTime     time.Time  `gorm:"not null" json:"start_time"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	GoogleEventID string     `gorm:"type:text" json:"google_event_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName returns the table name for the Schedule entity.
func (Schedule) TableName() string {
	return "schedules"
}

// Data is the user-supplied part of a schedule.
type Data struct {
	Description string     `json:"description"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
}

// ValidRange reports whether the start is not after the end. A missing end is always valid.
func (d Data) ValidRange() bool {
	return d.EndTime == nil || !d.StartTime.After(*d.EndTime)
}

// EffectiveEnd returns the end time, or start plus DefaultDuration when absent.
func (d Data) EffectiveEnd() time.Time {
	if d.EndTime != nil {
		return *d.EndTime
	}
	return d.StartTime.Add(DefaultDuration)
}

// Data returns the user-supplied fields of s.
func (s *Schedule) Data() Data {
	return Data{
		Description: s.Description,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
	}
}

// Patch is a partial update keyed by column name.
type Patch map[string]any

// SyncResult is the outcome of a best-effort push to the calendar provider.
type SyncResult struct {
	OK      bool   `json:"ok"`
	EventID string `json:"event_id,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Synced builds a successful result.
func Synced(eventID string) SyncResult {
	return SyncResult{OK: true, EventID: eventID}
}

// NotSynced builds a failed result from err.
func NotSynced(err error) SyncResult {
	r := SyncResult{}
	if err != nil {
		r.Reason = err.Error()
	}
	return r
}
