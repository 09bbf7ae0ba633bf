package schedule

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/schedule-sync/domain/errs"
	domain "github.com/example/schedule-sync/domain/schedule"
	"github.com/example/schedule-sync/events"
	"github.com/example/schedule-sync/modules/google"
	"github.com/google/uuid"
)

var (
	// ErrScheduleNotFound is returned when a schedule does not exist for the user.
	ErrScheduleNotFound = errs.New(errs.KindNotFound, "schedule not found")
	// ErrForbidden is returned when a schedule belongs to another user.
	ErrForbidden = errs.New(errs.KindForbidden, "schedule does not belong to the user")
	// ErrInvalidTemporalRange is returned when the start is after the end.
	ErrInvalidTemporalRange = errs.New(errs.KindInvalidTemporalRange, "start time is after end time")
	// ErrDeleteFailed is returned when the store removed nothing.
	ErrDeleteFailed = errs.New(errs.KindDeleteFailed, "schedule not deleted")
	// ErrMissingStart is returned when no start time was supplied.
	ErrMissingStart = errs.New(errs.KindBadRequest, "start time is required")
)

// Sync operations reported in ScheduleSyncFailedEvent.
const (
	OpPush   = "push"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Column names of the schedule table touched by patches.
const (
	colDescription = "description"
	colStartTime   = "start_time"
	colEndTime     = "end_time"
)

// FailurePublisher reports schedules whose calendar push failed.
type FailurePublisher interface {
	SyncFailed(ctx context.Context, event events.ScheduleSyncFailedEvent)
}

// ScheduleService keeps local schedules authoritative and mirrors them to the calendar.
type ScheduleService struct {
	repo      *ScheduleRepository
	sync      google.EventSyncPort
	publisher FailurePublisher
	now       func() time.Time
}

// NewScheduleService creates a new ScheduleService. publisher may be nil.
func NewScheduleService(repo *ScheduleRepository, sync google.EventSyncPort, publisher FailurePublisher) *ScheduleService {
	return &ScheduleService{
		repo:      repo,
		sync:      sync,
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateSchedule validates and stores a schedule, pushing it to the calendar first.
// A failed push leaves the schedule without a remote event id.
func (s *ScheduleService) CreateSchedule(ctx context.Context, req CreateScheduleRequest) (*domain.Schedule, error) {
	if err := validate(req.Data); err != nil {
		return nil, err
	}

	record := &domain.Schedule{
		ID:          uuid.New().String(),
		UserID:      req.UserID,
		Description: req.Data.Description,
		StartTime:   req.Data.StartTime,
		EndTime:     req.Data.EndTime,
	}

	result := s.sync.PushEvent(ctx, req.UserID, req.Data)
	if result.OK {
		record.GoogleEventID = result.EventID
	} else {
		s.syncFailed(ctx, record, OpPush, result)
	}

	if err := s.repo.Create(ctx, record); err != nil {
		if record.GoogleEventID != "" {
			// Do not leave an event behind for a schedule that does not exist.
			s.sync.DeleteEvent(ctx, req.UserID, record.GoogleEventID)
		}
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}

	log.Printf("[schedule] Created schedule %s for user %s (synced: %t)", record.ID, record.UserID, result.OK)
	return record, nil
}

// GetSchedule returns one schedule of the user.
func (s *ScheduleService) GetSchedule(ctx context.Context, req GetScheduleRequest) (*domain.Schedule, error) {
	record, err := s.repo.FindByID(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	// Other users' schedules are reported as missing.
	if record.UserID != req.UserID {
		return nil, ErrScheduleNotFound
	}
	return record, nil
}

// ListSchedules returns every schedule of the user ordered by start time.
func (s *ScheduleService) ListSchedules(ctx context.Context, req ListSchedulesRequest) (*ListSchedulesResponse, error) {
	schedules, err := s.repo.FindAllByUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}

	resp := &ListSchedulesResponse{Schedules: schedules}
	if len(schedules) == 0 {
		resp.Schedules = []domain.Schedule{}
		resp.Message = MessageNoSchedules
	}
	return resp, nil
}

// UpdateSchedule replaces the user-supplied fields of a schedule the user owns.
func (s *ScheduleService) UpdateSchedule(ctx context.Context, req UpdateScheduleRequest) (*domain.Schedule, error) {
	record, err := s.owned(ctx, req.UserID, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	if err := validate(req.Data); err != nil {
		return nil, err
	}

	if record.GoogleEventID != "" {
		if result := s.sync.UpdateEvent(ctx, req.UserID, record.GoogleEventID, req.Data); !result.OK {
			s.syncFailed(ctx, record, OpUpdate, result)
		}
	}

	patch := domain.Patch{
		colDescription: req.Data.Description,
		colStartTime:   req.Data.StartTime,
		colEndTime:     nil,
	}
	if req.Data.EndTime != nil {
		patch[colEndTime] = *req.Data.EndTime
	}
	if err := s.repo.Update(ctx, record.ID, patch); err != nil {
		if errors.Is(err, ErrScheduleNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update schedule: %w", err)
	}

	return s.repo.FindByID(ctx, record.ID)
}

// DeleteSchedule removes a schedule the user owns, and its remote event when there is one.
func (s *ScheduleService) DeleteSchedule(ctx context.Context, req DeleteScheduleRequest) error {
	record, err := s.owned(ctx, req.UserID, req.ScheduleID)
	if err != nil {
		return err
	}

	if record.GoogleEventID != "" {
		if result := s.sync.DeleteEvent(ctx, req.UserID, record.GoogleEventID); !result.OK {
			s.syncFailed(ctx, record, OpDelete, result)
		}
	}

	rows, err := s.repo.Delete(ctx, record.ID)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	if rows == 0 {
		return ErrDeleteFailed
	}

	log.Printf("[schedule] Deleted schedule %s of user %s", record.ID, record.UserID)
	return nil
}

func (s *ScheduleService) owned(ctx context.Context, userID, scheduleID string) (*domain.Schedule, error) {
	record, err := s.repo.FindByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if record.UserID != userID {
		return nil, ErrForbidden
	}
	return record, nil
}

func (s *ScheduleService) syncFailed(ctx context.Context, record *domain.Schedule, op string, result domain.SyncResult) {
	if s.publisher == nil {
		return
	}
	s.publisher.SyncFailed(ctx, events.ScheduleSyncFailedEvent{
		ScheduleID: record.ID,
		UserID:     record.UserID,
		Operation:  op,
		Reason:     result.Reason,
		OccurredAt: s.now(),
	})
}

func validate(data domain.Data) error {
	if data.StartTime.IsZero() {
		return ErrMissingStart
	}
	if !data.ValidRange() {
		return ErrInvalidTemporalRange
	}
	return nil
}
