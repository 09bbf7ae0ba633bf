package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/schedule-sync/database"
	"github.com/example/schedule-sync/domain/errs"
	domain "github.com/example/schedule-sync/domain/schedule"
	"github.com/example/schedule-sync/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeSync records calendar calls and answers with preset results.
type fakeSync struct {
	mu      sync.Mutex
	push    domain.SyncResult
	update  domain.SyncResult
	remove  domain.SyncResult
	pushed  []domain.Data
	updated []string
	deleted []string
}

func newFakeSync() *fakeSync {
	return &fakeSync{
		push:   domain.Synced("evt-1"),
		update: domain.Synced("evt-1"),
		remove: domain.Synced("evt-1"),
	}
}

func (f *fakeSync) PushEvent(_ context.Context, _ string, data domain.Data) domain.SyncResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, data)
	return f.push
}

func (f *fakeSync) UpdateEvent(_ context.Context, _, eventID string, _ domain.Data) domain.SyncResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, eventID)
	return f.update
}

func (f *fakeSync) DeleteEvent(_ context.Context, _, eventID string) domain.SyncResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, eventID)
	return f.remove
}

// recorder collects published sync failures.
type recorder struct {
	mu     sync.Mutex
	events []events.ScheduleSyncFailedEvent
}

func (r *recorder) SyncFailed(_ context.Context, event events.ScheduleSyncFailedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Every pooled connection to :memory: is a separate database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, db.AutoMigrate(&domain.Schedule{}))
	return db
}

type testEnv struct {
	service *ScheduleService
	repo    *ScheduleRepository
	sync    *fakeSync
	events  *recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := NewScheduleRepository(setupTestDB(t))
	calendar := newFakeSync()
	rec := &recorder{}
	return &testEnv{
		service: NewScheduleService(repo, calendar, rec),
		repo:    repo,
		sync:    calendar,
		events:  rec,
	}
}

func at(hour int) time.Time {
	return time.Date(2026, 6, 15, hour, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time {
	return &t
}

func (e *testEnv) create(t *testing.T, userID string, data domain.Data) *domain.Schedule {
	t.Helper()
	record, err := e.service.CreateSchedule(context.Background(), CreateScheduleRequest{UserID: userID, Data: data})
	require.NoError(t, err)
	return record
}

func TestScheduleService_Create(t *testing.T) {
	env := newTestEnv(t)

	record := env.create(t, "u1", domain.Data{Description: "Cleaning", StartTime: at(9)})

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "evt-1", record.GoogleEventID)
	require.Len(t, env.sync.pushed, 1)
	assert.Equal(t, "Cleaning", env.sync.pushed[0].Description)

	stored, err := env.repo.FindByID(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", stored.UserID)
	assert.Equal(t, "evt-1", stored.GoogleEventID)
	assert.Nil(t, stored.EndTime)
	assert.Empty(t, env.events.events)
}

func TestScheduleService_CreateRejectsInvalidRange(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.CreateSchedule(context.Background(), CreateScheduleRequest{
		UserID: "u1",
		Data:   domain.Data{Description: "Backwards", StartTime: at(10), EndTime: ptr(at(9))},
	})
	assert.ErrorIs(t, err, ErrInvalidTemporalRange)
	assert.Equal(t, errs.KindInvalidTemporalRange, errs.KindOf(err))

	schedules, err := env.repo.FindAllByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, schedules)
	assert.Empty(t, env.sync.pushed)

	_, err = env.service.CreateSchedule(context.Background(), CreateScheduleRequest{
		UserID: "u1",
		Data:   domain.Data{Description: "No start"},
	})
	assert.ErrorIs(t, err, ErrMissingStart)
}

func TestScheduleService_CreateWithFailedPush(t *testing.T) {
	env := newTestEnv(t)
	env.sync.push = domain.NotSynced(errors.New("precondition_failed: google account not linked"))

	record := env.create(t, "u1", domain.Data{Description: "Offline", StartTime: at(9)})

	assert.Empty(t, record.GoogleEventID)
	stored, err := env.repo.FindByID(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.GoogleEventID)

	require.Len(t, env.events.events, 1)
	event := env.events.events[0]
	assert.Equal(t, record.ID, event.ScheduleID)
	assert.Equal(t, "u1", event.UserID)
	assert.Equal(t, OpPush, event.Operation)
	assert.Contains(t, event.Reason, "not linked")
}

func TestScheduleService_Get(t *testing.T) {
	env := newTestEnv(t)
	record := env.create(t, "u1", domain.Data{Description: "Cleaning", StartTime: at(9)})

	got, err := env.service.GetSchedule(context.Background(), GetScheduleRequest{UserID: "u1", ScheduleID: record.ID})
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)

	for name, req := range map[string]GetScheduleRequest{
		"missing":    {UserID: "u1", ScheduleID: "nope"},
		"other user": {UserID: "u2", ScheduleID: record.ID},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := env.service.GetSchedule(context.Background(), req)
			assert.ErrorIs(t, err, ErrScheduleNotFound)
		})
	}
}

func TestScheduleService_List(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.service.ListSchedules(context.Background(), ListSchedulesRequest{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, MessageNoSchedules, resp.Message)
	assert.NotNil(t, resp.Schedules)
	assert.Empty(t, resp.Schedules)

	late := env.create(t, "u1", domain.Data{Description: "Late", StartTime: at(15)})
	early := env.create(t, "u1", domain.Data{Description: "Early", StartTime: at(8)})
	env.create(t, "u2", domain.Data{Description: "Someone else", StartTime: at(9)})

	resp, err = env.service.ListSchedules(context.Background(), ListSchedulesRequest{UserID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, resp.Message)
	require.Len(t, resp.Schedules, 2)
	assert.Equal(t, early.ID, resp.Schedules[0].ID)
	assert.Equal(t, late.ID, resp.Schedules[1].ID)
}

func TestScheduleService_Update(t *testing.T) {
	env := newTestEnv(t)
	record := env.create(t, "u1", domain.Data{Description: "Cleaning", StartTime: at(9), EndTime: ptr(at(10))})

	updated, err := env.service.UpdateSchedule(context.Background(), UpdateScheduleRequest{
		UserID:     "u1",
		ScheduleID: record.ID,
		Data:       domain.Data{Description: "Whitening", StartTime: at(11)},
	})
	require.NoError(t, err)

	assert.Equal(t, "Whitening", updated.Description)
	assert.True(t, updated.StartTime.Equal(at(11)))
	assert.Nil(t, updated.EndTime, "absent end time clears the stored one")
	assert.Equal(t, "evt-1", updated.GoogleEventID)
	assert.Equal(t, []string{"evt-1"}, env.sync.updated)
}

func TestScheduleService_UpdateRejections(t *testing.T) {
	env := newTestEnv(t)
	record := env.create(t, "u1", domain.Data{Description: "Cleaning", StartTime: at(9)})

	tests := []struct {
		name    string
		req     UpdateScheduleRequest
		wantErr error
	}{
		{
			name:    "other user",
			req:     UpdateScheduleRequest{UserID: "u2", ScheduleID: record.ID, Data: domain.Data{Description: "Hijack", StartTime: at(9)}},
			wantErr: ErrForbidden,
		},
		{
			name:    "invalid range",
			req:     UpdateScheduleRequest{UserID: "u1", ScheduleID: record.ID, Data: domain.Data{Description: "Backwards", StartTime: at(12), EndTime: ptr(at(11))}},
			wantErr: ErrInvalidTemporalRange,
		},
		{
			name:    "missing",
			req:     UpdateScheduleRequest{UserID: "u1", ScheduleID: "nope", Data: domain.Data{Description: "Ghost", StartTime: at(9)}},
			wantErr: ErrScheduleNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.service.UpdateSchedule(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	stored, err := env.repo.FindByID(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cleaning", stored.Description)
	assert.True(t, stored.StartTime.Equal(at(9)))
	assert.Empty(t, env.sync.updated)
}

func TestScheduleService_UpdateWithoutRemoteEvent(t *testing.T) {
	env := newTestEnv(t)
	env.sync.push = domain.NotSynced(errors.New("upstream_error: calendar unavailable"))
	record := env.create(t, "u1", domain.Data{Description: "Cleaning", StartTime: at(9)})

	_, err := env.service.UpdateSchedule(context.Background(), UpdateScheduleRequest{
		UserID:     "u1",
		ScheduleID: record.ID,
		Data:       domain.Data{Description: "Whitening", StartTime: at(10)},
	})
	require.NoError(t, err)
	assert.Empty(t, env.sync.updated)
}

func TestScheduleService_UpdateWithFailedSync(t *testing.T) {
	env := newTestEnv(t)
	env.sync.update = domain.NotSynced(errors.New("unexpected status 201"))
	record := env.create(t, "u1", domain.Data{Description: "Cleaning", StartTime: at(9)})

	updated, err := env.service.UpdateSchedule(context.Background(), UpdateScheduleRequest{
		UserID:     "u1",
		ScheduleID: record.ID,
		Data:       domain.Data{Description: "Whitening", StartTime: at(10)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Whitening", updated.Description)

	require.Len(t, env.events.events, 1)
	assert.Equal(t, OpUpdate, env.events.events[0].Operation)
}

func TestScheduleService_Delete(t *testing.T) {
	env := newTestEnv(t)
	record := env.create(t, "u1", domain.Data{Description: "Cleaning", StartTime: at(9)})

	err := env.service.DeleteSchedule(context.Background(), DeleteScheduleRequest{UserID: "u2", ScheduleID: record.ID})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = env.repo.FindByID(context.Background(), record.ID)
	require.NoError(t, err, "schedule must survive a delete by another user")
	assert.Empty(t, env.sync.deleted)

	err = env.service.DeleteSchedule(context.Background(), DeleteScheduleRequest{UserID: "u1", ScheduleID: record.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"evt-1"}, env.sync.deleted)

	_, err = env.service.GetSchedule(context.Background(), GetScheduleRequest{UserID: "u1", ScheduleID: record.ID})
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	err = env.service.DeleteSchedule(context.Background(), DeleteScheduleRequest{UserID: "u1", ScheduleID: record.ID})
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}

func TestScheduleService_DeleteIgnoresRemoteFailure(t *testing.T) {
	env := newTestEnv(t)
	env.sync.remove = domain.NotSynced(errors.New("googleapi: Error 404: not found"))
	record := env.create(t, "u1", domain.Data{Description: "Cleaning", StartTime: at(9)})

	require.NoError(t, env.service.DeleteSchedule(context.Background(), DeleteScheduleRequest{UserID: "u1", ScheduleID: record.ID}))

	_, err := env.repo.FindByID(context.Background(), record.ID)
	assert.ErrorIs(t, err, ErrScheduleNotFound)
	require.Len(t, env.events.events, 1)
	assert.Equal(t, OpDelete, env.events.events[0].Operation)
}

func TestScheduleRepository_DeleteReportsRows(t *testing.T) {
	env := newTestEnv(t)
	record := env.create(t, "u1", domain.Data{Description: "Cleaning", StartTime: at(9)})

	rows, err := env.repo.Delete(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = env.repo.Delete(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	assert.ErrorIs(t, env.repo.Update(context.Background(), record.ID, domain.Patch{"description": "x"}), ErrScheduleNotFound)
}
