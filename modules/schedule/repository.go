package schedule

import (
	"context"
	"errors"

	domain "github.com/example/schedule-sync/domain/schedule"
	"gorm.io/gorm"
)

// ScheduleRepository is the schedule store, backed by GORM.
type ScheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{
		db: db,
	}
}

// Create inserts a new schedule.
func (r *ScheduleRepository) Create(ctx context.Context, s *domain.Schedule) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// FindByID finds a schedule by ID.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*domain.Schedule, error) {
	var s domain.Schedule
	result := r.db.WithContext(ctx).First(&s, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, result.Error
	}
	return &s, nil
}

// FindAllByUser returns the schedules of a user ordered by start time.
func (r *ScheduleRepository) FindAllByUser(ctx context.Context, userID string) ([]domain.Schedule, error) {
	var schedules []domain.Schedule
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_time ASC").
		Find(&schedules)
	if result.Error != nil {
		return nil, result.Error
	}
	return schedules, nil
}

// Update applies patch to one schedule row.
func (r *ScheduleRepository) Update(ctx context.Context, id string, patch domain.Patch) error {
	if len(patch) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&domain.Schedule{}).Where("id = ?", id).Updates(map[string]any(patch))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

// Delete removes a schedule and reports how many rows went away.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Schedule{}, "id = ?", id)
	return result.RowsAffected, result.Error
}
