package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/timesheet"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TimeEntryModel is the GORM model for the time_entries table.
type TimeEntryModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	DetailerID uuid.UUID  `gorm:"type:uuid;not null;index"`
	StartTime  time.Time  `gorm:"not null;index"`
	EndTime    *time.Time `gorm:""`
	Anomalous  bool       `gorm:"not null;default:false"`
	CreatedAt  time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (TimeEntryModel) TableName() string {
	return "time_entries"
}

// GormTimeEntryRepository is the GORM-based implementation of EntryRepository.
type GormTimeEntryRepository struct {
	db *gorm.DB
}

// NewGormTimeEntryRepository creates a new GormTimeEntryRepository.
func NewGormTimeEntryRepository(db *gorm.DB) *GormTimeEntryRepository {
	return &GormTimeEntryRepository{db: db}
}

// FindActiveByBookingID returns the open entry for a booking.
func (r *GormTimeEntryRepository) FindActiveByBookingID(ctx context.Context, bookingID uuid.UUID) (*timesheet.Entry, error) {
	var model TimeEntryModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ? AND end_time IS NULL", bookingID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("TimeEntry", bookingID.String())
		}
		return nil, fmt.Errorf("failed to find active entry by booking: %w", err)
	}
	return toDomainEntry(&model), nil
}

// FindActiveByDetailerID returns the open entry for a detailer.
func (r *GormTimeEntryRepository) FindActiveByDetailerID(ctx context.Context, detailerID uuid.UUID) (*timesheet.Entry, error) {
	var model TimeEntryModel
	if err := r.db.WithContext(ctx).
		Where("detailer_id = ? AND end_time IS NULL", detailerID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("TimeEntry", detailerID.String())
		}
		return nil, fmt.Errorf("failed to find active entry by detailer: %w", err)
	}
	return toDomainEntry(&model), nil
}

// FindByBookingID returns all entries for a booking ordered by start time.
func (r *GormTimeEntryRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*timesheet.Entry, error) {
	var models []TimeEntryModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("start_time ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find entries by booking: %w", err)
	}
	return toDomainEntries(models), nil
}

// FindStartedBetween returns all entries whose start time falls in
// [from, to), ordered by start time.
func (r *GormTimeEntryRepository) FindStartedBetween(ctx context.Context, from, to time.Time) ([]*timesheet.Entry, error) {
	var models []TimeEntryModel
	if err := r.db.WithContext(ctx).
		Where("start_time >= ? AND start_time < ?", from, to).
		Order("start_time ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find entries in range: %w", err)
	}
	return toDomainEntries(models), nil
}

// Save persists a new entry.
func (r *GormTimeEntryRepository) Save(ctx context.Context, entry *timesheet.Entry) error {
	if err := r.db.WithContext(ctx).Create(toTimeEntryModel(entry)).Error; err != nil {
		return fmt.Errorf("failed to save time entry: %w", err)
	}
	return nil
}

// Update persists changes to an existing entry.
func (r *GormTimeEntryRepository) Update(ctx context.Context, entry *timesheet.Entry) error {
	model := toTimeEntryModel(entry)
	result := r.db.WithContext(ctx).
		Model(&TimeEntryModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"end_time":  model.EndTime,
			"anomalous": model.Anomalous,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update time entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("TimeEntry", entry.ID().String())
	}
	return nil
}

// --- Conversion Helpers ---

func toTimeEntryModel(e *timesheet.Entry) *TimeEntryModel {
	return &TimeEntryModel{
		ID:         e.ID(),
		BookingID:  e.BookingID(),
		DetailerID: e.DetailerID(),
		StartTime:  e.StartTime(),
		EndTime:    e.EndTime(),
		Anomalous:  e.Anomalous(),
		CreatedAt:  e.CreatedAt(),
	}
}

func toDomainEntry(m *TimeEntryModel) *timesheet.Entry {
	return timesheet.ReconstructEntry(
		m.ID,
		m.BookingID,
		m.DetailerID,
		m.StartTime,
		m.EndTime,
		m.Anomalous,
		m.CreatedAt,
	)
}

func toDomainEntries(models []TimeEntryModel) []*timesheet.Entry {
	entries := make([]*timesheet.Entry, len(models))
	for i := range models {
		entries[i] = toDomainEntry(&models[i])
	}
	return entries
}
