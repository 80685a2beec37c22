package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain"
	bookingDomain "github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/booking"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ConfirmationCode string          `gorm:"uniqueIndex;not null;size:20"`
	Customer         json.RawMessage `gorm:"type:jsonb;not null"`
	Vehicle          json.RawMessage `gorm:"type:jsonb;not null"`
	ServiceIDs       json.RawMessage `gorm:"type:jsonb;not null"`
	AddOnIDs         json.RawMessage `gorm:"type:jsonb"`
	ScheduledAt      time.Time       `gorm:"not null;index"`
	Status           string          `gorm:"not null;size:30;index"`
	DetailerID       *uuid.UUID      `gorm:"type:uuid;index"`
	TotalPriceCents  int64           `gorm:"not null"`
	EnRouteAt        *time.Time      `gorm:""`
	StartedAt        *time.Time      `gorm:""`
	CompletedAt      *time.Time      `gorm:""`
	CanceledAt       *time.Time      `gorm:""`
	CancelNote       string          `gorm:"size:500"`
	Notes            string          `gorm:"size:1000"`
	Version          int64           `gorm:"not null;default:1"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// terminalStatuses are excluded when deriving detailer load.
var terminalStatuses = []string{
	string(bookingDomain.StatusCompleted),
	string(bookingDomain.StatusCanceled),
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByCode retrieves a booking by its confirmation code.
func (r *GormBookingRepository) FindByCode(ctx context.Context, code string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("confirmation_code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", code)
		}
		return nil, fmt.Errorf("failed to find booking by code: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByDetailerID retrieves bookings assigned to a specific detailer with pagination.
func (r *GormBookingRepository) FindByDetailerID(ctx context.Context, detailerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("detailer_id = ?", detailerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count detailer bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("detailer_id = ?", detailerID).
		Order("scheduled_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find detailer bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// CountActiveByDetailer derives each detailer's load from the
// authoritative booking set: assigned bookings not yet terminal.
func (r *GormBookingRepository) CountActiveByDetailer(ctx context.Context) (map[uuid.UUID]int64, error) {
	type loadCount struct {
		DetailerID uuid.UUID
		Count      int64
	}
	var results []loadCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("detailer_id, count(*) as count").
		Where("detailer_id IS NOT NULL AND status NOT IN ?", terminalStatuses).
		Group("detailer_id").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count active bookings by detailer: %w", err)
	}

	loads := make(map[uuid.UUID]int64, len(results))
	for _, lc := range results {
		loads[lc.DetailerID] = lc.Count
	}
	return loads, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic
// locking. The version check is what serializes racing writers on a
// single booking: the loser's update matches zero rows and gets a
// conflict instead of clobbering state.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":            model.Status,
			"detailer_id":       model.DetailerID,
			"total_price_cents": model.TotalPriceCents,
			"en_route_at":       model.EnRouteAt,
			"started_at":        model.StartedAt,
			"completed_at":      model.CompletedAt,
			"canceled_at":       model.CanceledAt,
			"cancel_note":       model.CancelNote,
			"notes":             model.Notes,
			"version":           model.Version,
			"updated_at":        model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	customerJSON, err := json.Marshal(bk.Customer())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal customer: %w", err)
	}
	vehicleJSON, err := json.Marshal(bk.Vehicle())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vehicle: %w", err)
	}
	serviceIDsJSON, err := json.Marshal(bk.ServiceIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal service IDs: %w", err)
	}
	addOnIDsJSON, err := json.Marshal(bk.AddOnIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal add-on IDs: %w", err)
	}

	return &BookingModel{
		ID:               bk.ID(),
		ConfirmationCode: bk.ConfirmationCode(),
		Customer:         customerJSON,
		Vehicle:          vehicleJSON,
		ServiceIDs:       serviceIDsJSON,
		AddOnIDs:         addOnIDsJSON,
		ScheduledAt:      bk.ScheduledAt(),
		Status:           string(bk.Status()),
		DetailerID:       bk.DetailerID(),
		TotalPriceCents:  bk.TotalPriceCents(),
		EnRouteAt:        bk.EnRouteAt(),
		StartedAt:        bk.StartedAt(),
		CompletedAt:      bk.CompletedAt(),
		CanceledAt:       bk.CanceledAt(),
		CancelNote:       bk.CancelNote(),
		Notes:            bk.Notes(),
		Version:          bk.Version(),
		CreatedAt:        bk.CreatedAt(),
		UpdatedAt:        bk.UpdatedAt(),
	}, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	var customer bookingDomain.CustomerSnapshot
	if err := json.Unmarshal(m.Customer, &customer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customer: %w", err)
	}
	var vehicle bookingDomain.VehicleSnapshot
	if err := json.Unmarshal(m.Vehicle, &vehicle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vehicle: %w", err)
	}
	var serviceIDs []uuid.UUID
	if err := json.Unmarshal(m.ServiceIDs, &serviceIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal service IDs: %w", err)
	}
	var addOnIDs []uuid.UUID
	if len(m.AddOnIDs) > 0 {
		if err := json.Unmarshal(m.AddOnIDs, &addOnIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal add-on IDs: %w", err)
		}
	}

	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.ConfirmationCode,
		customer,
		vehicle,
		serviceIDs,
		addOnIDs,
		m.ScheduledAt,
		status,
		m.DetailerID,
		m.TotalPriceCents,
		m.EnRouteAt,
		m.StartedAt,
		m.CompletedAt,
		m.CanceledAt,
		m.CancelNote,
		m.Notes,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel, total int64) ([]*bookingDomain.Booking, int64, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}
