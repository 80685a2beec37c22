package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain"
	detailerDomain "github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/detailer"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DetailerModel is the GORM model for the detailers table.
type DetailerModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null;size:200"`
	Phone     string    `gorm:"not null;size:30"`
	Email     string    `gorm:"size:200"`
	Active    bool      `gorm:"not null;default:true;index"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (DetailerModel) TableName() string {
	return "detailers"
}

// GormDetailerRepository is the GORM-based implementation of DetailerRepository.
type GormDetailerRepository struct {
	db *gorm.DB
}

// NewGormDetailerRepository creates a new GormDetailerRepository.
func NewGormDetailerRepository(db *gorm.DB) *GormDetailerRepository {
	return &GormDetailerRepository{db: db}
}

// FindByID retrieves a detailer by its unique identifier.
func (r *GormDetailerRepository) FindByID(ctx context.Context, id uuid.UUID) (*detailerDomain.Detailer, error) {
	var model DetailerModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Detailer", id.String())
		}
		return nil, fmt.Errorf("failed to find detailer by ID: %w", err)
	}
	return toDomainDetailer(&model), nil
}

// ListActive retrieves all active detailers ordered by ID. The stable
// order is what makes auto-assignment tie-breaking deterministic.
func (r *GormDetailerRepository) ListActive(ctx context.Context) ([]*detailerDomain.Detailer, error) {
	var models []DetailerModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list active detailers: %w", err)
	}
	return toDomainDetailers(models), nil
}

// ListAll retrieves all detailers (admin).
func (r *GormDetailerRepository) ListAll(ctx context.Context) ([]*detailerDomain.Detailer, error) {
	var models []DetailerModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list detailers: %w", err)
	}
	return toDomainDetailers(models), nil
}

// Save persists a new detailer.
func (r *GormDetailerRepository) Save(ctx context.Context, d *detailerDomain.Detailer) error {
	if err := r.db.WithContext(ctx).Create(toDetailerModel(d)).Error; err != nil {
		return fmt.Errorf("failed to save detailer: %w", err)
	}
	return nil
}

// Update persists changes to an existing detailer with optimistic locking.
func (r *GormDetailerRepository) Update(ctx context.Context, d *detailerDomain.Detailer) error {
	model := toDetailerModel(d)

	expectedVersion := d.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&DetailerModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":       model.Name,
			"phone":      model.Phone,
			"email":      model.Email,
			"active":     model.Active,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update detailer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("detailer was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toDetailerModel(d *detailerDomain.Detailer) *DetailerModel {
	return &DetailerModel{
		ID:        d.ID(),
		Name:      d.Name(),
		Phone:     d.Phone(),
		Email:     d.Email(),
		Active:    d.Active(),
		Version:   d.Version(),
		CreatedAt: d.CreatedAt(),
		UpdatedAt: d.UpdatedAt(),
	}
}

func toDomainDetailer(m *DetailerModel) *detailerDomain.Detailer {
	return detailerDomain.ReconstructDetailer(
		m.ID,
		m.Name,
		m.Phone,
		m.Email,
		m.Active,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainDetailers(models []DetailerModel) []*detailerDomain.Detailer {
	detailers := make([]*detailerDomain.Detailer, len(models))
	for i := range models {
		detailers[i] = toDomainDetailer(&models[i])
	}
	return detailers
}
