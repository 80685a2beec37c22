package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain"
	bookingDomain "github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/booking"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/catalog"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceModel is the GORM model for the services table.
type ServiceModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name      string          `gorm:"not null;size:200"`
	Category  string          `gorm:"not null;size:50;index"`
	Active    bool            `gorm:"not null;default:true;index"`
	SortOrder int             `gorm:"not null;default:0"`
	Prices    json.RawMessage `gorm:"type:jsonb;not null"`
	Version   int64           `gorm:"not null;default:1"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ServiceModel) TableName() string {
	return "services"
}

// AddOnModel is the GORM model for the add_ons table.
type AddOnModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"not null;size:200"`
	Category   string    `gorm:"not null;size:50;index"`
	PriceCents int64     `gorm:"not null"`
	Active     bool      `gorm:"not null;default:true;index"`
	SortOrder  int       `gorm:"not null;default:0"`
	Version    int64     `gorm:"not null;default:1"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (AddOnModel) TableName() string {
	return "add_ons"
}

// GormServiceRepository is the GORM-based implementation of ServiceRepository.
type GormServiceRepository struct {
	db *gorm.DB
}

// NewGormServiceRepository creates a new GormServiceRepository.
func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

// FindByID retrieves a service by its unique identifier.
func (r *GormServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	var model ServiceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Service", id.String())
		}
		return nil, fmt.Errorf("failed to find service by ID: %w", err)
	}
	return toDomainService(&model)
}

// FindByIDs retrieves the given services, preserving input order.
// Unknown IDs are skipped.
func (r *GormServiceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var models []ServiceModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find services by IDs: %w", err)
	}

	byID := make(map[uuid.UUID]*ServiceModel, len(models))
	for i := range models {
		byID[models[i].ID] = &models[i]
	}

	services := make([]*catalog.Service, 0, len(ids))
	for _, id := range ids {
		model, ok := byID[id]
		if !ok {
			continue
		}
		svc, err := toDomainService(model)
		if err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	return services, nil
}

// ListAll retrieves services ordered by sort order.
func (r *GormServiceRepository) ListAll(ctx context.Context, activeOnly bool) ([]*catalog.Service, error) {
	query := r.db.WithContext(ctx).Order("sort_order ASC, name ASC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var models []ServiceModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	services := make([]*catalog.Service, len(models))
	for i := range models {
		svc, err := toDomainService(&models[i])
		if err != nil {
			return nil, err
		}
		services[i] = svc
	}
	return services, nil
}

// Save persists a new service.
func (r *GormServiceRepository) Save(ctx context.Context, svc *catalog.Service) error {
	model, err := toServiceModel(svc)
	if err != nil {
		return fmt.Errorf("failed to convert service to model: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save service: %w", err)
	}
	return nil
}

// Update persists changes to an existing service with optimistic locking.
func (r *GormServiceRepository) Update(ctx context.Context, svc *catalog.Service) error {
	model, err := toServiceModel(svc)
	if err != nil {
		return fmt.Errorf("failed to convert service to model: %w", err)
	}

	expectedVersion := svc.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&ServiceModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":       model.Name,
			"category":   model.Category,
			"active":     model.Active,
			"sort_order": model.SortOrder,
			"prices":     model.Prices,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update service: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("service was modified by another transaction")
	}
	return nil
}

// GormAddOnRepository is the GORM-based implementation of AddOnRepository.
type GormAddOnRepository struct {
	db *gorm.DB
}

// NewGormAddOnRepository creates a new GormAddOnRepository.
func NewGormAddOnRepository(db *gorm.DB) *GormAddOnRepository {
	return &GormAddOnRepository{db: db}
}

// FindByID retrieves an add-on by its unique identifier.
func (r *GormAddOnRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.AddOn, error) {
	var model AddOnModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("AddOn", id.String())
		}
		return nil, fmt.Errorf("failed to find add-on by ID: %w", err)
	}
	return toDomainAddOn(&model), nil
}

// FindByIDs retrieves the given add-ons, preserving input order.
// Unknown IDs are skipped.
func (r *GormAddOnRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.AddOn, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var models []AddOnModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find add-ons by IDs: %w", err)
	}

	byID := make(map[uuid.UUID]*AddOnModel, len(models))
	for i := range models {
		byID[models[i].ID] = &models[i]
	}

	addOns := make([]*catalog.AddOn, 0, len(ids))
	for _, id := range ids {
		model, ok := byID[id]
		if !ok {
			continue
		}
		addOns = append(addOns, toDomainAddOn(model))
	}
	return addOns, nil
}

// ListAll retrieves add-ons ordered by sort order.
func (r *GormAddOnRepository) ListAll(ctx context.Context, activeOnly bool) ([]*catalog.AddOn, error) {
	query := r.db.WithContext(ctx).Order("sort_order ASC, name ASC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var models []AddOnModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list add-ons: %w", err)
	}

	addOns := make([]*catalog.AddOn, len(models))
	for i := range models {
		addOns[i] = toDomainAddOn(&models[i])
	}
	return addOns, nil
}

// Save persists a new add-on.
func (r *GormAddOnRepository) Save(ctx context.Context, addOn *catalog.AddOn) error {
	if err := r.db.WithContext(ctx).Create(toAddOnModel(addOn)).Error; err != nil {
		return fmt.Errorf("failed to save add-on: %w", err)
	}
	return nil
}

// Update persists changes to an existing add-on with optimistic locking.
func (r *GormAddOnRepository) Update(ctx context.Context, addOn *catalog.AddOn) error {
	model := toAddOnModel(addOn)

	expectedVersion := addOn.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&AddOnModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":        model.Name,
			"category":    model.Category,
			"price_cents": model.PriceCents,
			"active":      model.Active,
			"sort_order":  model.SortOrder,
			"version":     model.Version,
			"updated_at":  model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update add-on: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("add-on was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toServiceModel(svc *catalog.Service) (*ServiceModel, error) {
	prices := make(map[string]int64, len(svc.Prices()))
	for vt, p := range svc.Prices() {
		prices[vt.String()] = p
	}
	pricesJSON, err := json.Marshal(prices)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal price table: %w", err)
	}

	return &ServiceModel{
		ID:        svc.ID(),
		Name:      svc.Name(),
		Category:  string(svc.Category()),
		Active:    svc.Active(),
		SortOrder: svc.SortOrder(),
		Prices:    pricesJSON,
		Version:   svc.Version(),
		CreatedAt: svc.CreatedAt(),
		UpdatedAt: svc.UpdatedAt(),
	}, nil
}

func toDomainService(m *ServiceModel) (*catalog.Service, error) {
	var prices map[string]int64
	if err := json.Unmarshal(m.Prices, &prices); err != nil {
		return nil, fmt.Errorf("failed to unmarshal price table: %w", err)
	}
	table := make(catalog.PriceTable, len(prices))
	for vt, p := range prices {
		table[bookingDomain.VehicleType(vt)] = p
	}

	return catalog.ReconstructService(
		m.ID,
		m.Name,
		catalog.ServiceCategory(m.Category),
		m.Active,
		m.SortOrder,
		table,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toAddOnModel(a *catalog.AddOn) *AddOnModel {
	return &AddOnModel{
		ID:         a.ID(),
		Name:       a.Name(),
		Category:   string(a.Category()),
		PriceCents: a.PriceCents(),
		Active:     a.Active(),
		SortOrder:  a.SortOrder(),
		Version:    a.Version(),
		CreatedAt:  a.CreatedAt(),
		UpdatedAt:  a.UpdatedAt(),
	}
}

func toDomainAddOn(m *AddOnModel) *catalog.AddOn {
	return catalog.ReconstructAddOn(
		m.ID,
		m.Name,
		catalog.AddOnCategory(m.Category),
		m.PriceCents,
		m.Active,
		m.SortOrder,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
