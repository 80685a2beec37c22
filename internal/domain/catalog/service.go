package catalog

import (
	"time"

	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/booking"
	"github.com/google/uuid"
)

// ServiceCategory groups services for display.
type ServiceCategory string

const (
	ServiceCategoryDetailing   ServiceCategory = "detailing"
	ServiceCategoryProtection  ServiceCategory = "protection"
	ServiceCategoryRestoration ServiceCategory = "restoration"
	ServiceCategoryMaintenance ServiceCategory = "maintenance"
	ServiceCategorySpecialty   ServiceCategory = "specialty"
)

// IsValid returns true if the service category is recognized.
func (c ServiceCategory) IsValid() bool {
	switch c {
	case ServiceCategoryDetailing, ServiceCategoryProtection, ServiceCategoryRestoration,
		ServiceCategoryMaintenance, ServiceCategorySpecialty:
		return true
	}
	return false
}

// PriceTable maps each supported vehicle type to a price in cents.
type PriceTable map[booking.VehicleType]int64

// Validate checks that the table carries exactly one positive price per
// supported vehicle type.
func (t PriceTable) Validate() error {
	for _, vt := range booking.SupportedVehicleTypes {
		price, ok := t[vt]
		if !ok {
			return domain.NewInvalidPriceError("missing price for vehicle type " + vt.String())
		}
		if price <= 0 {
			return domain.NewInvalidPriceError("price must be positive for vehicle type " + vt.String())
		}
	}
	if len(t) != len(booking.SupportedVehicleTypes) {
		return domain.NewInvalidPriceError("price table contains an unsupported vehicle type")
	}
	return nil
}

// Service is an aggregate for a priced detailing service.
type Service struct {
	id        uuid.UUID
	name      string
	category  ServiceCategory
	active    bool
	sortOrder int
	prices    PriceTable
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewService creates a new active service with a validated price table.
func NewService(name string, category ServiceCategory, sortOrder int, prices PriceTable) (*Service, error) {
	if name == "" {
		return nil, domain.NewValidationError("service name is required")
	}
	if !category.IsValid() {
		return nil, domain.NewValidationError("invalid service category: " + string(category))
	}
	if err := prices.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	copied := make(PriceTable, len(prices))
	for vt, p := range prices {
		copied[vt] = p
	}
	return &Service{
		id:        uuid.New(),
		name:      name,
		category:  category,
		active:    true,
		sortOrder: sortOrder,
		prices:    copied,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructService rebuilds a Service from persistence data (no validation).
func ReconstructService(
	id uuid.UUID,
	name string,
	category ServiceCategory,
	active bool,
	sortOrder int,
	prices PriceTable,
	version int64,
	createdAt, updatedAt time.Time,
) *Service {
	return &Service{
		id:        id,
		name:      name,
		category:  category,
		active:    active,
		sortOrder: sortOrder,
		prices:    prices,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the service's unique identifier.
func (s *Service) ID() uuid.UUID { return s.id }

// Name returns the display name.
func (s *Service) Name() string { return s.name }

// Category returns the service category.
func (s *Service) Category() ServiceCategory { return s.category }

// Active returns whether the service is visible to customers.
func (s *Service) Active() bool { return s.active }

// SortOrder returns the display sort order.
func (s *Service) SortOrder() int { return s.sortOrder }

// Prices returns the per-vehicle-type price table.
func (s *Service) Prices() PriceTable { return s.prices }

// Version returns the entity version for optimistic locking.
func (s *Service) Version() int64 { return s.version }

// CreatedAt returns the creation timestamp.
func (s *Service) CreatedAt() time.Time { return s.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (s *Service) UpdatedAt() time.Time { return s.updatedAt }

// PriceFor returns the price in cents for the given vehicle type, and
// whether a price exists.
func (s *Service) PriceFor(vt booking.VehicleType) (int64, bool) {
	price, ok := s.prices[vt]
	return price, ok
}

// Update replaces the mutable attributes after re-validating the price table.
func (s *Service) Update(name string, category ServiceCategory, sortOrder int, prices PriceTable) error {
	if name == "" {
		return domain.NewValidationError("service name is required")
	}
	if !category.IsValid() {
		return domain.NewValidationError("invalid service category: " + string(category))
	}
	if err := prices.Validate(); err != nil {
		return err
	}
	s.name = name
	s.category = category
	s.sortOrder = sortOrder
	s.prices = prices
	s.updatedAt = time.Now().UTC()
	return nil
}

// SetActive toggles customer visibility.
func (s *Service) SetActive(active bool) {
	s.active = active
	s.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (s *Service) IncrementVersion() {
	s.version++
	s.updatedAt = time.Now().UTC()
}
