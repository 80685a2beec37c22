package application

import (
	"context"
	"fmt"
	"time"

	bookingDomain "github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/booking"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/catalog"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ServiceRequest is the request DTO for creating or updating a service.
type ServiceRequest struct {
	Name      string           `json:"name" binding:"required"`
	Category  string           `json:"category" binding:"required"`
	SortOrder int              `json:"sort_order"`
	Prices    map[string]int64 `json:"prices" binding:"required"`
}

// AddOnRequest is the request DTO for creating or updating an add-on.
type AddOnRequest struct {
	Name       string `json:"name" binding:"required"`
	Category   string `json:"category" binding:"required"`
	PriceCents int64  `json:"price_cents" binding:"required"`
	SortOrder  int    `json:"sort_order"`
}

// ServiceDTO is the response representation of a service.
type ServiceDTO struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Category  string           `json:"category"`
	Active    bool             `json:"active"`
	SortOrder int              `json:"sort_order"`
	Prices    map[string]int64 `json:"prices"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// AddOnDTO is the response representation of an add-on.
type AddOnDTO struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	PriceCents int64     `json:"price_cents"`
	Active     bool      `json:"active"`
	SortOrder  int       `json:"sort_order"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CatalogService implements catalog management and quote computation.
type CatalogService struct {
	services catalog.ServiceRepository
	addOns   catalog.AddOnRepository
	logger   *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	services catalog.ServiceRepository,
	addOns catalog.AddOnRepository,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{services: services, addOns: addOns, logger: logger}
}

// ComputeQuote prices the requested items for a vehicle type.
func (s *CatalogService) ComputeQuote(ctx context.Context, vehicleType bookingDomain.VehicleType, serviceIDs, addOnIDs []uuid.UUID) (*catalog.Quote, error) {
	svcs, err := s.services.FindByIDs(ctx, serviceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load services: %w", err)
	}
	adds, err := s.addOns.FindByIDs(ctx, addOnIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load add-ons: %w", err)
	}
	return catalog.ComputeQuote(vehicleType, svcs, adds)
}

// CreateService creates a new catalog service.
func (s *CatalogService) CreateService(ctx context.Context, req ServiceRequest) (*ServiceDTO, error) {
	svc, err := catalog.NewService(req.Name, catalog.ServiceCategory(req.Category), req.SortOrder, toPriceTable(req.Prices))
	if err != nil {
		return nil, err
	}
	if err := s.services.Save(ctx, svc); err != nil {
		s.logger.Error("failed to create service", zap.Error(err))
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	result := toServiceDTO(svc)
	return &result, nil
}

// UpdateService updates an existing catalog service.
func (s *CatalogService) UpdateService(ctx context.Context, id uuid.UUID, req ServiceRequest) (*ServiceDTO, error) {
	svc, err := s.services.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := svc.Update(req.Name, catalog.ServiceCategory(req.Category), req.SortOrder, toPriceTable(req.Prices)); err != nil {
		return nil, err
	}
	svc.IncrementVersion()
	if err := s.services.Update(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}
	result := toServiceDTO(svc)
	return &result, nil
}

// SetServiceActive toggles a service's customer visibility.
func (s *CatalogService) SetServiceActive(ctx context.Context, id uuid.UUID, active bool) (*ServiceDTO, error) {
	svc, err := s.services.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	svc.SetActive(active)
	svc.IncrementVersion()
	if err := s.services.Update(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}
	result := toServiceDTO(svc)
	return &result, nil
}

// ListServices returns catalog services ordered by sort order.
func (s *CatalogService) ListServices(ctx context.Context, activeOnly bool) ([]ServiceDTO, error) {
	svcs, err := s.services.ListAll(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	dtos := make([]ServiceDTO, len(svcs))
	for i, svc := range svcs {
		dtos[i] = toServiceDTO(svc)
	}
	return dtos, nil
}

// CreateAddOn creates a new catalog add-on.
func (s *CatalogService) CreateAddOn(ctx context.Context, req AddOnRequest) (*AddOnDTO, error) {
	addOn, err := catalog.NewAddOn(req.Name, catalog.AddOnCategory(req.Category), req.PriceCents, req.SortOrder)
	if err != nil {
		return nil, err
	}
	if err := s.addOns.Save(ctx, addOn); err != nil {
		s.logger.Error("failed to create add-on", zap.Error(err))
		return nil, fmt.Errorf("failed to create add-on: %w", err)
	}
	result := toAddOnDTO(addOn)
	return &result, nil
}

// UpdateAddOn updates an existing catalog add-on.
func (s *CatalogService) UpdateAddOn(ctx context.Context, id uuid.UUID, req AddOnRequest) (*AddOnDTO, error) {
	addOn, err := s.addOns.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := addOn.Update(req.Name, catalog.AddOnCategory(req.Category), req.PriceCents, req.SortOrder); err != nil {
		return nil, err
	}
	addOn.IncrementVersion()
	if err := s.addOns.Update(ctx, addOn); err != nil {
		return nil, fmt.Errorf("failed to update add-on: %w", err)
	}
	result := toAddOnDTO(addOn)
	return &result, nil
}

// SetAddOnActive toggles an add-on's customer visibility.
func (s *CatalogService) SetAddOnActive(ctx context.Context, id uuid.UUID, active bool) (*AddOnDTO, error) {
	addOn, err := s.addOns.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	addOn.SetActive(active)
	addOn.IncrementVersion()
	if err := s.addOns.Update(ctx, addOn); err != nil {
		return nil, fmt.Errorf("failed to update add-on: %w", err)
	}
	result := toAddOnDTO(addOn)
	return &result, nil
}

// ListAddOns returns catalog add-ons ordered by sort order.
func (s *CatalogService) ListAddOns(ctx context.Context, activeOnly bool) ([]AddOnDTO, error) {
	addOns, err := s.addOns.ListAll(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list add-ons: %w", err)
	}
	dtos := make([]AddOnDTO, len(addOns))
	for i, a := range addOns {
		dtos[i] = toAddOnDTO(a)
	}
	return dtos, nil
}

func toPriceTable(prices map[string]int64) catalog.PriceTable {
	table := make(catalog.PriceTable, len(prices))
	for vt, p := range prices {
		table[bookingDomain.VehicleType(vt)] = p
	}
	return table
}

func toServiceDTO(svc *catalog.Service) ServiceDTO {
	prices := make(map[string]int64, len(svc.Prices()))
	for vt, p := range svc.Prices() {
		prices[vt.String()] = p
	}
	return ServiceDTO{
		ID:        svc.ID(),
		Name:      svc.Name(),
		Category:  string(svc.Category()),
		Active:    svc.Active(),
		SortOrder: svc.SortOrder(),
		Prices:    prices,
		CreatedAt: svc.CreatedAt(),
		UpdatedAt: svc.UpdatedAt(),
	}
}

func toAddOnDTO(a *catalog.AddOn) AddOnDTO {
	return AddOnDTO{
		ID:         a.ID(),
		Name:       a.Name(),
		Category:   string(a.Category()),
		PriceCents: a.PriceCents(),
		Active:     a.Active(),
		SortOrder:  a.SortOrder(),
		CreatedAt:  a.CreatedAt(),
		UpdatedAt:  a.UpdatedAt(),
	}
}
