package catalog

import (
	"time"

	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain"
	"github.com/google/uuid"
)

// AddOnCategory groups add-ons for display.
type AddOnCategory string

const (
	AddOnCategoryEnhancement AddOnCategory = "enhancement"
	AddOnCategoryProtection  AddOnCategory = "protection"
	AddOnCategoryCleaning    AddOnCategory = "cleaning"
	AddOnCategoryRestoration AddOnCategory = "restoration"
)

// IsValid returns true if the add-on category is recognized.
func (c AddOnCategory) IsValid() bool {
	switch c {
	case AddOnCategoryEnhancement, AddOnCategoryProtection, AddOnCategoryCleaning, AddOnCategoryRestoration:
		return true
	}
	return false
}

// AddOn is an aggregate for an optional extra with a single flat price.
type AddOn struct {
	id         uuid.UUID
	name       string
	category   AddOnCategory
	priceCents int64
	active     bool
	sortOrder  int
	version    int64
	createdAt  time.Time
	updatedAt  time.Time
}

// NewAddOn creates a new active add-on with a validated price.
func NewAddOn(name string, category AddOnCategory, priceCents int64, sortOrder int) (*AddOn, error) {
	if name == "" {
		return nil, domain.NewValidationError("add-on name is required")
	}
	if !category.IsValid() {
		return nil, domain.NewValidationError("invalid add-on category: " + string(category))
	}
	if priceCents <= 0 {
		return nil, domain.NewInvalidPriceError("add-on price must be positive")
	}

	now := time.Now().UTC()
	return &AddOn{
		id:         uuid.New(),
		name:       name,
		category:   category,
		priceCents: priceCents,
		active:     true,
		sortOrder:  sortOrder,
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructAddOn rebuilds an AddOn from persistence data (no validation).
func ReconstructAddOn(
	id uuid.UUID,
	name string,
	category AddOnCategory,
	priceCents int64,
	active bool,
	sortOrder int,
	version int64,
	createdAt, updatedAt time.Time,
) *AddOn {
	return &AddOn{
		id:         id,
		name:       name,
		category:   category,
		priceCents: priceCents,
		active:     active,
		sortOrder:  sortOrder,
		version:    version,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// ID returns the add-on's unique identifier.
func (a *AddOn) ID() uuid.UUID { return a.id }

// Name returns the display name.
func (a *AddOn) Name() string { return a.name }

// Category returns the add-on category.
func (a *AddOn) Category() AddOnCategory { return a.category }

// PriceCents returns the flat price in cents.
func (a *AddOn) PriceCents() int64 { return a.priceCents }

// Active returns whether the add-on is visible to customers.
func (a *AddOn) Active() bool { return a.active }

// SortOrder returns the display sort order.
func (a *AddOn) SortOrder() int { return a.sortOrder }

// Version returns the entity version for optimistic locking.
func (a *AddOn) Version() int64 { return a.version }

// CreatedAt returns the creation timestamp.
func (a *AddOn) CreatedAt() time.Time { return a.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (a *AddOn) UpdatedAt() time.Time { return a.updatedAt }

// Update replaces the mutable attributes after re-validating the price.
func (a *AddOn) Update(name string, category AddOnCategory, priceCents int64, sortOrder int) error {
	if name == "" {
		return domain.NewValidationError("add-on name is required")
	}
	if !category.IsValid() {
		return domain.NewValidationError("invalid add-on category: " + string(category))
	}
	if priceCents <= 0 {
		return domain.NewInvalidPriceError("add-on price must be positive")
	}
	a.name = name
	a.category = category
	a.priceCents = priceCents
	a.sortOrder = sortOrder
	a.updatedAt = time.Now().UTC()
	return nil
}

// SetActive toggles customer visibility.
func (a *AddOn) SetActive(active bool) {
	a.active = active
	a.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (a *AddOn) IncrementVersion() {
	a.version++
	a.updatedAt = time.Now().UTC()
}
