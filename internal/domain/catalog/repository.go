package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ServiceRepository defines persistence operations for services.
type ServiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Service, error)

	// FindByIDs retrieves the given services, preserving the input order.
	// Unknown IDs are skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Service, error)

	// ListAll retrieves services ordered by sort order. When activeOnly
	// is set, inactive services are excluded.
	ListAll(ctx context.Context, activeOnly bool) ([]*Service, error)

	Save(ctx context.Context, service *Service) error
	Update(ctx context.Context, service *Service) error
}

// AddOnRepository defines persistence operations for add-ons.
type AddOnRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*AddOn, error)

	// FindByIDs retrieves the given add-ons, preserving the input order.
	// Unknown IDs are skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*AddOn, error)

	// ListAll retrieves add-ons ordered by sort order. When activeOnly is
	// set, inactive add-ons are excluded.
	ListAll(ctx context.Context, activeOnly bool) ([]*AddOn, error)

	Save(ctx context.Context, addOn *AddOn) error
	Update(ctx context.Context, addOn *AddOn) error
}
