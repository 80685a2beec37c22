package detailer

import (
	"context"

	"github.com/google/uuid"
)

// DetailerRepository defines persistence operations for the roster.
type DetailerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Detailer, error)

	// ListActive retrieves all active detailers ordered by ID for
	// deterministic auto-assignment tie-breaking.
	ListActive(ctx context.Context) ([]*Detailer, error)

	// ListAll retrieves all detailers (admin).
	ListAll(ctx context.Context) ([]*Detailer, error)

	Save(ctx context.Context, d *Detailer) error
	Update(ctx context.Context, d *Detailer) error
}
