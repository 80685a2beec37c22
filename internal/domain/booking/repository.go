package booking

import (
	"context"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByCode retrieves a booking by its confirmation code.
	FindByCode(ctx context.Context, code string) (*Booking, error)

	// FindByDetailerID retrieves bookings assigned to a specific detailer with pagination.
	FindByDetailerID(ctx context.Context, detailerID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// CountActiveByDetailer returns, per detailer, the number of assigned
	// bookings that have not reached a terminal state. Detailers with no
	// active bookings are absent from the map.
	CountActiveByDetailer(ctx context.Context) (map[uuid.UUID]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}
