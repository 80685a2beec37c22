package timesheet

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EntryRepository defines persistence operations for the labor ledger.
type EntryRepository interface {
	// FindActiveByBookingID returns the open entry for a booking, or a
	// not-found error if none is open.
	FindActiveByBookingID(ctx context.Context, bookingID uuid.UUID) (*Entry, error)

	// FindActiveByDetailerID returns the open entry for a detailer, or a
	// not-found error if none is open.
	FindActiveByDetailerID(ctx context.Context, detailerID uuid.UUID) (*Entry, error)

	// FindByBookingID returns all entries for a booking ordered by start time.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*Entry, error)

	// FindStartedBetween returns all entries whose start time falls in
	// [from, to), ordered by start time.
	FindStartedBetween(ctx context.Context, from, to time.Time) ([]*Entry, error)

	Save(ctx context.Context, entry *Entry) error
	Update(ctx context.Context, entry *Entry) error
}
