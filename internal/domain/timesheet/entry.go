package timesheet

import (
	"time"

	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain"
	"github.com/google/uuid"
)

// Entry records one span of active labor on a booking. A booking can
// accumulate several entries (pause and resume), but at most one is
// open at a time, and a detailer has at most one open entry across all
// bookings.
type Entry struct {
	id         uuid.UUID
	bookingID  uuid.UUID
	detailerID uuid.UUID
	startTime  time.Time
	endTime    *time.Time
	anomalous  bool
	createdAt  time.Time
}

// NewEntry opens a labor span for a booking at the given instant.
func NewEntry(bookingID, detailerID uuid.UUID, now time.Time) (*Entry, error) {
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if detailerID == uuid.Nil {
		return nil, domain.NewValidationError("detailer ID is required")
	}
	return &Entry{
		id:         uuid.New(),
		bookingID:  bookingID,
		detailerID: detailerID,
		startTime:  now.UTC(),
		createdAt:  now.UTC(),
	}, nil
}

// ReconstructEntry rebuilds an Entry from persistence data (no validation).
func ReconstructEntry(
	id, bookingID, detailerID uuid.UUID,
	startTime time.Time,
	endTime *time.Time,
	anomalous bool,
	createdAt time.Time,
) *Entry {
	return &Entry{
		id:         id,
		bookingID:  bookingID,
		detailerID: detailerID,
		startTime:  startTime,
		endTime:    endTime,
		anomalous:  anomalous,
		createdAt:  createdAt,
	}
}

// ID returns the entry's unique identifier.
func (e *Entry) ID() uuid.UUID { return e.id }

// BookingID returns the booking this labor span belongs to.
func (e *Entry) BookingID() uuid.UUID { return e.bookingID }

// DetailerID returns the detailer performing the labor.
func (e *Entry) DetailerID() uuid.UUID { return e.detailerID }

// StartTime returns when the span opened.
func (e *Entry) StartTime() time.Time { return e.startTime }

// EndTime returns when the span closed, or nil while active.
func (e *Entry) EndTime() *time.Time { return e.endTime }

// Anomalous reports whether the span was clamped due to clock skew.
func (e *Entry) Anomalous() bool { return e.anomalous }

// CreatedAt returns the creation timestamp.
func (e *Entry) CreatedAt() time.Time { return e.createdAt }

// IsActive returns true while the span has no end time.
func (e *Entry) IsActive() bool { return e.endTime == nil }

// Stop closes the span at the given instant. An end time earlier than
// the start (clock skew) is clamped to the start and the entry flagged
// anomalous.
func (e *Entry) Stop(now time.Time) error {
	if !e.IsActive() {
		return domain.NewNotActiveError(e.bookingID.String())
	}
	end := now.UTC()
	if end.Before(e.startTime) {
		end = e.startTime
		e.anomalous = true
	}
	e.endTime = &end
	return nil
}

// Elapsed returns the span's duration. Active spans are measured
// against the given instant; the result is never negative.
func (e *Entry) Elapsed(now time.Time) time.Duration {
	end := now.UTC()
	if e.endTime != nil {
		end = *e.endTime
	}
	d := end.Sub(e.startTime)
	if d < 0 {
		return 0
	}
	return d
}
