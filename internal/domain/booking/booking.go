package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain"
	"github.com/google/uuid"
)

const confirmationCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for a detailing job. Status and the
// lifecycle timestamps are only ever written by the transition methods
// below, keeping the two mutually consistent.
type Booking struct {
	id               uuid.UUID
	confirmationCode string
	customer         CustomerSnapshot
	vehicle          VehicleSnapshot
	serviceIDs       []uuid.UUID
	addOnIDs         []uuid.UUID
	scheduledAt      time.Time
	status           BookingStatus
	detailerID       *uuid.UUID

	totalPriceCents int64

	enRouteAt   *time.Time
	startedAt   *time.Time
	completedAt *time.Time
	canceledAt  *time.Time
	cancelNote  string
	notes       string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateConfirmationCode creates a code in the format "DT-XXXXXX".
func generateConfirmationCode() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(confirmationCodeChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate confirmation code: %w", err)
		}
		result[i] = confirmationCodeChars[n.Int64()]
	}
	return "DT-" + string(result), nil
}

// NewBooking creates a new Booking aggregate with status=pending.
func NewBooking(
	customer CustomerSnapshot,
	vehicle VehicleSnapshot,
	serviceIDs []uuid.UUID,
	addOnIDs []uuid.UUID,
	totalPriceCents int64,
	scheduledAt time.Time,
	notes string,
) (*Booking, error) {
	if customer.Name == "" {
		return nil, domain.NewValidationError("customer name is required")
	}
	if customer.Phone == "" {
		return nil, domain.NewValidationError("customer phone is required")
	}
	if !vehicle.VehicleType.IsValid() {
		return nil, domain.NewInvalidVehicleTypeError(string(vehicle.VehicleType))
	}
	if len(serviceIDs) == 0 {
		return nil, domain.NewValidationError("at least one service is required")
	}
	if totalPriceCents <= 0 {
		return nil, domain.NewValidationError("booking total must be positive")
	}
	if scheduledAt.IsZero() {
		return nil, domain.NewValidationError("scheduled time is required")
	}

	code, err := generateConfirmationCode()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:               uuid.New(),
		confirmationCode: code,
		customer:         customer,
		vehicle:          vehicle,
		serviceIDs:       serviceIDs,
		addOnIDs:         addOnIDs,
		scheduledAt:      scheduledAt,
		status:           StatusPending,
		totalPriceCents:  totalPriceCents,
		notes:            notes,
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	confirmationCode string,
	customer CustomerSnapshot,
	vehicle VehicleSnapshot,
	serviceIDs []uuid.UUID,
	addOnIDs []uuid.UUID,
	scheduledAt time.Time,
	status BookingStatus,
	detailerID *uuid.UUID,
	totalPriceCents int64,
	enRouteAt *time.Time,
	startedAt *time.Time,
	completedAt *time.Time,
	canceledAt *time.Time,
	cancelNote string,
	notes string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:               id,
		confirmationCode: confirmationCode,
		customer:         customer,
		vehicle:          vehicle,
		serviceIDs:       serviceIDs,
		addOnIDs:         addOnIDs,
		scheduledAt:      scheduledAt,
		status:           status,
		detailerID:       detailerID,
		totalPriceCents:  totalPriceCents,
		enRouteAt:        enRouteAt,
		startedAt:        startedAt,
		completedAt:      completedAt,
		canceledAt:       canceledAt,
		cancelNote:       cancelNote,
		notes:            notes,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// ConfirmationCode returns the customer-facing confirmation code.
func (b *Booking) ConfirmationCode() string { return b.confirmationCode }

// Customer returns the customer snapshot.
func (b *Booking) Customer() CustomerSnapshot { return b.customer }

// Vehicle returns the vehicle snapshot.
func (b *Booking) Vehicle() VehicleSnapshot { return b.vehicle }

// ServiceIDs returns the selected service identifiers in selection order.
func (b *Booking) ServiceIDs() []uuid.UUID { return b.serviceIDs }

// AddOnIDs returns the selected add-on identifiers.
func (b *Booking) AddOnIDs() []uuid.UUID { return b.addOnIDs }

// ScheduledAt returns the scheduled appointment time.
func (b *Booking) ScheduledAt() time.Time { return b.scheduledAt }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// DetailerID returns the assigned detailer's ID, or nil if unassigned.
func (b *Booking) DetailerID() *uuid.UUID { return b.detailerID }

// TotalPriceCents returns the price computed at submission time.
func (b *Booking) TotalPriceCents() int64 { return b.totalPriceCents }

// EnRouteAt returns the time the detailer started navigation.
func (b *Booking) EnRouteAt() *time.Time { return b.enRouteAt }

// StartedAt returns the time the detailer arrived on site.
func (b *Booking) StartedAt() *time.Time { return b.startedAt }

// CompletedAt returns the time the job was completed.
func (b *Booking) CompletedAt() *time.Time { return b.completedAt }

// CanceledAt returns the time the booking was canceled.
func (b *Booking) CanceledAt() *time.Time { return b.canceledAt }

// CancelNote returns the cancellation reason.
func (b *Booking) CancelNote() string { return b.cancelNote }

// Notes returns free-text notes for the booking.
func (b *Booking) Notes() string { return b.notes }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Assign transitions the booking from pending to confirmed with the
// given detailer. Assignment is the only path into confirmed.
// Re-assigning the same detailer is a no-op; once confirmed, handing
// the booking to a different detailer is rejected.
func (b *Booking) Assign(detailerID uuid.UUID) error {
	if detailerID == uuid.Nil {
		return domain.NewValidationError("detailer ID is required")
	}
	if b.status == StatusConfirmed {
		if b.detailerID != nil && *b.detailerID == detailerID {
			return nil
		}
		return domain.NewIllegalTransitionError(string(b.status), string(StatusConfirmed))
	}
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return domain.NewIllegalTransitionError(string(b.status), string(StatusConfirmed))
	}
	b.detailerID = &detailerID
	b.status = StatusConfirmed
	b.updatedAt = time.Now().UTC()
	return nil
}

// TransitionTo applies a forward lifecycle transition and records the
// timestamp belonging to the target state. Re-requesting the current
// state is a no-op. Confirmed is rejected here: it requires a detailer
// and is reachable only through Assign.
func (b *Booking) TransitionTo(target BookingStatus) error {
	if target == b.status {
		return nil
	}
	if target == StatusConfirmed || target == StatusCanceled || !b.status.CanTransitionTo(target) {
		return domain.NewIllegalTransitionError(string(b.status), string(target))
	}

	now := time.Now().UTC()
	b.status = target

	// Each timestamp is set at most once.
	switch target {
	case StatusEnRoute:
		if b.enRouteAt == nil {
			t := now
			b.enRouteAt = &t
		}
	case StatusStarted:
		if b.startedAt == nil {
			t := now
			b.startedAt = &t
		}
	case StatusCompleted:
		if b.completedAt == nil {
			t := now
			b.completedAt = &t
		}
	}
	b.updatedAt = now
	return nil
}

// Cancel transitions the booking to canceled if it is not in a terminal state.
func (b *Booking) Cancel(reason string) error {
	if b.status == StatusCanceled {
		return nil
	}
	if !b.status.CanBeCanceled() {
		return domain.NewIllegalTransitionError(string(b.status), string(StatusCanceled))
	}
	now := time.Now().UTC()
	b.status = StatusCanceled
	b.cancelNote = reason
	b.canceledAt = &now
	b.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
