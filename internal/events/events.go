package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents = "booking.events"
)

// Event types published on booking.events.
const (
	BookingCreated     = "booking.created"
	BookingAssigned    = "booking.assigned"
	BookingEnRoute     = "booking.en_route"
	BookingStarted     = "booking.started"
	BookingWorkStarted = "booking.work_started"
	BookingCompleted   = "booking.completed"
	BookingCanceled    = "booking.canceled"
)

// BookingCreatedEvent is published when a customer submits a booking.
type BookingCreatedEvent struct {
	BookingID        uuid.UUID `json:"booking_id"`
	ConfirmationCode string    `json:"confirmation_code"`
	CustomerName     string    `json:"customer_name"`
	CustomerPhone    string    `json:"customer_phone"`
	VehicleType      string    `json:"vehicle_type"`
	TotalPriceCents  int64     `json:"total_price_cents"`
	ScheduledAt      time.Time `json:"scheduled_at"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// BookingAssignedEvent is published when a detailer is dispatched.
type BookingAssignedEvent struct {
	BookingID        uuid.UUID `json:"booking_id"`
	ConfirmationCode string    `json:"confirmation_code"`
	DetailerID       uuid.UUID `json:"detailer_id"`
	DetailerName     string    `json:"detailer_name"`
	CustomerPhone    string    `json:"customer_phone"`
	ScheduledAt      time.Time `json:"scheduled_at"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// BookingStatusEvent is published for intermediate lifecycle stages
// (en_route, started, work_started).
type BookingStatusEvent struct {
	BookingID        uuid.UUID `json:"booking_id"`
	ConfirmationCode string    `json:"confirmation_code"`
	Status           string    `json:"status"`
	CustomerPhone    string    `json:"customer_phone"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// BookingCompletedEvent is published when a job is marked complete.
type BookingCompletedEvent struct {
	BookingID        uuid.UUID `json:"booking_id"`
	ConfirmationCode string    `json:"confirmation_code"`
	DetailerID       uuid.UUID `json:"detailer_id"`
	CustomerPhone    string    `json:"customer_phone"`
	TotalPriceCents  int64     `json:"total_price_cents"`
	CompletedAt      time.Time `json:"completed_at"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// BookingCanceledEvent is published when a booking is canceled.
type BookingCanceledEvent struct {
	BookingID        uuid.UUID `json:"booking_id"`
	ConfirmationCode string    `json:"confirmation_code"`
	CustomerPhone    string    `json:"customer_phone"`
	Reason           string    `json:"reason"`
	OccurredAt       time.Time `json:"occurred_at"`
}
