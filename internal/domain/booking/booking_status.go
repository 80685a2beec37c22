package booking

import "fmt"

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusEnRoute    BookingStatus = "en_route"
	StatusStarted    BookingStatus = "started"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCanceled   BookingStatus = "canceled"
)

// validTransitions defines the state machine for booking status
// transitions. The forward path is strict: stages cannot be skipped,
// only canceled is reachable out of order.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:    {StatusConfirmed, StatusCanceled},
	StatusConfirmed:  {StatusEnRoute, StatusCanceled},
	StatusEnRoute:    {StatusStarted, StatusCanceled},
	StatusStarted:    {StatusInProgress, StatusCanceled},
	StatusInProgress: {StatusCompleted, StatusCanceled},
	StatusCompleted:  {},
	StatusCanceled:   {},
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the
// target is allowed. A transition to the current status is allowed and
// treated as a no-op by callers.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	if s == target {
		return true
	}
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// CanBeCanceled returns true if the booking can be canceled from this status.
func (s BookingStatus) CanBeCanceled() bool {
	return s != StatusCanceled && s.CanTransitionTo(StatusCanceled)
}

// Phase maps the full lifecycle onto the coarse legacy vocabulary used
// by admin dashboards: upcoming, active, done.
func (s BookingStatus) Phase() string {
	switch s {
	case StatusPending, StatusConfirmed:
		return "upcoming"
	case StatusEnRoute, StatusStarted, StatusInProgress:
		return "active"
	default:
		return "done"
	}
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
