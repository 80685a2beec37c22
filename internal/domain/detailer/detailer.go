package detailer

import (
	"time"

	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain"
	"github.com/google/uuid"
)

// Detailer is the aggregate for a staff member who performs detailing
// jobs. The active-booking load is not stored here: it is derived from
// the booking store on every read so the count can never drift.
type Detailer struct {
	id        uuid.UUID
	name      string
	phone     string
	email     string
	active    bool
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewDetailer creates a new active detailer.
func NewDetailer(name, phone, email string) (*Detailer, error) {
	if name == "" {
		return nil, domain.NewValidationError("detailer name is required")
	}
	if phone == "" {
		return nil, domain.NewValidationError("detailer phone is required")
	}

	now := time.Now().UTC()
	return &Detailer{
		id:        uuid.New(),
		name:      name,
		phone:     phone,
		email:     email,
		active:    true,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructDetailer rebuilds a Detailer from persistence data (no validation).
func ReconstructDetailer(
	id uuid.UUID,
	name, phone, email string,
	active bool,
	version int64,
	createdAt, updatedAt time.Time,
) *Detailer {
	return &Detailer{
		id:        id,
		name:      name,
		phone:     phone,
		email:     email,
		active:    active,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the detailer's unique identifier.
func (d *Detailer) ID() uuid.UUID { return d.id }

// Name returns the detailer's name.
func (d *Detailer) Name() string { return d.name }

// Phone returns the detailer's contact phone.
func (d *Detailer) Phone() string { return d.phone }

// Email returns the detailer's contact email.
func (d *Detailer) Email() string { return d.email }

// Active returns whether the detailer can be assigned work.
func (d *Detailer) Active() bool { return d.active }

// Version returns the entity version for optimistic locking.
func (d *Detailer) Version() int64 { return d.version }

// CreatedAt returns the creation timestamp.
func (d *Detailer) CreatedAt() time.Time { return d.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (d *Detailer) UpdatedAt() time.Time { return d.updatedAt }

// Update replaces the mutable contact attributes.
func (d *Detailer) Update(name, phone, email string) error {
	if name == "" {
		return domain.NewValidationError("detailer name is required")
	}
	if phone == "" {
		return domain.NewValidationError("detailer phone is required")
	}
	d.name = name
	d.phone = phone
	d.email = email
	d.updatedAt = time.Now().UTC()
	return nil
}

// SetActive toggles assignability.
func (d *Detailer) SetActive(active bool) {
	d.active = active
	d.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (d *Detailer) IncrementVersion() {
	d.version++
	d.updatedAt = time.Now().UTC()
}
