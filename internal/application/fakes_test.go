package application

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain"
	bookingDomain "github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/booking"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/catalog"
	detailerDomain "github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/detailer"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/timesheet"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/events"
	"github.com/google/uuid"
)

// cloneBooking returns an independent copy, mimicking a repository that
// rehydrates aggregates from rows.
func cloneBooking(bk *bookingDomain.Booking) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		bk.ID(), bk.ConfirmationCode(), bk.Customer(), bk.Vehicle(),
		append([]uuid.UUID(nil), bk.ServiceIDs()...),
		append([]uuid.UUID(nil), bk.AddOnIDs()...),
		bk.ScheduledAt(), bk.Status(), bk.DetailerID(), bk.TotalPriceCents(),
		bk.EnRouteAt(), bk.StartedAt(), bk.CompletedAt(), bk.CanceledAt(),
		bk.CancelNote(), bk.Notes(), bk.Version(), bk.CreatedAt(), bk.UpdatedAt(),
	)
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking

	// failConflicts makes the next N Update calls fail with a conflict.
	failConflicts int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return cloneBooking(bk), nil
}

func (r *fakeBookingRepo) FindByCode(_ context.Context, code string) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bk := range r.bookings {
		if bk.ConfirmationCode() == code {
			return cloneBooking(bk), nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", code)
}

func (r *fakeBookingRepo) FindByDetailerID(_ context.Context, detailerID uuid.UUID, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.DetailerID() != nil && *bk.DetailerID() == detailerID {
			result = append(result, cloneBooking(bk))
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*bookingDomain.Booking, 0, len(r.bookings))
	for _, bk := range r.bookings {
		result = append(result, cloneBooking(bk))
	}
	return result, int64(len(result)), nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, bk := range r.bookings {
		counts[string(bk.Status())]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) CountActiveByDetailer(_ context.Context) (map[uuid.UUID]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	loads := make(map[uuid.UUID]int64)
	for _, bk := range r.bookings {
		if bk.DetailerID() != nil && !bk.Status().IsTerminal() {
			loads[*bk.DetailerID()]++
		}
	}
	return loads, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[bk.ID()] = cloneBooking(bk)
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failConflicts > 0 {
		r.failConflicts--
		return domain.NewConflictError("booking was modified by another transaction")
	}
	if _, ok := r.bookings[bk.ID()]; !ok {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	r.bookings[bk.ID()] = cloneBooking(bk)
	return nil
}

type fakeDetailerRepo struct {
	mu        sync.Mutex
	detailers map[uuid.UUID]*detailerDomain.Detailer
}

func newFakeDetailerRepo() *fakeDetailerRepo {
	return &fakeDetailerRepo{detailers: make(map[uuid.UUID]*detailerDomain.Detailer)}
}

func (r *fakeDetailerRepo) FindByID(_ context.Context, id uuid.UUID) (*detailerDomain.Detailer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.detailers[id]
	if !ok {
		return nil, domain.NewNotFoundError("Detailer", id.String())
	}
	return d, nil
}

func (r *fakeDetailerRepo) ListActive(_ context.Context) ([]*detailerDomain.Detailer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*detailerDomain.Detailer
	for _, d := range r.detailers {
		if d.Active() {
			result = append(result, d)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].ID(), result[j].ID()
		return bytes.Compare(a[:], b[:]) < 0
	})
	return result, nil
}

func (r *fakeDetailerRepo) ListAll(_ context.Context) ([]*detailerDomain.Detailer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*detailerDomain.Detailer, 0, len(r.detailers))
	for _, d := range r.detailers {
		result = append(result, d)
	}
	return result, nil
}

func (r *fakeDetailerRepo) Save(_ context.Context, d *detailerDomain.Detailer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detailers[d.ID()] = d
	return nil
}

func (r *fakeDetailerRepo) Update(_ context.Context, d *detailerDomain.Detailer) error {
	return r.Save(context.Background(), d)
}

type fakeServiceRepo struct {
	services map[uuid.UUID]*catalog.Service
}

func newFakeServiceRepo() *fakeServiceRepo {
	return &fakeServiceRepo{services: make(map[uuid.UUID]*catalog.Service)}
}

func (r *fakeServiceRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Service, error) {
	svc, ok := r.services[id]
	if !ok {
		return nil, domain.NewNotFoundError("Service", id.String())
	}
	return svc, nil
}

func (r *fakeServiceRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*catalog.Service, error) {
	var result []*catalog.Service
	for _, id := range ids {
		if svc, ok := r.services[id]; ok {
			result = append(result, svc)
		}
	}
	return result, nil
}

func (r *fakeServiceRepo) ListAll(_ context.Context, activeOnly bool) ([]*catalog.Service, error) {
	var result []*catalog.Service
	for _, svc := range r.services {
		if activeOnly && !svc.Active() {
			continue
		}
		result = append(result, svc)
	}
	return result, nil
}

func (r *fakeServiceRepo) Save(_ context.Context, svc *catalog.Service) error {
	r.services[svc.ID()] = svc
	return nil
}

func (r *fakeServiceRepo) Update(_ context.Context, svc *catalog.Service) error {
	r.services[svc.ID()] = svc
	return nil
}

type fakeAddOnRepo struct {
	addOns map[uuid.UUID]*catalog.AddOn
}

func newFakeAddOnRepo() *fakeAddOnRepo {
	return &fakeAddOnRepo{addOns: make(map[uuid.UUID]*catalog.AddOn)}
}

func (r *fakeAddOnRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.AddOn, error) {
	a, ok := r.addOns[id]
	if !ok {
		return nil, domain.NewNotFoundError("AddOn", id.String())
	}
	return a, nil
}

func (r *fakeAddOnRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*catalog.AddOn, error) {
	var result []*catalog.AddOn
	for _, id := range ids {
		if a, ok := r.addOns[id]; ok {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *fakeAddOnRepo) ListAll(_ context.Context, activeOnly bool) ([]*catalog.AddOn, error) {
	var result []*catalog.AddOn
	for _, a := range r.addOns {
		if activeOnly && !a.Active() {
			continue
		}
		result = append(result, a)
	}
	return result, nil
}

func (r *fakeAddOnRepo) Save(_ context.Context, a *catalog.AddOn) error {
	r.addOns[a.ID()] = a
	return nil
}

func (r *fakeAddOnRepo) Update(_ context.Context, a *catalog.AddOn) error {
	r.addOns[a.ID()] = a
	return nil
}

func cloneEntry(e *timesheet.Entry) *timesheet.Entry {
	return timesheet.ReconstructEntry(
		e.ID(), e.BookingID(), e.DetailerID(),
		e.StartTime(), e.EndTime(), e.Anomalous(), e.CreatedAt(),
	)
}

type fakeEntryRepo struct {
	mu      sync.Mutex
	entries []*timesheet.Entry
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{}
}

func (r *fakeEntryRepo) FindActiveByBookingID(_ context.Context, bookingID uuid.UUID) (*timesheet.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.BookingID() == bookingID && e.IsActive() {
			return cloneEntry(e), nil
		}
	}
	return nil, domain.NewNotFoundError("TimeEntry", bookingID.String())
}

func (r *fakeEntryRepo) FindActiveByDetailerID(_ context.Context, detailerID uuid.UUID) (*timesheet.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.DetailerID() == detailerID && e.IsActive() {
			return cloneEntry(e), nil
		}
	}
	return nil, domain.NewNotFoundError("TimeEntry", detailerID.String())
}

func (r *fakeEntryRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*timesheet.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*timesheet.Entry
	for _, e := range r.entries {
		if e.BookingID() == bookingID {
			result = append(result, cloneEntry(e))
		}
	}
	return result, nil
}

func (r *fakeEntryRepo) FindStartedBetween(_ context.Context, from, to time.Time) ([]*timesheet.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*timesheet.Entry
	for _, e := range r.entries {
		if !e.StartTime().Before(from) && e.StartTime().Before(to) {
			result = append(result, cloneEntry(e))
		}
	}
	return result, nil
}

func (r *fakeEntryRepo) Save(_ context.Context, entry *timesheet.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, cloneEntry(entry))
	return nil
}

func (r *fakeEntryRepo) Update(_ context.Context, entry *timesheet.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.ID() == entry.ID() {
			r.entries[i] = cloneEntry(entry)
			return nil
		}
	}
	return domain.NewNotFoundError("TimeEntry", entry.ID().String())
}

type publishedEvent struct {
	Topic string
	Key   string
	Event events.CloudEvent
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{}
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, event events.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Event: event})
	return nil
}

func (p *fakePublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.Event.Type
	}
	return types
}
