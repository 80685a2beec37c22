package application

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain"
	bookingDomain "github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/booking"
	detailerDomain "github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/detailer"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedBooking(t *testing.T, repo *fakeBookingRepo, status bookingDomain.BookingStatus, detailerID *uuid.UUID) *bookingDomain.Booking {
	t.Helper()
	bk, err := bookingDomain.NewBooking(
		bookingDomain.CustomerSnapshot{Name: "Test Customer", Phone: "+15550009999", Address: "1 Test Ln"},
		bookingDomain.VehicleSnapshot{VehicleType: bookingDomain.VehicleTypeSedan, Make: "Honda", Model: "Civic", Year: 2021},
		[]uuid.UUID{uuid.New()},
		nil,
		9900,
		time.Now().Add(24*time.Hour),
		"",
	)
	require.NoError(t, err)

	if status != bookingDomain.StatusPending {
		id := uuid.New()
		if detailerID != nil {
			id = *detailerID
		}
		require.NoError(t, bk.Assign(id))
		if status == bookingDomain.StatusCanceled {
			require.NoError(t, bk.Cancel("seeded"))
		} else {
			for _, step := range []bookingDomain.BookingStatus{
				bookingDomain.StatusEnRoute, bookingDomain.StatusStarted,
				bookingDomain.StatusInProgress, bookingDomain.StatusCompleted,
			} {
				if bk.Status() == status {
					break
				}
				require.NoError(t, bk.TransitionTo(step))
			}
		}
	}
	require.NoError(t, repo.Save(context.Background(), bk))
	return bk
}

func seedDetailer(t *testing.T, repo *fakeDetailerRepo, name string, active bool) *detailerDomain.Detailer {
	t.Helper()
	d, err := detailerDomain.NewDetailer(name, "+15550100200", "")
	require.NoError(t, err)
	d.SetActive(active)
	require.NoError(t, repo.Save(context.Background(), d))
	return d
}

func newDispatchStack() (*DispatchService, *fakeBookingRepo, *fakeDetailerRepo, *fakePublisher) {
	bookings := newFakeBookingRepo()
	detailers := newFakeDetailerRepo()
	publisher := newFakePublisher()
	svc := NewDispatchService(bookings, detailers, publisher, zap.NewNop())
	return svc, bookings, detailers, publisher
}

func TestAssign_ConfirmsPendingBooking(t *testing.T) {
	svc, bookings, detailers, publisher := newDispatchStack()
	d := seedDetailer(t, detailers, "Alex", true)
	bk := seedBooking(t, bookings, bookingDomain.StatusPending, nil)

	dto, err := svc.Assign(context.Background(), bk.ID(), d.ID())
	require.NoError(t, err)

	assert.Equal(t, string(bookingDomain.StatusConfirmed), dto.Status)
	require.NotNil(t, dto.DetailerID)
	assert.Equal(t, d.ID(), *dto.DetailerID)
	assert.Equal(t, []string{events.BookingAssigned}, publisher.eventTypes())

	stored, err := bookings.FindByID(context.Background(), bk.ID())
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusConfirmed, stored.Status())
}

func TestAssign_InactiveDetailerRejected(t *testing.T) {
	svc, bookings, detailers, publisher := newDispatchStack()
	d := seedDetailer(t, detailers, "Benched", false)
	bk := seedBooking(t, bookings, bookingDomain.StatusPending, nil)

	_, err := svc.Assign(context.Background(), bk.ID(), d.ID())
	assert.True(t, domain.IsCode(err, domain.CodeDetailerUnavailable))
	assert.Empty(t, publisher.eventTypes())
}

func TestAssign_SameDetailerIsNoOp(t *testing.T) {
	svc, bookings, detailers, publisher := newDispatchStack()
	d := seedDetailer(t, detailers, "Alex", true)
	bk := seedBooking(t, bookings, bookingDomain.StatusPending, nil)

	_, err := svc.Assign(context.Background(), bk.ID(), d.ID())
	require.NoError(t, err)

	dto, err := svc.Assign(context.Background(), bk.ID(), d.ID())
	require.NoError(t, err)
	assert.Equal(t, string(bookingDomain.StatusConfirmed), dto.Status)
	assert.Len(t, publisher.eventTypes(), 1, "no second event for a repeated assignment")
}

func TestAssign_ReassignConfirmedToOtherDetailerRejected(t *testing.T) {
	svc, bookings, detailers, publisher := newDispatchStack()
	first := seedDetailer(t, detailers, "First", true)
	second := seedDetailer(t, detailers, "Second", true)
	bk := seedBooking(t, bookings, bookingDomain.StatusPending, nil)

	_, err := svc.Assign(context.Background(), bk.ID(), first.ID())
	require.NoError(t, err)

	_, err = svc.Assign(context.Background(), bk.ID(), second.ID())
	assert.True(t, domain.IsCode(err, domain.CodeIllegalTransition))

	// The rejected call must leave no trace: no event naming the new
	// detailer and no change to the stored booking.
	assert.Equal(t, []string{events.BookingAssigned}, publisher.eventTypes())

	stored, err := bookings.FindByID(context.Background(), bk.ID())
	require.NoError(t, err)
	assert.Equal(t, first.ID(), *stored.DetailerID())
	assert.Equal(t, int64(2), stored.Version(), "rejected reassignment must not bump the version")
}

func TestAutoAssign_PicksLeastLoaded(t *testing.T) {
	svc, bookings, detailers, _ := newDispatchStack()
	idle := seedDetailer(t, detailers, "Idle", true)
	busy := seedDetailer(t, detailers, "Busy", true)
	busyID := busy.ID()

	seedBooking(t, bookings, bookingDomain.StatusConfirmed, &busyID)
	seedBooking(t, bookings, bookingDomain.StatusInProgress, &busyID)
	pending := seedBooking(t, bookings, bookingDomain.StatusPending, nil)

	dto, err := svc.AutoAssign(context.Background(), pending.ID())
	require.NoError(t, err)
	require.NotNil(t, dto.DetailerID)
	assert.Equal(t, idle.ID(), *dto.DetailerID)
}

func TestAutoAssign_TerminalBookingsDoNotCount(t *testing.T) {
	svc, bookings, detailers, _ := newDispatchStack()
	a := seedDetailer(t, detailers, "A", true)
	b := seedDetailer(t, detailers, "B", true)
	aID, bID := a.ID(), b.ID()

	// A's history is all terminal, B has one live job.
	seedBooking(t, bookings, bookingDomain.StatusCompleted, &aID)
	seedBooking(t, bookings, bookingDomain.StatusCanceled, &aID)
	seedBooking(t, bookings, bookingDomain.StatusConfirmed, &bID)
	pending := seedBooking(t, bookings, bookingDomain.StatusPending, nil)

	dto, err := svc.AutoAssign(context.Background(), pending.ID())
	require.NoError(t, err)
	assert.Equal(t, a.ID(), *dto.DetailerID)
}

func TestAutoAssign_TieBreaksByLowestID(t *testing.T) {
	svc, bookings, detailers, _ := newDispatchStack()
	d1 := seedDetailer(t, detailers, "One", true)
	d2 := seedDetailer(t, detailers, "Two", true)
	pending := seedBooking(t, bookings, bookingDomain.StatusPending, nil)

	want := d1.ID()
	other := d2.ID()
	if bytes.Compare(other[:], want[:]) < 0 {
		want = other
	}

	dto, err := svc.AutoAssign(context.Background(), pending.ID())
	require.NoError(t, err)
	assert.Equal(t, want, *dto.DetailerID)
}

func TestAutoAssign_EmptyRoster(t *testing.T) {
	svc, bookings, detailers, _ := newDispatchStack()
	seedDetailer(t, detailers, "Inactive", false)
	pending := seedBooking(t, bookings, bookingDomain.StatusPending, nil)

	_, err := svc.AutoAssign(context.Background(), pending.ID())
	assert.True(t, domain.IsCode(err, domain.CodeNoDetailerAvailable))
}

func TestAutoAssign_RetriesOnConflict(t *testing.T) {
	svc, bookings, detailers, _ := newDispatchStack()
	seedDetailer(t, detailers, "Alex", true)
	pending := seedBooking(t, bookings, bookingDomain.StatusPending, nil)

	bookings.failConflicts = 2
	dto, err := svc.AutoAssign(context.Background(), pending.ID())
	require.NoError(t, err)
	assert.Equal(t, string(bookingDomain.StatusConfirmed), dto.Status)
}

func TestAutoAssign_GivesUpAfterRetries(t *testing.T) {
	svc, bookings, detailers, _ := newDispatchStack()
	seedDetailer(t, detailers, "Alex", true)
	pending := seedBooking(t, bookings, bookingDomain.StatusPending, nil)

	bookings.failConflicts = autoAssignRetries
	_, err := svc.AutoAssign(context.Background(), pending.ID())
	assert.True(t, domain.IsCode(err, domain.CodeConflict))
}

func TestAutoAssign_DistributesEvenly(t *testing.T) {
	svc, bookings, detailers, _ := newDispatchStack()
	for _, name := range []string{"A", "B", "C"} {
		seedDetailer(t, detailers, name, true)
	}

	for i := 0; i < 6; i++ {
		pending := seedBooking(t, bookings, bookingDomain.StatusPending, nil)
		_, err := svc.AutoAssign(context.Background(), pending.ID())
		require.NoError(t, err)
	}

	loads, err := bookings.CountActiveByDetailer(context.Background())
	require.NoError(t, err)
	require.Len(t, loads, 3)
	for id, load := range loads {
		assert.Equal(t, int64(2), load, "detailer %s", id)
	}
}
