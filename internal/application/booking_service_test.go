package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain"
	bookingDomain "github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/booking"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/catalog"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type bookingStack struct {
	svc       *BookingService
	timesheet *TimesheetService
	bookings  *fakeBookingRepo
	services  *fakeServiceRepo
	addOns    *fakeAddOnRepo
	entries   *fakeEntryRepo
	publisher *fakePublisher
}

func newBookingStack() *bookingStack {
	bookings := newFakeBookingRepo()
	services := newFakeServiceRepo()
	addOns := newFakeAddOnRepo()
	entries := newFakeEntryRepo()
	publisher := newFakePublisher()
	logger := zap.NewNop()

	timesheet := NewTimesheetService(entries, bookings, time.UTC, logger)
	svc := NewBookingService(bookings, services, addOns, timesheet, publisher, logger)
	return &bookingStack{
		svc:       svc,
		timesheet: timesheet,
		bookings:  bookings,
		services:  services,
		addOns:    addOns,
		entries:   entries,
		publisher: publisher,
	}
}

func seedCatalogService(t *testing.T, repo *fakeServiceRepo, name string, suvPrice int64) *catalog.Service {
	t.Helper()
	svc, err := catalog.NewService(name, catalog.ServiceCategoryDetailing, 0, catalog.PriceTable{
		bookingDomain.VehicleTypeSedan: suvPrice - 500,
		bookingDomain.VehicleTypeSUV:   suvPrice,
		bookingDomain.VehicleTypeTruck: suvPrice + 500,
		bookingDomain.VehicleTypeCoupe: suvPrice - 500,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), svc))
	return svc
}

func createRequest(serviceIDs, addOnIDs []uuid.UUID) CreateBookingRequest {
	return CreateBookingRequest{
		Customer: bookingDomain.CustomerSnapshot{
			Name: "Dana Cole", Phone: "+15550002222", Address: "9 Elm St",
		},
		Vehicle: bookingDomain.VehicleSnapshot{
			VehicleType: bookingDomain.VehicleTypeSUV, Make: "Ford", Model: "Bronco", Year: 2023,
		},
		ServiceIDs:  serviceIDs,
		AddOnIDs:    addOnIDs,
		ScheduledAt: time.Now().Add(48 * time.Hour),
	}
}

func TestCreateBooking_PricesAtSubmission(t *testing.T) {
	stack := newBookingStack()
	wash := seedCatalogService(t, stack.services, "Exterior Wash", 8000)
	clean := seedCatalogService(t, stack.services, "Interior Clean", 4000)
	addOn, err := catalog.NewAddOn("Engine Bay", catalog.AddOnCategoryCleaning, 2500, 0)
	require.NoError(t, err)
	require.NoError(t, stack.addOns.Save(context.Background(), addOn))

	dto, err := stack.svc.CreateBooking(context.Background(),
		createRequest([]uuid.UUID{wash.ID(), clean.ID()}, []uuid.UUID{addOn.ID()}))
	require.NoError(t, err)

	assert.Equal(t, string(bookingDomain.StatusPending), dto.Status)
	assert.Equal(t, "upcoming", dto.Phase)
	assert.Equal(t, int64(14500), dto.TotalPriceCents)
	assert.Equal(t, []uuid.UUID{wash.ID(), clean.ID()}, dto.ServiceIDs)
	assert.Equal(t, []string{events.BookingCreated}, stack.publisher.eventTypes())
}

func TestCreateBooking_OmitsUnavailableServices(t *testing.T) {
	stack := newBookingStack()
	wash := seedCatalogService(t, stack.services, "Exterior Wash", 8000)
	retired := seedCatalogService(t, stack.services, "Retired", 9000)
	retired.SetActive(false)

	dto, err := stack.svc.CreateBooking(context.Background(),
		createRequest([]uuid.UUID{wash.ID(), retired.ID()}, nil))
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{wash.ID()}, dto.ServiceIDs, "unavailable service must not be booked")
	assert.Equal(t, int64(8000), dto.TotalPriceCents)
}

func TestCreateBooking_AllServicesUnavailable(t *testing.T) {
	stack := newBookingStack()
	retired := seedCatalogService(t, stack.services, "Retired", 9000)
	retired.SetActive(false)

	_, err := stack.svc.CreateBooking(context.Background(),
		createRequest([]uuid.UUID{retired.ID(), uuid.New()}, nil))
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
	assert.Empty(t, stack.publisher.eventTypes())
}

func TestTransition_SkippingStageRejected(t *testing.T) {
	stack := newBookingStack()
	bk := seedBooking(t, stack.bookings, bookingDomain.StatusConfirmed, nil)

	_, err := stack.svc.Transition(context.Background(), bk.ID(), bookingDomain.StatusInProgress)
	assert.True(t, domain.IsCode(err, domain.CodeIllegalTransition))

	stored, err := stack.bookings.FindByID(context.Background(), bk.ID())
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusConfirmed, stored.Status())
}

func TestTransition_ToConfirmedRejected(t *testing.T) {
	stack := newBookingStack()
	bk := seedBooking(t, stack.bookings, bookingDomain.StatusPending, nil)

	_, err := stack.svc.Transition(context.Background(), bk.ID(), bookingDomain.StatusConfirmed)
	assert.True(t, domain.IsCode(err, domain.CodeIllegalTransition))
}

func TestTransition_SameStateEmitsNothing(t *testing.T) {
	stack := newBookingStack()
	bk := seedBooking(t, stack.bookings, bookingDomain.StatusEnRoute, nil)
	stored, err := stack.bookings.FindByID(context.Background(), bk.ID())
	require.NoError(t, err)
	versionBefore := stored.Version()

	dto, err := stack.svc.Transition(context.Background(), bk.ID(), bookingDomain.StatusEnRoute)
	require.NoError(t, err)

	assert.Equal(t, string(bookingDomain.StatusEnRoute), dto.Status)
	assert.Equal(t, versionBefore, dto.Version, "no write for a no-op")
	assert.Empty(t, stack.publisher.eventTypes())
}

func TestTransition_EnRoutePublishesStatusEvent(t *testing.T) {
	stack := newBookingStack()
	bk := seedBooking(t, stack.bookings, bookingDomain.StatusConfirmed, nil)

	dto, err := stack.svc.Transition(context.Background(), bk.ID(), bookingDomain.StatusEnRoute)
	require.NoError(t, err)

	assert.Equal(t, "active", dto.Phase)
	assert.NotNil(t, dto.EnRouteAt)
	assert.Equal(t, []string{events.BookingEnRoute}, stack.publisher.eventTypes())
}

func TestTransition_InProgressStartsTimeTracking(t *testing.T) {
	stack := newBookingStack()
	bk := seedBooking(t, stack.bookings, bookingDomain.StatusStarted, nil)

	_, err := stack.svc.Transition(context.Background(), bk.ID(), bookingDomain.StatusInProgress)
	require.NoError(t, err)

	entry, err := stack.entries.FindActiveByBookingID(context.Background(), bk.ID())
	require.NoError(t, err)
	assert.True(t, entry.IsActive())
	assert.Equal(t, []string{events.BookingWorkStarted}, stack.publisher.eventTypes())
}

func TestTransition_CompletedStopsTimeTracking(t *testing.T) {
	stack := newBookingStack()
	bk := seedBooking(t, stack.bookings, bookingDomain.StatusStarted, nil)

	_, err := stack.svc.Transition(context.Background(), bk.ID(), bookingDomain.StatusInProgress)
	require.NoError(t, err)
	dto, err := stack.svc.Transition(context.Background(), bk.ID(), bookingDomain.StatusCompleted)
	require.NoError(t, err)

	assert.Equal(t, "done", dto.Phase)
	assert.NotNil(t, dto.CompletedAt)
	_, err = stack.entries.FindActiveByBookingID(context.Background(), bk.ID())
	assert.True(t, domain.IsNotFound(err), "open span must be closed on completion")
	assert.Equal(t,
		[]string{events.BookingWorkStarted, events.BookingCompleted},
		stack.publisher.eventTypes())
}

func TestTransition_PublisherFailureDoesNotFailTransition(t *testing.T) {
	stack := newBookingStack()
	stack.publisher.err = errors.New("broker unreachable")
	bk := seedBooking(t, stack.bookings, bookingDomain.StatusConfirmed, nil)

	dto, err := stack.svc.Transition(context.Background(), bk.ID(), bookingDomain.StatusEnRoute)
	require.NoError(t, err)
	assert.Equal(t, string(bookingDomain.StatusEnRoute), dto.Status)

	stored, err := stack.bookings.FindByID(context.Background(), bk.ID())
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusEnRoute, stored.Status())
}

func TestCancelBooking_FromInProgress(t *testing.T) {
	stack := newBookingStack()
	bk := seedBooking(t, stack.bookings, bookingDomain.StatusStarted, nil)
	_, err := stack.svc.Transition(context.Background(), bk.ID(), bookingDomain.StatusInProgress)
	require.NoError(t, err)

	dto, err := stack.svc.CancelBooking(context.Background(), bk.ID(), "weather")
	require.NoError(t, err)

	assert.Equal(t, string(bookingDomain.StatusCanceled), dto.Status)
	assert.Equal(t, "weather", dto.CancelNote)
	_, err = stack.entries.FindActiveByBookingID(context.Background(), bk.ID())
	assert.True(t, domain.IsNotFound(err), "open span must be closed on cancellation")
	assert.Contains(t, stack.publisher.eventTypes(), events.BookingCanceled)
}

func TestCancelBooking_CompletedRejected(t *testing.T) {
	stack := newBookingStack()
	bk := seedBooking(t, stack.bookings, bookingDomain.StatusCompleted, nil)

	_, err := stack.svc.CancelBooking(context.Background(), bk.ID(), "too late")
	assert.True(t, domain.IsCode(err, domain.CodeIllegalTransition))
}

func TestCancelBooking_Idempotent(t *testing.T) {
	stack := newBookingStack()
	bk := seedBooking(t, stack.bookings, bookingDomain.StatusPending, nil)

	_, err := stack.svc.CancelBooking(context.Background(), bk.ID(), "first")
	require.NoError(t, err)
	dto, err := stack.svc.CancelBooking(context.Background(), bk.ID(), "second")
	require.NoError(t, err)

	assert.Equal(t, "first", dto.CancelNote)
	assert.Len(t, stack.publisher.eventTypes(), 1, "no second canceled event")
}

func TestGetBookingStats(t *testing.T) {
	stack := newBookingStack()
	seedBooking(t, stack.bookings, bookingDomain.StatusPending, nil)
	seedBooking(t, stack.bookings, bookingDomain.StatusConfirmed, nil)
	seedBooking(t, stack.bookings, bookingDomain.StatusInProgress, nil)
	seedBooking(t, stack.bookings, bookingDomain.StatusCompleted, nil)

	stats, err := stack.svc.GetBookingStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.TotalBookings)
	assert.Equal(t, int64(1), stats.ByStatus["pending"])
	assert.Equal(t, int64(2), stats.ByPhase["upcoming"])
	assert.Equal(t, int64(1), stats.ByPhase["active"])
	assert.Equal(t, int64(1), stats.ByPhase["done"])
}
