package application

import (
	"context"
	"fmt"
	"time"

	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain"
	bookingDomain "github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/booking"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/catalog"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const eventSource = "service-dispatch"

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	Customer    bookingDomain.CustomerSnapshot `json:"customer" binding:"required"`
	Vehicle     bookingDomain.VehicleSnapshot  `json:"vehicle" binding:"required"`
	ServiceIDs  []uuid.UUID                    `json:"service_ids" binding:"required"`
	AddOnIDs    []uuid.UUID                    `json:"add_on_ids"`
	ScheduledAt time.Time                      `json:"scheduled_at" binding:"required"`
	Notes       string                         `json:"notes"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID               uuid.UUID                      `json:"id"`
	ConfirmationCode string                         `json:"confirmation_code"`
	Customer         bookingDomain.CustomerSnapshot `json:"customer"`
	Vehicle          bookingDomain.VehicleSnapshot  `json:"vehicle"`
	ServiceIDs       []uuid.UUID                    `json:"service_ids"`
	AddOnIDs         []uuid.UUID                    `json:"add_on_ids,omitempty"`
	ScheduledAt      time.Time                      `json:"scheduled_at"`
	Status           string                         `json:"status"`
	Phase            string                         `json:"phase"`
	DetailerID       *uuid.UUID                     `json:"detailer_id,omitempty"`
	TotalPriceCents  int64                          `json:"total_price_cents"`
	EnRouteAt        *time.Time                     `json:"en_route_at,omitempty"`
	StartedAt        *time.Time                     `json:"started_at,omitempty"`
	CompletedAt      *time.Time                     `json:"completed_at,omitempty"`
	CanceledAt       *time.Time                     `json:"canceled_at,omitempty"`
	CancelNote       string                         `json:"cancel_note,omitempty"`
	Notes            string                         `json:"notes,omitempty"`
	Version          int64                          `json:"version"`
	CreatedAt        time.Time                      `json:"created_at"`
	UpdatedAt        time.Time                      `json:"updated_at"`
}

// BookingService orchestrates the booking lifecycle: creation with
// submission-time pricing, forward status transitions, and cancellation.
type BookingService struct {
	repo      bookingDomain.BookingRepository
	services  catalog.ServiceRepository
	addOns    catalog.AddOnRepository
	timesheet *TimesheetService
	producer  events.Publisher
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	services catalog.ServiceRepository,
	addOns catalog.AddOnRepository,
	timesheet *TimesheetService,
	producer events.Publisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		services:  services,
		addOns:    addOns,
		timesheet: timesheet,
		producer:  producer,
		logger:    logger,
	}
}

// CreateBooking prices and persists a new booking. A request whose
// services all priced out (inactive or unpriced for the vehicle type)
// is invalid: a booking must carry at least one priced service.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingDTO, error) {
	svcs, err := s.services.FindByIDs(ctx, req.ServiceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load services: %w", err)
	}
	adds, err := s.addOns.FindByIDs(ctx, req.AddOnIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load add-ons: %w", err)
	}

	quote, err := catalog.ComputeQuote(req.Vehicle.VehicleType, svcs, adds)
	if err != nil {
		return nil, err
	}
	if len(quote.Services) == 0 {
		return nil, domain.NewValidationError("no requested service is available for this vehicle type")
	}

	// Snapshot only the services that actually priced; unavailable
	// items were quoted out, not booked at zero.
	serviceIDs := make([]uuid.UUID, len(quote.Services))
	for i, line := range quote.Services {
		serviceIDs[i] = line.ID
	}
	addOnIDs := make([]uuid.UUID, len(quote.AddOns))
	for i, line := range quote.AddOns {
		addOnIDs[i] = line.ID
	}

	bk, err := bookingDomain.NewBooking(
		req.Customer,
		req.Vehicle,
		serviceIDs,
		addOnIDs,
		quote.TotalCents,
		req.ScheduledAt,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	evt := events.BookingCreatedEvent{
		BookingID:        bk.ID(),
		ConfirmationCode: bk.ConfirmationCode(),
		CustomerName:     bk.Customer().Name,
		CustomerPhone:    bk.Customer().Phone,
		VehicleType:      bk.Vehicle().VehicleType.String(),
		TotalPriceCents:  bk.TotalPriceCents(),
		ScheduledAt:      bk.ScheduledAt(),
		OccurredAt:       time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingCreated, bk.ID().String(), evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// Transition drives a booking one step forward along the lifecycle.
// Requesting the current state is a no-op that emits nothing.
// Confirmed is rejected here (assignment is the only path in) and
// canceled goes through CancelBooking.
func (s *BookingService) Transition(ctx context.Context, bookingID uuid.UUID, target bookingDomain.BookingStatus) (*BookingDTO, error) {
	if !target.IsValid() {
		return nil, domain.NewValidationError("invalid target status: " + string(target))
	}

	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if bk.Status() == target {
		result := toBookingDTO(bk)
		return &result, nil
	}

	if err := bk.TransitionTo(target); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	switch target {
	case bookingDomain.StatusEnRoute:
		s.publishStatus(ctx, bk, events.BookingEnRoute)
	case bookingDomain.StatusStarted:
		s.publishStatus(ctx, bk, events.BookingStarted)
	case bookingDomain.StatusInProgress:
		s.timesheet.StartForBooking(ctx, bk.ID())
		s.publishStatus(ctx, bk, events.BookingWorkStarted)
	case bookingDomain.StatusCompleted:
		s.timesheet.StopIfActive(ctx, bk.ID())
		s.publishCompleted(ctx, bk)
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// CancelBooking cancels a booking that is not yet in a terminal state.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID uuid.UUID, reason string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if bk.Status() == bookingDomain.StatusCanceled {
		result := toBookingDTO(bk)
		return &result, nil
	}

	if err := bk.Cancel(reason); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.timesheet.StopIfActive(ctx, bk.ID())

	evt := events.BookingCanceledEvent{
		BookingID:        bk.ID(),
		ConfirmationCode: bk.ConfirmationCode(),
		CustomerPhone:    bk.Customer().Phone,
		Reason:           reason,
		OccurredAt:       time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingCanceled, bk.ID().String(), evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetBookingByCode retrieves a single booking by confirmation code.
func (s *BookingService) GetBookingByCode(ctx context.Context, code string) (*BookingDTO, error) {
	bk, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetDetailerBookings retrieves paginated bookings for a specific detailer.
func (s *BookingService) GetDetailerBookings(ctx context.Context, detailerID uuid.UUID, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.FindByDetailerID(ctx, detailerID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toBookingDTOs(bookings), total, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
	ByPhase       map[string]int64 `json:"by_phase"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	byPhase := make(map[string]int64)
	for status, c := range counts {
		total += c
		if st, err := bookingDomain.ParseBookingStatus(status); err == nil {
			byPhase[st.Phase()] += c
		}
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
		ByPhase:       byPhase,
	}, nil
}

// --- Helpers ---

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:               bk.ID(),
		ConfirmationCode: bk.ConfirmationCode(),
		Customer:         bk.Customer(),
		Vehicle:          bk.Vehicle(),
		ServiceIDs:       bk.ServiceIDs(),
		AddOnIDs:         bk.AddOnIDs(),
		ScheduledAt:      bk.ScheduledAt(),
		Status:           string(bk.Status()),
		Phase:            bk.Status().Phase(),
		DetailerID:       bk.DetailerID(),
		TotalPriceCents:  bk.TotalPriceCents(),
		EnRouteAt:        bk.EnRouteAt(),
		StartedAt:        bk.StartedAt(),
		CompletedAt:      bk.CompletedAt(),
		CanceledAt:       bk.CanceledAt(),
		CancelNote:       bk.CancelNote(),
		Notes:            bk.Notes(),
		Version:          bk.Version(),
		CreatedAt:        bk.CreatedAt(),
		UpdatedAt:        bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

func (s *BookingService) publishStatus(ctx context.Context, bk *bookingDomain.Booking, eventType string) {
	evt := events.BookingStatusEvent{
		BookingID:        bk.ID(),
		ConfirmationCode: bk.ConfirmationCode(),
		Status:           string(bk.Status()),
		CustomerPhone:    bk.Customer().Phone,
		OccurredAt:       time.Now().UTC(),
	}
	s.publishEvent(ctx, eventType, bk.ID().String(), evt)
}

func (s *BookingService) publishCompleted(ctx context.Context, bk *bookingDomain.Booking) {
	var detailerID uuid.UUID
	if bk.DetailerID() != nil {
		detailerID = *bk.DetailerID()
	}
	evt := events.BookingCompletedEvent{
		BookingID:        bk.ID(),
		ConfirmationCode: bk.ConfirmationCode(),
		DetailerID:       detailerID,
		CustomerPhone:    bk.Customer().Phone,
		TotalPriceCents:  bk.TotalPriceCents(),
		CompletedAt:      *bk.CompletedAt(),
		OccurredAt:       time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingCompleted, bk.ID().String(), evt)
}

// publishEvent is fire-and-forget: a bus failure is logged and
// swallowed so a transition never rolls back on notification trouble.
func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	cloudEvent, err := events.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
