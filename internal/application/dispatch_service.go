package application

import (
	"context"
	"time"

	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain"
	bookingDomain "github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/booking"
	detailerDomain "github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/detailer"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// autoAssignRetries bounds optimistic-lock retries when concurrent
// auto-assignments race for the same least-loaded detailer.
const autoAssignRetries = 3

// DispatchService assigns pending bookings to detailers, either by
// explicit choice or by load-balanced auto-assignment. Load is always
// derived from the booking store at evaluation time, never kept as an
// independently mutated counter.
type DispatchService struct {
	bookingRepo  bookingDomain.BookingRepository
	detailerRepo detailerDomain.DetailerRepository
	producer     events.Publisher
	logger       *zap.Logger
}

// NewDispatchService creates a new DispatchService.
func NewDispatchService(
	bookingRepo bookingDomain.BookingRepository,
	detailerRepo detailerDomain.DetailerRepository,
	producer events.Publisher,
	logger *zap.Logger,
) *DispatchService {
	return &DispatchService{
		bookingRepo:  bookingRepo,
		detailerRepo: detailerRepo,
		producer:     producer,
		logger:       logger,
	}
}

// Assign dispatches a pending booking to the given detailer, driving
// the pending -> confirmed transition. Fails with DetailerUnavailable
// if the detailer is inactive.
func (s *DispatchService) Assign(ctx context.Context, bookingID, detailerID uuid.UUID) (*BookingDTO, error) {
	d, err := s.detailerRepo.FindByID(ctx, detailerID)
	if err != nil {
		return nil, err
	}
	if !d.Active() {
		return nil, domain.NewDetailerUnavailableError(detailerID.String())
	}

	bk, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Re-assigning the same detailer is a no-op.
	if bk.Status() == bookingDomain.StatusConfirmed && bk.DetailerID() != nil && *bk.DetailerID() == detailerID {
		result := toBookingDTO(bk)
		return &result, nil
	}

	if err := bk.Assign(detailerID); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookingRepo.Update(ctx, bk); err != nil {
		return nil, err
	}

	evt := events.BookingAssignedEvent{
		BookingID:        bk.ID(),
		ConfirmationCode: bk.ConfirmationCode(),
		DetailerID:       detailerID,
		DetailerName:     d.Name(),
		CustomerPhone:    bk.Customer().Phone,
		ScheduledAt:      bk.ScheduledAt(),
		OccurredAt:       time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingAssigned, bk.ID().String(), evt)

	s.logger.Info("booking assigned",
		zap.String("booking_id", bookingID.String()),
		zap.String("detailer_id", detailerID.String()),
	)

	result := toBookingDTO(bk)
	return &result, nil
}

// AutoAssign dispatches a pending booking to the active detailer with
// the fewest active bookings, ties broken by lowest detailer ID. Fails
// with NoDetailerAvailable when the active roster is empty. A racing
// assignment surfaces as an optimistic-lock conflict and the selection
// is retried against fresh load counts.
func (s *DispatchService) AutoAssign(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	var lastErr error
	for attempt := 0; attempt < autoAssignRetries; attempt++ {
		detailerID, err := s.pickLeastLoaded(ctx)
		if err != nil {
			return nil, err
		}

		dto, err := s.Assign(ctx, bookingID, detailerID)
		if err == nil {
			return dto, nil
		}
		if !domain.IsCode(err, domain.CodeConflict) {
			return nil, err
		}
		lastErr = err
		s.logger.Warn("auto-assign conflict, retrying",
			zap.String("booking_id", bookingID.String()),
			zap.Int("attempt", attempt+1),
		)
	}
	return nil, lastErr
}

// pickLeastLoaded selects the active detailer with the fewest active
// bookings. ListActive returns the roster ordered by ID, so keeping
// the first strict minimum yields the deterministic tie-break.
func (s *DispatchService) pickLeastLoaded(ctx context.Context) (uuid.UUID, error) {
	roster, err := s.detailerRepo.ListActive(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if len(roster) == 0 {
		return uuid.Nil, domain.NewNoDetailerAvailableError()
	}

	loads, err := s.bookingRepo.CountActiveByDetailer(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	best := roster[0].ID()
	bestLoad := loads[best]
	for _, d := range roster[1:] {
		if load := loads[d.ID()]; load < bestLoad {
			best = d.ID()
			bestLoad = load
		}
	}
	return best, nil
}

func (s *DispatchService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
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
