package application

import (
	"context"
	"fmt"
	"time"

	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain"
	bookingDomain "github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/booking"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/timesheet"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EntryDTO is the response representation of a labor span.
type EntryDTO struct {
	ID         uuid.UUID  `json:"id"`
	BookingID  uuid.UUID  `json:"booking_id"`
	DetailerID uuid.UUID  `json:"detailer_id"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	IsActive   bool       `json:"is_active"`
	Anomalous  bool       `json:"anomalous,omitempty"`
}

// TimesheetService is the labor ledger: it records start/stop spans per
// booking and computes elapsed and daily totals. Tracking is
// independent of the booking lifecycle so a detailer can pause and
// resume without the booking leaving in_progress.
type TimesheetService struct {
	entries     timesheet.EntryRepository
	bookingRepo bookingDomain.BookingRepository
	logger      *zap.Logger
	loc         *time.Location

	now func() time.Time
}

// NewTimesheetService creates a new TimesheetService. Daily totals are
// bucketed in the given reporting location.
func NewTimesheetService(
	entries timesheet.EntryRepository,
	bookingRepo bookingDomain.BookingRepository,
	loc *time.Location,
	logger *zap.Logger,
) *TimesheetService {
	if loc == nil {
		loc = time.Local
	}
	return &TimesheetService{
		entries:     entries,
		bookingRepo: bookingRepo,
		logger:      logger,
		loc:         loc,
		now:         time.Now,
	}
}

// Start opens a labor span for a booking. Fails with AlreadyActive if
// the booking already has an open span. The acting detailer has one
// active job at a time: an open span on any other booking is stopped
// implicitly.
func (s *TimesheetService) Start(ctx context.Context, bookingID uuid.UUID) (*EntryDTO, error) {
	bk, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.DetailerID() == nil {
		return nil, domain.NewValidationError("booking has no assigned detailer")
	}
	if bk.Status() != bookingDomain.StatusInProgress {
		return nil, domain.NewValidationError("time tracking requires an in-progress booking")
	}
	detailerID := *bk.DetailerID()

	if _, err := s.entries.FindActiveByBookingID(ctx, bookingID); err == nil {
		return nil, domain.NewAlreadyActiveError(bookingID.String())
	} else if !domain.IsNotFound(err) {
		return nil, err
	}

	// One active job per detailer: close any span left open elsewhere.
	if prev, err := s.entries.FindActiveByDetailerID(ctx, detailerID); err == nil {
		if stopErr := prev.Stop(s.now()); stopErr == nil {
			if err := s.entries.Update(ctx, prev); err != nil {
				return nil, fmt.Errorf("failed to close previous span: %w", err)
			}
			s.logger.Info("implicitly stopped previous active span",
				zap.String("booking_id", prev.BookingID().String()),
				zap.String("detailer_id", detailerID.String()),
			)
		}
	} else if !domain.IsNotFound(err) {
		return nil, err
	}

	entry, err := timesheet.NewEntry(bookingID, detailerID, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.entries.Save(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	result := toEntryDTO(entry)
	return &result, nil
}

// Stop closes the booking's open labor span. Fails with NotActive if
// none is open.
func (s *TimesheetService) Stop(ctx context.Context, bookingID uuid.UUID) (*EntryDTO, error) {
	entry, err := s.entries.FindActiveByBookingID(ctx, bookingID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewNotActiveError(bookingID.String())
		}
		return nil, err
	}

	if err := entry.Stop(s.now()); err != nil {
		return nil, err
	}
	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}
	if entry.Anomalous() {
		s.logger.Warn("labor span clamped to zero (clock skew)",
			zap.String("booking_id", bookingID.String()),
		)
	}

	result := toEntryDTO(entry)
	return &result, nil
}

// Elapsed returns the total labor time recorded for a booking across
// all of its spans, with open spans measured up to now.
func (s *TimesheetService) Elapsed(ctx context.Context, bookingID uuid.UUID) (time.Duration, error) {
	entries, err := s.entries.FindByBookingID(ctx, bookingID)
	if err != nil {
		return 0, err
	}
	now := s.now()
	var total time.Duration
	for _, e := range entries {
		total += e.Elapsed(now)
	}
	return total, nil
}

// Entries returns all labor spans recorded for a booking in start order.
func (s *TimesheetService) Entries(ctx context.Context, bookingID uuid.UUID) ([]EntryDTO, error) {
	entries, err := s.entries.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	return dtos, nil
}

// DailyTotal returns the summed labor time of all spans that started on
// the given calendar date in the reporting timezone, with open spans
// counted up to now.
func (s *TimesheetService) DailyTotal(ctx context.Context, date time.Time) (time.Duration, error) {
	d := date.In(s.loc)
	from := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, 0, 1)

	entries, err := s.entries.FindStartedBetween(ctx, from, to)
	if err != nil {
		return 0, err
	}
	now := s.now()
	var total time.Duration
	for _, e := range entries {
		total += e.Elapsed(now)
	}
	return total, nil
}

// StopIfActive closes an open span without failing when none exists.
// Used by the booking lifecycle when a job completes.
func (s *TimesheetService) StopIfActive(ctx context.Context, bookingID uuid.UUID) {
	if _, err := s.Stop(ctx, bookingID); err != nil && !domain.IsCode(err, domain.CodeNotActive) {
		s.logger.Error("failed to stop tracking on completion",
			zap.String("booking_id", bookingID.String()),
			zap.Error(err),
		)
	}
}

// StartForBooking opens a span without failing when one is already
// open. Used by the booking lifecycle when active work begins.
func (s *TimesheetService) StartForBooking(ctx context.Context, bookingID uuid.UUID) {
	if _, err := s.Start(ctx, bookingID); err != nil && !domain.IsCode(err, domain.CodeAlreadyActive) {
		s.logger.Error("failed to start tracking on work start",
			zap.String("booking_id", bookingID.String()),
			zap.Error(err),
		)
	}
}

func toEntryDTO(e *timesheet.Entry) EntryDTO {
	return EntryDTO{
		ID:         e.ID(),
		BookingID:  e.BookingID(),
		DetailerID: e.DetailerID(),
		StartTime:  e.StartTime(),
		EndTime:    e.EndTime(),
		IsActive:   e.IsActive(),
		Anomalous:  e.Anomalous(),
	}
}
