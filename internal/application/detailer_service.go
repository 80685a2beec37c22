package application

import (
	"context"
	"fmt"
	"time"

	bookingDomain "github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/booking"
	detailerDomain "github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/detailer"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DetailerRequest is the request DTO for creating or updating a detailer.
type DetailerRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
	Email string `json:"email"`
}

// DetailerDTO is the response representation of a detailer. ActiveJobs
// is derived from the booking store at read time.
type DetailerDTO struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email,omitempty"`
	Active     bool      `json:"active"`
	ActiveJobs int64     `json:"active_jobs"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DetailerService implements roster management use cases.
type DetailerService struct {
	repo        detailerDomain.DetailerRepository
	bookingRepo bookingDomain.BookingRepository
	logger      *zap.Logger
}

// NewDetailerService creates a new DetailerService.
func NewDetailerService(
	repo detailerDomain.DetailerRepository,
	bookingRepo bookingDomain.BookingRepository,
	logger *zap.Logger,
) *DetailerService {
	return &DetailerService{repo: repo, bookingRepo: bookingRepo, logger: logger}
}

// CreateDetailer adds a new detailer to the roster.
func (s *DetailerService) CreateDetailer(ctx context.Context, req DetailerRequest) (*DetailerDTO, error) {
	d, err := detailerDomain.NewDetailer(req.Name, req.Phone, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, d); err != nil {
		s.logger.Error("failed to create detailer", zap.Error(err))
		return nil, fmt.Errorf("failed to create detailer: %w", err)
	}
	result := toDetailerDTO(d, 0)
	return &result, nil
}

// UpdateDetailer updates a detailer's contact details.
func (s *DetailerService) UpdateDetailer(ctx context.Context, id uuid.UUID, req DetailerRequest) (*DetailerDTO, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.Update(req.Name, req.Phone, req.Email); err != nil {
		return nil, err
	}
	d.IncrementVersion()
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to update detailer: %w", err)
	}
	result := toDetailerDTO(d, s.loadFor(ctx, d.ID()))
	return &result, nil
}

// SetDetailerActive toggles a detailer's assignability.
func (s *DetailerService) SetDetailerActive(ctx context.Context, id uuid.UUID, active bool) (*DetailerDTO, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.SetActive(active)
	d.IncrementVersion()
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to update detailer: %w", err)
	}
	result := toDetailerDTO(d, s.loadFor(ctx, d.ID()))
	return &result, nil
}

// ListDetailers returns the roster with derived active-job counts.
func (s *DetailerService) ListDetailers(ctx context.Context, activeOnly bool) ([]DetailerDTO, error) {
	var (
		roster []*detailerDomain.Detailer
		err    error
	)
	if activeOnly {
		roster, err = s.repo.ListActive(ctx)
	} else {
		roster, err = s.repo.ListAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list detailers: %w", err)
	}

	loads, err := s.bookingRepo.CountActiveByDetailer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to derive detailer loads: %w", err)
	}

	dtos := make([]DetailerDTO, len(roster))
	for i, d := range roster {
		dtos[i] = toDetailerDTO(d, loads[d.ID()])
	}
	return dtos, nil
}

func (s *DetailerService) loadFor(ctx context.Context, id uuid.UUID) int64 {
	loads, err := s.bookingRepo.CountActiveByDetailer(ctx)
	if err != nil {
		s.logger.Warn("failed to derive detailer load", zap.Error(err))
		return 0
	}
	return loads[id]
}

func toDetailerDTO(d *detailerDomain.Detailer, activeJobs int64) DetailerDTO {
	return DetailerDTO{
		ID:         d.ID(),
		Name:       d.Name(),
		Phone:      d.Phone(),
		Email:      d.Email(),
		Active:     d.Active(),
		ActiveJobs: activeJobs,
		CreatedAt:  d.CreatedAt(),
		UpdatedAt:  d.UpdatedAt(),
	}
}
