package reports

import (
	"context"
	"time"

	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/application"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler logs a daily labor summary shortly after midnight in the
// reporting timezone, covering the previous calendar day.
type Scheduler struct {
	timesheet *application.TimesheetService
	logger    *zap.Logger
	loc       *time.Location
	cron      *cron.Cron
}

// NewScheduler creates a Scheduler bound to the reporting location.
func NewScheduler(timesheet *application.TimesheetService, loc *time.Location, logger *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		timesheet: timesheet,
		logger:    logger,
		loc:       loc,
		cron:      cron.New(cron.WithLocation(loc)),
	}
}

// Start begins the daily schedule. Runs at 00:05 local reporting time.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("5 0 * * *", s.reportYesterday); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("labor report scheduler started")
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) reportYesterday() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	date := time.Now().In(s.loc).AddDate(0, 0, -1)
	total, err := s.timesheet.DailyTotal(ctx, date)
	if err != nil {
		s.logger.Error("daily labor report failed",
			zap.String("date", date.Format("2006-01-02")),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("daily labor report",
		zap.String("date", date.Format("2006-01-02")),
		zap.Int64("total_seconds", int64(total/time.Second)),
	)
}
