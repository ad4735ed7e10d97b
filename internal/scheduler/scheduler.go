package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"AShareLab/internal/domain/models"
	"AShareLab/internal/usecase"
	"AShareLab/pkg/config"
	"AShareLab/pkg/logger"
	"AShareLab/pkg/util"
)

// ReportScheduler runs the three daily report slots on cron schedules in the
// configured market timezone.
type ReportScheduler struct {
	cron    *cron.Cron
	reports *usecase.ReportUseCase
	log     *logger.Logger
}

// New builds the scheduler from config. Returns nil when disabled.
func New(cfg *config.Config, reports *usecase.ReportUseCase, log *logger.Logger) (*ReportScheduler, error) {
	sc := cfg.Reports.Scheduler
	if !sc.Enabled {
		return nil, nil
	}

	tz := sc.Timezone
	if tz == "" {
		tz = "Asia/Shanghai"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("scheduler timezone %q: %w", tz, err)
	}

	s := &ReportScheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		reports: reports,
		log:     log,
	}

	slots := []struct {
		spec string
		typ  models.ReportType
	}{
		{orDefault(sc.Morning, "30 8 * * *"), models.ReportMorning},
		{orDefault(sc.Noon, "30 12 * * *"), models.ReportNoon},
		{orDefault(sc.Evening, "0 18 * * *"), models.ReportEvening},
	}
	for _, slot := range slots {
		typ := slot.typ
		if _, err := s.cron.AddFunc(slot.spec, func() { s.run(typ) }); err != nil {
			return nil, fmt.Errorf("schedule %s report (%q): %w", typ, slot.spec, err)
		}
	}
	return s, nil
}

func orDefault(spec, def string) string {
	if spec == "" {
		return def
	}
	return spec
}

// Start launches the cron loop.
func (s *ReportScheduler) Start() {
	s.cron.Start()
	s.log.Info("report scheduler started", logger.Int("entries", len(s.cron.Entries())))
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *ReportScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("report scheduler stopped")
}

func (s *ReportScheduler) run(t models.ReportType) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if _, err := s.reports.Generate(ctx, t, util.DateDash(0)); err != nil {
		s.log.Error("scheduled report failed", logger.String("type", string(t)), logger.Error(err))
	}
}
