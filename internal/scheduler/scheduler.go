// Package scheduler runs the periodic database maintenance job.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"leadchat/internal/config"
	"leadchat/internal/database"
)

// Scheduler manages the background maintenance job using gocron.
type Scheduler struct {
	scheduler gocron.Scheduler
	cfg       config.SchedulerConfig
	store     database.Store
	log       *slog.Logger
}

// New creates a scheduler over the primary store.
func New(cfg config.SchedulerConfig, store database.Store, log *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		cfg:       cfg,
		store:     store,
		log:       log.With("component", "scheduler"),
	}, nil
}

// Run schedules the maintenance job and blocks until ctx is cancelled, then
// shuts the scheduler down waiting for a running job to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.cfg.MaintenanceEnabled {
		s.log.Info("Database maintenance disabled, scheduler idle")
		<-ctx.Done()
		return nil
	}

	_, err := s.scheduler.NewJob(
		gocron.CronJob(s.cfg.MaintenanceCron, false),
		gocron.NewTask(s.runMaintenance, ctx),
		gocron.WithName("db_maintenance"),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule maintenance job: %w", err)
	}

	s.scheduler.Start()
	s.log.Info("Scheduler started", "maintenance_cron", s.cfg.MaintenanceCron)

	<-ctx.Done()

	s.log.Debug("Stopping scheduler")
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown scheduler: %w", err)
	}
	return nil
}

// runMaintenance compacts the SQLite database. Failures are logged and the
// job retries on its next scheduled run.
func (s *Scheduler) runMaintenance(ctx context.Context) {
	s.log.InfoContext(ctx, "Starting scheduled database maintenance")
	start := time.Now()

	if err := s.store.RunMaintenance(ctx); err != nil {
		s.log.ErrorContext(ctx, "Database maintenance failed",
			"error", err, "duration", time.Since(start))
		return
	}

	s.log.InfoContext(ctx, "Database maintenance completed", "duration", time.Since(start))
}
