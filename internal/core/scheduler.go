package core

// scheduler.go runs the batch jobs on cron schedules.
//
// Two jobs exist: form sync and attendance recalculation. Each job goes
// through the Service, so it waits on the write gate like any request. A
// failed run is logged and the next tick tries again.

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// ScheduleConfig holds the cron specs of the batch jobs.
// An empty spec disables that job.
type ScheduleConfig struct {
	SyncCron        string // e.g. "*/5 * * * *"
	RecalculateCron string // e.g. "0 18 * * 1-5"
	RunOnStart      bool   // Run every enabled job once immediately
}

// Scheduler wraps a cron runner bound to a Service.
type Scheduler struct {
	svc  *Service
	cron *cron.Cron
	jobs []func(context.Context)
}

// NewScheduler registers the configured jobs. It returns an error for an
// invalid cron spec.
func NewScheduler(ctx context.Context, svc *Service, cfg ScheduleConfig) (*Scheduler, error) {
	s := &Scheduler{svc: svc, cron: cron.New()}

	add := func(spec string, job func(context.Context)) error {
		if spec == "" {
			return nil
		}
		if _, err := s.cron.AddFunc(spec, func() { job(ctx) }); err != nil {
			return newError(ErrBadArgument, "cron spec %q: %v", spec, err)
		}
		s.jobs = append(s.jobs, job)
		return nil
	}

	if err := add(cfg.SyncCron, s.runSync); err != nil {
		return nil, err
	}
	if err := add(cfg.RecalculateCron, s.runRecalculate); err != nil {
		return nil, err
	}

	if cfg.RunOnStart {
		for _, job := range s.jobs {
			job(ctx)
		}
	}
	return s, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	slog.Info("scheduler started", "jobs", len(s.jobs))
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running job up to ctx's deadline.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		slog.Info("scheduler stopped")
	case <-ctx.Done():
		slog.Warn("scheduler stop timed out with a job still running")
	}
}

// JobCount returns the number of enabled jobs.
func (s *Scheduler) JobCount() int {
	return len(s.jobs)
}

func (s *Scheduler) runSync(ctx context.Context) {
	start := time.Now()
	res, err := s.svc.SyncDataFromForms(ctx)
	if err != nil {
		slog.Error("scheduled form sync failed", "error", err, "code", MapError(err).Code)
		return
	}
	slog.Debug("scheduled form sync done",
		"created", res.Total,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (s *Scheduler) runRecalculate(ctx context.Context) {
	start := time.Now()
	res, err := s.svc.RecalculateAttendance(ctx)
	if err != nil {
		slog.Error("scheduled attendance recalculation failed", "error", err, "code", MapError(err).Code)
		return
	}
	slog.Debug("scheduled attendance recalculation done",
		"changes", res.Changes,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
