package cron

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Job represents a scheduled job
type Job struct {
	Name     string
	Interval time.Duration
	// Timeout bounds a single run. Zero means the run is only bounded by Stop.
	Timeout time.Duration
	Fn      func(ctx context.Context) error
}

// Scheduler manages scheduled jobs. Each job runs in its own goroutine, so a slow
// run delays the next run of that job instead of overlapping it.
type Scheduler struct {
	jobs   []Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewScheduler creates a new cron scheduler
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make([]Job, 0),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob adds a job to the scheduler
func (s *Scheduler) AddJob(name string, interval, timeout time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, Job{
		Name:     name,
		Interval: interval,
		Timeout:  timeout,
		Fn:       fn,
	})
	slog.Info("Cron job registered", "name", name, "interval", interval, "timeout", timeout)
}

// Jobs returns a copy of the registered jobs.
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Job(nil), s.jobs...)
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(job)
	}

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop gracefully stops all scheduled jobs, cancelling runs in progress.
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

// runJob runs a single job on its schedule
func (s *Scheduler) runJob(job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	// Run immediately on start
	s.executeJob(s.ctx, job)

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Cron job stopping", "name", job.Name)
			return
		case <-ticker.C:
			s.executeJob(s.ctx, job)
		}
	}
}

// executeJob executes a job within its time budget and logs results
func (s *Scheduler) executeJob(parent context.Context, job Job) error {
	ctx := parent
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, job.Timeout)
		defer cancel()
	}

	start := time.Now()
	slog.Debug("Cron job starting", "name", job.Name)

	err := job.Fn(ctx)
	switch {
	case err == nil:
		slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		slog.Error("Cron job exceeded its time budget", "name", job.Name, "timeout", job.Timeout, "error", err, "duration", time.Since(start))
	default:
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
	}
	return err
}

// RunOnce runs all jobs once, each within its time budget, and returns their errors joined.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, job := range s.jobs {
		if err := s.executeJob(ctx, job); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
