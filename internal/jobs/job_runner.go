package jobs

import (
	"context"
	"fmt"
	"time"

	"costume-rental-backend/internal/config"
	"costume-rental-backend/internal/logger"
	"costume-rental-backend/internal/metrics"
	"costume-rental-backend/internal/service"

	"github.com/google/uuid"
)

// Job names, shared by the scheduler, the run-once CLI and metrics labels.
const (
	JobMarkOverdueRentals = "mark-overdue-rentals"
	JobRefreshPenaltyRate = "refresh-penalty-rate"
)

// jobTimeout bounds a single scheduled execution.
const jobTimeout = 5 * time.Minute

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Sweeper service.OverdueSweeper
	Penalty *service.PenaltyConfig
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg *config.Config, m *metrics.Metrics) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Enabled reports whether the runner has the services jobName needs. A
// process schedules only the jobs it can actually run.
func (jr *JobRunner) Enabled(jobName string) bool {
	switch jobName {
	case JobMarkOverdueRentals:
		return jr.services.Sweeper != nil
	case JobRefreshPenaltyRate:
		return jr.services.Penalty != nil
	default:
		return false
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery. Every run gets its
// own id so log lines of one execution can be correlated.
func (jr *JobRunner) runWithRecovery(ctx context.Context, jobName string, jobFunc func(ctx context.Context) error) (err error) {
	runID := uuid.NewString()
	log := logger.WithJob(jobName, runID)
	ctx = logger.NewContext(ctx, log)
	start := time.Now()

	defer func() {
		status := "success"
		if r := recover(); r != nil {
			log.Error("Job panicked", "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
			status = "panic"
		} else if err != nil {
			status = "failed"
		}
		if jr.metrics != nil {
			jr.metrics.RecordJob(jobName, status, time.Since(start))
		}
	}()

	log.Info("Starting job")
	if err = jobFunc(ctx); err != nil {
		log.Error("Job failed", "error", err, "duration", time.Since(start))
		return err
	}
	log.Info("Job completed", "duration", time.Since(start))
	return nil
}

// RunJob executes a job by name, for manual runs.
func (jr *JobRunner) RunJob(ctx context.Context, jobName string) error {
	switch jobName {
	case JobMarkOverdueRentals:
		return jr.RunMarkOverdueRentals(ctx)
	case JobRefreshPenaltyRate:
		return jr.RunRefreshPenaltyRate(ctx)
	case "all-nightly":
		return jr.RunAllNightlyJobs(ctx)
	default:
		return fmt.Errorf("unknown job: %s", jobName)
	}
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs(ctx context.Context) error {
	if err := jr.RunRefreshPenaltyRate(ctx); err != nil {
		return err
	}
	return jr.RunMarkOverdueRentals(ctx)
}

func (jr *JobRunner) scheduled(run func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		_ = run(ctx)
	}
}
