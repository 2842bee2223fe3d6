package jobs

import (
	"context"
	"fmt"
	"time"

	"rentspace/metrics"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	JobCompleteBookings   = "complete_bookings"
	JobExpireBookings     = "expire_bookings"
	JobExpireApplications = "expire_applications"
	defaultJobTimeout     = 5 * time.Minute
)

// Job is a batch pass that reports how many rows it changed.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) (int64, error)
}

// BookingSweeper is implemented by services.BookingService.
type BookingSweeper interface {
	CompleteFinished(ctx context.Context) (int64, error)
	ExpireStale(ctx context.Context) (int64, error)
}

// ApplicationSweeper is implemented by services.RentalApplicationService.
type ApplicationSweeper interface {
	ExpireStale(ctx context.Context) (int64, error)
}

// Schedules holds the cron expressions for the default jobs.
type Schedules struct {
	Complete string
	Expire   string
}

// DefaultJobs lists the lifecycle passes: stays whose check-out has passed
// become completed, and requests whose check-in has passed expire.
func DefaultJobs(bookings BookingSweeper, applications ApplicationSweeper, s Schedules) []Job {
	return []Job{
		{Name: JobCompleteBookings, Schedule: s.Complete, Run: bookings.CompleteFinished},
		{Name: JobExpireBookings, Schedule: s.Expire, Run: bookings.ExpireStale},
		{Name: JobExpireApplications, Schedule: s.Expire, Run: applications.ExpireStale},
	}
}

// RunJob executes one pass, recording the outcome.
func RunJob(ctx context.Context, job Job, log zerolog.Logger) error {
	start := time.Now()
	affected, err := job.Run(ctx)
	if err != nil {
		metrics.JobRuns.WithLabelValues(job.Name, "error").Inc()
		log.Error().Err(err).Str("job", job.Name).Msg("job failed")
		return fmt.Errorf("%s: %w", job.Name, err)
	}
	metrics.JobRuns.WithLabelValues(job.Name, "ok").Inc()
	metrics.JobAffectedRows.WithLabelValues(job.Name).Add(float64(affected))
	log.Info().Str("job", job.Name).Int64("affected", affected).
		Dur("took", time.Since(start)).Msg("job finished")
	return nil
}

// InitCronJobs registers jobs on c. The caller starts and stops c.
func InitCronJobs(c *cron.Cron, log zerolog.Logger, jobs ...Job) error {
	for _, job := range jobs {
		job := job
		_, err := c.AddFunc(job.Schedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), defaultJobTimeout)
			defer cancel()
			_ = RunJob(ctx, job, log)
		})
		if err != nil {
			return fmt.Errorf("schedule %s (%q): %w", job.Name, job.Schedule, err)
		}
	}
	log.Info().Int("count", len(jobs)).Msg("cron jobs initialized")
	return nil
}

// RunAll executes every job once, in order, and returns the first error.
func RunAll(ctx context.Context, log zerolog.Logger, jobs ...Job) error {
	var firstErr error
	for _, job := range jobs {
		if err := RunJob(ctx, job, log); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
