package scheduler

import (
	"context"
	"math/rand"
	"time"
)

// Job represents a scheduled task that can be executed
type Job interface {
	// Name returns the unique identifier for this job
	Name() string

	// Run executes the job. It should respect context cancellation;
	// the scheduler applies the configured timeout through ctx.
	// Returns an error if the job fails.
	Run(ctx context.Context) error
}

// Schedule defines when a job should run
type Schedule interface {
	// Next calculates the next run time after the given time
	Next(after time.Time) time.Time
}

// IntervalSchedule runs a job at fixed intervals
type IntervalSchedule struct {
	interval time.Duration
	jitter   time.Duration // Random delay added to interval (0 to jitter)
}

// NewIntervalSchedule creates a schedule that runs every interval
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	return &IntervalSchedule{
		interval: interval,
		jitter:   0,
	}
}

// NewIntervalScheduleWithJitter creates a schedule with random jitter.
// The job will run at interval + random(0, jitter).
// Example: interval=60s, jitter=10s means the job runs every 60-70 seconds,
// so a fleet of exporters does not all push at the same instant.
func NewIntervalScheduleWithJitter(interval, jitter time.Duration) *IntervalSchedule {
	return &IntervalSchedule{
		interval: interval,
		jitter:   jitter,
	}
}

// Next returns the next scheduled time
func (s *IntervalSchedule) Next(after time.Time) time.Time {
	next := after.Add(s.interval)
	if s.jitter > 0 {
		next = next.Add(time.Duration(rand.Int63n(int64(s.jitter))))
	}
	return next
}

// JobConfig holds configuration for a scheduled job
type JobConfig struct {
	Enabled bool
	Timeout time.Duration // Maximum execution time (0 = no timeout)
}
