// Package scheduler drives the server-initiated periodic work: device sync
// and agent liveness. Jobs run serially in one goroutine; cadences are
// seconds to minutes, so a long job delaying the next tick is acceptable.
package scheduler

import (
	"context"
	"time"

	"github.com/helios-home/helios/internal/shared/logger"
)

// Job is one unit of periodic work. After every run the scheduler asks
// NextExecution for the next due instant; reporting false retires the job.
type Job interface {
	Name() string
	Execute(ctx context.Context) error
	NextExecution() (time.Time, bool)
}

type entry struct {
	job  Job
	next time.Time
}

// Scheduler executes registered jobs at their due instants. The first tick of
// every job is immediate so a fresh process syncs and pings without waiting a
// full interval.
type Scheduler struct {
	entries []*entry
	logger  logger.Interface
}

// New creates an empty scheduler.
func New(log logger.Interface) *Scheduler {
	return &Scheduler{logger: log}
}

// Add registers a job, due immediately. Not safe to call once Run started.
func (s *Scheduler) Add(job Job) {
	s.entries = append(s.entries, &entry{job: job, next: time.Now()})
}

// Run drives the job loop until the context ends or every job has retired.
// Job failures are logged; the next tick retries.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Infow("scheduler started", "jobs", len(s.entries))

	for {
		next, ok := s.earliest()
		if !ok {
			s.logger.Infow("all scheduled jobs retired, scheduler stopping")
			return
		}

		if wait := time.Until(next); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				s.logger.Infow("scheduler stopped", "reason", ctx.Err())
				return
			case <-timer.C:
			}
		}

		if err := ctx.Err(); err != nil {
			s.logger.Infow("scheduler stopped", "reason", err)
			return
		}

		s.runDue(ctx)
	}
}

// runDue executes every due job serially and re-queries its next due instant.
func (s *Scheduler) runDue(ctx context.Context) {
	now := time.Now()
	kept := s.entries[:0]

	for _, e := range s.entries {
		if e.next.After(now) {
			kept = append(kept, e)
			continue
		}

		start := time.Now()
		s.logger.Debugw("executing job", "job", e.job.Name())
		if err := e.job.Execute(ctx); err != nil {
			if ctx.Err() != nil {
				kept = append(kept, e)
				continue
			}
			s.logger.Errorw("job failed",
				"job", e.job.Name(),
				"error", err,
				"duration", time.Since(start),
			)
		} else {
			s.logger.Debugw("job finished",
				"job", e.job.Name(),
				"duration", time.Since(start),
			)
		}

		next, again := e.job.NextExecution()
		if !again {
			s.logger.Infow("job retired", "job", e.job.Name())
			continue
		}
		e.next = next
		kept = append(kept, e)
	}

	s.entries = kept
}

func (s *Scheduler) earliest() (time.Time, bool) {
	if len(s.entries) == 0 {
		return time.Time{}, false
	}
	earliest := s.entries[0].next
	for _, e := range s.entries[1:] {
		if e.next.Before(earliest) {
			earliest = e.next
		}
	}
	return earliest, true
}

// IntervalJob wraps a function as a fixed-cadence job.
type IntervalJob struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context) error
}

// NewIntervalJob builds a job that reschedules itself every interval.
func NewIntervalJob(name string, interval time.Duration, fn func(ctx context.Context) error) *IntervalJob {
	return &IntervalJob{name: name, interval: interval, fn: fn}
}

func (j *IntervalJob) Name() string { return j.name }

func (j *IntervalJob) Execute(ctx context.Context) error { return j.fn(ctx) }

func (j *IntervalJob) NextExecution() (time.Time, bool) {
	return time.Now().Add(j.interval), true
}
