package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/helios-home/helios/internal/shared/logger"
)

type countingJob struct {
	name  string
	runs  atomic.Int32
	every time.Duration
	limit int32
	err   error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Execute(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func (j *countingJob) NextExecution() (time.Time, bool) {
	if j.limit > 0 && j.runs.Load() >= j.limit {
		return time.Time{}, false
	}
	return time.Now().Add(j.every), true
}

func TestSchedulerRunsImmediatelyThenOnCadence(t *testing.T) {
	job := &countingJob{name: "tick", every: 20 * time.Millisecond}
	s := New(logger.NewNop())
	s.Add(job)

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	runs := job.runs.Load()
	// Immediate first tick plus at least three rescheduled ones.
	assert.GreaterOrEqual(t, runs, int32(4))
}

func TestSchedulerRetiresOneShotJobs(t *testing.T) {
	oneShot := &countingJob{name: "once", every: time.Millisecond, limit: 1}
	s := New(logger.NewNop())
	s.Add(oneShot)

	done := make(chan struct{})
	go func() {
		// With every job retired Run returns on its own.
		s.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after its only job retired")
	}
	assert.Equal(t, int32(1), oneShot.runs.Load())
}

func TestSchedulerKeepsRunningFailedJobs(t *testing.T) {
	failing := &countingJob{name: "flaky", every: 10 * time.Millisecond, err: errors.New("boom")}
	s := New(logger.NewNop())
	s.Add(failing)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	assert.GreaterOrEqual(t, failing.runs.Load(), int32(3))
}

func TestSchedulerRunsJobsSerially(t *testing.T) {
	var concurrent, maxSeen atomic.Int32
	observe := func(ctx context.Context) error {
		n := concurrent.Add(1)
		if n > maxSeen.Load() {
			maxSeen.Store(n)
		}
		time.Sleep(5 * time.Millisecond)
		concurrent.Add(-1)
		return nil
	}

	s := New(logger.NewNop())
	s.Add(NewIntervalJob("a", 10*time.Millisecond, observe))
	s.Add(NewIntervalJob("b", 10*time.Millisecond, observe))

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	assert.Equal(t, int32(1), maxSeen.Load())
}
