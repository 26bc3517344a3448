package delivery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blockedby/episode-relay/internal/logger"
)

// Job represents an active delivery run
type Job struct {
	ID        uuid.UUID
	StartedAt time.Time
}

// JobFunc performs the work of one run.
type JobFunc func(ctx context.Context, job Job)

// Runner executes delivery jobs in the background
// ensures only one job runs at a time
// thread-safe
type Runner struct {
	mu      sync.Mutex
	current *Job
	ctx     context.Context
	wg      sync.WaitGroup
	log     *logger.Logger
}

// NewRunner creates a runner whose jobs live on ctx. Jobs are not tied to the
// request that started them; cancel ctx only on shutdown.
func NewRunner(ctx context.Context, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Get()
	}
	return &Runner{
		ctx: ctx,
		log: log.Component("runner"),
	}
}

// Start launches fn in a goroutine.
// returns ErrAlreadyRunning if a job is already running
func (r *Runner) Start(fn JobFunc) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		return Job{}, ErrAlreadyRunning
	}

	job := Job{
		ID:        uuid.New(),
		StartedAt: time.Now(),
	}
	r.current = &job

	r.wg.Add(1)
	go r.run(job, fn)

	return job, nil
}

// Current returns the running job, or nil when idle.
func (r *Runner) Current() *Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil
	}
	j := *r.current
	return &j
}

// Wait blocks until the running job (if any) returns.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(job Job, fn JobFunc) {
	defer r.wg.Done()
	defer func() {
		r.mu.Lock()
		if r.current != nil && r.current.ID == job.ID {
			r.current = nil
		}
		r.mu.Unlock()
	}()
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Str("job_id", job.ID.String()).Err(fmt.Errorf("panic: %v", rec)).Msg("delivery job panicked")
		}
	}()

	r.log.Info().Str("job_id", job.ID.String()).Msg("delivery job started")
	fn(r.ctx, job)
	r.log.Info().Str("job_id", job.ID.String()).Dur("elapsed", time.Since(job.StartedAt)).Msg("delivery job finished")
}
