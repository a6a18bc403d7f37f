package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type HandlerFunc func(ctx context.Context, job Job) error

type WorkerConfig struct {
	Concurrency    int
	MaxAttempts    int
	InitialBackoff time.Duration
	PollWait       time.Duration
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 2 * time.Second
	}
	if c.PollWait <= 0 {
		c.PollWait = 5 * time.Second
	}
	return c
}

type Worker struct {
	source   Source
	cfg      WorkerConfig
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

func NewWorker(source Source, cfg WorkerConfig) *Worker {
	return &Worker{
		source:   source,
		cfg:      cfg.withDefaults(),
		handlers: map[string]HandlerFunc{},
	}
}

func (w *Worker) Handle(jobType string, handler HandlerFunc) {
	w.mu.Lock()
	w.handlers[jobType] = handler
	w.mu.Unlock()
}

// Run consumes jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < w.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx)
		}()
	}
	wg.Wait()
	slog.Info("queue worker stopped")
}

func (w *Worker) loop(ctx context.Context) {
	for ctx.Err() == nil {
		job, err := w.source.Dequeue(ctx, w.cfg.PollWait)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("queue dequeue failed", "error", err)
			sleep(ctx, w.cfg.PollWait)
			continue
		}
		if job == nil {
			continue
		}

		if err := w.Process(ctx, *job); err != nil {
			slog.Error("job failed permanently", "job_id", job.ID, "type", job.Type, "error", err)
		}
	}
}

// Process runs the job's handler, retrying with exponential backoff until it
// succeeds or MaxAttempts is reached. Handlers return backoff.Permanent to
// stop retrying early.
func (w *Worker) Process(ctx context.Context, job Job) error {
	w.mu.RLock()
	handler, ok := w.handlers[job.Type]
	w.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no handler registered for job type %q", job.Type)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = w.cfg.InitialBackoff
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxInterval = w.cfg.InitialBackoff << uint(w.cfg.MaxAttempts)
	policy.MaxElapsedTime = 0

	attempt := 0
	operation := func() error {
		attempt++
		return handler(ctx, job)
	}
	notify := func(err error, next time.Duration) {
		slog.Warn("job attempt failed", "job_id", job.ID, "type", job.Type, "attempt", attempt, "retry_in", next, "error", err)
	}

	retries := uint64(w.cfg.MaxAttempts - 1)
	err := backoff.RetryNotify(operation, backoff.WithContext(backoff.WithMaxRetries(policy, retries), ctx), notify)
	if err != nil {
		return fmt.Errorf("after %d attempts: %w", attempt, err)
	}

	slog.Info("job completed", "job_id", job.ID, "type", job.Type, "attempts", attempt)
	return nil
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
