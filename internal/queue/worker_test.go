package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"
)

type greeting struct {
	To string `json:"to"`
}

func newTestWorker(source Source) *Worker {
	return NewWorker(source, WorkerConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		PollWait:       10 * time.Millisecond,
	})
}

func TestWorkerRetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	worker := newTestWorker(NewMemoryQueue(1))
	var calls atomic.Int32
	worker.Handle("greet", func(ctx context.Context, job Job) error {
		if calls.Add(1) < 3 {
			return errors.New("smtp unavailable")
		}
		return nil
	})

	job, err := NewJob("greet", greeting{To: "a@uni.edu"})
	require.NoError(t, err)

	require.NoError(t, worker.Process(context.Background(), job))
	require.Equal(t, int32(3), calls.Load())
}

func TestWorkerGivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	worker := newTestWorker(NewMemoryQueue(1))
	var calls atomic.Int32
	worker.Handle("greet", func(ctx context.Context, job Job) error {
		calls.Add(1)
		return errors.New("still down")
	})

	job, err := NewJob("greet", greeting{To: "a@uni.edu"})
	require.NoError(t, err)

	err = worker.Process(context.Background(), job)
	require.Error(t, err)
	require.Contains(t, err.Error(), "still down")
	require.Equal(t, int32(3), calls.Load())
}

func TestWorkerStopsOnPermanentError(t *testing.T) {
	t.Parallel()

	worker := newTestWorker(NewMemoryQueue(1))
	var calls atomic.Int32
	worker.Handle("greet", func(ctx context.Context, job Job) error {
		calls.Add(1)
		return backoff.Permanent(errors.New("bad payload"))
	})

	job, err := NewJob("greet", greeting{})
	require.NoError(t, err)

	require.Error(t, worker.Process(context.Background(), job))
	require.Equal(t, int32(1), calls.Load())
}

func TestWorkerUnknownJobType(t *testing.T) {
	t.Parallel()

	worker := newTestWorker(NewMemoryQueue(1))
	job, err := NewJob("unknown", greeting{})
	require.NoError(t, err)

	require.Error(t, worker.Process(context.Background(), job))
}

func TestWorkerRunConsumesQueue(t *testing.T) {
	t.Parallel()

	q := NewMemoryQueue(4)
	worker := newTestWorker(q)

	received := make(chan string, 2)
	worker.Handle("greet", func(ctx context.Context, job Job) error {
		var payload greeting
		if err := job.Decode(&payload); err != nil {
			return backoff.Permanent(err)
		}
		received <- payload.To
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	for _, to := range []string{"a@uni.edu", "b@uni.edu"} {
		job, err := NewJob("greet", greeting{To: to})
		require.NoError(t, err)
		require.NoError(t, q.Enqueue(ctx, job))
	}

	require.Equal(t, "a@uni.edu", <-received)
	require.Equal(t, "b@uni.edu", <-received)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestMemoryQueueFull(t *testing.T) {
	t.Parallel()

	q := NewMemoryQueue(1)
	job, err := NewJob("greet", greeting{})
	require.NoError(t, err)

	require.NoError(t, q.Enqueue(context.Background(), job))
	require.ErrorIs(t, q.Enqueue(context.Background(), job), ErrQueueFull)
	require.Equal(t, 1, q.Len())

	got, err := q.Dequeue(context.Background(), time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, job.ID, got.ID)

	got, err = q.Dequeue(context.Background(), time.Millisecond)
	require.NoError(t, err)
	require.Nil(t, got)
}
