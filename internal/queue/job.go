// Package queue defers slow side effects (email delivery) to a background
// worker. Jobs are JSON documents pushed onto a list and retried with
// exponential backoff when their handler fails.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrQueueFull = errors.New("queue is full")

type Job struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

func NewJob(jobType string, payload any) (Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Job{}, fmt.Errorf("encode %s payload: %w", jobType, err)
	}

	return Job{
		ID:         uuid.NewString(),
		Type:       jobType,
		Payload:    raw,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the job payload into dst.
func (j Job) Decode(dst any) error {
	if err := json.Unmarshal(j.Payload, dst); err != nil {
		return fmt.Errorf("decode %s payload: %w", j.Type, err)
	}
	return nil
}

type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) error
}

type Source interface {
	// Dequeue blocks for up to wait and returns nil when no job arrived.
	Dequeue(ctx context.Context, wait time.Duration) (*Job, error)
}
