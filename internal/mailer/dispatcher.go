package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"

	"thesis-manager/internal/queue"
)

const JobTypeSendEmail = "email.send"

// Dispatcher enqueues emails for background delivery.
type Dispatcher struct {
	queue queue.Enqueuer
}

func NewDispatcher(q queue.Enqueuer) *Dispatcher {
	return &Dispatcher{queue: q}
}

func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) error {
	job, err := queue.NewJob(JobTypeSendEmail, msg)
	if err != nil {
		return err
	}
	return d.queue.Enqueue(ctx, job)
}

// Handler returns the queue handler that delivers email jobs through sender.
func Handler(sender Sender) queue.HandlerFunc {
	return func(ctx context.Context, job queue.Job) error {
		var msg Message
		if err := job.Decode(&msg); err != nil {
			return backoff.Permanent(err)
		}
		if msg.To == "" {
			return backoff.Permanent(errors.New("email job has no recipient"))
		}
		if err := sender.Send(ctx, msg); err != nil {
			return fmt.Errorf("deliver email to %s: %w", msg.To, err)
		}
		return nil
	}
}
