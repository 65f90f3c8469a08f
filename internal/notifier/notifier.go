// Package notifier runs deferred side effects after a response has been
// written. Enqueued tasks are best effort: failures are logged, never
// surfaced to the request that scheduled them, and there is no cancellation
// once a task is accepted.
package notifier

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

type Task func(ctx context.Context) error

type job struct {
	name string
	task Task
}

type Runner struct {
	queue  chan job
	wg     sync.WaitGroup
	logger *logrus.Logger

	mu     sync.Mutex
	closed bool
}

func NewRunner(logger *logrus.Logger, buffer int) *Runner {
	r := &Runner{
		queue:  make(chan job, buffer),
		logger: logger,
	}

	r.wg.Add(1)
	go r.run()

	return r
}

func (r *Runner) run() {
	defer r.wg.Done()
	for j := range r.queue {
		if err := j.task(context.Background()); err != nil {
			r.logger.WithError(err).WithField("task", j.name).Error("Deferred task failed")
		}
	}
}

// Enqueue schedules a task without blocking the caller. When the queue is
// full or the runner is shutting down the task is dropped and the drop
// logged.
func (r *Runner) Enqueue(name string, task Task) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		r.logger.WithField("task", name).Warn("Deferred task dropped: runner closed")
		return
	}

	select {
	case r.queue <- job{name: name, task: task}:
	default:
		r.logger.WithField("task", name).Warn("Deferred task dropped: queue full")
	}
}

// Close stops accepting tasks and waits for the queued ones to finish.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
}
