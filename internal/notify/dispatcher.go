package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"personapilot/internal/logging"
)

var (
	// ErrQueueFull is returned when a best-effort message is dropped.
	ErrQueueFull = errors.New("notification queue is full")
	// ErrDispatcherClosed is returned after Close.
	ErrDispatcherClosed = errors.New("notification dispatcher is closed")
)

type job struct {
	kind Kind
	to   string
	send func(ctx context.Context) error
}

// Dispatcher sends messages on a background worker so callers never wait
// for the mail server. Failures are logged and otherwise ignored.
type Dispatcher struct {
	notifier Notifier
	logger   logging.Logger
	timeout  time.Duration

	jobs   chan job
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

var _ Notifier = (*Dispatcher)(nil)

// NewDispatcher starts the worker. queueSize bounds the pending messages.
func NewDispatcher(notifier Notifier, logger logging.Logger, queueSize int, timeout time.Duration) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 100
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	d := &Dispatcher{
		notifier: notifier,
		logger:   logger,
		timeout:  timeout,
		jobs:     make(chan job, queueSize),
		done:     make(chan struct{}),
	}
	go d.worker()
	return d
}

// SendVerification queues a verification email.
func (d *Dispatcher) SendVerification(_ context.Context, to, name, token string) error {
	return d.enqueue(job{kind: KindVerification, to: to, send: func(ctx context.Context) error {
		return d.notifier.SendVerification(ctx, to, name, token)
	}})
}

// SendPasswordReset queues a password reset email.
func (d *Dispatcher) SendPasswordReset(_ context.Context, to, name, token string) error {
	return d.enqueue(job{kind: KindReset, to: to, send: func(ctx context.Context) error {
		return d.notifier.SendPasswordReset(ctx, to, name, token)
	}})
}

// SendWelcome queues a welcome email.
func (d *Dispatcher) SendWelcome(_ context.Context, to, name string) error {
	return d.enqueue(job{kind: KindWelcome, to: to, send: func(ctx context.Context) error {
		return d.notifier.SendWelcome(ctx, to, name)
	}})
}

func (d *Dispatcher) enqueue(j job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	// non-blocking: drop when full
	select {
	case d.jobs <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

// worker processes queued messages until the queue is closed.
func (d *Dispatcher) worker() {
	defer close(d.done)
	for j := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := j.send(ctx); err != nil {
			d.logger.Warn(ctx, "send email failed", "kind", j.kind, "to", j.to, "error", err)
		}
		cancel()
	}
}

// Close stops accepting messages and waits for the queue to drain or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
