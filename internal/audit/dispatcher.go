package audit

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Dispatcher decouples event emission from persistence. Emit enqueues onto a
// bounded queue and returns immediately; Run drains the queue into the store.
// When the queue is full the oldest events are dropped, so a slow or failing
// store can never stall Grant/Revoke/Append on the hot path.
type Dispatcher struct {
	queue   chan Event
	store   Store
	logger  *slog.Logger
	dropped atomic.Int64

	// onEmit/onDrop are optional hooks for metrics.
	onEmit func()
	onDrop func()
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithEmitHook is invoked once per event handed to Emit.
func WithEmitHook(fn func()) Option {
	return func(d *Dispatcher) { d.onEmit = fn }
}

// WithDropHook is invoked once per event dropped due to a full queue.
func WithDropHook(fn func()) Option {
	return func(d *Dispatcher) { d.onDrop = fn }
}

// NewDispatcher creates a dispatcher with the given queue capacity.
func NewDispatcher(capacity int, store Store, logger *slog.Logger, opts ...Option) *Dispatcher {
	if capacity <= 0 {
		capacity = 4096
	}
	d := &Dispatcher{
		queue:  make(chan Event, capacity),
		store:  store,
		logger: logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Emit hands the event to the queue without blocking. On a full queue the
// oldest event is discarded to make room; if the race for the slot is lost
// the new event is dropped instead.
func (d *Dispatcher) Emit(event Event) {
	if d.onEmit != nil {
		d.onEmit()
	}
	select {
	case d.queue <- event:
		return
	default:
	}

	// Queue full: drop oldest and retry once.
	select {
	case <-d.queue:
		d.noteDrop()
	default:
	}
	select {
	case d.queue <- event:
	default:
		d.noteDrop()
	}
}

func (d *Dispatcher) noteDrop() {
	d.dropped.Add(1)
	if d.onDrop != nil {
		d.onDrop()
	}
}

// Dropped returns the number of events lost to queue overflow.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Run drains the queue into the store until ctx is cancelled. Store failures
// are logged and the event is lost; audit delivery is best-effort by design
// and must never corrupt or roll back registry state.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.drain()
			return ctx.Err()
		case event := <-d.queue:
			d.persist(ctx, event)
		}
	}
}

// drain flushes whatever is left in the queue at shutdown.
func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.queue:
			d.persist(context.Background(), event)
		default:
			return
		}
	}
}

func (d *Dispatcher) persist(ctx context.Context, event Event) {
	if err := d.store.Append(ctx, event); err != nil {
		d.logger.Error("audit append failed",
			"kind", string(event.Kind),
			"subject", event.Subject,
			"error", err,
		)
	}
}
