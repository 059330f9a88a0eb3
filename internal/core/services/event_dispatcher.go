package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/spice_ledger/internal/core/ports/services"
	"github.com/panjf2000/ants/v2"
)

// EventDispatcherConfig sizes the delivery pool.
type EventDispatcherConfig struct {
	PoolSize    int
	MaxAttempts int
	RetryDelay  time.Duration
	// QueueSize bounds deliveries waiting for a free worker. Beyond it deliveries are dropped.
	QueueSize int
}

const defaultEventQueueSize = 1024

type delivery struct {
	ctx      context.Context
	listener domain.EventListener
	event    domain.FinancialEvent
}

// EventDispatcher delivers events to listeners on an ants worker pool.
// Delivery is at-least-once per listener up to MaxAttempts; a failing listener
// never affects the caller or the other listeners. Dispatch never waits for a
// worker: deliveries queue up to QueueSize and a single feeder hands them to the pool.
type EventDispatcher struct {
	BaseService
	pool        *ants.Pool
	logger      *slog.Logger
	maxAttempts int
	retryDelay  time.Duration

	mu        sync.RWMutex
	listeners map[uint64]domain.EventListener
	nextID    uint64
	closed    bool

	queue      chan delivery
	feederDone chan struct{}
	inflight   sync.WaitGroup
}

var _ portssvc.EventDispatcher = (*EventDispatcher)(nil)

// NewEventDispatcher creates the dispatcher and its worker pool.
func NewEventDispatcher(cfg EventDispatcherConfig, logger *slog.Logger) (*EventDispatcher, error) {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 8
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultEventQueueSize
	}
	pool, err := ants.NewPool(cfg.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create event worker pool: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &EventDispatcher{
		pool:        pool,
		logger:      logger,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
		listeners:   make(map[uint64]domain.EventListener),
		queue:       make(chan delivery, cfg.QueueSize),
		feederDone:  make(chan struct{}),
	}
	go d.feed()
	return d, nil
}

// feed moves queued deliveries onto the pool, waiting for free workers.
func (d *EventDispatcher) feed() {
	defer close(d.feederDone)
	for job := range d.queue {
		err := d.pool.Submit(func() {
			defer d.inflight.Done()
			d.deliver(job.ctx, job.listener, job.event)
		})
		if err != nil {
			d.inflight.Done()
			d.logger.Error("Failed to submit event delivery",
				slog.String("event_id", job.event.ID),
				slog.String("event_type", string(job.event.Type)),
				slog.String("error", err.Error()))
		}
	}
}

// AddEventListener registers listener. Calling the returned function more than once is harmless.
func (d *EventDispatcher) AddEventListener(listener domain.EventListener) (remove func()) {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.listeners[id] = listener
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.listeners, id)
		d.mu.Unlock()
	}
}

// ListenerCount returns how many listeners are registered.
func (d *EventDispatcher) ListenerCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners)
}

// Dispatch queues one delivery per listener and returns immediately.
// Deliveries outlive ctx's cancellation but keep its values.
func (d *EventDispatcher) Dispatch(ctx context.Context, event domain.FinancialEvent) {
	deliveryCtx := context.WithoutCancel(ctx)

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("Event dispatched after shutdown, dropping",
			slog.String("event_id", event.ID),
			slog.String("event_type", string(event.Type)))
		return
	}
	for _, l := range d.listeners {
		d.inflight.Add(1)
		select {
		case d.queue <- delivery{ctx: deliveryCtx, listener: l, event: event}:
		default:
			d.inflight.Done()
			d.logger.Error("Event delivery queue full, dropping delivery",
				slog.String("event_id", event.ID),
				slog.String("event_type", string(event.Type)),
				slog.Int("queue_size", cap(d.queue)))
		}
	}
}

func (d *EventDispatcher) deliver(ctx context.Context, listener domain.EventListener, event domain.FinancialEvent) {
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		err := callListener(ctx, listener, event)
		if err == nil {
			return
		}
		logger := d.logger.With(
			slog.String("event_id", event.ID),
			slog.String("event_type", string(event.Type)),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
		if attempt == d.maxAttempts {
			logger.Error("Event delivery failed, giving up")
			return
		}
		logger.Warn("Event delivery failed, retrying")
		if d.retryDelay > 0 {
			time.Sleep(d.retryDelay * time.Duration(attempt))
		}
	}
}

func callListener(ctx context.Context, listener domain.EventListener, event domain.FinancialEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panicked: %v", r)
		}
	}()
	return listener(ctx, event)
}

// Flush blocks until every queued delivery has finished.
func (d *EventDispatcher) Flush() {
	d.inflight.Wait()
}

// Shutdown waits up to timeout for pending deliveries and releases the pool.
func (d *EventDispatcher) Shutdown(timeout time.Duration) error {
	d.logger.Info("Shutting down event dispatcher",
		slog.Int("running_workers", d.pool.Running()),
		slog.Int("queued", len(d.queue)))
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		<-d.feederDone
		d.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		d.logger.Warn("Timed out waiting for event deliveries")
	}
	return d.pool.ReleaseTimeout(timeout)
}
