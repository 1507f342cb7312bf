package workspace

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// DefaultQueueCapacity is the default buffer size of the update queue.
const DefaultQueueCapacity = 256

// Update is one unit of work run exclusively on the workspace loop.
type Update struct {
	ID   string
	Name string
	fn   func(ctx context.Context) error
}

// Run executes the update body.
func (u *Update) Run(ctx context.Context) error {
	return u.fn(ctx)
}

// UpdateHandler runs updates. Middleware wraps it.
type UpdateHandler interface {
	Handle(ctx context.Context, u *Update) error
}

// UpdateHandlerFunc adapts a function to UpdateHandler.
type UpdateHandlerFunc func(ctx context.Context, u *Update) error

// Handle implements UpdateHandler.
func (f UpdateHandlerFunc) Handle(ctx context.Context, u *Update) error {
	return f(ctx, u)
}

var runUpdate = UpdateHandlerFunc(func(ctx context.Context, u *Update) error {
	return u.Run(ctx)
})

// queued is an update waiting in the queue. Exactly one of the loop and the
// abandoning caller wins the claim.
type queued struct {
	update  *Update
	ctx     context.Context
	claimed atomic.Bool
	done    chan error
}

// updater serializes updates on one goroutine in FIFO order.
type updater struct {
	queue   chan *queued
	handler UpdateHandler

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	stopped bool
	wg      sync.WaitGroup

	running   atomic.Bool
	started   atomic.Bool
	readyCh   chan struct{}
	readyOnce sync.Once

	processed atomic.Int64
	failed    atomic.Int64
	skipped   atomic.Int64
}

func newUpdater(capacity int, middlewares ...Middleware) *updater {
	if capacity < 1 {
		capacity = DefaultQueueCapacity
	}
	return &updater{
		queue:   make(chan *queued, capacity),
		handler: ChainMiddleware(runUpdate, middlewares...),
		readyCh: make(chan struct{}),
	}
}

// run processes updates until ctx ends or stop is called. Only the first
// call does anything.
func (u *updater) run(ctx context.Context) {
	if !u.started.CompareAndSwap(false, true) {
		return
	}
	u.mu.Lock()
	if u.stopped {
		u.mu.Unlock()
		return
	}
	u.ctx, u.cancel = context.WithCancel(ctx)
	// Add before running is visible so stop always waits for the loop.
	u.wg.Add(1)
	u.running.Store(true)
	u.mu.Unlock()
	u.readyOnce.Do(func() { close(u.readyCh) })

	defer func() {
		u.running.Store(false)
		u.wg.Done()
	}()

	for {
		select {
		case <-u.ctx.Done():
			return
		case q := <-u.queue:
			u.process(q)
		}
	}
}

func (u *updater) waitForReady(ctx context.Context) error {
	select {
	case <-u.readyCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (u *updater) process(q *queued) {
	if !q.claimed.CompareAndSwap(false, true) {
		// The caller gave up before the update started.
		u.skipped.Add(1)
		return
	}
	// A claimed update always runs to completion.
	err := u.handler.Handle(context.WithoutCancel(q.ctx), q.update)
	u.processed.Add(1)
	if err != nil {
		u.failed.Add(1)
	}
	q.done <- err
}

// submitAndWait queues fn and blocks until it has run. If ctx ends before
// the loop picks the update up, the update is dropped and ctx.Err() is
// returned; once picked up it finishes and its result is returned.
func (u *updater) submitAndWait(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if !u.running.Load() {
		return ErrClosed
	}
	q := &queued{
		update: &Update{ID: uuid.NewString(), Name: name, fn: fn},
		ctx:    ctx,
		done:   make(chan error, 1),
	}

	select {
	case u.queue <- q:
	case <-ctx.Done():
		return ctx.Err()
	case <-u.ctx.Done():
		return ErrClosed
	}

	select {
	case err := <-q.done:
		return err
	case <-ctx.Done():
		if q.claimed.CompareAndSwap(false, true) {
			return ctx.Err()
		}
		return <-q.done
	case <-u.ctx.Done():
		if q.claimed.CompareAndSwap(false, true) {
			return ErrClosed
		}
		return <-q.done
	}
}

// stop ends the loop and waits for it. A loop that has not started yet
// never will.
func (u *updater) stop() {
	u.mu.Lock()
	u.stopped = true
	cancel := u.cancel
	u.mu.Unlock()

	u.readyOnce.Do(func() { close(u.readyCh) })
	if cancel != nil {
		cancel()
	}
	u.wg.Wait()
}
