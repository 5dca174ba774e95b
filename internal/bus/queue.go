package bus

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

var (
	ErrQueueFull   = errors.New("tick queue full")
	ErrQueueClosed = errors.New("tick queue closed")
)

// Tick is one scheduled cycle trigger.
type Tick struct {
	At time.Time
}

// Queue is a bounded, non-blocking tick queue. A single consumer drains it,
// which serializes cycle invocations even when a cycle overruns its slot.
type Queue struct {
	ch     chan Tick
	closed uint32
}

// NewQueue allocates a queue with the given backlog capacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{ch: make(chan Tick, capacity)}
}

// TryPublish enqueues a tick without blocking.
func (q *Queue) TryPublish(t Tick) error {
	if atomic.LoadUint32(&q.closed) != 0 {
		return ErrQueueClosed
	}
	select {
	case q.ch <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops the queue from accepting new ticks. Only the publishing
// goroutine may call it, after its last TryPublish; a concurrent close
// would race an in-flight send.
func (q *Queue) Close() {
	if atomic.CompareAndSwapUint32(&q.closed, 0, 1) {
		close(q.ch)
	}
}

// Run consumes ticks until the context is done or the queue is closed.
func (q *Queue) Run(ctx context.Context, handler func(Tick)) {
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-q.ch:
			if !ok {
				return
			}
			handler(t)
		}
	}
}
