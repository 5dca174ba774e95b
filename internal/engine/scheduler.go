package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"main/internal/bus"
	"main/internal/obs"

	"github.com/yanun0323/logs"
)

// Default cadence: once per minute, a few seconds past the boundary so
// upstream minute candles are already published.
const (
	defaultInterval = time.Minute
	defaultOffset   = 5 * time.Second
)

// Runner is anything the scheduler can drive once per tick.
type Runner interface {
	Run(ctx context.Context)
}

// Scheduler fires the cycle on a fixed cadence. Ticks flow through a
// bounded single-worker queue, so cycle invocations never overlap; a tick
// that arrives while the backlog is full is dropped and counted.
type Scheduler struct {
	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	runner   Runner
	metrics  *obs.Metrics
	interval time.Duration
	offset   time.Duration
	now      func() time.Time
}

// NewScheduler creates a stopped scheduler for the given runner.
func NewScheduler(runner Runner, metrics *obs.Metrics, interval, offset time.Duration) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	if offset < 0 || offset >= interval {
		offset = defaultOffset
	}
	return &Scheduler{
		runner:   runner,
		metrics:  metrics,
		interval: interval,
		offset:   offset,
		now:      time.Now,
	}
}

// Start arms the timer. Starting a running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true

	queue := bus.NewQueue(1)
	go s.work(ctx, queue)
	go s.tick(ctx, queue)
	logs.Info("strategy scheduler started")
}

// Stop disarms the timer without waiting for an in-flight cycle. Stopping
// a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cancel()
	s.running = false
	logs.Info("strategy scheduler stopped")
}

// Running reports whether the timer is armed.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) work(ctx context.Context, queue *bus.Queue) {
	queue.Run(ctx, func(bus.Tick) {
		s.runner.Run(ctx)
	})
}

// tick publishes on the cadence until the context is cancelled. It is the
// queue's only publisher, so only it may close the queue; closing from the
// control side would race the in-flight publish.
func (s *Scheduler) tick(ctx context.Context, queue *bus.Queue) {
	defer queue.Close()

	// Align the first tick to the next interval boundary plus offset.
	now := s.now()
	first := now.Truncate(s.interval).Add(s.interval + s.offset)
	timer := time.NewTimer(first.Sub(now))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
		s.publish(queue)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.publish(queue)
		}
	}
}

func (s *Scheduler) publish(queue *bus.Queue) {
	err := queue.TryPublish(bus.Tick{At: s.now()})
	switch {
	case err == nil:
	case errors.Is(err, bus.ErrQueueFull):
		s.metrics.IncTickDropped()
		logs.Warnf("cycle still running, tick dropped")
	case errors.Is(err, bus.ErrQueueClosed):
	}
}
