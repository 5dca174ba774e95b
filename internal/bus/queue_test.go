package bus

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTryPublishBounded(t *testing.T) {
	q := NewQueue(1)

	if err := q.TryPublish(Tick{At: time.Now()}); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if err := q.TryPublish(Tick{At: time.Now()}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("second publish: got %v want ErrQueueFull", err)
	}

	q.Close()
	if err := q.TryPublish(Tick{At: time.Now()}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("publish after close: got %v want ErrQueueClosed", err)
	}
}

func TestRunDrainsThenStopsOnClose(t *testing.T) {
	q := NewQueue(2)
	_ = q.TryPublish(Tick{At: time.Now()})
	_ = q.TryPublish(Tick{At: time.Now()})
	q.Close()

	handled := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Run(context.Background(), func(Tick) { handled++ })
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after close")
	}
	if handled != 2 {
		t.Fatalf("handled %d ticks, want 2", handled)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	q := NewQueue(1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Run(ctx, func(Tick) {})
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
