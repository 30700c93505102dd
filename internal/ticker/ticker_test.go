package ticker

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"tessnode/internal/events"
	"tessnode/internal/progress"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublishesWhileActive(t *testing.T) {
	state := progress.New()
	state.MarkRunning(10, 100)
	bus := events.New()

	var count atomic.Int64
	unsubscribe := bus.Subscribe(func(events.TrainingProgressEvent) {
		count.Add(1)
	})
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		New(state, bus, testLogger(), 10*time.Millisecond).Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for count.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	if count.Load() < 2 {
		t.Errorf("expected at least 2 progress events, got %d", count.Load())
	}
}

func TestSilentWhileIdle(t *testing.T) {
	state := progress.New()
	bus := events.New()

	var count atomic.Int64
	unsubscribe := bus.Subscribe(func(events.TrainingProgressEvent) {
		count.Add(1)
	})
	defer unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	New(state, bus, testLogger(), 10*time.Millisecond).Run(ctx)

	// Give any in-flight dispatch time to land before asserting.
	time.Sleep(50 * time.Millisecond)
	if count.Load() != 0 {
		t.Errorf("expected no progress events while idle, got %d", count.Load())
	}
}

func TestDefaultInterval(t *testing.T) {
	tk := New(progress.New(), events.New(), nil, 0)
	if tk.interval != DefaultInterval {
		t.Errorf("interval = %v, want %v", tk.interval, DefaultInterval)
	}
}
