// Package ticker publishes periodic progress snapshots so SSE clients
// and dashboards see elapsed time and sample counts move even when the
// training process is between telemetry lines.
package ticker

import (
	"context"
	"log/slog"
	"time"

	"tessnode/internal/events"
	"tessnode/internal/progress"
)

// DefaultInterval matches the refresh cadence of the status display.
const DefaultInterval = 1 * time.Second

// Ticker periodically snapshots the progress state onto the bus.
type Ticker struct {
	state    *progress.State
	bus      *events.Bus
	logger   *slog.Logger
	interval time.Duration
}

// New creates a ticker. A non-positive interval falls back to
// DefaultInterval.
func New(state *progress.State, bus *events.Bus, logger *slog.Logger, interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ticker{
		state:    state,
		bus:      bus,
		logger:   logger,
		interval: interval,
	}
}

// Run publishes snapshots until the context is cancelled. Snapshots are
// only published while a run is active; idle and terminal states are
// broadcast by the supervisor's own transitions.
func (t *Ticker) Run(ctx context.Context) {
	t.logger.Debug("Progress ticker started", "interval", t.interval)
	tick := time.NewTicker(t.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Debug("Progress ticker stopped")
			return
		case <-tick.C:
			snap := t.state.Snapshot()
			if snap.Status.Active() {
				t.bus.Publish(events.NewProgressEvent(snap))
			}
		}
	}
}
