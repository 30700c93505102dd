// Package progress holds the mutable aggregate of one training run,
// written by the supervisor's reader loop and read concurrently by
// pollers (API, ticker, metrics).
package progress

import (
	"errors"
	"sync"
	"time"

	"tessnode/internal/telemetry"
)

// ErrNotTerminal is returned when Reset is called mid-run.
var ErrNotTerminal = errors.New("progress: run is not in a terminal state")

// Snapshot is an immutable copy of the run state, safe to read without
// locking. ExitCode is only meaningful when HasExited is true; error
// rates are only meaningful when the corresponding Has flag is set.
type Snapshot struct {
	Status           Status
	TotalSamples     int
	ProcessedSamples int
	MaxIterations    int
	CurrentIteration int
	CurrentErrorRate float64
	HasErrorRate     bool
	BestErrorRate    float64
	HasBestErrorRate bool
	PhaseLabel       string
	StartedAt        time.Time
	ExitCode         int
	HasExited        bool
}

// Elapsed returns the wall-clock time since the run started, or zero if
// no run has started. Derived on read so the state carries no clock loop.
func (s Snapshot) Elapsed() time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	return time.Since(s.StartedAt)
}

// State is the single-writer-many-reader progress aggregate. All writes
// go through Apply and the lifecycle transitions; every read returns a
// full copy under the same mutex so a Snapshot is never torn.
type State struct {
	mu   sync.RWMutex
	snap Snapshot
}

// New creates an idle state.
func New() *State {
	return &State{snap: Snapshot{Status: StatusIdle}}
}

// Apply folds one telemetry event into the state. NoOp leaves the state
// untouched. Invoked only from the supervisor's reader goroutine.
func (s *State) Apply(ev telemetry.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e := ev.(type) {
	case telemetry.SampleProcessed:
		s.snap.ProcessedSamples++
		if s.snap.TotalSamples > 0 && s.snap.ProcessedSamples > s.snap.TotalSamples {
			s.snap.ProcessedSamples = s.snap.TotalSamples
		}
	case telemetry.IterationUpdate:
		if e.Iteration > s.snap.CurrentIteration {
			s.snap.CurrentIteration = e.Iteration
		}
		s.snap.CurrentErrorRate = e.BCERPercent
		s.snap.HasErrorRate = true
	case telemetry.BestErrorUpdate:
		if !s.snap.HasBestErrorRate || e.BCERPercent < s.snap.BestErrorRate {
			s.snap.BestErrorRate = e.BCERPercent
			s.snap.HasBestErrorRate = true
		}
	case telemetry.PhaseChanged:
		s.snap.PhaseLabel = e.Label
	}
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Reset reinitializes the state to idle. Only legal once the run has
// reached a terminal status.
func (s *State) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.snap.Status.Terminal() {
		return ErrNotTerminal
	}
	s.snap = Snapshot{Status: StatusIdle}
	return nil
}

// MarkRunning transitions to Running, clearing any prior terminal fields
// and recording the dataset and iteration budget for the new run.
func (s *State) MarkRunning(totalSamples, maxIterations int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap = Snapshot{
		Status:        StatusRunning,
		TotalSamples:  totalSamples,
		MaxIterations: maxIterations,
		StartedAt:     time.Now(),
	}
}

// MarkStopping records a caller-initiated stop request. No-op unless the
// run is currently Running.
func (s *State) MarkStopping() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.Status == StatusRunning {
		s.snap.Status = StatusStopping
	}
}

// MarkExited records the terminal transition once the process has been
// reaped. A caller-initiated stop yields Stopped when the process died to
// our signal (negative exit code); a process that finished on its own
// during the grace window keeps its natural Completed/Failed outcome.
func (s *State) MarkExited(exitCode int, stopRequested bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.ExitCode = exitCode
	s.snap.HasExited = true

	switch {
	case stopRequested && exitCode < 0:
		s.snap.Status = StatusStopped
	case exitCode == 0:
		s.snap.Status = StatusCompleted
	default:
		s.snap.Status = StatusFailed
	}
}
