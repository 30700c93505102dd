package models

import (
	"time"

	"tessnode/internal/progress"
)

// FromSnapshot flattens a progress snapshot into the API view. Optional
// fields come out as nil pointers until the underlying value has been
// observed.
func FromSnapshot(snap progress.Snapshot) TrainingStatusData {
	data := TrainingStatusData{
		Status:           string(snap.Status),
		TotalSamples:     snap.TotalSamples,
		ProcessedSamples: snap.ProcessedSamples,
		MaxIterations:    snap.MaxIterations,
		CurrentIteration: snap.CurrentIteration,
		PhaseLabel:       snap.PhaseLabel,
		ElapsedSeconds:   int64(snap.Elapsed().Seconds()),
	}
	if snap.HasErrorRate {
		rate := snap.CurrentErrorRate
		data.CurrentErrorRate = &rate
	}
	if snap.HasBestErrorRate {
		rate := snap.BestErrorRate
		data.BestErrorRate = &rate
	}
	if !snap.StartedAt.IsZero() {
		data.StartedAt = snap.StartedAt.UTC().Format(time.RFC3339)
	}
	if snap.HasExited {
		code := snap.ExitCode
		data.ExitCode = &code
	}
	return data
}
