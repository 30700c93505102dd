package events

import (
	"time"

	"tessnode/internal/api/models"
	"tessnode/internal/progress"
)

// NewProgressEvent wraps a progress snapshot for broadcast on the bus.
func NewProgressEvent(snap progress.Snapshot) TrainingProgressEvent {
	return TrainingProgressEvent{
		Progress:  models.FromSnapshot(snap),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
