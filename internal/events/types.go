package events

import "tessnode/internal/api/models"

// Event type constants for kelindar/event.
const (
	TypeTrainingStarted uint32 = iota + 1
	TypeTrainingProgress
	TypeTrainingExited
	TypeRawLine
	TypePhaseChanged
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// TrainingStartedEvent is published when the supervisor spawns a run.
type TrainingStartedEvent struct {
	ModelName     string `json:"model_name" example:"urd_custom" doc:"Model being trained"`
	TotalSamples  int    `json:"total_samples" example:"312" doc:"Samples found in the ground-truth dataset"`
	MaxIterations int    `json:"max_iterations" example:"10000" doc:"Configured iteration budget"`
	PID           int    `json:"pid" example:"12345" doc:"OS process id of the training process"`
	Timestamp     string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for TrainingStartedEvent.
func (e TrainingStartedEvent) Type() uint32 { return TypeTrainingStarted }

// TrainingProgressEvent carries a full progress snapshot. Published on
// every status change and on each ticker refresh.
type TrainingProgressEvent struct {
	Progress  models.TrainingStatusData `json:"progress" doc:"Current progress snapshot"`
	Timestamp string                    `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for TrainingProgressEvent.
func (e TrainingProgressEvent) Type() uint32 { return TypeTrainingProgress }

// TrainingExitedEvent is published once the process has been reaped.
type TrainingExitedEvent struct {
	ExitCode  int                  `json:"exit_code" example:"0" doc:"Process exit code, negative when killed by signal"`
	Status    string               `json:"status" example:"completed" doc:"Terminal run status"`
	Artifact  *models.ArtifactData `json:"artifact,omitempty" doc:"Trained model location when the run completed"`
	Timestamp string               `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for TrainingExitedEvent.
func (e TrainingExitedEvent) Type() uint32 { return TypeTrainingExited }

// RawLineEvent forwards one untouched line of process output.
type RawLineEvent struct {
	Line      string `json:"line" doc:"Raw output line from the training process"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for RawLineEvent.
func (e RawLineEvent) Type() uint32 { return TypeRawLine }

// PhaseChangedEvent announces entry into a named training sub-phase.
type PhaseChangedEvent struct {
	Label     string `json:"label" example:"Extracting character set" doc:"Human-readable phase name"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PhaseChangedEvent.
func (e PhaseChangedEvent) Type() uint32 { return TypePhaseChanged }

// LogEntryEvent mirrors one structured log record for SSE subscribers.
type LogEntryEvent struct {
	Timestamp  string         `json:"timestamp" example:"2025-01-27T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"supervisor" doc:"Originating module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
