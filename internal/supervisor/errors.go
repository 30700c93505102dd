package supervisor

import (
	"errors"
	"fmt"
)

// ErrAlreadyRunning is returned by Start while another run is active.
var ErrAlreadyRunning = errors.New("supervisor: training already running")

// SpawnError wraps a failure to launch the training process. The run
// never leaves idle when Start returns one.
type SpawnError struct {
	Executable string
	Err        error
}

// Error formats the spawn failure with its executable context.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("supervisor: failed to spawn %s: %v", e.Executable, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *SpawnError) Unwrap() error {
	return e.Err
}

// StreamReadExitCode is the sentinel exit code recorded when the output
// stream fails mid-run and the process has to be reaped early.
const StreamReadExitCode = -1
