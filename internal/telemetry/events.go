// Package telemetry extracts structured training progress from the
// unstructured console output of the tesstrain toolchain.
package telemetry

// Event is a single structured fact extracted from one line of process
// output. Exactly one of the concrete types below is produced per line.
type Event interface {
	isEvent()
}

// NoOp marks a line that carried no recognizable telemetry.
type NoOp struct{}

// SampleProcessed marks one ground-truth sample passing through the
// per-sample tesseract invocation.
type SampleProcessed struct{}

// IterationUpdate carries the iteration counter and live BCER reported
// by lstmtraining.
type IterationUpdate struct {
	Iteration   int
	BCERPercent float64
}

// BestErrorUpdate carries a new checkpoint best BCER.
type BestErrorUpdate struct {
	BCERPercent float64
}

// PhaseChanged marks entry into a named sub-phase of the training run.
type PhaseChanged struct {
	Label string
}

func (NoOp) isEvent()            {}
func (SampleProcessed) isEvent() {}
func (IterationUpdate) isEvent() {}
func (BestErrorUpdate) isEvent() {}
func (PhaseChanged) isEvent()    {}
