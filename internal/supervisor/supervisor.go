// Package supervisor owns the lifecycle of the external training
// process: spawning it, draining its combined output into telemetry,
// and tearing it down with graceful-to-forced escalation.
package supervisor

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"tessnode/internal/dataset"
	"tessnode/internal/events"
	"tessnode/internal/progress"
	"tessnode/internal/telemetry"
)

// DefaultGracePeriod is how long Stop waits after SIGTERM before SIGKILL.
const DefaultGracePeriod = 5 * time.Second

// maxLineBytes bounds a single output line. The training tools normally
// emit short lines, but a runaway line must not abort the run, so this
// sits well above bufio's 64 KiB default.
const maxLineBytes = 1024 * 1024

// Config wires the supervisor's collaborators.
type Config struct {
	State  *progress.State
	Bus    *events.Bus
	Logger *slog.Logger

	// RawLineSink receives every output line unmodified (log display).
	RawLineSink func(line string)

	// CountSamples reports the dataset size before spawn. Defaults to
	// counting .tif files in the ground-truth directory.
	CountSamples func(dir string) int

	// KillTimeout bounds the wait after SIGKILL before giving up on the
	// reap. Defaults to 5s.
	KillTimeout time.Duration
}

// Supervisor runs at most one training process at a time.
type Supervisor struct {
	state        *progress.State
	bus          *events.Bus
	logger       *slog.Logger
	rawLineSink  func(string)
	countSamples func(string) int
	killTimeout  time.Duration

	mu            sync.Mutex
	cmd           *exec.Cmd
	job           Job
	exited        chan struct{}
	stopOnce      *sync.Once
	stopRequested atomic.Bool
}

// New creates a supervisor. State and Bus may be shared with other
// readers; nil fields get working defaults.
func New(cfg Config) *Supervisor {
	s := &Supervisor{
		state:        cfg.State,
		bus:          cfg.Bus,
		logger:       cfg.Logger,
		rawLineSink:  cfg.RawLineSink,
		countSamples: cfg.CountSamples,
		killTimeout:  cfg.KillTimeout,
	}
	if s.state == nil {
		s.state = progress.New()
	}
	if s.bus == nil {
		s.bus = events.New()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.countSamples == nil {
		s.countSamples = func(dir string) int {
			summary, err := dataset.Inspect(dir)
			if err != nil {
				return 0
			}
			return summary.ImageCount
		}
	}
	if s.killTimeout <= 0 {
		s.killTimeout = 5 * time.Second
	}
	return s
}

// Start spawns the training process for job. It fails with
// ErrAlreadyRunning while a run is active and with a SpawnError when the
// process cannot be launched; in both cases the state is untouched.
func (s *Supervisor) Start(job Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Snapshot().Status.Active() {
		return ErrAlreadyRunning
	}

	cmd := exec.Command(job.executable(), job.Args()...)
	cmd.Dir = job.WorkDir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	// Single pipe keeps stdout and stderr as one ordered stream.
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &SpawnError{Executable: job.executable(), Err: err}
	}
	cmd.Stderr = cmd.Stdout

	totalSamples := s.countSamples(job.GroundTruthDir)

	if err := cmd.Start(); err != nil {
		return &SpawnError{Executable: job.executable(), Err: err}
	}

	s.cmd = cmd
	s.job = job
	s.exited = make(chan struct{})
	s.stopOnce = new(sync.Once)
	s.stopRequested.Store(false)

	s.state.MarkRunning(totalSamples, job.MaxIterations)

	s.logger.Info("Training process started",
		"model", job.ModelName, "pid", cmd.Process.Pid,
		"samples", totalSamples, "max_iterations", job.MaxIterations)

	s.bus.Publish(events.TrainingStartedEvent{
		ModelName:     job.ModelName,
		TotalSamples:  totalSamples,
		MaxIterations: job.MaxIterations,
		PID:           cmd.Process.Pid,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
	s.publishProgress()

	go s.run(cmd, job, stdout, s.exited)
	return nil
}

// Stop requests termination of the active run and blocks until the
// process has been reaped. Calling it when no run is active is a no-op.
// Concurrent calls are safe: the escalation runs once, every caller
// waits for the single terminal transition.
func (s *Supervisor) Stop(gracePeriod time.Duration) {
	if gracePeriod <= 0 {
		gracePeriod = DefaultGracePeriod
	}

	s.mu.Lock()
	if s.cmd == nil || !s.state.Snapshot().Status.Active() {
		s.mu.Unlock()
		return
	}
	cmd := s.cmd
	exited := s.exited
	once := s.stopOnce
	s.mu.Unlock()

	s.stopRequested.Store(true)
	s.state.MarkStopping()
	s.publishProgress()

	once.Do(func() {
		s.logger.Info("Sending SIGTERM to training process", "pid", cmd.Process.Pid)
		s.signalGroup(cmd, syscall.SIGTERM)

		select {
		case <-exited:
			return
		case <-time.After(gracePeriod):
			// Expected when the toolchain ignores SIGTERM; escalate.
			s.logger.Warn("Graceful shutdown timeout, forcing kill", "timeout", gracePeriod)
			s.signalGroup(cmd, syscall.SIGKILL)
		}
	})

	select {
	case <-exited:
	case <-time.After(s.killTimeout):
		s.logger.Error("Training process did not exit after kill signal")
	}
}

// Job returns the most recently started job. ok is false before the
// first Start.
func (s *Supervisor) Job() (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.job, s.cmd != nil
}

// Status returns the current progress snapshot. Safe from any goroutine.
func (s *Supervisor) Status() progress.Snapshot {
	return s.state.Snapshot()
}

// Reset returns the supervisor to idle. Only legal once the run has
// reached a terminal status.
func (s *Supervisor) Reset() error {
	return s.state.Reset()
}

// run drains the output stream, reaps the process, and performs the
// single terminal transition for this run.
func (s *Supervisor) run(cmd *exec.Cmd, job Job, stdout io.Reader, exited chan struct{}) {
	readErr := s.readLoop(stdout)
	if readErr != nil {
		// Output is gone but the process may still be alive; reap it the
		// same way a forced stop would.
		s.logger.Error("Output stream failed, killing training process", "error", readErr)
		s.signalGroup(cmd, syscall.SIGKILL)
	}

	waitErr := cmd.Wait()
	exitCode := exitCodeFromError(waitErr)
	if readErr != nil {
		exitCode = StreamReadExitCode
	}
	stopRequested := s.stopRequested.Load()

	s.state.MarkExited(exitCode, stopRequested)
	snap := s.state.Snapshot()

	s.logger.Info("Training process exited",
		"exit_code", exitCode, "status", string(snap.Status))

	exitEvent := events.TrainingExitedEvent{
		ExitCode:  exitCode,
		Status:    string(snap.Status),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if snap.Status == progress.StatusCompleted {
		exitEvent.Artifact = LocateArtifact(job)
	}
	s.bus.Publish(exitEvent)
	s.publishProgress()

	close(exited)
}

// readLoop scans the combined output stream line by line, forwarding the
// raw line and folding extracted telemetry into the progress state.
// Telemetry extraction is never fatal: unrecognized lines are discarded.
func (s *Supervisor) readLoop(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Text()

		if s.rawLineSink != nil {
			s.rawLineSink(line)
		}
		s.bus.Publish(events.RawLineEvent{
			Line:      line,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})

		ev := telemetry.Parse(line)
		s.state.Apply(ev)

		if phase, ok := ev.(telemetry.PhaseChanged); ok {
			s.logger.Info("Training phase changed", "phase", phase.Label)
			s.bus.Publish(events.PhaseChangedEvent{
				Label:     phase.Label,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
			s.publishProgress()
		}
	}
	return scanner.Err()
}

// publishProgress broadcasts the current snapshot on the bus.
func (s *Supervisor) publishProgress() {
	s.bus.Publish(events.NewProgressEvent(s.state.Snapshot()))
}

// signalGroup signals the whole process group so children spawned by
// make (lstmtraining, tesseract) go down with it.
func (s *Supervisor) signalGroup(cmd *exec.Cmd, sig syscall.Signal) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	if cmd.Process.Pid > 0 {
		_ = syscall.Kill(-cmd.Process.Pid, sig)
	}
	if err := cmd.Process.Signal(sig); err != nil {
		// "os: process already finished" means the process exited
		// between our check and the signal.
		if !errors.Is(err, os.ErrProcessDone) {
			s.logger.Debug("Failed to signal process", "signal", sig.String(), "error", err)
		}
	}
}

// exitCodeFromError extracts the exit code from a Wait error. Returns 0
// for nil, the real code (or -signal) for ExitError, and -1 otherwise.
func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
