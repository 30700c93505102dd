// Package cmd holds the standalone CLI subcommands.
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tessnode/internal/config"
	"tessnode/internal/events"
	"tessnode/internal/logging"
	"tessnode/internal/supervisor"
)

// CreateTrainCmd creates the train command: a one-off foreground
// training run without the API server.
func CreateTrainCmd() *cobra.Command {
	var (
		jobName        string
		jobsConfigFile string
		modelName      string
		startModel     string
		langType       string
		tessdataDir    string
		groundTruthDir string
		maxIterations  int
		workDir        string
		gracePeriod    time.Duration
		logJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Run a training job in the foreground",
		Long: `Spawns the tesstrain make pipeline and streams its output to the console. ` +
			`The job comes either from a stored preset (--job) or from the individual flags. ` +
			`SIGINT and SIGTERM trigger a graceful stop with SIGKILL escalation.`,
		Run: func(_ *cobra.Command, _ []string) {
			loggingConfig := logging.Config{
				Level:  "info",
				Format: "text",
			}
			if logJSON {
				loggingConfig.Format = "json"
			}
			logging.Initialize(loggingConfig)
			logger := logging.GetLogger("train")

			job := supervisor.Job{
				ModelName:      modelName,
				StartModel:     startModel,
				LangType:       langType,
				TessdataDir:    tessdataDir,
				GroundTruthDir: groundTruthDir,
				MaxIterations:  maxIterations,
				WorkDir:        workDir,
			}

			if jobName != "" {
				jm := config.NewJobManager(jobsConfigFile)
				if err := jm.Load(); err != nil {
					logger.Error("Failed to load job presets", "error", err)
					os.Exit(1)
				}
				preset, ok := jm.GetJob(jobName)
				if !ok {
					logger.Error("Job preset not found", "job", jobName)
					os.Exit(1)
				}
				job = preset.ToJob()
			}

			bus := events.New()
			sup := supervisor.New(supervisor.Config{
				Bus:    bus,
				Logger: logger.With("model", job.ModelName),
				RawLineSink: func(line string) {
					fmt.Println(line)
				},
			})

			exitCh := make(chan events.TrainingExitedEvent, 1)
			unsubscribe := bus.Subscribe(func(ev events.TrainingExitedEvent) {
				select {
				case exitCh <- ev:
				default:
				}
			})
			defer unsubscribe()

			if err := sup.Start(job); err != nil {
				logger.Error("Failed to start training", "error", err)
				os.Exit(1)
			}

			// When running from a preset, watch the preset file: removing
			// the preset mid-run stops the training.
			if jobName != "" {
				presetLoader := func(path string) (map[string]config.JobConfig, error) {
					jm := config.NewJobManager(path)
					if err := jm.Load(); err != nil {
						return nil, err
					}
					return jm.GetJobs(), nil
				}
				watcher := config.NewConfigWatcher(jobsConfigFile, presetLoader, logger)
				watcher.OnReload(func(presets map[string]config.JobConfig) {
					if _, ok := presets[jobName]; !ok {
						logger.Warn("Job preset removed from config, stopping training")
						go sup.Stop(gracePeriod)
					}
				})
				if err := watcher.Start(); err != nil {
					logger.Warn("Failed to start config watcher", "error", err)
				} else {
					defer func() { _ = watcher.Stop() }()
				}
			}

			signals := make(chan os.Signal, 1)
			signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

			for {
				select {
				case sig := <-signals:
					logger.Info("Signal received, stopping training", "signal", sig.String())
					go sup.Stop(gracePeriod)
				case ev := <-exitCh:
					snap := sup.Status()
					logger.Info("Training finished",
						"status", ev.Status,
						"exit_code", ev.ExitCode,
						"iterations", snap.CurrentIteration,
						"elapsed", snap.Elapsed().Round(time.Second))
					if ev.Artifact != nil && ev.Artifact.Found {
						logger.Info("Trained model written", "path", ev.Artifact.Path)
					}
					switch {
					case ev.ExitCode == 0:
						os.Exit(0)
					case ev.ExitCode > 0:
						os.Exit(ev.ExitCode)
					default:
						// Killed by signal (stopped or stream failure).
						os.Exit(1)
					}
				}
			}
		},
	}

	cmd.Flags().StringVar(&jobName, "job", "", "Stored job preset to run")
	cmd.Flags().StringVar(&jobsConfigFile, "jobs-config", "jobs.toml", "Path to job presets file")
	cmd.Flags().StringVar(&modelName, "model-name", "", "Name of the model to train")
	cmd.Flags().StringVar(&startModel, "start-model", "", "Base traineddata model to fine-tune")
	cmd.Flags().StringVar(&langType, "lang-type", "", "tesstrain LANG_TYPE tag (defaults to Indic)")
	cmd.Flags().StringVar(&tessdataDir, "tessdata", "", "Directory containing the start model")
	cmd.Flags().StringVar(&groundTruthDir, "ground-truth-dir", "", "Directory of .tif/.gt.txt sample pairs")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 10000, "Iteration budget passed to lstmtraining")
	cmd.Flags().StringVar(&workDir, "work-dir", "", "tesstrain checkout to run make in")
	cmd.Flags().DurationVar(&gracePeriod, "grace-period", supervisor.DefaultGracePeriod,
		"How long to wait after SIGTERM before SIGKILL")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Use JSON log format")

	return cmd
}
