package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tessnode/cmd"
	"tessnode/internal/api"
	"tessnode/internal/config"
	"tessnode/internal/events"
	"tessnode/internal/logging"
	"tessnode/internal/metrics"
	"tessnode/internal/progress"
	"tessnode/internal/supervisor"
	"tessnode/internal/ticker"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8880" toml:"server.port" env:"SERVER_PORT"`

	// Training settings
	JobsConfigFile  string `help:"Job preset definitions file" default:"jobs.toml" toml:"training.jobs_file" env:"TRAINING_JOBS_FILE"`
	GracePeriodSecs int    `help:"Seconds between SIGTERM and SIGKILL on stop" default:"5" toml:"training.grace_period_seconds" env:"TRAINING_GRACE_PERIOD"`
	TickerInterval  string `help:"Progress broadcast interval" default:"1s" toml:"training.ticker_interval" env:"TRAINING_TICKER_INTERVAL"`

	// Metrics settings
	MetricsEnabled bool `help:"Enable Prometheus metrics endpoint" default:"true" toml:"metrics.enabled" env:"METRICS_ENABLED"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"admin" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"password" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Logging settings
	LoggingLevel      string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat     string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingSupervisor string `help:"Supervisor logging level" default:"info" toml:"logging.supervisor" env:"LOGGING_SUPERVISOR"`
	LoggingTelemetry  string `help:"Telemetry parser logging level" default:"info" toml:"logging.telemetry" env:"LOGGING_TELEMETRY"`
	LoggingAPI        string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingHTTP       string `help:"HTTP request logging level" default:"info" toml:"logging.http" env:"LOGGING_HTTP"`
	LoggingConfig     string `help:"Config loader logging level" default:"info" toml:"logging.config" env:"LOGGING_CONFIG"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, nil); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		loggingConfig := logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"supervisor": opts.LoggingSupervisor,
				"telemetry":  opts.LoggingTelemetry,
				"api":        opts.LoggingAPI,
				"http":       opts.LoggingHTTP,
				"config":     opts.LoggingConfig,
			},
		}
		logging.Initialize(loggingConfig)

		logger := logging.GetLogger("main")

		// Create event bus for in-process event handling
		eventBus := events.New()

		// Forward every log record to SSE subscribers
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(events.LogEntryEvent{
				Timestamp:  entry.Timestamp.UTC().Format(time.RFC3339Nano),
				Level:      entry.Level,
				Module:     entry.Module,
				Message:    entry.Message,
				Attributes: entry.Attributes,
			})
		})

		state := progress.New()

		sup := supervisor.New(supervisor.Config{
			State:  state,
			Bus:    eventBus,
			Logger: logging.GetLogger("supervisor"),
		})

		jobManager := config.NewJobManager(opts.JobsConfigFile)
		if loadErr := jobManager.Load(); loadErr != nil {
			logger.Warn("Failed to load job presets", "error", loadErr)
		}

		// Prometheus gauges track the bus alongside the SSE consumers
		unsubscribeMetrics := metrics.SubscribeBus(eventBus)

		tickerInterval, err := time.ParseDuration(opts.TickerInterval)
		if err != nil {
			tickerInterval = ticker.DefaultInterval
		}
		progressTicker := ticker.New(state, eventBus, logging.GetLogger("ticker"), tickerInterval)
		tickerCtx, stopTicker := context.WithCancel(context.Background())

		apiOpts := &api.Options{
			AuthUsername: opts.AuthUsername,
			AuthPassword: opts.AuthPassword,
			Supervisor:   sup,
			JobManager:   jobManager,
			EventBus:     eventBus,
		}
		if opts.MetricsEnabled {
			apiOpts.PrometheusHandler = promhttp.Handler()
		}

		server := api.NewServer(apiOpts)

		hooks.OnStart(func() {
			go progressTicker.Run(tickerCtx)

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down server")
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}

			// Stop a running training after the HTTP server stops
			// accepting new requests.
			sup.Stop(time.Duration(opts.GracePeriodSecs) * time.Second)

			stopTicker()
			unsubscribeMetrics()
		})
	})

	cli.Root().AddCommand(cmd.CreateTrainCmd())
	cli.Root().AddCommand(cmd.CreateDatasetCmd())

	cli.Run()
}
