package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func resetState() {
	mutex.Lock()
	moduleLoggers = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	isInitialized = false
	globalConfig = Config{}
	logBuffer = nil
	logCallback = nil
	mutex.Unlock()
}

func TestModuleLevelOverride(t *testing.T) {
	resetState()

	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"supervisor": "debug",
			"api":        "warn",
		},
	})

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"supervisor", true, true, true},
		{"api", false, false, true},
		{"other", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			handler := GetLogger(tt.module).Handler()

			if got := handler.Enabled(context.Background(), slog.LevelDebug); got != tt.wantDebug {
				t.Errorf("module %q: Debug enabled = %v, want %v", tt.module, got, tt.wantDebug)
			}
			if got := handler.Enabled(context.Background(), slog.LevelInfo); got != tt.wantInfo {
				t.Errorf("module %q: Info enabled = %v, want %v", tt.module, got, tt.wantInfo)
			}
			if got := handler.Enabled(context.Background(), slog.LevelWarn); got != tt.wantWarn {
				t.Errorf("module %q: Warn enabled = %v, want %v", tt.module, got, tt.wantWarn)
			}
		})
	}
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	resetState()

	// Logger created before Initialize defaults to info level.
	loggerBefore := GetLogger("telemetry")
	handlerBefore := loggerBefore.Handler()
	if handlerBefore.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("logger created before Initialize should not have debug enabled")
	}

	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"telemetry": "debug",
		},
	})

	// Same cached logger, level updated through the LevelVar.
	if loggerAfter := GetLogger("telemetry"); loggerBefore != loggerAfter {
		t.Error("logger should be cached across Initialize")
	}
	if !handlerBefore.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("cached logger should have debug enabled after Initialize")
	}
}

func TestBufferReceivesRecords(t *testing.T) {
	resetState()

	Initialize(Config{Level: "info", Format: "text"})

	logger := GetLogger("supervisor")
	logger.Info("Training process started", "pid", 42)
	logger.Debug("filtered out")

	entries := GetBuffer().ReadAll()
	if len(entries) != 1 {
		t.Fatalf("buffer entries = %d, want 1", len(entries))
	}
	entry := entries[0]
	if entry.Module != "supervisor" {
		t.Errorf("module = %q, want supervisor", entry.Module)
	}
	if entry.Level != "info" {
		t.Errorf("level = %q, want info", entry.Level)
	}
	if entry.Message != "Training process started" {
		t.Errorf("message = %q", entry.Message)
	}
	if entry.Attributes["pid"] != int64(42) {
		t.Errorf("pid attribute = %v (%T), want 42", entry.Attributes["pid"], entry.Attributes["pid"])
	}
}

func TestLogCallback(t *testing.T) {
	resetState()

	Initialize(Config{Level: "info", Format: "text"})

	got := make(chan LogEntry, 1)
	SetLogCallback(func(entry LogEntry) {
		select {
		case got <- entry:
		default:
		}
	})

	GetLogger("api").Info("request handled")

	select {
	case entry := <-got:
		if entry.Message != "request handled" || entry.Module != "api" {
			t.Errorf("unexpected callback entry: %+v", entry)
		}
	default:
		t.Fatal("callback was not invoked")
	}
}

func TestRingBufferWraps(t *testing.T) {
	rb := NewRingBuffer(3)
	for i := 0; i < 5; i++ {
		rb.Write(LogEntry{Message: string(rune('a' + i))})
	}

	if rb.Count() != 3 {
		t.Fatalf("count = %d, want 3", rb.Count())
	}
	entries := rb.ReadAll()
	want := []string{"c", "d", "e"}
	for i, w := range want {
		if entries[i].Message != w {
			t.Errorf("entries[%d] = %q, want %q", i, entries[i].Message, w)
		}
	}
}

func TestRingBufferEmpty(t *testing.T) {
	rb := NewRingBuffer(4)
	if entries := rb.ReadAll(); entries != nil {
		t.Errorf("expected nil from empty buffer, got %v", entries)
	}
}

func TestFanoutDeliversToAllSinks(t *testing.T) {
	var out1, out2 bytes.Buffer
	h := newFanout(
		slog.NewTextHandler(&out1, &slog.HandlerOptions{Level: slog.LevelInfo}),
		nil,
		slog.NewTextHandler(&out2, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)

	logger := slog.New(h)
	logger.Info("info record")
	logger.Warn("warn record")

	if got := strings.Count(out1.String(), "msg="); got != 2 {
		t.Errorf("first sink received %d records, want 2", got)
	}
	if strings.Contains(out2.String(), "info record") {
		t.Error("second sink should filter info records")
	}
	if !strings.Contains(out2.String(), "warn record") {
		t.Error("second sink did not receive the warn record")
	}
}

func TestFanoutSingleSinkUnwrapped(t *testing.T) {
	sink := slog.NewTextHandler(&bytes.Buffer{}, nil)
	if got := newFanout(nil, sink, nil); got != slog.Handler(sink) {
		t.Errorf("single remaining sink should be returned directly, got %T", got)
	}
}

func TestFormatLogLine(t *testing.T) {
	entry := LogEntry{
		Timestamp: time.Date(2025, 1, 27, 10, 30, 0, 0, time.UTC),
		Level:     "info",
		Module:    "supervisor",
		Message:   "Training phase changed",
		Attributes: map[string]any{
			"phase": "Starting LSTM training",
		},
	}
	line := FormatLogLine(entry)
	want := "2025-01-27T10:30:00Z [INFO] [supervisor] Training phase changed phase=Starting LSTM training"
	if line != want {
		t.Errorf("FormatLogLine = %q, want %q", line, want)
	}
}

func TestParseLevelValues(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
		isNil bool
	}{
		{"debug", slog.LevelDebug, false},
		{"DEBUG", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"invalid", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLevel(tt.input)
			if tt.isNil {
				if got != nil {
					t.Errorf("parseLevel(%q) = %v, want nil", tt.input, *got)
				}
				return
			}
			if got == nil {
				t.Errorf("parseLevel(%q) = nil, want %v", tt.input, tt.want)
			} else if *got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, *got, tt.want)
			}
		})
	}
}
