package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

type testOptions struct {
	Config        string
	Host          string `toml:"server.host" env:"HOST"`
	Port          int    `toml:"server.port" env:"PORT"`
	Debug         bool   `toml:"debug" env:"DEBUG"`
	LoggingLevel  string `toml:"logging.level" env:"LOGGING_LEVEL"`
	MaxIterations int    `toml:"training.max_iterations" env:"MAX_ITERATIONS"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tessnode.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigFromTOML(t *testing.T) {
	path := writeConfig(t, `
debug = true

[server]
host = "0.0.0.0"
port = 9090

[logging]
level = "debug"

[training]
max_iterations = 20000
`)

	opts := testOptions{Config: path, Host: "localhost", Port: 8080}
	if err := LoadConfig(&opts, nil); err != nil {
		t.Fatalf("load: %v", err)
	}

	if opts.Host != "0.0.0.0" {
		t.Errorf("host = %q, want 0.0.0.0", opts.Host)
	}
	if opts.Port != 9090 {
		t.Errorf("port = %d, want 9090", opts.Port)
	}
	if !opts.Debug {
		t.Error("debug should be true")
	}
	if opts.LoggingLevel != "debug" {
		t.Errorf("logging level = %q, want debug", opts.LoggingLevel)
	}
	if opts.MaxIterations != 20000 {
		t.Errorf("max iterations = %d, want 20000", opts.MaxIterations)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 9090
`)
	t.Setenv("TESSNODE_PORT", "7070")

	opts := testOptions{Config: path}
	if err := LoadConfig(&opts, nil); err != nil {
		t.Fatalf("load: %v", err)
	}
	if opts.Port != 7070 {
		t.Errorf("port = %d, want env override 7070", opts.Port)
	}
}

func TestLoadConfigCLIWins(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 9090
`)
	t.Setenv("TESSNODE_PORT", "7070")

	opts := testOptions{Config: path}
	cmd := &cobra.Command{}
	cmd.Flags().IntVar(&opts.Port, "port", 8080, "")
	if err := cmd.Flags().Set("port", "6060"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	if err := LoadConfig(&opts, cmd); err != nil {
		t.Fatalf("load: %v", err)
	}
	if opts.Port != 6060 {
		t.Errorf("port = %d, want CLI value 6060", opts.Port)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	opts := testOptions{Config: "/nonexistent/tessnode.toml", Port: 8080}
	if err := LoadConfig(&opts, nil); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if opts.Port != 8080 {
		t.Errorf("port = %d, want default 8080", opts.Port)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := writeConfig(t, "not [valid toml")
	opts := testOptions{Config: path}
	if err := LoadConfig(&opts, nil); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFieldNameToFlag(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Port", "port"},
		{"LoggingLevel", "logging-level"},
		{"GroundTruthDir", "ground-truth-dir"},
		{"MaxIterations", "max-iterations"},
	}
	for _, tt := range tests {
		if got := fieldNameToFlag(tt.in); got != tt.want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadLoggingConfig(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "debug"
format = "json"
supervisor = "debug"
api = "warn"
`)

	cfg := LoadLoggingConfig(path)
	if cfg.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("format = %q, want json", cfg.Format)
	}
	if cfg.Modules["supervisor"] != "debug" || cfg.Modules["api"] != "warn" {
		t.Errorf("modules = %v", cfg.Modules)
	}
}

func TestLoadLoggingConfigDefaults(t *testing.T) {
	cfg := LoadLoggingConfig("")
	if cfg.Level != "info" || cfg.Format != "text" {
		t.Errorf("defaults = %+v", cfg)
	}

	cfg = LoadLoggingConfig("/nonexistent/tessnode.toml")
	if cfg.Level != "info" {
		t.Errorf("level = %q, want info for missing file", cfg.Level)
	}
}
