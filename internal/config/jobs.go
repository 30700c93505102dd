package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"tessnode/internal/supervisor"
)

// JobConfig is a named training job preset persisted in jobs.toml.
type JobConfig struct {
	Name           string `toml:"name" json:"name"`
	ModelName      string `toml:"model_name" json:"model_name"`
	StartModel     string `toml:"start_model" json:"start_model"`
	LangType       string `toml:"lang_type,omitempty" json:"lang_type,omitempty"`
	TessdataDir    string `toml:"tessdata_dir" json:"tessdata_dir"`
	GroundTruthDir string `toml:"ground_truth_dir" json:"ground_truth_dir"`
	MaxIterations  int    `toml:"max_iterations" json:"max_iterations"`
	WorkDir        string `toml:"work_dir" json:"work_dir"`

	CreatedAt time.Time `toml:"created_at" json:"created_at"`
	UpdatedAt time.Time `toml:"updated_at" json:"updated_at"`
}

// ToJob converts the preset into a runnable job.
func (jc JobConfig) ToJob() supervisor.Job {
	return supervisor.Job{
		ModelName:      jc.ModelName,
		StartModel:     jc.StartModel,
		LangType:       jc.LangType,
		TessdataDir:    jc.TessdataDir,
		GroundTruthDir: jc.GroundTruthDir,
		MaxIterations:  jc.MaxIterations,
		WorkDir:        jc.WorkDir,
	}
}

// JobsConfig is the complete job preset file.
type JobsConfig struct {
	Version int                  `toml:"version" json:"version"`
	Jobs    map[string]JobConfig `toml:"jobs" json:"jobs"`
}

// JobManager manages training job presets.
type JobManager struct {
	configPath string
	config     *JobsConfig
}

// NewJobManager creates a job manager backed by configPath, defaulting
// to jobs.toml in the working directory.
func NewJobManager(configPath string) *JobManager {
	if configPath == "" {
		configPath = "jobs.toml"
	}
	return &JobManager{
		configPath: configPath,
		config: &JobsConfig{
			Version: 1,
			Jobs:    make(map[string]JobConfig),
		},
	}
}

// Load reads the preset file. A missing file leaves the manager empty.
func (jm *JobManager) Load() error {
	if _, err := os.Stat(jm.configPath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(jm.configPath)
	if err != nil {
		return fmt.Errorf("failed to read jobs config: %w", err)
	}
	if err := toml.Unmarshal(data, jm.config); err != nil {
		return fmt.Errorf("failed to parse jobs config: %w", err)
	}

	if jm.config.Jobs == nil {
		jm.config.Jobs = make(map[string]JobConfig)
	}
	if jm.config.Version == 0 {
		jm.config.Version = 1
	}
	return nil
}

// Save writes the presets back to disk.
func (jm *JobManager) Save() error {
	dir := filepath.Dir(jm.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(jm.config)
	if err != nil {
		return fmt.Errorf("failed to marshal jobs config: %w", err)
	}
	if err := os.WriteFile(jm.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write jobs config: %w", err)
	}
	return nil
}

// AddJob adds a preset and persists the file.
func (jm *JobManager) AddJob(job JobConfig) error {
	if job.Name == "" {
		return fmt.Errorf("job name cannot be empty")
	}
	if err := job.ToJob().Validate(); err != nil {
		return err
	}

	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	jm.config.Jobs[job.Name] = job
	return jm.Save()
}

// UpdateJob replaces an existing preset, preserving its creation time.
func (jm *JobManager) UpdateJob(name string, updates JobConfig) error {
	existing, exists := jm.config.Jobs[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	updates.Name = existing.Name
	updates.CreatedAt = existing.CreatedAt
	updates.UpdatedAt = time.Now()

	if err := updates.ToJob().Validate(); err != nil {
		return err
	}

	jm.config.Jobs[name] = updates
	return jm.Save()
}

// RemoveJob deletes a preset and persists the file.
func (jm *JobManager) RemoveJob(name string) error {
	if _, exists := jm.config.Jobs[name]; !exists {
		return fmt.Errorf("job %s not found", name)
	}
	delete(jm.config.Jobs, name)
	return jm.Save()
}

// GetJob retrieves a preset by name.
func (jm *JobManager) GetJob(name string) (JobConfig, bool) {
	job, exists := jm.config.Jobs[name]
	return job, exists
}

// GetJobs returns all presets.
func (jm *JobManager) GetJobs() map[string]JobConfig {
	return jm.config.Jobs
}
