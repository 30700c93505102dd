package config

import (
	"path/filepath"
	"testing"
)

func validJobConfig(name string) JobConfig {
	return JobConfig{
		Name:           name,
		ModelName:      "urd_custom",
		StartModel:     "urd",
		TessdataDir:    "/data/tessdata",
		GroundTruthDir: "/data/gt",
		MaxIterations:  10000,
		WorkDir:        "/data/tesstrain",
	}
}

func TestJobManagerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.toml")

	jm := NewJobManager(path)
	if err := jm.Load(); err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if err := jm.AddJob(validJobConfig("urdu-finetune")); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Fresh manager reads the same preset back.
	jm2 := NewJobManager(path)
	if err := jm2.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	job, ok := jm2.GetJob("urdu-finetune")
	if !ok {
		t.Fatal("preset not found after reload")
	}
	if job.ModelName != "urd_custom" || job.MaxIterations != 10000 {
		t.Errorf("unexpected preset: %+v", job)
	}
	if job.CreatedAt.IsZero() || job.UpdatedAt.IsZero() {
		t.Error("timestamps should be set")
	}
}

func TestJobManagerValidation(t *testing.T) {
	jm := NewJobManager(filepath.Join(t.TempDir(), "jobs.toml"))

	if err := jm.AddJob(JobConfig{}); err == nil {
		t.Error("expected error for empty name")
	}

	broken := validJobConfig("broken")
	broken.ModelName = ""
	if err := jm.AddJob(broken); err == nil {
		t.Error("expected error for missing model name")
	}
}

func TestJobManagerUpdate(t *testing.T) {
	jm := NewJobManager(filepath.Join(t.TempDir(), "jobs.toml"))
	if err := jm.AddJob(validJobConfig("preset")); err != nil {
		t.Fatalf("add: %v", err)
	}
	created, _ := jm.GetJob("preset")

	updates := validJobConfig("preset")
	updates.MaxIterations = 50000
	if err := jm.UpdateJob("preset", updates); err != nil {
		t.Fatalf("update: %v", err)
	}

	job, _ := jm.GetJob("preset")
	if job.MaxIterations != 50000 {
		t.Errorf("max iterations = %d, want 50000", job.MaxIterations)
	}
	if !job.CreatedAt.Equal(created.CreatedAt) {
		t.Error("update should preserve creation time")
	}

	if err := jm.UpdateJob("missing", updates); err == nil {
		t.Error("expected error updating missing preset")
	}
}

func TestJobManagerRemove(t *testing.T) {
	jm := NewJobManager(filepath.Join(t.TempDir(), "jobs.toml"))
	if err := jm.AddJob(validJobConfig("preset")); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := jm.RemoveJob("preset"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := jm.GetJob("preset"); ok {
		t.Error("preset should be gone")
	}
	if err := jm.RemoveJob("preset"); err == nil {
		t.Error("expected error removing missing preset")
	}
}

func TestJobConfigToJob(t *testing.T) {
	jc := validJobConfig("preset")
	job := jc.ToJob()
	if job.ModelName != jc.ModelName || job.WorkDir != jc.WorkDir {
		t.Errorf("conversion lost fields: %+v", job)
	}
	if err := job.Validate(); err != nil {
		t.Errorf("converted job invalid: %v", err)
	}
}

func TestJobManagerLoadMissingFile(t *testing.T) {
	jm := NewJobManager(filepath.Join(t.TempDir(), "missing.toml"))
	if err := jm.Load(); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(jm.GetJobs()) != 0 {
		t.Errorf("expected no presets, got %d", len(jm.GetJobs()))
	}
}
