// Package models defines the API view types shared by the HTTP layer
// and the event bus.
package models

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// TrainingStatusData is the wire representation of a progress snapshot.
type TrainingStatusData struct {
	Status           string   `json:"status" example:"running" doc:"Run status: idle, running, stopping, completed, failed, stopped"`
	TotalSamples     int      `json:"total_samples" example:"312" doc:"Number of ground-truth samples in the dataset"`
	ProcessedSamples int      `json:"processed_samples" example:"128" doc:"Samples processed so far"`
	MaxIterations    int      `json:"max_iterations" example:"10000" doc:"Configured iteration budget"`
	CurrentIteration int      `json:"current_iteration" example:"4200" doc:"Last reported training iteration"`
	CurrentErrorRate *float64 `json:"current_error_rate,omitempty" example:"12.5" doc:"Last reported BCER percentage"`
	BestErrorRate    *float64 `json:"best_error_rate,omitempty" example:"10.2" doc:"Best checkpoint BCER percentage"`
	PhaseLabel       string   `json:"phase_label,omitempty" example:"Starting LSTM training" doc:"Current named sub-phase"`
	StartedAt        string   `json:"started_at,omitempty" example:"2025-01-27T10:30:00Z" doc:"Run start timestamp"`
	ElapsedSeconds   int64    `json:"elapsed_seconds" example:"842" doc:"Wall-clock seconds since the run started"`
	ExitCode         *int     `json:"exit_code,omitempty" example:"0" doc:"Process exit code, present once the run is terminal"`
}

type TrainingStatusResponse struct {
	Body TrainingStatusData
}

// TrainingStartData is the request body for starting a run.
type TrainingStartData struct {
	ModelName      string `json:"model_name" example:"urd_custom" doc:"Name of the model to train"`
	StartModel     string `json:"start_model" example:"urd" doc:"Base traineddata model to fine-tune"`
	LangType       string `json:"lang_type,omitempty" example:"Indic" doc:"tesstrain LANG_TYPE tag"`
	TessdataDir    string `json:"tessdata_dir" example:"/home/user/tesseract_training/tessdata" doc:"Directory containing the start model"`
	GroundTruthDir string `json:"ground_truth_dir" example:"/home/user/dataset" doc:"Directory of .tif/.gt.txt sample pairs"`
	MaxIterations  int    `json:"max_iterations" example:"10000" doc:"Iteration budget passed to lstmtraining"`
	WorkDir        string `json:"work_dir" example:"/home/user/tesseract_training/tesstrain" doc:"tesstrain checkout to run make in"`
}

type TrainingStartRequest struct {
	Body TrainingStartData
}

// TrainingStopData configures the stop escalation.
type TrainingStopData struct {
	GracePeriodSeconds int `json:"grace_period_seconds,omitempty" example:"5" doc:"Seconds to wait after SIGTERM before SIGKILL"`
}

type TrainingStopRequest struct {
	Body TrainingStopData
}

// DatasetData summarizes a ground-truth directory.
type DatasetData struct {
	Path         string `json:"path" example:"/home/user/dataset" doc:"Inspected directory"`
	ImageCount   int    `json:"image_count" example:"312" doc:"Number of .tif image files"`
	TextCount    int    `json:"text_count" example:"312" doc:"Number of .gt.txt transcript files"`
	PairCount    int    `json:"pair_count" example:"312" doc:"Number of complete image+transcript pairs"`
	UnpairedTifs int    `json:"unpaired_tifs" example:"0" doc:"Images without a matching transcript"`
	Valid        bool   `json:"valid" example:"true" doc:"Whether the directory is usable for training"`
}

type DatasetResponse struct {
	Body DatasetData
}

// LogLinesData is a snapshot of recent log lines, oldest first, rendered
// in the same single-line format the console uses.
type LogLinesData struct {
	Lines []string `json:"lines" doc:"Formatted log lines"`
	Count int      `json:"count" example:"100" doc:"Number of lines returned"`
}

type LogLinesResponse struct {
	Body LogLinesData
}

// ArtifactData points at the trained model produced by a completed run.
type ArtifactData struct {
	ModelName string `json:"model_name" example:"urd_custom" doc:"Trained model name"`
	Path      string `json:"path,omitempty" example:"/home/user/tesstrain/data/urd_custom.traineddata" doc:"Location of the traineddata file, empty if not found"`
	Found     bool   `json:"found" example:"true" doc:"Whether the artifact exists on disk"`
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"dev" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"unknown" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"unknown" doc:"Build timestamp"`
	GoVersion string `json:"go_version" example:"go1.24" doc:"Go toolchain version"`
	Platform  string `json:"platform" example:"linux/amd64" doc:"Build platform"`
}

type VersionResponse struct {
	Body VersionData
}
