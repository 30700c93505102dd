package supervisor

import (
	"fmt"
	"strings"
)

// DefaultExecutable is the build tool driving the tesstrain Makefile.
const DefaultExecutable = "make"

// Job describes one training run. It is immutable once handed to Start:
// the argument list is fully resolved from these fields before the
// process is spawned.
type Job struct {
	Executable     string // defaults to DefaultExecutable
	ModelName      string
	StartModel     string
	LangType       string
	TessdataDir    string
	GroundTruthDir string
	MaxIterations  int
	WorkDir        string // tesstrain checkout, used as the working directory
}

// Validate checks that the job carries everything the Makefile needs.
func (j Job) Validate() error {
	if strings.TrimSpace(j.ModelName) == "" {
		return fmt.Errorf("job: model name is required")
	}
	if strings.TrimSpace(j.StartModel) == "" {
		return fmt.Errorf("job: start model is required")
	}
	if strings.TrimSpace(j.TessdataDir) == "" {
		return fmt.Errorf("job: tessdata directory is required")
	}
	if strings.TrimSpace(j.GroundTruthDir) == "" {
		return fmt.Errorf("job: ground truth directory is required")
	}
	if strings.TrimSpace(j.WorkDir) == "" {
		return fmt.Errorf("job: working directory is required")
	}
	if j.MaxIterations <= 0 {
		return fmt.Errorf("job: max iterations must be positive, got %d", j.MaxIterations)
	}
	return nil
}

// executable returns the configured build tool or the default.
func (j Job) executable() string {
	if j.Executable != "" {
		return j.Executable
	}
	return DefaultExecutable
}

// Args builds the ordered tesstrain invocation. The KEY=VALUE layout is
// the Makefile's variable-override contract.
func (j Job) Args() []string {
	langType := j.LangType
	if langType == "" {
		langType = "Indic"
	}
	return []string{
		"training",
		fmt.Sprintf("MODEL_NAME=%s", j.ModelName),
		fmt.Sprintf("START_MODEL=%s", j.StartModel),
		fmt.Sprintf("LANG_TYPE=%s", langType),
		fmt.Sprintf("TESSDATA=%s", j.TessdataDir),
		fmt.Sprintf("GROUND_TRUTH_DIR=%s", j.GroundTruthDir),
		fmt.Sprintf("MAX_ITERATIONS=%d", j.MaxIterations),
	}
}
