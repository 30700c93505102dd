package supervisor

import (
	"os"
	"path/filepath"

	"tessnode/internal/api/models"
)

// LocateArtifact finds the traineddata file a successful run produced.
// tesstrain writes it either directly under data/ or under the start
// model's directory, depending on the makefile version.
func LocateArtifact(job Job) *models.ArtifactData {
	candidates := []string{
		filepath.Join(job.WorkDir, "data", job.ModelName+".traineddata"),
	}
	if job.StartModel != "" {
		candidates = append(candidates,
			filepath.Join(job.WorkDir, "data", job.StartModel, job.ModelName+".traineddata"))
	}

	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		return &models.ArtifactData{
			ModelName: job.ModelName,
			Path:      path,
			Found:     true,
		}
	}
	return &models.ArtifactData{ModelName: job.ModelName}
}
