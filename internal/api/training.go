package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"tessnode/internal/api/models"
	"tessnode/internal/dataset"
	"tessnode/internal/progress"
	"tessnode/internal/supervisor"
)

// registerTrainingRoutes sets up the run-control endpoints.
func (s *Server) registerTrainingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-training-status",
		Method:      http.MethodGet,
		Path:        "/api/training/status",
		Summary:     "Training Status",
		Description: "Get the current training progress snapshot",
		Tags:        []string{"training"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(ctx context.Context, input *struct{}) (*models.TrainingStatusResponse, error) {
		return &models.TrainingStatusResponse{
			Body: models.FromSnapshot(s.supervisor.Status()),
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "start-training",
		Method:      http.MethodPost,
		Path:        "/api/training/start",
		Summary:     "Start Training",
		Description: "Spawn a training run for the given job",
		Tags:        []string{"training"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 409, 500},
	}, func(ctx context.Context, input *models.TrainingStartRequest) (*models.TrainingStatusResponse, error) {
		job := supervisor.Job{
			ModelName:      input.Body.ModelName,
			StartModel:     input.Body.StartModel,
			LangType:       input.Body.LangType,
			TessdataDir:    input.Body.TessdataDir,
			GroundTruthDir: input.Body.GroundTruthDir,
			MaxIterations:  input.Body.MaxIterations,
			WorkDir:        input.Body.WorkDir,
		}
		if err := s.startJob(job); err != nil {
			return nil, err
		}
		return &models.TrainingStatusResponse{
			Body: models.FromSnapshot(s.supervisor.Status()),
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "stop-training",
		Method:      http.MethodPost,
		Path:        "/api/training/stop",
		Summary:     "Stop Training",
		Description: "Request termination of the active run; blocks until the process is reaped",
		Tags:        []string{"training"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(ctx context.Context, input *models.TrainingStopRequest) (*models.TrainingStatusResponse, error) {
		grace := time.Duration(input.Body.GracePeriodSeconds) * time.Second
		s.supervisor.Stop(grace)
		return &models.TrainingStatusResponse{
			Body: models.FromSnapshot(s.supervisor.Status()),
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "reset-training",
		Method:      http.MethodPost,
		Path:        "/api/training/reset",
		Summary:     "Reset Training State",
		Description: "Return a terminal run to idle so a new one can start",
		Tags:        []string{"training"},
		Security:    withAuth(),
		Errors:      []int{401, 409},
	}, func(ctx context.Context, input *struct{}) (*models.TrainingStatusResponse, error) {
		if err := s.supervisor.Reset(); err != nil {
			if errors.Is(err, progress.ErrNotTerminal) {
				return nil, huma.Error409Conflict("training run is still active", err)
			}
			return nil, err
		}
		return &models.TrainingStatusResponse{
			Body: models.FromSnapshot(s.supervisor.Status()),
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-training-artifact",
		Method:      http.MethodGet,
		Path:        "/api/training/artifact",
		Summary:     "Training Artifact",
		Description: "Locate the traineddata file produced by the last run",
		Tags:        []string{"training"},
		Security:    withAuth(),
		Errors:      []int{401, 404},
	}, func(ctx context.Context, input *struct{}) (*struct{ Body models.ArtifactData }, error) {
		job, ok := s.supervisor.Job()
		if !ok {
			return nil, huma.Error404NotFound("no training run has been started")
		}
		return &struct{ Body models.ArtifactData }{
			Body: *supervisor.LocateArtifact(job),
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "inspect-dataset",
		Method:      http.MethodGet,
		Path:        "/api/dataset",
		Summary:     "Inspect Dataset",
		Description: "Count ground-truth image and transcript pairs in a directory",
		Tags:        []string{"training"},
		Security:    withAuth(),
		Errors:      []int{400, 401},
	}, func(ctx context.Context, input *struct {
		Path string `query:"path" required:"true" doc:"Ground-truth directory to inspect" example:"/home/user/dataset"`
	}) (*models.DatasetResponse, error) {
		summary, err := dataset.Inspect(input.Path)
		if err != nil {
			return nil, huma.Error400BadRequest("cannot inspect dataset directory", err)
		}
		return &models.DatasetResponse{
			Body: models.DatasetData{
				Path:         summary.Path,
				ImageCount:   summary.ImageCount,
				TextCount:    summary.TextCount,
				PairCount:    summary.PairCount,
				UnpairedTifs: len(summary.UnpairedImages),
				Valid:        summary.Valid(),
			},
		}, nil
	})
}

// startJob maps supervisor errors onto HTTP statuses.
func (s *Server) startJob(job supervisor.Job) error {
	err := s.supervisor.Start(job)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, supervisor.ErrAlreadyRunning):
		return huma.Error409Conflict("a training run is already active", err)
	default:
		var spawnErr *supervisor.SpawnError
		if errors.As(err, &spawnErr) {
			return huma.Error500InternalServerError("failed to spawn training process", err)
		}
		return huma.Error400BadRequest("invalid training job", err)
	}
}
