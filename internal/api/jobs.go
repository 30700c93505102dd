package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"tessnode/internal/api/models"
	"tessnode/internal/config"
)

// registerJobRoutes sets up CRUD for stored job presets plus starting a
// run from one.
func (s *Server) registerJobRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-jobs",
		Method:      http.MethodGet,
		Path:        "/api/jobs",
		Summary:     "List Job Presets",
		Tags:        []string{"jobs"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(ctx context.Context, input *struct{}) (*models.JobListResponse, error) {
		presets := s.jobManager.GetJobs()
		jobs := make([]models.JobData, 0, len(presets))
		for _, preset := range presets {
			jobs = append(jobs, jobToModel(preset))
		}
		sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
		return &models.JobListResponse{Body: models.JobListData{Jobs: jobs}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-job",
		Method:      http.MethodGet,
		Path:        "/api/jobs/{name}",
		Summary:     "Get Job Preset",
		Tags:        []string{"jobs"},
		Security:    withAuth(),
		Errors:      []int{401, 404},
	}, func(ctx context.Context, input *struct {
		Name string `path:"name" doc:"Preset name"`
	}) (*models.JobResponse, error) {
		preset, ok := s.jobManager.GetJob(input.Name)
		if !ok {
			return nil, huma.Error404NotFound("job preset not found")
		}
		return &models.JobResponse{Body: jobToModel(preset)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "create-job",
		Method:      http.MethodPost,
		Path:        "/api/jobs",
		Summary:     "Create Job Preset",
		Tags:        []string{"jobs"},
		Security:    withAuth(),
		Errors:      []int{400, 401},
	}, func(ctx context.Context, input *models.JobCreateRequest) (*models.JobResponse, error) {
		preset := modelToJob(input.Body)
		if err := s.jobManager.AddJob(preset); err != nil {
			return nil, huma.Error400BadRequest("invalid job preset", err)
		}
		stored, _ := s.jobManager.GetJob(preset.Name)
		return &models.JobResponse{Body: jobToModel(stored)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "update-job",
		Method:      http.MethodPut,
		Path:        "/api/jobs/{name}",
		Summary:     "Update Job Preset",
		Tags:        []string{"jobs"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 404},
	}, func(ctx context.Context, input *struct {
		Name string `path:"name" doc:"Preset name"`
		Body models.JobData
	}) (*models.JobResponse, error) {
		if _, ok := s.jobManager.GetJob(input.Name); !ok {
			return nil, huma.Error404NotFound("job preset not found")
		}
		if err := s.jobManager.UpdateJob(input.Name, modelToJob(input.Body)); err != nil {
			return nil, huma.Error400BadRequest("invalid job preset", err)
		}
		stored, _ := s.jobManager.GetJob(input.Name)
		return &models.JobResponse{Body: jobToModel(stored)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-job",
		Method:      http.MethodDelete,
		Path:        "/api/jobs/{name}",
		Summary:     "Delete Job Preset",
		Tags:        []string{"jobs"},
		Security:    withAuth(),
		Errors:      []int{401, 404},
	}, func(ctx context.Context, input *struct {
		Name string `path:"name" doc:"Preset name"`
	}) (*struct{}, error) {
		if err := s.jobManager.RemoveJob(input.Name); err != nil {
			return nil, huma.Error404NotFound("job preset not found", err)
		}
		return &struct{}{}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "start-job",
		Method:      http.MethodPost,
		Path:        "/api/jobs/{name}/start",
		Summary:     "Start Training From Preset",
		Tags:        []string{"jobs"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 404, 409, 500},
	}, func(ctx context.Context, input *struct {
		Name string `path:"name" doc:"Preset name"`
	}) (*models.TrainingStatusResponse, error) {
		preset, ok := s.jobManager.GetJob(input.Name)
		if !ok {
			return nil, huma.Error404NotFound("job preset not found")
		}
		if err := s.startJob(preset.ToJob()); err != nil {
			return nil, err
		}
		return &models.TrainingStatusResponse{
			Body: models.FromSnapshot(s.supervisor.Status()),
		}, nil
	})
}

func jobToModel(preset config.JobConfig) models.JobData {
	data := models.JobData{
		Name:           preset.Name,
		ModelName:      preset.ModelName,
		StartModel:     preset.StartModel,
		LangType:       preset.LangType,
		TessdataDir:    preset.TessdataDir,
		GroundTruthDir: preset.GroundTruthDir,
		MaxIterations:  preset.MaxIterations,
		WorkDir:        preset.WorkDir,
	}
	if !preset.CreatedAt.IsZero() {
		data.CreatedAt = preset.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !preset.UpdatedAt.IsZero() {
		data.UpdatedAt = preset.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return data
}

func modelToJob(data models.JobData) config.JobConfig {
	return config.JobConfig{
		Name:           data.Name,
		ModelName:      data.ModelName,
		StartModel:     data.StartModel,
		LangType:       data.LangType,
		TessdataDir:    data.TessdataDir,
		GroundTruthDir: data.GroundTruthDir,
		MaxIterations:  data.MaxIterations,
		WorkDir:        data.WorkDir,
	}
}
