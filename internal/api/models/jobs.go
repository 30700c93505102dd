package models

// JobData is the wire representation of a stored training job preset.
type JobData struct {
	Name           string `json:"name" example:"urdu-finetune" doc:"Preset name"`
	ModelName      string `json:"model_name" example:"urd_custom" doc:"Name of the model to train"`
	StartModel     string `json:"start_model" example:"urd" doc:"Base traineddata model to fine-tune"`
	LangType       string `json:"lang_type,omitempty" example:"Indic" doc:"tesstrain LANG_TYPE tag"`
	TessdataDir    string `json:"tessdata_dir" example:"/home/user/tessdata" doc:"Directory containing the start model"`
	GroundTruthDir string `json:"ground_truth_dir" example:"/home/user/dataset" doc:"Directory of ground-truth sample pairs"`
	MaxIterations  int    `json:"max_iterations" example:"10000" doc:"Iteration budget"`
	WorkDir        string `json:"work_dir" example:"/home/user/tesstrain" doc:"tesstrain checkout"`
	CreatedAt      string `json:"created_at,omitempty" example:"2025-01-27T10:30:00Z" doc:"Preset creation time"`
	UpdatedAt      string `json:"updated_at,omitempty" example:"2025-01-27T10:30:00Z" doc:"Last modification time"`
}

type JobResponse struct {
	Body JobData
}

type JobListData struct {
	Jobs []JobData `json:"jobs" doc:"All stored presets"`
}

type JobListResponse struct {
	Body JobListData
}

type JobCreateRequest struct {
	Body JobData
}
