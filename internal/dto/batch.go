package dto

type JobResponse struct {
	ID           string  `json:"id" example:"job_3f2a9c"`
	OwnerID      string  `json:"owner_id,omitempty" example:"acme"`
	Provider     string  `json:"provider" example:"assemblyai"`
	ExternalID   string  `json:"external_id,omitempty" example:"5552bc2e-8c52-4f69"`
	Status       string  `json:"status" example:"completed"`
	PollAttempts int     `json:"poll_attempts" example:"4"`
	AudioBytes   int64   `json:"audio_bytes" example:"480000"`
	AudioFormat  string  `json:"audio_format,omitempty" example:"audio/wav"`
	DurationMs   int64   `json:"audio_duration_ms,omitempty" example:"15000"`
	Error        string  `json:"error,omitempty"`
	CreatedAt    string  `json:"created_at" example:"2024-01-15T10:30:00Z"`
	CompletedAt  *string `json:"completed_at,omitempty" example:"2024-01-15T10:30:12Z"`
}

type JobListResponse struct {
	Jobs []JobResponse `json:"jobs"`
}
