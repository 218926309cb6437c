package dto

type SessionResponse struct {
	ID          string  `json:"id" example:"0b8f2c1e-5a4d-4c1b-9a61-2f0e3d7c9b10"`
	Provider    string  `json:"provider" example:"deepgram"`
	OwnerID     string  `json:"owner_id,omitempty" example:"acme"`
	Status      string  `json:"status" example:"closed"`
	CloseCode   int     `json:"close_code,omitempty" example:"1000"`
	CloseReason string  `json:"close_reason,omitempty" example:"client_closed"`
	StartedAt   string  `json:"started_at" example:"2024-01-15T10:30:00Z"`
	EndedAt     *string `json:"ended_at,omitempty" example:"2024-01-15T10:42:10Z"`
	DurationMs  int64   `json:"duration_ms,omitempty" example:"730000"`
}

type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

type MetricsResponse struct {
	Provider      string           `json:"provider" example:"deepgram"`
	Date          string           `json:"date" example:"2024-01-15"`
	Hour          int              `json:"hour" example:"14"`
	Sessions      int64            `json:"sessions" example:"100"`
	Closed        int64            `json:"closed" example:"97"`
	ErrorCount    int64            `json:"error_count" example:"3"`
	AvgDurationMs int64            `json:"avg_duration_ms" example:"152000"`
	CloseReasons  map[string]int64 `json:"close_reasons,omitempty"`
}

type MetricsListResponse struct {
	Provider string            `json:"provider" example:"deepgram"`
	Hours    int               `json:"hours" example:"24"`
	Metrics  []MetricsResponse `json:"metrics"`
}

type SummaryResponse struct {
	Provider      string           `json:"provider" example:"deepgram"`
	Period        string           `json:"period" example:"7d"`
	TotalSessions int64            `json:"total_sessions" example:"1000"`
	AvgDurationMs int64            `json:"avg_duration_ms" example:"145000"`
	ErrorRate     float64          `json:"error_rate" example:"1.5"`
	CloseReasons  map[string]int64 `json:"close_reasons,omitempty"`
}
