package dto

type CreateTokenRequest struct {
	TTLSeconds int      `json:"ttl_seconds,omitempty" example:"60"`
	Scopes     []string `json:"scopes,omitempty" example:"stream"`
	Providers  []string `json:"providers,omitempty" example:"deepgram"`
}

type TokenResponse struct {
	Token     string   `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt string   `json:"expires_at" example:"2024-01-15T10:31:00Z"`
	Scopes    []string `json:"scopes" example:"stream"`
	Providers []string `json:"providers,omitempty" example:"deepgram"`
}
