package main

import (
	_ "github.com/eleven-am/transcribe-relay/docs"
	"github.com/eleven-am/transcribe-relay/internal/bootstrap"
)

// @title Transcribe Relay API
// @version 1.0.0
// @description Real-time and batch speech-to-text relay for Deepgram, AssemblyAI and Soniox

// @BasePath /v1

// @securityDefinitions.apikey APIKeyAuth
// @in header
// @name X-API-Key

func main() {
	bootstrap.Run()
}
