package models

import (
	"time"

	"github.com/google/uuid"
)

// AskRequest is the payload of POST /ask.
type AskRequest struct {
	Question    string   `json:"question"`
	MaxLength   *int     `json:"max_length,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`
}

// AskResponse is returned by POST /ask for both outcomes; Success selects
// which of Answer or Error is meaningful.
type AskResponse struct {
	Success  bool   `json:"success"`
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Model       string `json:"model,omitempty"`
}

// LoadModelResponse is returned by POST /load-model.
type LoadModelResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	ModelLoaded bool   `json:"model_loaded"`
}

// IndexResponse is returned by GET /.
type IndexResponse struct {
	Message     string            `json:"message"`
	Status      string            `json:"status"`
	ModelLoaded bool              `json:"model_loaded"`
	Endpoints   map[string]string `json:"endpoints"`
}

// GenerationOptions tunes a single answer generation.
type GenerationOptions struct {
	MaxLength   int
	Temperature float32
}

// AskLog is one audited /ask outcome.
type AskLog struct {
	ID           uuid.UUID `json:"id"`
	RequestID    string    `json:"request_id"`
	Question     string    `json:"question"`
	Answer       *string   `json:"answer,omitempty"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	Model        string    `json:"model"`
	LatencyMS    int64     `json:"latency_ms"`
	CreatedAt    time.Time `json:"created_at"`
}
