package handlers

import (
	"encoding/json"
	"net/http"

	"examsathi/internal/models"
)

// ServerHandler serves the informational endpoints and manual model loading.
type ServerHandler struct {
	answers answerService
}

func NewServerHandler(answers answerService) *ServerHandler {
	return &ServerHandler{answers: answers}
}

func (h *ServerHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.IndexResponse{
		Message:     "ExamSathi AI API",
		Status:      "running",
		ModelLoaded: h.answers.Loaded(),
		Endpoints: map[string]string{
			"health": "/health",
			"ask":    "/ask (POST)",
			"load":   "/load-model (POST)",
		},
	})
}

func (h *ServerHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:      "healthy",
		ModelLoaded: h.answers.Loaded(),
		Model:       h.answers.ModelName(),
	})
}

func (h *ServerHandler) LoadModel(w http.ResponseWriter, r *http.Request) {
	ok, message := h.answers.Load(r.Context())
	writeJSON(w, http.StatusOK, models.LoadModelResponse{
		Success:     ok,
		Message:     message,
		ModelLoaded: h.answers.Loaded(),
	})
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(message string) models.AskResponse {
	return models.AskResponse{Success: false, Error: message}
}
