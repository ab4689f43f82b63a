package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"examsathi/internal/logger"
	"examsathi/internal/models"
)

type answerService interface {
	Loaded() bool
	Load(ctx context.Context) (bool, string)
	ModelName() string
	Options(maxLength *int, temperature *float32) models.GenerationOptions
	Answer(ctx context.Context, question string, opts models.GenerationOptions) (string, error)
}

type askLogger interface {
	Record(ctx context.Context, l *models.AskLog) error
}

type AskHandler struct {
	answers answerService
	askLog  askLogger
}

// NewAskHandler builds the /ask handler. askLog may be nil when no database
// is configured.
func NewAskHandler(answers answerService, askLog askLogger) *AskHandler {
	return &AskHandler{
		answers: answers,
		askLog:  askLog,
	}
}

func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body"))
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("Question is required"))
		return
	}

	// Auto-load model if needed
	if !h.answers.Loaded() {
		if ok, message := h.answers.Load(r.Context()); !ok {
			writeJSON(w, http.StatusInternalServerError, errorResp(message))
			return
		}
	}

	start := time.Now()
	answer, err := h.answers.Answer(r.Context(), req.Question, h.answers.Options(req.MaxLength, req.Temperature))
	latency := time.Since(start)

	if err != nil {
		logger.Error("answer generation failed",
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.Error(err))
		message := "Error: " + err.Error()
		h.record(r, req.Question, nil, &message, latency)
		writeJSON(w, http.StatusInternalServerError, errorResp(message))
		return
	}

	h.record(r, req.Question, &answer, nil, latency)
	writeJSON(w, http.StatusOK, models.AskResponse{
		Success:  true,
		Question: req.Question,
		Answer:   answer,
	})
}

// record writes the audit entry. Audit failures never change the response.
func (h *AskHandler) record(r *http.Request, question string, answer, errMsg *string, latency time.Duration) {
	if h.askLog == nil {
		return
	}

	entry := &models.AskLog{
		RequestID:    chimiddleware.GetReqID(r.Context()),
		Question:     question,
		Answer:       answer,
		ErrorMessage: errMsg,
		Model:        h.answers.ModelName(),
		LatencyMS:    latency.Milliseconds(),
	}
	if err := h.askLog.Record(r.Context(), entry); err != nil {
		logger.Warn("failed to record ask log", zap.Error(err))
	}
}
