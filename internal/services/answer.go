package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"examsathi/internal/logger"
	"examsathi/internal/models"
)

const (
	topP         = 0.9
	answerMarker = "Answer:"
)

var ErrModelNotLoaded = errors.New("Model not loaded")

type generateFunc func(ctx context.Context, prompt string, opts models.GenerationOptions) (string, error)

// AnswerService produces answers for exam questions with Gemini. The model
// is loaded once, either at startup or on the first request.
type AnswerService struct {
	apiKey       string
	modelName    string
	maxNewTokens int32
	defaults     models.GenerationOptions

	mu       sync.RWMutex
	client   *genai.Client
	generate generateFunc

	rateChan chan struct{} // Token bucket
}

func NewAnswerService(apiKey, modelName string, concurrentReqs, maxNewTokens int, defaults models.GenerationOptions) *AnswerService {
	if concurrentReqs < 1 {
		concurrentReqs = 1
	}
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &AnswerService{
		apiKey:       apiKey,
		modelName:    modelName,
		maxNewTokens: int32(maxNewTokens),
		defaults:     defaults,
		rateChan:     rateChan,
	}
}

func (s *AnswerService) ModelName() string {
	return s.modelName
}

func (s *AnswerService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generate != nil
}

// Load connects to Gemini. It returns whether the model is usable and a
// message suitable for API responses.
func (s *AnswerService) Load(ctx context.Context) (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generate != nil {
		return true, "Model loaded successfully"
	}
	if s.apiKey == "" {
		logger.Error("cannot load model", zap.String("reason", "GEMINI_API_KEY not set"))
		return false, "Failed to load model: GEMINI_API_KEY is not set"
	}

	logger.Info("loading model", zap.String("model", s.modelName))
	client, err := genai.NewClient(ctx, option.WithAPIKey(s.apiKey))
	if err != nil {
		logger.Error("error loading model", zap.Error(err))
		return false, fmt.Sprintf("Error loading model: %v", err)
	}

	s.client = client
	s.generate = s.generateWithGemini
	logger.Info("model loaded successfully", zap.String("model", s.modelName))
	return true, "Model loaded successfully"
}

func (s *AnswerService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		s.client.Close()
	}
}

// Options fills unset request options with the server defaults.
func (s *AnswerService) Options(maxLength *int, temperature *float32) models.GenerationOptions {
	opts := s.defaults
	if maxLength != nil && *maxLength > 0 {
		opts.MaxLength = *maxLength
	}
	if temperature != nil && *temperature >= 0 {
		opts.Temperature = *temperature
	}
	return opts
}

// Answer generates the answer to question.
func (s *AnswerService) Answer(ctx context.Context, question string, opts models.GenerationOptions) (string, error) {
	s.mu.RLock()
	generate := s.generate
	s.mu.RUnlock()
	if generate == nil {
		return "", ErrModelNotLoaded
	}

	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	prompt := buildPrompt(question, opts.MaxLength)
	text, err := generate(ctx, prompt, opts)
	if err != nil {
		return "", err
	}
	return extractAnswer(text), nil
}

// acquireRate blocks until a rate slot is available
func (s *AnswerService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *AnswerService) releaseRate() {
	s.rateChan <- struct{}{}
}

func (s *AnswerService) generateWithGemini(ctx context.Context, prompt string, opts models.GenerationOptions) (string, error) {
	model := s.client.GenerativeModel(s.modelName)
	model.SetTemperature(opts.Temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(s.maxNewTokens)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			logger.Warn("Gemini stopped early",
				zap.Int("candidate", i),
				zap.Any("finish_reason", cand.FinishReason))
		}
	}

	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("Gemini returned empty text")
	}
	return text, nil
}

// Helper functions

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

// buildPrompt formats the question and cuts the prompt to maxLength runes.
func buildPrompt(question string, maxLength int) string {
	prompt := "Question: " + question + "\n" + answerMarker
	if maxLength <= 0 {
		return prompt
	}
	runes := []rune(prompt)
	if len(runes) > maxLength {
		return string(runes[:maxLength])
	}
	return prompt
}

// extractAnswer keeps the text after the last answer marker.
func extractAnswer(text string) string {
	if i := strings.LastIndex(text, answerMarker); i >= 0 {
		text = text[i+len(answerMarker):]
	}
	return strings.TrimSpace(text)
}
