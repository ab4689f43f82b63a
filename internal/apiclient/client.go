package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"examsathi/internal/logger"
	"examsathi/internal/models"
)

// DefaultBaseURL is where the inference server listens unless told otherwise.
const DefaultBaseURL = "http://localhost:5000"

// StatusError is returned when the server answers with a non-2xx status on
// an endpoint whose body cannot be trusted in that case.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Client talks to the inference server. The base URL is passed per call
// because the user can change it at any time.
type Client struct {
	HTTPClient *http.Client
}

// NewClient builds a client. A zero timeout means requests wait until the
// server responds or the context ends.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Health calls GET {baseURL}/health.
func (c *Client) Health(ctx context.Context, baseURL string) (*models.HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint(baseURL, "/health"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Endpoint: "/health", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out models.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

// Ask calls POST {baseURL}/ask. The server reports application failures
// with a 4xx/5xx status and a JSON body, so the body is decoded whatever the
// status code is; only transport or decoding failures return an error.
func (c *Client) Ask(ctx context.Context, baseURL, question string) (*models.AskResponse, error) {
	payload, err := json.Marshal(models.AskRequest{Question: question})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint(baseURL, "/ask"), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out models.AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		logger.Debug("ask returned non-200",
			zap.Int("status", resp.StatusCode),
			zap.Bool("success", out.Success),
		)
	}
	return &out, nil
}

func endpoint(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + path
}
