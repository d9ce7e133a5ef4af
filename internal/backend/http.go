package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const chatPath = "/ai/chat"

// HTTPClient posts chat requests to the platform's chat endpoint
type HTTPClient struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates a client for baseURL. A zero timeout waits indefinitely.
func NewHTTPClient(baseURL, authToken string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// SendChat posts req and decodes the {"message": ...} reply
func (c *HTTPClient) SendChat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	ctx, span := otel.Tracer("algochat/backend").Start(ctx, "http_chat_call")
	defer span.End()

	start := time.Now()

	jsonData, err := json.Marshal(req)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewBuffer(jsonData))
	if err != nil {
		return ChatResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	if c.authToken != "" {
		// The platform authenticates browser sessions with a "token" cookie.
		httpReq.AddCookie(&http.Cookie{Name: "token", Value: c.authToken})
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("failed to read response: %w", err)
	}

	recordDuration(ctx, "http", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ChatResponse{}, fmt.Errorf("API error: %s - %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var out ChatResponse
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &out); err != nil {
			return ChatResponse{}, fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	c.logger.Debug("chat endpoint replied", "status", resp.StatusCode, "chars", len(out.Message))
	return out, nil
}

func recordDuration(ctx context.Context, backendName string, d time.Duration) {
	histogram, err := otel.Meter("algochat/backend").Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
	)
	if err == nil {
		histogram.Record(ctx, float64(d.Milliseconds()), metric.WithAttributes(attribute.String("backend", backendName)))
	}
}
