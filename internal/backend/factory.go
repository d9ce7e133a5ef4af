package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"AlgoChat/internal/cache"
	"AlgoChat/internal/config"
)

// New creates the transport selected by cfg.Backend
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (Transport, error) {
	var (
		t   Transport
		err error
	)
	switch cfg.Backend {
	case config.BackendHTTP:
		t = NewHTTPClient(cfg.APIBaseURL, cfg.AuthToken, cfg.RequestTimeout, logger)
	case config.BackendGemini:
		t, err = NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	case config.BackendOpenAI:
		t, err = NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.RequestTimeout, logger)
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if cfg.CacheResponses {
		t = NewCachedTransport(t, cache.New(0), logger)
	}
	return t, nil
}

func newTimeoutClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
