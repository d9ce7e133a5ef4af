package backend

import (
	"context"
	"log/slog"
	"strings"

	"AlgoChat/internal/cache"
)

// CachedTransport answers repeated identical requests from memory.
// Failures and empty replies are never cached.
type CachedTransport struct {
	next   Transport
	store  *cache.Store
	logger *slog.Logger
}

func NewCachedTransport(next Transport, store *cache.Store, logger *slog.Logger) *CachedTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedTransport{next: next, store: store, logger: logger}
}

func (c *CachedTransport) SendChat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	key, err := cache.GenerateCacheKey(req)
	if err != nil {
		c.logger.Warn("failed to build cache key", "error", err)
		return c.next.SendChat(ctx, req)
	}

	if cached, ok := c.store.Load(key); ok {
		c.logger.Info("cache hit", "key", key[:16])
		return ChatResponse{Message: cached}, nil
	}

	resp, err := c.next.SendChat(ctx, req)
	if err != nil {
		return resp, err
	}
	if strings.TrimSpace(resp.Message) != "" {
		c.store.Save(key, resp.Message)
		c.logger.Info("cached response", "key", key[:16])
	}
	return resp, nil
}
