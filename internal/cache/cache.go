package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// CachedResponse represents a cached reply
type CachedResponse struct {
	Response  string
	Timestamp time.Time
}

// GenerateCacheKey hashes the JSON encoding of v
func GenerateCacheKey(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key: %w", err)
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}

// Store is an in-memory reply cache, safe for concurrent use
type Store struct {
	entries sync.Map
	ttl     time.Duration
	now     func() time.Time
}

// New creates a store. A zero ttl keeps entries for the life of the process.
func New(ttl time.Duration) *Store {
	return &Store{ttl: ttl, now: time.Now}
}

func (s *Store) Load(key string) (string, bool) {
	val, ok := s.entries.Load(key)
	if !ok {
		return "", false
	}
	cached := val.(CachedResponse)
	if s.ttl > 0 && s.now().Sub(cached.Timestamp) > s.ttl {
		s.entries.Delete(key)
		return "", false
	}
	return cached.Response, true
}

func (s *Store) Save(key, response string) {
	s.entries.Store(key, CachedResponse{
		Response:  response,
		Timestamp: s.now(),
	})
}
