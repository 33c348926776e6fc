package ai

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tailorhq/resume-tailor/internal/domain"
)

// ResponseStore is the backing store for cached chat responses.
type ResponseStore interface {
	Get(ctx domain.Context, key string) (string, bool)
	Set(ctx domain.Context, key, value string)
}

// cachedClient wraps an AIClient and memoizes successful responses keyed by
// the full request (prompt, model, temperature). Errors are never cached.
type cachedClient struct {
	base  domain.AIClient
	store ResponseStore
}

// NewCached wraps base with a response cache. A nil store returns base
// unmodified.
func NewCached(base domain.AIClient, store ResponseStore) domain.AIClient {
	if store == nil || base == nil {
		return base
	}
	return &cachedClient{base: base, store: store}
}

func (c *cachedClient) ChatJSON(ctx domain.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	key := keyFor(req)
	if content, ok := c.store.Get(ctx, key); ok {
		slog.Debug("ai response cache hit", slog.String("model", req.Model))
		return domain.ChatResponse{Content: content, Model: req.Model}, nil
	}
	resp, err := c.base.ChatJSON(ctx, req)
	if err != nil {
		return domain.ChatResponse{}, err
	}
	c.store.Set(ctx, key, resp.Content)
	return resp, nil
}

func keyFor(req domain.ChatRequest) string {
	h := sha256.Sum256(fmt.Appendf(nil, "%s|%.2f|%s", req.Model, req.Temperature, req.Prompt))
	return "ai:chat:" + hex.EncodeToString(h[:])
}

// memoryStore is an in-process store with FIFO eviction. It is safe for
// concurrent use.
type memoryStore struct {
	capacity int
	mu       sync.RWMutex
	m        map[string]string
	ord      []string
}

// NewMemoryStore returns a FIFO-evicting in-memory store, or nil when
// capacity is not positive.
func NewMemoryStore(capacity int) ResponseStore {
	if capacity <= 0 {
		return nil
	}
	return &memoryStore{capacity: capacity, m: make(map[string]string), ord: make([]string, 0, capacity)}
}

func (s *memoryStore) Get(_ domain.Context, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *memoryStore) Set(_ domain.Context, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.m[key]; exists {
		s.m[key] = value
		return
	}
	if len(s.ord) >= s.capacity {
		old := s.ord[0]
		s.ord = s.ord[1:]
		delete(s.m, old)
	}
	s.m[key] = value
	s.ord = append(s.ord, key)
}

// redisStore shares cached responses across replicas with a TTL.
type redisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore connects to url and returns a shared response store.
func NewRedisStore(url string, ttl time.Duration) (ResponseStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("op=ai.NewRedisStore: %w", err)
	}
	return &redisStore{rdb: redis.NewClient(opts), ttl: ttl}, nil
}

func (s *redisStore) Get(ctx domain.Context, key string) (string, bool) {
	v, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("redis cache get failed", slog.Any("error", err))
		}
		return "", false
	}
	return v, true
}

func (s *redisStore) Set(ctx domain.Context, key, value string) {
	if err := s.rdb.Set(ctx, key, value, s.ttl).Err(); err != nil {
		slog.Warn("redis cache set failed", slog.Any("error", err))
	}
}
