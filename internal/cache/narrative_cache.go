package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/andresuchdata/procuresmart/backend-go/internal/config"
	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
)

const narrativeNamespace = "narrative"

// NarrativeCache stores generated narratives keyed by the result they describe.
type NarrativeCache interface {
	GetNarrative(ctx context.Context, key string) (*domain.Narrative, bool, error)
	SetNarrative(ctx context.Context, key string, narrative *domain.Narrative) error
	// Clear drops every cached narrative and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}

type redisNarrativeCache struct {
	store *redisStore
}

type noopNarrativeCache struct{}

// NewNarrativeCache returns a redis-backed cache, or a noop one when caching is disabled.
func NewNarrativeCache(cfg config.CacheConfig) (NarrativeCache, error) {
	if !cfg.Enabled {
		return &noopNarrativeCache{}, nil
	}

	store, err := dialRedis(cfg, narrativeNamespace)
	if err != nil {
		return nil, err
	}
	return &redisNarrativeCache{store: store}, nil
}

func (c *redisNarrativeCache) GetNarrative(ctx context.Context, key string) (*domain.Narrative, bool, error) {
	var narrative domain.Narrative
	ok, err := c.store.getJSON(ctx, key, &narrative)
	if err != nil || !ok {
		return nil, false, err
	}
	return &narrative, true, nil
}

func (c *redisNarrativeCache) SetNarrative(ctx context.Context, key string, narrative *domain.Narrative) error {
	if narrative == nil {
		return nil
	}
	return c.store.setJSON(ctx, key, narrative)
}

func (c *redisNarrativeCache) Clear(ctx context.Context) (int, error) {
	return c.store.purge(ctx)
}

func (n *noopNarrativeCache) GetNarrative(ctx context.Context, key string) (*domain.Narrative, bool, error) {
	return nil, false, nil
}

func (n *noopNarrativeCache) SetNarrative(ctx context.Context, key string, narrative *domain.Narrative) error {
	return nil
}

func (n *noopNarrativeCache) Clear(ctx context.Context) (int, error) {
	return 0, nil
}

// memoryNarrativeCache keeps narratives in process, without expiry.
type memoryNarrativeCache struct {
	mu    sync.RWMutex
	items map[string]domain.Narrative
}

// NewMemoryNarrativeCache keeps narratives for the life of the process.
// The service falls back to it when redis is configured but unreachable.
func NewMemoryNarrativeCache() NarrativeCache {
	return &memoryNarrativeCache{items: make(map[string]domain.Narrative)}
}

func (m *memoryNarrativeCache) GetNarrative(ctx context.Context, key string) (*domain.Narrative, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	return &n, true, nil
}

func (m *memoryNarrativeCache) SetNarrative(ctx context.Context, key string, narrative *domain.Narrative) error {
	if narrative == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = *narrative
	return nil
}

func (m *memoryNarrativeCache) Clear(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.items)
	m.items = make(map[string]domain.Narrative)
	return n, nil
}

// NarrativeKey hashes the model name and the result a narrative describes.
// Identical results always map to the same key since the result is deterministic.
func NarrativeKey(model string, result domain.AnalysisResult) (string, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encode narrative key: %w", err)
	}
	h := sha1.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil)), nil
}
