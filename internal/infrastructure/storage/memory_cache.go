package storage

import (
	"context"
	"sync"
	"time"

	"contentSummarizer/internal/domain/repository"
)

type cachedSummary struct {
	summary  string
	storedAt time.Time
}

type memoryCache struct {
	mu        sync.RWMutex
	ttl       time.Duration
	summaries map[string]cachedSummary
	now       func() time.Time
}

// NewMemoryCacheRepository はプロセス内の要約キャッシュを生成します。ttlが0なら期限なし
func NewMemoryCacheRepository(ttl time.Duration) repository.SummaryCacheRepository {
	return &memoryCache{
		ttl:       ttl,
		summaries: make(map[string]cachedSummary),
		now:       time.Now,
	}
}

func (c *memoryCache) GetSummary(ctx context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.summaries[key]
	if !ok || c.expired(entry.storedAt) {
		return "", false, nil
	}
	return entry.summary, true, nil
}

func (c *memoryCache) SaveSummary(ctx context.Context, key, summary string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.summaries[key] = cachedSummary{summary: summary, storedAt: c.now()}
	return nil
}

// CleanupExpired は期限切れのエントリを削除し、削除件数を返します
func (c *memoryCache) CleanupExpired(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var deleted int64
	for key, entry := range c.summaries {
		if c.expired(entry.storedAt) {
			delete(c.summaries, key)
			deleted++
		}
	}
	return deleted, nil
}

func (c *memoryCache) expired(storedAt time.Time) bool {
	return c.ttl > 0 && c.now().Sub(storedAt) > c.ttl
}
