package storage

import (
	"context"
	"log/slog"
	"time"
)

// ExpiringCache はTTL切れの要約を掃除できるキャッシュ
type ExpiringCache interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// RunCleanup はctxが終わるまでinterval毎にCleanupExpiredを呼び出します
func RunCleanup(ctx context.Context, cache ExpiringCache, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := cache.CleanupExpired(ctx)
			if err != nil {
				logger.Warn("summary cache cleanup failed", "error", err)
				continue
			}
			if deleted > 0 {
				logger.Info("summary cache cleaned up", "deleted", deleted)
			}
		}
	}
}
