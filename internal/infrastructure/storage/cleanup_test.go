package storage

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type countingCache struct {
	calls atomic.Int32
}

func (c *countingCache) CleanupExpired(ctx context.Context) (int64, error) {
	c.calls.Add(1)
	return 1, nil
}

func TestRunCleanup(t *testing.T) {
	cache := &countingCache{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunCleanup(ctx, cache, 10*time.Millisecond, logger)
		close(done)
	}()

	time.Sleep(55 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunCleanup did not stop after cancel")
	}

	if cache.calls.Load() == 0 {
		t.Error("expected at least one cleanup call")
	}
}

func TestRunCleanup_ZeroInterval(t *testing.T) {
	cache := &countingCache{}
	RunCleanup(context.Background(), cache, 0, slog.Default())

	if cache.calls.Load() != 0 {
		t.Error("expected no cleanup with zero interval")
	}
}
