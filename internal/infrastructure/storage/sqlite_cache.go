package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"contentSummarizer/internal/domain/repository"

	_ "modernc.org/sqlite"
)

type sqliteCache struct {
	db  *sql.DB
	ttl time.Duration
}

// NewSQLiteCacheRepository はSQLiteに要約を保存するキャッシュを生成します
func NewSQLiteCacheRepository(dbPath string, ttl time.Duration) (repository.SummaryCacheRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
	}

	cache := &sqliteCache{db: db, ttl: ttl}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := cache.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return cache, nil
}

func (c *sqliteCache) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS summaries (
			cache_key TEXT PRIMARY KEY,
			summary TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_created_at ON summaries(created_at)`,
	}

	for _, query := range queries {
		if _, err := c.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}

	return nil
}

func (c *sqliteCache) GetSummary(ctx context.Context, key string) (string, bool, error) {
	var (
		summary   string
		createdAt int64
	)
	err := c.db.QueryRowContext(
		ctx,
		"SELECT summary, created_at FROM summaries WHERE cache_key = ?",
		key,
	).Scan(&summary, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get cached summary: %w", err)
	}

	if c.ttl > 0 && time.Since(time.Unix(createdAt, 0)) > c.ttl {
		return "", false, nil
	}
	return summary, true, nil
}

func (c *sqliteCache) SaveSummary(ctx context.Context, key, summary string) error {
	_, err := c.db.ExecContext(
		ctx,
		`INSERT INTO summaries (cache_key, summary, created_at) VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET summary = excluded.summary, created_at = excluded.created_at`,
		key,
		summary,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}

	return nil
}

func (c *sqliteCache) Close() error {
	return c.db.Close()
}

// CleanupExpired はTTLを過ぎた行を削除します。TTLが0なら何もしない
func (c *sqliteCache) CleanupExpired(ctx context.Context) (int64, error) {
	if c.ttl <= 0 {
		return 0, nil
	}

	cutoff := time.Now().Add(-c.ttl).Unix()
	result, err := c.db.ExecContext(
		ctx,
		"DELETE FROM summaries WHERE created_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired summaries: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}
