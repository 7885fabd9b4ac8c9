package repository

import "context"

// SummaryCacheRepository stores finished summaries keyed by content digest.
type SummaryCacheRepository interface {
	GetSummary(ctx context.Context, key string) (string, bool, error)
	SaveSummary(ctx context.Context, key, summary string) error
}
