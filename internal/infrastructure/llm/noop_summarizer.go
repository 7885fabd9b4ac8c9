package llm

import (
	"context"

	"contentSummarizer/internal/domain/entity"
	"contentSummarizer/internal/domain/repository"
)

// noopSummarizer は要約機能が無効の場合に使用される何もしない実装
type noopSummarizer struct{}

func newNoopSummarizer() repository.SummarizerRepository {
	return &noopSummarizer{}
}

func (s *noopSummarizer) Summarize(ctx context.Context, text string, depth entity.SummaryDepth) (string, error) {
	return "", entity.Errorf(entity.KindSummarization, "summarizer is not configured")
}

func (s *noopSummarizer) IsEnabled() bool {
	return false
}
