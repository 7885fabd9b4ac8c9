package repository

import (
	"context"

	"contentSummarizer/internal/domain/entity"
)

// SummarizerRepository はテキストの要約機能を提供するインターフェース
type SummarizerRepository interface {
	// Summarize は抽出済みテキストを指定された詳細度で要約します
	Summarize(ctx context.Context, text string, depth entity.SummaryDepth) (string, error)

	// IsEnabled は要約機能が有効かどうかを返します
	IsEnabled() bool
}
