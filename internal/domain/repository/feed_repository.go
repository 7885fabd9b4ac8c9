package repository

import (
	"context"

	"contentSummarizer/internal/domain/entity"
)

// FeedRepository はポッドキャストRSSから最新エピソードを取り出す
type FeedRepository interface {
	LatestEpisode(ctx context.Context, rssURL string) (*entity.Episode, error)
}
