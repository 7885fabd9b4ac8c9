package repository

import (
	"context"

	"contentSummarizer/internal/domain/entity"
)

// ArticleRepository fetches a web page and extracts its main text.
type ArticleRepository interface {
	FetchArticle(ctx context.Context, url string) (*entity.ExtractionResult, error)
}

// DocumentRepository extracts text from uploaded file bytes by declared extension.
type DocumentRepository interface {
	ExtractDocument(filename string, data []byte) (string, error)
}

// CookieRepository is the single on-disk cookie file used for gated videos.
type CookieRepository interface {
	// Path returns the cookie file path, or "" when none has been uploaded.
	Path(ctx context.Context) (string, error)
	Save(ctx context.Context, data []byte) error
}

// TempRepository hands out request-scoped scratch directories.
type TempRepository interface {
	Acquire(prefix string) (TempDir, error)
}

// TempDir is removed by Release, which is safe to call more than once.
type TempDir interface {
	Path() string
	Release()
}
