package rss

import (
	"context"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"contentSummarizer/internal/domain/entity"
	"contentSummarizer/internal/domain/repository"

	"github.com/mmcdole/gofeed"
)

const (
	userAgent    = "Mozilla/5.0 (compatible; ContentSummarizer/1.0)"
	maxFeedBytes = 10 << 20
)

var audioExtensions = map[string]bool{
	".mp3": true, ".m4a": true, ".aac": true, ".ogg": true, ".opus": true, ".wav": true, ".flac": true,
}

type feedRepository struct {
	parser *gofeed.Parser
	client *http.Client
}

// NewFeedRepository はポッドキャストフィードを読むFeedRepositoryを生成します
func NewFeedRepository(timeout time.Duration) repository.FeedRepository {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &feedRepository{
		parser: gofeed.NewParser(),
		client: &http.Client{Timeout: timeout},
	}
}

// LatestEpisode は公開日が最も新しいエントリを返します。日付がなければフィード順で先頭
func (r *feedRepository) LatestEpisode(ctx context.Context, rssURL string) (*entity.Episode, error) {
	feed, err := r.fetch(ctx, rssURL)
	if err != nil {
		return nil, err
	}

	if len(feed.Items) == 0 {
		return nil, entity.Errorf(entity.KindNotFound, "no episodes found in feed")
	}

	latest := feed.Items[0]
	for _, item := range feed.Items[1:] {
		if item.PublishedParsed == nil {
			continue
		}
		if latest.PublishedParsed == nil || item.PublishedParsed.After(*latest.PublishedParsed) {
			latest = item
		}
	}

	audioURL := findAudioURL(latest)
	if audioURL == "" {
		return nil, entity.Errorf(entity.KindNotFound, "no audio found in the latest episode")
	}

	episode := &entity.Episode{
		Title:    strings.TrimSpace(latest.Title),
		Link:     latest.Link,
		AudioURL: audioURL,
	}
	if latest.PublishedParsed != nil {
		episode.Published = *latest.PublishedParsed
	}
	return episode, nil
}

func (r *feedRepository) fetch(ctx context.Context, rssURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rssURL, nil)
	if err != nil {
		return nil, entity.NewError(entity.KindFetch, "failed to create request", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, entity.NewError(entity.KindFetch, "failed to fetch feed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, entity.Errorf(entity.KindFetch, "failed to fetch feed: HTTP status %d", resp.StatusCode)
	}

	feed, err := r.parser.Parse(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, entity.NewError(entity.KindFetch, "failed to parse RSS feed", err)
	}
	return feed, nil
}

// findAudioURL はaudio/*のenclosureを探す。typeが無いものは拡張子で判定
func findAudioURL(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(enc.Type), "audio/") {
			return enc.URL
		}
	}
	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" || enc.Type != "" {
			continue
		}
		if audioExtensions[strings.ToLower(path.Ext(stripQuery(enc.URL)))] {
			return enc.URL
		}
	}
	return ""
}

func stripQuery(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		return u[:i]
	}
	return u
}
