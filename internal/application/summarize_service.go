package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"contentSummarizer/internal/domain/entity"
	"contentSummarizer/internal/domain/repository"
)

// Dependencies はSummarizeServiceが使うリポジトリ一式
type Dependencies struct {
	Articles    repository.ArticleRepository
	Documents   repository.DocumentRepository
	Audio       repository.AudioRepository
	Playlists   repository.PlaylistRepository
	Transcriber repository.TranscriberRepository
	Feeds       repository.FeedRepository
	Downloader  repository.MediaDownloader
	Summarizer  repository.SummarizerRepository
	Cache       repository.SummaryCacheRepository // nilならキャッシュしない
	Cookies     repository.CookieRepository
	Temp        repository.TempRepository
}

// SummarizeService は入力の種類ごとに抽出・文字起こし・要約を振り分けます
type SummarizeService struct {
	deps   Dependencies
	logger *slog.Logger
}

func NewSummarizeService(deps Dependencies, logger *slog.Logger) *SummarizeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummarizeService{deps: deps, logger: logger}
}

// Extract はソースからテキストを取り出します。要約は行わない
func (s *SummarizeService) Extract(ctx context.Context, src entity.ContentSource) (*entity.ExtractionResult, error) {
	switch src.Type {
	case entity.SourceArticle:
		return s.deps.Articles.FetchArticle(ctx, src.URL)
	case entity.SourceYouTubeVideo:
		return s.extractVideo(ctx, src.URL)
	case entity.SourceYouTubePlaylist:
		return nil, entity.Errorf(entity.KindUnsupportedInput, "playlist urls must be summarized as a playlist: %s", src.URL)
	case entity.SourceUploadedFile:
		return s.extractDocument(src)
	case entity.SourceUploadedAudio:
		return s.extractUploadedAudio(ctx, src)
	case entity.SourcePodcastEpisode:
		return s.extractPodcast(ctx, src.URL)
	default:
		return nil, entity.Errorf(entity.KindUnsupportedInput, "unsupported source type: %s", src.Type)
	}
}

// Summarize は抽出したテキストを指定の深さで要約します。どの段階の失敗もそのまま返す
func (s *SummarizeService) Summarize(ctx context.Context, src entity.ContentSource, depth entity.SummaryDepth) (*entity.Summary, error) {
	res, err := s.Extract(ctx, src)
	if err != nil {
		s.logger.Error("extraction failed", "source", src.Type, "url", src.URL, "filename", src.Filename, "error", err)
		return nil, err
	}

	text, err := s.summarizeText(ctx, res.Text, depth)
	if err != nil {
		s.logger.Error("summarization failed", "source", src.Type, "url", src.URL, "filename", src.Filename, "error", err)
		return nil, err
	}

	return &entity.Summary{
		SourceType: res.SourceType,
		Depth:      depth,
		Text:       text,
		Metadata:   res.Metadata,
	}, nil
}

// SummarizePlaylist は再生リストの動画を順番に要約します。動画単位の失敗はItemに記録して続行する
func (s *SummarizeService) SummarizePlaylist(ctx context.Context, playlistURL string, depth entity.SummaryDepth) (*entity.PlaylistSummaryBatch, error) {
	sourceType, err := entity.ClassifyURL(playlistURL)
	if err != nil {
		return nil, err
	}
	if sourceType != entity.SourceYouTubePlaylist {
		return nil, entity.Errorf(entity.KindUnsupportedInput, "not a YouTube playlist url: %s", playlistURL)
	}
	playlistURL = strings.TrimSpace(playlistURL)

	videoURLs, err := s.deps.Playlists.ResolvePlaylist(ctx, playlistURL)
	if err != nil {
		s.logger.Error("playlist resolution failed", "url", playlistURL, "error", err)
		return nil, err
	}

	s.logger.Info("playlist resolved", "url", playlistURL, "videos", len(videoURLs))

	batch := &entity.PlaylistSummaryBatch{
		PlaylistURL: playlistURL,
		Depth:       depth,
		Items:       make([]entity.BatchItem, 0, len(videoURLs)),
	}
	for i, videoURL := range videoURLs {
		s.logger.Info("summarizing playlist video", "index", i+1, "total", len(videoURLs), "url", videoURL)

		summary, err := s.Summarize(ctx, entity.NewVideoSource(videoURL), depth)
		batch.Items = append(batch.Items, entity.BatchItem{
			VideoURL: videoURL,
			Summary:  summary,
			Err:      err,
		})
	}

	s.logger.Info("playlist summarized", "url", playlistURL, "succeeded", batch.Succeeded(), "failed", batch.Failed())
	return batch, nil
}

// SummarizePodcast はフィードの最新エピソードを文字起こしして要約します
func (s *SummarizeService) SummarizePodcast(ctx context.Context, rssURL string, depth entity.SummaryDepth) (*entity.Summary, error) {
	src, err := entity.NewPodcastSource(rssURL)
	if err != nil {
		return nil, err
	}
	return s.Summarize(ctx, src, depth)
}

// UploadCookies はyt-dlp用のクッキーファイルを置き換えます
func (s *SummarizeService) UploadCookies(ctx context.Context, filename string, data []byte) error {
	if !strings.HasSuffix(strings.ToLower(filename), ".txt") {
		return entity.Errorf(entity.KindInvalidInput, "invalid file type. Please upload a .txt file")
	}
	if len(data) == 0 {
		return entity.Errorf(entity.KindInvalidInput, "cookie file is empty")
	}
	if err := s.deps.Cookies.Save(ctx, data); err != nil {
		return fmt.Errorf("failed to save cookies: %w", err)
	}
	s.logger.Info("cookies uploaded", "bytes", len(data))
	return nil
}

func (s *SummarizeService) extractVideo(ctx context.Context, videoURL string) (*entity.ExtractionResult, error) {
	tmp, err := s.deps.Temp.Acquire("video")
	if err != nil {
		return nil, entity.NewError(entity.KindDownload, "failed to prepare temp dir", err)
	}
	defer tmp.Release()

	var opts repository.AcquireOptions
	if s.deps.Cookies != nil {
		cookieFile, err := s.deps.Cookies.Path(ctx)
		if err != nil {
			s.logger.Warn("cookie file unavailable", "error", err)
		}
		opts.CookieFile = cookieFile
	}

	audioPath, err := s.deps.Audio.AcquireAudio(ctx, videoURL, tmp.Path(), opts)
	if err != nil {
		return nil, err
	}

	text, err := s.transcribe(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	return entity.NewExtractionResult(entity.SourceYouTubeVideo, text, map[string]string{entity.MetaURL: videoURL})
}

func (s *SummarizeService) extractDocument(src entity.ContentSource) (*entity.ExtractionResult, error) {
	text, err := s.deps.Documents.ExtractDocument(src.Filename, src.Data)
	if err != nil {
		return nil, err
	}
	return entity.NewExtractionResult(entity.SourceUploadedFile, text, map[string]string{entity.MetaFilename: src.Filename})
}

func (s *SummarizeService) extractUploadedAudio(ctx context.Context, src entity.ContentSource) (*entity.ExtractionResult, error) {
	if len(src.Data) == 0 {
		return nil, entity.Errorf(entity.KindInvalidInput, "uploaded audio is empty")
	}

	tmp, err := s.deps.Temp.Acquire("upload")
	if err != nil {
		return nil, entity.NewError(entity.KindTranscription, "failed to prepare temp dir", err)
	}
	defer tmp.Release()

	ext := src.Extension()
	if ext == "" {
		ext = ".bin"
	}
	audioPath := filepath.Join(tmp.Path(), "upload"+ext)
	if err := os.WriteFile(audioPath, src.Data, 0o600); err != nil {
		return nil, entity.NewError(entity.KindTranscription, "failed to stage uploaded audio", err)
	}

	text, err := s.transcribe(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	return entity.NewExtractionResult(entity.SourceUploadedAudio, text, map[string]string{entity.MetaFilename: src.Filename})
}

func (s *SummarizeService) extractPodcast(ctx context.Context, rssURL string) (*entity.ExtractionResult, error) {
	episode, err := s.deps.Feeds.LatestEpisode(ctx, rssURL)
	if err != nil {
		return nil, err
	}

	s.logger.Info("podcast episode selected", "feed", rssURL, "title", episode.Title, "audio", episode.AudioURL)

	tmp, err := s.deps.Temp.Acquire("podcast")
	if err != nil {
		return nil, entity.NewError(entity.KindDownload, "failed to prepare temp dir", err)
	}
	defer tmp.Release()

	audioPath, err := s.deps.Downloader.Download(ctx, episode.AudioURL, tmp.Path())
	if err != nil {
		return nil, err
	}

	text, err := s.transcribe(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	episodeURL := episode.Link
	if episodeURL == "" {
		episodeURL = episode.AudioURL
	}
	return entity.NewExtractionResult(entity.SourcePodcastEpisode, text, map[string]string{
		entity.MetaURL:          rssURL,
		entity.MetaEpisodeTitle: episode.Title,
		entity.MetaEpisodeURL:   episodeURL,
	})
}

func (s *SummarizeService) transcribe(ctx context.Context, audioPath string) (string, error) {
	text, err := s.deps.Transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		if _, ok := entity.KindOf(err); ok {
			return "", err
		}
		return "", entity.NewError(entity.KindTranscription, "failed to transcribe audio", err)
	}
	return text, nil
}

// summarizeText はキャッシュを確認してからLLMを呼びます。キャッシュの失敗は要約を止めない
func (s *SummarizeService) summarizeText(ctx context.Context, text string, depth entity.SummaryDepth) (string, error) {
	if s.deps.Summarizer == nil || !s.deps.Summarizer.IsEnabled() {
		return "", entity.Errorf(entity.KindSummarization, "summarizer is not configured")
	}

	key := CacheKey(text, depth)
	if s.deps.Cache != nil {
		cached, ok, err := s.deps.Cache.GetSummary(ctx, key)
		if err != nil {
			s.logger.Warn("summary cache lookup failed", "error", err)
		}
		if ok {
			s.logger.Debug("summary cache hit", "depth", depth)
			return cached, nil
		}
	}

	summary, err := s.deps.Summarizer.Summarize(ctx, text, depth)
	if err != nil {
		if _, ok := entity.KindOf(err); ok {
			return "", err
		}
		return "", entity.NewError(entity.KindSummarization, "failed to summarize", err)
	}

	if s.deps.Cache != nil {
		if err := s.deps.Cache.SaveSummary(ctx, key, summary); err != nil {
			s.logger.Warn("failed to cache summary", "error", err)
		}
	}
	return summary, nil
}

// CacheKey は深さとテキストから要約キャッシュのキーを作ります
func CacheKey(text string, depth entity.SummaryDepth) string {
	sum := sha256.Sum256([]byte(string(depth) + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
