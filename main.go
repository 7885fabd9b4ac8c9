package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"contentSummarizer/internal/application"
	"contentSummarizer/internal/domain/entity"
	"contentSummarizer/internal/domain/repository"
	"contentSummarizer/internal/infrastructure/document"
	"contentSummarizer/internal/infrastructure/executor"
	"contentSummarizer/internal/infrastructure/llm"
	"contentSummarizer/internal/infrastructure/media"
	"contentSummarizer/internal/infrastructure/rss"
	"contentSummarizer/internal/infrastructure/scraper"
	"contentSummarizer/internal/infrastructure/storage"
	"contentSummarizer/internal/infrastructure/transcribe"
	"contentSummarizer/internal/infrastructure/youtube"
	"contentSummarizer/internal/interfaces/api"
	"contentSummarizer/internal/interfaces/config"
)

const (
	cacheCleanupInterval = time.Hour
	shutdownTimeout      = 30 * time.Second
)

var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".m4a": true, ".ogg": true, ".flac": true,
	".webm": true, ".opus": true, ".aac": true,
}

func main() {
	app := &cli.App{
		Name:   "content-summarizer",
		Usage:  "Summarize articles, YouTube videos, podcasts and uploaded files",
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP API server",
				Action: serveAction,
			},
			{
				Name:      "extract",
				Usage:     "Extract text from a URL or local file and print it",
				ArgsUsage: "<path|url>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "summarize", Usage: "summarize the extracted text"},
					&cli.StringFlag{Name: "depth", Value: string(entity.DefaultDepth), Usage: "short, medium or detailed"},
				},
				Action: extractAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func serveAction(c *cli.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, cleanup, err := buildService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.NewServer(service, cfg.GetMaxUploadBytes(), logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func extractAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("extract requires exactly one <path|url> argument", 2)
	}
	target := c.Args().First()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, cleanup, err := buildService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	src, err := sourceFor(target)
	if err != nil {
		return err
	}

	if c.Bool("summarize") {
		depth, err := entity.ParseDepth(c.String("depth"))
		if err != nil {
			return err
		}
		if src.Type == entity.SourceYouTubePlaylist {
			batch, err := service.SummarizePlaylist(ctx, src.URL, depth)
			if err != nil {
				return err
			}
			for _, item := range batch.Items {
				if item.Err != nil {
					fmt.Fprintf(c.App.Writer, "%s\n  error: %v\n", item.VideoURL, item.Err)
					continue
				}
				fmt.Fprintf(c.App.Writer, "%s\n  %s\n", item.VideoURL, item.Summary.Text)
			}
			return nil
		}
		summary, err := service.Summarize(ctx, src, depth)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, summary.Text)
		return nil
	}

	res, err := service.Extract(ctx, src)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, res.Text)
	return nil
}

// sourceFor はhttp(s)ならURL、それ以外はローカルファイルとして扱う
func sourceFor(target string) (entity.ContentSource, error) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return entity.NewURLSource(target)
	}

	f, err := os.Open(target)
	if err != nil {
		return entity.ContentSource{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return entity.ContentSource{}, fmt.Errorf("failed to read file: %w", err)
	}

	name := filepath.Base(target)
	if audioExtensions[strings.ToLower(filepath.Ext(name))] {
		return entity.NewUploadedAudio(name, data), nil
	}
	return entity.NewUploadedFile(name, data), nil
}

func buildService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application.SummarizeService, func(), error) {
	exec := executor.New()
	fetchTimeout := cfg.GetFetchTimeout()

	// LLM要約機能のセットアップ
	summarizerRepo, err := llm.NewSummarizerRepository(ctx, cfg.GetLLMConfig())
	if err != nil {
		logger.Warn("LLM summarizer initialization failed, continuing without summarization", "provider", cfg.LLMProvider, "error", err)
		summarizerRepo, _ = llm.NewSummarizerRepository(ctx, llm.Config{Provider: "noop"})
	}

	transcriberRepo, err := transcribe.NewTranscriberRepository(ctx, cfg.GetTranscriberConfig(), exec)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize transcriber: %w", err)
	}

	cacheRepo, closeCache, err := buildCache(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanupCtx, cancelCleanup := context.WithCancel(ctx)
	if expiring, ok := cacheRepo.(storage.ExpiringCache); ok {
		go storage.RunCleanup(cleanupCtx, expiring, cacheCleanupInterval, logger)
	}

	service := application.NewSummarizeService(application.Dependencies{
		Articles:    scraper.NewArticleExtractor(fetchTimeout),
		Documents:   document.NewExtractor(),
		Audio:       youtube.NewAudioDownloader(exec, cfg.YtDlpBinary),
		Playlists:   youtube.NewPlaylistResolver(exec, cfg.YtDlpBinary),
		Transcriber: transcriberRepo,
		Feeds:       rss.NewFeedRepository(fetchTimeout),
		Downloader:  media.NewHTTPDownloader(0, 0),
		Summarizer:  summarizerRepo,
		Cache:       cacheRepo,
		Cookies:     storage.NewCookieRepository(cfg.CookieFile),
		Temp:        storage.NewTempRepository(cfg.TempDir),
	}, logger)

	cleanup := func() {
		cancelCleanup()
		closeCache()
	}
	return service, cleanup, nil
}

// buildCache はCACHE_PATHがあればSQLite、なければメモリのキャッシュを返します
func buildCache(cfg *config.Config) (repository.SummaryCacheRepository, func(), error) {
	if cfg.CachePath == "" {
		return storage.NewMemoryCacheRepository(cfg.GetCacheTTL()), func() {}, nil
	}

	cacheRepo, err := storage.NewSQLiteCacheRepository(cfg.CachePath, cfg.GetCacheTTL())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open summary cache: %w", err)
	}
	closeCache := func() {
		if closer, ok := cacheRepo.(io.Closer); ok {
			_ = closer.Close()
		}
	}
	return cacheRepo, closeCache, nil
}
