package transcribe

import (
	"context"
	"fmt"
	"time"

	"contentSummarizer/internal/domain/repository"
	"contentSummarizer/internal/infrastructure/executor"
)

// Config は文字起こしプロバイダの設定
type Config struct {
	Provider string

	// whisper
	WhisperBinary string
	ModelPath     string
	Language      string
	Threads       int
	FFmpegBinary  string

	// gemini
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// NewTranscriberRepository はプロバイダに応じたTranscriberRepositoryを返します
func NewTranscriberRepository(ctx context.Context, cfg Config, exec executor.Executor) (repository.TranscriberRepository, error) {
	switch cfg.Provider {
	case "whisper", "":
		return NewWhisperTranscriber(cfg, exec)
	case "gemini":
		return NewGeminiTranscriber(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported transcriber provider: %s", cfg.Provider)
	}
}
