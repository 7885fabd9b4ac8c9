package llm

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"contentSummarizer/internal/domain/entity"
	"contentSummarizer/internal/domain/repository"
)

// Config はLLM要約機能の設定
type Config struct {
	Provider          string        // "mistral", "gemini", "bedrock" or "noop" (empty defaults to "noop")
	APIKey            string        // LLM APIキー (bedrockではbearer token)
	Model             string        // モデル名
	Region            string        // bedrockのリージョン
	BaseURL           string        // APIのベースURL (テスト・プロキシ用)
	MaxTokens         int           // 最大出力トークン数
	MaxInputChars     int           // 入力テキストの最大文字数(rune)
	SystemInstruction string        // カスタムシステムインストラクション
	Timeout           time.Duration // APIタイムアウト
}

const (
	// DefaultSystemInstruction はデフォルトのシステムインストラクション
	DefaultSystemInstruction = "You are a multilingual summarization expert."

	DefaultMaxTokens     = 800
	DefaultMaxInputChars = 12000
	defaultTimeout       = 60 * time.Second
	truncationMarker     = "..."
	summaryInstruction   = "Summarize the following content at a %s level. Only return the summary. No commentary.\n\nContent:\n%s"
)

// NewSummarizerRepository はConfigに基づいてSummarizerRepositoryを生成します
func NewSummarizerRepository(ctx context.Context, cfg Config) (repository.SummarizerRepository, error) {
	switch cfg.Provider {
	case "mistral":
		return newMistralSummarizer(cfg)
	case "gemini":
		return newGeminiSummarizer(ctx, cfg)
	case "bedrock":
		return newBedrockSummarizer(ctx, cfg)
	case "noop", "":
		return newNoopSummarizer(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}

// BuildPrompt は深さ指定付きのユーザープロンプトを組み立てます。textは先に切り詰める
func BuildPrompt(text string, depth entity.SummaryDepth, maxChars int) string {
	return fmt.Sprintf(summaryInstruction, depth, Truncate(text, maxChars))
}

// Truncate はmaxChars(rune数)を超えるテキストを切り詰めて末尾に"..."を付けます
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxInputChars
	}
	if utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxChars]) + truncationMarker
}

func systemInstructionOrDefault(s string) string {
	if s == "" {
		return DefaultSystemInstruction
	}
	return s
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d == 0 {
		return defaultTimeout
	}
	return d
}

func maxTokensOrDefault(n int) int {
	if n <= 0 {
		return DefaultMaxTokens
	}
	return n
}
