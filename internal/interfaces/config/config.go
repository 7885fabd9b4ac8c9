package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"contentSummarizer/internal/infrastructure/llm"
	"contentSummarizer/internal/infrastructure/transcribe"
)

type Config struct {
	ListenAddr  string `envconfig:"LISTEN_ADDR" default:":8000"`
	MaxUploadMB int64  `envconfig:"MAX_UPLOAD_MB" default:"100"`

	// LLM要約
	LLMProvider          string `envconfig:"LLM_PROVIDER" default:"mistral"`
	LLMAPIKey            string `envconfig:"LLM_API_KEY"`
	LLMModel             string `envconfig:"LLM_MODEL"`
	LLMRegion            string `envconfig:"LLM_REGION"`
	LLMAPIBase           string `envconfig:"LLM_API_BASE"`
	LLMMaxTokens         int    `envconfig:"LLM_MAX_TOKENS" default:"800"`
	LLMMaxInputChars     int    `envconfig:"LLM_MAX_INPUT_CHARS" default:"12000"`
	LLMTimeout           int    `envconfig:"LLM_TIMEOUT" default:"60"`
	LLMSystemInstruction string `envconfig:"LLM_SYSTEM_INSTRUCTION"`

	// 文字起こし
	TranscriberProvider string `envconfig:"TRANSCRIBER_PROVIDER" default:"whisper"`
	TranscriberAPIKey   string `envconfig:"TRANSCRIBER_API_KEY"`
	TranscriberModel    string `envconfig:"TRANSCRIBER_MODEL"`
	WhisperBinary       string `envconfig:"WHISPER_BINARY" default:"whisper-cli"`
	WhisperModelPath    string `envconfig:"WHISPER_MODEL_PATH" default:"models/ggml-base.bin"`
	WhisperLanguage     string `envconfig:"WHISPER_LANGUAGE" default:"auto"`
	WhisperThreads      int    `envconfig:"WHISPER_THREADS" default:"4"`

	// 外部コマンド
	FFmpegBinary string `envconfig:"FFMPEG_BINARY" default:"ffmpeg"`
	YtDlpBinary  string `envconfig:"YTDLP_BINARY" default:"yt-dlp"`

	CookieFile   string `envconfig:"COOKIE_FILE" default:"youtube_cookies.txt"`
	TempDir      string `envconfig:"TEMP_DIR"`
	FetchTimeout int    `envconfig:"FETCH_TIMEOUT" default:"10"`

	// 要約キャッシュ。CACHE_PATHが空ならメモリ
	CachePath string `envconfig:"CACHE_PATH"`
	CacheTTL  int    `envconfig:"CACHE_TTL" default:"86400"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	// 旧来の環境変数名も受け付ける
	if cfg.LLMAPIKey == "" {
		cfg.LLMAPIKey = os.Getenv("MISTRAL_API_KEY")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.LLMProvider {
	case "mistral", "gemini", "bedrock", "noop", "":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER: %s", c.LLMProvider)
	}
	switch c.TranscriberProvider {
	case "whisper", "gemini", "":
	default:
		return fmt.Errorf("unknown TRANSCRIBER_PROVIDER: %s", c.TranscriberProvider)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json", "":
	default:
		return fmt.Errorf("unknown LOG_FORMAT: %s", c.LogFormat)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	return nil
}

func (c *Config) GetLLMConfig() llm.Config {
	return llm.Config{
		Provider:          c.LLMProvider,
		APIKey:            c.LLMAPIKey,
		Model:             c.LLMModel,
		Region:            c.LLMRegion,
		BaseURL:           c.LLMAPIBase,
		MaxTokens:         c.LLMMaxTokens,
		MaxInputChars:     c.LLMMaxInputChars,
		SystemInstruction: c.LLMSystemInstruction,
		Timeout:           c.GetLLMTimeout(),
	}
}

// GetTranscriberConfig はgeminiの場合、専用キーが無ければLLMのキーを使う
func (c *Config) GetTranscriberConfig() transcribe.Config {
	apiKey := c.TranscriberAPIKey
	if apiKey == "" && c.LLMProvider == "gemini" {
		apiKey = c.LLMAPIKey
	}
	return transcribe.Config{
		Provider:      c.TranscriberProvider,
		WhisperBinary: c.WhisperBinary,
		ModelPath:     c.WhisperModelPath,
		Language:      c.WhisperLanguage,
		Threads:       c.WhisperThreads,
		FFmpegBinary:  c.FFmpegBinary,
		APIKey:        apiKey,
		Model:         c.TranscriberModel,
	}
}

func (c *Config) GetLLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeout) * time.Second
}

func (c *Config) GetFetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

func (c *Config) GetCacheTTL() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

func (c *Config) GetMaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func (c *Config) GetLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger はLOG_FORMAT/LOG_LEVELに従ったロガーを作ります
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.GetLogLevel()}
	if strings.ToLower(c.LogFormat) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
