package transcribe

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"google.golang.org/genai"

	"contentSummarizer/internal/domain/entity"
	"contentSummarizer/internal/domain/repository"
)

const (
	defaultGeminiModel = "gemini-2.5-flash"
	// インライン送信できる音声サイズの上限
	maxInlineAudioBytes = 20 << 20

	transcribeInstruction = "Transcribe the spoken content of this audio verbatim in its original language. Return only the transcript text."
)

var audioMIMETypes = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".wav":  "audio/wav",
	".webm": "audio/webm",
	".opus": "audio/ogg",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".aac":  "audio/aac",
}

type geminiTranscriber struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiTranscriber はGemini APIに音声を直接送るTranscriberRepositoryを生成します
func NewGeminiTranscriber(ctx context.Context, cfg Config) (repository.TranscriberRepository, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}

	return &geminiTranscriber{client: client, model: model, timeout: timeout}, nil
}

func (g *geminiTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", entity.NewError(entity.KindTranscription, "failed to read audio file", err)
	}
	if len(data) > maxInlineAudioBytes {
		return "", entity.Errorf(entity.KindTranscription, "audio file too large for inline transcription: %d bytes", len(data))
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	parts := []*genai.Part{
		genai.NewPartFromText(transcribeInstruction),
		genai.NewPartFromBytes(data, audioMIMEType(audioPath)),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", entity.NewError(entity.KindTranscription, "gemini transcription failed", err)
	}

	var sb strings.Builder
	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		for _, part := range result.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
	}

	text := entity.NormalizeText(sb.String())
	if text == "" {
		return "", entity.Errorf(entity.KindTranscription, "empty transcript for %s", filepath.Base(audioPath))
	}
	return text, nil
}

func audioMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := audioMIMETypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
