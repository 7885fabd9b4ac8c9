package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"contentSummarizer/internal/domain/entity"
	"contentSummarizer/internal/domain/repository"
)

const (
	geminiDefaultModel = "gemini-2.5-flash"
	geminiTemperature  = float32(0.5)
)

// geminiSummarizer はGoogle Gemini API(genai SDK)を使用した要約実装
type geminiSummarizer struct {
	client        *genai.Client
	model         string
	maxTokens     int32
	maxInputChars int
	systemPrompt  string
	timeout       time.Duration
}

func newGeminiSummarizer(ctx context.Context, cfg Config) (repository.SummarizerRepository, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required (set LLM_API_KEY)")
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
		model = geminiDefaultModel
	}

	return &geminiSummarizer{
		client:        client,
		model:         model,
		maxTokens:     int32(maxTokensOrDefault(cfg.MaxTokens)),
		maxInputChars: cfg.MaxInputChars,
		systemPrompt:  systemInstructionOrDefault(cfg.SystemInstruction),
		timeout:       timeoutOrDefault(cfg.Timeout),
	}, nil
}

func (s *geminiSummarizer) Summarize(ctx context.Context, text string, depth entity.SummaryDepth) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(BuildPrompt(text, depth, s.maxInputChars)), s.generateConfig())
	if err != nil {
		return "", entity.NewError(entity.KindSummarization, "gemini api error", upstreamFromGenai(err))
	}

	var sb strings.Builder
	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		for _, part := range result.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
	}

	summary := strings.TrimSpace(sb.String())
	if summary == "" {
		return "", entity.Errorf(entity.KindSummarization, "no summary returned from gemini api")
	}
	return summary, nil
}

func (s *geminiSummarizer) IsEnabled() bool {
	return true
}

func (s *geminiSummarizer) generateConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(s.systemPrompt, genai.RoleUser),
		MaxOutputTokens:   s.maxTokens,
		Temperature:       genai.Ptr(geminiTemperature),
	}
}

// upstreamFromGenai はgenaiのAPIエラーをステータス付きのUpstreamErrorに変換します
func upstreamFromGenai(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &entity.UpstreamError{StatusCode: apiErr.Code, Body: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &entity.UpstreamError{StatusCode: apiErrPtr.Code, Body: apiErrPtr.Message}
	}
	return err
}
