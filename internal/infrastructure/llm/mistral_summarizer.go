package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"contentSummarizer/internal/domain/entity"
	"contentSummarizer/internal/domain/repository"
)

const (
	mistralDefaultBaseURL = "https://api.mistral.ai"
	mistralDefaultModel   = "open-mixtral-8x7b"
	mistralTemperature    = 0.5
	maxErrorBodyBytes     = 4096
)

// mistralSummarizer はMistral Chat Completions APIを使用した要約実装
type mistralSummarizer struct {
	apiKey        string
	baseURL       string
	model         string
	maxTokens     int
	maxInputChars int
	systemPrompt  string
	client        *http.Client
}

type mistralMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mistralRequest struct {
	Model       string           `json:"model"`
	Messages    []mistralMessage `json:"messages"`
	Temperature float64          `json:"temperature"`
	MaxTokens   int              `json:"max_tokens"`
}

type mistralResponse struct {
	Choices []struct {
		Message mistralMessage `json:"message"`
	} `json:"choices"`
}

func newMistralSummarizer(cfg Config) (repository.SummarizerRepository, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("mistral API key is required (set LLM_API_KEY)")
	}

	model := cfg.Model
	if model == "" {
		model = mistralDefaultModel
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = mistralDefaultBaseURL
	}

	return &mistralSummarizer{
		apiKey:        cfg.APIKey,
		baseURL:       baseURL,
		model:         model,
		maxTokens:     maxTokensOrDefault(cfg.MaxTokens),
		maxInputChars: cfg.MaxInputChars,
		systemPrompt:  systemInstructionOrDefault(cfg.SystemInstruction),
		client:        &http.Client{Timeout: timeoutOrDefault(cfg.Timeout)},
	}, nil
}

func (s *mistralSummarizer) Summarize(ctx context.Context, text string, depth entity.SummaryDepth) (string, error) {
	prompt := s.systemPrompt + "\n" + BuildPrompt(text, depth, s.maxInputChars)

	jsonData, err := json.Marshal(mistralRequest{
		Model:       s.model,
		Messages:    []mistralMessage{{Role: "user", Content: prompt}},
		Temperature: mistralTemperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return "", entity.NewError(entity.KindSummarization, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", entity.NewError(entity.KindSummarization, "failed to create request", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", entity.NewError(entity.KindSummarization, "failed to call mistral api", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", entity.NewError(entity.KindSummarization, "mistral api error",
			&entity.UpstreamError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))})
	}

	var apiResp mistralResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", entity.NewError(entity.KindSummarization, "failed to decode response", err)
	}

	if len(apiResp.Choices) == 0 {
		return "", entity.Errorf(entity.KindSummarization, "no summary returned from mistral api")
	}

	summary := strings.TrimSpace(apiResp.Choices[0].Message.Content)
	if summary == "" {
		return "", entity.Errorf(entity.KindSummarization, "empty summary returned from mistral api")
	}
	return summary, nil
}

func (s *mistralSummarizer) IsEnabled() bool {
	return true
}
