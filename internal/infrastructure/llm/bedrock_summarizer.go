package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go/auth/bearer"

	"contentSummarizer/internal/domain/entity"
	"contentSummarizer/internal/domain/repository"
)

type bedrockConverser interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type bedrockSummarizer struct {
	client        bedrockConverser
	modelID       string
	maxTokens     int32
	maxInputChars int
	systemPrompt  string
	timeout       time.Duration
}

func newBedrockSummarizer(ctx context.Context, cfg Config) (repository.SummarizerRepository, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("bedrock model ID is required")
	}
	bearerToken := cfg.APIKey
	if bearerToken == "" {
		return nil, fmt.Errorf("bedrock bearer token is required (set LLM_API_KEY)")
	}

	region := cfg.Region
	if region == "" {
		return nil, fmt.Errorf("bedrock region is required (set LLM_REGION)")
	}

	sdkConfig, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	sdkConfig.BearerAuthTokenProvider = bearer.NewTokenCache(bearer.StaticTokenProvider{
		Token: bearer.Token{Value: bearerToken},
	})
	sdkConfig.AuthSchemePreference = []string{"httpBearerAuth"}

	client := bedrockruntime.NewFromConfig(sdkConfig, func(o *bedrockruntime.Options) {
		if cfg.BaseURL != "" {
			o.BaseEndpoint = aws.String(cfg.BaseURL)
		}
	})

	return &bedrockSummarizer{
		client:        client,
		modelID:       cfg.Model,
		maxTokens:     int32(maxTokensOrDefault(cfg.MaxTokens)),
		maxInputChars: cfg.MaxInputChars,
		systemPrompt:  systemInstructionOrDefault(cfg.SystemInstruction),
		timeout:       timeoutOrDefault(cfg.Timeout),
	}, nil
}

func (s *bedrockSummarizer) Summarize(ctx context.Context, text string, depth entity.SummaryDepth) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	input := s.buildConverseInput(BuildPrompt(text, depth, s.maxInputChars))
	resp, err := s.client.Converse(ctx, input)
	if err != nil {
		return "", entity.NewError(entity.KindSummarization, "failed to invoke bedrock model", upstreamFromAWS(err))
	}

	summary, err := s.parseResponse(resp)
	if err != nil {
		return "", entity.NewError(entity.KindSummarization, "invalid bedrock response", err)
	}

	return summary, nil
}

func (s *bedrockSummarizer) IsEnabled() bool {
	return true
}

func (s *bedrockSummarizer) buildConverseInput(prompt string) *bedrockruntime.ConverseInput {
	temperature := float32(0.5)
	topP := float32(0.9)

	return &bedrockruntime.ConverseInput{
		ModelId: aws.String(s.modelID),
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: prompt},
				},
			},
		},
		System: []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: s.systemPrompt},
		},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(s.maxTokens),
			Temperature: aws.Float32(temperature),
			TopP:        aws.Float32(topP),
		},
	}
}

func (s *bedrockSummarizer) parseResponse(resp *bedrockruntime.ConverseOutput) (string, error) {
	messageOutput, ok := resp.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("unexpected bedrock response output type: %T", resp.Output)
	}

	if len(messageOutput.Value.Content) == 0 {
		return "", fmt.Errorf("no content in bedrock response")
	}

	var builder strings.Builder
	for _, block := range messageOutput.Value.Content {
		textBlock, ok := block.(*types.ContentBlockMemberText)
		if !ok {
			continue
		}
		text := strings.TrimSpace(textBlock.Value)
		if text == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(text)
	}

	summary := strings.TrimSpace(builder.String())
	if summary == "" {
		return "", fmt.Errorf("empty summary in bedrock response")
	}
	return summary, nil
}

// upstreamFromAWS はHTTPステータスが取れればUpstreamErrorに包み直す
func upstreamFromAWS(err error) error {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return &entity.UpstreamError{StatusCode: respErr.HTTPStatusCode(), Body: respErr.Error()}
	}
	return err
}
