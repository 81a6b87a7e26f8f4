package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"biotech-funding-tracker/internal/ingestor/dto"
	"biotech-funding-tracker/pkg/config"
	"biotech-funding-tracker/pkg/logger"
	"biotech-funding-tracker/pkg/ratelimit"

	"golang.org/x/time/rate"
)

// openaiAIRepository implements AIRepository against any OpenAI-compatible
// chat completions endpoint (OpenAI, Groq, OpenRouter) via the configured
// base URL.
type openaiAIRepository struct {
	client         *http.Client
	cfg            config.OpenAI
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
}

// NewOpenAIRepository creates a new instance of openaiAIRepository.
func NewOpenAIRepository(cfg config.OpenAI, log *logger.Logger) AIRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	tokenLimiter := ratelimit.NewTokenLimiter(cfg.MaxTokenPerMinute)

	return &openaiAIRepository{
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		tokenLimiter:   tokenLimiter,
	}
}

// ExtractFundingEvents extracts funding round fields from one article.
func (r *openaiAIRepository) ExtractFundingEvents(ctx context.Context, article *dto.Article) (*dto.FundingExtractionResult, error) {
	prompt := BuildExtractFundingPrompt(article.Title, article.Published, article.Content)

	resp, err := r.sendRequest(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var result dto.FundingExtractionResult
	if err := r.parseResponseJSON(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// AnswerDatasetQuery answers a free-text question over the rendered dataset.
func (r *openaiAIRepository) AnswerDatasetQuery(ctx context.Context, question, dataset string) (*dto.DatasetQueryResult, error) {
	prompt := BuildDatasetQueryPrompt(question, dataset)

	resp, err := r.sendRequest(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var result dto.DatasetQueryResult
	if err := r.parseResponseJSON(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *openaiAIRepository) sendRequest(ctx context.Context, prompt string) (*dto.OpenAPIRes, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		r.logger.Error("failed to wait for request limit", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	payload := dto.OpenAPIReq{
		Model: r.cfg.Model,
		Messages: []dto.Message{
			{
				Role:    "user",
				Content: prompt,
			},
		},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.cfg.BaseURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", r.cfg.APIKey))

	r.logger.Debug("Sending request to OpenAI API", logger.StringField("url", r.cfg.BaseURL), logger.StringField("model", r.cfg.Model))

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Error("Received non-OK response from OpenAI API", logger.IntField("status_code", resp.StatusCode), logger.StringField("url", r.cfg.BaseURL))
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("received non-OK response from OpenAI API: %d - %s", resp.StatusCode, string(body))
	}

	var openaiResp dto.OpenAPIRes
	if err := json.NewDecoder(resp.Body).Decode(&openaiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	if openaiResp.Usage.TotalTokens > r.cfg.MaxTokenPerMinute/2 {
		r.logger.Warn("Token has exceeded 50% of the limit", logger.IntField("remaining", r.tokenLimiter.GetRemaining()))
	}

	if err := r.tokenLimiter.Wait(ctx, openaiResp.Usage.TotalTokens); err != nil {
		r.logger.Error("failed to wait for token limit", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to wait for token limit: %w", err)
	}

	return &openaiResp, nil
}

func (r *openaiAIRepository) parseResponseJSON(resp *dto.OpenAPIRes, result interface{}) error {
	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.Content) == 0 {
		return fmt.Errorf("no content found in OpenAI response")
	}

	rawJSON := resp.Choices[0].Message.Content
	rawJSON = strings.Trim(rawJSON, "`json\n`")

	if err := json.Unmarshal([]byte(rawJSON), result); err != nil {
		return fmt.Errorf("failed to unmarshal result from OpenAI response: %w", err)
	}

	return nil
}
