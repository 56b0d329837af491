package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"roast-board/config"
	"roast-board/logger"
	"roast-board/models"
)

// GeminiGenerator generates roasts with the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	cfg    config.LLMConfig
	quota  *QuotaLimiter
}

// NewGeminiGenerator creates a client for cfg. baseURL overrides the API
// endpoint and is only set by tests.
func NewGeminiGenerator(ctx context.Context, cfg config.LLMConfig, quota *QuotaLimiter, baseURL string) (*GeminiGenerator, error) {
	if cfg.Provider != "google" {
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
	if cfg.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is not set")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &GeminiGenerator{client: client, cfg: cfg, quota: quota}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, subject Subject) (*Result, error) {
	if g.quota != nil {
		ok, err := g.quota.WaitAndReserve(ctx)
		if err != nil {
			return nil, upstreamErr(ctx, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: daily generation quota exhausted", models.ErrGenerationFailed)
		}
	}

	startTime := time.Now()
	prompt := BuildPrompt(g.cfg.PromptPrefix, subject)

	result, err := g.client.Models.GenerateContent(
		ctx,
		g.cfg.ModelName,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(g.cfg.Temperature),
			MaxOutputTokens:  g.cfg.MaxTokens,
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, upstreamErr(ctx, err)
	}

	text := result.Text()
	candidates, err := ParseCandidates(text)
	if err != nil {
		return nil, err
	}

	llmLog := &RequestLog{
		Prompt:       prompt,
		Response:     text,
		LatencyMs:    time.Since(startTime).Milliseconds(),
		ModelName:    g.cfg.ModelName,
		ModelVersion: result.ModelVersion,
		GeneratedAt:  time.Now(),
	}
	if result.UsageMetadata != nil {
		llmLog.TokenUsage = TokenUsage{
			InputTokens:  int64(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int64(result.UsageMetadata.TotalTokenCount),
		}
	}

	if g.quota != nil {
		logger.DebugWithFields("generation completed", logger.Fields{
			"model":           g.cfg.ModelName,
			"latency_ms":      llmLog.LatencyMs,
			"total_tokens":    llmLog.TokenUsage.TotalTokens,
			"quota_remaining": g.quota.Remaining(),
		})
	}

	return &Result{Candidates: candidates, Log: llmLog}, nil
}

func upstreamErr(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: generation: %v", models.ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
}
