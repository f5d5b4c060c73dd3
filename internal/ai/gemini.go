// Package ai implements the analytical collaborator on top of Gemini.
package ai

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/pkg/config"
	"github.com/wonny/tickerscope/pkg/logger"
)

// generateFunc sends one prompt and returns the raw model text
type generateFunc func(ctx context.Context, prompt string) (string, error)

// Analyst asks an LLM to review the deterministic verdict
// ⭐ SSOT: LLM 호출은 여기서만
type Analyst struct {
	generate generateFunc
	limiter  *rate.Limiter
	timeout  time.Duration
	logger   *logger.Logger
}

// NewGemini creates a Gemini-backed analyst
func NewGemini(ctx context.Context, cfg config.GeminiConfig, log *logger.Logger) (*Analyst, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("gemini api key not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(float32(0.2)),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    responseSchema,
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}

	generate := func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, cfg.Model, genai.Text(prompt), genCfg)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}

	return newAnalyst(generate, cfg.RequestsPerMinute, cfg.Timeout, log), nil
}

func newAnalyst(generate generateFunc, perMinute int, timeout time.Duration, log *logger.Logger) *Analyst {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Analyst{
		generate: generate,
		limiter:  rate.NewLimiter(limit, 1),
		timeout:  timeout,
		logger:   log.WithComponent("analyst"),
	}
}

// Analyze implements contracts.Analyst
func (a *Analyst) Analyze(ctx context.Context, in contracts.AnalystInput) (*contracts.AIAnalysis, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrProviderUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	text, err := a.generate(ctx, BuildPrompt(in))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrProviderUnavailable, err)
	}

	analysis, err := ParseResponse(text)
	if err != nil {
		a.logger.WithTicker(in.Ticker).WithField("response", truncate(text, 300)).Debug("Unparseable analyst response")
		return nil, err
	}

	a.logger.WithFields(map[string]interface{}{
		"ticker":         in.Ticker,
		"classification": analysis.Classification,
		"confidence":     analysis.Confidence,
		"elapsed_ms":     time.Since(start).Milliseconds(),
	}).Debug("Analyst responded")

	return analysis, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
