// Package advisor turns analysis data into written recommendations using an
// OpenAI-compatible chat model.
package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"searchlens/internal/config"
	"searchlens/internal/content"
	"searchlens/internal/insights"
)

const (
	maxRetries = 3
	baseDelay  = 2 * time.Second

	systemPrompt = "You are a senior SEO consultant. Answer in concise, " +
		"actionable prose. Do not wrap your answer in markdown code fences."
)

// Advisor generates SEO advice from article and ranking data.
type Advisor struct {
	cm      model.ChatModel
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewAdvisor creates an Advisor from application config.
func NewAdvisor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Advisor, error) {
	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("LLM API key is not configured")
	}

	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	perMin := cfg.LLMRequestsPerMin
	if perMin <= 0 {
		perMin = 1
	}

	return &Advisor{
		cm:      cm,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), 1),
		logger:  logger,
	}, nil
}

// ReviewArticle asks for improvement advice on a single page targeting a
// keyword.
func (a *Advisor) ReviewArticle(ctx context.Context, keyword string, article *content.Article) (string, error) {
	prompt := BuildArticlePrompt(keyword, article)
	return a.generate(ctx, prompt)
}

// CompareCompetitors asks for advice contrasting the page against the pages
// currently ranking for the keyword.
func (a *Advisor) CompareCompetitors(ctx context.Context, keyword string, article *content.Article, profiles []*content.CompetitorProfile) (string, error) {
	prompt := BuildComparisonPrompt(keyword, article, profiles)
	return a.generate(ctx, prompt)
}

// SummarizeTrends asks for a narrative reading of significant query
// movements between two periods.
func (a *Advisor) SummarizeTrends(ctx context.Context, siteURL string, rows []insights.TrendRow) (string, error) {
	prompt := BuildTrendsPrompt(siteURL, rows)
	return a.generate(ctx, prompt)
}

// generate runs one chat completion with rate limiting and exponential
// backoff on 429 responses.
func (a *Advisor) generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if err := a.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("limiter wait error: %w", err)
		}

		messages := []*schema.Message{
			{Role: schema.System, Content: systemPrompt},
			{Role: schema.User, Content: prompt},
		}

		resp, err := a.cm.Generate(ctx, messages)
		if err != nil {
			if isRateLimited(err) {
				lastErr = err
				if i < maxRetries {
					delay := baseDelay * time.Duration(1<<i)
					a.logger.Warn("chat model rate limited, backing off",
						slog.Duration("delay", delay),
						slog.Int("attempt", i+1))
					select {
					case <-ctx.Done():
						return "", ctx.Err()
					case <-time.After(delay):
						continue
					}
				}
			}
			return "", fmt.Errorf("chat completion failed: %w", err)
		}

		return StripFences(resp.Content), nil
	}

	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}

// StripFences removes a wrapping markdown code fence from model output.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop a language tag on the opening fence.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 && !strings.ContainsAny(s[:idx], " \t") {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
