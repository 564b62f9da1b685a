// Package competitors discovers and profiles the pages that rank for a
// keyword, under a daily Custom Search quota.
package competitors

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"golang.org/x/time/rate"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
	"gorm.io/gorm"

	"searchlens/internal/config"
	"searchlens/internal/content"
	"searchlens/internal/pkg/async"
)

const topResults = 5

// SearchResult is one organic position for the searched keyword.
type SearchResult struct {
	Rank    int    `json:"rank"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Finder runs keyword searches and profiles the resulting pages.
type Finder struct {
	svc     *customsearch.Service
	cx      string
	locale  string
	quota   int
	db      *gorm.DB
	fetcher *content.Fetcher
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewFinder creates a Finder from application config.
func NewFinder(ctx context.Context, cfg *config.Config, db *gorm.DB, fetcher *content.Fetcher, logger *slog.Logger) (*Finder, error) {
	if cfg.GoogleAPIKey == "" {
		return nil, fmt.Errorf("google API key is not configured")
	}
	if cfg.SearchEngineID == "" {
		return nil, fmt.Errorf("search engine ID is not configured")
	}

	svc, err := customsearch.NewService(ctx, option.WithAPIKey(cfg.GoogleAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create custom search service: %w", err)
	}

	return &Finder{
		svc:     svc,
		cx:      cfg.SearchEngineID,
		locale:  cfg.SearchLocale,
		quota:   cfg.SearchQuotaPerDay,
		db:      db,
		fetcher: fetcher,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		logger:  logger,
	}, nil
}

// TopCompetitors returns the top organic results for a keyword. Each call
// consumes one unit of the daily quota before hitting the API.
func (f *Finder) TopCompetitors(ctx context.Context, keyword string) ([]SearchResult, error) {
	if err := ConsumeQuota(f.db, time.Now(), f.quota); err != nil {
		return nil, err
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	call := f.svc.Cse.List().Q(keyword).Cx(f.cx).Num(topResults)
	if f.locale != "" {
		call = call.Gl(f.locale)
	}
	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("custom search for %q failed: %w", keyword, err)
	}

	results := make([]SearchResult, 0, len(resp.Items))
	for i, item := range resp.Items {
		results = append(results, SearchResult{
			Rank:    i + 1,
			URL:     item.Link,
			Title:   item.Title,
			Snippet: item.Snippet,
		})
	}

	f.logger.Debug("fetched competitors",
		slog.String("keyword", keyword),
		slog.Int("results", len(results)))
	return results, nil
}

// ProfileCompetitors fetches and profiles each result page concurrently.
// Pages that fail to fetch are logged and skipped; order follows rank.
func (f *Finder) ProfileCompetitors(ctx context.Context, results []SearchResult) []*content.CompetitorProfile {
	tasks := make([]async.Task, 0, len(results))
	for _, r := range results {
		r := r
		tasks = append(tasks, async.Task{
			Name: r.URL,
			Execute: func() (interface{}, error) {
				return f.fetcher.FetchCompetitor(ctx, r.URL)
			},
		})
	}

	pool := async.NewPool(topResults)
	outcome := pool.Execute(ctx, tasks)

	profiles := make([]*content.CompetitorProfile, 0, len(results))
	for _, r := range results {
		res, ok := outcome[r.URL]
		if !ok || res.Error != nil {
			if res.Error != nil {
				f.logger.Warn("failed to profile competitor",
					slog.String("url", r.URL),
					slog.Any("error", res.Error))
			}
			continue
		}
		if profile, ok := res.Data.(*content.CompetitorProfile); ok {
			profiles = append(profiles, profile)
		}
	}
	return profiles
}
