// Package gsc fetches search performance rows from the Google Search Console
// API and converts them into the insights record shape.
package gsc

import (
	"context"
	"fmt"
	"net/http"

	"log/slog"

	"google.golang.org/api/option"
	searchconsole "google.golang.org/api/searchconsole/v1"

	"searchlens/internal/config"
	"searchlens/internal/insights"
	"searchlens/internal/period"
)

// rowLimit caps how many query/page rows one period fetch returns. The top
// 1000 rows carry virtually all clicks for the site sizes this serves.
const rowLimit = 1000

// Client wraps the Search Console service.
type Client struct {
	svc    *searchconsole.Service
	logger *slog.Logger
}

// NewClient builds a Search Console client from the configured service
// account credentials.
func NewClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg.GoogleCredentialsFile == "" {
		return nil, fmt.Errorf("search console requires SEARCHLENS_GOOGLE_CREDENTIALS_FILE")
	}

	svc, err := searchconsole.NewService(ctx,
		option.WithCredentialsFile(cfg.GoogleCredentialsFile),
		option.WithScopes(searchconsole.WebmastersReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create search console service: %w", err)
	}

	return &Client{svc: svc, logger: logger}, nil
}

// NewClientWithHTTPClient builds a client over a caller-provided HTTP client.
// Used by tests to point the service at a fake server.
func NewClientWithHTTPClient(ctx context.Context, hc *http.Client, logger *slog.Logger) (*Client, error) {
	svc, err := searchconsole.NewService(ctx, option.WithHTTPClient(hc))
	if err != nil {
		return nil, fmt.Errorf("failed to create search console service: %w", err)
	}
	return &Client{svc: svc, logger: logger}, nil
}

// FetchSearchRecords returns the query/page performance rows for one period.
func (c *Client) FetchSearchRecords(ctx context.Context, siteURL string, r period.Range) ([]insights.SearchRecord, error) {
	req := &searchconsole.SearchAnalyticsQueryRequest{
		StartDate:  r.StartString(),
		EndDate:    r.EndString(),
		Dimensions: []string{"query", "page"},
		RowLimit:   rowLimit,
	}

	resp, err := c.svc.Searchanalytics.Query(siteURL, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search analytics query for %s failed: %w", siteURL, err)
	}

	records := make([]insights.SearchRecord, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		if len(row.Keys) < 2 {
			c.logger.Warn("Skipping search analytics row with missing dimensions",
				slog.String("site", siteURL), slog.Int("keys", len(row.Keys)))
			continue
		}
		records = append(records, insights.SearchRecord{
			Query:       row.Keys[0],
			Page:        row.Keys[1],
			Clicks:      int64(row.Clicks),
			Impressions: int64(row.Impressions),
			CTR:         row.Ctr,
			Position:    row.Position,
		})
	}

	c.logger.Debug("Fetched search records",
		slog.String("site", siteURL),
		slog.String("range", r.String()),
		slog.Int("rows", len(records)))

	return records, nil
}
