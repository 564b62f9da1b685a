// Package reports orchestrates the comparative analysis: it pulls the two
// search periods and organic traffic, runs them through the insights
// computations, and caches the assembled snapshot.
package reports

import (
	"context"
	"time"

	"searchlens/internal/insights"
	"searchlens/internal/period"
	"searchlens/internal/settings"
)

// SearchSource provides query-level search performance rows for a period.
type SearchSource interface {
	FetchSearchRecords(ctx context.Context, siteURL string, r period.Range) ([]insights.SearchRecord, error)
}

// AnalyticsSource provides organic traffic rows for a period.
type AnalyticsSource interface {
	FetchOrganicTraffic(ctx context.Context, propertyID string, r period.Range) ([]insights.AnalyticsRecord, error)
}

// RangeInfo is a serialized date range.
type RangeInfo struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Report is one comparative analysis snapshot for a site.
type Report struct {
	SiteID          uint                     `json:"site_id"`
	SiteURL         string                   `json:"site_url"`
	CurrentRange    RangeInfo                `json:"current_range"`
	ComparisonRange RangeInfo                `json:"comparison_range"`
	GeneratedAt     time.Time                `json:"generated_at"`
	Thresholds      settings.Thresholds      `json:"thresholds"`
	Performance     []insights.PeriodTotals  `json:"performance"`
	Trends          []insights.TrendRow      `json:"trends"`
	Conversions     []insights.ConversionRow `json:"conversions"`
	IntentGaps      []insights.IntentGap     `json:"intent_gaps"`
}

func rangeInfo(r period.Range) RangeInfo {
	return RangeInfo{Start: r.StartString(), End: r.EndString()}
}
