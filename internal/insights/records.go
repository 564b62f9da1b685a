// Package insights implements the comparative SEO analysis core: aggregation
// of raw search rows, period-over-period trend classification, performance
// totals, conversion ranking and search intent gap detection. The package is
// pure — no I/O, no clock, deterministic output order.
package insights

// SearchRecord is a single row from a search performance source
// (one query/page combination for one period).
type SearchRecord struct {
	Query       string  `json:"query"`
	Page        string  `json:"page"`
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
	CTR         float64 `json:"ctr"` // fraction in [0,1], not a percentage
	Position    float64 `json:"position"`
}

// AnalyticsRecord is a single row of organic traffic data for a page,
// already filtered to organic source/medium at intake.
type AnalyticsRecord struct {
	PagePath           string  `json:"page_path"`
	SourceMedium       string  `json:"source_medium"`
	Sessions           int64   `json:"sessions"`
	Users              int64   `json:"users"`
	BounceRate         float64 `json:"bounce_rate"`
	AvgSessionDuration float64 `json:"avg_session_duration"`
	Conversions        int64   `json:"conversions"`
}

// Default thresholds used when a caller does not override them.
const (
	DefaultChangeThresholdPercent = 50.0
	DefaultMinClicks              = int64(5)
	DefaultCTRThreshold           = 0.05
	DefaultMinImpressions         = int64(100)
	DefaultMinSessions            = int64(10)
)
