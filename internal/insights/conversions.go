package insights

import "sort"

// ConversionRow is an organic traffic row with its computed conversion rate.
type ConversionRow struct {
	PagePath           string  `json:"page_path"`
	SourceMedium       string  `json:"source_medium"`
	Sessions           int64   `json:"sessions"`
	Users              int64   `json:"users"`
	BounceRate         float64 `json:"bounce_rate"`
	AvgSessionDuration float64 `json:"avg_session_duration"`
	Conversions        int64   `json:"conversions"`
	ConversionRate     float64 `json:"conversion_rate"`
}

// RankConversions keeps rows with at least minSessions sessions (boundary
// inclusive), computes conversions/sessions for each and stably sorts by
// conversion rate, descending. A row with zero sessions gets rate 0, though
// any positive minSessions already excludes it. A high-rate row below the
// session floor is dropped: tiny samples don't make the ranking.
func RankConversions(records []AnalyticsRecord, minSessions int64) []ConversionRow {
	ranked := make([]ConversionRow, 0, len(records))
	for _, rec := range records {
		if rec.Sessions < minSessions {
			continue
		}
		row := ConversionRow{
			PagePath:           rec.PagePath,
			SourceMedium:       rec.SourceMedium,
			Sessions:           rec.Sessions,
			Users:              rec.Users,
			BounceRate:         rec.BounceRate,
			AvgSessionDuration: rec.AvgSessionDuration,
			Conversions:        rec.Conversions,
		}
		if rec.Sessions > 0 {
			row.ConversionRate = float64(rec.Conversions) / float64(rec.Sessions)
		}
		ranked = append(ranked, row)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ConversionRate > ranked[j].ConversionRate
	})
	return ranked
}
