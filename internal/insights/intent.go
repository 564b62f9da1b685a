package insights

import "sort"

// IntentGap is a (query, page) pair with high visibility but a click-through
// rate below the threshold — a likely mismatch between the query's intent and
// the page's content.
type IntentGap struct {
	Query       string  `json:"query"`
	Page        string  `json:"page"`
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
	CTR         float64 `json:"ctr"` // percentage
	Position    float64 `json:"position"`
}

// DetectIntentGaps aggregates records by (query, page) and keeps pairs with
// at least minImpressions impressions (inclusive) whose mean ctr is strictly
// below ctrThreshold (a fraction, e.g. 0.05). A pair sitting exactly on the
// ctr threshold is not a gap. Results are stably sorted by impressions,
// descending; the ctr is rescaled to a percentage only after filtering, so
// the threshold and the reported value use different scales by design of the
// report format.
func DetectIntentGaps(records []SearchRecord, ctrThreshold float64, minImpressions int64) []IntentGap {
	summaries := Aggregate(records, GroupByQueryPage)

	gaps := make([]IntentGap, 0, len(summaries))
	for _, s := range summaries {
		if s.Impressions < minImpressions || s.CTRMean >= ctrThreshold {
			continue
		}
		gaps = append(gaps, IntentGap{
			Query:       s.Query,
			Page:        s.Page,
			Clicks:      s.Clicks,
			Impressions: s.Impressions,
			CTR:         s.CTRMean * 100,
			Position:    s.PositionMean,
		})
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].Impressions > gaps[j].Impressions
	})
	return gaps
}
