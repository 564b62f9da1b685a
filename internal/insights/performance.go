package insights

// PeriodTotals summarizes one period's overall search performance.
type PeriodTotals struct {
	Period           string  `json:"period"`
	TotalClicks      int64   `json:"total_clicks"`
	TotalImpressions int64   `json:"total_impressions"`
	AvgCTR           float64 `json:"avg_ctr"` // percentage
	AvgPosition      float64 `json:"avg_position"`
	UniqueQueries    int     `json:"unique_queries"`
}

// Period labels in SummarizePerformance output.
const (
	PeriodCurrent    = "current"
	PeriodComparison = "comparison"
)

// SummarizePerformance reduces the raw records of both periods to one totals
// row each, current first. Averages are unweighted means over rows; the ctr
// mean is rescaled to a percentage. Empty periods yield all-zero rows.
func SummarizePerformance(current, comparison []SearchRecord) []PeriodTotals {
	return []PeriodTotals{
		summarizePeriod(PeriodCurrent, current),
		summarizePeriod(PeriodComparison, comparison),
	}
}

func summarizePeriod(label string, records []SearchRecord) PeriodTotals {
	totals := PeriodTotals{Period: label}
	if len(records) == 0 {
		return totals
	}

	var ctrSum, positionSum float64
	queries := make(map[string]struct{}, len(records))
	for _, rec := range records {
		totals.TotalClicks += rec.Clicks
		totals.TotalImpressions += rec.Impressions
		ctrSum += rec.CTR
		positionSum += rec.Position
		queries[rec.Query] = struct{}{}
	}

	n := float64(len(records))
	totals.AvgCTR = ctrSum / n * 100
	totals.AvgPosition = positionSum / n
	totals.UniqueQueries = len(queries)
	return totals
}
