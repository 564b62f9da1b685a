package insights

// GroupBy selects the aggregation key for search records.
type GroupBy int

const (
	// GroupByQuery groups records by query only.
	GroupByQuery GroupBy = iota
	// GroupByQueryPage groups records by the (query, page) pair.
	GroupByQueryPage
)

// QuerySummary is the aggregate of all records sharing a group key.
type QuerySummary struct {
	Query       string  `json:"query"`
	Page        string  `json:"page,omitempty"`
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
	CTRMean     float64 `json:"ctr_mean"`
	PositionMean float64 `json:"position_mean"`
}

type summaryAccumulator struct {
	summary     QuerySummary
	ctrSum      float64
	positionSum float64
	rows        int64
}

// Aggregate groups search records by the given key and reduces each group to
// a QuerySummary: clicks and impressions summed, ctr and position as
// unweighted means over the group's rows. When grouping by query only, the
// page is taken from the first record seen for that query. Groups appear in
// first-encounter order, so aggregation is stable with respect to input order.
func Aggregate(records []SearchRecord, groupBy GroupBy) []QuerySummary {
	accs := make(map[string]*summaryAccumulator, len(records))
	order := make([]string, 0, len(records))

	for _, rec := range records {
		key := rec.Query
		if groupBy == GroupByQueryPage {
			key = rec.Query + "\x00" + rec.Page
		}

		acc, ok := accs[key]
		if !ok {
			acc = &summaryAccumulator{
				summary: QuerySummary{Query: rec.Query, Page: rec.Page},
			}
			accs[key] = acc
			order = append(order, key)
		}

		acc.summary.Clicks += rec.Clicks
		acc.summary.Impressions += rec.Impressions
		acc.ctrSum += rec.CTR
		acc.positionSum += rec.Position
		acc.rows++
	}

	summaries := make([]QuerySummary, 0, len(order))
	for _, key := range order {
		acc := accs[key]
		acc.summary.CTRMean = acc.ctrSum / float64(acc.rows)
		acc.summary.PositionMean = acc.positionSum / float64(acc.rows)
		summaries = append(summaries, acc.summary)
	}
	return summaries
}
