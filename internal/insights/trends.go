package insights

import "sort"

// TrendRow is the merged view of one query across the current and comparison
// periods, with its click change classification.
type TrendRow struct {
	Query                 string     `json:"query"`
	Page                  string     `json:"page,omitempty"`
	CurrentClicks         int64      `json:"current_clicks"`
	ComparisonClicks      int64      `json:"comparison_clicks"`
	CurrentImpressions    int64      `json:"current_impressions"`
	ComparisonImpressions int64      `json:"comparison_impressions"`
	CurrentCTR            float64    `json:"current_ctr"`
	ComparisonCTR         float64    `json:"comparison_ctr"`
	CurrentPosition       float64    `json:"current_position"`
	ComparisonPosition    float64    `json:"comparison_position"`
	ClicksChange          int64      `json:"clicks_change"`
	ChangeRate            ChangeRate `json:"change_rate"`
}

// CompareTrends performs a full outer join of the two periods' query
// summaries on the query key and classifies each query's click change.
// A query missing from one period contributes zero metrics for that side;
// the page is carried from the current side only. Conservation holds: every
// query present in either input appears exactly once in the output.
//
// Classification:
//   - comparison clicks == 0 and current clicks > 0: new entry
//   - both zero: rate 0
//   - otherwise: (current - comparison) / comparison * 100
//
// Rows are ordered by current-period encounter order, then comparison-only
// queries in their encounter order.
func CompareTrends(current, comparison []QuerySummary) []TrendRow {
	comparisonByQuery := make(map[string]QuerySummary, len(comparison))
	for _, s := range comparison {
		if _, seen := comparisonByQuery[s.Query]; !seen {
			comparisonByQuery[s.Query] = s
		}
	}

	rows := make([]TrendRow, 0, len(current)+len(comparison))
	inCurrent := make(map[string]bool, len(current))

	for _, cur := range current {
		if inCurrent[cur.Query] {
			continue
		}
		inCurrent[cur.Query] = true
		rows = append(rows, classify(cur.Query, cur.Page, cur, comparisonByQuery[cur.Query]))
	}

	for _, cmp := range comparison {
		if inCurrent[cmp.Query] {
			continue
		}
		inCurrent[cmp.Query] = true
		// Comparison-only query: the current side is all zeros, and the page
		// column stays empty since only the current period names a page.
		rows = append(rows, classify(cmp.Query, "", QuerySummary{Query: cmp.Query}, cmp))
	}

	return rows
}

func classify(query, page string, cur, cmp QuerySummary) TrendRow {
	row := TrendRow{
		Query:                 query,
		Page:                  page,
		CurrentClicks:         cur.Clicks,
		ComparisonClicks:      cmp.Clicks,
		CurrentImpressions:    cur.Impressions,
		ComparisonImpressions: cmp.Impressions,
		CurrentCTR:            cur.CTRMean,
		ComparisonCTR:         cmp.CTRMean,
		CurrentPosition:       cur.PositionMean,
		ComparisonPosition:    cmp.PositionMean,
		ClicksChange:          cur.Clicks - cmp.Clicks,
	}

	switch {
	case cmp.Clicks == 0 && cur.Clicks > 0:
		row.ChangeRate = NewEntryRate()
	case cmp.Clicks == 0:
		row.ChangeRate = NumericRate(0)
	default:
		row.ChangeRate = NumericRate(float64(row.ClicksChange) / float64(cmp.Clicks) * 100)
	}
	return row
}

// FilterSignificant keeps the rows worth surfacing: new entries and rows
// whose absolute change rate meets the threshold, in both cases only when the
// current period has at least minClicks clicks. Both boundaries are
// inclusive. The result is stably sorted by click change, descending, so
// ties keep their join order. Filtering and sorting are
// idempotent: applying the function to its own output returns it unchanged.
func FilterSignificant(rows []TrendRow, thresholdPercent float64, minClicks int64) []TrendRow {
	significant := make([]TrendRow, 0, len(rows))
	for _, row := range rows {
		if row.CurrentClicks < minClicks {
			continue
		}
		if row.ChangeRate.IsNew() {
			significant = append(significant, row)
			continue
		}
		rate := row.ChangeRate.Percent()
		if rate < 0 {
			rate = -rate
		}
		if rate >= thresholdPercent {
			significant = append(significant, row)
		}
	}

	sort.SliceStable(significant, func(i, j int) bool {
		return significant[i].ClicksChange > significant[j].ClicksChange
	})
	return significant
}
