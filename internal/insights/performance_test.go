package insights_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchlens/internal/insights"
)

func TestSummarizePerformance(t *testing.T) {
	current := []insights.SearchRecord{
		{Query: "a", Clicks: 10, Impressions: 200, CTR: 0.05, Position: 3},
		{Query: "a", Clicks: 30, Impressions: 200, CTR: 0.15, Position: 5},
		{Query: "b", Clicks: 20, Impressions: 600, CTR: 0.04, Position: 10},
	}
	comparison := []insights.SearchRecord{
		{Query: "a", Clicks: 5, Impressions: 100, CTR: 0.05, Position: 7},
	}

	totals := insights.SummarizePerformance(current, comparison)
	require.Len(t, totals, 2)

	cur := totals[0]
	assert.Equal(t, insights.PeriodCurrent, cur.Period)
	assert.Equal(t, int64(60), cur.TotalClicks)
	assert.Equal(t, int64(1000), cur.TotalImpressions)
	assert.InDelta(t, 8.0, cur.AvgCTR, 1e-9, "avg ctr is the row mean scaled to a percentage")
	assert.InDelta(t, 6.0, cur.AvgPosition, 1e-9)
	assert.Equal(t, 2, cur.UniqueQueries, "unique queries counted over raw records, not groups")

	cmp := totals[1]
	assert.Equal(t, insights.PeriodComparison, cmp.Period)
	assert.Equal(t, int64(5), cmp.TotalClicks)
	assert.Equal(t, 1, cmp.UniqueQueries)
}

func TestSummarizePerformanceEmptyPeriod(t *testing.T) {
	totals := insights.SummarizePerformance(nil, nil)
	require.Len(t, totals, 2)

	for _, row := range totals {
		assert.Zero(t, row.TotalClicks)
		assert.Zero(t, row.AvgCTR, "no rows means zero averages, never a division by zero")
		assert.Zero(t, row.AvgPosition)
		assert.Zero(t, row.UniqueQueries)
	}
}
