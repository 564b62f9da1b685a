package insights_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchlens/internal/insights"
)

func summaries(queries ...insights.QuerySummary) []insights.QuerySummary {
	return queries
}

func TestCompareTrendsConservation(t *testing.T) {
	current := summaries(
		insights.QuerySummary{Query: "a", Page: "/a", Clicks: 10},
		insights.QuerySummary{Query: "b", Page: "/b", Clicks: 3},
	)
	comparison := summaries(
		insights.QuerySummary{Query: "b", Clicks: 6},
		insights.QuerySummary{Query: "c", Clicks: 4},
	)

	rows := insights.CompareTrends(current, comparison)
	require.Len(t, rows, 3, "every query from either period appears exactly once")

	queries := map[string]insights.TrendRow{}
	for _, row := range rows {
		queries[row.Query] = row
	}
	require.Contains(t, queries, "a")
	require.Contains(t, queries, "b")
	require.Contains(t, queries, "c")

	// Missing comparison side contributes zeros.
	assert.Equal(t, int64(0), queries["a"].ComparisonClicks)
	// Missing current side contributes zeros, and no page: the page column
	// is only meaningful for the current period.
	assert.Equal(t, int64(0), queries["c"].CurrentClicks)
	assert.Empty(t, queries["c"].Page)
	assert.Equal(t, "/a", queries["a"].Page)
}

func TestCompareTrendsClassification(t *testing.T) {
	current := summaries(
		insights.QuerySummary{Query: "new", Clicks: 7},
		insights.QuerySummary{Query: "grown", Clicks: 15},
		insights.QuerySummary{Query: "ghost", Clicks: 0},
	)
	comparison := summaries(
		insights.QuerySummary{Query: "grown", Clicks: 10},
		insights.QuerySummary{Query: "ghost", Clicks: 0},
		insights.QuerySummary{Query: "lost", Clicks: 8},
	)

	rows := insights.CompareTrends(current, comparison)
	byQuery := map[string]insights.TrendRow{}
	for _, row := range rows {
		byQuery[row.Query] = row
	}

	assert.True(t, byQuery["new"].ChangeRate.IsNew())
	assert.Equal(t, int64(7), byQuery["new"].ClicksChange)

	assert.False(t, byQuery["grown"].ChangeRate.IsNew())
	assert.InDelta(t, 50.0, byQuery["grown"].ChangeRate.Percent(), 1e-9)

	// Zero clicks in both periods: rate 0, not NaN and not a new entry.
	assert.False(t, byQuery["ghost"].ChangeRate.IsNew())
	assert.Zero(t, byQuery["ghost"].ChangeRate.Percent())

	assert.InDelta(t, -100.0, byQuery["lost"].ChangeRate.Percent(), 1e-9)
	assert.Equal(t, int64(-8), byQuery["lost"].ClicksChange)
}

func TestFilterSignificantNewEntries(t *testing.T) {
	rows := insights.CompareTrends(
		summaries(
			insights.QuerySummary{Query: "big new", Clicks: 7},
			insights.QuerySummary{Query: "tiny new", Clicks: 2},
		),
		nil,
	)

	significant := insights.FilterSignificant(rows, insights.DefaultChangeThresholdPercent, insights.DefaultMinClicks)
	require.Len(t, significant, 1, "new entries below the click floor are noise")
	assert.Equal(t, "big new", significant[0].Query)
	assert.True(t, significant[0].ChangeRate.IsNew())
}

func TestFilterSignificantThresholdBoundary(t *testing.T) {
	rows := insights.CompareTrends(
		summaries(
			insights.QuerySummary{Query: "exactly", Clicks: 15},
			insights.QuerySummary{Query: "below", Clicks: 14},
		),
		summaries(
			insights.QuerySummary{Query: "exactly", Clicks: 10},
			insights.QuerySummary{Query: "below", Clicks: 10},
		),
	)

	significant := insights.FilterSignificant(rows, 50.0, 5)
	require.Len(t, significant, 1, "the threshold is inclusive: exactly 50 qualifies, 40 does not")
	assert.Equal(t, "exactly", significant[0].Query)
	assert.InDelta(t, 50.0, significant[0].ChangeRate.Percent(), 1e-9)
}

func TestFilterSignificantDivisionGuard(t *testing.T) {
	rows := insights.CompareTrends(
		summaries(insights.QuerySummary{Query: "dormant", Clicks: 0}),
		summaries(insights.QuerySummary{Query: "dormant", Clicks: 0}),
	)

	significant := insights.FilterSignificant(rows, 50.0, 5)
	assert.Empty(t, significant, "a query with zero clicks in both periods never surfaces")
}

func TestFilterSignificantDropsLowVolumeMovers(t *testing.T) {
	// +300% but only 4 current clicks: below the floor.
	rows := insights.CompareTrends(
		summaries(insights.QuerySummary{Query: "spiky", Clicks: 4}),
		summaries(insights.QuerySummary{Query: "spiky", Clicks: 1}),
	)

	assert.Empty(t, insights.FilterSignificant(rows, 50.0, 5))
	assert.Len(t, insights.FilterSignificant(rows, 50.0, 4), 1, "floor is inclusive")
}

func TestFilterSignificantSortAndStability(t *testing.T) {
	current := summaries(
		insights.QuerySummary{Query: "first tie", Clicks: 20},
		insights.QuerySummary{Query: "top", Clicks: 40},
		insights.QuerySummary{Query: "second tie", Clicks: 25},
		insights.QuerySummary{Query: "sinking", Clicks: 10},
	)
	comparison := summaries(
		insights.QuerySummary{Query: "first tie", Clicks: 10},
		insights.QuerySummary{Query: "top", Clicks: 10},
		insights.QuerySummary{Query: "second tie", Clicks: 15},
		insights.QuerySummary{Query: "sinking", Clicks: 40},
	)

	rows := insights.CompareTrends(current, comparison)
	significant := insights.FilterSignificant(rows, 50.0, 5)
	require.Len(t, significant, 4)

	assert.Equal(t, "top", significant[0].Query)
	// Equal clicksChange (+10): join order decides, stably.
	assert.Equal(t, "first tie", significant[1].Query)
	assert.Equal(t, "second tie", significant[2].Query)
	assert.Equal(t, "sinking", significant[3].Query)
}

func TestFilterSignificantIdempotent(t *testing.T) {
	rows := insights.CompareTrends(
		summaries(
			insights.QuerySummary{Query: "a", Clicks: 30},
			insights.QuerySummary{Query: "b", Clicks: 12},
			insights.QuerySummary{Query: "c", Clicks: 9},
		),
		summaries(
			insights.QuerySummary{Query: "a", Clicks: 10},
			insights.QuerySummary{Query: "b", Clicks: 20},
		),
	)

	once := insights.FilterSignificant(rows, 50.0, 5)
	twice := insights.FilterSignificant(once, 50.0, 5)
	assert.Equal(t, once, twice)
}
