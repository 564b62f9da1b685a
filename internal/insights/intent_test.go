package insights_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchlens/internal/insights"
)

func TestDetectIntentGapsBoundaries(t *testing.T) {
	records := []insights.SearchRecord{
		{Query: "on threshold", Page: "/a", Impressions: 500, CTR: 0.05, Clicks: 25, Position: 4},
		{Query: "just under", Page: "/b", Impressions: 500, CTR: 0.0499, Clicks: 24, Position: 4},
		{Query: "low volume", Page: "/c", Impressions: 99, CTR: 0.01, Clicks: 1, Position: 9},
		{Query: "volume floor", Page: "/d", Impressions: 100, CTR: 0.01, Clicks: 1, Position: 9},
	}

	gaps := insights.DetectIntentGaps(records, insights.DefaultCTRThreshold, insights.DefaultMinImpressions)
	require.Len(t, gaps, 2)

	queries := []string{gaps[0].Query, gaps[1].Query}
	assert.Contains(t, queries, "just under", "ctr strictly below the threshold is a gap")
	assert.Contains(t, queries, "volume floor", "the impressions floor is inclusive")
	assert.NotContains(t, queries, "on threshold", "ctr exactly at the threshold is not a gap")
	assert.NotContains(t, queries, "low volume")
}

func TestDetectIntentGapsAggregatesByQueryPage(t *testing.T) {
	records := []insights.SearchRecord{
		{Query: "howto", Page: "/guide", Impressions: 80, CTR: 0.02},
		{Query: "howto", Page: "/guide", Impressions: 40, CTR: 0.04},
		{Query: "howto", Page: "/blog", Impressions: 300, CTR: 0.01},
	}

	gaps := insights.DetectIntentGaps(records, 0.05, 100)
	require.Len(t, gaps, 2)

	// Sorted by aggregated impressions descending.
	assert.Equal(t, "/blog", gaps[0].Page)
	assert.Equal(t, int64(300), gaps[0].Impressions)
	assert.Equal(t, "/guide", gaps[1].Page)
	assert.Equal(t, int64(120), gaps[1].Impressions)
	assert.InDelta(t, 3.0, gaps[1].CTR, 1e-9, "ctr is reported as a percentage of the group mean")
}

func TestDetectIntentGapsPercentageAfterFiltering(t *testing.T) {
	// 0.049 passes the 0.05 fractional threshold; the output carries 4.9,
	// which would fail the threshold if rescaling happened before filtering.
	gaps := insights.DetectIntentGaps([]insights.SearchRecord{
		{Query: "q", Page: "/p", Impressions: 1000, CTR: 0.049},
	}, 0.05, 100)
	require.Len(t, gaps, 1)
	assert.InDelta(t, 4.9, gaps[0].CTR, 1e-9)
}
