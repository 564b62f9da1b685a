package insights_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchlens/internal/insights"
)

func TestAggregateByQuery(t *testing.T) {
	records := []insights.SearchRecord{
		{Query: "go tutorial", Page: "/go", Clicks: 10, Impressions: 100, CTR: 0.10, Position: 4},
		{Query: "go tutorial", Page: "/golang", Clicks: 20, Impressions: 300, CTR: 0.06, Position: 6},
		{Query: "sqlite wal", Page: "/wal", Clicks: 5, Impressions: 50, CTR: 0.10, Position: 2},
	}

	summaries := insights.Aggregate(records, insights.GroupByQuery)
	require.Len(t, summaries, 2)

	first := summaries[0]
	assert.Equal(t, "go tutorial", first.Query)
	assert.Equal(t, "/go", first.Page, "page should come from the first record of the group")
	assert.Equal(t, int64(30), first.Clicks)
	assert.Equal(t, int64(400), first.Impressions)
	assert.InDelta(t, 0.08, first.CTRMean, 1e-9, "ctr is an unweighted mean, not clicks/impressions")
	assert.InDelta(t, 5.0, first.PositionMean, 1e-9)

	second := summaries[1]
	assert.Equal(t, "sqlite wal", second.Query)
	assert.Equal(t, int64(5), second.Clicks)
}

func TestAggregateByQueryPage(t *testing.T) {
	records := []insights.SearchRecord{
		{Query: "go tutorial", Page: "/go", Clicks: 10, Impressions: 100, CTR: 0.10, Position: 4},
		{Query: "go tutorial", Page: "/golang", Clicks: 20, Impressions: 300, CTR: 0.06, Position: 6},
		{Query: "go tutorial", Page: "/go", Clicks: 2, Impressions: 100, CTR: 0.02, Position: 8},
	}

	summaries := insights.Aggregate(records, insights.GroupByQueryPage)
	require.Len(t, summaries, 2)

	assert.Equal(t, "/go", summaries[0].Page)
	assert.Equal(t, int64(12), summaries[0].Clicks)
	assert.InDelta(t, 0.06, summaries[0].CTRMean, 1e-9)
	assert.Equal(t, "/golang", summaries[1].Page)
}

func TestAggregatePreservesEncounterOrder(t *testing.T) {
	records := []insights.SearchRecord{
		{Query: "zebra"},
		{Query: "alpha"},
		{Query: "zebra"},
		{Query: "mango"},
	}

	summaries := insights.Aggregate(records, insights.GroupByQuery)
	require.Len(t, summaries, 3)
	assert.Equal(t, "zebra", summaries[0].Query)
	assert.Equal(t, "alpha", summaries[1].Query)
	assert.Equal(t, "mango", summaries[2].Query)
}

func TestAggregateEmptyInput(t *testing.T) {
	assert.Empty(t, insights.Aggregate(nil, insights.GroupByQuery))
	assert.Empty(t, insights.Aggregate([]insights.SearchRecord{}, insights.GroupByQueryPage))
}
