package insights_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchlens/internal/insights"
)

func TestRankConversionsSessionFloor(t *testing.T) {
	records := []insights.AnalyticsRecord{
		{PagePath: "/tiny", Sessions: 9, Conversions: 9},
		{PagePath: "/floor", Sessions: 10, Conversions: 0},
		{PagePath: "/busy", Sessions: 100, Conversions: 25},
	}

	ranked := insights.RankConversions(records, insights.DefaultMinSessions)
	require.Len(t, ranked, 2, "a perfect rate on 9 sessions is excluded; 10 sessions with zero conversions stays")

	assert.Equal(t, "/busy", ranked[0].PagePath)
	assert.InDelta(t, 0.25, ranked[0].ConversionRate, 1e-9)
	assert.Equal(t, "/floor", ranked[1].PagePath)
	assert.Zero(t, ranked[1].ConversionRate)
}

func TestRankConversionsStableSort(t *testing.T) {
	records := []insights.AnalyticsRecord{
		{PagePath: "/a", Sessions: 50, Conversions: 5},
		{PagePath: "/b", Sessions: 100, Conversions: 10},
		{PagePath: "/c", Sessions: 20, Conversions: 10},
	}

	ranked := insights.RankConversions(records, 10)
	require.Len(t, ranked, 3)

	assert.Equal(t, "/c", ranked[0].PagePath)
	// /a and /b tie at 0.10: input order is preserved.
	assert.Equal(t, "/a", ranked[1].PagePath)
	assert.Equal(t, "/b", ranked[2].PagePath)
}

func TestRankConversionsZeroSessionsGuard(t *testing.T) {
	ranked := insights.RankConversions([]insights.AnalyticsRecord{
		{PagePath: "/ghost", Sessions: 0, Conversions: 3},
	}, 0)
	require.Len(t, ranked, 1)
	assert.Zero(t, ranked[0].ConversionRate)
}
