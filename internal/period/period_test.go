package period_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchlens/internal/period"
)

func TestParseAndValidate(t *testing.T) {
	r, err := period.Parse("2026-07-01", "2026-07-28")
	require.NoError(t, err)
	assert.Equal(t, 28, r.Days())
	assert.Equal(t, "2026-07-01..2026-07-28", r.String())

	_, err = period.Parse("2026-07-28", "2026-07-01")
	assert.Error(t, err, "inverted boundaries must be rejected")

	_, err = period.Parse("07/01/2026", "2026-07-28")
	assert.Error(t, err)
}

func TestPreviousPeriodPreset(t *testing.T) {
	current, err := period.Parse("2026-08-01", "2026-08-28")
	require.NoError(t, err)

	cmp, err := period.ComparisonFor(current, period.PresetPreviousPeriod)
	require.NoError(t, err)

	assert.Equal(t, "2026-07-04", cmp.StartString())
	assert.Equal(t, "2026-07-31", cmp.EndString(), "previous period ends the day before current starts")
	assert.Equal(t, current.Days(), cmp.Days())
	assert.False(t, current.Overlaps(cmp))
}

func TestShiftedPresetsKeepLength(t *testing.T) {
	current, err := period.Parse("2026-03-01", "2026-03-28")
	require.NoError(t, err)

	for _, preset := range []period.Preset{
		period.PresetOneMonthBack,
		period.PresetThreeMonthsBack,
		period.PresetSixMonthsBack,
		period.PresetOneYearBack,
	} {
		cmp, err := period.ComparisonFor(current, preset)
		require.NoError(t, err, "preset %s", preset)
		assert.Equal(t, current.Days(), cmp.Days(), "preset %s must keep the window length", preset)
		assert.True(t, cmp.End.Before(current.Start), "preset %s must end before current starts", preset)
	}

	oneMonth, err := period.ComparisonFor(current, period.PresetOneMonthBack)
	require.NoError(t, err)
	assert.Equal(t, "2026-02-01", oneMonth.StartString())
	assert.Equal(t, "2026-02-28", oneMonth.EndString())
}

func TestCustomPresetRejected(t *testing.T) {
	current := period.NewRange(
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
	)
	_, err := period.ComparisonFor(current, period.PresetCustom)
	assert.Error(t, err)
}

func TestLastNDaysExcludesToday(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 30, 0, 0, time.UTC)
	r := period.LastNDays(now, 28)

	assert.Equal(t, "2026-08-28", r.EndString())
	assert.Equal(t, "2026-08-01", r.StartString())
	assert.Equal(t, 28, r.Days())
}

func TestOverlaps(t *testing.T) {
	a, _ := period.Parse("2026-01-01", "2026-01-31")
	b, _ := period.Parse("2026-01-31", "2026-02-28")
	c, _ := period.Parse("2026-02-01", "2026-02-28")

	assert.True(t, a.Overlaps(b), "shared boundary day counts as overlap")
	assert.False(t, a.Overlaps(c))
	assert.True(t, c.Overlaps(b))
}
