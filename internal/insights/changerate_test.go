package insights_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchlens/internal/insights"
)

func TestChangeRateJSON(t *testing.T) {
	newEntry, err := json.Marshal(insights.NewEntryRate())
	require.NoError(t, err)
	assert.Equal(t, `"new"`, string(newEntry))

	numeric, err := json.Marshal(insights.NumericRate(-33.5))
	require.NoError(t, err)
	assert.Equal(t, `-33.5`, string(numeric))

	var decoded insights.ChangeRate
	require.NoError(t, json.Unmarshal([]byte(`"new"`), &decoded))
	assert.True(t, decoded.IsNew())

	require.NoError(t, json.Unmarshal([]byte(`120`), &decoded))
	assert.False(t, decoded.IsNew())
	assert.InDelta(t, 120.0, decoded.Percent(), 1e-9)

	assert.Error(t, json.Unmarshal([]byte(`"old"`), &decoded))
}

func TestChangeRateOrdering(t *testing.T) {
	huge := insights.NumericRate(1e9)
	small := insights.NumericRate(-10)
	fresh := insights.NewEntryRate()

	assert.True(t, fresh.GreaterThan(huge), "a new entry outranks any numeric rate")
	assert.False(t, huge.GreaterThan(fresh))
	assert.False(t, fresh.GreaterThan(insights.NewEntryRate()))
	assert.True(t, huge.GreaterThan(small))
}

func TestChangeRateString(t *testing.T) {
	assert.Equal(t, "NEW", insights.NewEntryRate().String())
	assert.Equal(t, "+50.0%", insights.NumericRate(50).String())
	assert.Equal(t, "-12.5%", insights.NumericRate(-12.5).String())
}
