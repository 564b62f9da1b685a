package settings_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchlens/internal/insights"
	"searchlens/internal/settings"
	"searchlens/internal/testsupport"
)

func TestDefaultThresholdsSeeded(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	value, err := settings.GetSetting(db, settings.KeyMinClicks)
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatInt(insights.DefaultMinClicks, 10), value)

	thresholds, err := settings.GetThresholds(db)
	require.NoError(t, err)
	assert.Equal(t, settings.DefaultThresholds(), thresholds)
}

func TestUpdateSettingChangesThresholds(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	require.NoError(t, settings.UpdateSetting(db, settings.KeyMinClicks, "12"))
	require.NoError(t, settings.UpdateSetting(db, settings.KeyChangeThresholdPercent, "25"))

	thresholds, err := settings.GetThresholds(db)
	require.NoError(t, err)
	assert.EqualValues(t, 12, thresholds.MinClicks)
	assert.EqualValues(t, 25, thresholds.ChangeThresholdPercent)
	// Untouched keys keep their defaults.
	assert.Equal(t, insights.DefaultCTRThreshold, thresholds.CTRThreshold)
}

func TestUnparseableThresholdFallsBack(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	require.NoError(t, settings.UpdateSetting(db, settings.KeyMinImpressions, "not-a-number"))

	thresholds, err := settings.GetThresholds(db)
	require.NoError(t, err)
	assert.Equal(t, insights.DefaultMinImpressions, thresholds.MinImpressions)
}

func TestGetOrCreateAPIKey(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	first, err := settings.GetOrCreateAPIKey(db)
	require.NoError(t, err)
	assert.Len(t, first, 32)

	second, err := settings.GetOrCreateAPIKey(db)
	require.NoError(t, err)
	assert.Equal(t, first, second, "existing key must be reused")

	regenerated, err := settings.GenerateAPIKey(db)
	require.NoError(t, err)
	assert.NotEqual(t, first, regenerated)
}

func TestAPIKeyMaskedForDisplay(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	_, err := settings.GetOrCreateAPIKey(db)
	require.NoError(t, err)

	display, err := settings.GetAllSettingsForDisplay(db)
	require.NoError(t, err)

	found := false
	for _, s := range display {
		if s.Key == settings.KeyAPIKey {
			found = true
			assert.Equal(t, "********", s.Value)
		}
	}
	assert.True(t, found)
}
