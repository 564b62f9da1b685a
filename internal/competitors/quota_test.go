package competitors_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchlens/internal/competitors"
	"searchlens/internal/testsupport"
)

func TestConsumeQuotaStopsAtLimit(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, competitors.ConsumeQuota(db, now, 3))
	}

	err := competitors.ConsumeQuota(db, now, 3)
	require.Error(t, err)

	var quotaErr *competitors.QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, "2026-08-29", quotaErr.Day)
	assert.Equal(t, 3, quotaErr.Limit)
}

func TestQuotaResetsNextDay(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	day1 := time.Date(2026, 8, 29, 23, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	require.NoError(t, competitors.ConsumeQuota(db, day1, 1))
	require.Error(t, competitors.ConsumeQuota(db, day1, 1))

	// A new day gets a fresh budget.
	require.NoError(t, competitors.ConsumeQuota(db, day2, 1))
}

func TestQuotaRemaining(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	remaining, err := competitors.QuotaRemaining(db, now, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)

	require.NoError(t, competitors.ConsumeQuota(db, now, 5))
	require.NoError(t, competitors.ConsumeQuota(db, now, 5))

	remaining, err = competitors.QuotaRemaining(db, now, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, remaining)
}
