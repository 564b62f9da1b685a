package runs_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchlens/internal/runs"
	"searchlens/internal/testsupport"
)

func TestSaveReportMarshalsPayload(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	site := testsupport.CreateTestSite(db, "https://report.example.com")

	payload := map[string]any{"total_clicks": 42}
	run, err := runs.SaveReport(db, site.ID, "best boots", "https://report.example.com/boots", payload, "write more")
	require.NoError(t, err)
	require.NotZero(t, run.ID)

	loaded, err := runs.GetRun(db, site.ID, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "best boots", loaded.Keyword)
	assert.Equal(t, "write more", loaded.Advisory)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(loaded.ReportJSON), &decoded))
	assert.EqualValues(t, 42, decoded["total_clicks"])
}

func TestHistoryNewestFirstWithLimit(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	site := testsupport.CreateTestSite(db, "https://history.example.com")

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		testsupport.CreateTestRun(t, db, site.ID, "kw", base.AddDate(0, 0, i))
	}

	history, err := runs.History(db, site.ID, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.True(t, history[0].CreatedAt.Equal(base.AddDate(0, 0, 4)))
	assert.True(t, history[0].CreatedAt.After(history[1].CreatedAt))
	assert.True(t, history[1].CreatedAt.After(history[2].CreatedAt))
}

func TestGetRunScopedToSite(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	siteA := testsupport.CreateTestSite(db, "https://a.example.com")
	siteB := testsupport.CreateTestSite(db, "https://b.example.com")
	run := testsupport.CreateTestRun(t, db, siteA.ID, "kw", time.Now().UTC())

	_, err := runs.GetRun(db, siteB.ID, run.ID)
	assert.Error(t, err, "a run must not be readable through another site")
}

func TestPruneOlderThan(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	site := testsupport.CreateTestSite(db, "https://prune.example.com")

	now := time.Now().UTC()
	testsupport.CreateTestRun(t, db, site.ID, "old", now.AddDate(0, 0, -200))
	testsupport.CreateTestRun(t, db, site.ID, "older", now.AddDate(0, 0, -300))
	fresh := testsupport.CreateTestRun(t, db, site.ID, "fresh", now.AddDate(0, 0, -10))

	deleted, err := runs.PruneOlderThan(db, now.AddDate(0, 0, -180), 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	history, err := runs.History(db, site.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, fresh.ID, history[0].ID)
}
