package sites_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchlens/internal/sites"
	"searchlens/internal/testsupport"
)

func TestValidateSiteURL(t *testing.T) {
	assert.NoError(t, sites.ValidateSiteURL("https://example.com"))
	assert.NoError(t, sites.ValidateSiteURL("http://example.com"))
	assert.NoError(t, sites.ValidateSiteURL("sc-domain:example.com"))
	assert.Error(t, sites.ValidateSiteURL(""))
	assert.Error(t, sites.ValidateSiteURL("example.com"))
	assert.Error(t, sites.ValidateSiteURL("ftp://example.com"))
}

func TestCreateAndGetSite(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	site := sites.Site{Name: "Example", SiteURL: "sc-domain:example.com"}
	require.NoError(t, sites.CreateSite(db, &site))
	require.NotZero(t, site.ID)

	loaded, err := sites.GetSiteByID(db, site.ID)
	require.NoError(t, err)
	assert.Equal(t, "Example", loaded.Name)

	byURL, err := sites.GetSiteByURL(db, "sc-domain:example.com")
	require.NoError(t, err)
	assert.Equal(t, site.ID, byURL.ID)
}

func TestGetSiteByURLNotFound(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	_, err := sites.GetSiteByURL(db, "sc-domain:missing.com")
	require.Error(t, err)

	var notFound *sites.SiteNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestUpdateSite(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	site := testsupport.CreateTestSite(db, "https://update-me.com")

	site.Name = "Renamed"
	site.GA4PropertyID = "987654"
	site.AutoRefresh = true
	require.NoError(t, sites.UpdateSite(db, &site))

	loaded, err := sites.GetSiteByID(db, site.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", loaded.Name)
	assert.Equal(t, "987654", loaded.GA4PropertyID)
	assert.True(t, loaded.AutoRefresh)
}

func TestListAutoRefreshSites(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	enrolled := sites.Site{Name: "a", SiteURL: "https://a.com", AutoRefresh: true}
	require.NoError(t, sites.CreateSite(db, &enrolled))
	idle := sites.Site{Name: "b", SiteURL: "https://b.com"}
	require.NoError(t, sites.CreateSite(db, &idle))

	refreshing, err := sites.ListAutoRefreshSites(db)
	require.NoError(t, err)
	require.Len(t, refreshing, 1)
	assert.Equal(t, enrolled.ID, refreshing[0].ID)
}

func TestDeleteSiteRemovesRuns(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	site := testsupport.CreateTestSite(db, "https://delete-me.com")
	testsupport.CreateTestRun(t, db, site.ID, "keyword", site.CreatedAt)

	require.NoError(t, sites.DeleteSite(db, site.ID))

	_, err := sites.GetSiteByID(db, site.ID)
	assert.Error(t, err)

	var count int64
	db.Table("analysis_runs").Where("site_id = ?", site.ID).Count(&count)
	assert.Zero(t, count)
}
