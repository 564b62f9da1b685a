// Package runs persists completed analyses so past reports and advisories
// can be reviewed without refetching source data.
package runs

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// AnalysisRun is one saved analysis for a site, optionally scoped to a focus
// keyword and page.
type AnalysisRun struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SiteID     uint      `gorm:"index;not null" json:"site_id"`
	Keyword    string    `json:"keyword"`
	PageURL    string    `json:"page_url"`
	ReportJSON string    `gorm:"type:text" json:"-"`
	Advisory   string    `gorm:"type:text" json:"advisory"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// Save stores a run. The report payload is serialized by the caller into
// ReportJSON; Save only stamps the creation time.
func Save(db *gorm.DB, run *AnalysisRun) error {
	if run.SiteID == 0 {
		return fmt.Errorf("run requires a site")
	}
	run.CreatedAt = time.Now().UTC()
	if err := db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to save analysis run: %w", err)
	}
	return nil
}

// SaveReport marshals any report value and stores it as a run.
func SaveReport(db *gorm.DB, siteID uint, keyword, pageURL string, report interface{}, advisory string) (*AnalysisRun, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	run := &AnalysisRun{
		SiteID:     siteID,
		Keyword:    keyword,
		PageURL:    pageURL,
		ReportJSON: string(payload),
		Advisory:   advisory,
	}
	if err := Save(db, run); err != nil {
		return nil, err
	}
	return run, nil
}

// History returns the most recent runs for a site, newest first.
func History(db *gorm.DB, siteID uint, limit int) ([]AnalysisRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []AnalysisRun
	err := db.Where("site_id = ?", siteID).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load run history: %w", err)
	}
	return runs, nil
}

// GetRun loads a single run by ID, scoped to a site.
func GetRun(db *gorm.DB, siteID, runID uint) (*AnalysisRun, error) {
	var run AnalysisRun
	if err := db.Where("site_id = ? AND id = ?", siteID, runID).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// PruneOlderThan deletes runs created before the cutoff, in batches so a
// large backlog doesn't hold the write lock. Returns the number deleted.
func PruneOlderThan(db *gorm.DB, cutoff time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	var totalDeleted int64
	for {
		result := db.Where("created_at < ?", cutoff).
			Limit(batchSize).
			Delete(&AnalysisRun{})
		if result.Error != nil {
			return totalDeleted, fmt.Errorf("failed to prune old runs: %w", result.Error)
		}

		totalDeleted += result.RowsAffected
		if result.RowsAffected < int64(batchSize) {
			return totalDeleted, nil
		}

		// Small delay between batches to prevent database lock contention
		time.Sleep(100 * time.Millisecond)
	}
}
