package competitors

import (
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
)

// SearchQuota tracks daily Custom Search API usage. One row per day.
type SearchQuota struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Day  string `gorm:"uniqueIndex;not null" json:"day"`
	Used int    `gorm:"not null;default:0" json:"used"`
}

// QuotaExceededError is returned when the daily search budget is spent.
type QuotaExceededError struct {
	Day   string
	Limit int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("search quota of %d exhausted for %s", e.Limit, e.Day)
}

func quotaDay(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}

// ConsumeQuota reserves one search against today's budget, creating the
// day's row on first use. Returns QuotaExceededError once limit is hit.
func ConsumeQuota(db *gorm.DB, now time.Time, limit int) error {
	day := quotaDay(now)
	return sqlite.PerformWrite(slog.Default(), db, func(tx *gorm.DB) error {
		var quota SearchQuota
		err := tx.Where("day = ?", day).First(&quota).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			quota = SearchQuota{Day: day}
		} else if err != nil {
			return fmt.Errorf("failed to load search quota: %w", err)
		}

		if quota.Used >= limit {
			return &QuotaExceededError{Day: day, Limit: limit}
		}

		quota.Used++
		if err := tx.Save(&quota).Error; err != nil {
			return fmt.Errorf("failed to update search quota: %w", err)
		}
		return nil
	})
}

// QuotaRemaining reports how many searches are left today.
func QuotaRemaining(db *gorm.DB, now time.Time, limit int) (int, error) {
	var quota SearchQuota
	err := db.Where("day = ?", quotaDay(now)).First(&quota).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return limit, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load search quota: %w", err)
	}
	remaining := limit - quota.Used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
