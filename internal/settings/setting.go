package settings

import (
	"context"
	"crypto/rand"
	"fmt"
	"strconv"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge/cache"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"searchlens/internal/insights"
)

// Setting represents a configuration item in the database
type Setting struct {
	ID        uint      `gorm:"primaryKey"`
	Key       string    `gorm:"uniqueIndex;not null"`
	Value     string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:milli"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:milli"`
}

// Threshold setting keys. Values are stored as strings and parsed on read;
// insights defaults apply when a value is missing or unparseable.
const (
	KeyMinClicks              = "min_clicks"
	KeyChangeThresholdPercent = "change_threshold_percent"
	KeyCTRThreshold           = "ctr_threshold"
	KeyMinImpressions         = "min_impressions"
	KeyMinSessions            = "min_sessions"
)

// API access settings keys
const (
	KeyAPIKey = "api_key"
)

// Thresholds are the stored defaults applied to analysis requests that don't
// override them.
type Thresholds struct {
	MinClicks              int64   `json:"min_clicks"`
	ChangeThresholdPercent float64 `json:"change_threshold_percent"`
	CTRThreshold           float64 `json:"ctr_threshold"`
	MinImpressions         int64   `json:"min_impressions"`
	MinSessions            int64   `json:"min_sessions"`
}

// DefaultThresholds returns the insights package defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinClicks:              insights.DefaultMinClicks,
		ChangeThresholdPercent: insights.DefaultChangeThresholdPercent,
		CTRThreshold:           insights.DefaultCTRThreshold,
		MinImpressions:         insights.DefaultMinImpressions,
		MinSessions:            insights.DefaultMinSessions,
	}
}

var thresholdsCache *cache.Cache[string, Thresholds]

// SetupDefaultSettings initializes default settings in the database
func SetupDefaultSettings(dbConn *gorm.DB) error {
	defaults := DefaultThresholds()
	settings := []Setting{
		{Key: KeyMinClicks, Value: strconv.FormatInt(defaults.MinClicks, 10)},
		{Key: KeyChangeThresholdPercent, Value: strconv.FormatFloat(defaults.ChangeThresholdPercent, 'f', -1, 64)},
		{Key: KeyCTRThreshold, Value: strconv.FormatFloat(defaults.CTRThreshold, 'f', -1, 64)},
		{Key: KeyMinImpressions, Value: strconv.FormatInt(defaults.MinImpressions, 10)},
		{Key: KeyMinSessions, Value: strconv.FormatInt(defaults.MinSessions, 10)},
	}
	err := sqlite.PerformWrite(slog.Default(), dbConn, func(tx *gorm.DB) error {
		for _, setting := range settings {
			// Use raw SQL for upsert
			err := tx.Exec(`
                INSERT INTO settings (key, value, created_at, updated_at)
                VALUES (?, ?, ?, ?)
                ON CONFLICT(key) DO NOTHING
            `, setting.Key, setting.Value, time.Now().UTC(), time.Now().UTC()).Error
			if err != nil {
				slog.Default().Error("Failed to upsert setting", slog.String("key", setting.Key), slog.Any("error", err))
				return fmt.Errorf("failed to upsert setting %s: %w", setting.Key, err)
			}
		}
		return nil
	})

	// Initialize the cache
	loadCache(dbConn, slog.Default())

	return err
}

// GetSetting retrieves a setting value from the database
func GetSetting(dbConn *gorm.DB, key string) (string, error) {
	var setting Setting
	result := dbConn.Where("key = ?", key).First(&setting)

	if result.Error != nil {
		return "", result.Error
	}

	return setting.Value, nil
}

// UpdateSetting updates a setting in the database using a transaction
func UpdateSetting(dbConn *gorm.DB, key string, value string) error {
	tx := dbConn.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	result := tx.Model(&Setting{}).Where("key = ?", key).Update("value", value)
	if result.Error != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update setting: %w", result.Error)
	}

	// If no rows were affected, the setting might not exist - try to create it
	if result.RowsAffected == 0 {
		setting := Setting{
			Key:   key,
			Value: value,
		}
		if err := tx.Create(&setting).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to create setting: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Clear and reload the cache after successful update
	if thresholdsCache != nil {
		thresholdsCache.Clear()
	}
	loadCache(dbConn, slog.Default())

	return nil
}

// CreateOrUpdateSetting creates a new setting or updates an existing one
func CreateOrUpdateSetting(dbConn *gorm.DB, key string, value string) error {
	var count int64
	if err := dbConn.Model(&Setting{}).Where("key = ?", key).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check if setting exists: %w", err)
	}

	if count > 0 {
		return UpdateSetting(dbConn, key, value)
	}

	setting := Setting{
		Key:   key,
		Value: value,
	}
	if err := dbConn.Create(&setting).Error; err != nil {
		return fmt.Errorf("failed to create setting: %w", err)
	}
	return nil
}

// GetThresholds returns the stored analysis thresholds, falling back to the
// insights defaults for anything missing. Reads go through the cache when it
// is initialized.
func GetThresholds(dbConn *gorm.DB) (Thresholds, error) {
	if thresholdsCache != nil {
		return thresholdsCache.Get("thresholds")
	}
	return readThresholds(dbConn)
}

func readThresholds(dbConn *gorm.DB) (Thresholds, error) {
	thresholds := DefaultThresholds()

	var rows []Setting
	err := dbConn.Where("key IN ?", []string{
		KeyMinClicks, KeyChangeThresholdPercent, KeyCTRThreshold,
		KeyMinImpressions, KeyMinSessions,
	}).Find(&rows).Error
	if err != nil {
		return thresholds, fmt.Errorf("failed to read thresholds: %w", err)
	}

	for _, row := range rows {
		switch row.Key {
		case KeyMinClicks:
			if v, err := strconv.ParseInt(row.Value, 10, 64); err == nil {
				thresholds.MinClicks = v
			}
		case KeyChangeThresholdPercent:
			if v, err := strconv.ParseFloat(row.Value, 64); err == nil {
				thresholds.ChangeThresholdPercent = v
			}
		case KeyCTRThreshold:
			if v, err := strconv.ParseFloat(row.Value, 64); err == nil {
				thresholds.CTRThreshold = v
			}
		case KeyMinImpressions:
			if v, err := strconv.ParseInt(row.Value, 10, 64); err == nil {
				thresholds.MinImpressions = v
			}
		case KeyMinSessions:
			if v, err := strconv.ParseInt(row.Value, 10, 64); err == nil {
				thresholds.MinSessions = v
			}
		}
	}

	return thresholds, nil
}

func loadCache(dbConn *gorm.DB, logger *slog.Logger) {
	fetchFunc := func(key string) (Thresholds, error) {
		return readThresholds(dbConn.WithContext(context.Background()))
	}
	thresholdsCache = cache.NewCache[string, Thresholds](logger, 5*time.Minute, fetchFunc)
}

// GetAPIKey retrieves the API key used by /api/v1 clients
func GetAPIKey(db *gorm.DB) (string, error) {
	return GetSetting(db, KeyAPIKey)
}

// GetOrCreateAPIKey returns the existing API key or generates a new one
func GetOrCreateAPIKey(db *gorm.DB) (string, error) {
	key, err := GetAPIKey(db)
	if err == nil && key != "" {
		return key, nil
	}
	return GenerateAPIKey(db)
}

// GenerateAPIKey creates a new random API key and stores it, replacing any
// previous one.
func GenerateAPIKey(db *gorm.DB) (string, error) {
	key := generateRandomToken(32)
	if err := CreateOrUpdateSetting(db, KeyAPIKey, key); err != nil {
		return "", err
	}
	return key, nil
}

// generateRandomToken creates a cryptographically secure random token
func generateRandomToken(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[randInt(len(charset))]
	}
	return string(b)
}

// randInt returns a cryptographically secure random int in [0, max)
func randInt(max int) int {
	var buf [1]byte
	_, _ = rand.Read(buf[:])
	return int(buf[0]) % max
}

// SettingResponse represents a setting key-value pair for API responses
type SettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// GetAllSettingsForDisplay retrieves all settings with sensitive values
// masked for display
func GetAllSettingsForDisplay(db *gorm.DB) ([]SettingResponse, error) {
	var allSettings []Setting
	if err := db.Find(&allSettings).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch settings: %w", err)
	}

	result := make([]SettingResponse, 0, len(allSettings))
	for _, setting := range allSettings {
		value := setting.Value
		if setting.Key == KeyAPIKey && value != "" {
			value = "********"
		}
		result = append(result, SettingResponse{
			Key:   setting.Key,
			Value: value,
		})
	}
	return result, nil
}
