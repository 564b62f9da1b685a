package jobs

import (
	"log/slog"
	"time"

	"searchlens/internal/config"
	"searchlens/internal/database"
	"searchlens/internal/runs"
)

// CleanupJob removes saved analysis runs past the retention window.
type CleanupJob struct {
	dbManager *database.DBManager
	logger    *slog.Logger
	cfg       *config.Config
}

func NewCleanupJob(dbManager *database.DBManager, logger *slog.Logger, cfg *config.Config) *CleanupJob {
	return &CleanupJob{
		dbManager: dbManager,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run deletes analysis runs older than the retention period in batches.
func (j *CleanupJob) Run() error {
	retentionDays := j.cfg.RunsRetentionDays
	db := j.dbManager.GetConnection()
	cutoffDate := time.Now().AddDate(0, 0, -retentionDays)

	j.logger.Info("Starting cleanup of old analysis runs",
		slog.Int("retention_days", retentionDays),
		slog.Time("cutoff_date", cutoffDate))

	deleted, err := runs.PruneOlderThan(db, cutoffDate, 0)
	if err != nil {
		j.logger.Error("Failed to delete old analysis runs", slog.Any("error", err))
		return err
	}

	if deleted == 0 {
		j.logger.Debug("No old analysis runs to clean up")
		return nil
	}

	j.logger.Info("Cleaned up old analysis runs",
		slog.Int64("deleted_count", deleted),
		slog.Int("retention_days", retentionDays))

	return nil
}
