package jobs

import (
	"context"
	"log/slog"
	"time"

	"searchlens/internal/database"
	"searchlens/internal/period"
	"searchlens/internal/reports"
	"searchlens/internal/runs"
	"searchlens/internal/sites"
)

// refreshWindowDays is the current-period length used for scheduled
// rebuilds.
const refreshWindowDays = 28

// RefreshJob rebuilds the previous-period report for every auto-refresh
// site and saves each result as a run.
type RefreshJob struct {
	dbManager *database.DBManager
	builder   *reports.Builder
	logger    *slog.Logger
}

func NewRefreshJob(dbManager *database.DBManager, builder *reports.Builder, logger *slog.Logger) *RefreshJob {
	return &RefreshJob{
		dbManager: dbManager,
		builder:   builder,
		logger:    logger,
	}
}

// Run refreshes every auto-refresh site. A failing site is logged and
// skipped so one broken property cannot stall the rest.
func (j *RefreshJob) Run(ctx context.Context) error {
	db := j.dbManager.GetConnection()

	refreshSites, err := sites.ListAutoRefreshSites(db)
	if err != nil {
		return err
	}
	if len(refreshSites) == 0 {
		j.logger.Debug("No auto-refresh sites configured")
		return nil
	}

	current := period.LastNDays(time.Now(), refreshWindowDays)
	comparison, err := period.ComparisonFor(current, period.PresetPreviousPeriod)
	if err != nil {
		return err
	}

	j.builder.InvalidateSnapshots()
	thresholds := j.builder.Thresholds()

	refreshed := 0
	for i := range refreshSites {
		site := &refreshSites[i]

		report, err := j.builder.Build(ctx, site, current, comparison, thresholds)
		if err != nil {
			j.logger.Error("Failed to refresh site report",
				slog.String("site", site.SiteURL),
				slog.Any("error", err))
			continue
		}

		if _, err := runs.SaveReport(db, site.ID, "", "", report, ""); err != nil {
			j.logger.Error("Failed to save refreshed report",
				slog.String("site", site.SiteURL),
				slog.Any("error", err))
			continue
		}
		refreshed++
	}

	j.logger.Info("Report refresh finished",
		slog.Int("sites", len(refreshSites)),
		slog.Int("refreshed", refreshed))
	return nil
}
