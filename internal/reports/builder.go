package reports

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge/cache"
	"gorm.io/gorm"

	"searchlens/internal/insights"
	"searchlens/internal/period"
	"searchlens/internal/pkg/async"
	"searchlens/internal/settings"
	"searchlens/internal/sites"
)

const snapshotTTL = 15 * time.Minute

// Builder assembles comparative analysis reports.
type Builder struct {
	search    SearchSource
	analytics AnalyticsSource
	db        *gorm.DB
	snapshots *cache.Cache[string, *Report]
	logger    *slog.Logger
}

// NewBuilder creates a Builder with a snapshot cache in front of Build.
func NewBuilder(search SearchSource, analytics AnalyticsSource, db *gorm.DB, logger *slog.Logger) *Builder {
	b := &Builder{
		search:    search,
		analytics: analytics,
		db:        db,
		logger:    logger,
	}
	b.snapshots = cache.NewCache[string, *Report](logger, snapshotTTL, b.buildFromKey)
	return b
}

// Build assembles a report for the site over the two ranges. The three
// upstream fetches run concurrently; any fetch error fails the build.
func (b *Builder) Build(ctx context.Context, site *sites.Site, current, comparison period.Range, thresholds settings.Thresholds) (*Report, error) {
	if b.search == nil {
		return nil, fmt.Errorf("search console source is not configured")
	}
	if current.Overlaps(comparison) {
		b.logger.Warn("analysis ranges overlap",
			slog.String("site", site.SiteURL),
			slog.String("current", current.String()),
			slog.String("comparison", comparison.String()))
	}

	tasks := []async.Task{
		{
			Name: "searchCurrent",
			Execute: func() (interface{}, error) {
				return b.search.FetchSearchRecords(ctx, site.SiteURL, current)
			},
		},
		{
			Name: "searchComparison",
			Execute: func() (interface{}, error) {
				return b.search.FetchSearchRecords(ctx, site.SiteURL, comparison)
			},
		},
	}
	if site.GA4PropertyID != "" && b.analytics != nil {
		tasks = append(tasks, async.Task{
			Name: "organicTraffic",
			Execute: func() (interface{}, error) {
				return b.analytics.FetchOrganicTraffic(ctx, site.GA4PropertyID, current)
			},
		})
	}

	pool := async.NewPool(len(tasks))
	results := pool.Execute(ctx, tasks)

	currentRecords, err := searchResult(results, "searchCurrent")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current period: %w", err)
	}
	comparisonRecords, err := searchResult(results, "searchComparison")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comparison period: %w", err)
	}

	var trafficRecords []insights.AnalyticsRecord
	if res, ok := results["organicTraffic"]; ok {
		if res.Error != nil {
			return nil, fmt.Errorf("failed to fetch organic traffic: %w", res.Error)
		}
		trafficRecords, _ = res.Data.([]insights.AnalyticsRecord)
	}

	currentSummaries := insights.Aggregate(currentRecords, insights.GroupByQuery)
	comparisonSummaries := insights.Aggregate(comparisonRecords, insights.GroupByQuery)
	trends := insights.CompareTrends(currentSummaries, comparisonSummaries)

	report := &Report{
		SiteID:          site.ID,
		SiteURL:         site.SiteURL,
		CurrentRange:    rangeInfo(current),
		ComparisonRange: rangeInfo(comparison),
		GeneratedAt:     time.Now().UTC(),
		Thresholds:      thresholds,
		Performance:     insights.SummarizePerformance(currentRecords, comparisonRecords),
		Trends:          insights.FilterSignificant(trends, thresholds.ChangeThresholdPercent, thresholds.MinClicks),
		Conversions:     insights.RankConversions(trafficRecords, thresholds.MinSessions),
		IntentGaps:      insights.DetectIntentGaps(currentRecords, thresholds.CTRThreshold, thresholds.MinImpressions),
	}

	b.logger.Info("built analysis report",
		slog.String("site", site.SiteURL),
		slog.Int("significant_trends", len(report.Trends)),
		slog.Int("intent_gaps", len(report.IntentGaps)))
	return report, nil
}

// BuildCached serves the report from the snapshot cache, building it with
// stored thresholds on a miss. Reports built with per-request threshold
// overrides bypass the cache.
func (b *Builder) BuildCached(siteID uint, current, comparison period.Range) (*Report, error) {
	return b.snapshots.Get(snapshotKey(siteID, current, comparison))
}

// InvalidateSnapshots drops all cached reports, e.g. after a site changes.
func (b *Builder) InvalidateSnapshots() {
	b.snapshots.Clear()
}

// Thresholds resolves effective thresholds: stored settings when available,
// insights defaults otherwise.
func (b *Builder) Thresholds() settings.Thresholds {
	thresholds, err := settings.GetThresholds(b.db)
	if err != nil {
		b.logger.Warn("falling back to default thresholds", slog.Any("error", err))
		return settings.DefaultThresholds()
	}
	return thresholds
}

func snapshotKey(siteID uint, current, comparison period.Range) string {
	return fmt.Sprintf("%d|%s|%s|%s|%s",
		siteID,
		current.StartString(), current.EndString(),
		comparison.StartString(), comparison.EndString())
}

// buildFromKey is the cache fetch function: it recovers the build
// parameters from the snapshot key.
func (b *Builder) buildFromKey(key string) (*Report, error) {
	parts := strings.Split(key, "|")
	if len(parts) != 5 {
		return nil, fmt.Errorf("malformed snapshot key %q", key)
	}

	siteID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed site id in snapshot key %q: %w", key, err)
	}
	current, err := period.Parse(parts[1], parts[2])
	if err != nil {
		return nil, err
	}
	comparison, err := period.Parse(parts[3], parts[4])
	if err != nil {
		return nil, err
	}

	site, err := sites.GetSiteByID(b.db, uint(siteID))
	if err != nil {
		return nil, err
	}

	return b.Build(context.Background(), site, current, comparison, b.Thresholds())
}

func searchResult(results map[string]async.Result, name string) ([]insights.SearchRecord, error) {
	res, ok := results[name]
	if !ok {
		return nil, fmt.Errorf("missing task result %q", name)
	}
	if res.Error != nil {
		return nil, res.Error
	}
	records, _ := res.Data.([]insights.SearchRecord)
	return records, nil
}
