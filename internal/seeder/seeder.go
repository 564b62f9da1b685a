// Package seeder populates a development database with sample sites and
// synthetic analysis runs.
package seeder

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge"
	"gorm.io/gorm"

	"searchlens/internal/insights"
	"searchlens/internal/reports"
	"searchlens/internal/runs"
	"searchlens/internal/settings"
	"searchlens/internal/sites"
)

// Seeder handles the data seeding process.
type Seeder struct {
	DBManager cartridge.DBManager
	Logger    *slog.Logger
	RunCount  int
}

// NewSeeder creates a new seeder instance
func NewSeeder(dbManager cartridge.DBManager, logger *slog.Logger, runCount int) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	if runCount <= 0 {
		runCount = 6
	}
	return &Seeder{
		DBManager: dbManager,
		Logger:    logger,
		RunCount:  runCount,
	}
}

var sampleSites = []sites.Site{
	{Name: "Trail Gear Blog", SiteURL: "sc-domain:trailgear.example", GA4PropertyID: "101010", AutoRefresh: true},
	{Name: "Homebrew Kitchen", SiteURL: "https://homebrew-kitchen.example", AutoRefresh: false},
	{Name: "Indie Dev Notes", SiteURL: "sc-domain:indiedev.example", GA4PropertyID: "202020", AutoRefresh: true},
}

var sampleQueries = []string{
	"best hiking boots", "trail running shoes review", "waterproof jacket comparison",
	"sourdough starter guide", "cast iron seasoning", "cold brew ratio",
	"golang worker pool", "sqlite wal mode", "fiber middleware order",
}

// Run seeds all sample sites with synthetic run history.
func (s *Seeder) Run(ctx context.Context) error {
	start := time.Now()
	db := s.DBManager.GetConnection()

	if err := settings.SetupDefaultSettings(db); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}

	for i := range sampleSites {
		site, err := s.ensureSite(db, sampleSites[i])
		if err != nil {
			return err
		}
		if err := s.seedRuns(ctx, db, site); err != nil {
			return err
		}
	}

	s.Logger.Info("Seeding finished",
		slog.Int("sites", len(sampleSites)),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// SeedSite seeds one existing site with synthetic run history.
func (s *Seeder) SeedSite(ctx context.Context, siteURL string) error {
	db := s.DBManager.GetConnection()

	site, err := sites.GetSiteByURL(db, siteURL)
	if err != nil {
		return err
	}
	return s.seedRuns(ctx, db, site)
}

func (s *Seeder) ensureSite(db *gorm.DB, template sites.Site) (*sites.Site, error) {
	existing, err := sites.GetSiteByURL(db, template.SiteURL)
	if err == nil {
		return existing, nil
	}

	site := template
	if err := sites.CreateSite(db, &site); err != nil {
		return nil, err
	}
	s.Logger.Info("Created sample site", slog.String("site_url", site.SiteURL))
	return &site, nil
}

// seedRuns writes one synthetic report per week going backwards.
func (s *Seeder) seedRuns(ctx context.Context, db *gorm.DB, site *sites.Site) error {
	for i := 0; i < s.RunCount; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		createdAt := time.Now().UTC().AddDate(0, 0, -7*i)
		report := s.syntheticReport(site, createdAt)

		run, err := runs.SaveReport(db, site.ID, "", "", report, "")
		if err != nil {
			return fmt.Errorf("failed to save seeded run: %w", err)
		}
		if err := db.Model(run).Update("created_at", createdAt).Error; err != nil {
			return fmt.Errorf("failed to backdate seeded run: %w", err)
		}
	}

	s.Logger.Info("Seeded run history",
		slog.String("site_url", site.SiteURL),
		slog.Int("runs", s.RunCount))
	return nil
}

// syntheticReport fabricates plausible query-level movement so dashboards have
// something to show before real data arrives.
func (s *Seeder) syntheticReport(site *sites.Site, at time.Time) *reports.Report {
	trends := make([]insights.TrendRow, 0, 4)
	for i := 0; i < 4; i++ {
		query := sampleQueries[rand.IntN(len(sampleQueries))]
		comparisonClicks := int64(rand.IntN(80))
		currentClicks := comparisonClicks + int64(rand.IntN(120))

		row := insights.TrendRow{
			Query:                 query,
			CurrentClicks:         currentClicks,
			ComparisonClicks:      comparisonClicks,
			CurrentImpressions:    currentClicks * int64(10+rand.IntN(20)),
			ComparisonImpressions: comparisonClicks * int64(10+rand.IntN(20)),
			ClicksChange:          currentClicks - comparisonClicks,
		}
		if comparisonClicks == 0 && currentClicks > 0 {
			row.ChangeRate = insights.NewEntryRate()
		} else if comparisonClicks > 0 {
			row.ChangeRate = insights.NumericRate(float64(row.ClicksChange) / float64(comparisonClicks) * 100)
		}
		trends = append(trends, row)
	}

	end := at.AddDate(0, 0, -1)
	return &reports.Report{
		SiteID:  site.ID,
		SiteURL: site.SiteURL,
		CurrentRange: reports.RangeInfo{
			Start: end.AddDate(0, 0, -27).Format("2006-01-02"),
			End:   end.Format("2006-01-02"),
		},
		ComparisonRange: reports.RangeInfo{
			Start: end.AddDate(0, 0, -55).Format("2006-01-02"),
			End:   end.AddDate(0, 0, -28).Format("2006-01-02"),
		},
		GeneratedAt: at,
		Thresholds:  settings.DefaultThresholds(),
		Trends:      trends,
	}
}
