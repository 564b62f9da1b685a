package http

import (
	"strconv"
	"time"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"searchlens/internal/advisor"
	"searchlens/internal/competitors"
	"searchlens/internal/content"
	"searchlens/internal/period"
	"searchlens/internal/reports"
	"searchlens/internal/settings"
)

// defaultAnalysisDays is the current-period length when the request gives
// no explicit range.
const defaultAnalysisDays = 28

// Handlers carries the collaborators the analysis endpoints need beyond
// what the request context provides.
type Handlers struct {
	Builder *reports.Builder
	Advisor *advisor.Advisor
	Finder  *competitors.Finder
	Fetcher *content.Fetcher
}

// AnalysisShowAction builds (or serves from cache) the comparative
// analysis for a site over the requested ranges
func (h *Handlers) AnalysisShowAction(ctx *cartridge.Context) error {
	site, err := loadSite(ctx)
	if site == nil {
		return err
	}

	current, comparison, err := parseRanges(ctx)
	if err != nil {
		return ctx.Ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	thresholds, overridden := parseThresholdOverrides(ctx, h.Builder.Thresholds())

	var report *reports.Report
	if overridden {
		// Custom thresholds bypass the snapshot cache.
		report, err = h.Builder.Build(ctx.Ctx.Context(), site, current, comparison, thresholds)
	} else {
		report, err = h.Builder.BuildCached(site.ID, current, comparison)
	}
	if err != nil {
		ctx.Logger.Error("Failed to build analysis",
			slog.String("site", site.SiteURL),
			slog.Any("error", err))
		return ctx.Ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to build analysis: " + err.Error(),
		})
	}

	return ctx.Ctx.JSON(report)
}

// parseRanges resolves the current and comparison ranges from the query
// string: from/to (default last 28 full days), and either cfrom/cto or a
// compare preset (default previous_period).
func parseRanges(ctx *cartridge.Context) (period.Range, period.Range, error) {
	var current period.Range
	var err error

	from, to := ctx.Query("from"), ctx.Query("to")
	if from != "" || to != "" {
		current, err = period.Parse(from, to)
		if err != nil {
			return period.Range{}, period.Range{}, err
		}
	} else {
		current = period.LastNDays(time.Now(), defaultAnalysisDays)
	}

	cfrom, cto := ctx.Query("cfrom"), ctx.Query("cto")
	if cfrom != "" || cto != "" {
		comparison, err := period.Parse(cfrom, cto)
		return current, comparison, err
	}

	preset := period.Preset(ctx.Query("compare"))
	if preset == "" {
		preset = period.PresetPreviousPeriod
	}
	comparison, err := period.ComparisonFor(current, preset)
	return current, comparison, err
}

// parseThresholdOverrides applies per-request threshold query params on top
// of the stored values, reporting whether any was given.
func parseThresholdOverrides(ctx *cartridge.Context, base settings.Thresholds) (settings.Thresholds, bool) {
	overridden := false

	if v := ctx.Query("min_clicks"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			base.MinClicks = n
			overridden = true
		}
	}
	if v := ctx.Query("change_threshold"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			base.ChangeThresholdPercent = f
			overridden = true
		}
	}
	if v := ctx.Query("ctr_threshold"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			base.CTRThreshold = f
			overridden = true
		}
	}
	if v := ctx.Query("min_impressions"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			base.MinImpressions = n
			overridden = true
		}
	}
	if v := ctx.Query("min_sessions"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			base.MinSessions = n
			overridden = true
		}
	}

	return base, overridden
}
