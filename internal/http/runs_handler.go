package http

import (
	"encoding/json"
	"strconv"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"searchlens/internal/runs"
)

// RunsIndexAction lists saved analysis runs for a site, newest first
func RunsIndexAction(ctx *cartridge.Context) error {
	site, err := loadSite(ctx)
	if site == nil {
		return err
	}

	limit := 0
	if v := ctx.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	history, err := runs.History(ctx.DB(), site.ID, limit)
	if err != nil {
		ctx.Logger.Error("Failed to load run history",
			slog.Uint64("site_id", uint64(site.ID)),
			slog.Any("error", err))
		return ctx.Ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load run history",
		})
	}

	return ctx.Ctx.JSON(fiber.Map{"runs": history})
}

// RunShowAction returns a single saved run including its report payload
func RunShowAction(ctx *cartridge.Context) error {
	site, err := loadSite(ctx)
	if site == nil {
		return err
	}

	runID, err := ctx.ParamsInt("runId")
	if err != nil || runID <= 0 {
		return ctx.Ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid run ID",
		})
	}

	run, err := runs.GetRun(ctx.DB(), site.ID, uint(runID))
	if err != nil {
		return ctx.Ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Run not found",
		})
	}

	resp := fiber.Map{"run": run}
	if run.ReportJSON != "" {
		resp["report"] = json.RawMessage(run.ReportJSON)
	}
	return ctx.Ctx.JSON(resp)
}
