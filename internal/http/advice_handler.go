package http

import (
	"errors"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"searchlens/internal/competitors"
	"searchlens/internal/content"
	"searchlens/internal/runs"
)

type advicePayload struct {
	Keyword string `json:"keyword"`
	URL     string `json:"url"`
}

// AdviceResponse bundles everything the advice pipeline produced.
type AdviceResponse struct {
	Keyword     string                       `json:"keyword"`
	Article     *content.Article             `json:"article"`
	Competitors []competitors.SearchResult   `json:"competitors,omitempty"`
	Profiles    []*content.CompetitorProfile `json:"profiles,omitempty"`
	Advisory    string                       `json:"advisory"`
	RunID       uint                         `json:"run_id,omitempty"`
}

// AdviceCreateAction scrapes the page, profiles the competition and asks
// the chat model for recommendations, saving the result as a run
func (h *Handlers) AdviceCreateAction(ctx *cartridge.Context) error {
	site, err := loadSite(ctx)
	if site == nil {
		return err
	}

	var payload advicePayload
	if err := ctx.Ctx.BodyParser(&payload); err != nil {
		return ctx.Ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if payload.Keyword == "" || payload.URL == "" {
		return ctx.Ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "keyword and url are required",
		})
	}
	if h.Advisor == nil {
		return ctx.Ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Advisory is not configured. Set the LLM API key.",
		})
	}

	reqCtx := ctx.Ctx.Context()

	article, err := h.Fetcher.FetchArticle(reqCtx, payload.URL)
	if err != nil {
		ctx.Logger.Error("Failed to fetch article",
			slog.String("url", payload.URL),
			slog.Any("error", err))
		return ctx.Ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to fetch article: " + err.Error(),
		})
	}

	resp := AdviceResponse{Keyword: payload.Keyword, Article: article}

	// Competitor discovery is best effort: without it (no search config,
	// quota spent) the advisory falls back to reviewing the page alone.
	if h.Finder != nil {
		results, err := h.Finder.TopCompetitors(reqCtx, payload.Keyword)
		if err != nil {
			var quotaErr *competitors.QuotaExceededError
			if errors.As(err, &quotaErr) {
				ctx.Logger.Warn("Search quota exhausted, skipping competitors",
					slog.String("keyword", payload.Keyword))
			} else {
				ctx.Logger.Error("Competitor search failed",
					slog.String("keyword", payload.Keyword),
					slog.Any("error", err))
			}
		} else {
			resp.Competitors = results
			resp.Profiles = h.Finder.ProfileCompetitors(reqCtx, results)
		}
	}

	if len(resp.Profiles) > 0 {
		resp.Advisory, err = h.Advisor.CompareCompetitors(reqCtx, payload.Keyword, article, resp.Profiles)
	} else {
		resp.Advisory, err = h.Advisor.ReviewArticle(reqCtx, payload.Keyword, article)
	}
	if err != nil {
		ctx.Logger.Error("Advisory generation failed",
			slog.String("keyword", payload.Keyword),
			slog.Any("error", err))
		return ctx.Ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Advisory generation failed: " + err.Error(),
		})
	}

	run, err := runs.SaveReport(ctx.DB(), site.ID, payload.Keyword, payload.URL, resp, resp.Advisory)
	if err != nil {
		// The advice is still worth returning when persistence fails.
		ctx.Logger.Error("Failed to save advice run",
			slog.Uint64("site_id", uint64(site.ID)),
			slog.Any("error", err))
	} else {
		resp.RunID = run.ID
	}

	return ctx.Ctx.JSON(resp)
}
