package http

import (
	"errors"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	"gorm.io/gorm"

	"searchlens/internal/sites"
)

type sitePayload struct {
	Name          string `json:"name"`
	SiteURL       string `json:"site_url"`
	GA4PropertyID string `json:"ga4_property_id"`
	AutoRefresh   bool   `json:"auto_refresh"`
}

// SitesIndexAction lists all registered sites
func SitesIndexAction(ctx *cartridge.Context) error {
	allSites, err := sites.ListSites(ctx.DB())
	if err != nil {
		ctx.Logger.Error("Failed to list sites", slog.Any("error", err))
		return ctx.Ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list sites",
		})
	}
	return ctx.Ctx.JSON(fiber.Map{"sites": allSites})
}

// SiteCreateAction registers a new site
func SiteCreateAction(ctx *cartridge.Context) error {
	var payload sitePayload
	if err := ctx.Ctx.BodyParser(&payload); err != nil {
		return ctx.Ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := sites.ValidateSiteURL(payload.SiteURL); err != nil {
		return ctx.Ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	site := sites.Site{
		Name:          payload.Name,
		SiteURL:       payload.SiteURL,
		GA4PropertyID: payload.GA4PropertyID,
		AutoRefresh:   payload.AutoRefresh,
	}
	if err := sites.CreateSite(ctx.DB(), &site); err != nil {
		ctx.Logger.Error("Failed to create site",
			slog.String("site_url", payload.SiteURL),
			slog.Any("error", err))
		return ctx.Ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create site",
		})
	}

	ctx.Logger.Info("Site created",
		slog.Uint64("id", uint64(site.ID)),
		slog.String("site_url", site.SiteURL))
	return ctx.Ctx.Status(fiber.StatusCreated).JSON(site)
}

// SiteShowAction returns one site by ID
func SiteShowAction(ctx *cartridge.Context) error {
	site, err := loadSite(ctx)
	if site == nil {
		return err
	}
	return ctx.Ctx.JSON(site)
}

// SiteUpdateAction updates a site's name, GA4 property or refresh enrollment
func SiteUpdateAction(ctx *cartridge.Context) error {
	site, err := loadSite(ctx)
	if site == nil {
		return err
	}

	var payload sitePayload
	if err := ctx.Ctx.BodyParser(&payload); err != nil {
		return ctx.Ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if payload.Name != "" {
		site.Name = payload.Name
	}
	site.GA4PropertyID = payload.GA4PropertyID
	site.AutoRefresh = payload.AutoRefresh

	if err := sites.UpdateSite(ctx.DB(), site); err != nil {
		ctx.Logger.Error("Failed to update site",
			slog.Uint64("id", uint64(site.ID)),
			slog.Any("error", err))
		return ctx.Ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update site",
		})
	}
	return ctx.Ctx.JSON(site)
}

// SiteDeleteAction removes a site and its saved runs
func SiteDeleteAction(ctx *cartridge.Context) error {
	site, err := loadSite(ctx)
	if site == nil {
		return err
	}

	if err := sites.DeleteSite(ctx.DB(), site.ID); err != nil {
		ctx.Logger.Error("Failed to delete site",
			slog.Uint64("id", uint64(site.ID)),
			slog.Any("error", err))
		return ctx.Ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete site",
		})
	}

	ctx.Logger.Info("Site deleted", slog.Uint64("id", uint64(site.ID)))
	return ctx.Ctx.JSON(fiber.Map{"deleted": site.ID})
}

// loadSite resolves the :id param to a site. On failure it writes the
// error response and returns a nil site; the caller returns the error.
func loadSite(ctx *cartridge.Context) (*sites.Site, error) {
	id, err := ctx.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, ctx.Ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid site ID",
		})
	}

	site, err := sites.GetSiteByID(ctx.DB(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ctx.Ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Site not found",
			})
		}
		ctx.Logger.Error("Failed to load site", slog.Int("id", id), slog.Any("error", err))
		return nil, ctx.Ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load site",
		})
	}
	return site, nil
}
