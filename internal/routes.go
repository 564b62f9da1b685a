package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	cartridgemiddleware "github.com/karloscodes/cartridge/middleware"

	"searchlens/internal/config"
	"searchlens/internal/http"
	"searchlens/internal/http/middleware"
)

// MountAppRoutes mounts all application routes using cartridge's route API
func MountAppRoutes(srv *cartridge.Server, h *http.Handlers) {
	cfg := config.GetConfig()

	// Helper to conditionally apply rate limiting (only in production)
	// In development/test, rate limiting would interfere with testing
	conditionalRateLimiter := func(limiter fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if cfg.IsProduction() {
				return limiter(c)
			}
			return c.Next()
		}
	}

	// General API rate limiter (60 requests per minute per IP)
	apiRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(60),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	// Stricter limiter for endpoints that fan out to external APIs:
	// search quota, page fetches and chat completions are all metered
	advisoryRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(10),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	db := srv.GetDBManager().GetConnection()
	logger := srv.GetLogger()

	apiConfig := &cartridge.RouteConfig{
		CustomMiddleware: []fiber.Handler{
			apiRateLimiter,
			middleware.APIKeyAuth(db, logger),
		},
	}

	advisoryConfig := &cartridge.RouteConfig{
		CustomMiddleware: []fiber.Handler{
			advisoryRateLimiter,
			middleware.APIKeyAuth(db, logger),
		},
	}

	// === ROOT ROUTES ===
	srv.Get("/_health", http.HealthIndexAction)
	srv.Head("/_health", http.HealthIndexAction)

	// === SITES ===
	srv.Get("/api/v1/sites", http.SitesIndexAction, apiConfig)
	srv.Post("/api/v1/sites", http.SiteCreateAction, apiConfig)
	srv.Get("/api/v1/sites/:id", http.SiteShowAction, apiConfig)
	srv.Post("/api/v1/sites/:id", http.SiteUpdateAction, apiConfig)
	srv.Delete("/api/v1/sites/:id", http.SiteDeleteAction, apiConfig)

	// === ANALYSIS ===
	srv.Get("/api/v1/sites/:id/analysis", h.AnalysisShowAction, apiConfig)

	// === SAVED RUNS ===
	srv.Get("/api/v1/sites/:id/runs", http.RunsIndexAction, apiConfig)
	srv.Get("/api/v1/sites/:id/runs/:runId", http.RunShowAction, apiConfig)

	// === ADVISORY ===
	srv.Post("/api/v1/sites/:id/advice", h.AdviceCreateAction, advisoryConfig)
}
