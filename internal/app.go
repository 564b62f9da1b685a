// Package internal contains core application functionality
package internal

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/karloscodes/cartridge"

	"searchlens/internal/advisor"
	"searchlens/internal/competitors"
	"searchlens/internal/config"
	"searchlens/internal/content"
	"searchlens/internal/database"
	"searchlens/internal/ga4"
	"searchlens/internal/gsc"
	"searchlens/internal/http"
	"searchlens/internal/jobs"
	"searchlens/internal/reports"
	"searchlens/internal/settings"
)

// Application wraps cartridge.Application with searchlens-specific components
type Application struct {
	*cartridge.Application
	DBManager *database.DBManager
	Builder   *reports.Builder
	Handlers  *http.Handlers
}

// NewApp creates a new application instance with default settings
func NewApp() (*Application, error) {
	cfg := config.GetConfig()
	return NewAppWithConfig(cfg)
}

// NewAppWithConfig creates a new application with the provided config
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	// Create logger
	logger := cartridge.NewLogger(cfg, nil)

	// Initialize database manager (searchlens-specific with migration methods)
	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	db := dbManager.GetConnection()

	// Make sure an API key exists before the first request needs it
	if _, err := settings.GetOrCreateAPIKey(db); err != nil {
		return nil, fmt.Errorf("failed to ensure API key: %w", err)
	}

	ctx := context.Background()

	// The Google clients need service-account credentials. Without them
	// the server still starts so migrations and the CLI keep working;
	// analysis requests fail with a clear error instead.
	var searchSource reports.SearchSource
	var analyticsSource reports.AnalyticsSource
	if cfg.GoogleCredentialsFile != "" {
		searchClient, err := gsc.NewClient(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create search console client: %w", err)
		}
		searchSource = searchClient

		// GA4 shares the service-account credentials, so it is available
		// whenever Search Console is
		analyticsClient, err := ga4.NewClient(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create analytics client: %w", err)
		}
		analyticsSource = analyticsClient
	} else {
		logger.Warn("Google credentials not set, search data fetching disabled")
	}

	builder := reports.NewBuilder(searchSource, analyticsSource, db, logger)
	fetcher := content.NewFetcher(logger)

	handlers := &http.Handlers{
		Builder: builder,
		Fetcher: fetcher,
	}

	// Advisory and competitor discovery are optional: the analysis API
	// works without them
	if cfg.LLMAPIKey != "" {
		adv, err := advisor.NewAdvisor(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create advisor: %w", err)
		}
		handlers.Advisor = adv
	} else {
		logger.Warn("LLM API key not set, advisory endpoints disabled")
	}

	if cfg.GoogleAPIKey != "" && cfg.SearchEngineID != "" {
		finder, err := competitors.NewFinder(ctx, cfg, db, fetcher, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create competitor finder: %w", err)
		}
		handlers.Finder = finder
	} else {
		logger.Warn("Custom search not configured, competitor discovery disabled")
	}

	// Initialize jobs system
	scheduler, err := jobs.NewScheduler(dbManager, builder, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize jobs: %w", err)
	}

	// Create the cartridge application using NewApplication
	app, err := cartridge.NewApplication(cartridge.ApplicationOptions{
		Config:    cfg,
		Logger:    logger,
		DBManager: dbManager,
		RouteMountFunc: func(srv *cartridge.Server) {
			MountAppRoutes(srv, handlers)
		},
		BackgroundWorkers: []cartridge.BackgroundWorker{scheduler},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	logger.Info("Application wired",
		slog.Bool("advisor", handlers.Advisor != nil),
		slog.Bool("competitor_search", handlers.Finder != nil))

	return &Application{
		Application: app,
		DBManager:   dbManager,
		Builder:     builder,
		Handlers:    handlers,
	}, nil
}
