// Package app is the public API for embedding Searchlens in another
// program. It re-exports the core types and constructors so callers do not
// import internal packages directly.
package app

import (
	"searchlens/internal"
	"searchlens/internal/config"
	"searchlens/internal/database"
	"searchlens/internal/http"
	"searchlens/internal/reports"
	"searchlens/internal/sites"

	"github.com/karloscodes/cartridge"
	"gorm.io/gorm"
)

// Re-export core types
type (
	Application = internal.Application
	Config      = config.Config
	DBManager   = database.DBManager
	Handlers    = http.Handlers
	Report      = reports.Report
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	return config.GetConfig()
}

// NewApp creates a new application with default routes
func NewApp() (*Application, error) {
	return internal.NewApp()
}

// NewAppWithConfig creates a new application from an explicit configuration
func NewAppWithConfig(cfg *Config) (*Application, error) {
	return internal.NewAppWithConfig(cfg)
}

// MountAppRoutes mounts the API routes on a cartridge server (for embedders
// that mount additional routes of their own).
func MountAppRoutes(srv *cartridge.Server, h *Handlers) {
	internal.MountAppRoutes(srv, h)
}

// GetSitesForSelector returns the registered sites formatted for a frontend
// selector.
func GetSitesForSelector(db *gorm.DB) ([]map[string]interface{}, error) {
	return sites.GetSitesForSelector(db)
}
