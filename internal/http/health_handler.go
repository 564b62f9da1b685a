package http

import (
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge"
	"gorm.io/gorm"
)

// HealthStatus is the health check response body.
type HealthStatus struct {
	Service   string    `json:"service"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	DBStatus  string    `json:"db_status"`
}

// HealthIndexAction reports service liveness and database reachability.
// The endpoint stays unauthenticated so load balancers can probe it.
func HealthIndexAction(ctx *cartridge.Context) error {
	health := HealthStatus{
		Service:   "searchlens",
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		DBStatus:  "ok",
	}

	if err := pingDatabase(ctx); err != nil {
		ctx.Logger.Error("Health check database ping failed", slog.Any("error", err))
		health.Status = "degraded"
		health.DBStatus = "error"
	}

	return ctx.JSON(health)
}

func pingDatabase(ctx *cartridge.Context) error {
	db := ctx.DBManager.GetConnection()
	if db == nil {
		return gorm.ErrInvalidDB
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
