package db

import (
	"fmt"
	"time"

	"github.com/planloop-io/planloop/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"
)

// New opens a Postgres connection pool from the configuration.
func New(cfg *config.Config) (*gorm.DB, error) {
	g, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := g.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpen)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdle)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return g, nil
}

// RegisterOpenTelemetryPlugin enables query-level tracing.
// Call after the global tracer provider is set.
func RegisterOpenTelemetryPlugin(g *gorm.DB) error {
	return g.Use(tracing.NewPlugin(tracing.WithoutMetrics()))
}
