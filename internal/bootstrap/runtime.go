// Package bootstrap wires shared runtime dependencies for the commands.
package bootstrap

import (
	"context"
	"fmt"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/observability"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Runtime carries the initialized shared dependencies.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client

	tracingShutdown func(context.Context) error
}

// InitRuntime connects to the database and Redis and initializes tracing.
// A missing Redis only degrades caching; it does not fail startup.
func InitRuntime(cfg *config.Config) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	tracingShutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "inkwell-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.TracingOTLPEndpoint,
		SamplerRatio:   1.0,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing initialization failed: %w", err)
	}

	return &Runtime{
		DB:              db,
		Redis:           cache.GetClient(),
		tracingShutdown: tracingShutdown,
	}, nil
}

// Shutdown flushes tracing and releases runtime resources.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r.tracingShutdown != nil {
		return r.tracingShutdown(ctx)
	}
	return nil
}
