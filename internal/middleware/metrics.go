package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

var (
	metricsOnce sync.Once
	promShared  *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the Prometheus HTTP middleware for the given service
// name. The underlying collectors register against the default registry, so
// a single shared instance serves every server built in the process.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	metricsOnce.Do(func() {
		promShared = fiberprometheus.New(serviceName)
	})
	return promShared
}

// MetricsMiddleware returns the Fiber handler recording request metrics.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
