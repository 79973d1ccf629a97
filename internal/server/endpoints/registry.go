package endpoints

import (
	"github.com/qpig0218/Rootplanner/internal/api"
	"github.com/qpig0218/Rootplanner/internal/metrics"
	"github.com/qpig0218/Rootplanner/internal/schedule"
)

// Config holds dependencies needed by the endpoints.
// All values are set once at startup and only read afterwards.
type Config struct {
	Planner      *schedule.Planner
	Metrics      *metrics.Recorder
	StaticDir    string
	MaxBodyBytes int64
}

// All returns all endpoint instances.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{Planner: cfg.Planner},

		// Schedule relay
		&ScheduleEndpoint{Planner: cfg.Planner, MaxBodyBytes: cfg.MaxBodyBytes},

		// Observability
		&MetricsEndpoint{Recorder: cfg.Metrics},

		// Swagger/OpenAPI endpoints
		&SwaggerEndpoint{},
		&SwaggerUIEndpoint{},

		// Static files (catch-all, must be last)
		&StaticEndpoint{Dir: cfg.StaticDir},
	}
}

// Commands returns the endpoints that have CLI commands, for building the
// api command tree without a running server.
func Commands() []api.Endpoint {
	return All(Config{})
}
