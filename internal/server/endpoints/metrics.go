package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/qpig0218/Rootplanner/internal/metrics"
)

// MetricsEndpoint handles GET /metrics in Prometheus exposition format.
type MetricsEndpoint struct {
	Recorder *metrics.Recorder
}

func (e *MetricsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/metrics", e.handler
}

func (e *MetricsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if e.Recorder == nil {
		http.Error(w, "metrics disabled", http.StatusNotFound)
		return
	}
	e.Recorder.Handler().ServeHTTP(w, r)
}

func (e *MetricsEndpoint) Command(_ func() string) *cobra.Command {
	return nil // scraped by Prometheus, not the CLI
}
