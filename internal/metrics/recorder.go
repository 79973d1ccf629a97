package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qpig0218/Rootplanner/internal/providers"
)

const namespace = "rootplanner"

// Schedule request outcomes.
const (
	OutcomeScheduled     = "scheduled"      // schedule parsed
	OutcomeNoJSON        = "no_json"        // reply had no balanced object
	OutcomeParseFailed   = "parse_failed"   // object found but not valid JSON
	OutcomeProviderError = "provider_error" // completion call failed
	OutcomeNotConfigured = "not_configured"
	OutcomeInvalid       = "invalid_request"
)

// Recorder records relay metrics to a Prometheus registry.
type Recorder struct {
	gatherer prometheus.Gatherer

	requests         *prometheus.CounterVec
	llmDuration      *prometheus.HistogramVec
	llmTokens        *prometheus.CounterVec
	schemaViolations prometheus.Counter
}

// NewRecorder creates a recorder backed by its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewRecorderWith(reg, reg)
}

// NewRecorderWith registers the collectors with reg and serves them from g.
func NewRecorderWith(reg prometheus.Registerer, g prometheus.Gatherer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		gatherer: g,
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "schedule_requests_total",
				Help:      "Schedule requests by outcome.",
			},
			[]string{"outcome"},
		),
		llmDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_call_duration_seconds",
				Help:      "Duration of chat completion calls in seconds.",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
			},
			[]string{"provider", "status"},
		),
		llmTokens: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_tokens_total",
				Help:      "Tokens reported by the completion provider.",
			},
			[]string{"provider", "kind"},
		),
		schemaViolations: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "schedule_schema_violations_total",
				Help:      "Parsed schedules that did not match the schedule schema.",
			},
		),
	}
}

// RecordOutcome counts one schedule request.
func (r *Recorder) RecordOutcome(outcome string) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(outcome).Inc()
}

// RecordLLMCall records latency and token usage of a completion call.
// result may be nil when the call failed.
func (r *Recorder) RecordLLMCall(provider string, result *providers.ChatResult, seconds float64, err error) {
	if r == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	r.llmDuration.WithLabelValues(provider, status).Observe(seconds)

	if result == nil {
		return
	}
	r.llmTokens.WithLabelValues(provider, "prompt").Add(float64(result.PromptTokens))
	r.llmTokens.WithLabelValues(provider, "completion").Add(float64(result.CompletionTokens))
}

// RecordSchemaViolation counts a schedule that failed schema validation.
func (r *Recorder) RecordSchemaViolation() {
	if r == nil {
		return
	}
	r.schemaViolations.Inc()
}

// Handler serves the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
