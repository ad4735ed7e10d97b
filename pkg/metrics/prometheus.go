package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	upstreamCalls *prometheus.CounterVec
	cacheOps      *prometheus.CounterVec
	pipeline      *prometheus.HistogramVec
	llmFallbacks  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		upstreamCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "asharelab_upstream_calls_total",
				Help: "Calls to the upstream data provider by api and outcome",
			},
			[]string{"api", "outcome"},
		),
		cacheOps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "asharelab_cache_ops_total",
				Help: "Cache lookups by data category and outcome",
			},
			[]string{"category", "outcome"},
		),
		pipeline: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "asharelab_pipeline_duration_seconds",
				Help:    "Duration of analysis pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		llmFallbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "asharelab_llm_fallbacks_total",
				Help: "Narrative requests that fell back to the template",
			},
			[]string{"reason"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "asharelab_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordUpstreamCall records one provider API call.
func (r *Recorder) RecordUpstreamCall(api, outcome string) {
	r.upstreamCalls.WithLabelValues(api, outcome).Inc()
}

// RecordCache records a cache lookup outcome.
func (r *Recorder) RecordCache(category, outcome string) {
	r.cacheOps.WithLabelValues(category, outcome).Inc()
}

// RecordPipeline records a pipeline stage duration in seconds.
func (r *Recorder) RecordPipeline(kind string, seconds float64) {
	r.pipeline.WithLabelValues(kind).Observe(seconds)
}

// RecordLLMFallback records a templated-narrative fallback.
func (r *Recorder) RecordLLMFallback(reason string) {
	r.llmFallbacks.WithLabelValues(reason).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
