// Package metrics exposes prometheus collectors for the analysis pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
)

const namespace = "procuresmart"

// Recorder is safe for concurrent use. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	analyses          *prometheus.CounterVec
	recordsAnalyzed   prometheus.Counter
	recordsSkipped    prometheus.Counter
	recommendations   *prometheus.CounterVec
	ingestionFailures prometheus.Counter
	narratives        *prometheus.CounterVec
	analysisDuration  *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, together with the
// standard process and Go runtime collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Analyses run, by source.",
		}, []string{"source"}),
		recordsAnalyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_analyzed_total",
			Help:      "Material records that produced a recommendation.",
		}),
		recordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Material records skipped due to invalid data.",
		}),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Recommendations produced, by priority.",
		}, []string{"priority"}),
		ingestionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestion_failures_total",
			Help:      "Spreadsheets that could not be read.",
		}),
		narratives: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "narratives_total",
			Help:      "Narrative requests, by outcome.",
		}, []string{"outcome"}),
		analysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent computing a batch, excluding the narrative.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"source"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.analyses,
		r.recordsAnalyzed,
		r.recordsSkipped,
		r.recommendations,
		r.ingestionFailures,
		r.narratives,
		r.analysisDuration,
	)
	return r
}

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry is exposed for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveAnalysis records a completed batch.
func (r *Recorder) ObserveAnalysis(source string, result domain.AnalysisResult, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.analyses.WithLabelValues(source).Inc()
	r.analysisDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	r.recordsAnalyzed.Add(float64(len(result.Recommendations)))
	r.recordsSkipped.Add(float64(result.Counts.Skipped))
	for _, rcm := range result.Recommendations {
		r.recommendations.WithLabelValues(string(rcm.Priority)).Inc()
	}
}

func (r *Recorder) IngestionFailed() {
	if r == nil {
		return
	}
	r.ingestionFailures.Inc()
}

// NarrativeOutcome is one of "ok", "failed" or "disabled".
func (r *Recorder) NarrativeOutcome(outcome string) {
	if r == nil {
		return
	}
	r.narratives.WithLabelValues(outcome).Inc()
}
