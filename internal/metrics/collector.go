// Package metrics exposes Prometheus collectors for the fraud graph
// engine, trimmed from the teacher's much larger graph-engine collector
// down to what a single batch-analysis service measures.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds every metric this service emits.
type Collector struct {
	AnalysesTotal       prometheus.Counter
	AnalysisDuration    prometheus.Histogram
	DetectorDuration    *prometheus.HistogramVec
	RingsEmittedTotal   prometheus.Counter
	NodesRenderedTotal  prometheus.Histogram
	FreezeRecommendations prometheus.Counter
}

// NewCollector registers and returns a Collector on the given registerer,
// matching graph-engine/internal/metrics/collector.go's promauto style.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		AnalysesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraud_engine_analyses_total",
			Help: "Total number of completed analysis runs.",
		}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fraud_engine_analysis_duration_seconds",
			Help:    "Duration of a full analysis run.",
			Buckets: prometheus.DefBuckets,
		}),
		DetectorDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fraud_engine_detector_duration_seconds",
			Help:    "Duration of an individual detector pass.",
			Buckets: prometheus.DefBuckets,
		}, []string{"detector"}),
		RingsEmittedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraud_engine_rings_emitted_total",
			Help: "Total number of fraud rings emitted across all runs.",
		}),
		NodesRenderedTotal: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fraud_engine_nodes_rendered",
			Help:    "Number of nodes rendered in a run's payload.",
			Buckets: []float64{10, 50, 100, 250, 500, 800},
		}),
		FreezeRecommendations: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraud_engine_freeze_recommendations_total",
			Help: "Total number of freeze recommendations issued across all runs.",
		}),
	}
}

// ObserveDetector records how long a named detector took.
func (c *Collector) ObserveDetector(name string, d time.Duration) {
	c.DetectorDuration.WithLabelValues(name).Observe(d.Seconds())
}
