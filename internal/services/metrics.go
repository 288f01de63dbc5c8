package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Live stream metrics
	StreamConnections prometheus.Gauge
	StreamSamples     prometheus.Counter

	// Query metrics
	QueryRequests prometheus.Counter
	QueryLatency  prometheus.Histogram
	QueryErrors   *prometheus.CounterVec

	// Pipeline metrics
	Classifications  *prometheus.CounterVec
	ExcludedSamples  prometheus.Counter
	InsightsEmitted  *prometheus.CounterVec
	BaselineCloses   prometheus.Counter
}

var globalMetrics *Metrics

// InitMetrics initializes the Prometheus metrics
func InitMetrics() *Metrics {
	metrics := &Metrics{
		// Live stream connections (gauge - can go up and down)
		StreamConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "neuroinsights_stream_connections_active",
			Help: "Number of active live-stream WebSocket connections",
		}),

		StreamSamples: promauto.NewCounter(prometheus.CounterOpts{
			Name: "neuroinsights_stream_samples_total",
			Help: "Total number of labeled samples pushed to live streams",
		}),

		QueryRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "neuroinsights_query_requests_total",
			Help: "Total number of analysis queries processed",
		}),

		QueryLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "neuroinsights_query_duration_seconds",
			Help:    "Analysis query latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}),

		QueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "neuroinsights_query_errors_total",
			Help: "Total number of query errors by type",
		}, []string{"error_type"}),

		Classifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "neuroinsights_classifications_total",
			Help: "Total number of classified samples by resulting state",
		}, []string{"state"}),

		ExcludedSamples: promauto.NewCounter(prometheus.CounterOpts{
			Name: "neuroinsights_excluded_samples_total",
			Help: "Total number of samples excluded for data quality",
		}),

		InsightsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "neuroinsights_insights_emitted_total",
			Help: "Total number of insights generated by type",
		}, []string{"type"}),

		BaselineCloses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "neuroinsights_baseline_closes_total",
			Help: "Total number of daily baseline close runs",
		}),
	}

	globalMetrics = metrics
	return metrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return globalMetrics
}

// RecordStreamConnect records a new live-stream connection
func (m *Metrics) RecordStreamConnect() {
	m.StreamConnections.Inc()
}

// RecordStreamDisconnect records a live-stream disconnection
func (m *Metrics) RecordStreamDisconnect() {
	m.StreamConnections.Dec()
}

// RecordStreamSample records a sample pushed to a live stream
func (m *Metrics) RecordStreamSample() {
	m.StreamSamples.Inc()
}

// RecordQuery records an analysis query and its latency
func (m *Metrics) RecordQuery(seconds float64) {
	m.QueryRequests.Inc()
	m.QueryLatency.Observe(seconds)
}

// RecordQueryError records a query error
func (m *Metrics) RecordQueryError(errorType string) {
	m.QueryErrors.WithLabelValues(errorType).Inc()
}

// RecordClassification records a classified sample
func (m *Metrics) RecordClassification(state string) {
	m.Classifications.WithLabelValues(state).Inc()
}

// RecordExcludedSample records a sample dropped for data quality
func (m *Metrics) RecordExcludedSample() {
	m.ExcludedSamples.Inc()
}

// RecordInsight records a generated insight
func (m *Metrics) RecordInsight(insightType string) {
	m.InsightsEmitted.WithLabelValues(insightType).Inc()
}

// RecordBaselineClose records a daily baseline close run
func (m *Metrics) RecordBaselineClose() {
	m.BaselineCloses.Inc()
}
