// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Gate metrics
	DecisionsEvaluated *prometheus.CounterVec
	TradesBlocked      *prometheus.CounterVec
	GateErrors         prometheus.Counter

	// Simulation metrics
	RunsTotal       *prometheus.CounterVec
	RunDuration     *prometheus.HistogramVec
	StepsSimulated  prometheus.Counter
	EngineFaults    *prometheus.CounterVec
	CurrentDrawdown *prometheus.GaugeVec

	// Validation metrics
	BatchRunsTotal       *prometheus.CounterVec
	BatchDuration        prometheus.Histogram
	CombinationsInFlight prometheus.Gauge
	ReportsGenerated     prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "capital_shield"
	}

	return &Metrics{
		// Gate metrics
		DecisionsEvaluated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "decisions_evaluated_total",
			Help:      "Total number of gate decisions by outcome",
		}, []string{"allowed"}),
		TradesBlocked: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "trades_blocked_total",
			Help:      "Total number of blocked trades by rule code",
		}, []string{"rule"}),
		GateErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "errors_total",
			Help:      "Total number of gate evaluation errors",
		}),

		// Simulation metrics
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "runs_total",
			Help:      "Total number of simulation runs by mode and status",
		}, []string{"mode", "status"}),
		RunDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "run_duration_seconds",
			Help:      "Simulation run duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		StepsSimulated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "steps_simulated_total",
			Help:      "Total number of candle steps simulated",
		}),
		EngineFaults: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "engine_faults_total",
			Help:      "Total number of signal engine faults by engine",
		}, []string{"engine"}),
		CurrentDrawdown: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "current_drawdown",
			Help:      "Current drawdown fraction of the active run",
		}, []string{"dataset", "preset"}),

		// Validation metrics
		BatchRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "batch_runs_total",
			Help:      "Total number of validation combinations by status",
		}, []string{"status"}),
		BatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "batch_duration_seconds",
			Help:      "Validation batch duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		CombinationsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "combinations_in_flight",
			Help:      "Number of dataset/preset combinations currently running",
		}),
		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordDecision records one gate decision and its triggered rules.
func RecordDecision(allowed bool, ruleCodes []string) {
	outcome := "true"
	if !allowed {
		outcome = "false"
	}
	DefaultMetrics.DecisionsEvaluated.WithLabelValues(outcome).Inc()
	for _, code := range ruleCodes {
		DefaultMetrics.TradesBlocked.WithLabelValues(code).Inc()
	}
}

// RecordRun records a completed or failed simulation run.
func RecordRun(mode, status string, durationSeconds float64) {
	DefaultMetrics.RunsTotal.WithLabelValues(mode, status).Inc()
	DefaultMetrics.RunDuration.WithLabelValues(mode).Observe(durationSeconds)
}

// RecordEngineFault records a per-step signal engine fault.
func RecordEngineFault(engineName string) {
	DefaultMetrics.EngineFaults.WithLabelValues(engineName).Inc()
}

// RecordBatchCombination records one validation combination outcome.
func RecordBatchCombination(status string) {
	DefaultMetrics.BatchRunsTotal.WithLabelValues(status).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
