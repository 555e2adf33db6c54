package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Model call metrics
	Qualifications *prometheus.CounterVec
	Drafts         *prometheus.CounterVec
	ModelLatency   prometheus.Histogram

	// Background task metrics
	TasksStarted prometheus.Counter
	TaskFailures prometheus.Counter
}

// InitMetrics initializes the Prometheus metrics
func InitMetrics() *Metrics {
	metrics := &Metrics{
		// Qualification outcomes by envelope status
		Qualifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "leadflow_qualifications_total",
			Help: "Total number of lead qualification calls by status",
		}, []string{"status"}), // "success" or "failure"

		// Draft outcomes by envelope status
		Drafts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "leadflow_message_drafts_total",
			Help: "Total number of outreach draft calls by status",
		}, []string{"status"}),

		// Model call latency histogram
		ModelLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "leadflow_model_call_duration_seconds",
			Help:    "Model call latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}, // up to 2 minutes for LLM responses
		}),

		// Background task counters
		TasksStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leadflow_background_tasks_total",
			Help: "Total number of background tasks started",
		}),
		TaskFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leadflow_background_task_failures_total",
			Help: "Total number of background tasks that ended in failure or panic",
		}),
	}

	return metrics
}

// RecordQualification records a qualification call outcome
func (m *Metrics) RecordQualification(status string) {
	m.Qualifications.WithLabelValues(status).Inc()
}

// RecordDraft records a draft call outcome
func (m *Metrics) RecordDraft(status string) {
	m.Drafts.WithLabelValues(status).Inc()
}

// RecordModelLatency records a successful model call's latency
func (m *Metrics) RecordModelLatency(seconds float64) {
	m.ModelLatency.Observe(seconds)
}

// RecordTaskStarted records a scheduled background task
func (m *Metrics) RecordTaskStarted() {
	m.TasksStarted.Inc()
}

// RecordTaskFailure records a background task failure
func (m *Metrics) RecordTaskFailure() {
	m.TaskFailures.Inc()
}
