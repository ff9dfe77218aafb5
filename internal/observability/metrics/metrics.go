// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clinical_scribe"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Pipeline metrics
	RunsTotal     prometheus.Counter
	RunsActive    prometheus.Gauge
	RunsCompleted prometheus.Counter
	RunsFailed    *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	StageDuration *prometheus.HistogramVec

	// Transcription metrics
	TranscribeJobsStarted prometheus.Counter
	TranscribePolls       prometheus.Counter
	TranscribeFailures    prometheus.Counter

	// Entity extraction metrics
	ComprehendCalls  *prometheus.CounterVec
	ComprehendErrors *prometheus.CounterVec

	// LLM invocation metrics
	BedrockInvocations *prometheus.CounterVec
	BedrockErrors      *prometheus.CounterVec
	BedrockLatency     *prometheus.HistogramVec
	NormalizeOutcomes  *prometheus.CounterVec

	// Artefact metrics
	ArtefactsWritten *prometheus.CounterVec

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RunsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of pipeline runs started",
		}),
		RunsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runs_active",
			Help:      "Number of currently active pipeline runs",
		}),
		RunsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_completed_total",
			Help:      "Total number of pipeline runs completed successfully",
		}),
		RunsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_failed_total",
			Help:      "Total number of failed pipeline runs",
		}, []string{"stage"}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "End-to-end pipeline run duration in seconds",
			Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 1200},
		}),
		StageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages in seconds",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"stage"}),

		TranscribeJobsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcribe_jobs_started_total",
			Help:      "Total number of medical transcription jobs started",
		}),
		TranscribePolls: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcribe_polls_total",
			Help:      "Total number of transcription job status polls",
		}),
		TranscribeFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcribe_failures_total",
			Help:      "Total number of transcription jobs that reached FAILED",
		}),

		ComprehendCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comprehend_calls_total",
			Help:      "Total number of Comprehend Medical calls",
		}, []string{"operation"}),
		ComprehendErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comprehend_errors_total",
			Help:      "Total number of Comprehend Medical call errors",
		}, []string{"operation"}),

		BedrockInvocations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bedrock_invocations_total",
			Help:      "Total number of Bedrock model invocations",
		}, []string{"model", "artefact"}),
		BedrockErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bedrock_errors_total",
			Help:      "Total number of Bedrock invocation errors",
		}, []string{"model", "artefact"}),
		BedrockLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bedrock_latency_seconds",
			Help:      "Bedrock invocation latency in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"model"}),
		NormalizeOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalize_outcomes_total",
			Help:      "Response normalization outcomes by result kind",
		}, []string{"outcome"}),

		ArtefactsWritten: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artefacts_written_total",
			Help:      "Total number of artefact files written",
		}, []string{"kind"}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordRunStart records a new pipeline run starting.
func (m *Metrics) RecordRunStart() {
	m.RunsTotal.Inc()
	m.RunsActive.Inc()
}

// RecordRunEnd records a pipeline run ending.
func (m *Metrics) RecordRunEnd(failedStage string, durationSeconds float64) {
	m.RunsActive.Dec()
	m.RunDuration.Observe(durationSeconds)
	if failedStage == "" {
		m.RunsCompleted.Inc()
	} else {
		m.RunsFailed.WithLabelValues(failedStage).Inc()
	}
}

// RecordStage records the duration of a completed pipeline stage.
func (m *Metrics) RecordStage(stage string, durationSeconds float64) {
	m.StageDuration.WithLabelValues(stage).Observe(durationSeconds)
}

// RecordComprehendCall records a Comprehend Medical call.
func (m *Metrics) RecordComprehendCall(operation string, err error) {
	m.ComprehendCalls.WithLabelValues(operation).Inc()
	if err != nil {
		m.ComprehendErrors.WithLabelValues(operation).Inc()
	}
}

// RecordBedrockInvocation records a Bedrock invocation attempt. Latency is
// observed separately by the invoker.
func (m *Metrics) RecordBedrockInvocation(model, artefact string, err error) {
	m.BedrockInvocations.WithLabelValues(model, artefact).Inc()
	if err != nil {
		m.BedrockErrors.WithLabelValues(model, artefact).Inc()
	}
}

// RecordNormalizeOutcome records the outcome kind of a response normalization:
// "object", "text", "extraction_failure" or "malformed".
func (m *Metrics) RecordNormalizeOutcome(outcome string) {
	m.NormalizeOutcomes.WithLabelValues(outcome).Inc()
}

// RecordArtefactWritten records an artefact file write.
func (m *Metrics) RecordArtefactWritten(kind string) {
	m.ArtefactsWritten.WithLabelValues(kind).Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}
