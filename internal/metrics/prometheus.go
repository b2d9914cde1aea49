package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage label values for the pipeline metrics.
const (
	StageTranscription = "transcription"
	StageReply         = "reply"
	StageSynthesis     = "synthesis"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	UploadsReceived prometheus.Counter
	UploadsRejected prometheus.Counter

	CaptureDurationSeconds prometheus.Histogram
	CaptureSizeBytes       prometheus.Histogram

	StageDurationSeconds *prometheus.HistogramVec
	StageEmptyResults    *prometheus.CounterVec

	ResponseAudioBytes prometheus.Histogram

	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDurationSec *prometheus.HistogramVec
}

// NewMetrics creates collectors registered on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates collectors registered on reg. Tests pass a fresh
// registry to avoid duplicate registration.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		UploadsReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicerelay_uploads_received_total",
			Help: "Total number of audio uploads received",
		}),
		UploadsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicerelay_uploads_rejected_total",
			Help: "Total number of audio uploads rejected as empty",
		}),
		CaptureDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voicerelay_capture_duration_seconds",
			Help:    "Duration of uploaded audio captures in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		CaptureSizeBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voicerelay_capture_size_bytes",
			Help:    "Size of uploaded audio captures in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}),
		StageDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voicerelay_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"stage"}),
		StageEmptyResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voicerelay_stage_empty_results_total",
			Help: "Total number of pipeline stages that produced an empty result",
		}, []string{"stage"}),
		ResponseAudioBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voicerelay_response_audio_bytes",
			Help:    "Size of synthesized response audio in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voicerelay_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"path", "method", "status"}),
		HTTPRequestDurationSec: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voicerelay_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
	}
}

// RecordUpload records a received capture with its size and duration.
func (m *Metrics) RecordUpload(sizeBytes int, durationSec float64) {
	m.UploadsReceived.Inc()
	m.CaptureSizeBytes.Observe(float64(sizeBytes))
	m.CaptureDurationSeconds.Observe(durationSec)
}

// RecordRejected records an upload rejected as empty.
func (m *Metrics) RecordRejected() {
	m.UploadsRejected.Inc()
}

// RecordStage records the elapsed time of a pipeline stage and whether it
// produced an empty result.
func (m *Metrics) RecordStage(stage string, elapsed time.Duration, empty bool) {
	m.StageDurationSeconds.WithLabelValues(stage).Observe(elapsed.Seconds())
	if empty {
		m.StageEmptyResults.WithLabelValues(stage).Inc()
	}
}

// RecordResponseAudio records the size of synthesized response audio.
func (m *Metrics) RecordResponseAudio(sizeBytes int) {
	m.ResponseAudioBytes.Observe(float64(sizeBytes))
}

// RecordHTTPRequest records a completed HTTP request.
func (m *Metrics) RecordHTTPRequest(path, method, status string, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(path, method, status).Inc()
	m.HTTPRequestDurationSec.WithLabelValues(path, method).Observe(elapsed.Seconds())
}
