package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the voice note tool
type Metrics struct {
	// Capture metrics
	RecordingsStarted   prometheus.Counter
	RecordingsCompleted prometheus.Counter
	AutoStops           prometheus.Counter
	RecordingDuration   prometheus.Histogram

	// Audio pipeline metrics
	NormalizeSuccesses prometheus.Counter
	NormalizeFallbacks prometheus.Counter
	PayloadSize        prometheus.Histogram

	// Analysis metrics
	AnalysisRequests  prometheus.Counter
	AnalysisSuccesses prometheus.Counter
	AnalysisFailures  prometheus.Counter
	AnalysisDuration  prometheus.Histogram

	// Save metrics
	SaveRequests  prometheus.Counter
	SaveSuccesses prometheus.Counter
	SaveFailures  prometheus.Counter
	SaveFanout    prometheus.Histogram

	// Reconciliation metrics
	ReconcilePasses  prometheus.Counter
	RecordsCommon    prometheus.Counter
	RecordsSpecific  prometheus.Counter
	RecordsSkipped   prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics on the given
// registerer. Pass prometheus.DefaultRegisterer in production; tests use
// a private registry to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Capture metrics
		RecordingsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicenote_recordings_started_total",
			Help: "Total number of recording sessions started",
		}),
		RecordingsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicenote_recordings_completed_total",
			Help: "Total number of recording sessions completed",
		}),
		AutoStops: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicenote_recordings_auto_stopped_total",
			Help: "Total number of recordings stopped by the duration limit",
		}),
		RecordingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voicenote_recording_duration_seconds",
			Help:    "Duration of completed recordings in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8), // 1s to ~2 minutes
		}),

		// Audio pipeline metrics
		NormalizeSuccesses: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicenote_normalize_successes_total",
			Help: "Total number of payloads normalized to canonical WAV",
		}),
		NormalizeFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicenote_normalize_fallbacks_total",
			Help: "Total number of payloads passed through undecoded",
		}),
		PayloadSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voicenote_payload_size_bytes",
			Help:    "Size of encoded audio payloads in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 12), // 1KB to ~4MB
		}),

		// Analysis metrics
		AnalysisRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicenote_analysis_requests_total",
			Help: "Total number of analysis requests sent",
		}),
		AnalysisSuccesses: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicenote_analysis_successes_total",
			Help: "Total number of analysis requests that produced a summary",
		}),
		AnalysisFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicenote_analysis_failures_total",
			Help: "Total number of failed analysis requests",
		}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voicenote_analysis_duration_seconds",
			Help:    "Time spent waiting on the analysis endpoint",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~1.7 minutes
		}),

		// Save metrics
		SaveRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicenote_save_requests_total",
			Help: "Total number of per-job save requests issued",
		}),
		SaveSuccesses: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicenote_save_successes_total",
			Help: "Total number of per-job save requests that succeeded",
		}),
		SaveFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicenote_save_failures_total",
			Help: "Total number of per-job save requests that failed",
		}),
		SaveFanout: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voicenote_save_fanout_jobs",
			Help:    "Number of jobs targeted per save operation",
			Buckets: prometheus.LinearBuckets(1, 1, 10), // 1 to 10 jobs
		}),

		// Reconciliation metrics
		ReconcilePasses: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicenote_reconcile_passes_total",
			Help: "Total number of reconciliation passes executed",
		}),
		RecordsCommon: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicenote_reconcile_common_records_total",
			Help: "Total records classified as common across jobs",
		}),
		RecordsSpecific: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicenote_reconcile_specific_records_total",
			Help: "Total records classified as job-specific",
		}),
		RecordsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicenote_reconcile_skipped_records_total",
			Help: "Total records skipped for missing correlation identifiers",
		}),
	}
}
