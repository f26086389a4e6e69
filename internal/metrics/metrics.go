package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline holds the counting pipeline's collectors.
type Pipeline struct {
	FramesRead       prometheus.Counter
	FramesProcessed  prometheus.Counter
	SamplesEmitted   prometheus.Counter
	ReportFailures   prometheus.Counter
	DetectionErrors  prometheus.Counter
	DetectionLatency prometheus.Histogram
	LastCount        prometheus.Gauge

	registry *prometheus.Registry
}

// NewPipeline creates the pipeline collectors on a private registry.
func NewPipeline() *Pipeline {
	m := &Pipeline{
		registry: prometheus.NewRegistry(),
		FramesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trafficsense_frames_read_total",
			Help: "Total frames read from the video source",
		}),
		FramesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trafficsense_frames_processed_total",
			Help: "Total frames passed to the detector",
		}),
		SamplesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trafficsense_samples_emitted_total",
			Help: "Total count samples emitted to the reporter and log",
		}),
		ReportFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trafficsense_report_failures_total",
			Help: "Total failed pushes to the collector",
		}),
		DetectionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trafficsense_detection_errors_total",
			Help: "Total frames the detector failed on",
		}),
		DetectionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trafficsense_detection_seconds",
			Help:    "Detector inference time per processed frame",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		LastCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trafficsense_last_vehicle_count",
			Help: "Vehicle count of the last processed frame",
		}),
	}

	m.registry.MustRegister(
		m.FramesRead,
		m.FramesProcessed,
		m.SamplesEmitted,
		m.ReportFailures,
		m.DetectionErrors,
		m.DetectionLatency,
		m.LastCount,
	)
	return m
}

// ObserveDetection records one detector call.
func (m *Pipeline) ObserveDetection(d time.Duration) {
	m.DetectionLatency.Observe(d.Seconds())
}

// Handler returns an HTTP handler for Prometheus scraping.
func (m *Pipeline) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Pipeline) Registry() *prometheus.Registry {
	return m.registry
}

// Collector holds the collector/dashboard server's collectors.
type Collector struct {
	Pushes        prometheus.Counter
	InvalidPushes prometheus.Counter
	Pulls         prometheus.Counter
	CurrentCount  prometheus.Gauge
	Viewers       prometheus.Gauge
	Refreshes     *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewCollector creates the server collectors on a private registry.
func NewCollector() *Collector {
	m := &Collector{
		registry: prometheus.NewRegistry(),
		Pushes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trafficsense_collector_pushes_total",
			Help: "Total accepted count pushes",
		}),
		InvalidPushes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trafficsense_collector_invalid_pushes_total",
			Help: "Total rejected count pushes",
		}),
		Pulls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trafficsense_collector_pulls_total",
			Help: "Total current count reads",
		}),
		CurrentCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trafficsense_collector_current_count",
			Help: "Latest vehicle count held by the collector",
		}),
		Viewers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trafficsense_dashboard_viewers",
			Help: "Connected dashboard websocket viewers",
		}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trafficsense_dashboard_refreshes_total",
			Help: "Dashboard refresh cycles by outcome",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(m.Pushes, m.InvalidPushes, m.Pulls, m.CurrentCount, m.Viewers, m.Refreshes)
	return m
}

// Handler returns an HTTP handler for Prometheus scraping.
func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Collector) Registry() *prometheus.Registry {
	return m.registry
}
