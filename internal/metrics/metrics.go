// Package metrics exports the state of the offline store as Prometheus
// metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MKhiriev/go-offline-keeper/models"
)

const namespace = "offline_keeper"

// Metrics holds the collectors on a private registry. It implements both
// service.Observer and workers.UsageObserver.
type Metrics struct {
	registry *prometheus.Registry

	queueDepth    *prometheus.GaugeVec
	syncing       prometheus.Gauge
	online        prometheus.Gauge
	lastSync      prometheus.Gauge
	drains        *prometheus.CounterVec
	entries       *prometheus.CounterVec
	drainDuration prometheus.Histogram
	storageBytes  prometheus.Gauge
	nearLimit     prometheus.Gauge
	deleted       *prometheus.CounterVec
}

// New registers the collectors plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		queueDepth: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_entries",
			Help:      "Queued mutations by status",
		}, []string{"status"}),
		syncing: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "syncing",
			Help:      "1 while a drain is running",
		}),
		online: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "remote_online",
			Help:      "1 when the remote store is believed reachable",
		}),
		lastSync: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_sync_timestamp_seconds",
			Help:      "Unix time of the last completed drain",
		}),
		drains: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drains_total",
			Help:      "Drain attempts by result",
		}, []string{"result"}),
		entries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replayed_entries_total",
			Help:      "Replayed queue entries by outcome",
		}, []string{"outcome"}),
		drainDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "drain_duration_seconds",
			Help:      "Time to drain the queue",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		storageBytes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "storage_usage_bytes",
			Help:      "Size of the local store",
		}),
		nearLimit: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "storage_near_limit",
			Help:      "1 when the local store exceeds its soft cap",
		}),
		deleted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "housekeeping_deleted_total",
			Help:      "Rows removed by housekeeping by kind",
		}, []string{"kind"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveDrain(report models.SyncReport, took time.Duration) {
	if report.Skipped != "" {
		m.drains.WithLabelValues("skipped_" + report.Skipped).Inc()
		return
	}

	m.drains.WithLabelValues("completed").Inc()
	m.entries.WithLabelValues("synced").Add(float64(report.Synced))
	m.entries.WithLabelValues("failed").Add(float64(report.Failed))
	m.entries.WithLabelValues("errored").Add(float64(len(report.Errors)))
	m.drainDuration.Observe(took.Seconds())
}

func (m *Metrics) ObserveStatus(status models.SyncStatus) {
	m.queueDepth.WithLabelValues(string(models.StatusPending)).Set(float64(status.PendingCount))
	m.queueDepth.WithLabelValues(string(models.StatusFailed)).Set(float64(status.FailedCount))
	m.syncing.Set(boolToFloat(status.IsSyncing))
	m.online.Set(boolToFloat(status.Online))
	if status.LastSyncAt != nil {
		m.lastSync.Set(float64(status.LastSyncAt.Unix()))
	}
}

func (m *Metrics) ObserveCleanup(report models.CleanupReport) {
	m.deleted.WithLabelValues("queue_entries").Add(float64(report.DeletedEntries))
	m.deleted.WithLabelValues("sync_metadata").Add(float64(report.DeletedMetadata))
}

func (m *Metrics) ObserveStorage(usage models.StorageUsage) {
	if !usage.Known {
		return
	}
	m.storageBytes.Set(float64(usage.UsageBytes))
	m.nearLimit.Set(boolToFloat(usage.IsNearLimit))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
