package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

const (
	opsSync = "ops_sync"

	// Replication metrics
	recordsSyncedTotal  = "records_synced_total"
	syncErrorsTotal     = "sync_errors_total"
	replicationDuration = "replication_duration_seconds"
	watermarkAge        = "watermark_age_seconds"

	// Reconciliation metrics
	orphansDeletedTotal = "orphans_deleted_total"
	tasksExpandedTotal  = "tasks_expanded_total"

	// Labels
	streamLabel = "stream"
	resultLabel = "result"
	entityLabel = "entity"
)

/**
* Metrics definition
**/
var recordsSyncedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: opsSync,
		Name:      recordsSyncedTotal,
		Help:      "number of records replicated into the relational store, by stream and upsert result",
	},
	[]string{streamLabel, resultLabel},
)

var syncErrorsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: opsSync,
		Name:      syncErrorsTotal,
		Help:      "number of per-record replication failures, by stream",
	},
	[]string{streamLabel},
)

var replicationDurationMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Subsystem: opsSync,
		Name:      replicationDuration,
		Help:      "duration of a single replication job run",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60},
	},
	[]string{streamLabel},
)

var watermarkAgeMetric = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Subsystem: opsSync,
		Name:      watermarkAge,
		Help:      "seconds since the stream's watermark timestamp",
	},
	[]string{streamLabel},
)

var orphansDeletedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: opsSync,
		Name:      orphansDeletedTotal,
		Help:      "number of orphaned relational rows deleted, by entity",
	},
	[]string{entityLabel},
)

var tasksExpandedTotalMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: opsSync,
		Name:      tasksExpandedTotal,
		Help:      "number of tasks materialized by hierarchy expansion",
	},
)

func IncreaseRecordsSyncedMetric(stream, result string, count int) {
	recordsSyncedTotalMetric.With(prometheus.Labels{streamLabel: stream, resultLabel: result}).Add(float64(count))
}

func IncreaseSyncErrorsMetric(stream string, count int) {
	syncErrorsTotalMetric.With(prometheus.Labels{streamLabel: stream}).Add(float64(count))
}

func ObserveReplicationDurationMetric(stream string, d time.Duration) {
	replicationDurationMetric.With(prometheus.Labels{streamLabel: stream}).Observe(d.Seconds())
}

func UpdateWatermarkAgeMetric(stream string, lastSyncedAt time.Time) {
	watermarkAgeMetric.With(prometheus.Labels{streamLabel: stream}).Set(time.Since(lastSyncedAt).Seconds())
}

func IncreaseOrphansDeletedMetric(entity string, count int) {
	orphansDeletedTotalMetric.With(prometheus.Labels{entityLabel: entity}).Add(float64(count))
}

func IncreaseTasksExpandedMetric(count int) {
	tasksExpandedTotalMetric.Add(float64(count))
}

type PrometheusMetricsHandler struct{}

func NewPrometheusMetricsHandler() *PrometheusMetricsHandler {
	prometheus.MustRegister(
		recordsSyncedTotalMetric,
		syncErrorsTotalMetric,
		replicationDurationMetric,
		watermarkAgeMetric,
		orphansDeletedTotalMetric,
		tasksExpandedTotalMetric,
	)
	return &PrometheusMetricsHandler{}
}

func (h *PrometheusMetricsHandler) Handler() http.Handler {
	return promhttp.Handler()
}
