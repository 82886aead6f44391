package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videosplus_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "videosplus_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	storeOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videosplus_store_operations_total",
		Help: "Document fetches and stores by backend and result",
	}, []string{"backend", "operation", "result"})

	storeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "videosplus_store_operation_duration_seconds",
		Help:    "Duration of document fetches and stores",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "operation"})

	backupEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videosplus_backup_events_total",
		Help: "Backup copies created, pruned or failed in the file backend",
	}, []string{"event"})

	versionConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "videosplus_version_conflicts_total",
		Help: "Writes rejected because the document changed since it was read",
	})

	documentRecords = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "videosplus_document_records",
		Help: "Records per collection in the last document written",
	}, []string{"collection"})
)

// Backup event labels.
const (
	BackupCreated      = "created"
	BackupPruned       = "pruned"
	BackupFailed       = "failed"
	BackupPruneFailed  = "prune_failed"
	IntegrityViolation = "integrity_failed"
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveStoreOperation records one backend round trip.
func ObserveStoreOperation(backend, operation string, err error, duration time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	storeOperations.WithLabelValues(backend, operation, result).Inc()
	storeDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// RecordBackupEvent counts a backup lifecycle event.
func RecordBackupEvent(event string) {
	backupEvents.WithLabelValues(event).Inc()
}

// RecordVersionConflict counts a rejected conditional write.
func RecordVersionConflict() {
	versionConflicts.Inc()
}

// SetDocumentRecords publishes collection sizes after a successful write.
func SetDocumentRecords(videos, users, sessions int) {
	documentRecords.WithLabelValues("videos").Set(float64(videos))
	documentRecords.WithLabelValues("users").Set(float64(users))
	documentRecords.WithLabelValues("sessions").Set(float64(sessions))
}
