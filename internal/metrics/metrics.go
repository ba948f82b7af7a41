package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution pipeline metrics
var (
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_resolutions_total",
			Help: "Total number of path resolutions by outcome",
		},
		[]string{"outcome"}, // "resolved", "ignored", "cancelled", "error"
	)

	ResolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_catalog_resolution_duration_seconds",
			Help:    "Duration of a single path resolution including children",
			Buckets: prometheus.DefBuckets,
		},
	)

	ResolutionChildFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_catalog_resolution_child_failures_total",
			Help: "Total number of child resolutions excluded from a parent due to failure",
		},
	)

	ResolutionCyclesTruncated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_catalog_resolution_cycles_truncated_total",
			Help: "Total number of child entries dropped for aliasing an ancestor container",
		},
	)

	ResolverHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_resolver_hits_total",
			Help: "Total number of paths claimed per resolver",
		},
		[]string{"resolver"},
	)

	EnrichmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_enrichments_total",
			Help: "Total number of item enrichments by status",
		},
		[]string{"status"}, // "success", "error"
	)
)

// Shortcut flattener metrics
var (
	FlattenOperationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_catalog_flatten_operations_total",
			Help: "Total number of sibling-set flatten operations",
		},
	)

	FlattenShortcutsResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_catalog_flatten_shortcuts_resolved_total",
			Help: "Total number of shortcut entries resolved to their targets",
		},
	)

	FlattenCyclesDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_catalog_flatten_cycles_detected_total",
			Help: "Total number of shortcut cycles detected and truncated",
		},
	)
)

// Named-entity cache metrics
var (
	NamedCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_named_cache_hits_total",
			Help: "Number of named-entity lookups served from the cache",
		},
		[]string{"category"},
	)

	NamedCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_named_cache_misses_total",
			Help: "Number of named-entity lookups that started a creation",
		},
		[]string{"category"},
	)

	NamedCacheShared = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_named_cache_shared_total",
			Help: "Number of named-entity lookups deduplicated onto an in-flight creation",
		},
		[]string{"category"},
	)

	NamedCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_named_cache_entries",
			Help: "Number of named entities currently cached",
		},
	)
)

// Filesystem metrics, recorded via the fsys.Observer bridge
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_filesystem_operation_duration_seconds",
			Help:    "Duration of filesystem operations by volume and operation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_filesystem_operation_errors_total",
			Help: "Total number of filesystem operation errors by volume and operation",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_filesystem_retry_attempts_total",
			Help: "Total number of filesystem operation retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retry",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_filesystem_stale_errors_total",
			Help: "Total number of NFS stale file handle errors encountered",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_filesystem_retry_duration_seconds",
			Help:    "Total duration of filesystem operations including retries",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		},
		[]string{"operation", "volume"},
	)
)

// Store metrics
var (
	StoreQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_store_queries_total",
			Help: "Total number of catalog store queries",
		},
		[]string{"operation", "status"},
	)

	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_store_query_duration_seconds",
			Help:    "Catalog store query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	StoreItemsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_catalog_store_items",
			Help: "Number of catalog items currently stored, by kind",
		},
		[]string{"kind"},
	)
)

// Scanner metrics
var (
	ScannerRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_catalog_scanner_runs_total",
			Help: "Total number of scanner runs",
		},
	)

	ScannerErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_catalog_scanner_errors_total",
			Help: "Total number of scanner errors",
		},
	)

	ScannerIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_scanner_is_running",
			Help: "Whether a scan is currently in progress (1) or not (0)",
		},
	)

	ScannerLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_scanner_last_run_timestamp_seconds",
			Help: "Unix timestamp of the last completed scan",
		},
	)

	ScannerLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_scanner_last_run_duration_seconds",
			Help: "Duration of the last completed scan",
		},
	)

	ScannerItemsResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_catalog_scanner_items_resolved_total",
			Help: "Total number of items resolved across all scans",
		},
	)

	ScannerPollChecksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_catalog_scanner_poll_checks_total",
			Help: "Total number of change-detection polling checks",
		},
	)

	ScannerPollChangesDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_catalog_scanner_poll_changes_detected_total",
			Help: "Total number of times polling detected library changes",
		},
	)

	ScannerPollDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_catalog_scanner_poll_duration_seconds",
			Help:    "Duration of change-detection polling checks",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)
)
