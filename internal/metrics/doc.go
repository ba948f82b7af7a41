// Package metrics provides Prometheus instrumentation for the media cataloger.
//
// All metrics are prefixed with "media_catalog_" to avoid naming collisions
// with other applications. They are registered with the default Prometheus
// registry via promauto; expose them by mounting promhttp.Handler() in the
// embedding process.
//
// The metrics cover the resolution pipeline (resolutions by outcome, per
// resolver hits, child failures), the shortcut flattener (operations,
// resolved shortcuts, detected cycles), the named-entity cache
// (hits/misses/shared lookups per category), filesystem operations and NFS
// retries, the catalog store, and the background scanner.
//
// To record metrics from other packages, use the exported metric variables:
//
//	metrics.ResolutionsTotal.WithLabelValues("resolved").Inc()
//	metrics.ResolutionDuration.Observe(0.123)
//
// The filesystem package does not import this package directly; it reports
// through the fsys.Observer interface, implemented here by
// NewFilesystemObserver, to keep the dependency one-way.
//
// InitializeMetrics pre-populates known label combinations so that every
// series is present from the first scrape.
package metrics
