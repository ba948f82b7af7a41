package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- Resolution outcomes ---
	for _, outcome := range []string{"resolved", "ignored", "cancelled", "error"} {
		ResolutionsTotal.WithLabelValues(outcome)
	}

	for _, status := range []string{"success", "error"} {
		EnrichmentsTotal.WithLabelValues(status)
	}

	// --- Named-entity categories ---
	for _, category := range []string{"person", "studio", "genre", "year"} {
		NamedCacheHits.WithLabelValues(category)
		NamedCacheMisses.WithLabelValues(category)
		NamedCacheShared.WithLabelValues(category)
	}

	// --- Filesystem operation metrics (per volume × operation) ---
	volumes := []string{"media", "metadata", "database", "unknown"}
	fsOps := []string{"stat", "readdir", "readlink", "mkdir"}

	for _, vol := range volumes {
		for _, op := range fsOps {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
		}
	}

	// --- Filesystem retry metrics (per retry-operation × volume) ---
	retryOps := []string{"stat", "readdir"}

	for _, op := range retryOps {
		for _, vol := range volumes {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}

	// --- Store query operations ---
	for _, op := range []string{"initialize_schema", "upsert_item", "delete_missing",
		"get_by_path", "list_children", "count_items", "begin_transaction", "commit", "rollback"} {
		StoreQueryTotal.WithLabelValues(op, "success")
		StoreQueryTotal.WithLabelValues(op, "error")
		StoreQueryDuration.WithLabelValues(op)
	}

	// --- Catalog item kinds ---
	for _, kind := range []string{"folder", "video", "image", "playlist",
		"person", "studio", "genre", "year"} {
		StoreItemsTotal.WithLabelValues(kind)
	}
}
