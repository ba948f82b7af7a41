// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// The following environment variables are supported:
//
//   - MEDIA_DIR: Path to the media library root (default: /media)
//   - METADATA_DIR: Path to the named-entity metadata directory (default: /metadata)
//   - DATABASE_DIR: Path to the catalog database directory (default: /database)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable the metrics server (default: true)
//   - SCAN_INTERVAL: Full rescan interval as a Go duration (default: 30m)
//   - POLL_INTERVAL: Filesystem change detection interval as a Go duration (default: 1m)
//   - EXPAND_ROOT_SHORTCUTS: Flatten container shortcuts at the library root (default: true)
//   - ALLOW_EXTERNAL_PROVIDERS: Let enrichment providers reach external services (default: false)
//   - SCAN_WORKERS: Override the worker count for child resolution
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//
// # Directory Setup
//
//   - Database directory: Required, must be writable
//   - Metadata directory: Optional, enables named entities if writable
//   - Media directory: Checked but not created (should be mounted)
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
package startup
