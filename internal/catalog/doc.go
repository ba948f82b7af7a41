// Package catalog provides background library scanning.
//
// The scanner resolves the configured media directory through the
// resolution pipeline and persists the typed item tree to the catalog
// database. It operates in multiple modes:
//   - Initial scan: full resolution on application startup
//   - Periodic scan: configurable interval-based rescanning
//   - Change polling: lightweight root and top-level checks between scans
//   - Manual trigger: on-demand rescanning
//
// Items whose paths were not touched by a scan are removed from the
// catalog when the scan completes. Hidden files and directories
// (prefixed with '.') never enter the catalog.
package catalog
