package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"media-catalog/internal/fsys"
	"media-catalog/internal/items"
	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
	"media-catalog/internal/resolve"
	"media-catalog/internal/store"
)

const (
	// Number of rows to persist before committing a batch
	batchSize = 500

	// Minimum items to catalog before reporting ready
	minItemsForReady = 100

	// Delay between batches to allow other operations
	batchDelay = 10 * time.Millisecond

	// Default polling interval for change detection
	defaultPollInterval = time.Minute
)

var errScanStopped = errors.New("scan stopped")

// Scanner drives full library scans: it resolves the media root through
// the pipeline, persists the resolved tree, and watches for changes.
type Scanner struct {
	catalog      *store.Catalog
	pipeline     *resolve.Pipeline
	fs           fsys.Access
	mediaDir     string
	scanInterval time.Duration
	pollInterval time.Duration
	expandRoot   bool

	ctx      context.Context
	cancel   context.CancelFunc
	stopChan chan struct{}

	scanMu              sync.Mutex
	isScanning          bool
	lastScanTime        time.Time
	initialScanComplete bool
	initialScanError    error
	startTime           time.Time

	// Progress tracking
	mediaResolved     atomic.Int64
	containersScanned atomic.Int64
	scanProgress      atomic.Value

	// Callback when a scan completes
	onScanComplete func()

	// Last known state for lightweight change detection
	stateMu            sync.RWMutex
	lastRootModTime    time.Time
	lastTopLevelCount  int
	lastSubdirModTimes map[string]time.Time
}

// ScanProgress tracks the current scan progress
type ScanProgress struct {
	MediaResolved     int64     `json:"mediaResolved"`
	ContainersScanned int64     `json:"containersScanned"`
	IsScanning        bool      `json:"isScanning"`
	StartedAt         time.Time `json:"startedAt,omitempty"`
}

// HealthStatus contains health check information.
type HealthStatus struct {
	Ready             bool          `json:"ready"`
	Scanning          bool          `json:"scanning"`
	StartTime         time.Time     `json:"startTime"`
	Uptime            string        `json:"uptime"`
	LastScanned       time.Time     `json:"lastScanned,omitempty"`
	InitialScanError  string        `json:"initialScanError,omitempty"`
	MediaResolved     int64         `json:"mediaResolved"`
	ContainersScanned int64         `json:"containersScanned"`
	ScanProgress      *ScanProgress `json:"scanProgress,omitempty"`
}

// New creates a Scanner over an opened catalog and a configured pipeline.
func New(catalog *store.Catalog, pipeline *resolve.Pipeline, fs fsys.Access, mediaDir string, scanInterval time.Duration) *Scanner {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scanner{
		catalog:            catalog,
		pipeline:           pipeline,
		fs:                 fs,
		mediaDir:           mediaDir,
		scanInterval:       scanInterval,
		pollInterval:       defaultPollInterval,
		ctx:                ctx,
		cancel:             cancel,
		stopChan:           make(chan struct{}),
		startTime:          time.Now(),
		lastSubdirModTimes: make(map[string]time.Time),
	}
	s.scanProgress.Store(ScanProgress{})
	return s
}

// SetPollInterval sets the interval for polling-based change detection.
func (s *Scanner) SetPollInterval(interval time.Duration) {
	if interval > 0 {
		s.pollInterval = interval
	}
}

// SetExpandRoot controls whether container shortcuts at the library root
// are flattened into it.
func (s *Scanner) SetExpandRoot(enabled bool) {
	s.expandRoot = enabled
}

// SetOnScanComplete sets a callback invoked after each completed scan.
func (s *Scanner) SetOnScanComplete(callback func()) {
	s.onScanComplete = callback
}

// Start begins scanning: an initial scan in the background, plus change
// polling and periodic rescans.
func (s *Scanner) Start() error {
	go func() {
		logging.Info("Starting initial scan in background...")
		if err := s.Scan(); err != nil {
			logging.Error("Initial scan error: %v", err)
			s.scanMu.Lock()
			s.initialScanError = err
			s.scanMu.Unlock()
		}
	}()

	go s.pollForChanges()
	go s.periodicScan()

	return nil
}

// Stop stops the scanner and aborts any scan in progress.
func (s *Scanner) Stop() {
	s.cancel()
	close(s.stopChan)
}

// IsReady returns true once enough of the library is cataloged to serve.
func (s *Scanner) IsReady() bool {
	if s.mediaResolved.Load()+s.containersScanned.Load() >= minItemsForReady {
		return true
	}

	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	return s.initialScanComplete
}

func (s *Scanner) getProgress() ScanProgress {
	if progress, ok := s.scanProgress.Load().(ScanProgress); ok {
		return progress
	}
	return ScanProgress{}
}

// GetProgress returns the current scan progress.
func (s *Scanner) GetProgress() ScanProgress {
	return s.getProgress()
}

// GetHealthStatus returns detailed health information.
func (s *Scanner) GetHealthStatus() HealthStatus {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	progress := s.getProgress()

	status := HealthStatus{
		Ready:             s.initialScanComplete || (s.mediaResolved.Load()+s.containersScanned.Load() >= minItemsForReady),
		Scanning:          s.isScanning,
		StartTime:         s.startTime,
		Uptime:            time.Since(s.startTime).String(),
		LastScanned:       s.lastScanTime,
		MediaResolved:     s.mediaResolved.Load(),
		ContainersScanned: s.containersScanned.Load(),
	}

	if s.isScanning {
		status.ScanProgress = &progress
	}

	if s.initialScanError != nil {
		status.InitialScanError = s.initialScanError.Error()
	}

	return status
}

// Scan performs a full scan of the media directory. Concurrent calls
// collapse: if a scan is already running the call returns immediately.
func (s *Scanner) Scan() error {
	if !s.tryStartScan() {
		logging.Info("Scan already in progress, skipping...")
		return nil
	}
	defer s.finishScan()

	metrics.ScannerIsRunning.Set(1)
	defer metrics.ScannerIsRunning.Set(0)
	metrics.ScannerRunsTotal.Inc()

	startTime := time.Now()
	logging.Info("Starting library scan of %s", s.mediaDir)

	s.resetCounters(startTime)

	scanTime := time.Now()

	root, err := s.pipeline.Resolve(s.ctx, s.mediaDir, resolve.ResolveOptions{
		ExpandRoot: s.expandRoot,
	})
	if err != nil {
		metrics.ScannerErrors.Inc()
		return fmt.Errorf("resolve library root: %w", err)
	}
	if root == nil {
		metrics.ScannerErrors.Inc()
		return fmt.Errorf("library root %s was not resolved", s.mediaDir)
	}

	result, err := s.persistTree(root, startTime)
	if err != nil {
		if errors.Is(err, errScanStopped) {
			logging.Info("Scan stopped before completion")
			return nil
		}
		metrics.ScannerErrors.Inc()
		return err
	}

	// Remove rows for paths this scan did not touch
	if err := s.cleanupMissing(scanTime); err != nil {
		logging.Error("Error cleaning up missing items: %v", err)
		metrics.ScannerErrors.Inc()
	}

	s.finalizeScan(startTime, result)
	s.updateLastKnownState()

	duration := time.Since(startTime).Seconds()
	metrics.ScannerLastRunTimestamp.Set(float64(time.Now().Unix()))
	metrics.ScannerLastRunDuration.Set(duration)
	metrics.ScannerItemsResolved.Add(float64(result.media + result.containers))

	if err := s.catalog.RefreshItemMetrics(s.ctx); err != nil {
		logging.Warn("Failed to refresh item metrics: %v", err)
	}

	return nil
}

// scanResult holds the outcome of persisting one resolved tree.
type scanResult struct {
	media      int64
	containers int64
}

// persistTree writes the resolved tree to the catalog in batches,
// depth-first so parents land before their children.
func (s *Scanner) persistTree(root items.Item, startTime time.Time) (scanResult, error) {
	var (
		result scanResult
		batch  []*store.ItemRow
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.processBatch(batch); err != nil {
			logging.Error("Error persisting batch: %v", err)
		}
		batch = batch[:0]

		s.updateProgress(startTime)
		time.Sleep(batchDelay)
		return nil
	}

	var walk func(it items.Item) error
	walk = func(it items.Item) error {
		select {
		case <-s.stopChan:
			return errScanStopped
		default:
		}

		if it.IsContainer() {
			result.containers++
			s.containersScanned.Add(1)
		} else {
			result.media++
			s.mediaResolved.Add(1)
		}

		batch = append(batch, store.RowFromItem(it))
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
			total := result.media + result.containers
			if total%5000 == 0 {
				logging.Info("Cataloged %d media items, %d containers...", result.media, result.containers)
			}
		}

		if c, ok := it.(items.Container); ok {
			for _, child := range c.Children() {
				if err := walk(child); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := walk(root); err != nil {
		return result, err
	}
	if err := flush(); err != nil {
		return result, err
	}
	return result, nil
}

// processBatch persists a batch of rows in a single transaction.
func (s *Scanner) processBatch(rows []*store.ItemRow) error {
	tx, err := s.catalog.BeginBatch()
	if err != nil {
		return fmt.Errorf("failed to begin batch transaction: %w", err)
	}

	for _, row := range rows {
		if err := s.catalog.UpsertItem(tx, row); err != nil {
			logging.Warn("Error upserting item %s: %v", row.Path, err)
		}
	}

	if err := s.catalog.EndBatch(tx, nil); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	return nil
}

// cleanupMissing removes rows not touched by the scan that began at scanTime.
func (s *Scanner) cleanupMissing(scanTime time.Time) error {
	tx, err := s.catalog.BeginBatch()
	if err != nil {
		return fmt.Errorf("failed to begin cleanup transaction: %w", err)
	}

	deleted, err := s.catalog.DeleteMissing(tx, scanTime)
	if err != nil {
		if endErr := s.catalog.EndBatch(tx, err); endErr != nil {
			logging.Error("failed to end batch after cleanup error: %v", endErr)
		}
		return err
	}

	if err := s.catalog.EndBatch(tx, nil); err != nil {
		return fmt.Errorf("failed to commit cleanup: %w", err)
	}

	if deleted > 0 {
		logging.Info("Removed %d missing items from catalog", deleted)
	}

	return nil
}

// tryStartScan attempts to start a scan, returns false if one is running.
func (s *Scanner) tryStartScan() bool {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	if s.isScanning {
		return false
	}
	s.isScanning = true
	return true
}

// finishScan marks the scan as complete.
func (s *Scanner) finishScan() {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	s.isScanning = false
	s.initialScanComplete = true
}

// resetCounters resets the scan counters.
func (s *Scanner) resetCounters(startTime time.Time) {
	s.mediaResolved.Store(0)
	s.containersScanned.Store(0)
	s.scanProgress.Store(ScanProgress{
		IsScanning: true,
		StartedAt:  startTime,
	})
}

// updateProgress publishes the current scan progress.
func (s *Scanner) updateProgress(startTime time.Time) {
	s.scanProgress.Store(ScanProgress{
		MediaResolved:     s.mediaResolved.Load(),
		ContainersScanned: s.containersScanned.Load(),
		IsScanning:        true,
		StartedAt:         startTime,
	})
}

// finalizeScan records completion and refreshes stored statistics.
func (s *Scanner) finalizeScan(startTime time.Time, result scanResult) {
	duration := time.Since(startTime)

	s.scanMu.Lock()
	s.lastScanTime = time.Now()
	lastScan := s.lastScanTime
	s.scanMu.Unlock()

	s.scanProgress.Store(ScanProgress{
		MediaResolved:     result.media,
		ContainersScanned: result.containers,
		IsScanning:        false,
	})

	s.catalog.UpdateStats(store.CatalogStats{
		TotalItems:   int(result.media + result.containers),
		Containers:   int(result.containers),
		MediaFiles:   int(result.media),
		LastScanTime: lastScan,
		ScanDuration: duration.Seconds(),
	})

	logging.Info("Scan complete: %d media items, %d containers in %v", result.media, result.containers, duration)

	if s.onScanComplete != nil {
		s.onScanComplete()
	}
}

// pollForChanges periodically checks for library changes.
func (s *Scanner) pollForChanges() {
	// Wait for the initial scan to complete
	for !s.IsReady() {
		select {
		case <-time.After(1 * time.Second):
		case <-s.stopChan:
			return
		}
	}

	logging.Info("Starting change detection polling (interval: %v)", s.pollInterval)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			changed, err := s.detectChanges()
			if err != nil {
				logging.Error("Error detecting changes: %v", err)
				continue
			}
			if changed {
				logging.Info("Library changes detected, triggering rescan")
				if err := s.Scan(); err != nil {
					logging.Error("Rescan after change detection failed: %v", err)
				}
			}
		case <-s.stopChan:
			logging.Info("Change detection polling stopped")
			return
		}
	}
}

// detectChanges performs a lightweight check for library changes: the root
// modification time, a top-level entry count, and the modification times of
// top-level containers. It never walks the full tree.
func (s *Scanner) detectChanges() (bool, error) {
	start := time.Now()
	defer func() {
		metrics.ScannerPollDuration.Observe(time.Since(start).Seconds())
		metrics.ScannerPollChecksTotal.Inc()
	}()

	rootEntry, err := s.fs.GetEntry(s.mediaDir)
	if err != nil {
		return false, fmt.Errorf("failed to stat media directory: %w", err)
	}

	s.stateMu.RLock()
	lastRootModTime := s.lastRootModTime
	lastTopLevelCount := s.lastTopLevelCount
	s.stateMu.RUnlock()

	if rootEntry.ModifiedAt.After(lastRootModTime) {
		logging.Debug("Root directory modified: %v > %v", rootEntry.ModifiedAt, lastRootModTime)
		metrics.ScannerPollChangesDetected.Inc()
		return true, nil
	}

	entries, err := s.fs.ListChildren(s.mediaDir)
	if err != nil {
		return false, fmt.Errorf("failed to read media directory: %w", err)
	}

	if len(entries) != lastTopLevelCount {
		logging.Debug("Top-level count changed: %d -> %d", lastTopLevelCount, len(entries))
		metrics.ScannerPollChangesDetected.Inc()
		return true, nil
	}

	if s.checkSubdirectorySample(entries) {
		metrics.ScannerPollChangesDetected.Inc()
		return true, nil
	}

	return false, nil
}

// checkSubdirectorySample compares modification times of top-level
// containers. This catches nested changes without walking the entire tree.
func (s *Scanner) checkSubdirectorySample(entries []fsys.Entry) bool {
	s.stateMu.RLock()
	lastSubdirModTimes := s.lastSubdirModTimes
	s.stateMu.RUnlock()

	for _, entry := range entries {
		if !entry.IsContainer {
			continue
		}

		if lastMod, exists := lastSubdirModTimes[entry.Path]; exists {
			if entry.ModifiedAt.After(lastMod) {
				logging.Debug("Subdirectory %s modified: %v > %v", entry.Path, entry.ModifiedAt, lastMod)
				return true
			}
		} else {
			logging.Debug("New subdirectory detected: %s", entry.Path)
			return true
		}
	}

	return false
}

// updateLastKnownState caches the library state after a scan.
func (s *Scanner) updateLastKnownState() {
	rootEntry, err := s.fs.GetEntry(s.mediaDir)
	if err != nil {
		logging.Warn("Failed to stat media directory for state update: %v", err)
		return
	}

	entries, err := s.fs.ListChildren(s.mediaDir)
	if err != nil {
		logging.Warn("Failed to read media directory for state update: %v", err)
		return
	}

	subdirModTimes := make(map[string]time.Time)
	for _, entry := range entries {
		if entry.IsContainer {
			subdirModTimes[entry.Path] = entry.ModifiedAt
		}
	}

	s.stateMu.Lock()
	s.lastRootModTime = rootEntry.ModifiedAt
	s.lastTopLevelCount = len(entries)
	s.lastSubdirModTimes = subdirModTimes
	s.stateMu.Unlock()

	logging.Debug("Updated last known state: rootMod=%v, topLevel=%d, subdirs=%d",
		rootEntry.ModifiedAt, len(entries), len(subdirModTimes))
}

func (s *Scanner) periodicScan() {
	ticker := time.NewTicker(s.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logging.Debug("Periodic rescan triggered")
			if err := s.Scan(); err != nil {
				logging.Error("periodic rescan failed: %v", err)
			}
		case <-s.stopChan:
			return
		}
	}
}

// IsScanning returns whether a scan is currently in progress.
func (s *Scanner) IsScanning() bool {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	return s.isScanning
}

// LastScanTime returns the time of the last completed scan.
func (s *Scanner) LastScanTime() time.Time {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	return s.lastScanTime
}

// TriggerScan manually triggers a rescan.
func (s *Scanner) TriggerScan() {
	go func() {
		if err := s.Scan(); err != nil {
			logging.Error("manually triggered rescan failed: %v", err)
		}
	}()
}
