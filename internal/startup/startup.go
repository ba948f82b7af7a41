package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"media-catalog/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration
type Config struct {
	MediaDir     string
	MetadataDir  string
	DatabaseDir  string
	MetricsPort  string
	ScanInterval time.Duration
	PollInterval time.Duration

	ExpandRootShortcuts    bool
	AllowExternalProviders bool
	MetricsEnabled         bool

	// Derived paths
	DatabasePath string

	// Feature flags based on directory availability
	MetadataEnabled bool
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	mediaDir := getEnv("MEDIA_DIR", "/media")
	metadataDir := getEnv("METADATA_DIR", "/metadata")
	databaseDir := getEnv("DATABASE_DIR", "/database")
	metricsPort := getEnv("METRICS_PORT", "9090")
	scanIntervalStr := getEnv("SCAN_INTERVAL", "30m")
	pollIntervalStr := getEnv("POLL_INTERVAL", "1m")
	expandRootShortcuts := getEnvBool("EXPAND_ROOT_SHORTCUTS", true)
	allowExternal := getEnvBool("ALLOW_EXTERNAL_PROVIDERS", false)
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)

	logging.Info("  MEDIA_DIR:                %s", mediaDir)
	logging.Info("  METADATA_DIR:             %s", metadataDir)
	logging.Info("  DATABASE_DIR:             %s", databaseDir)
	logging.Info("  METRICS_PORT:             %s", metricsPort)
	logging.Info("  METRICS_ENABLED:          %v", metricsEnabled)
	logging.Info("  SCAN_INTERVAL:            %s", scanIntervalStr)
	logging.Info("  POLL_INTERVAL:            %s", pollIntervalStr)
	logging.Info("  EXPAND_ROOT_SHORTCUTS:    %v", expandRootShortcuts)
	logging.Info("  ALLOW_EXTERNAL_PROVIDERS: %v", allowExternal)
	logging.Info("  LOG_LEVEL:                %s", logging.GetLevel())

	scanInterval, err := time.ParseDuration(scanIntervalStr)
	if err != nil {
		logging.Warn("  Invalid SCAN_INTERVAL, using default: 30m")
		scanInterval = 30 * time.Minute
	}

	pollInterval, err := time.ParseDuration(pollIntervalStr)
	if err != nil {
		logging.Warn("  Invalid POLL_INTERVAL, using default: 1m")
		pollInterval = time.Minute
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	mediaDir, err = filepath.Abs(mediaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media directory path: %w", err)
	}
	logging.Info("  Media directory (absolute): %s", mediaDir)

	metadataDir, err = filepath.Abs(metadataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve metadata directory path: %w", err)
	}
	logging.Info("  Metadata directory (absolute): %s", metadataDir)

	databaseDir, err = filepath.Abs(databaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	logging.Info("  Database directory (absolute): %s", databaseDir)

	// Check/create media directory (warning only)
	if err := ensureDirectory(mediaDir, "media"); err != nil {
		logging.Warn("  Media directory issue: %v", err)
	}

	config := &Config{
		MediaDir:               mediaDir,
		MetadataDir:            metadataDir,
		DatabaseDir:            databaseDir,
		MetricsPort:            metricsPort,
		ScanInterval:           scanInterval,
		PollInterval:           pollInterval,
		ExpandRootShortcuts:    expandRootShortcuts,
		AllowExternalProviders: allowExternal,
		MetricsEnabled:         metricsEnabled,
		DatabasePath:           filepath.Join(databaseDir, "catalog.db"),
	}

	// The database directory is required
	if err := ensureDirectory(databaseDir, "database"); err != nil {
		return nil, fmt.Errorf("database directory error: %w", err)
	}

	logging.Debug("  Testing database directory write access...")
	if err := testWriteAccess(databaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable (required for catalog): %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	// Metadata directory is optional; named entities disable without it
	config.MetadataEnabled = setupOptionalDir(metadataDir, "metadata")
	if !config.MetadataEnabled {
		config.MetadataDir = ""
	}

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Catalog:         ENABLED (required)")
	logging.Info("    Named entities:  %s", enabledString(config.MetadataEnabled))
	logging.Info("    Metrics:         %s", enabledString(config.MetricsEnabled))

	return config, nil
}

func setupOptionalDir(path, name string) bool {
	logging.Debug("  Setting up %s directory: %s", name, path)

	if err := os.MkdirAll(path, 0o755); err != nil {
		logging.Warn("    Failed to create %s directory: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	testFile := filepath.Join(path, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		logging.Warn("    %s directory is not writable: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("    failed to remove test file %s: %v", testFile, err)
		// Still return true since write succeeded
	}

	logging.Debug("    [OK] %s directory ready", name)
	return true
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogCatalogInit logs catalog database initialization
func LogCatalogInit(duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("CATALOG INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Catalog initialized in %v", duration)
}

// LogScannerInit logs scanner initialization
func LogScannerInit(scanInterval, pollInterval time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SCANNER INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Scan interval: %v", scanInterval)
	logging.Info("  Poll interval: %v", pollInterval)
	logging.Info("  Starting scanner...")
}

// LogScannerStarted logs successful scanner start
func LogScannerStarted() {
	logging.Info("  [OK] Scanner started")
}

// LogStarted logs successful startup with endpoint information
func LogStarted(metricsPort string, metricsEnabled bool, startupDuration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("CATALOGER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", startupDuration)
	if metricsEnabled {
		logging.Info("  Metrics:         http://localhost:%s/metrics", metricsPort)
	} else {
		logging.Info("  Metrics:         DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
   __  ___       ___       _____      __       __
  /  |/  /__ ___/ (_)__ _ / ___/__ _ / /____ _/ /__  ___ _
 / /|_/ / -_) _  / / _ '// /__ / _ '/ __/ _ '/ / _ \/ _ '/
/_/  /_/\__/\_,_/_/\_,_/ \___/ \_,_/\__/\_,_/_/\___/\_, /
                                                   /___/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Don't return error since write access was confirmed
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
