package fsys

// Observer records filesystem operation metrics. Implementations are provided
// by the metrics package to keep the dependency between fsys and metrics
// one-way.
type Observer interface {
	// ObserveOperation records duration and error status for a filesystem
	// operation. volume is the resolved mount point label (e.g., "media",
	// "metadata", "database"); operation is "stat", "readdir", "readlink",
	// or "mkdir".
	ObserveOperation(volume, operation string, durationSeconds float64, err error)

	// ObserveRetry* record retry-specific metrics for NFS resilience.
	// retryOp is the retried operation: "stat" or "readdir".
	ObserveRetryAttempt(retryOp, volume string)
	ObserveRetrySuccess(retryOp, volume string)
	ObserveRetryFailure(retryOp, volume string)
	ObserveRetryDuration(retryOp, volume string, durationSeconds float64)
	ObserveStaleError(retryOp, volume string)
}

// defaultObserver is the package-level observer set at startup.
// If nil, metric recording is silently skipped (safe for tests).
var defaultObserver Observer

// SetObserver sets the package-level metrics observer.
// Call this once at startup after creating the observer implementation.
func SetObserver(o Observer) {
	defaultObserver = o
}

// nopObserver discards every observation.
type nopObserver struct{}

func (nopObserver) ObserveOperation(string, string, float64, error) {}
func (nopObserver) ObserveRetryAttempt(string, string)              {}
func (nopObserver) ObserveRetrySuccess(string, string)              {}
func (nopObserver) ObserveRetryFailure(string, string)              {}
func (nopObserver) ObserveRetryDuration(string, string, float64)    {}
func (nopObserver) ObserveStaleError(string, string)                {}

// observe returns the package-level observer, never nil.
func observe() Observer {
	if defaultObserver == nil {
		return nopObserver{}
	}
	return defaultObserver
}
