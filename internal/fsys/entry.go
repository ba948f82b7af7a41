package fsys

import "time"

// Entry describes one filesystem node as seen by the resolution pipeline.
// Entries are immutable values; the pipeline never writes back to them.
type Entry struct {
	Path        string    `json:"path"`
	IsContainer bool      `json:"isContainer"`
	CreatedAt   time.Time `json:"createdAt"`
	ModifiedAt  time.Time `json:"modifiedAt"`
}

// Access is the filesystem collaborator consumed by the resolution core.
// The OS-backed implementation lives in this package; tests substitute
// in-memory fakes.
type Access interface {
	// GetEntry returns the entry for a single path.
	GetEntry(path string) (Entry, error)

	// ListChildren returns the direct children of a container path in
	// name order.
	ListChildren(path string) ([]Entry, error)

	// IsShortcut reports whether the path is a shortcut (symlink or .lnk).
	IsShortcut(path string) bool

	// ResolveShortcutTarget returns the path a shortcut points at.
	ResolveShortcutTarget(path string) (string, error)

	// SanitizeName rewrites a raw name into a filesystem-safe path segment.
	SanitizeName(name string) string

	// EnsureDirectory creates the directory if missing and returns its entry.
	EnsureDirectory(path string) (Entry, error)
}
