package fsys

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"media-catalog/internal/logging"
)

// shortcutExt marks plain-file shortcuts: the file's first line holds the
// target path. Symbolic links are recognized as shortcuts as well.
const shortcutExt = ".lnk"

// OS implements Access against the local filesystem.
type OS struct {
	retry RetryConfig
}

// NewOS creates an OS-backed Access with default NFS retry behavior.
func NewOS() *OS {
	return &OS{retry: DefaultRetryConfig()}
}

// NewOSWithRetry creates an OS-backed Access with custom retry behavior.
func NewOSWithRetry(cfg RetryConfig) *OS {
	return &OS{retry: cfg}
}

// GetEntry returns the entry for a single path. Symlinks are followed, so
// the returned entry describes the target.
func (o *OS) GetEntry(path string) (Entry, error) {
	start := time.Now()
	info, err := StatWithRetry(path, o.retry)
	observe().ObserveOperation(o.retry.resolveVolume(path), "stat", time.Since(start).Seconds(), err)
	if err != nil {
		return Entry{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return entryFromInfo(path, info), nil
}

// ListChildren returns the direct children of a directory in name order.
// Hidden entries (dot-prefixed) are skipped. Children whose metadata cannot
// be read are logged and skipped rather than failing the whole listing.
func (o *OS) ListChildren(path string) ([]Entry, error) {
	start := time.Now()
	dirents, err := ReadDirWithRetry(path, o.retry)
	observe().ObserveOperation(o.retry.resolveVolume(path), "readdir", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", path, err)
	}

	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		if strings.HasPrefix(d.Name(), ".") {
			continue
		}
		childPath := filepath.Join(path, d.Name())
		info, err := d.Info()
		if err != nil {
			logging.Warn("Error getting info for %s: %v", childPath, err)
			continue
		}
		entries = append(entries, entryFromInfo(childPath, info))
	}
	return entries, nil
}

// IsShortcut reports whether the path is a symlink or a .lnk file.
func (o *OS) IsShortcut(path string) bool {
	if strings.EqualFold(filepath.Ext(path), shortcutExt) {
		return true
	}
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}

// ResolveShortcutTarget returns the path a shortcut points at. Relative
// targets resolve against the shortcut's directory.
func (o *OS) ResolveShortcutTarget(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), shortcutExt) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read shortcut %s: %w", path, err)
		}
		target, _, _ := strings.Cut(string(data), "\n")
		target = strings.TrimSpace(target)
		if target == "" {
			return "", fmt.Errorf("shortcut %s has no target", path)
		}
		return o.absTarget(path, target), nil
	}

	start := time.Now()
	target, err := os.Readlink(path)
	observe().ObserveOperation(o.retry.resolveVolume(path), "readlink", time.Since(start).Seconds(), err)
	if err != nil {
		return "", fmt.Errorf("readlink %s: %w", path, err)
	}
	return o.absTarget(path, target), nil
}

func (o *OS) absTarget(shortcut, target string) string {
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Clean(filepath.Join(filepath.Dir(shortcut), target))
}

// SanitizeName rewrites a raw name into a filesystem-safe path segment.
// Characters illegal in path segments are replaced with spaces, runs of
// whitespace collapse to one space, and trailing dots and spaces are
// trimmed.
func (o *OS) SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r < 0x20:
			b.WriteByte(' ')
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	sanitized := strings.Join(strings.Fields(b.String()), " ")
	return strings.TrimRight(sanitized, ". ")
}

// EnsureDirectory creates the directory if missing and returns its entry.
func (o *OS) EnsureDirectory(path string) (Entry, error) {
	start := time.Now()
	err := os.MkdirAll(path, 0o755)
	observe().ObserveOperation(o.retry.resolveVolume(path), "mkdir", time.Since(start).Seconds(), err)
	if err != nil {
		return Entry{}, fmt.Errorf("create directory %s: %w", path, err)
	}
	return o.GetEntry(path)
}

// entryFromInfo maps an os.FileInfo onto an Entry. Creation time is not
// portably available, so ModTime stands in for both timestamps.
func entryFromInfo(path string, info os.FileInfo) Entry {
	return Entry{
		Path:        path,
		IsContainer: info.IsDir(),
		CreatedAt:   info.ModTime(),
		ModifiedAt:  info.ModTime(),
	}
}
