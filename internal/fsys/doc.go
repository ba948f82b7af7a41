/*
Package fsys provides the filesystem access layer for the media cataloger.

It defines the Entry value describing one filesystem node and the Access
interface the resolution pipeline consumes, plus an OS-backed implementation
with automatic retry logic for NFS stale file handle errors.

# Shortcuts

Two shortcut forms are recognized: symbolic links, and ".lnk" files whose
first line holds the target path. The latter keeps library fixtures portable
across filesystems that cannot carry symlinks.

# Retry behavior

Stat and ReadDir are wrapped with exponential backoff on ESTALE (errno 116),
the transient failure mode of NFS mounts during server-side changes. Only
stale-handle errors trigger retries; everything else fails immediately.
Defaults: 3 attempts, 50ms initial backoff, 500ms cap.

# Metrics

Operations report durations and retry outcomes through the Observer
interface; the metrics package provides the Prometheus-backed implementation
and installs it via SetObserver at startup. Metric series are labeled by
volume, resolved from path prefixes with a VolumeResolver.
*/
package fsys
