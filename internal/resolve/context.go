package resolve

import (
	"media-catalog/internal/fsys"
	"media-catalog/internal/items"
)

// Context carries the state for resolving a single path. A fresh Context is
// built per Resolve call, mutated only by the enumeration step and the
// cancellation hooks, and discarded when resolution completes.
type Context struct {
	// Path is the filesystem path being resolved.
	Path string

	// Parent is the already-resolved container this path belongs to,
	// nil for root resolutions.
	Parent items.Container

	// Entry describes the path itself.
	Entry fsys.Entry

	// Children holds the path's direct child entries after enumeration and
	// shortcut flattening. Empty for non-containers and before enumeration.
	Children []fsys.Entry

	cancelled bool
}

// Cancel marks the resolution as cancelled. Hooks call this to reject a path.
func (c *Context) Cancel() {
	c.cancelled = true
}

// Cancelled reports whether any hook has rejected this resolution.
func (c *Context) Cancelled() bool {
	return c.cancelled
}
