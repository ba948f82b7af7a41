package resolve

import (
	"fmt"

	"media-catalog/internal/fsys"
	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
)

// FlattenShortcuts rewrites shortcut entries among a set of siblings into
// their resolved targets.
//
// Plain entries pass through unchanged at their position. A shortcut whose
// target is a file is replaced by the target's entry at the same position.
// A shortcut to a container is replaced by the container's entry when
// expand is false; when expand is true the original shortcut entry is kept
// at its position and the target container's own children (themselves
// flattened, without further expansion) are appended after all positional
// entries, in discovery order of the shortcuts that produced them.
//
// Shortcut chains are followed hop by hop; a chain that revisits one of its
// own links is a cycle and is truncated, dropping that entry.
func FlattenShortcuts(fs fsys.Access, entries []fsys.Entry, expand bool) ([]fsys.Entry, error) {
	metrics.FlattenOperationsTotal.Inc()

	out := make([]fsys.Entry, 0, len(entries))
	var appended []fsys.Entry

	for _, entry := range entries {
		if !fs.IsShortcut(entry.Path) {
			out = append(out, entry)
			continue
		}

		target, ok, err := resolveTargetChain(fs, entry.Path)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Cycle: truncate rather than loop
			continue
		}
		metrics.FlattenShortcutsResolved.Inc()

		if !target.IsContainer || !expand {
			out = append(out, target)
			continue
		}

		// Expansion keeps the shortcut itself in place and hoists the
		// target's children behind the positional block.
		out = append(out, entry)

		children, err := fs.ListChildren(target.Path)
		if err != nil {
			return nil, fmt.Errorf("list shortcut target %s: %w", target.Path, err)
		}
		flattened, err := FlattenShortcuts(fs, children, false)
		if err != nil {
			return nil, err
		}
		appended = append(appended, flattened...)
	}

	return append(out, appended...), nil
}

// resolveTargetChain follows a chain of shortcuts to the first real entry.
// ok is false when the chain cycles back on itself.
func resolveTargetChain(fs fsys.Access, path string) (entry fsys.Entry, ok bool, err error) {
	seen := map[string]bool{}
	p := path
	for fs.IsShortcut(p) {
		if seen[p] {
			metrics.FlattenCyclesDetected.Inc()
			logging.Warn("Shortcut cycle detected at %s, truncating", p)
			return fsys.Entry{}, false, nil
		}
		seen[p] = true

		target, err := fs.ResolveShortcutTarget(p)
		if err != nil {
			return fsys.Entry{}, false, fmt.Errorf("resolve shortcut %s: %w", p, err)
		}
		p = target
	}

	e, err := fs.GetEntry(p)
	if err != nil {
		return fsys.Entry{}, false, fmt.Errorf("stat shortcut target %s: %w", p, err)
	}
	return e, true, nil
}
