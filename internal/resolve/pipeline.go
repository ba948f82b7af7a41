package resolve

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"media-catalog/internal/fsys"
	"media-catalog/internal/items"
	"media-catalog/internal/logging"
	"media-catalog/internal/metrics"
)

// Enricher is the metadata enrichment collaborator. It is invoked once per
// resolved item; a returned error fails the enclosing resolution.
type Enricher interface {
	Name() string
	Enrich(it items.Item, ctx *Context, allowExternal bool) error
}

// Config wires the pipeline's collaborators. Resolvers and Providers are
// consulted in the order given; there is no ambient registry.
type Config struct {
	// FS is the filesystem collaborator. Required.
	FS fsys.Access

	// Resolvers classify paths, in priority order.
	Resolvers []Resolver

	// Providers enrich resolved items, in registration order.
	Providers []Enricher

	// MetadataDir is the root under which named-entity category directories
	// (people, studios, genres, years) live. Empty disables GetNamedEntity.
	MetadataDir string

	// AllowExternalProviders is handed to providers as their allowExternal
	// argument.
	AllowExternalProviders bool

	// ChildConcurrency bounds how many children of one container resolve at
	// once. Zero means unbounded; the pipeline itself imposes no throttle.
	ChildConcurrency int
}

// Pipeline resolves filesystem paths into typed catalog items.
type Pipeline struct {
	fs            fsys.Access
	chain         *Chain
	providers     []Enricher
	allowExternal bool
	childLimit    int

	preHooks  hookSet
	postHooks hookSet

	named *NamedCache
}

// NewPipeline creates a resolution pipeline from an explicit configuration.
func NewPipeline(cfg Config) *Pipeline {
	p := &Pipeline{
		fs:            cfg.FS,
		chain:         NewChain(cfg.Resolvers...),
		providers:     cfg.Providers,
		allowExternal: cfg.AllowExternalProviders,
		childLimit:    cfg.ChildConcurrency,
	}
	if cfg.MetadataDir != "" {
		p.named = NewNamedCache(cfg.FS, cfg.Providers, cfg.MetadataDir, cfg.AllowExternalProviders)
	}
	return p
}

// OnPreResolve registers a hook for the checkpoint before filesystem
// enumeration. Hooks run in registration order on every Resolve call.
func (p *Pipeline) OnPreResolve(h Hook) {
	p.preHooks.add(h)
}

// OnPostEnumerate registers a hook for the checkpoint after child
// enumeration, when the context carries the flattened child entries.
func (p *Pipeline) OnPostEnumerate(h Hook) {
	p.postHooks.add(h)
}

// ResolveOptions adjusts a single Resolve call. The zero value resolves a
// standalone path with enrichment enabled.
type ResolveOptions struct {
	// Parent is the resolved container this path belongs to.
	Parent items.Container

	// KnownEntry supplies the path's entry when the caller already holds it,
	// saving a stat.
	KnownEntry *fsys.Entry

	// SkipEnrichment disables provider invocation for this call and its
	// children.
	SkipEnrichment bool

	// ExpandRoot marks the path as a synthetic root container: shortcuts to
	// containers among its children are flattened into it.
	ExpandRoot bool
}

// Resolve classifies path into a typed item, enriches it, and, for
// containers, concurrently resolves all children before attaching them in
// sorted order. A nil item with a nil error means the path was ignored:
// no resolver claimed it, or a cancellation hook rejected it.
func (p *Pipeline) Resolve(ctx context.Context, path string, opts ResolveOptions) (items.Item, error) {
	return p.resolve(ctx, path, opts, nil)
}

// resolve carries the set of container paths already on the resolution path.
// Flattening substitutes a shortcut's target entry in place, so a shortcut
// aliasing an ancestor would otherwise recurse into it without end.
func (p *Pipeline) resolve(ctx context.Context, path string, opts ResolveOptions, ancestors map[string]bool) (items.Item, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		metrics.ResolutionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	rctx := &Context{Path: path, Parent: opts.Parent}
	if opts.KnownEntry != nil {
		rctx.Entry = *opts.KnownEntry
	} else {
		entry, err := p.fs.GetEntry(path)
		if err != nil {
			metrics.ResolutionsTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		rctx.Entry = entry
	}

	// First checkpoint: reject before any filesystem work.
	if p.preHooks.run(rctx) {
		metrics.ResolutionsTotal.WithLabelValues("cancelled").Inc()
		return nil, nil
	}

	if rctx.Entry.IsContainer {
		children, err := p.fs.ListChildren(path)
		if err != nil {
			metrics.ResolutionsTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		flattened, err := FlattenShortcuts(p.fs, children, opts.ExpandRoot)
		if err != nil {
			metrics.ResolutionsTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		rctx.Children = flattened
	}

	// Second checkpoint: reject with child entries visible, without
	// re-enumerating.
	if p.postHooks.run(rctx) {
		metrics.ResolutionsTotal.WithLabelValues("cancelled").Inc()
		return nil, nil
	}

	item := p.chain.TryResolve(rctx)
	if item == nil {
		metrics.ResolutionsTotal.WithLabelValues("ignored").Inc()
		return nil, nil
	}

	if !opts.SkipEnrichment {
		if err := p.enrichItem(item, rctx); err != nil {
			metrics.ResolutionsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("enrich %s: %w", path, err)
		}
	}

	if container, ok := item.(items.Container); ok {
		lineage := make(map[string]bool, len(ancestors)+1)
		for a := range ancestors {
			lineage[a] = true
		}
		lineage[rctx.Entry.Path] = true
		children, err := p.resolveChildren(ctx, container, rctx.Children, opts.SkipEnrichment, lineage)
		if err != nil {
			metrics.ResolutionsTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		container.SetChildren(children)
	}

	metrics.ResolutionsTotal.WithLabelValues("resolved").Inc()
	metrics.ResolutionDuration.Observe(time.Since(start).Seconds())
	return item, nil
}

// resolveChildren fans out one resolution per child entry and joins them all
// before returning the sorted survivors. A failing child is logged and
// excluded; it never aborts its siblings or the parent. A child entry whose
// path is already on the resolution path is a shortcut cycle and is dropped.
func (p *Pipeline) resolveChildren(ctx context.Context, parent items.Container, entries []fsys.Entry, skipEnrichment bool, ancestors map[string]bool) ([]items.Item, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	var (
		mu       sync.Mutex
		resolved []items.Item
	)

	g, gctx := errgroup.WithContext(ctx)
	if p.childLimit > 0 {
		g.SetLimit(p.childLimit)
	}

	for _, entry := range entries {
		if ancestors[entry.Path] {
			logging.Warn("Shortcut cycle detected at %s, truncating", entry.Path)
			metrics.ResolutionCyclesTruncated.Inc()
			continue
		}
		entry := entry
		g.Go(func() error {
			child, err := p.resolve(gctx, entry.Path, ResolveOptions{
				Parent:         parent,
				KnownEntry:     &entry,
				SkipEnrichment: skipEnrichment,
			}, ancestors)
			if err != nil {
				// A cancelled scan aborts; an unreadable child does not.
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				logging.Warn("Skipping %s: %v", entry.Path, err)
				metrics.ResolutionChildFailures.Inc()
				return nil
			}
			if child == nil {
				return nil
			}
			mu.Lock()
			resolved = append(resolved, child)
			mu.Unlock()
			return nil
		})
	}

	// Full fan-in barrier: children attach only after every branch settles.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortItems(resolved)
	return resolved, nil
}

// enrichItem runs all providers against the item in registration order.
func (p *Pipeline) enrichItem(it items.Item, rctx *Context) error {
	for _, provider := range p.providers {
		if err := provider.Enrich(it, rctx, p.allowExternal); err != nil {
			metrics.EnrichmentsTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("provider %s: %w", provider.Name(), err)
		}
	}
	metrics.EnrichmentsTotal.WithLabelValues("success").Inc()
	return nil
}

// GetNamedEntity returns the shared entity for a category and display name,
// creating it at most once per process. Requires Config.MetadataDir.
func (p *Pipeline) GetNamedEntity(ctx context.Context, category items.Category, name string) (items.Item, error) {
	if p.named == nil {
		return nil, fmt.Errorf("named entities disabled: no metadata directory configured")
	}
	return p.named.GetOrCreate(ctx, category, name)
}

// sortItems orders children ascending by sort name when set, name otherwise,
// using the byte-wise ordering sort.Strings applies to path names. Path
// breaks ties so the result is deterministic regardless of completion order.
func sortItems(list []items.Item) {
	sort.Slice(list, func(i, j int) bool {
		ki, kj := sortKey(list[i]), sortKey(list[j])
		if ki != kj {
			return ki < kj
		}
		return list[i].Base().Path < list[j].Base().Path
	})
}

func sortKey(it items.Item) string {
	base := it.Base()
	if base.SortName != "" {
		return base.SortName
	}
	return base.Name
}
