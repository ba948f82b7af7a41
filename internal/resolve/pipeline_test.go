package resolve

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"media-catalog/internal/fsys"
	"media-catalog/internal/items"
)

// testResolver claims every entry, producing folders for containers and
// videos for files.
type testResolver struct{}

func (testResolver) Name() string { return "test" }

func (testResolver) TryResolve(ctx *Context) items.Item {
	base := items.BaseItem{
		ID:   items.DeterministicID(ctx.Path),
		Name: filepath.Base(ctx.Path),
		Path: ctx.Path,
	}
	if ctx.Entry.IsContainer {
		return &items.Folder{BaseItem: base}
	}
	return &items.Video{BaseItem: base}
}

func childNames(t *testing.T, it items.Item) []string {
	t.Helper()
	c, ok := it.(items.Container)
	if !ok {
		t.Fatalf("%T is not a container", it)
	}
	names := make([]string, 0, len(c.Children()))
	for _, child := range c.Children() {
		names = append(names, child.Base().Name)
	}
	return names
}

func TestResolveIgnoredPath(t *testing.T) {
	fs := newFakeFS()
	entry := fs.addFile("/media/notes.txt")

	decliner := &spyResolver{name: "decliner"}
	p := NewPipeline(Config{FS: fs, Resolvers: []Resolver{decliner}})

	item, err := p.Resolve(context.Background(), "/media/notes.txt", ResolveOptions{KnownEntry: &entry})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if item != nil {
		t.Errorf("unclaimed path produced %v, want nil", item)
	}
}

func TestResolveFileItem(t *testing.T) {
	fs := newFakeFS()
	entry := fs.addFile("/media/movie.mkv")

	p := NewPipeline(Config{FS: fs, Resolvers: []Resolver{testResolver{}}})

	item, err := p.Resolve(context.Background(), "/media/movie.mkv", ResolveOptions{KnownEntry: &entry})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if item == nil {
		t.Fatal("Resolve returned nil for a claimed file")
	}
	if item.Kind() != items.KindVideo {
		t.Errorf("Kind = %s, want %s", item.Kind(), items.KindVideo)
	}
	if fs.listCount("/media/movie.mkv") != 0 {
		t.Error("children enumerated for a non-container")
	}
}

func TestResolveKnownEntrySkipsLookup(t *testing.T) {
	fs := newFakeFS()
	entry := fs.addFile("/media/movie.mkv")

	p := NewPipeline(Config{FS: fs, Resolvers: []Resolver{testResolver{}}})

	if _, err := p.Resolve(context.Background(), "/media/movie.mkv", ResolveOptions{KnownEntry: &entry}); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := fs.getCalls["/media/movie.mkv"]; got != 0 {
		t.Errorf("GetEntry called %d times despite a known entry", got)
	}

	if _, err := p.Resolve(context.Background(), "/media/movie.mkv", ResolveOptions{}); err != nil {
		t.Fatalf("Resolve without known entry: %v", err)
	}
	if got := fs.getCalls["/media/movie.mkv"]; got != 1 {
		t.Errorf("GetEntry called %d times, want 1", got)
	}
}

func TestResolveChildOrdering(t *testing.T) {
	fs := newFakeFS()
	b := fs.addFile("/media/b.mkv")
	a := fs.addFile("/media/a.mkv")
	c := fs.addFile("/media/C.mkv")
	root := fs.addDir("/media", b, a, c)

	p := NewPipeline(Config{FS: fs, Resolvers: []Resolver{testResolver{}}})

	item, err := p.Resolve(context.Background(), "/media", ResolveOptions{KnownEntry: &root})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	// Byte-wise ordering puts uppercase before lowercase.
	want := []string{"C.mkv", "a.mkv", "b.mkv"}
	got := childNames(t, item)
	if len(got) != len(want) {
		t.Fatalf("children %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("children %v, want %v", got, want)
		}
	}
}

func TestResolveSortNamePreferred(t *testing.T) {
	fs := newFakeFS()
	x := fs.addFile("/media/x.mkv")
	z := fs.addFile("/media/z.mkv")
	root := fs.addDir("/media", x, z)

	p := NewPipeline(Config{
		FS:        fs,
		Resolvers: []Resolver{testResolver{}},
		Providers: []Enricher{sortNameEnricher{"z.mkv": "aaa"}},
	})

	item, err := p.Resolve(context.Background(), "/media", ResolveOptions{KnownEntry: &root})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	got := childNames(t, item)
	if len(got) != 2 || got[0] != "z.mkv" || got[1] != "x.mkv" {
		t.Errorf("children %v, want [z.mkv x.mkv] (sort name wins over name)", got)
	}
}

// sortNameEnricher assigns sort names from a fixed table.
type sortNameEnricher map[string]string

func (sortNameEnricher) Name() string { return "sortname" }

func (s sortNameEnricher) Enrich(it items.Item, _ *Context, _ bool) error {
	if sn, ok := s[it.Base().Name]; ok {
		it.Base().SortName = sn
	}
	return nil
}

func TestResolveChildFailureExcluded(t *testing.T) {
	fs := newFakeFS()
	good := fs.addFile("/media/good.mkv")
	bad := fs.addDir("/media/bad")
	fs.failList["/media/bad"] = errors.New("stale handle")
	root := fs.addDir("/media", bad, good)

	p := NewPipeline(Config{FS: fs, Resolvers: []Resolver{testResolver{}}})

	item, err := p.Resolve(context.Background(), "/media", ResolveOptions{KnownEntry: &root})
	if err != nil {
		t.Fatalf("a failing child must not fail the parent: %v", err)
	}

	got := childNames(t, item)
	if len(got) != 1 || got[0] != "good.mkv" {
		t.Errorf("children %v, want only good.mkv", got)
	}
}

func TestResolveAncestorAliasTruncated(t *testing.T) {
	fs := newFakeFS()
	loop := fs.addShortcut("/media/loop.lnk", "/media")
	movie := fs.addFile("/media/movie.mkv")
	up := fs.addShortcut("/media/shows/up.lnk", "/media")
	shows := fs.addDir("/media/shows", up)
	root := fs.addDir("/media", loop, movie, shows)

	p := NewPipeline(Config{FS: fs, Resolvers: []Resolver{testResolver{}}})

	var (
		item items.Item
		err  error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		item, err = p.Resolve(context.Background(), "/media", ResolveOptions{KnownEntry: &root})
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Resolve did not return for a shortcut aliasing an ancestor")
	}
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	// The root alias is dropped, not substituted back in.
	got := childNames(t, item)
	if len(got) != 2 || got[0] != "movie.mkv" || got[1] != "shows" {
		t.Fatalf("children %v, want [movie.mkv shows]", got)
	}

	// The nested alias points two levels up and is dropped the same way.
	for _, child := range item.(items.Container).Children() {
		if child.Base().Name != "shows" {
			continue
		}
		if kids := childNames(t, child); len(kids) != 0 {
			t.Errorf("shows children %v, want none", kids)
		}
	}
}

func TestResolveEnrichmentFailure(t *testing.T) {
	fs := newFakeFS()
	entry := fs.addFile("/media/movie.mkv")

	enricher := &countingEnricher{}
	enricher.failNext.Store(true)
	p := NewPipeline(Config{
		FS:        fs,
		Resolvers: []Resolver{testResolver{}},
		Providers: []Enricher{enricher},
	})

	if _, err := p.Resolve(context.Background(), "/media/movie.mkv", ResolveOptions{KnownEntry: &entry}); err == nil {
		t.Error("enrichment failure on the root was not reported")
	}
}

func TestResolveSkipEnrichment(t *testing.T) {
	fs := newFakeFS()
	entry := fs.addFile("/media/movie.mkv")

	enricher := &countingEnricher{}
	p := NewPipeline(Config{
		FS:        fs,
		Resolvers: []Resolver{testResolver{}},
		Providers: []Enricher{enricher},
	})

	if _, err := p.Resolve(context.Background(), "/media/movie.mkv", ResolveOptions{KnownEntry: &entry, SkipEnrichment: true}); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if enricher.calls.Load() != 0 {
		t.Errorf("enrichment ran %d times with SkipEnrichment set", enricher.calls.Load())
	}
}

func TestResolveCancelledContext(t *testing.T) {
	fs := newFakeFS()
	entry := fs.addFile("/media/movie.mkv")

	p := NewPipeline(Config{FS: fs, Resolvers: []Resolver{testResolver{}}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Resolve(ctx, "/media/movie.mkv", ResolveOptions{KnownEntry: &entry}); err == nil {
		t.Error("resolve with a cancelled context did not fail")
	}
}

// gaugeEnricher tracks the peak number of concurrent enrichments.
type gaugeEnricher struct {
	inFlight atomic.Int64
	peak     atomic.Int64
}

func (g *gaugeEnricher) Name() string { return "gauge" }

func (g *gaugeEnricher) Enrich(items.Item, *Context, bool) error {
	cur := g.inFlight.Add(1)
	for {
		peak := g.peak.Load()
		if cur <= peak || g.peak.CompareAndSwap(peak, cur) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	g.inFlight.Add(-1)
	return nil
}

func TestResolveChildConcurrencyBound(t *testing.T) {
	fs := newFakeFS()
	kids := make([]fsys.Entry, 0, 8)
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		kids = append(kids, fs.addFile("/media/"+name+".mkv"))
	}
	root := fs.addDir("/media", kids...)

	gauge := &gaugeEnricher{}
	p := NewPipeline(Config{
		FS:               fs,
		Resolvers:        []Resolver{testResolver{}},
		Providers:        []Enricher{gauge},
		ChildConcurrency: 2,
	})

	item, err := p.Resolve(context.Background(), "/media", ResolveOptions{KnownEntry: &root})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := len(childNames(t, item)); got != 8 {
		t.Fatalf("resolved %d children, want 8", got)
	}
	if peak := gauge.peak.Load(); peak > 2 {
		t.Errorf("peak child concurrency %d exceeds the configured bound of 2", peak)
	}
}

func TestGetNamedEntityRequiresMetadataDir(t *testing.T) {
	p := NewPipeline(Config{FS: newFakeFS(), Resolvers: []Resolver{testResolver{}}})
	if _, err := p.GetNamedEntity(context.Background(), items.CategoryGenre, "Action"); err == nil {
		t.Error("expected error when no metadata directory is configured")
	}
}
