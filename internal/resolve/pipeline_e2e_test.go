package resolve_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"media-catalog/internal/enrich"
	"media-catalog/internal/fsys"
	"media-catalog/internal/items"
	"media-catalog/internal/resolve"
	"media-catalog/internal/resolvers"
)

func newOSPipeline(t *testing.T, metadataDir string) *resolve.Pipeline {
	t.Helper()
	return resolve.NewPipeline(resolve.Config{
		FS:          fsys.NewOS(),
		Resolvers:   resolvers.Default(),
		Providers:   enrich.Default(),
		MetadataDir: metadataDir,
	})
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func names(t *testing.T, it items.Item) []string {
	t.Helper()
	c, ok := it.(items.Container)
	if !ok {
		t.Fatalf("%T is not a container", it)
	}
	out := make([]string, 0, len(c.Children()))
	for _, child := range c.Children() {
		out = append(out, child.Base().Name)
	}
	return out
}

func TestResolveLibraryTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "movie.mkv"))
	writeFile(t, filepath.Join(root, "Season 1", "e01.mkv"))

	p := newOSPipeline(t, "")

	item, err := p.Resolve(context.Background(), root, resolve.ResolveOptions{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if item == nil {
		t.Fatal("root directory was not resolved")
	}
	if item.Kind() != items.KindFolder {
		t.Errorf("root Kind = %s, want %s", item.Kind(), items.KindFolder)
	}

	got := names(t, item)
	want := []string{"Season 1", "movie.mkv"}
	if len(got) != len(want) {
		t.Fatalf("children %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("children %v, want %v", got, want)
		}
	}

	children := item.(items.Container).Children()
	if children[0].Kind() != items.KindFolder {
		t.Errorf("Season 1 Kind = %s, want %s", children[0].Kind(), items.KindFolder)
	}
	if children[1].Kind() != items.KindVideo {
		t.Errorf("movie.mkv Kind = %s, want %s", children[1].Kind(), items.KindVideo)
	}

	season := children[0].(items.Container)
	if len(season.Children()) != 1 || season.Children()[0].Base().Name != "e01.mkv" {
		t.Errorf("Season 1 children = %v, want [e01.mkv]", names(t, season))
	}

	for _, child := range children {
		if child.Base().ID == "" {
			t.Errorf("%s has no id", child.Base().Name)
		}
		if child.Base().Modified.IsZero() {
			t.Errorf("%s has no modified time", child.Base().Name)
		}
	}
}

func TestResolveArticleSortNames(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "The Alpha.mkv"))
	writeFile(t, filepath.Join(root, "Beta.mkv"))

	p := newOSPipeline(t, "")

	item, err := p.Resolve(context.Background(), root, resolve.ResolveOptions{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	// "The Alpha.mkv" sorts as "Alpha.mkv", ahead of "Beta.mkv".
	got := names(t, item)
	if len(got) != 2 || got[0] != "The Alpha.mkv" || got[1] != "Beta.mkv" {
		t.Errorf("children %v, want [The Alpha.mkv Beta.mkv]", got)
	}
}

func TestResolveExpandedShortcutRoot(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "library")
	real := filepath.Join(base, "RealFolder")
	writeFile(t, filepath.Join(real, "x.mkv"))
	writeFile(t, filepath.Join(real, "y.mkv"))
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "Link.lnk"), []byte(real+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := newOSPipeline(t, "")

	item, err := p.Resolve(context.Background(), root, resolve.ResolveOptions{ExpandRoot: true})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	// The .lnk entry itself is claimed by no resolver; the expanded target
	// children are adopted directly.
	got := names(t, item)
	if len(got) != 2 || got[0] != "x.mkv" || got[1] != "y.mkv" {
		t.Errorf("children %v, want [x.mkv y.mkv]", got)
	}
}

func TestResolveShortcutAliasWithoutExpansion(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "library")
	real := filepath.Join(base, "RealFolder")
	writeFile(t, filepath.Join(real, "x.mkv"))
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "Link.lnk"), []byte(real+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := newOSPipeline(t, "")

	item, err := p.Resolve(context.Background(), root, resolve.ResolveOptions{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	// Without root expansion the shortcut resolves as the target folder.
	got := names(t, item)
	if len(got) != 1 || got[0] != "RealFolder" {
		t.Fatalf("children %v, want [RealFolder]", got)
	}
	folder := item.(items.Container).Children()[0]
	if folder.Kind() != items.KindFolder {
		t.Errorf("Kind = %s, want %s", folder.Kind(), items.KindFolder)
	}
	if inner := names(t, folder); len(inner) != 1 || inner[0] != "x.mkv" {
		t.Errorf("target children %v, want [x.mkv]", inner)
	}
}

func TestNamedEntityOnDisk(t *testing.T) {
	metadata := t.TempDir()
	p := newOSPipeline(t, metadata)

	entity, err := p.GetNamedEntity(context.Background(), items.CategoryGenre, "Action")
	if err != nil {
		t.Fatalf("GetNamedEntity: %v", err)
	}
	if entity.Kind() != items.KindGenre {
		t.Errorf("Kind = %s, want %s", entity.Kind(), items.KindGenre)
	}

	dir := filepath.Join(metadata, "genres", "Action")
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("backing directory missing: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("%s is not a directory", dir)
	}

	again, err := p.GetNamedEntity(context.Background(), items.CategoryGenre, "Action")
	if err != nil {
		t.Fatalf("second GetNamedEntity: %v", err)
	}
	if again.Base().ID != entity.Base().ID {
		t.Error("repeated lookups produced different entities")
	}
}
