package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"media-catalog/internal/items"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return c
}

func testRow(path, kind string) *ItemRow {
	return &ItemRow{
		ID:          items.DeterministicID(path),
		Name:        filepath.Base(path),
		Path:        path,
		ParentPath:  filepath.Dir(path),
		Kind:        kind,
		IsContainer: kind == "folder",
		Created:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Modified:    time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC),
	}
}

func upsertAll(t *testing.T, c *Catalog, rows ...*ItemRow) {
	t.Helper()
	tx, err := c.BeginBatch()
	if err != nil {
		t.Fatalf("BeginBatch: %v", err)
	}
	for _, row := range rows {
		if err := c.UpsertItem(tx, row); err != nil {
			t.Fatalf("UpsertItem %s: %v", row.Path, err)
		}
	}
	if err := c.EndBatch(tx, nil); err != nil {
		t.Fatalf("EndBatch: %v", err)
	}
}

func TestUpsertAndGetByPath(t *testing.T) {
	c := newTestCatalog(t)
	want := testRow("/media/movie.mkv", "video")
	upsertAll(t, c, want)

	got, err := c.GetByPath(context.Background(), "/media/movie.mkv")
	if err != nil {
		t.Fatalf("GetByPath: %v", err)
	}
	if got.ID != want.ID || got.Name != want.Name || got.Kind != want.Kind {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if !got.Modified.Equal(want.Modified) {
		t.Errorf("Modified = %v, want %v", got.Modified, want.Modified)
	}
	if got.IsContainer {
		t.Error("video row marked as container")
	}
}

func TestGetByPathMissing(t *testing.T) {
	c := newTestCatalog(t)
	if _, err := c.GetByPath(context.Background(), "/nope"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestUpsertIsIdempotentPerPath(t *testing.T) {
	c := newTestCatalog(t)
	row := testRow("/media/movie.mkv", "video")
	upsertAll(t, c, row)

	row.Name = "renamed.mkv"
	upsertAll(t, c, row)

	got, err := c.GetByPath(context.Background(), "/media/movie.mkv")
	if err != nil {
		t.Fatalf("GetByPath: %v", err)
	}
	if got.Name != "renamed.mkv" {
		t.Errorf("Name = %q, want renamed.mkv", got.Name)
	}

	counts, err := c.CountByKind(context.Background())
	if err != nil {
		t.Fatalf("CountByKind: %v", err)
	}
	if counts["video"] != 1 {
		t.Errorf("video count = %d, want 1 after re-upsert", counts["video"])
	}
}

func TestListChildrenOrdering(t *testing.T) {
	c := newTestCatalog(t)

	alpha := testRow("/media/The Alpha.mkv", "video")
	alpha.SortName = "Alpha.mkv"
	beta := testRow("/media/Beta.mkv", "video")
	season := testRow("/media/Season 1", "folder")
	other := testRow("/elsewhere/x.mkv", "video")
	upsertAll(t, c, beta, alpha, season, other)

	children, err := c.ListChildren(context.Background(), "/media")
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}

	want := []string{"The Alpha.mkv", "Beta.mkv", "Season 1"}
	if len(children) != len(want) {
		t.Fatalf("got %d children, want %d", len(children), len(want))
	}
	for i, w := range want {
		if children[i].Name != w {
			t.Errorf("position %d = %s, want %s", i, children[i].Name, w)
		}
	}
}

func TestDeleteMissing(t *testing.T) {
	c := newTestCatalog(t)
	upsertAll(t, c, testRow("/media/old.mkv", "video"))

	cutoff := time.Now().Add(time.Minute)

	tx, err := c.BeginBatch()
	if err != nil {
		t.Fatalf("BeginBatch: %v", err)
	}
	deleted, err := c.DeleteMissing(tx, cutoff)
	if err != nil {
		t.Fatalf("DeleteMissing: %v", err)
	}
	if err := c.EndBatch(tx, nil); err != nil {
		t.Fatalf("EndBatch: %v", err)
	}

	if deleted != 1 {
		t.Errorf("deleted %d rows, want 1", deleted)
	}
	if _, err := c.GetByPath(context.Background(), "/media/old.mkv"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("stale row survived: %v", err)
	}
}

func TestEndBatchRollsBackOnError(t *testing.T) {
	c := newTestCatalog(t)

	tx, err := c.BeginBatch()
	if err != nil {
		t.Fatalf("BeginBatch: %v", err)
	}
	if err := c.UpsertItem(tx, testRow("/media/movie.mkv", "video")); err != nil {
		t.Fatalf("UpsertItem: %v", err)
	}

	scanErr := errors.New("scan aborted")
	if err := c.EndBatch(tx, scanErr); !errors.Is(err, scanErr) {
		t.Fatalf("EndBatch = %v, want the original error", err)
	}

	if _, err := c.GetByPath(context.Background(), "/media/movie.mkv"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("rolled-back row is visible: %v", err)
	}
}

func TestRowFromItem(t *testing.T) {
	v := &items.Video{BaseItem: items.BaseItem{
		ID:       "abc",
		Name:     "movie.mkv",
		SortName: "movie",
		Path:     "/media/movie.mkv",
	}}

	row := RowFromItem(v)
	if row.ParentPath != "/media" {
		t.Errorf("ParentPath = %q, want /media", row.ParentPath)
	}
	if row.Kind != "video" || row.IsContainer {
		t.Errorf("row = %+v, want video non-container", row)
	}
}

func TestStatsRoundTrip(t *testing.T) {
	c := newTestCatalog(t)

	stats := CatalogStats{TotalItems: 7, Containers: 2, MediaFiles: 5, LastScanTime: time.Now()}
	c.UpdateStats(stats)

	got := c.GetStats()
	if got.TotalItems != 7 || got.Containers != 2 || got.MediaFiles != 5 {
		t.Errorf("GetStats = %+v, want %+v", got, stats)
	}
}
