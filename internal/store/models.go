package store

import (
	"path/filepath"
	"time"

	"media-catalog/internal/items"
)

// ItemRow is one persisted catalog item.
type ItemRow struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SortName    string    `json:"sortName,omitempty"`
	Path        string    `json:"path"`
	ParentPath  string    `json:"parentPath"`
	Kind        string    `json:"kind"`
	IsContainer bool      `json:"isContainer"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
}

// RowFromItem converts a resolved item into its persisted form.
func RowFromItem(it items.Item) *ItemRow {
	base := it.Base()
	return &ItemRow{
		ID:          base.ID,
		Name:        base.Name,
		SortName:    base.SortName,
		Path:        base.Path,
		ParentPath:  filepath.Dir(base.Path),
		Kind:        string(it.Kind()),
		IsContainer: it.IsContainer(),
		Created:     base.Created,
		Modified:    base.Modified,
	}
}

// CatalogStats summarizes the stored catalog after a scan.
type CatalogStats struct {
	TotalItems   int       `json:"totalItems"`
	Containers   int       `json:"containers"`
	MediaFiles   int       `json:"mediaFiles"`
	LastScanTime time.Time `json:"lastScanTime"`
	ScanDuration float64   `json:"scanDurationSeconds"`
}
