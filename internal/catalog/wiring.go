package catalog

import (
	"context"
	"fmt"

	"media-catalog/internal/enrich"
	"media-catalog/internal/fsys"
	"media-catalog/internal/metrics"
	"media-catalog/internal/resolve"
	"media-catalog/internal/resolvers"
	"media-catalog/internal/startup"
	"media-catalog/internal/store"
	"media-catalog/internal/workers"
)

// NewFromConfig assembles the scanner and its collaborators from loaded
// configuration: filesystem access with volume-aware metrics, the catalog
// database, and the resolution pipeline with the stock resolver chain.
func NewFromConfig(ctx context.Context, cfg *startup.Config) (*Scanner, *store.Catalog, error) {
	fsys.SetDefaultVolumeResolver(fsys.NewVolumeResolver(map[string]string{
		"media":    cfg.MediaDir,
		"metadata": cfg.MetadataDir,
		"database": cfg.DatabaseDir,
	}))
	fsys.SetObserver(metrics.NewFilesystemObserver())

	fs := fsys.NewOS()

	catalog, err := store.New(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog: %w", err)
	}

	pipeline := resolve.NewPipeline(resolve.Config{
		FS:                     fs,
		Resolvers:              resolvers.Default(),
		Providers:              enrich.Default(),
		MetadataDir:            cfg.MetadataDir,
		AllowExternalProviders: cfg.AllowExternalProviders,
		ChildConcurrency:       workers.ForIO(32),
	})

	scanner := New(catalog, pipeline, fs, cfg.MediaDir, cfg.ScanInterval)
	scanner.SetPollInterval(cfg.PollInterval)
	scanner.SetExpandRoot(cfg.ExpandRootShortcuts)

	return scanner, catalog, nil
}
