package resolvers

import (
	"path/filepath"
	"strings"

	"media-catalog/internal/items"
	"media-catalog/internal/resolve"
)

// Folder claims every container entry as a plain folder. Register it last:
// more specific container resolvers should get the first look.
type Folder struct{}

func (Folder) Name() string { return "folder" }

func (Folder) TryResolve(ctx *resolve.Context) items.Item {
	if !ctx.Entry.IsContainer {
		return nil
	}
	return &items.Folder{BaseItem: baseFor(ctx)}
}

// MediaFile claims files with a recognized media extension and declines
// everything else.
type MediaFile struct{}

func (MediaFile) Name() string { return "mediafile" }

func (MediaFile) TryResolve(ctx *resolve.Context) items.Item {
	if ctx.Entry.IsContainer {
		return nil
	}

	ext := strings.ToLower(filepath.Ext(ctx.Path))
	switch items.KindForExtension(ext) {
	case items.KindVideo:
		return &items.Video{BaseItem: baseFor(ctx)}
	case items.KindImage:
		return &items.Image{BaseItem: baseFor(ctx)}
	case items.KindPlaylist:
		return &items.Playlist{BaseItem: baseFor(ctx)}
	}
	return nil
}

// baseFor seeds an item's shared fields from the resolution context.
func baseFor(ctx *resolve.Context) items.BaseItem {
	return items.BaseItem{
		ID:       items.DeterministicID(ctx.Path),
		Name:     filepath.Base(ctx.Path),
		Path:     ctx.Path,
		Created:  ctx.Entry.CreatedAt,
		Modified: ctx.Entry.ModifiedAt,
	}
}

// Default returns the stock resolver chain order: media files first, then
// the catch-all folder resolver.
func Default() []resolve.Resolver {
	return []resolve.Resolver{MediaFile{}, Folder{}}
}
