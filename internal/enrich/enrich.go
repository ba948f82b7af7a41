package enrich

import (
	"strings"

	"media-catalog/internal/items"
	"media-catalog/internal/resolve"
)

// articles are leading words ignored for sorting purposes.
var articles = []string{"The ", "A ", "An "}

// Basic fills in the fields derivable without touching file contents or the
// network: timestamps from the filesystem entry and a sort name with leading
// articles stripped. It never uses external sources, so allowExternal is
// irrelevant to it.
type Basic struct{}

func (Basic) Name() string { return "basic" }

func (Basic) Enrich(it items.Item, ctx *resolve.Context, _ bool) error {
	base := it.Base()

	if base.SortName == "" {
		base.SortName = SortNameFor(base.Name)
	}
	if base.Created.IsZero() {
		base.Created = ctx.Entry.CreatedAt
	}
	if base.Modified.IsZero() {
		base.Modified = ctx.Entry.ModifiedAt
	}
	return nil
}

// SortNameFor returns the sort form of a display name: leading articles are
// stripped, everything else is left alone. Names without an article sort by
// their plain name, so the result is empty for them.
func SortNameFor(name string) string {
	for _, article := range articles {
		if len(name) > len(article) && strings.HasPrefix(name, article) {
			return name[len(article):]
		}
	}
	return ""
}

// Default returns the stock provider list.
func Default() []resolve.Enricher {
	return []resolve.Enricher{Basic{}}
}
