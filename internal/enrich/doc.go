// Package enrich provides metadata enrichment providers for resolved
// catalog items. The stock Basic provider derives sort names and timestamps
// from the filesystem entry alone; it performs no content parsing and no
// network access.
package enrich
