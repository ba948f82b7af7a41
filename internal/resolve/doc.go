/*
Package resolve implements the path-resolution pipeline at the heart of the
media cataloger: it turns filesystem paths into typed catalog items.

A Pipeline is built from an explicit Config naming the filesystem
collaborator, an ordered resolver chain, and an ordered enrichment provider
list. Resolving a path runs:

 1. A pre-enumeration cancellation checkpoint. Registered hooks may reject
    the path before any filesystem work happens.
 2. Child enumeration for containers, with shortcut flattening.
 3. A post-enumeration checkpoint, where hooks see the child entries.
 4. Resolver-chain dispatch: the first resolver to claim the path decides
    the item's type. No claim means the path is ignored, not an error.
 5. Metadata enrichment through the provider list.
 6. For containers, concurrent recursive resolution of all children with a
    full fan-in barrier, then deterministic sorting by sort name / name.

A child that fails to resolve is logged and excluded from its parent; it
does not abort siblings already in flight.

The package also provides the NamedCache, a singleflight-guarded cache of
shared directory-backed entities (people, studios, genres, years) keyed by
sanitized name, guaranteeing at-most-one creation per key under arbitrary
concurrency.
*/
package resolve
