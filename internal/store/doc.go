// Package store persists resolved catalog items in SQLite.
//
// The catalog is rebuilt by scans: each scan upserts every item it
// resolved inside one transaction, then deletes rows it did not touch.
// WAL mode keeps read queries unblocked while a scan writes.
package store
