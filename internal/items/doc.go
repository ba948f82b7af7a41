// Package items defines the domain types produced by path resolution:
// the Item and Container interfaces, the concrete file and folder kinds,
// and the shared named-entity categories (person, studio, genre, year).
package items
