package items

import (
	"crypto/md5" //nolint:gosec // MD5 used for deterministic id generation, not security
	"fmt"
	"time"
)

// Kind identifies the concrete type of a resolved item.
type Kind string

const (
	// KindFolder represents a plain directory container.
	KindFolder Kind = "folder"
	// KindVideo represents a video file.
	KindVideo Kind = "video"
	// KindImage represents an image file.
	KindImage Kind = "image"
	// KindPlaylist represents a playlist file.
	KindPlaylist Kind = "playlist"
	// KindPerson represents a shared person entity.
	KindPerson Kind = "person"
	// KindStudio represents a shared studio entity.
	KindStudio Kind = "studio"
	// KindGenre represents a shared genre entity.
	KindGenre Kind = "genre"
	// KindYear represents a shared year entity.
	KindYear Kind = "year"
)

// BaseItem carries the fields shared by every resolved item.
type BaseItem struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	SortName string    `json:"sortName,omitempty"`
	Path     string    `json:"path"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

// Item is a resolved domain object representing one filesystem path.
type Item interface {
	// Base returns the shared fields. Enrichment providers mutate the
	// returned struct in place.
	Base() *BaseItem
	Kind() Kind
	IsContainer() bool
}

// Container is an Item that owns ordered children.
type Container interface {
	Item
	Children() []Item
	SetChildren([]Item)
}

// Folder is a directory container.
type Folder struct {
	BaseItem
	children []Item
}

func (f *Folder) Base() *BaseItem      { return &f.BaseItem }
func (f *Folder) Kind() Kind           { return KindFolder }
func (f *Folder) IsContainer() bool    { return true }
func (f *Folder) Children() []Item     { return f.children }
func (f *Folder) SetChildren(c []Item) { f.children = c }

// Video is a video file.
type Video struct {
	BaseItem
}

func (v *Video) Base() *BaseItem   { return &v.BaseItem }
func (v *Video) Kind() Kind        { return KindVideo }
func (v *Video) IsContainer() bool { return false }

// Image is an image file.
type Image struct {
	BaseItem
}

func (i *Image) Base() *BaseItem   { return &i.BaseItem }
func (i *Image) Kind() Kind        { return KindImage }
func (i *Image) IsContainer() bool { return false }

// Playlist is a playlist file.
type Playlist struct {
	BaseItem
}

func (p *Playlist) Base() *BaseItem   { return &p.BaseItem }
func (p *Playlist) Kind() Kind        { return KindPlaylist }
func (p *Playlist) IsContainer() bool { return false }

// Category tags a shared named entity with its well-known grouping.
type Category string

const (
	CategoryPerson Category = "person"
	CategoryStudio Category = "studio"
	CategoryGenre  Category = "genre"
	CategoryYear   Category = "year"
)

// Subdir returns the library subdirectory holding entities of this category.
func (c Category) Subdir() string {
	switch c {
	case CategoryPerson:
		return "people"
	case CategoryStudio:
		return "studios"
	case CategoryGenre:
		return "genres"
	case CategoryYear:
		return "years"
	}
	return string(c)
}

// Kind returns the item kind for entities of this category.
func (c Category) Kind() Kind {
	return Kind(c)
}

// Valid reports whether the category is one of the known groupings.
func (c Category) Valid() bool {
	switch c {
	case CategoryPerson, CategoryStudio, CategoryGenre, CategoryYear:
		return true
	}
	return false
}

// NamedEntity is a shared, directory-backed entity (person, studio, genre,
// year). Named entities are containers: their directory may hold related
// media.
type NamedEntity struct {
	BaseItem
	Category Category `json:"category"`
	children []Item
}

func (n *NamedEntity) Base() *BaseItem      { return &n.BaseItem }
func (n *NamedEntity) Kind() Kind           { return n.Category.Kind() }
func (n *NamedEntity) IsContainer() bool    { return true }
func (n *NamedEntity) Children() []Item     { return n.children }
func (n *NamedEntity) SetChildren(c []Item) { n.children = c }

// DeterministicID derives a stable identifier from a key, typically the
// item's normalized path. Identical keys always produce identical ids.
func DeterministicID(key string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(key))) //nolint:gosec // id generation, not security
}
