// Package models defines server-side data models persisted in the database.
package models

import "time"

// ItemType classifies a library item by its payload.
type ItemType string

const (
	ItemTypeImage    ItemType = "image"
	ItemTypeDocument ItemType = "document"
	ItemTypeFile     ItemType = "file"
	ItemTypeVideo    ItemType = "video"
)

// Visibility controls who may obtain download credentials for an item.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Item is a library item record. The payload itself lives in object storage;
// the record only carries its addressing keys and metadata.
type Item struct {
	// ID is the item's uuid.
	ID string
	// OwnerID is the user id of the item's owner.
	OwnerID string
	// Name is the user-facing display name.
	Name string
	// Type classifies the payload (image, document, file, video).
	Type ItemType
	// MimeType is the declared media type of the payload.
	MimeType string
	// Visibility is public or private.
	Visibility Visibility

	// StorageKey is the object-storage key (path) of the payload.
	StorageKey string
	// ThumbnailKey is the object-storage key of the thumbnail, empty when the
	// item has none. It is derivable from StorageKey but persisted once
	// thumbnail generation completes.
	ThumbnailKey string

	// FileSize is the payload size in bytes.
	FileSize int64
	// PreviewText holds extracted preview text for document items.
	PreviewText string
	// OriginalFilename is the filename the client declared at upload time.
	OriginalFilename string

	CreatedAt time.Time
	UpdatedAt time.Time
	// DeletedAt marks soft deletion; nil means the item is active.
	DeletedAt *time.Time
}

// IsDeleted reports whether the item is soft-deleted.
func (i *Item) IsDeleted() bool {
	return i.DeletedAt != nil
}
