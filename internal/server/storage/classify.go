package storage

import (
	"strings"

	"github.com/libriahq/libria/internal/server/models"
)

// IsImage reports whether contentType has the image top-level type.
func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// IsVideo reports whether contentType has the video top-level type.
func IsVideo(contentType string) bool {
	return strings.HasPrefix(contentType, "video/")
}

// NeedsThumbnail reports whether an item with this content type should get a
// thumbnail key. Thumbnail rendering itself happens elsewhere; this only
// decides whether the key is derived at all.
func NeedsThumbnail(contentType string) bool {
	return IsImage(contentType) || IsVideo(contentType)
}

// ItemTypeFor maps a content type to the item-type enum used on records.
func ItemTypeFor(contentType string) models.ItemType {
	switch {
	case IsImage(contentType):
		return models.ItemTypeImage
	case IsVideo(contentType):
		return models.ItemTypeVideo
	case strings.HasPrefix(contentType, "text/"),
		contentType == "application/pdf":
		return models.ItemTypeDocument
	default:
		return models.ItemTypeFile
	}
}
