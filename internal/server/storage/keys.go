// Package storage is the upload-authorization and object-storage-addressing
// core: key derivation, upload policy validation, the credential issuer and
// the download access guard.
package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	uploadsPrefix    = "uploads"
	thumbnailsPrefix = "thumbnails"
	thumbSuffix      = "_thumb"
)

// DeriveStorageKey builds the object-storage key for a new upload:
//
//	uploads/<year>/<2-digit month>/<ownerID>/<uuid>.<ext>
//
// The uuid is fresh per call, so keys never collide across requests. The
// extension is taken from filename (empty when there is none, in which case
// the dot is omitted).
func DeriveStorageKey(filename, ownerID string, now time.Time) string {
	ext := ""
	if i := strings.LastIndex(filename, "."); i >= 0 {
		ext = filename[i+1:]
	}

	token := uuid.New().String()
	name := token
	if ext != "" {
		name = token + "." + ext
	}

	return fmt.Sprintf("%s/%d/%02d/%s/%s", uploadsPrefix, now.UTC().Year(), int(now.UTC().Month()), ownerID, name)
}

// DeriveThumbnailKey maps a storage key to its companion thumbnail key:
// the leading "uploads" segment becomes "thumbnails" and "_thumb" is inserted
// before the extension (appended when there is none). Interior segments,
// including the owner partition, are kept unchanged. Pure and deterministic.
//
//	uploads/2024/12/user-42/<token>.jpg -> thumbnails/2024/12/user-42/<token>_thumb.jpg
func DeriveThumbnailKey(storageKey string) string {
	parts := strings.Split(storageKey, "/")
	filename := parts[len(parts)-1]

	name, ext := filename, ""
	if i := strings.LastIndex(filename, "."); i >= 0 {
		name, ext = filename[:i], filename[i+1:]
	}

	thumbName := name + thumbSuffix
	if ext != "" {
		thumbName += "." + ext
	}

	segments := append([]string{thumbnailsPrefix}, parts[1:len(parts)-1]...)
	segments = append(segments, thumbName)
	return strings.Join(segments, "/")
}
