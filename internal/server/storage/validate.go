package storage

import (
	"fmt"
	"mime"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/libriahq/libria/internal/common"
)

const (
	// MaxFilenameLength bounds the declared original filename.
	MaxFilenameLength = 255

	// MinUploadBytes and MaxUploadBytes bound the declared (and provider
	// enforced) payload size: 1 byte to 100 MiB inclusive.
	MinUploadBytes int64 = 1
	MaxUploadBytes int64 = 100 * 1024 * 1024
)

// allowedTopLevelTypes is the media-type allow-list for uploads.
var allowedTopLevelTypes = map[string]bool{
	"image":       true,
	"video":       true,
	"audio":       true,
	"text":        true,
	"application": true,
}

// FileInfo is the normalized description of a validated upload request.
// Informational only: the authoritative size bound is re-asserted by the
// credential issuer's provider-side conditions.
type FileInfo struct {
	// Extension is the lowercased filename extension without the dot, empty
	// when the filename has none.
	Extension string `json:"extension"`
	// MediaType is the canonical media type without parameters.
	MediaType string `json:"media_type"`
	// Size is the declared size in bytes.
	Size int64 `json:"size"`
	// SizeHuman is the declared size formatted for display, e.g. "1.5 MB".
	SizeHuman string `json:"size_human"`
}

// ValidateUpload checks the declared file metadata against upload policy
// before any credential is issued. Checks run in order and short-circuit on
// the first failure; every failure wraps common.ErrorInvalidRequest.
func ValidateUpload(filename, contentType string, declaredSize int64) (*FileInfo, error) {
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", common.ErrorInvalidRequest)
	}
	if len(filename) > MaxFilenameLength {
		return nil, fmt.Errorf("%w: filename exceeds %d characters", common.ErrorInvalidRequest, MaxFilenameLength)
	}

	if contentType == "" {
		return nil, fmt.Errorf("%w: content type is required", common.ErrorInvalidRequest)
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed content type %q", common.ErrorInvalidRequest, contentType)
	}
	topLevel, _, found := strings.Cut(mediaType, "/")
	if !found || !allowedTopLevelTypes[topLevel] {
		return nil, fmt.Errorf("%w: content type %q is not allowed", common.ErrorInvalidRequest, mediaType)
	}

	if declaredSize < MinUploadBytes || declaredSize > MaxUploadBytes {
		return nil, fmt.Errorf("%w: file size must be between %d byte and %d bytes",
			common.ErrorInvalidRequest, MinUploadBytes, MaxUploadBytes)
	}

	ext := ""
	if i := strings.LastIndex(filename, "."); i >= 0 {
		ext = strings.ToLower(filename[i+1:])
	}

	return &FileInfo{
		Extension: ext,
		MediaType: mediaType,
		Size:      declaredSize,
		SizeHuman: humanize.Bytes(uint64(declaredSize)),
	}, nil
}
