package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/libriahq/libria/internal/server/models"
)

func TestClassify(t *testing.T) {
	assert.True(t, IsImage("image/png"))
	assert.False(t, IsImage("video/mp4"))

	assert.True(t, IsVideo("video/mp4"))
	assert.False(t, IsVideo("image/png"))

	assert.True(t, NeedsThumbnail("image/jpeg"))
	assert.True(t, NeedsThumbnail("video/webm"))
	assert.False(t, NeedsThumbnail("application/pdf"))
	assert.False(t, NeedsThumbnail("text/plain"))
}

func TestItemTypeFor(t *testing.T) {
	tests := []struct {
		contentType string
		want        models.ItemType
	}{
		{"image/png", models.ItemTypeImage},
		{"video/mp4", models.ItemTypeVideo},
		{"application/pdf", models.ItemTypeDocument},
		{"text/markdown", models.ItemTypeDocument},
		{"application/zip", models.ItemTypeFile},
		{"audio/mpeg", models.ItemTypeFile},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ItemTypeFor(tt.contentType), tt.contentType)
	}
}
