// Package items persists library item records.
package items

import (
	"context"

	"github.com/libriahq/libria/internal/server/models"
)

// Repository is the item directory: read and write access to item records.
type Repository interface {
	// Create inserts a new item record.
	Create(ctx context.Context, item *models.Item) error

	// GetByID returns the record with the given id, soft-deleted ones
	// included: hiding deleted items is an authorization decision, not a
	// lookup one. Returns common.ErrorNotFound when no row exists.
	GetByID(ctx context.Context, id string) (*models.Item, error)

	// ListByOwner returns the owner's active (not soft-deleted) items,
	// newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Item, error)

	// SetThumbnailKey records the thumbnail key once generation completed.
	SetThumbnailKey(ctx context.Context, id, thumbnailKey string) error

	// SoftDelete marks an active item deleted. Returns common.ErrorNotFound
	// when the item does not exist or is already deleted.
	SoftDelete(ctx context.Context, id string) error
}
