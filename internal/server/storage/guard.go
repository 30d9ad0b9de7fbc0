package storage

import (
	"github.com/libriahq/libria/internal/common"
	"github.com/libriahq/libria/internal/server/auth"
	"github.com/libriahq/libria/internal/server/models"
)

// AuthorizeDownload decides whether caller may obtain a download credential
// for item. Rules, in order:
//
//  1. soft-deleted items look like missing ones to every caller, owner included
//  2. the owner may always download
//  3. public items may be downloaded by anyone, anonymous callers included
//  4. everything else is forbidden
//
// The decision only inspects the record and the caller identity; it never
// touches storage or the provider.
func AuthorizeDownload(caller auth.Identity, item *models.Item) error {
	if item.IsDeleted() {
		return common.ErrorNotFound
	}

	if userID, ok := caller.UserID(); ok && userID == item.OwnerID {
		return nil
	}

	if item.Visibility == models.VisibilityPublic {
		return nil
	}

	return common.ErrorForbidden
}
